package inbox

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/distrischool/schoolctl/internal/model"
	"github.com/distrischool/schoolctl/internal/theme"
)

// Item wraps a model.Notification so it can be used in a bubbles/list.
type Item struct {
	Notification model.Notification
}

// FilterValue returns the string used for fuzzy filtering.
func (i Item) FilterValue() string { return i.Notification.Title }

// Title returns the notification headline for the list.
func (i Item) Title() string { return i.Notification.Title }

// Description returns the notification body for the list.
func (i Item) Description() string { return i.Notification.Message }

// ItemDelegate implements list.ItemDelegate for rendering inbox rows.
type ItemDelegate struct{}

// Height returns the number of lines each item takes.
func (d ItemDelegate) Height() int { return 1 }

// Spacing returns the number of blank lines between items.
func (d ItemDelegate) Spacing() int { return 0 }

// Update handles per-item messages (unused).
func (d ItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single inbox row.
func (d ItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(Item)
	if !ok {
		return
	}

	n := it.Notification
	isSelected := index == m.Index()

	var marker string
	if n.Read {
		marker = "  "
	} else {
		marker = theme.UnreadStyle.Render("● ")
	}

	typeBadge := theme.NotificationStyle(n.Type).Render(typeLabel(n.Type))

	timeStr := lipgloss.NewStyle().
		Foreground(theme.ColorGray).
		Render(model.RelativeTime(n.Timestamp, time.Now()))

	title := n.Title
	if !n.Read {
		title = theme.UnreadStyle.Render(title)
	}

	line := fmt.Sprintf("%s%s %s  %s", marker, typeBadge, title, timeStr)

	if isSelected {
		line = theme.SelectedItemStyle.Render(line)
	} else {
		line = theme.ListItemStyle.Render(line)
	}

	fmt.Fprint(w, line)
}

// typeLabel returns a short badge text for a notification type.
func typeLabel(typ string) string {
	switch typ {
	case model.NotificationUserCreated:
		return "USER"
	case model.NotificationUserDisabled:
		return "USER"
	case model.NotificationTeacherCreated:
		return "TCHR"
	default:
		return "INFO"
	}
}
