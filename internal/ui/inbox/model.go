// Package inbox renders the notification center: a list of
// notifications with read tracking and a detail panel for the selected
// entry.
package inbox

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/distrischool/schoolctl/internal/keys"
	"github.com/distrischool/schoolctl/internal/model"
	"github.com/distrischool/schoolctl/internal/notify"
	"github.com/distrischool/schoolctl/internal/theme"
)

// LoadedMsg is sent when the notification collection has been refreshed.
type LoadedMsg struct {
	Notifications []model.Notification
}

// ActionDoneMsg is sent after a mark-read / mark-all / delete call
// finished, carrying the resulting collection or the error.
type ActionDoneMsg struct {
	Notifications []model.Notification
	Err           error
}

// Model is the notification center view component.
type Model struct {
	list        list.Model
	coordinator *notify.Coordinator
	keys        *keys.KeyMap
	showDetail  bool
	width       int
	height      int
}

// New creates an inbox view backed by the notification coordinator.
func New(c *notify.Coordinator, k *keys.KeyMap, width, height int) Model {
	l := list.New([]list.Item{}, ItemDelegate{}, width, height-2)
	l.Title = "Notifications"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	return Model{
		list:        l,
		coordinator: c,
		keys:        k,
		width:       width,
		height:      height,
	}
}

// Init returns a command that fetches the notification listing.
func (m Model) Init() tea.Cmd {
	return m.Refresh()
}

// Update handles messages for the inbox view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case LoadedMsg:
		cmd := m.list.SetItems(toItems(msg.Notifications))
		return m, cmd

	case ActionDoneMsg:
		if msg.Err != nil {
			// The collection was not mutated; keep rendering it as is.
			return m, nil
		}
		cmd := m.list.SetItems(toItems(msg.Notifications))
		return m, cmd

	case tea.KeyMsg:
		return m.handleKeys(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// handleKeys processes key input for the inbox.
func (m Model) handleKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Select):
		m.showDetail = !m.showDetail
		return m, nil

	case key.Matches(msg, m.keys.Back):
		if m.showDetail {
			m.showDetail = false
			return m, nil
		}

	case key.Matches(msg, m.keys.MarkRead):
		item, ok := m.list.SelectedItem().(Item)
		if !ok || item.Notification.Read {
			return m, nil
		}
		return m, m.markRead(item.Notification.ID)

	case key.Matches(msg, m.keys.MarkAllRead):
		return m, m.markAllRead()

	case key.Matches(msg, m.keys.Delete):
		item, ok := m.list.SelectedItem().(Item)
		if !ok {
			return m, nil
		}
		m.showDetail = false
		return m, m.remove(item.Notification.ID)

	case key.Matches(msg, m.keys.Refresh):
		return m, m.Refresh()
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the inbox, optionally with the detail panel below.
func (m Model) View() string {
	if len(m.list.Items()) == 0 {
		return lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray).
			Render("No notifications.")
	}

	if !m.showDetail {
		return m.list.View()
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.list.View(),
		m.renderDetail(),
	)
}

// renderDetail shows the full title, message and timestamp of the
// selected notification.
func (m Model) renderDetail() string {
	item, ok := m.list.SelectedItem().(Item)
	if !ok {
		return ""
	}
	n := item.Notification

	header := theme.NotificationStyle(n.Type).Render(n.Title)
	when := theme.HelpStyle.Render(
		n.Timestamp.Local().Format("Mon Jan 2 15:04") +
			" (" + model.RelativeTime(n.Timestamp, time.Now()) + ")",
	)

	body := lipgloss.JoinVertical(lipgloss.Left, header, "", n.Message, "", when)
	return theme.DetailPanelStyle.Width(m.width - 4).Render(body)
}

// Refresh returns a command that fetches the listing and merges it into
// the collection. The fetch is fail-soft, so this never produces an
// error message.
func (m Model) Refresh() tea.Cmd {
	c := m.coordinator
	return func() tea.Msg {
		return LoadedMsg{Notifications: c.FetchAll(context.Background())}
	}
}

// UnreadCount returns the number of unread notifications for the header.
func (m Model) UnreadCount() int {
	return m.coordinator.UnreadCount()
}

// SetNotifications replaces the rendered collection. Used when a push
// arrives while another view is focused.
func (m *Model) SetNotifications(items []model.Notification) tea.Cmd {
	return m.list.SetItems(toItems(items))
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-2)
}

func (m Model) markRead(id string) tea.Cmd {
	c := m.coordinator
	return func() tea.Msg {
		err := c.MarkRead(context.Background(), id)
		return ActionDoneMsg{Notifications: c.Notifications(), Err: err}
	}
}

func (m Model) markAllRead() tea.Cmd {
	c := m.coordinator
	return func() tea.Msg {
		err := c.MarkAllRead(context.Background())
		return ActionDoneMsg{Notifications: c.Notifications(), Err: err}
	}
}

func (m Model) remove(id string) tea.Cmd {
	c := m.coordinator
	return func() tea.Msg {
		err := c.Remove(context.Background(), id)
		return ActionDoneMsg{Notifications: c.Notifications(), Err: err}
	}
}

// toItems converts notifications into list items.
func toItems(items []model.Notification) []list.Item {
	out := make([]list.Item, len(items))
	for i, n := range items {
		out[i] = Item{Notification: n}
	}
	return out
}
