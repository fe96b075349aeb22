package directory

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/distrischool/schoolctl/internal/model"
	"github.com/distrischool/schoolctl/internal/theme"
)

// StudentItem wraps a model.Student so it can be used in a bubbles/list.
type StudentItem struct {
	Student model.Student
}

// FilterValue returns the string used for fuzzy filtering.
func (i StudentItem) FilterValue() string { return i.Student.FullName }

// Title returns the student name for the list.
func (i StudentItem) Title() string { return i.Student.FullName }

// Description returns a short summary line for the list.
func (i StudentItem) Description() string {
	return strings.Join([]string{
		i.Student.RegistrationNumber,
		i.Student.Course,
		string(i.Student.Status),
	}, " | ")
}

// TeacherItem wraps a model.Teacher so it can be used in a bubbles/list.
type TeacherItem struct {
	Teacher model.Teacher
}

// FilterValue returns the string used for fuzzy filtering.
func (i TeacherItem) FilterValue() string { return i.Teacher.Name }

// Title returns the teacher name for the list.
func (i TeacherItem) Title() string { return i.Teacher.Name }

// Description returns a short summary line for the list.
func (i TeacherItem) Description() string {
	return strings.Join([]string{
		i.Teacher.EmployeeID,
		string(i.Teacher.Status),
	}, " | ")
}

// ItemDelegate implements list.ItemDelegate for rendering directory rows.
type ItemDelegate struct{}

// Height returns the number of lines each item takes.
func (d ItemDelegate) Height() int { return 1 }

// Spacing returns the number of blank lines between items.
func (d ItemDelegate) Spacing() int { return 0 }

// Update handles per-item messages (unused).
func (d ItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single directory row.
func (d ItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	isSelected := index == m.Index()

	var line string
	switch it := item.(type) {
	case StudentItem:
		s := it.Student
		badge := statusBadge(string(s.Status), s.Status == model.StudentActive)
		detail := lipgloss.NewStyle().
			Foreground(theme.ColorGray).
			Render(s.RegistrationNumber + "  " + s.Course)
		line = fmt.Sprintf("%s %s  %s", badge, s.FullName, detail)

	case TeacherItem:
		t := it.Teacher
		badge := statusBadge(string(t.Status), t.Status == model.TeacherActive)
		detail := lipgloss.NewStyle().
			Foreground(theme.ColorGray).
			Render(t.EmployeeID + "  " + strings.Join(t.Subjects, ", "))
		line = fmt.Sprintf("%s %s  %s", badge, t.Name, detail)

	default:
		return
	}

	if isSelected {
		line = theme.SelectedItemStyle.Render(line)
	} else {
		line = theme.ListItemStyle.Render(line)
	}

	fmt.Fprint(w, line)
}

// statusBadge renders a compact colored status tag.
func statusBadge(status string, active bool) string {
	style := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	if active {
		style = style.Foreground(theme.ColorGreen)
	} else {
		style = style.Foreground(theme.ColorGray)
	}
	if status == "" {
		status = "?"
	}
	return style.Render(status)
}
