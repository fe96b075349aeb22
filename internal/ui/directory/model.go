// Package directory renders the school directory: paged student and
// teacher listings with a name search for students.
package directory

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/distrischool/schoolctl/internal/api"
	"github.com/distrischool/schoolctl/internal/keys"
	"github.com/distrischool/schoolctl/internal/model"
	"github.com/distrischool/schoolctl/internal/theme"
)

// Kind selects which directory listing is shown.
type Kind int

const (
	KindStudents Kind = iota
	KindTeachers
)

const pageSize = 50

// StudentsLoadedMsg is sent when a student page has been fetched.
type StudentsLoadedMsg struct {
	Page *api.Page[model.Student]
	Err  error
}

// TeachersLoadedMsg is sent when a teacher page has been fetched.
type TeachersLoadedMsg struct {
	Page *api.Page[model.Teacher]
	Err  error
}

// Model is the directory view component.
type Model struct {
	list        list.Model
	students    *api.StudentsClient
	teachers    *api.TeachersClient
	keys        *keys.KeyMap
	kind        Kind
	page        int
	lastPage    bool
	query       string
	searchMode  bool
	searchInput textinput.Model
	loadErr     error
	width       int
	height      int
}

// New creates a directory view over the given service clients.
func New(students *api.StudentsClient, teachers *api.TeachersClient, k *keys.KeyMap, width, height int) Model {
	l := list.New([]list.Item{}, ItemDelegate{}, width, height-2)
	l.Title = "Students"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	si := textinput.New()
	si.Placeholder = "search students by name..."
	si.Prompt = "/ "
	si.Width = width - 4

	return Model{
		list:        l,
		students:    students,
		teachers:    teachers,
		keys:        k,
		kind:        KindStudents,
		searchInput: si,
		width:       width,
		height:      height,
	}
}

// Init returns a command that loads the first page.
func (m Model) Init() tea.Cmd {
	return m.Load()
}

// SetKind switches between the student and teacher listings and reloads
// from the first page.
func (m *Model) SetKind(kind Kind) tea.Cmd {
	if m.kind == kind {
		return nil
	}
	m.kind = kind
	m.page = 0
	m.query = ""
	m.searchMode = false
	if kind == KindTeachers {
		m.list.Title = "Teachers"
	} else {
		m.list.Title = "Students"
	}
	return m.Load()
}

// Kind returns the active listing kind.
func (m Model) Kind() Kind {
	return m.kind
}

// Update handles messages for the directory view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case StudentsLoadedMsg:
		if msg.Err != nil {
			m.loadErr = msg.Err
			return m, nil
		}
		m.loadErr = nil
		m.lastPage = msg.Page.Last
		items := make([]list.Item, len(msg.Page.Content))
		for i, s := range msg.Page.Content {
			items[i] = StudentItem{Student: s}
		}
		cmd := m.list.SetItems(items)
		return m, cmd

	case TeachersLoadedMsg:
		if msg.Err != nil {
			m.loadErr = msg.Err
			return m, nil
		}
		m.loadErr = nil
		m.lastPage = msg.Page.Last
		items := make([]list.Item, len(msg.Page.Content))
		for i, t := range msg.Page.Content {
			items[i] = TeacherItem{Teacher: t}
		}
		cmd := m.list.SetItems(items)
		return m, cmd

	case tea.KeyMsg:
		if m.searchMode {
			return m.handleSearchKeys(msg)
		}
		return m.handleNormalKeys(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// handleSearchKeys processes key input while in search mode.
func (m Model) handleSearchKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searchMode = false
		m.query = m.searchInput.Value()
		m.page = 0
		return m, m.Load()

	case "esc":
		m.searchMode = false
		m.searchInput.Reset()
		m.query = ""
		m.page = 0
		return m, m.Load()
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

// handleNormalKeys processes key input in normal (non-search) mode.
func (m Model) handleNormalKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Search):
		if m.kind != KindStudents {
			return m, nil
		}
		m.searchMode = true
		m.searchInput.Reset()
		return m, m.searchInput.Focus()

	case key.Matches(msg, m.keys.Refresh):
		return m, m.Load()

	case msg.String() == "n":
		if m.lastPage {
			return m, nil
		}
		m.page++
		return m, m.Load()

	case msg.String() == "p":
		if m.page == 0 {
			return m, nil
		}
		m.page--
		return m, m.Load()
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the directory view.
func (m Model) View() string {
	if m.searchMode {
		searchBar := lipgloss.NewStyle().
			Foreground(theme.ColorWhite).
			Padding(0, 1).
			Render(m.searchInput.View())
		return lipgloss.JoinVertical(lipgloss.Left, searchBar, m.list.View())
	}

	if m.loadErr != nil {
		return lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorRed).
			Render("Could not load the directory.\n" + m.loadErr.Error())
	}

	if len(m.list.Items()) == 0 {
		return lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray).
			Render("No records found.")
	}

	return m.list.View()
}

// Load returns a command that fetches the current page of the active
// listing.
func (m Model) Load() tea.Cmd {
	kind := m.kind
	page := m.page
	query := m.query
	students := m.students
	teachers := m.teachers

	return func() tea.Msg {
		ctx := context.Background()
		if kind == KindTeachers {
			result, err := teachers.List(ctx, page, pageSize)
			return TeachersLoadedMsg{Page: result, Err: err}
		}
		if query != "" {
			result, err := students.Search(ctx, model.StudentSearch{
				Name: query,
				Page: page,
				Size: pageSize,
			})
			return StudentsLoadedMsg{Page: result, Err: err}
		}
		result, err := students.List(ctx, page, pageSize)
		return StudentsLoadedMsg{Page: result, Err: err}
	}
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-2)
	m.searchInput.Width = width - 4
}
