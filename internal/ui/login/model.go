// Package login renders the sign-in form and drives the session
// coordinator's login flow.
package login

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/distrischool/schoolctl/internal/model"
	"github.com/distrischool/schoolctl/internal/session"
	"github.com/distrischool/schoolctl/internal/theme"
)

// Mode represents the current state of the login view.
type Mode int

const (
	ModeForm           Mode = iota // Credential entry
	ModeAuthenticating             // Waiting for the auth service
)

// DoneMsg signals a completed sign-in.
type DoneMsg struct {
	User *model.User
}

// resultMsg carries the outcome of a login attempt.
type resultMsg struct {
	user *model.User
	err  error
}

// Model is the sign-in view component.
type Model struct {
	mode    Mode
	session *session.Coordinator

	form     *huh.Form
	email    string
	password string

	spinner  spinner.Model
	loginErr error

	width, height int
}

// New creates a login view driving the given session coordinator.
func New(s *session.Coordinator, width, height int) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		mode:    ModeForm,
		session: s,
		spinner: sp,
		width:   width,
		height:  height,
	}
	m.form = m.buildForm()
	return m
}

// Init starts the credential form.
func (m Model) Init() tea.Cmd {
	return m.form.Init()
}

// Update handles messages for the login view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case resultMsg:
		if msg.err != nil {
			m.loginErr = msg.err
			m.mode = ModeForm
			m.password = ""
			m.form = m.buildForm()
			return m, m.form.Init()
		}
		return m, func() tea.Msg { return DoneMsg{User: msg.user} }

	case spinner.TickMsg:
		if m.mode == ModeAuthenticating {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	if m.mode != ModeForm || m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.mode = ModeAuthenticating
		m.loginErr = nil
		return m, tea.Batch(m.spinner.Tick, m.login())
	}
	if m.form.State == huh.StateAborted {
		return m, tea.Quit
	}

	return m, cmd
}

// View renders the login view.
func (m Model) View() string {
	style := lipgloss.NewStyle().
		Padding(1, 2).
		Width(m.width).
		Height(m.height)

	if m.mode == ModeAuthenticating {
		return style.Render(fmt.Sprintf(
			"%s Signing in...",
			m.spinner.View(),
		))
	}

	var b strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)
	b.WriteString(titleStyle.Render("Sign in to DistriSchool"))
	b.WriteString("\n\n")

	if m.loginErr != nil {
		errStyle := lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.ColorRed).
			MarginBottom(1)
		b.WriteString(errStyle.Render(m.loginErr.Error()))
		b.WriteString("\n\n")
	}

	if m.form != nil {
		b.WriteString(m.form.View())
	}

	return style.Render(b.String())
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Placeholder("admin@school.edu").
				Value(&m.email).
				Validate(validateRequired("Email")),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&m.password).
				Validate(validateRequired("Password")),
		),
	).WithWidth(m.formWidth())
}

// login returns a command that performs the credential exchange.
func (m Model) login() tea.Cmd {
	s := m.session
	email := m.email
	password := m.password
	return func() tea.Msg {
		user, err := s.Login(context.Background(), email, password)
		return resultMsg{user: user, err: err}
	}
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 80 {
		w = 80
	}
	return w
}

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}
