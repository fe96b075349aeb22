// Package app wires the coordinators and views into the root Bubble Tea
// model: view routing, the shared layout frame, session-driven view
// switching and transient toasts for pushed notifications.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/distrischool/schoolctl/internal/api"
	"github.com/distrischool/schoolctl/internal/keys"
	"github.com/distrischool/schoolctl/internal/model"
	"github.com/distrischool/schoolctl/internal/notify"
	"github.com/distrischool/schoolctl/internal/realtime"
	"github.com/distrischool/schoolctl/internal/session"
	"github.com/distrischool/schoolctl/internal/theme"
	"github.com/distrischool/schoolctl/internal/ui"
	"github.com/distrischool/schoolctl/internal/ui/directory"
	helpview "github.com/distrischool/schoolctl/internal/ui/help"
	"github.com/distrischool/schoolctl/internal/ui/inbox"
	"github.com/distrischool/schoolctl/internal/ui/login"
)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewLogin ViewState = iota
	ViewInbox
	ViewDirectory
	ViewHelp
)

// toastDuration is how long a transient popup stays on screen.
const toastDuration = 4 * time.Second

// restoredMsg carries the result of the keyring session restore.
type restoredMsg struct {
	user *model.User
}

// refreshTickMsg drives the periodic notification refresh.
type refreshTickMsg struct{}

// toastExpiredMsg clears a toast after its display time.
type toastExpiredMsg struct {
	seq int
}

// Deps bundles the coordinators and service clients the root model is
// built from.
type Deps struct {
	Session  *session.Coordinator
	Notifier *notify.Coordinator
	Channel  *realtime.Channel
	Students *api.StudentsClient
	Teachers *api.TeachersClient
	// RefreshInterval is the period between automatic notification
	// refreshes while signed in. Zero disables the timer.
	RefreshInterval time.Duration
}

// Model is the root Bubble Tea model that manages view routing, layout
// and session-driven transitions.
type Model struct {
	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	keys         *keys.KeyMap

	sess     *session.Coordinator
	notifier *notify.Coordinator
	channel  *realtime.Channel
	bridge   *Bridge

	loginView     login.Model
	inboxView     inbox.Model
	directoryView directory.Model
	helpView      helpview.Model

	connStatus      realtime.Status
	refreshInterval time.Duration

	toast    string
	toastErr bool
	toastSeq int

	ready bool
}

// New creates the root model and subscribes the bridge to every event
// stream the UI renders.
func New(deps Deps) Model {
	k := keys.DefaultKeyMap()
	bridge := NewBridge()

	deps.Session.Events().Subscribe(func(e session.Event) {
		bridge.Send(SessionEventMsg{Event: e})
	})
	deps.Channel.OnStatusChange(func(s realtime.Status) {
		bridge.Send(ChannelStatusMsg{Status: s})
	})
	deps.Notifier.Attach(deps.Channel, func(n model.Notification) {
		bridge.Send(PushMsg{Notification: n})
	})

	return Model{
		currentView:     ViewLogin,
		keys:            k,
		sess:            deps.Session,
		notifier:        deps.Notifier,
		channel:         deps.Channel,
		bridge:          bridge,
		loginView:       login.New(deps.Session, 80, 24),
		inboxView:       inbox.New(deps.Notifier, k, 80, 24),
		directoryView:   directory.New(deps.Students, deps.Teachers, k, 80, 24),
		helpView:        helpview.New(k, 80, 24),
		connStatus:      realtime.StatusDisconnected,
		refreshInterval: deps.RefreshInterval,
	}
}

// Init restores a persisted session and starts the event bridge.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.restore(),
		m.bridge.Wait(),
		m.loginView.Init(),
	)
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		contentWidth := m.layout.ContentWidth()
		contentHeight := m.layout.ContentHeight()
		m.loginView.SetSize(contentWidth, contentHeight)
		m.inboxView.SetSize(contentWidth, contentHeight)
		m.directoryView.SetSize(contentWidth, contentHeight)
		m.helpView.SetSize(contentWidth, contentHeight)
		// Forward to the active view so huh forms can size themselves.
		return m.updateActiveView(msg)

	case restoredMsg:
		if msg.user == nil {
			m.currentView = ViewLogin
			return m, nil
		}
		return m.enterSignedIn()

	case login.DoneMsg:
		return m.enterSignedIn()

	case SessionEventMsg:
		return m.handleSessionEvent(msg.Event)

	case ChannelStatusMsg:
		m.connStatus = msg.Status
		return m, m.bridge.Wait()

	case PushMsg:
		cmd := m.showToast(msg.Notification.Title, false)
		// Sync the inbox list regardless of the focused view so the
		// entry is already there when the user switches back.
		syncCmd := m.inboxView.SetNotifications(m.notifier.Notifications())
		return m, tea.Batch(cmd, syncCmd, m.bridge.Wait())

	case refreshTickMsg:
		if m.sess.State() != session.StateAuthenticated {
			return m, nil
		}
		return m, tea.Batch(m.inboxView.Refresh(), m.nextRefreshTick())

	case toastExpiredMsg:
		if msg.seq == m.toastSeq {
			m.toast = ""
		}
		return m, nil

	case tea.KeyMsg:
		if newModel, cmd, handled := m.handleGlobalKeys(msg); handled {
			return newModel, cmd
		}
	}

	return m.updateActiveView(msg)
}

// handleGlobalKeys processes keys that apply regardless of the active
// view. It reports whether the key was consumed.
func (m Model) handleGlobalKeys(msg tea.KeyMsg) (Model, tea.Cmd, bool) {
	if msg.String() == "ctrl+c" {
		m.channel.Disconnect()
		return m, tea.Quit, true
	}

	// The login form owns all other keys while it is focused.
	if m.currentView == ViewLogin {
		return m, nil, false
	}

	switch {
	case msg.String() == "q":
		if m.currentView == ViewInbox || m.currentView == ViewDirectory {
			m.channel.Disconnect()
			return m, tea.Quit, true
		}

	case key.Matches(msg, m.keys.Help):
		if m.currentView == ViewHelp {
			m.currentView = m.previousView
			return m, nil, true
		}
		m.previousView = m.currentView
		m.currentView = ViewHelp
		return m, nil, true

	case key.Matches(msg, m.keys.Back):
		if m.currentView == ViewHelp {
			m.currentView = m.previousView
			return m, nil, true
		}

	case key.Matches(msg, m.keys.ViewInbox):
		if m.currentView == ViewDirectory {
			m.currentView = ViewInbox
			return m, nil, true
		}

	case key.Matches(msg, m.keys.ViewStudents):
		if m.currentView == ViewInbox || m.currentView == ViewDirectory {
			prev := m.currentView
			m.currentView = ViewDirectory
			cmd := m.directoryView.SetKind(directory.KindStudents)
			if prev == ViewInbox && cmd == nil {
				cmd = m.directoryView.Load()
			}
			return m, cmd, true
		}

	case key.Matches(msg, m.keys.ViewTeachers):
		if m.currentView == ViewInbox || m.currentView == ViewDirectory {
			m.currentView = ViewDirectory
			cmd := m.directoryView.SetKind(directory.KindTeachers)
			return m, cmd, true
		}

	case key.Matches(msg, m.keys.Logout):
		return m, m.logout(), true
	}

	return m, nil, false
}

// handleSessionEvent reacts to session lifecycle transitions.
func (m Model) handleSessionEvent(e session.Event) (tea.Model, tea.Cmd) {
	switch e.Kind {
	case session.EventLoggedOut, session.EventForcedLogout:
		m.notifier.Clear()
		m.currentView = ViewLogin
		m.loginView = login.New(m.sess, m.layout.ContentWidth(), m.layout.ContentHeight())

		var toastCmd tea.Cmd
		if e.Kind == session.EventForcedLogout && e.Message != "" {
			toastCmd = m.showToast(e.Message, true)
		}
		return m, tea.Batch(m.loginView.Init(), toastCmd, m.bridge.Wait())

	case session.EventUserUpdated:
		return m, m.bridge.Wait()

	default:
		return m, m.bridge.Wait()
	}
}

// enterSignedIn switches to the inbox after a login or restore.
func (m Model) enterSignedIn() (tea.Model, tea.Cmd) {
	m.currentView = ViewInbox
	return m, tea.Batch(
		m.loadCache(),
		m.inboxView.Refresh(),
		m.refreshUser(),
		m.nextRefreshTick(),
	)
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewLogin:
		m.loginView, cmd = m.loginView.Update(msg)
	case ViewInbox:
		m.inboxView, cmd = m.inboxView.Update(msg)
	case ViewDirectory:
		m.directoryView, cmd = m.directoryView.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	}

	return m, cmd
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	if m.currentView == ViewLogin {
		return m.loginView.View()
	}

	headerTitle := "schoolctl"
	if unread := m.inboxView.UnreadCount(); unread > 0 {
		headerTitle = fmt.Sprintf("schoolctl [%d unread]", unread)
	}
	header := m.layout.RenderHeader(headerTitle, m.headerStatus())
	content := m.renderContent()
	statusBar := m.layout.RenderStatusBar(m.statusLine())

	return m.layout.RenderWithFrame(header, content, statusBar)
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewInbox:
		return m.inboxView.View()
	case ViewDirectory:
		return m.directoryView.View()
	case ViewHelp:
		return m.helpView.View()
	default:
		return ""
	}
}

// headerStatus describes the signed-in user and the push connection.
func (m Model) headerStatus() string {
	name := m.sess.User().FullName()
	if name == "" {
		name = "signed in"
	}
	return fmt.Sprintf("%s | push: %s", name, m.connStatus)
}

// statusLine returns the status bar content: an active toast wins over
// the key hints.
func (m Model) statusLine() string {
	if m.toast != "" {
		if m.toastErr {
			return theme.ErrorToastStyle.Render(m.toast)
		}
		return theme.ToastStyle.Render(m.toast)
	}

	switch m.currentView {
	case ViewHelp:
		return "? close help | esc back"
	case ViewDirectory:
		return "1 notifications | 2 students | 3 teachers | / search | n/p page | q quit"
	default:
		return "m mark read | M mark all | x delete | r refresh | 2 students | ? help | q quit"
	}
}

// showToast displays a transient popup and schedules its expiry.
func (m *Model) showToast(text string, isErr bool) tea.Cmd {
	m.toast = text
	m.toastErr = isErr
	m.toastSeq++
	seq := m.toastSeq
	return tea.Tick(toastDuration, func(time.Time) tea.Msg {
		return toastExpiredMsg{seq: seq}
	})
}

// restore revives a persisted session from the keyring.
func (m Model) restore() tea.Cmd {
	s := m.sess
	return func() tea.Msg {
		return restoredMsg{user: s.Restore()}
	}
}

// refreshUser re-fetches the user record for the active token.
func (m Model) refreshUser() tea.Cmd {
	s := m.sess
	return func() tea.Msg {
		_, _ = s.RefreshUser(context.Background())
		return nil
	}
}

// loadCache seeds the inbox from the local cache before the first fetch.
func (m Model) loadCache() tea.Cmd {
	c := m.notifier
	return func() tea.Msg {
		return inbox.LoadedMsg{Notifications: c.LoadCache(context.Background())}
	}
}

// logout tears the session down off the UI goroutine.
func (m Model) logout() tea.Cmd {
	s := m.sess
	return func() tea.Msg {
		s.Logout()
		return nil
	}
}

// nextRefreshTick schedules the next periodic notification refresh.
func (m Model) nextRefreshTick() tea.Cmd {
	if m.refreshInterval <= 0 {
		return nil
	}
	return tea.Tick(m.refreshInterval, func(time.Time) tea.Msg {
		return refreshTickMsg{}
	})
}
