package app

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/distrischool/schoolctl/internal/model"
	"github.com/distrischool/schoolctl/internal/realtime"
	"github.com/distrischool/schoolctl/internal/session"
)

// SessionEventMsg wraps a session lifecycle event for the UI.
type SessionEventMsg struct {
	Event session.Event
}

// ChannelStatusMsg carries a realtime connection state transition.
type ChannelStatusMsg struct {
	Status realtime.Status
}

// PushMsg carries a freshly pushed notification.
type PushMsg struct {
	Notification model.Notification
}

// Bridge forwards events published by the coordinators (on their own
// goroutines) into the Bubble Tea runtime. Events are queued on a
// buffered channel and drained by Wait commands.
type Bridge struct {
	msgCh chan tea.Msg
}

// NewBridge creates a bridge with room for a burst of events.
func NewBridge() *Bridge {
	return &Bridge{
		msgCh: make(chan tea.Msg, 32),
	}
}

// Send queues a message for the UI without blocking the publisher.
func (b *Bridge) Send(msg tea.Msg) {
	select {
	case b.msgCh <- msg:
	default:
		// Drop if the queue is full to avoid blocking a coordinator
	}
}

// Wait returns a tea.Cmd that delivers the next queued event. After
// processing the delivered message, call Wait again to keep listening.
func (b *Bridge) Wait() tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-b.msgCh
		if !ok {
			return nil
		}
		return msg
	}
}
