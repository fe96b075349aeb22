package app

import (
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/distrischool/schoolctl/internal/api"
	"github.com/distrischool/schoolctl/internal/logging"
	"github.com/distrischool/schoolctl/internal/model"
	"github.com/distrischool/schoolctl/internal/notify"
	"github.com/distrischool/schoolctl/internal/realtime"
	"github.com/distrischool/schoolctl/internal/session"
)

func TestMain(m *testing.M) {
	logging.Init("error", "")
	os.Exit(m.Run())
}

// pushFeed injects realtime frames into an attached coordinator.
type pushFeed struct {
	handlers []func(realtime.Message)
}

func (f *pushFeed) OnMessage(h func(realtime.Message)) func() {
	f.handlers = append(f.handlers, h)
	return func() {}
}

func (f *pushFeed) Send(realtime.Message) error { return nil }

func (f *pushFeed) push(t *testing.T, n model.Notification) {
	t.Helper()
	raw, err := json.Marshal(n)
	require.NoError(t, err)
	for _, h := range f.handlers {
		h(realtime.Message{Type: "notification", Data: raw})
	}
}

// newTestModel builds a root model on clients that never reach the
// network.
func newTestModel(t *testing.T) (Model, *notify.Coordinator) {
	t.Helper()

	gateway := api.NewClient("http://localhost:1")
	channel, err := realtime.New("http://localhost:1", time.Second)
	require.NoError(t, err)

	notifier := notify.New(api.NewNotificationsClient(gateway), nil)
	sess := session.New(gateway, api.NewAuthClient(gateway), channel)

	m := New(Deps{
		Session:  sess,
		Notifier: notifier,
		Channel:  channel,
		Students: api.NewStudentsClient(gateway),
		Teachers: api.NewTeachersClient(gateway),
	})
	return m, notifier
}

func TestPushWhileDirectoryFocusedSyncsInbox(t *testing.T) {
	m, notifier := newTestModel(t)
	m.currentView = ViewDirectory

	feed := &pushFeed{}
	notifier.Attach(feed, nil)
	feed.push(t, model.Notification{
		ID:        "n1",
		Type:      model.NotificationUserCreated,
		Title:     "New User Created",
		Message:   "User Ana created successfully",
		Timestamp: time.Now(),
	})

	updated, _ := m.Update(PushMsg{Notification: notifier.Notifications()[0]})
	root, ok := updated.(Model)
	require.True(t, ok)

	assert.Equal(t, ViewDirectory, root.currentView)
	assert.Equal(t, "New User Created", root.toast)
	// The inbox list already holds the entry when the user switches back.
	assert.Contains(t, root.inboxView.View(), "New User Created")
}
