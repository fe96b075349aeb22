package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/distrischool/schoolctl/internal/api"
	"github.com/distrischool/schoolctl/internal/logging"
	"github.com/distrischool/schoolctl/internal/model"
)

func TestMain(m *testing.M) {
	logging.Init("error", "")
	os.Exit(m.Run())
}

// fakeRealtime records channel commands issued by the coordinator.
// When disconnectStarted and disconnectGate are set, Disconnect signals
// arrival and then blocks until the gate closes, holding the teardown
// open mid-flight.
type fakeRealtime struct {
	mu            sync.Mutex
	connects      []string
	disconnects   int
	tokenAtHangup []string
	gateway       *api.Client

	disconnectStarted chan struct{}
	disconnectGate    chan struct{}
}

func (f *fakeRealtime) Connect(token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connects = append(f.connects, token)
}

func (f *fakeRealtime) Disconnect() {
	if f.disconnectStarted != nil {
		f.disconnectStarted <- struct{}{}
		<-f.disconnectGate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.disconnects++
	if f.gateway != nil {
		f.tokenAtHangup = append(f.tokenAtHangup, f.gateway.Token())
	}
}

// authBackend is a configurable fake auth service. When loginStarted
// and loginGate are set, the login handler signals arrival and then
// blocks until the gate closes.
type authBackend struct {
	loginUser    model.User
	loginToken   string
	loginFail    string
	loginStarted chan struct{}
	loginGate    chan struct{}
	meStatus     int
	meUser       *model.User
}

func (b *authBackend) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		if b.loginStarted != nil {
			b.loginStarted <- struct{}{}
			<-b.loginGate
		}
		w.Header().Set("Content-Type", "application/json")
		if b.loginFail != "" {
			json.NewEncoder(w).Encode(map[string]any{
				"success": false,
				"message": b.loginFail,
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data": map[string]any{
				"token": b.loginToken,
				"user":  b.loginUser,
			},
		})
	})
	mux.HandleFunc("/api/v1/auth/me", func(w http.ResponseWriter, r *http.Request) {
		if b.meStatus != 0 && b.meStatus != http.StatusOK {
			http.Error(w, "unauthorized", b.meStatus)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data":    b.meUser,
		})
	})
	return mux
}

func adminUser() model.User {
	return model.User{
		ID:        "u1",
		Email:     "admin@school.edu",
		FirstName: "Alice",
		LastName:  "Admin",
		Roles:     []model.Role{model.RoleAdmin},
		Active:    true,
	}
}

func teacherUser() model.User {
	u := adminUser()
	u.Roles = []model.Role{model.RoleTeacher}
	return u
}

// newCoordinator spins up a fake backend and a wired coordinator.
func newCoordinator(t *testing.T, backend *authBackend) (*Coordinator, *fakeRealtime, *api.Client) {
	t.Helper()

	srv := httptest.NewServer(backend.handler())
	t.Cleanup(srv.Close)

	gateway := api.NewClient(srv.URL)
	channel := &fakeRealtime{gateway: gateway}
	c := New(gateway, api.NewAuthClient(gateway), channel)
	return c, channel, gateway
}

func collectEvents(c *Coordinator) *[]Event {
	var events []Event
	c.Events().Subscribe(func(e Event) { events = append(events, e) })
	return &events
}

func TestLoginAdminConnectsChannel(t *testing.T) {
	backend := &authBackend{loginUser: adminUser(), loginToken: "tok-123"}
	c, channel, gateway := newCoordinator(t, backend)
	events := collectEvents(c)

	user, err := c.Login(context.Background(), "admin@school.edu", "pw")
	require.NoError(t, err)

	assert.Equal(t, StateAuthenticated, c.State())
	assert.Equal(t, "Alice Admin", user.FullName())
	assert.Equal(t, "tok-123", gateway.Token())
	assert.Equal(t, []string{"tok-123"}, channel.connects)

	require.Len(t, *events, 1)
	assert.Equal(t, EventLoggedIn, (*events)[0].Kind)
}

func TestLoginNonAdminDoesNotConnectChannel(t *testing.T) {
	backend := &authBackend{loginUser: teacherUser(), loginToken: "tok-456"}
	c, channel, gateway := newCoordinator(t, backend)

	_, err := c.Login(context.Background(), "teacher@school.edu", "pw")
	require.NoError(t, err)

	assert.Equal(t, StateAuthenticated, c.State())
	assert.Equal(t, "tok-456", gateway.Token())
	assert.Empty(t, channel.connects)
}

func TestLoginRejectedByEnvelopeStaysAnonymous(t *testing.T) {
	backend := &authBackend{loginFail: "Invalid credentials"}
	c, channel, gateway := newCoordinator(t, backend)
	events := collectEvents(c)

	_, err := c.Login(context.Background(), "admin@school.edu", "wrong")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid credentials")

	assert.Equal(t, StateAnonymous, c.State())
	assert.Empty(t, gateway.Token())
	assert.Empty(t, channel.connects)
	assert.Empty(t, *events)
}

func TestLogoutDisconnectsBeforeDroppingToken(t *testing.T) {
	backend := &authBackend{loginUser: adminUser(), loginToken: "tok-789"}
	c, channel, gateway := newCoordinator(t, backend)

	_, err := c.Login(context.Background(), "admin@school.edu", "pw")
	require.NoError(t, err)

	c.Logout()

	assert.Equal(t, StateAnonymous, c.State())
	assert.Empty(t, gateway.Token())
	assert.Nil(t, c.User())
	// At hangup time the token was still installed on the gateway.
	require.NotEmpty(t, channel.tokenAtHangup)
	assert.Equal(t, "tok-789", channel.tokenAtHangup[len(channel.tokenAtHangup)-1])
}

func TestDoubleLogoutPublishesOneEvent(t *testing.T) {
	backend := &authBackend{loginUser: adminUser(), loginToken: "tok"}
	c, _, _ := newCoordinator(t, backend)

	_, err := c.Login(context.Background(), "admin@school.edu", "pw")
	require.NoError(t, err)

	events := collectEvents(c)
	c.Logout()
	c.Logout()

	require.Len(t, *events, 1)
	assert.Equal(t, EventLoggedOut, (*events)[0].Kind)
}

func TestUnauthorizedRequestForcesOneLogout(t *testing.T) {
	backend := &authBackend{loginUser: adminUser(), loginToken: "tok"}
	c, _, gateway := newCoordinator(t, backend)

	_, err := c.Login(context.Background(), "admin@school.edu", "pw")
	require.NoError(t, err)

	events := collectEvents(c)

	backend.meStatus = http.StatusUnauthorized
	auth := api.NewAuthClient(gateway)
	_, err = auth.Me(context.Background())
	require.Error(t, err)
	assert.True(t, api.IsAuthError(err))

	// A second rejected request must not produce a second event.
	_, err = auth.Me(context.Background())
	require.Error(t, err)

	forced := 0
	for _, e := range *events {
		if e.Kind == EventForcedLogout {
			forced++
		}
	}
	assert.Equal(t, 1, forced)
	assert.Equal(t, StateAnonymous, c.State())
	assert.Empty(t, gateway.Token())
}

func TestLogoutDuringLoginDiscardsCompletion(t *testing.T) {
	backend := &authBackend{
		loginUser:    adminUser(),
		loginToken:   "tok-stale",
		loginStarted: make(chan struct{}),
		loginGate:    make(chan struct{}),
	}
	c, channel, gateway := newCoordinator(t, backend)

	done := make(chan error, 1)
	go func() {
		_, err := c.Login(context.Background(), "admin@school.edu", "pw")
		done <- err
	}()

	<-backend.loginStarted
	c.Logout()
	close(backend.loginGate)

	err := <-done
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cancelled")

	assert.Equal(t, StateAnonymous, c.State())
	assert.Empty(t, gateway.Token())
	assert.Empty(t, channel.connects)
}

func TestLoginDuringTeardownWaitsForClear(t *testing.T) {
	backend := &authBackend{loginUser: adminUser(), loginToken: "tok-1"}
	c, channel, gateway := newCoordinator(t, backend)

	_, err := c.Login(context.Background(), "admin@school.edu", "pw")
	require.NoError(t, err)

	channel.disconnectStarted = make(chan struct{})
	channel.disconnectGate = make(chan struct{})

	logoutDone := make(chan struct{})
	go func() {
		c.Logout()
		close(logoutDone)
	}()
	<-channel.disconnectStarted

	// A second sign-in completing while the teardown is still clearing
	// must not have its token wiped by the stalled teardown.
	backend.loginToken = "tok-2"
	loginDone := make(chan error, 1)
	go func() {
		_, err := c.Login(context.Background(), "admin@school.edu", "pw")
		loginDone <- err
	}()

	close(channel.disconnectGate)
	require.NoError(t, <-loginDone)
	<-logoutDone

	assert.Equal(t, StateAuthenticated, c.State())
	assert.Equal(t, "tok-2", gateway.Token())
	assert.Equal(t, []string{"tok-1", "tok-2"}, channel.connects)
}

func TestRefreshUserUpdatesRecord(t *testing.T) {
	backend := &authBackend{loginUser: adminUser(), loginToken: "tok"}
	c, _, _ := newCoordinator(t, backend)

	_, err := c.Login(context.Background(), "admin@school.edu", "pw")
	require.NoError(t, err)

	updated := adminUser()
	updated.FirstName = "Alicia"
	backend.meUser = &updated

	events := collectEvents(c)
	user, err := c.RefreshUser(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Alicia", user.FirstName)
	assert.Equal(t, "Alicia", c.User().FirstName)
	require.Len(t, *events, 1)
	assert.Equal(t, EventUserUpdated, (*events)[0].Kind)
}

func TestRefreshUserTransportFailureKeepsRecord(t *testing.T) {
	backend := &authBackend{loginUser: adminUser(), loginToken: "tok"}
	c, _, _ := newCoordinator(t, backend)

	_, err := c.Login(context.Background(), "admin@school.edu", "pw")
	require.NoError(t, err)

	backend.meStatus = http.StatusInternalServerError
	_, err = c.RefreshUser(context.Background())
	require.Error(t, err)

	assert.Equal(t, StateAuthenticated, c.State())
	assert.Equal(t, "Alice Admin", c.User().FullName())
}
