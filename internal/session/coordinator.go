// Package session owns the authentication lifecycle: login, logout,
// restoring a persisted session, and keeping the realtime channel's
// connection state in lockstep with the session state.
package session

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/distrischool/schoolctl/internal/api"
	"github.com/distrischool/schoolctl/internal/credential"
	"github.com/distrischool/schoolctl/internal/event"
	"github.com/distrischool/schoolctl/internal/logging"
	"github.com/distrischool/schoolctl/internal/model"
)

// State is the session lifecycle phase.
type State string

const (
	StateAnonymous      State = "anonymous"
	StateAuthenticating State = "authenticating"
	StateAuthenticated  State = "authenticated"
)

// EventKind classifies session events for subscribers.
type EventKind string

const (
	EventLoggedIn     EventKind = "logged-in"
	EventLoggedOut    EventKind = "logged-out"
	EventForcedLogout EventKind = "forced-logout"
	EventUserUpdated  EventKind = "user-updated"
)

// Event is published whenever the session state or the current user
// record changes.
type Event struct {
	Kind    EventKind
	User    *model.User
	Message string
}

// RealtimeChannel is the slice of the realtime channel the session
// coordinator drives. *realtime.Channel satisfies it.
type RealtimeChannel interface {
	Connect(token string)
	Disconnect()
}

// Coordinator serializes all session transitions. The realtime channel
// is connected only for users holding the ADMIN role and is torn down
// before the token is dropped on logout.
type Coordinator struct {
	auth    *api.AuthClient
	gateway *api.Client
	channel RealtimeChannel

	// opMu is held for the whole of a setup or teardown, side effects
	// included, so the channel/token/credential mutations of one
	// transition never interleave with another's.
	opMu sync.Mutex

	// mu guards the fields below for cheap concurrent reads.
	mu    sync.Mutex
	state State
	user  *model.User
	gen   uint64

	events *event.Subject[Event]
}

// New creates a coordinator wired to the gateway client, the auth
// service wrapper and the realtime channel. It subscribes to the
// gateway's unauthorized signal so any rejected request anywhere in the
// app forces a logout.
func New(gateway *api.Client, auth *api.AuthClient, channel RealtimeChannel) *Coordinator {
	c := &Coordinator{
		auth:    auth,
		gateway: gateway,
		channel: channel,
		state:   StateAnonymous,
		events:  event.NewSubject[Event](),
	}
	gateway.Unauthorized().Subscribe(func(u api.Unauthorized) {
		logging.Log.WithField("path", u.Path).Info("session: request unauthorized, forcing logout")
		c.ForceLogout("Your session has expired. Please sign in again.")
	})
	return c
}

// Events exposes the session event subject. Handlers run on the
// publishing goroutine and must not call back into the coordinator.
func (c *Coordinator) Events() *event.Subject[Event] {
	return c.events
}

// State returns the current session state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// User returns the current user record, or nil when anonymous.
func (c *Coordinator) User() *model.User {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.user
}

// Login exchanges credentials for a session. On success the token is
// installed on the gateway, the session is persisted to the keyring,
// and the realtime channel is connected when the user holds the ADMIN
// role. A backend rejection (including a 2xx envelope with
// success=false) leaves the session anonymous.
func (c *Coordinator) Login(ctx context.Context, email, password string) (*model.User, error) {
	c.mu.Lock()
	if c.state == StateAuthenticating {
		c.mu.Unlock()
		return nil, &api.APIError{Message: "a sign-in is already in progress"}
	}
	c.state = StateAuthenticating
	gen := c.gen
	c.mu.Unlock()

	data, err := c.auth.Login(ctx, email, password)
	if err != nil {
		c.mu.Lock()
		if c.gen == gen {
			c.state = StateAnonymous
		}
		c.mu.Unlock()
		return nil, err
	}

	if !c.establish(gen, data.Token, &data.User, true) {
		return nil, &api.APIError{Message: "sign-in was cancelled"}
	}

	user := data.User
	return &user, nil
}

// Register creates a new account. The session stays anonymous; the
// user signs in once the account is verified.
func (c *Coordinator) Register(ctx context.Context, req api.RegisterRequest) (*model.User, error) {
	return c.auth.Register(ctx, req)
}

// ForgotPassword requests a password-reset email for the address.
func (c *Coordinator) ForgotPassword(ctx context.Context, email string) error {
	return c.auth.ForgotPassword(ctx, email)
}

// ResetPassword completes a password reset with the emailed token.
func (c *Coordinator) ResetPassword(ctx context.Context, token, newPassword, confirmPassword string) error {
	return c.auth.ResetPassword(ctx, token, newPassword, confirmPassword)
}

// Restore revives a persisted session from the keyring. It returns the
// cached user when a token was found, or nil without error when no
// session is stored. The restored user record may be stale; callers
// follow up with RefreshUser.
func (c *Coordinator) Restore() *model.User {
	token, err := credential.Get(credential.KeyAuthToken)
	if err != nil || token == "" {
		return nil
	}

	var user *model.User
	if raw, err := credential.Get(credential.KeyCachedUser); err == nil && raw != "" {
		var u model.User
		if err := json.Unmarshal([]byte(raw), &u); err == nil {
			user = &u
		} else {
			logging.Log.WithError(err).Warn("session: cached user record is corrupt")
		}
	}

	c.mu.Lock()
	gen := c.gen
	c.mu.Unlock()

	c.establish(gen, token, user, false)
	logging.Log.Info("session: restored from keyring")
	return c.User()
}

// RefreshUser re-fetches the current user for the active token. An
// authentication failure forces a logout; any other failure keeps the
// existing record. A refresh that completes after the session was torn
// down is discarded.
func (c *Coordinator) RefreshUser(ctx context.Context) (*model.User, error) {
	c.mu.Lock()
	gen := c.gen
	c.mu.Unlock()

	user, err := c.auth.Me(ctx)
	if err != nil {
		if api.IsAuthError(err) {
			// The gateway already published the unauthorized event; the
			// forced logout has run by the time we get here.
			return nil, err
		}
		logging.Log.WithError(err).Warn("session: refreshing user failed, keeping cached record")
		return nil, err
	}

	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.mu.Lock()
	if c.gen != gen || c.state != StateAuthenticated {
		c.mu.Unlock()
		logging.Log.Info("session: discarding stale user refresh")
		return user, nil
	}
	c.user = user
	c.mu.Unlock()

	c.persistUser(user)
	c.syncChannel(user)
	c.events.Publish(Event{Kind: EventUserUpdated, User: user})
	return user, nil
}

// Logout tears the session down in order: realtime channel first, then
// the gateway token, then the persisted credentials, then one
// logged-out event. Calling Logout while anonymous is a no-op.
func (c *Coordinator) Logout() {
	c.teardown(EventLoggedOut, "Signed out.")
}

// ForceLogout is the involuntary variant used when the backend rejects
// the token. Repeated forces while already anonymous publish nothing,
// so a burst of rejected requests produces exactly one event.
func (c *Coordinator) ForceLogout(message string) {
	c.teardown(EventForcedLogout, message)
}

// establish installs a session: token on the gateway, user in memory,
// channel connected for admins, credentials persisted when persist is
// set, and one logged-in event. A completion whose generation no longer
// matches lost a race against a teardown and is discarded. opMu is held
// throughout, so an in-flight teardown finishes clearing before the new
// session's token goes in.
func (c *Coordinator) establish(gen uint64, token string, user *model.User, persist bool) bool {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.mu.Lock()
	if c.gen != gen {
		c.mu.Unlock()
		logging.Log.Info("session: discarding stale sign-in completion")
		return false
	}
	c.state = StateAuthenticated
	c.user = user
	c.mu.Unlock()

	c.gateway.SetToken(token)

	if persist {
		if err := credential.Set(credential.KeyAuthToken, token); err != nil {
			logging.Log.WithError(err).Warn("session: persisting token failed")
		}
		c.persistUser(user)
	}

	c.syncChannel(user)
	c.events.Publish(Event{Kind: EventLoggedIn, User: user})
	return true
}

// teardown is the single logout path shared by Logout and ForceLogout.
// opMu is held for the full disconnect-then-clear sequence.
func (c *Coordinator) teardown(kind EventKind, message string) {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.mu.Lock()
	if c.state == StateAnonymous {
		c.mu.Unlock()
		return
	}
	c.state = StateAnonymous
	c.user = nil
	c.gen++
	c.mu.Unlock()

	// Channel before token: the channel must not outlive the session.
	c.channel.Disconnect()
	c.gateway.SetToken("")

	if err := credential.Delete(credential.KeyAuthToken); err != nil {
		logging.Log.WithError(err).Warn("session: removing persisted token failed")
	}
	if err := credential.Delete(credential.KeyCachedUser); err != nil {
		logging.Log.WithError(err).Warn("session: removing cached user failed")
	}

	c.events.Publish(Event{Kind: kind, Message: message})
}

// syncChannel connects the realtime channel for admins and disconnects
// it for everyone else. Called whenever the user record changes.
func (c *Coordinator) syncChannel(user *model.User) {
	if user.HasRole(model.RoleAdmin) {
		c.channel.Connect(c.gateway.Token())
		return
	}
	c.channel.Disconnect()
}

// persistUser caches the user record in the keyring for fast restore.
func (c *Coordinator) persistUser(user *model.User) {
	if user == nil {
		return
	}
	raw, err := json.Marshal(user)
	if err != nil {
		logging.Log.WithError(err).Warn("session: encoding user record failed")
		return
	}
	if err := credential.Set(credential.KeyCachedUser, string(raw)); err != nil {
		logging.Log.WithError(err).Warn("session: caching user record failed")
	}
}
