// Package realtime manages the single persistent push connection to the
// backend's notification endpoint. The channel does not reconnect on
// its own; reconnection is the session coordinator's responsibility via
// a fresh Connect call.
package realtime

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/distrischool/schoolctl/internal/event"
	"github.com/distrischool/schoolctl/internal/logging"
)

// Status is the connection state of the channel.
type Status string

const (
	StatusDisconnected Status = "disconnected"
	StatusConnecting   Status = "connecting"
	StatusConnected    Status = "connected"
	StatusError        Status = "error"
)

// ErrNotConnected is returned by Send when no connection is open.
var ErrNotConnected = errors.New("realtime: not connected")

// Message is one inbound or outbound frame. The two types the client
// acts on are "notification" and "ping"; everything else is delivered
// to subscribers untouched and ignored by them.
//
// An inbound "ping" is NOT answered here. Replying with a "pong" frame
// is the consumer's responsibility (the notification coordinator does
// it); this mirrors the backend contract and is intentional.
type Message struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// EndpointPath is the push endpoint path on the gateway.
const EndpointPath = "/ws/notifications"

// Channel is a single duplex connection to the push endpoint,
// authenticated by the session token passed as a query parameter.
// All exported methods are safe for concurrent use.
type Channel struct {
	url       string
	heartbeat time.Duration
	dialer    *websocket.Dialer

	mu     sync.Mutex
	conn   *websocket.Conn
	status Status
	gen    uint64
	stopCh chan struct{}

	// writeMu serializes data frames on the single connection.
	writeMu sync.Mutex

	messages *event.Subject[Message]
	statuses *event.Subject[Status]
	errs     *event.Subject[error]
}

// New creates a channel for the gateway at baseURL (http or https; the
// scheme is mapped to ws/wss). heartbeat is the interval between
// outbound ping frames while connected; zero disables the heartbeat.
func New(baseURL string, heartbeat time.Duration) (*Channel, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing gateway url %q: %w", baseURL, err)
	}
	switch u.Scheme {
	case "https", "wss":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = EndpointPath
	u.RawQuery = ""

	return &Channel{
		url:       u.String(),
		heartbeat: heartbeat,
		dialer: &websocket.Dialer{
			HandshakeTimeout: 10 * time.Second,
		},
		status:   StatusDisconnected,
		messages: event.NewSubject[Message](),
		statuses: event.NewSubject[Status](),
		errs:     event.NewSubject[error](),
	}, nil
}

// Connect initiates a connection authenticated by token. It is
// idempotent: while the channel is connecting or connected the call is
// a no-op, so at most one underlying connection is ever open. The dial
// happens asynchronously; progress is reported on the status stream.
func (c *Channel) Connect(token string) {
	if token == "" {
		logging.Log.Warn("realtime: connect called without a token")
		return
	}

	c.mu.Lock()
	if c.status == StatusConnecting || c.status == StatusConnected {
		c.mu.Unlock()
		return
	}
	c.gen++
	gen := c.gen
	c.status = StatusConnecting
	c.mu.Unlock()

	c.statuses.Publish(StatusConnecting)
	go c.dial(gen, token)
}

// Disconnect tears the connection down unconditionally and is a no-op
// when already disconnected.
func (c *Channel) Disconnect() {
	c.mu.Lock()
	if c.status == StatusDisconnected {
		c.mu.Unlock()
		return
	}
	c.gen++
	c.teardownLocked()
	c.status = StatusDisconnected
	c.mu.Unlock()

	c.statuses.Publish(StatusDisconnected)
}

// Send writes one frame, best-effort. It returns ErrNotConnected when
// no connection is open.
func (c *Channel) Send(msg Message) error {
	c.mu.Lock()
	conn := c.conn
	connected := c.status == StatusConnected && conn != nil
	c.mu.Unlock()

	if !connected {
		return ErrNotConnected
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("realtime: sending %q frame: %w", msg.Type, err)
	}
	return nil
}

// OnMessage registers a handler for every inbound frame and returns its
// disposer. Handlers run in registration order; a panicking handler
// does not block the rest.
func (c *Channel) OnMessage(handler func(Message)) (unsubscribe func()) {
	return c.messages.Subscribe(handler)
}

// OnStatusChange registers a handler for connection state transitions.
func (c *Channel) OnStatusChange(handler func(Status)) (unsubscribe func()) {
	return c.statuses.Subscribe(handler)
}

// OnError registers a handler for connection errors.
func (c *Channel) OnError(handler func(error)) (unsubscribe func()) {
	return c.errs.Subscribe(handler)
}

// Status returns the current connection state.
func (c *Channel) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// IsConnected reports whether the channel currently holds an open
// connection.
func (c *Channel) IsConnected() bool {
	return c.Status() == StatusConnected
}

// dial performs the handshake for connection generation gen. A stale
// generation (Disconnect or a newer Connect happened meanwhile) is
// discarded without touching channel state.
func (c *Channel) dial(gen uint64, token string) {
	endpoint := c.url + "?token=" + url.QueryEscape(token)

	conn, resp, err := c.dialer.Dial(endpoint, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		if conn != nil {
			conn.Close()
		}
		return
	}

	if err != nil {
		c.status = StatusDisconnected
		c.mu.Unlock()
		c.reportFailure(fmt.Errorf("realtime: dialing %s: %w", c.url, err))
		return
	}

	c.conn = conn
	c.status = StatusConnected
	stop := make(chan struct{})
	c.stopCh = stop
	c.mu.Unlock()

	c.statuses.Publish(StatusConnected)
	logging.Log.Info("realtime: connected")

	go c.readPump(gen, conn)
	if c.heartbeat > 0 {
		go c.heartbeatLoop(stop)
	}
}

// readPump delivers inbound frames until the connection dies. Malformed
// frames are logged and dropped; the connection stays up.
func (c *Channel) readPump(gen uint64, conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			c.connectionLost(gen, err)
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			logging.Log.WithError(err).Warn("realtime: dropping malformed frame")
			continue
		}
		c.messages.Publish(msg)
	}
}

// connectionLost handles a terminal read failure for generation gen.
// The error status is published first, then the channel settles in
// disconnected; re-entering connected requires a fresh Connect.
func (c *Channel) connectionLost(gen uint64, cause error) {
	c.mu.Lock()
	if gen != c.gen {
		// An explicit Disconnect already tore this connection down.
		c.mu.Unlock()
		return
	}
	c.gen++
	c.teardownLocked()
	c.status = StatusDisconnected
	c.mu.Unlock()

	c.reportFailure(fmt.Errorf("realtime: connection lost: %w", cause))
}

// reportFailure publishes the error and the error→disconnected status
// pair for a failed or lost connection.
func (c *Channel) reportFailure(err error) {
	logging.Log.WithError(err).Warn("realtime: channel failure")
	c.errs.Publish(err)
	c.statuses.Publish(StatusError)
	c.statuses.Publish(StatusDisconnected)
}

// heartbeatLoop sends a ping frame at the configured interval while the
// connection generation it belongs to is alive.
func (c *Channel) heartbeatLoop(stop chan struct{}) {
	ticker := time.NewTicker(c.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if err := c.Send(Message{Type: "ping"}); err != nil {
				return
			}
		}
	}
}

// teardownLocked closes the connection and stops the heartbeat. The
// caller holds c.mu.
func (c *Channel) teardownLocked() {
	if c.conn != nil {
		deadline := time.Now().Add(time.Second)
		_ = c.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "client disconnect"),
			deadline,
		)
		c.conn.Close()
		c.conn = nil
	}
	if c.stopCh != nil {
		close(c.stopCh)
		c.stopCh = nil
	}
}
