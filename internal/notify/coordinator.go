// Package notify merges the REST notification listing with realtime
// push delivery into one deduplicated, read-tracked collection.
package notify

import (
	"context"
	"sync"

	"github.com/distrischool/schoolctl/internal/api"
	"github.com/distrischool/schoolctl/internal/logging"
	"github.com/distrischool/schoolctl/internal/model"
	"github.com/distrischool/schoolctl/internal/realtime"
	"github.com/distrischool/schoolctl/internal/store"
)

// Channel is the slice of the realtime channel the coordinator uses.
// *realtime.Channel satisfies it.
type Channel interface {
	OnMessage(handler func(realtime.Message)) (unsubscribe func())
	Send(msg realtime.Message) error
}

// Coordinator owns the in-memory notification collection. Identity is
// the notification id: whichever source delivers an id first wins, and
// later duplicates are no-ops. All methods are safe for concurrent use.
type Coordinator struct {
	api   *api.NotificationsClient
	cache store.NotificationStore

	mu    sync.Mutex
	seen  map[string]struct{}
	items []model.Notification
}

// New creates a coordinator. cache may be nil to disable the local
// inbox cache.
func New(client *api.NotificationsClient, cache store.NotificationStore) *Coordinator {
	return &Coordinator{
		api:   client,
		cache: cache,
		seen:  make(map[string]struct{}),
	}
}

// LoadCache seeds the collection from the local cache and returns the
// resulting snapshot. Useful before the first fetch so a previously
// seen inbox renders offline.
func (c *Coordinator) LoadCache(ctx context.Context) []model.Notification {
	if c.cache == nil {
		return c.Notifications()
	}
	cached, err := c.cache.ListNotifications(ctx)
	if err != nil {
		logging.Log.WithError(err).Warn("notify: loading cached inbox failed")
		return c.Notifications()
	}
	c.merge(cached)
	return c.Notifications()
}

// FetchAll fetches the full listing and merges it into the collection.
// The policy is fail-soft: any transport or HTTP failure is logged and
// the current (possibly empty) collection is returned, so the caller
// renders "no notifications" instead of crashing.
func (c *Coordinator) FetchAll(ctx context.Context) []model.Notification {
	items, err := c.api.List(ctx)
	if err != nil {
		logging.Log.WithError(err).Warn("notify: fetching notifications failed")
		return c.Notifications()
	}

	added := c.merge(items)
	c.persist(ctx, items)
	if len(added) > 0 {
		logging.Log.WithField("count", len(added)).Debug("notify: fetched new notifications")
	}
	return c.Notifications()
}

// Attach subscribes the coordinator to a realtime channel. For every
// "notification" frame the payload is parsed and, when its id is
// unseen, recorded and handed to onNotification. A "ping" frame is
// answered with a single "pong" send. All other frame types are
// ignored; malformed payloads are logged and dropped. The returned
// func detaches the subscription.
func (c *Coordinator) Attach(ch Channel, onNotification func(model.Notification)) (detach func()) {
	return ch.OnMessage(func(msg realtime.Message) {
		switch msg.Type {
		case "notification":
			n, err := fromPush(msg.Data)
			if err != nil {
				logging.Log.WithError(err).Warn("notify: dropping malformed notification payload")
				return
			}
			if added := c.merge([]model.Notification{n}); len(added) == 0 {
				return
			}
			c.persist(context.Background(), []model.Notification{n})
			if onNotification != nil {
				onNotification(n)
			}

		case "ping":
			if err := ch.Send(realtime.Message{Type: "pong"}); err != nil {
				logging.Log.WithError(err).Debug("notify: pong reply failed")
			}

		default:
			// Unrecognized frame types are safely ignored.
		}
	})
}

// MarkRead marks one notification as read on the server, then mirrors
// the change locally. The local mutation only happens on success so the
// caller decides whether to render optimistically.
func (c *Coordinator) MarkRead(ctx context.Context, id string) error {
	if err := c.api.MarkRead(ctx, id); err != nil {
		return err
	}

	c.mu.Lock()
	for i := range c.items {
		if c.items[i].ID == id {
			c.items[i].Read = true
			break
		}
	}
	c.mu.Unlock()

	if c.cache != nil {
		if err := c.cache.MarkNotificationRead(ctx, id); err != nil {
			logging.Log.WithError(err).Warn("notify: caching read state failed")
		}
	}
	return nil
}

// MarkAllRead marks the whole set as read in one server call, then
// mirrors the change locally.
func (c *Coordinator) MarkAllRead(ctx context.Context) error {
	if err := c.api.MarkAllRead(ctx); err != nil {
		return err
	}

	c.mu.Lock()
	for i := range c.items {
		c.items[i].Read = true
	}
	c.mu.Unlock()

	if c.cache != nil {
		if err := c.cache.MarkAllNotificationsRead(ctx); err != nil {
			logging.Log.WithError(err).Warn("notify: caching read state failed")
		}
	}
	return nil
}

// Remove deletes one notification on the server, then locally.
func (c *Coordinator) Remove(ctx context.Context, id string) error {
	if err := c.api.Delete(ctx, id); err != nil {
		return err
	}

	c.mu.Lock()
	for i := range c.items {
		if c.items[i].ID == id {
			c.items = append(c.items[:i], c.items[i+1:]...)
			delete(c.seen, id)
			break
		}
	}
	c.mu.Unlock()

	if c.cache != nil {
		if err := c.cache.DeleteNotification(ctx, id); err != nil {
			logging.Log.WithError(err).Warn("notify: removing cached notification failed")
		}
	}
	return nil
}

// Notifications returns a snapshot of the collection in first-appearance
// order.
func (c *Coordinator) Notifications() []model.Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	snapshot := make([]model.Notification, len(c.items))
	copy(snapshot, c.items)
	return snapshot
}

// UnreadCount returns the number of unread notifications.
func (c *Coordinator) UnreadCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	count := 0
	for _, n := range c.items {
		if !n.Read {
			count++
		}
	}
	return count
}

// Clear drops the in-memory collection. Called on session teardown; the
// local cache is left alone so the next session can render it offline.
func (c *Coordinator) Clear() {
	c.mu.Lock()
	c.items = nil
	c.seen = make(map[string]struct{})
	c.mu.Unlock()
}

// merge adds unseen notifications in order and returns the ones that
// were actually added. Already-known ids only have their read flag
// refreshed (a push duplicate never changes the collection size).
func (c *Coordinator) merge(items []model.Notification) []model.Notification {
	c.mu.Lock()
	defer c.mu.Unlock()

	var added []model.Notification
	for _, n := range items {
		if _, ok := c.seen[n.ID]; ok {
			if n.Read {
				for i := range c.items {
					if c.items[i].ID == n.ID {
						c.items[i].Read = true
						break
					}
				}
			}
			continue
		}
		c.seen[n.ID] = struct{}{}
		c.items = append(c.items, n)
		added = append(added, n)
	}
	return added
}

// persist mirrors notifications into the local cache, best-effort.
func (c *Coordinator) persist(ctx context.Context, items []model.Notification) {
	if c.cache == nil || len(items) == 0 {
		return
	}
	if err := c.cache.UpsertNotifications(ctx, items); err != nil {
		logging.Log.WithError(err).Warn("notify: caching notifications failed")
	}
}
