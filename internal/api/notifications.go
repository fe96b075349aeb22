package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/distrischool/schoolctl/internal/model"
)

const notificationsBasePath = "/api/notifications"

// NotificationsClient wraps the notification listing and read-state
// endpoints. Fail-soft policy for the listing lives in the notify
// coordinator, not here; this layer reports errors faithfully.
type NotificationsClient struct {
	client *Client
}

// NewNotificationsClient creates a notifications wrapper on the given
// gateway client.
func NewNotificationsClient(client *Client) *NotificationsClient {
	return &NotificationsClient{client: client}
}

// List fetches the full current notification list.
func (n *NotificationsClient) List(ctx context.Context) ([]model.Notification, error) {
	var env struct {
		Success bool            `json:"success"`
		Message string          `json:"message,omitempty"`
		Data    json.RawMessage `json:"data,omitempty"`
	}
	if err := n.client.Get(ctx, notificationsBasePath, &env); err != nil {
		return nil, err
	}
	if !env.Success {
		msg := env.Message
		if msg == "" {
			msg = "listing notifications failed"
		}
		return nil, &APIError{Message: msg}
	}

	var items []model.Notification
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &items); err != nil {
			return nil, fmt.Errorf("parsing notification list: %w", err)
		}
	}
	return items, nil
}

// MarkRead marks a single notification as read. The response payload,
// if any, is ignored.
func (n *NotificationsClient) MarkRead(ctx context.Context, id string) error {
	path := notificationsBasePath + "/" + url.PathEscape(id) + "/read"
	return n.client.Put(ctx, path, nil, nil)
}

// MarkAllRead marks the whole set as read in one call.
func (n *NotificationsClient) MarkAllRead(ctx context.Context) error {
	return n.client.Put(ctx, notificationsBasePath+"/read-all", nil, nil)
}

// Delete removes a single notification.
func (n *NotificationsClient) Delete(ctx context.Context, id string) error {
	path := notificationsBasePath + "/" + url.PathEscape(id)
	return n.client.Delete(ctx, path, nil)
}
