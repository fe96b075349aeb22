// Package store persists the notification inbox in a local SQLite
// database so the inbox survives restarts and renders offline.
package store

import (
	"context"

	"github.com/distrischool/schoolctl/internal/model"
)

// NotificationStore defines the persistence interface for the local
// notification cache.
type NotificationStore interface {
	// UpsertNotifications inserts new notifications, keeping the first
	// stored record for an id (first-write-wins); only the read flag is
	// refreshed for rows that already exist.
	UpsertNotifications(ctx context.Context, items []model.Notification) error

	// ListNotifications returns the cached inbox in first-appearance order.
	ListNotifications(ctx context.Context) ([]model.Notification, error)

	MarkNotificationRead(ctx context.Context, id string) error
	MarkAllNotificationsRead(ctx context.Context) error
	DeleteNotification(ctx context.Context, id string) error
	UnreadCount(ctx context.Context) (int, error)

	// ClearNotifications drops the whole cache (logout teardown).
	ClearNotifications(ctx context.Context) error
}
