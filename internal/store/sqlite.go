package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/distrischool/schoolctl/internal/model"
)

// timeLayout is the canonical storage format for timestamps.
const timeLayout = time.RFC3339Nano

// parseDBTime parses a stored timestamp back into a time.Time.
func parseDBTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}

// SQLiteStore implements NotificationStore using a local SQLite database.
type SQLiteStore struct {
	db *sqlx.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath,
// enables WAL mode, and runs any pending schema migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *SQLiteStore) runMigrations() error {
	currentVersion := 0

	// Check if schema_version table exists.
	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// UpsertNotifications inserts a batch of notifications. An id that is
// already cached keeps its first stored record; the read flag is only
// ever promoted to read, so a stale fetched record cannot flip a read
// row back to unread. Insert order preserves first-appearance order
// via rowid.
func (s *SQLiteStore) UpsertNotifications(ctx context.Context, items []model.Notification) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	const query = `
		INSERT INTO notifications (id, type, title, message, timestamp, read, data)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET read = (read OR excluded.read)`

	stmt, err := tx.PreparexContext(ctx, query)
	if err != nil {
		return fmt.Errorf("preparing upsert statement: %w", err)
	}
	defer stmt.Close()

	for _, n := range items {
		data := string(n.Data)
		ts := n.Timestamp.UTC().Format(timeLayout)
		_, err := stmt.ExecContext(ctx,
			n.ID, n.Type, n.Title, n.Message, ts, n.Read, data,
		)
		if err != nil {
			return fmt.Errorf("upserting notification %s: %w", n.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing upsert: %w", err)
	}
	return nil
}

// ListNotifications returns the cached inbox in first-appearance order.
func (s *SQLiteStore) ListNotifications(ctx context.Context) ([]model.Notification, error) {
	rows := []struct {
		ID        string `db:"id"`
		Type      string `db:"type"`
		Title     string `db:"title"`
		Message   string `db:"message"`
		Timestamp string `db:"timestamp"`
		Read      bool   `db:"read"`
		Data      string `db:"data"`
	}{}

	const query = `
		SELECT id, type, title, message, timestamp, read, data
		FROM notifications ORDER BY rowid`
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("listing notifications: %w", err)
	}

	items := make([]model.Notification, 0, len(rows))
	for _, r := range rows {
		n := model.Notification{
			ID:      r.ID,
			Type:    r.Type,
			Title:   r.Title,
			Message: r.Message,
			Read:    r.Read,
		}
		if ts, err := parseDBTime(r.Timestamp); err == nil {
			n.Timestamp = ts
		}
		if r.Data != "" {
			n.Data = []byte(r.Data)
		}
		items = append(items, n)
	}
	return items, nil
}

// MarkNotificationRead flags one cached notification as read.
func (s *SQLiteStore) MarkNotificationRead(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE notifications SET read = 1 WHERE id = ?", id,
	)
	if err != nil {
		return fmt.Errorf("marking notification %s read: %w", id, err)
	}
	return nil
}

// MarkAllNotificationsRead flags the whole cache as read.
func (s *SQLiteStore) MarkAllNotificationsRead(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "UPDATE notifications SET read = 1"); err != nil {
		return fmt.Errorf("marking all notifications read: %w", err)
	}
	return nil
}

// DeleteNotification removes one cached notification.
func (s *SQLiteStore) DeleteNotification(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM notifications WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting notification %s: %w", id, err)
	}
	return nil
}

// UnreadCount returns the number of cached unread notifications.
func (s *SQLiteStore) UnreadCount(ctx context.Context) (int, error) {
	var count int
	err := s.db.GetContext(ctx,
		&count, "SELECT COUNT(*) FROM notifications WHERE read = 0",
	)
	if err != nil {
		return 0, fmt.Errorf("counting unread notifications: %w", err)
	}
	return count, nil
}

// ClearNotifications drops the whole cache.
func (s *SQLiteStore) ClearNotifications(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM notifications"); err != nil {
		return fmt.Errorf("clearing notifications: %w", err)
	}
	return nil
}
