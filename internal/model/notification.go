package model

import (
	"encoding/json"
	"strconv"
	"time"
)

// Known notification event types emitted by the backend. Unknown types
// are still accepted and rendered with a generic title and message.
const (
	NotificationUserCreated    = "user.created"
	NotificationUserDisabled   = "user.disabled"
	NotificationTeacherCreated = "teacher.created"
)

// Notification represents a single user-facing event delivered either by
// the REST listing endpoint or by a realtime push frame.
type Notification struct {
	// ID is the unique identity used for deduplication. A push carrying
	// an ID that is already known is a no-op, not an upsert.
	ID string `json:"id" db:"id"`

	// Type is the backend event kind (e.g. "user.created").
	Type string `json:"type" db:"type"`

	// Title is the short human-readable headline.
	Title string `json:"title" db:"title"`

	// Message is the human-readable body text.
	Message string `json:"message" db:"message"`

	// Timestamp is the event creation time, used for ordering and
	// relative-time display.
	Timestamp time.Time `json:"timestamp" db:"timestamp"`

	// Read indicates whether the user has seen this notification. It is
	// mutated only by explicit user action or "mark all read".
	Read bool `json:"read" db:"read"`

	// Data is the opaque type-specific payload. It is never interpreted
	// beyond title/message derivation.
	Data json.RawMessage `json:"data,omitempty" db:"data"`
}

// EventPayload holds the well-known fields of a notification event
// payload. All fields are optional; anything else in the payload is
// carried along opaquely in Notification.Data.
type EventPayload struct {
	UserID       FlexID `json:"userId,omitempty"`
	UserEmail    string `json:"userEmail,omitempty"`
	UserName     string `json:"userName,omitempty"`
	UserRole     string `json:"userRole,omitempty"`
	TeacherID    FlexID `json:"teacherId,omitempty"`
	TeacherName  string `json:"teacherName,omitempty"`
	TeacherEmail string `json:"teacherEmail,omitempty"`
	Status       string `json:"status,omitempty"`
}

// RelativeTime renders a timestamp as a compact age relative to now
// ("now", "5m ago", "3h ago", "2d ago").
func RelativeTime(t time.Time, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "now"
	case d < time.Hour:
		return strconv.Itoa(int(d.Minutes())) + "m ago"
	case d < 24*time.Hour:
		return strconv.Itoa(int(d.Hours())) + "h ago"
	default:
		return strconv.Itoa(int(d.Hours()/24)) + "d ago"
	}
}
