package notify

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/distrischool/schoolctl/internal/model"
)

// pushPayload is the permissive shape of a "notification" frame's
// payload. The backend delivers either a full notification record or a
// bare event ({eventType, timestamp, data}); both parse into this.
type pushPayload struct {
	ID        string          `json:"id,omitempty"`
	Type      string          `json:"type,omitempty"`
	EventType string          `json:"eventType,omitempty"`
	Title     string          `json:"title,omitempty"`
	Message   string          `json:"message,omitempty"`
	Timestamp string          `json:"timestamp,omitempty"`
	Read      bool            `json:"read,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// fromPush parses a pushed payload into a Notification, deriving the
// title and message when absent and synthesizing an id when absent.
func fromPush(raw json.RawMessage) (model.Notification, error) {
	var p pushPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return model.Notification{}, err
	}

	typ := p.Type
	if typ == "" {
		typ = p.EventType
	}

	n := model.Notification{
		ID:      p.ID,
		Type:    typ,
		Title:   p.Title,
		Message: p.Message,
		Read:    p.Read,
		Data:    p.Data,
	}

	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if ts, err := time.Parse(time.RFC3339, p.Timestamp); err == nil {
		n.Timestamp = ts
	} else {
		n.Timestamp = time.Now().UTC()
	}
	if n.Title == "" || n.Message == "" {
		title, message := deriveContent(typ, p.Data)
		if n.Title == "" {
			n.Title = title
		}
		if n.Message == "" {
			n.Message = message
		}
	}
	return n, nil
}

// deriveContent builds a human-readable title and message for an event
// type. Unknown types degrade to a generic pair rather than failing.
func deriveContent(typ string, data json.RawMessage) (title, message string) {
	var payload model.EventPayload
	if len(data) > 0 {
		// Best-effort; an unparsable payload still gets the generic text.
		_ = json.Unmarshal(data, &payload)
	}

	userLabel := payload.UserName
	if userLabel == "" {
		userLabel = payload.UserEmail
	}
	teacherLabel := payload.TeacherName
	if teacherLabel == "" {
		teacherLabel = payload.TeacherEmail
	}

	switch typ {
	case model.NotificationUserCreated:
		return "New User Created", "User " + orUnknown(userLabel) + " created successfully"
	case model.NotificationUserDisabled:
		return "User Disabled", "User " + orUnknown(userLabel) + " was disabled"
	case model.NotificationTeacherCreated:
		return "New Teacher Created", "Teacher " + orUnknown(teacherLabel) + " registered"
	default:
		return "Notification", "New notification available"
	}
}

func orUnknown(label string) string {
	if label == "" {
		return "unknown"
	}
	return label
}
