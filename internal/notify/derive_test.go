package notify

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/distrischool/schoolctl/internal/model"
)

func TestFromPushFullRecordPassesThrough(t *testing.T) {
	raw := []byte(`{
		"id": "n1",
		"type": "user.created",
		"title": "Custom Title",
		"message": "Custom message",
		"timestamp": "2026-08-29T10:00:00Z",
		"read": true
	}`)

	n, err := fromPush(raw)
	require.NoError(t, err)

	assert.Equal(t, "n1", n.ID)
	assert.Equal(t, model.NotificationUserCreated, n.Type)
	assert.Equal(t, "Custom Title", n.Title)
	assert.Equal(t, "Custom message", n.Message)
	assert.True(t, n.Read)
	assert.Equal(t, time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC), n.Timestamp)
}

func TestFromPushBareEventDerivesContent(t *testing.T) {
	raw := []byte(`{
		"eventType": "user.created",
		"timestamp": "2026-08-29T10:00:00Z",
		"data": {"userName": "Ana Souza", "userEmail": "ana@school.edu"}
	}`)

	n, err := fromPush(raw)
	require.NoError(t, err)

	assert.NotEmpty(t, n.ID)
	assert.Equal(t, model.NotificationUserCreated, n.Type)
	assert.Equal(t, "New User Created", n.Title)
	assert.Equal(t, "User Ana Souza created successfully", n.Message)
}

func TestFromPushFallsBackToEmail(t *testing.T) {
	raw := []byte(`{
		"eventType": "user.disabled",
		"data": {"userEmail": "ana@school.edu"}
	}`)

	n, err := fromPush(raw)
	require.NoError(t, err)

	assert.Equal(t, "User Disabled", n.Title)
	assert.Equal(t, "User ana@school.edu was disabled", n.Message)
}

func TestFromPushTeacherCreated(t *testing.T) {
	raw := []byte(`{
		"eventType": "teacher.created",
		"data": {"teacherName": "Carlos Lima"}
	}`)

	n, err := fromPush(raw)
	require.NoError(t, err)

	assert.Equal(t, "New Teacher Created", n.Title)
	assert.Equal(t, "Teacher Carlos Lima registered", n.Message)
}

func TestFromPushUnknownTypeGetsGenericContent(t *testing.T) {
	raw := []byte(`{"eventType": "grade.published"}`)

	n, err := fromPush(raw)
	require.NoError(t, err)

	assert.Equal(t, "grade.published", n.Type)
	assert.Equal(t, "Notification", n.Title)
	assert.Equal(t, "New notification available", n.Message)
}

func TestFromPushMissingTimestampDefaultsToNow(t *testing.T) {
	before := time.Now().UTC()
	n, err := fromPush([]byte(`{"eventType": "user.created"}`))
	require.NoError(t, err)

	assert.False(t, n.Timestamp.Before(before))
}

func TestFromPushMalformedPayloadFails(t *testing.T) {
	_, err := fromPush([]byte(`{broken`))
	assert.Error(t, err)

	var syntaxErr *json.SyntaxError
	assert.ErrorAs(t, err, &syntaxErr)
}
