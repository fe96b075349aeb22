package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/distrischool/schoolctl/internal/model"
)

func newAuthTestClient(t *testing.T, handler http.HandlerFunc) *AuthClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewAuthClient(NewClient(srv.URL))
}

func TestLoginSuccessReturnsTokenAndUser(t *testing.T) {
	a := newAuthTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/auth/login", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "admin@school.edu", body["email"])

		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data": map[string]any{
				"token": "tok-1",
				"user": map[string]any{
					"id":    "u1",
					"email": "admin@school.edu",
					"roles": []string{"ADMIN"},
				},
			},
		})
	})

	data, err := a.Login(context.Background(), "admin@school.edu", "pw")
	require.NoError(t, err)

	assert.Equal(t, "tok-1", data.Token)
	assert.Equal(t, model.FlexID("u1"), data.User.ID)
	assert.True(t, data.User.HasRole(model.RoleAdmin))
}

func TestLoginSuccessFalseEnvelopeIsAnError(t *testing.T) {
	a := newAuthTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		// 200 OK with success:false must still be a failure.
		json.NewEncoder(w).Encode(map[string]any{
			"success": false,
			"message": "Invalid email or password",
		})
	})

	_, err := a.Login(context.Background(), "admin@school.edu", "wrong")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid email or password")
}

func TestLoginWithoutTokenIsAnError(t *testing.T) {
	a := newAuthTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data":    map[string]any{"user": map[string]any{"id": "u1"}},
		})
	})

	_, err := a.Login(context.Background(), "admin@school.edu", "pw")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no token")
}

func TestLoginNumericUserIDIsAccepted(t *testing.T) {
	a := newAuthTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data": map[string]any{
				"token": "tok",
				"user":  map[string]any{"id": 42, "roles": []string{"ADMIN"}},
			},
		})
	})

	data, err := a.Login(context.Background(), "a@b.c", "pw")
	require.NoError(t, err)
	assert.Equal(t, model.FlexID("42"), data.User.ID)
}

func TestMeParsesEnvelope(t *testing.T) {
	a := newAuthTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/auth/me", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data": map[string]any{
				"id":        "u1",
				"firstName": "Alice",
				"lastName":  "Admin",
				"roles":     []string{"ADMIN"},
			},
		})
	})

	user, err := a.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Alice Admin", user.FullName())
}

func TestForgotPasswordFailureCarriesMessage(t *testing.T) {
	a := newAuthTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"success": false,
			"error":   "unknown email",
		})
	})

	err := a.ForgotPassword(context.Background(), "nobody@school.edu")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown email")
}
