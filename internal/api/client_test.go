package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientAttachesBearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL)
	c.SetToken("tok-abc")

	require.NoError(t, c.Get(context.Background(), "/x", nil))
	assert.Equal(t, "Bearer tok-abc", gotAuth)
}

func TestClientOmitsAuthorizationWithoutToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL)
	require.NoError(t, c.Get(context.Background(), "/x", nil))
	assert.Empty(t, gotAuth)
}

func TestClientUnauthorizedPublishesEventAndReturnsAuthError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"message":"token expired"}`, http.StatusUnauthorized)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL)

	var published []Unauthorized
	c.Unauthorized().Subscribe(func(u Unauthorized) { published = append(published, u) })

	err := c.Get(context.Background(), "/api/notifications", nil)
	require.Error(t, err)

	var authErr *AuthError
	require.True(t, errors.As(err, &authErr))
	assert.Equal(t, http.StatusUnauthorized, authErr.Status)
	assert.Equal(t, "token expired", authErr.Message)

	require.Len(t, published, 1)
	assert.Equal(t, http.MethodGet, published[0].Method)
	assert.Equal(t, "/api/notifications", published[0].Path)
}

func TestClientForbiddenIsNotAnAuthError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"message":"admins only"}`, http.StatusForbidden)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL)

	published := 0
	c.Unauthorized().Subscribe(func(Unauthorized) { published++ })

	err := c.Get(context.Background(), "/x", nil)
	require.Error(t, err)
	assert.False(t, IsAuthError(err))

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusForbidden, apiErr.Status)
	assert.Equal(t, "admins only", apiErr.Message)
	assert.Zero(t, published)
}

func TestClientRetriesOnRateLimit(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"ok": "yes"})
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL)

	var result map[string]string
	require.NoError(t, c.Get(context.Background(), "/x", &result))
	assert.Equal(t, "yes", result["ok"])
	assert.Equal(t, int64(2), calls.Load())
}

func TestClientParsesJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"echo": body["msg"]})
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL)

	var result map[string]string
	err := c.Post(context.Background(), "/x", map[string]string{"msg": "hello"}, &result)
	require.NoError(t, err)
	assert.Equal(t, "hello", result["echo"])
}

func TestWithBaseSharesTokenAndUnauthorizedSubject(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		http.Error(w, "no", http.StatusUnauthorized)
	}))
	t.Cleanup(srv.Close)

	root := NewClient("http://unused.invalid")
	root.SetToken("shared-token")

	published := 0
	root.Unauthorized().Subscribe(func(Unauthorized) { published++ })

	derived := root.WithBase(srv.URL)
	err := derived.Get(context.Background(), "/x", nil)
	require.Error(t, err)

	assert.Equal(t, "Bearer shared-token", gotAuth)
	assert.Equal(t, 1, published)

	// Clearing the token on the derived client clears it everywhere.
	derived.SetToken("")
	assert.Empty(t, root.Token())
}
