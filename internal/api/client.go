// Package api implements the HTTP gateway: a bearer-authenticated JSON
// client shared by every service wrapper, plus the thin per-service
// wrappers themselves. The gateway owns the in-memory session token and
// raises an internal unauthorized event whenever any call comes back
// with an authentication-failure status.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/distrischool/schoolctl/internal/event"
)

// Unauthorized describes a request that was rejected with an
// authentication-failure status.
type Unauthorized struct {
	Method string
	Path   string
	Status int
}

// tokenState is the shared session state behind every Client derived
// from the same gateway: the bearer token and the unauthorized subject.
type tokenState struct {
	mu           sync.RWMutex
	token        string
	unauthorized *event.Subject[Unauthorized]
}

// Client is a thin JSON HTTP client for the portal backend. It attaches
// the current bearer token, retries with backoff on HTTP 429, and
// normalizes error responses. Clients derived with WithBase share one
// token and one unauthorized subject.
type Client struct {
	baseURL    string
	httpClient *http.Client
	maxRetries int
	state      *tokenState
}

// NewClient creates a gateway client rooted at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		maxRetries: 3,
		state: &tokenState{
			unauthorized: event.NewSubject[Unauthorized](),
		},
	}
}

// WithBase returns a client rooted at a different base URL that shares
// this client's token and unauthorized subject. Used for deployments
// that expose individual services instead of the gateway.
func (c *Client) WithBase(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: c.httpClient,
		maxRetries: c.maxRetries,
		state:      c.state,
	}
}

// BaseURL returns the root URL this client targets.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SetToken replaces the current bearer token. An empty token clears the
// session. Only the session coordinator calls this.
func (c *Client) SetToken(token string) {
	c.state.mu.Lock()
	c.state.token = token
	c.state.mu.Unlock()
}

// Token returns the current bearer token, or "" when no session is active.
func (c *Client) Token() string {
	c.state.mu.RLock()
	defer c.state.mu.RUnlock()
	return c.state.token
}

// Unauthorized exposes the subject that fires whenever any request made
// through this client (or a WithBase sibling) is rejected with an
// authentication-failure status.
func (c *Client) Unauthorized() *event.Subject[Unauthorized] {
	return c.state.unauthorized
}

// Get performs an HTTP GET request and unmarshals the JSON response.
func (c *Client) Get(ctx context.Context, path string, result interface{}) error {
	return c.do(ctx, http.MethodGet, path, nil, result)
}

// Post performs an HTTP POST request with a JSON body and unmarshals
// the JSON response.
func (c *Client) Post(ctx context.Context, path string, body, result interface{}) error {
	return c.do(ctx, http.MethodPost, path, body, result)
}

// Put performs an HTTP PUT request with an optional JSON body.
func (c *Client) Put(ctx context.Context, path string, body, result interface{}) error {
	return c.do(ctx, http.MethodPut, path, body, result)
}

// Delete performs an HTTP DELETE request.
func (c *Client) Delete(ctx context.Context, path string, result interface{}) error {
	return c.do(ctx, http.MethodDelete, path, nil, result)
}

// do is the core HTTP method that builds the request, attaches the
// bearer token, handles rate limiting with backoff, raises the
// unauthorized event on auth failures, and (de)serializes JSON.
func (c *Client) do(
	ctx context.Context,
	method string,
	path string,
	body interface{},
	result interface{},
) error {
	url := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		// Rebuild the body reader on retries since it was consumed.
		if attempt > 0 && body != nil {
			data, _ := json.Marshal(body)
			bodyReader = bytes.NewReader(data)
		}

		req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}

		req.Header.Set("Accept", "application/json")
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if token := c.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("executing request %s %s: %w", method, path, err)
		}

		respBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return fmt.Errorf("reading response body: %w", readErr)
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			waitDuration := retryAfterDuration(resp, attempt)
			lastErr = fmt.Errorf("rate limited (429) on %s %s", method, path)

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(waitDuration):
				continue
			}
		}

		if resp.StatusCode == http.StatusUnauthorized {
			authErr := &AuthError{
				Status:  resp.StatusCode,
				Message: errorMessage(respBody, resp),
			}
			c.state.unauthorized.Publish(Unauthorized{
				Method: method,
				Path:   path,
				Status: resp.StatusCode,
			})
			return authErr
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return &APIError{
				Status:  resp.StatusCode,
				Message: errorMessage(respBody, resp),
			}
		}

		// No content to parse (e.g. 204).
		if result == nil || resp.StatusCode == http.StatusNoContent ||
			len(respBody) == 0 {
			return nil
		}

		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf(
				"unmarshaling response from %s %s: %w", method, path, err,
			)
		}

		return nil
	}

	return fmt.Errorf("max retries (%d) exceeded: %w", c.maxRetries, lastErr)
}

// errorMessage extracts the backend's human-readable message from an
// error response body, falling back to the HTTP status text.
func errorMessage(body []byte, resp *http.Response) string {
	var eb errorBody
	if json.Unmarshal(body, &eb) == nil {
		if msg := eb.message(); msg != "" {
			return msg
		}
	}
	if text := strings.TrimSpace(string(body)); text != "" && len(text) < 200 {
		return text
	}
	return http.StatusText(resp.StatusCode)
}

// retryAfterDuration reads the Retry-After header and computes a wait
// duration. Falls back to exponential backoff if the header is missing.
func retryAfterDuration(resp *http.Response, attempt int) time.Duration {
	if header := resp.Header.Get("Retry-After"); header != "" {
		if seconds, err := strconv.Atoi(header); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}

	// Exponential backoff: 1s, 2s, 4s, ...
	backoff := time.Duration(1<<uint(attempt)) * time.Second
	if backoff > 30*time.Second {
		backoff = 30 * time.Second
	}
	return backoff
}
