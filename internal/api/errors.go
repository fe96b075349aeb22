package api

import (
	"errors"
	"fmt"
)

// AuthError indicates that a request was rejected with an
// authentication-failure status. The gateway also publishes the failure
// on its Unauthorized subject so the session layer can force a logout.
type AuthError struct {
	Status  int
	Message string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed (%d): %s", e.Status, e.Message)
}

// IsAuthError reports whether err (or any error in its chain) is an AuthError.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// APIError is a non-2xx backend response normalized into a single error
// carrying the backend's human-readable message.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		return e.Message
	}
	return fmt.Sprintf("api error (%d): %s", e.Status, e.Message)
}

// errorBody is the error envelope shape the backend services use. Any
// of the fields may carry the message depending on the service.
type errorBody struct {
	Message string            `json:"message,omitempty"`
	Error   string            `json:"error,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// message extracts the most specific human-readable message available.
func (b errorBody) message() string {
	if b.Message != "" {
		return b.Message
	}
	if b.Error != "" {
		return b.Error
	}
	if len(b.Errors) > 0 {
		for _, v := range b.Errors {
			if v != "" {
				return v
			}
		}
	}
	return ""
}
