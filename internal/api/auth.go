package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/distrischool/schoolctl/internal/model"
)

const authBasePath = "/api/v1/auth"

// envelope is the {success, message, data} wrapper the auth service
// puts around every response. A 2xx response with success=false is
// still a failure.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// failure converts a non-success envelope into an APIError carrying the
// backend's message.
func (e envelope) failure(fallback string) error {
	msg := e.Message
	if msg == "" {
		msg = e.Error
	}
	if msg == "" {
		msg = fallback
	}
	return &APIError{Message: msg}
}

// LoginData is the payload of a successful login.
type LoginData struct {
	Token string     `json:"token"`
	User  model.User `json:"user"`
}

// RegisterRequest is the payload for creating a new account.
type RegisterRequest struct {
	Email           string       `json:"email"`
	Password        string       `json:"password"`
	ConfirmPassword string       `json:"confirmPassword"`
	FirstName       string       `json:"firstName"`
	LastName        string       `json:"lastName"`
	Phone           string       `json:"phone,omitempty"`
	DocumentNumber  string       `json:"documentNumber,omitempty"`
	Roles           []model.Role `json:"roles"`
}

// AuthClient wraps the auth service endpoints. It never mutates the
// gateway token itself; storing the token is the session coordinator's
// job.
type AuthClient struct {
	client *Client
}

// NewAuthClient creates an auth service wrapper on the given gateway client.
func NewAuthClient(client *Client) *AuthClient {
	return &AuthClient{client: client}
}

// Login exchanges credentials for a token and user record. A 2xx
// response with success=false is returned as an error carrying the
// backend's message.
func (a *AuthClient) Login(ctx context.Context, email, password string) (*LoginData, error) {
	body := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}{Email: email, Password: password}

	var env envelope
	if err := a.client.Post(ctx, authBasePath+"/login", body, &env); err != nil {
		return nil, err
	}
	if !env.Success {
		return nil, env.failure("login failed")
	}

	var data LoginData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, fmt.Errorf("parsing login response: %w", err)
	}
	if data.Token == "" {
		return nil, &APIError{Message: "login response carried no token"}
	}
	return &data, nil
}

// Register creates a new account. The account may require email
// verification before it can sign in.
func (a *AuthClient) Register(ctx context.Context, req RegisterRequest) (*model.User, error) {
	var env envelope
	if err := a.client.Post(ctx, authBasePath+"/register", req, &env); err != nil {
		return nil, err
	}
	if !env.Success {
		return nil, env.failure("registration failed")
	}

	var data struct {
		User model.User `json:"user"`
	}
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &data); err != nil {
			return nil, fmt.Errorf("parsing register response: %w", err)
		}
	}
	return &data.User, nil
}

// Me fetches the current user for the active token.
func (a *AuthClient) Me(ctx context.Context) (*model.User, error) {
	var env envelope
	if err := a.client.Get(ctx, authBasePath+"/me", &env); err != nil {
		return nil, err
	}
	if !env.Success {
		return nil, env.failure("fetching current user failed")
	}

	var user model.User
	if err := json.Unmarshal(env.Data, &user); err != nil {
		return nil, fmt.Errorf("parsing current user: %w", err)
	}
	return &user, nil
}

// ForgotPassword requests a password-reset email.
func (a *AuthClient) ForgotPassword(ctx context.Context, email string) error {
	body := struct {
		Email string `json:"email"`
	}{Email: email}

	var env envelope
	if err := a.client.Post(ctx, authBasePath+"/forgot-password", body, &env); err != nil {
		return err
	}
	if !env.Success {
		return env.failure("password reset request failed")
	}
	return nil
}

// ResetPassword completes a password reset with the emailed token.
func (a *AuthClient) ResetPassword(ctx context.Context, token, newPassword, confirmPassword string) error {
	body := struct {
		Token           string `json:"token"`
		NewPassword     string `json:"newPassword"`
		ConfirmPassword string `json:"confirmPassword"`
	}{Token: token, NewPassword: newPassword, ConfirmPassword: confirmPassword}

	var env envelope
	if err := a.client.Post(ctx, authBasePath+"/reset-password", body, &env); err != nil {
		return err
	}
	if !env.Success {
		return env.failure("password reset failed")
	}
	return nil
}

// VerifyEmail confirms an account with the emailed verification token.
func (a *AuthClient) VerifyEmail(ctx context.Context, token string) error {
	body := struct {
		Token string `json:"token"`
	}{Token: token}

	var env envelope
	if err := a.client.Post(ctx, authBasePath+"/verify-email", body, &env); err != nil {
		return err
	}
	if !env.Success {
		return env.failure("email verification failed")
	}
	return nil
}

// Health checks auth service availability.
func (a *AuthClient) Health(ctx context.Context) error {
	return a.client.Get(ctx, authBasePath+"/health", nil)
}
