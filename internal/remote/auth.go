package remote

import (
	"context"
	"fmt"
	"net/http"

	"estatehub-portal/internal/models"
)

// RegisterRequest is the payload for POST /auth/register.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone,omitempty"`
	Role     string `json:"role"`
}

// LoginRequest is the payload for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResult is the {token, user} pair the auth endpoints return.
type AuthResult struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// Register creates an account and returns the fresh session.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*AuthResult, error) {
	var res AuthResult
	if err := c.doJSON(ctx, http.MethodPost, "/auth/register", "", req, &res); err != nil {
		return nil, err
	}
	if res.Token == "" {
		return nil, fmt.Errorf("upstream returned no token on register")
	}
	return &res, nil
}

// Login authenticates and returns the session.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*AuthResult, error) {
	var res AuthResult
	if err := c.doJSON(ctx, http.MethodPost, "/auth/login", "", req, &res); err != nil {
		return nil, err
	}
	if res.Token == "" {
		return nil, fmt.Errorf("upstream returned no token on login")
	}
	return &res, nil
}

// Me validates a stored token and returns the user it belongs to.
func (c *Client) Me(ctx context.Context, token string) (*models.User, error) {
	var res struct {
		User models.User `json:"user"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/auth/me", token, nil, &res); err != nil {
		return nil, err
	}
	return &res.User, nil
}
