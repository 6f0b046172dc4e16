package services

import (
	"context"
	"net/http"
	"strings"

	"github.com/desertthunder/tvx/internal/models"
)

// Env fetches the environment identifier (e.g. "development").
//
// Calling it once at startup also makes the backend issue the CSRF cookie
// required by every mutating request.
func (c *Client) Env(ctx context.Context) (string, error) {
	data, err := c.do(ctx, "env", http.MethodGet, "/env", nil, nil)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	c.bootstrapped = true
	c.mu.Unlock()

	return strings.TrimSpace(string(data)), nil
}

// CurrentUser returns the user of the current session.
func (c *Client) CurrentUser(ctx context.Context) (*models.User, error) {
	const op = "fetch current user"
	data, err := c.do(ctx, op, http.MethodGet, "/auth/users/me", nil, nil)
	if err != nil {
		return nil, err
	}

	dto, err := decode[userDTO](op, data)
	if err != nil {
		return nil, err
	}
	return dto.toUser(op)
}

// Login authenticates with email and password. Bad credentials yield a
// [shared.UnauthorizedError].
func (c *Client) Login(ctx context.Context, email, password string) (*models.User, error) {
	const op = "log in"
	data, err := c.do(ctx, op, http.MethodPost, "/auth/login", nil, loginRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}

	dto, err := decode[userDTO](op, data)
	if err != nil {
		return nil, err
	}
	return dto.toUser(op)
}

// Logout ends the session.
func (c *Client) Logout(ctx context.Context) (string, error) {
	data, err := c.do(ctx, "log out", http.MethodGet, "/auth/logout", nil, nil)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
