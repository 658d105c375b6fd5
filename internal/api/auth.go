package api

import (
	"context"

	"github.com/fjod/go_cart/storefront/domain"
)

type userEnvelope struct {
	User    *domain.User `json:"user"`
	Token   string       `json:"token,omitempty"`
	Message string       `json:"message,omitempty"`
}

// GET /auth/me/
func (c *Client) Me(ctx context.Context) (*domain.User, error) {
	var env userEnvelope
	if err := c.get(ctx, "/auth/me/", &env); err != nil {
		return nil, err
	}
	return env.User, nil
}

// Login authenticates the session. The API sets a session cookie in the
// client's jar; a token in the body is kept for token auth.
func (c *Client) Login(ctx context.Context, creds domain.Credentials) (*domain.User, error) {
	var env userEnvelope
	if err := c.post(ctx, "/auth/login/", creds, &env); err != nil {
		return nil, err
	}
	if env.Token != "" {
		c.SetToken(env.Token)
	}
	return env.User, nil
}

// POST /auth/register/
func (c *Client) Register(ctx context.Context, reg domain.Registration) (*domain.User, error) {
	var env userEnvelope
	if err := c.post(ctx, "/auth/register/", reg, &env); err != nil {
		return nil, err
	}
	if env.Token != "" {
		c.SetToken(env.Token)
	}
	return env.User, nil
}

// POST /auth/logout/
func (c *Client) Logout(ctx context.Context) error {
	if err := c.post(ctx, "/auth/logout/", nil, nil); err != nil {
		return err
	}
	c.SetToken("")
	return nil
}
