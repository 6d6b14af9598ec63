package api

import (
	"context"
	"net/http"

	"github.com/snapmatch/client-engine/internal/core/domain"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token  string `json:"token"`
	Role   string `json:"role"`
	Email  string `json:"email"`
	UserID string `json:"user_id"`
	Name   string `json:"name"`
}

type meResponse struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Role   string `json:"role"`
}

// Login exchanges credentials for a complete Identity.
func (c *Client) Login(ctx context.Context, email, password string) (domain.Identity, error) {
	var res loginResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", "", loginRequest{Email: email, Password: password}, &res)
	if err != nil {
		return domain.Identity{}, err
	}
	return domain.Identity{
		UserID:      res.UserID,
		Email:       res.Email,
		DisplayName: res.Name,
		Role:        domain.Role(res.Role),
		Token:       res.Token,
	}, nil
}

// Me resolves a bearer token to the server's canonical view of the
// principal. The returned Identity carries no token.
func (c *Client) Me(ctx context.Context, token string) (domain.Identity, error) {
	var res meResponse
	if err := c.do(ctx, http.MethodGet, "/auth/me", token, nil, &res); err != nil {
		return domain.Identity{}, err
	}
	return domain.Identity{
		UserID:      res.UserID,
		Email:       res.Email,
		DisplayName: res.Name,
		Role:        domain.Role(res.Role),
	}, nil
}

// Logout invalidates the session server-side. Best effort: callers clear
// local state regardless of the outcome.
func (c *Client) Logout(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", token, nil, nil)
}
