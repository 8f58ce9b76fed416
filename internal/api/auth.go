package api

import (
	"context"
	"errors"
	"net/http"
)

// Login exchanges credentials for an access token.
func (c *Client) Login(ctx context.Context, login, password string) (string, error) {
	var resp loginResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, LoginRequest{Login: login, Password: password}, &resp); err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", errors.New("login response carried no token")
	}
	return resp.Token, nil
}

// Register creates a staff account.
func (c *Client) Register(ctx context.Context, req RegisterRequest) error {
	return c.do(ctx, http.MethodPost, "/auth/register", nil, req, nil)
}

// Me returns the profile of the token's owner.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var u User
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}
