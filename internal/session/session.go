// Package session holds the authenticated user context shared by every
// command: the bearer token and the profile it belongs to.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/javiermolinar/timeflow/internal/schedule"
)

var (
	// ErrNoSession is returned when no one is logged in for the configured API.
	ErrNoSession = errors.New("not logged in, run `timeflow login`")

	// ErrExpired is returned when the stored token is past its expiry.
	ErrExpired = errors.New("session expired, run `timeflow login` again")

	// ErrMalformedToken is returned for tokens that are not a JWT.
	ErrMalformedToken = errors.New("malformed token")
)

// Session is the logged-in user's context.
type Session struct {
	BaseURL   string
	Token     string
	UserID    string
	FullName  string
	Role      schedule.Role
	ExpiresAt time.Time // zero when the token carries no exp claim
	SavedAt   time.Time
}

// Expired reports whether the token is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// Valid returns ErrExpired for expired sessions.
func (s *Session) Valid(now time.Time) error {
	if s.Expired(now) {
		return ErrExpired
	}
	return nil
}

// Store persists one session per API base URL.
type Store interface {
	// SaveSession inserts or replaces the session for s.BaseURL.
	SaveSession(ctx context.Context, s *Session) error

	// GetSession returns the session for baseURL, or ErrNoSession.
	GetSession(ctx context.Context, baseURL string) (*Session, error)

	// DeleteSession removes the session for baseURL. Missing sessions are not an error.
	DeleteSession(ctx context.Context, baseURL string) error

	// Close releases any resources held by the store.
	Close() error
}

// Claims is what the client reads out of the API's access token.
type Claims struct {
	Subject   string
	Role      schedule.Role
	ExpiresAt time.Time
}

// roleClaimKeys are the claim names the API may use for the role.
var roleClaimKeys = []string{
	"role",
	"http://schemas.microsoft.com/ws/2008/06/identity/claims/role",
}

// subjectClaimKeys are the claim names the API may use for the user ID.
var subjectClaimKeys = []string{
	"sub",
	"nameid",
	"http://schemas.xmlsoap.org/ws/2005/05/identity/claims/nameidentifier",
}

// InspectToken reads the claims of token without verifying its signature.
// The server verifies tokens; the client only needs expiry and role for display.
func InspectToken(token string) (Claims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}

	var c Claims
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		c.ExpiresAt = exp.Time
	}
	for _, k := range subjectClaimKeys {
		if v, ok := claims[k].(string); ok && v != "" {
			c.Subject = v
			break
		}
	}
	for _, k := range roleClaimKeys {
		switch v := claims[k].(type) {
		case string:
			c.Role = schedule.Role(v)
		case []any:
			// First role wins when the API issues several.
			if len(v) > 0 {
				if s, ok := v[0].(string); ok {
					c.Role = schedule.Role(s)
				}
			}
		}
		if c.Role != "" {
			break
		}
	}
	return c, nil
}

// FromToken builds a session for baseURL out of a freshly issued token.
// Profile fields the token does not carry are left empty for the caller to
// fill from the profile endpoint.
func FromToken(baseURL, token string, now time.Time) (*Session, error) {
	c, err := InspectToken(token)
	if err != nil {
		return nil, err
	}
	return &Session{
		BaseURL:   baseURL,
		Token:     token,
		UserID:    c.Subject,
		Role:      c.Role,
		ExpiresAt: c.ExpiresAt,
		SavedAt:   now,
	}, nil
}

// Load returns the live session for baseURL.
func Load(ctx context.Context, store Store, baseURL string, now time.Time) (*Session, error) {
	s, err := store.GetSession(ctx, baseURL)
	if err != nil {
		return nil, err
	}
	if err := s.Valid(now); err != nil {
		return nil, err
	}
	return s, nil
}
