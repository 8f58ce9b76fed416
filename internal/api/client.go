// Package api is the client for the tutoring scheduling REST API.
package api

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

// RequestIDHeader carries the per-call request ID.
const RequestIDHeader = "X-Request-ID"

const defaultTimeout = 15 * time.Second

var (
	// ErrUnauthorized matches 401 responses.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden matches 403 responses.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound matches 404 responses.
	ErrNotFound = errors.New("not found")
)

// APIError is a non-2xx response.
type APIError struct {
	Status    int
	Message   string
	RequestID string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	return fmt.Sprintf("api error %d: %s", e.Status, msg)
}

// Is maps well-known statuses onto the package sentinels.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case ErrForbidden:
		return e.Status == http.StatusForbidden
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	}
	return false
}

// Options configures a Client.
type Options struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64 // 0 disables pacing
	InsecureTLS       bool
	Logger            *zap.Logger
	Transport         http.RoundTripper // defaults to a clone of http.DefaultTransport
}

// Client talks to the scheduling API. A Client without a token can only
// call the auth endpoints; use WithToken for everything else.
type Client struct {
	base      *url.URL
	transport http.RoundTripper
	http      *http.Client
	limiter   *rate.Limiter
	logger    *zap.Logger
	token     string
}

// New creates a client for opts.BaseURL.
func New(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base URL must be absolute, got %q", opts.BaseURL)
	}

	transport := opts.Transport
	if transport == nil {
		t := http.DefaultTransport.(*http.Transport).Clone()
		if opts.InsecureTLS {
			t.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in for dev certificates
		}
		transport = t
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var limiter *rate.Limiter
	if opts.RequestsPerSecond > 0 {
		burst := int(opts.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
	}

	return &Client{
		base:      base,
		transport: transport,
		http:      &http.Client{Timeout: timeout, Transport: transport},
		limiter:   limiter,
		logger:    logger.Named("api"),
	}, nil
}

// WithToken returns a copy of c that sends token as a bearer credential.
// The copy shares the rate limiter with c.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	cp.http = &http.Client{
		Timeout: c.http.Timeout,
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}),
			Base:   c.transport,
		},
	}
	return &cp
}

// Authenticated reports whether the client carries a token.
func (c *Client) Authenticated() bool {
	return c.token != ""
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// do sends one request. body is validated and JSON-encoded when non-nil;
// out receives the decoded response when non-nil.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var reader io.Reader
	if body != nil {
		if err := validateBody(body); err != nil {
			return err
		}
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	u := c.base.JoinPath(path)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set(RequestIDHeader, requestID)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("waiting for rate limiter: %w", err)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("api_request_failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.String("request_id", requestID),
			zap.Error(err),
		)
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	c.logger.Debug("api_request",
		zap.String("method", method),
		zap.String("path", path),
		zap.String("request_id", requestID),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return &APIError{
			Status:    resp.StatusCode,
			Message:   errorMessage(raw),
			RequestID: requestID,
		}
	}

	if out == nil {
		return nil
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	if s, ok := out.(*string); ok {
		*s = textBody(raw)
		return nil
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decoding %s %s response: %w", method, path, err)
	}
	return nil
}

// errorMessage extracts a human message from an error body. The API answers
// with {"message": ...}, ASP.NET problem details, or plain text.
func errorMessage(raw []byte) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}
	var problem struct {
		Message string `json:"message"`
		Title   string `json:"title"`
		Detail  string `json:"detail"`
	}
	if err := json.Unmarshal(raw, &problem); err == nil {
		switch {
		case problem.Message != "":
			return problem.Message
		case problem.Detail != "":
			return problem.Detail
		case problem.Title != "":
			return problem.Title
		}
	}
	return textBody(raw)
}

// textBody returns a string body, unquoting it when it is a JSON string.
func textBody(raw []byte) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}
