package api

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/javiermolinar/timeflow/internal/schedule"
)

// MinSearchLen is the shortest query sent to the search endpoint.
const MinSearchLen = 2

// ListClients returns every client.
func (c *Client) ListClients(ctx context.Context) ([]schedule.Client, error) {
	var clients []schedule.Client
	if err := c.do(ctx, http.MethodGet, "/clients", nil, nil, &clients); err != nil {
		return nil, err
	}
	return clients, nil
}

// SearchClients finds clients by name. Queries shorter than MinSearchLen
// runes list every client.
func (c *Client) SearchClients(ctx context.Context, query string) ([]schedule.Client, error) {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < MinSearchLen {
		return c.ListClients(ctx)
	}
	var clients []schedule.Client
	if err := c.do(ctx, http.MethodGet, "/clients/search", url.Values{"name": {query}}, nil, &clients); err != nil {
		return nil, err
	}
	return clients, nil
}
