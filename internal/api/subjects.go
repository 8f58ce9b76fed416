package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/javiermolinar/timeflow/internal/schedule"
)

// ListSubjects returns every subject.
func (c *Client) ListSubjects(ctx context.Context) ([]schedule.Subject, error) {
	var subjects []schedule.Subject
	if err := c.do(ctx, http.MethodGet, "/subjects", nil, nil, &subjects); err != nil {
		return nil, err
	}
	return subjects, nil
}

// CreateSubject adds a subject.
func (c *Client) CreateSubject(ctx context.Context, name string) (*schedule.Subject, error) {
	var s schedule.Subject
	if err := c.do(ctx, http.MethodPost, "/subjects", nil, subjectRequest{Name: name}, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// RenameSubject changes a subject's name.
func (c *Client) RenameSubject(ctx context.Context, id, name string) error {
	return c.do(ctx, http.MethodPut, "/subjects/"+url.PathEscape(id), nil, subjectRequest{Name: name}, nil)
}

// DeleteSubject removes a subject.
func (c *Client) DeleteSubject(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/subjects/"+url.PathEscape(id), nil, nil, nil)
}
