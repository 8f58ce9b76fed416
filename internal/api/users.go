package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/javiermolinar/timeflow/internal/schedule"
)

// ListUsers returns every staff account.
func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	var page usersPage
	if err := c.do(ctx, http.MethodGet, "/users", nil, nil, &page); err != nil {
		return nil, err
	}
	return page, nil
}

// ListTeachers returns the accounts with the Teacher role.
func (c *Client) ListTeachers(ctx context.Context) ([]User, error) {
	users, err := c.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	var teachers []User
	for _, u := range users {
		if u.Role == schedule.RoleTeacher || u.Role == "" {
			teachers = append(teachers, u)
		}
	}
	return teachers, nil
}

// UpdateUser changes a user's name and email.
func (c *Client) UpdateUser(ctx context.Context, id string, req UpdateUserRequest) (*User, error) {
	var u User
	if err := c.do(ctx, http.MethodPut, "/users/"+url.PathEscape(id), nil, req, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// AssignSubject lets a teacher teach a subject.
func (c *Client) AssignSubject(ctx context.Context, userID, subjectID string) error {
	return c.do(ctx, http.MethodPost, subjectLinkPath(userID, subjectID), nil, nil, nil)
}

// UnassignSubject removes a subject from a teacher.
func (c *Client) UnassignSubject(ctx context.Context, userID, subjectID string) error {
	return c.do(ctx, http.MethodDelete, subjectLinkPath(userID, subjectID), nil, nil, nil)
}

func subjectLinkPath(userID, subjectID string) string {
	return "/users/" + url.PathEscape(userID) + "/subjects/" + url.PathEscape(subjectID)
}
