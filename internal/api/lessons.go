package api

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/javiermolinar/timeflow/internal/schedule"
)

// LessonsInRange returns the lessons of ownerID with start <= lessonDate <= end.
// The instants are sent as given, truncated to milliseconds.
func (c *Client) LessonsInRange(ctx context.Context, ownerID string, start, end time.Time) ([]schedule.Lesson, error) {
	req := rangeRequest{
		UserID:    ownerID,
		StartDate: wireTimestamp(start),
		EndDate:   wireTimestamp(end),
	}
	var lessons []schedule.Lesson
	if err := c.do(ctx, http.MethodPost, "/lessons/range", nil, req, &lessons); err != nil {
		return nil, err
	}
	return lessons, nil
}

// ClientLessons returns a client's lessons, optionally limited to one day.
func (c *Client) ClientLessons(ctx context.Context, clientID string, date time.Time) ([]schedule.Lesson, error) {
	var query url.Values
	if !date.IsZero() {
		query = url.Values{"date": {date.Format("2006-01-02")}}
	}
	var lessons []schedule.Lesson
	if err := c.do(ctx, http.MethodGet, "/lessons/client/"+url.PathEscape(clientID), query, nil, &lessons); err != nil {
		return nil, err
	}
	return lessons, nil
}

// CancelLesson cancels a lesson.
func (c *Client) CancelLesson(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/lessons/"+url.PathEscape(id), nil, nil, nil)
}

// RescheduleLesson moves a lesson to a new instant.
func (c *Client) RescheduleLesson(ctx context.Context, id string, at time.Time) error {
	req := rescheduleRequest{LessonID: id, NewLessonDate: wireTimestamp(at)}
	return c.do(ctx, http.MethodPost, "/lessons/reschedule", nil, req, nil)
}
