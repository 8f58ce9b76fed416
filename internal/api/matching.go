package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/javiermolinar/timeflow/internal/schedule"
)

// FindFreeTeachers returns the teachers of subjectID who are free at every
// preferred slot.
func (c *Client) FindFreeTeachers(ctx context.Context, subjectID string, sel schedule.Selection) ([]User, error) {
	if err := sel.Validate(); err != nil {
		return nil, err
	}
	var teachers []User
	query := url.Values{"subjectId": {subjectID}}
	if err := c.do(ctx, http.MethodPost, "/users/free", query, sel.Payload(), &teachers); err != nil {
		return nil, err
	}
	return teachers, nil
}

// CreateSchedule books a recurring schedule with an explicit teacher and
// returns that teacher.
func (c *Client) CreateSchedule(ctx context.Context, teacherID string, req ScheduleRequest) (*User, error) {
	req.Slots = normalizeSlots(req.Slots)
	var teacher User
	query := url.Values{"userId": {teacherID}}
	if err := c.do(ctx, http.MethodPost, "/lessons/main-create", query, req, &teacher); err != nil {
		return nil, err
	}
	return &teacher, nil
}

// AutoCreateSchedule lets the server pick the teacher according to mode.
func (c *Client) AutoCreateSchedule(ctx context.Context, mode Mode, req ScheduleRequest) (*User, error) {
	if mode != ModeMostFree && mode != ModeLeastFree {
		return nil, fmt.Errorf("unknown mode %q", mode)
	}
	req.Slots = normalizeSlots(req.Slots)
	var teacher User
	if err := c.do(ctx, http.MethodPost, "/lessons/main-create/"+url.PathEscape(string(mode)), nil, req, &teacher); err != nil {
		return nil, err
	}
	return &teacher, nil
}

// AutoSearch asks the server to book number lessons for an existing client
// at one weekly slot. The server answers with a message.
func (c *Client) AutoSearch(ctx context.Context, clientID string, pref schedule.SlotPreference, number int) (string, error) {
	req := AutoSearchRequest{
		ClientID:  clientID,
		DayOfWeek: pref.DayOfWeek.Number(),
		Time:      schedule.WireTime(pref.Time),
		Number:    number,
	}
	var msg string
	if err := c.do(ctx, http.MethodPost, "/lessons/auto-search", nil, req, &msg); err != nil {
		return "", err
	}
	return msg, nil
}

// MatchRequest describes a schedule to book for a client.
type MatchRequest struct {
	ClientID  string // existing client; otherwise FullName and Age describe a new one
	FullName  string
	Age       int
	SubjectID string
	Selection schedule.Selection
	StartDate time.Time
	Lessons   int
	TeacherID string // empty lets the server choose by Mode
	Mode      Mode
}

// Payload builds the wire body for r.
func (r MatchRequest) Payload() ScheduleRequest {
	req := ScheduleRequest{
		SubjectID: r.SubjectID,
		Slots:     r.Selection.Payload(),
		StartDate: r.StartDate.Format("2006-01-02"),
		Number:    r.Lessons,
	}
	if r.ClientID != "" {
		id := r.ClientID
		req.ClientID = &id
	} else {
		name, age := r.FullName, r.Age
		req.FullName = &name
		req.Age = &age
	}
	return req
}

// SubmitMatchRequest validates the selection and books the schedule, either
// with r.TeacherID or through the server's auto-assignment.
func (c *Client) SubmitMatchRequest(ctx context.Context, r MatchRequest) (*User, error) {
	if err := r.Selection.Validate(); err != nil {
		return nil, err
	}
	if r.StartDate.IsZero() {
		return nil, errors.New("start date is required")
	}
	if r.TeacherID != "" {
		return c.CreateSchedule(ctx, r.TeacherID, r.Payload())
	}
	mode := r.Mode
	if mode == "" {
		mode = ModeMostFree
	}
	return c.AutoCreateSchedule(ctx, mode, r.Payload())
}

func normalizeSlots(slots []schedule.SlotPreference) []schedule.SlotPreference {
	return schedule.NewSelection(slots...).Payload()
}
