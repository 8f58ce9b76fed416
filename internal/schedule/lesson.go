package schedule

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// LessonStatus is the booking state of a lesson.
type LessonStatus string

const (
	StatusScheduled   LessonStatus = "Scheduled"
	StatusCancelled   LessonStatus = "Cancelled"
	StatusRescheduled LessonStatus = "Rescheduled"
)

// statusAliases maps every spelling the API is known to emit.
var statusAliases = map[string]LessonStatus{
	"scheduled":    StatusScheduled,
	"запланирован": StatusScheduled,
	"cancelled":    StatusCancelled,
	"canceled":     StatusCancelled,
	"отменён":      StatusCancelled,
	"отменен":      StatusCancelled,
	"rescheduled":  StatusRescheduled,
	"перенесён":    StatusRescheduled,
	"перенесен":    StatusRescheduled,
}

// ParseLessonStatus accepts English names and the API's localized labels.
func ParseLessonStatus(s string) (LessonStatus, error) {
	if st, ok := statusAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return st, nil
	}
	return "", fmt.Errorf("unknown lesson status %q", s)
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *LessonStatus) UnmarshalText(text []byte) error {
	st, err := ParseLessonStatus(string(text))
	if err != nil {
		return err
	}
	*s = st
	return nil
}

// Client is the student a lesson is booked for.
type Client struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
	Age      int    `json:"age"`
}

// Subject is what a lesson teaches.
type Subject struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Lesson is a booked lesson at an absolute timestamp, as returned by the API.
// The grid only reads LessonDate and Status.
type Lesson struct {
	ID         string       `json:"id"`
	LessonDate time.Time    `json:"lessonDate"`
	Status     LessonStatus `json:"status"`
	Client     Client       `json:"client"`
	Subject    Subject      `json:"subject"`
}

// Title returns the label shown in a grid cell.
func (l *Lesson) Title() string {
	if l.Client.FullName != "" {
		return l.Client.FullName
	}
	return l.Client.ID
}

// UnmarshalJSON accepts lessonDate with or without a zone designator.
// Timestamps without one are taken as UTC, which is what the server emits.
func (l *Lesson) UnmarshalJSON(data []byte) error {
	type alias Lesson
	var raw struct {
		alias
		LessonDate string `json:"lessonDate"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*l = Lesson(raw.alias)
	if raw.LessonDate == "" {
		return nil
	}
	ts, err := ParseTimestamp(raw.LessonDate)
	if err != nil {
		return fmt.Errorf("lesson %s: %w", raw.ID, err)
	}
	l.LessonDate = ts
	return nil
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.9999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// ParseTimestamp parses a server timestamp. Values without a zone are UTC.
func ParseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
}
