// Package dateutil provides date parsing and calendar-day helpers.
package dateutil

import (
	"errors"
	"strings"
	"time"
)

// Validation errors.
var (
	ErrInvalidDateFormat  = errors.New("date must be in YYYY-MM-DD format")
	ErrEndDateBeforeStart = errors.New("end date must be on or after start date")
)

// weekdayMap maps weekday names to time.Weekday values.
var weekdayMap = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// DateRange represents a validated, inclusive range of calendar days.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewRange truncates start and end to their days and checks their order.
func NewRange(start, end time.Time) (*DateRange, error) {
	r := &DateRange{Start: TruncateToDay(start), End: TruncateToDay(end)}
	if r.End.Before(r.Start) {
		return nil, ErrEndDateBeforeStart
	}
	return r, nil
}

// ParseWeekday parses a lowercase or capitalized weekday name.
func ParseWeekday(s string) (time.Weekday, bool) {
	wd, ok := weekdayMap[strings.ToLower(strings.TrimSpace(s))]
	return wd, ok
}

// TruncateToDay returns t with time set to midnight.
func TruncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SameDay reports whether a and b share a calendar date, each read in its
// own location.
func SameDay(a, b time.Time) bool {
	ya, ma, da := a.Date()
	yb, mb, db := b.Date()
	return ya == yb && ma == mb && da == db
}

// ParseRelativeDate parses a date string that can be:
//   - Empty string or "today": returns relativeTo date
//   - Absolute date: "2025-01-15" (YYYY-MM-DD)
//   - Keywords: "tomorrow", "yesterday", "next-week", "last-week"
//   - Weekday names: "monday" through "sunday" (next occurrence)
//   - Prefixed weekdays: "next-monday", "last-friday"
//
// All inputs are case-insensitive. Past dates are allowed.
func ParseRelativeDate(s string, relativeTo time.Time) (time.Time, error) {
	today := TruncateToDay(relativeTo)
	input := strings.ToLower(strings.TrimSpace(s))

	switch input {
	case "", "today":
		return today, nil
	case "tomorrow":
		return today.AddDate(0, 0, 1), nil
	case "yesterday":
		return today.AddDate(0, 0, -1), nil
	case "next-week":
		return today.AddDate(0, 0, 7), nil
	case "last-week":
		return today.AddDate(0, 0, -7), nil
	}

	if name, ok := strings.CutPrefix(input, "next-"); ok {
		if target, ok := weekdayMap[name]; ok {
			return nextWeekday(today, target), nil
		}
		return time.Time{}, ErrInvalidDateFormat
	}
	if name, ok := strings.CutPrefix(input, "last-"); ok {
		if target, ok := weekdayMap[name]; ok {
			return previousWeekday(today, target), nil
		}
		return time.Time{}, ErrInvalidDateFormat
	}

	if target, ok := weekdayMap[input]; ok {
		return nextWeekday(today, target), nil
	}

	result, err := time.ParseInLocation("2006-01-02", input, relativeTo.Location())
	if err != nil {
		return time.Time{}, ErrInvalidDateFormat
	}
	return result, nil
}

// nextWeekday returns the next occurrence of target after today.
// If today is the target weekday, returns one week from today.
func nextWeekday(today time.Time, target time.Weekday) time.Time {
	daysUntil := int(target) - int(today.Weekday())
	if daysUntil <= 0 {
		daysUntil += 7
	}
	return today.AddDate(0, 0, daysUntil)
}

// previousWeekday returns the last occurrence of target before today.
func previousWeekday(today time.Time, target time.Weekday) time.Time {
	daysSince := int(today.Weekday()) - int(target)
	if daysSince <= 0 {
		daysSince += 7
	}
	return today.AddDate(0, 0, -daysSince)
}
