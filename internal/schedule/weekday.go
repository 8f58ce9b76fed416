// Package schedule implements the weekly scheduling grid: week navigation,
// timezone reconciliation of lesson timestamps, recurrence matching of
// availability slots, and the overlay that merges both into per-cell state.
package schedule

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidDayOfWeek is returned when a weekday name or number is not recognized.
var ErrInvalidDayOfWeek = errors.New("invalid day of week")

// DayOfWeek is a weekday name as the remote API spells it ("Monday").
type DayOfWeek string

const (
	Sunday    DayOfWeek = "Sunday"
	Monday    DayOfWeek = "Monday"
	Tuesday   DayOfWeek = "Tuesday"
	Wednesday DayOfWeek = "Wednesday"
	Thursday  DayOfWeek = "Thursday"
	Friday    DayOfWeek = "Friday"
	Saturday  DayOfWeek = "Saturday"
)

// daysByNumber is indexed by the numeric wire form (Sunday=0).
var daysByNumber = [7]DayOfWeek{Sunday, Monday, Tuesday, Wednesday, Thursday, Friday, Saturday}

// AllDays returns the weekdays in numeric order, Sunday first.
func AllDays() []DayOfWeek {
	days := make([]DayOfWeek, len(daysByNumber))
	copy(days, daysByNumber[:])
	return days
}

// DayOfWeekOf returns the weekday name of t in t's own location.
func DayOfWeekOf(t time.Time) DayOfWeek {
	return daysByNumber[t.Weekday()]
}

// DayOfWeekFromNumber maps Sunday=0..Saturday=6 back to a weekday name.
func DayOfWeekFromNumber(n int) (DayOfWeek, error) {
	if n < 0 || n > 6 {
		return "", fmt.Errorf("%w: %d", ErrInvalidDayOfWeek, n)
	}
	return daysByNumber[n], nil
}

// ParseDayOfWeek parses a weekday name case-insensitively.
// Three-letter abbreviations ("mon") are accepted.
func ParseDayOfWeek(s string) (DayOfWeek, error) {
	in := strings.ToLower(strings.TrimSpace(s))
	for _, d := range daysByNumber {
		name := strings.ToLower(string(d))
		if in == name || (len(in) == 3 && strings.HasPrefix(name, in)) {
			return d, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDayOfWeek, s)
}

// Valid reports whether d is one of the seven weekday names.
func (d DayOfWeek) Valid() bool {
	_, ok := d.weekday()
	return ok
}

// Number returns the numeric wire form (Sunday=0..Saturday=6), or -1 if d is invalid.
func (d DayOfWeek) Number() int {
	wd, ok := d.weekday()
	if !ok {
		return -1
	}
	return int(wd)
}

// Weekday converts d to a time.Weekday. Invalid names map to time.Sunday.
func (d DayOfWeek) Weekday() time.Weekday {
	wd, _ := d.weekday()
	return wd
}

// Short returns the three-letter abbreviation.
func (d DayOfWeek) Short() string {
	if len(d) < 3 {
		return string(d)
	}
	return string(d[:3])
}

func (d DayOfWeek) weekday() (time.Weekday, bool) {
	for i, name := range daysByNumber {
		if name == d {
			return time.Weekday(i), true
		}
	}
	return time.Sunday, false
}
