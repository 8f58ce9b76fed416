package schedule

import (
	"time"

	"github.com/javiermolinar/timeflow/internal/dateutil"
)

// WeekWindow is an inclusive 7-day span starting on the configured week-start day.
// Windows are values; navigation produces a new window instead of mutating one.
type WeekWindow struct {
	Start time.Time // midnight of the first day
	End   time.Time // midnight of the last day, Start + 6 days
}

// Days returns the seven dates of the window in week order.
func (w WeekWindow) Days() [7]time.Time {
	var days [7]time.Time
	for i := range days {
		days[i] = w.Start.AddDate(0, 0, i)
	}
	return days
}

// Contains reports whether t's calendar date is one of the window's days.
// The date is read in t's own location.
func (w WeekWindow) Contains(t time.Time) bool {
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, w.Start.Location())
	return !d.Before(w.Start) && !d.After(w.End)
}

// Equal reports whether both windows cover the same days.
func (w WeekWindow) Equal(other WeekWindow) bool {
	return w.Start.Equal(other.Start) && w.End.Equal(other.End)
}

// Key is a stable identifier for the window ("2025-04-14").
func (w WeekWindow) Key() string {
	return w.Start.Format("2006-01-02")
}

// String formats the window for headers ("14 Apr 2025 – 20 Apr 2025").
func (w WeekWindow) String() string {
	return w.Start.Format("02 Jan 2006") + " – " + w.End.Format("02 Jan 2006")
}

// Navigator snaps dates to week windows and moves between them.
type Navigator struct {
	start time.Weekday
}

// NewNavigator returns a navigator for weeks starting on Monday or Sunday.
func NewNavigator(weekStart time.Weekday) (Navigator, error) {
	if weekStart != time.Monday && weekStart != time.Sunday {
		return Navigator{}, configErrorf("week_start", "must be monday or sunday, got %s", weekStart)
	}
	return Navigator{start: weekStart}, nil
}

// WeekStart returns the configured first day of the week.
func (n Navigator) WeekStart() time.Weekday {
	return n.start
}

// CurrentWeek returns the window containing ref, in ref's location.
func (n Navigator) CurrentWeek(ref time.Time) WeekWindow {
	day := dateutil.TruncateToDay(ref)
	back := (int(day.Weekday()) - int(n.start) + 7) % 7
	start := day.AddDate(0, 0, -back)
	return WeekWindow{Start: start, End: start.AddDate(0, 0, 6)}
}

// Advance shifts w by delta whole weeks. Negative deltas go back in time
// without any lower bound.
func (n Navigator) Advance(w WeekWindow, delta int) WeekWindow {
	start := w.Start.AddDate(0, 0, 7*delta)
	return WeekWindow{Start: start, End: start.AddDate(0, 0, 6)}
}
