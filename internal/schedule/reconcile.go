package schedule

import (
	"time"

	"github.com/javiermolinar/timeflow/internal/dateutil"
)

// CellRef addresses one grid cell: a local calendar date and an hour of day.
type CellRef struct {
	Date time.Time // local midnight
	Hour int
}

// Equal reports whether both refs address the same cell. Dates compare by
// calendar day, so refs built in different locations still match.
func (c CellRef) Equal(other CellRef) bool {
	return c.Hour == other.Hour && dateutil.SameDay(c.Date, other.Date)
}

// Reconciler converts server timestamps into grid coordinates.
//
// The server emits timestamps in a fixed reference zone. The grid works in
// Location after subtracting Offset. This is the only place that correction
// happens; callers hand raw lesson timestamps in exactly once.
type Reconciler struct {
	Offset   time.Duration
	Location *time.Location
}

// NewReconciler returns a reconciler subtracting offsetHours in UTC wall time.
func NewReconciler(offsetHours int) Reconciler {
	return Reconciler{Offset: time.Duration(offsetHours) * time.Hour, Location: time.UTC}
}

// ToLocalCell subtracts the offset from ts and returns its date and hour.
func (r Reconciler) ToLocalCell(ts time.Time) CellRef {
	loc := r.Location
	if loc == nil {
		loc = time.UTC
	}
	local := ts.Add(-r.Offset).In(loc)
	return CellRef{Date: dateutil.TruncateToDay(local), Hour: local.Hour()}
}

// FromLocalCell is the inverse of ToLocalCell: it returns the server
// timestamp that reconciles to the start of c.
func (r Reconciler) FromLocalCell(c CellRef) time.Time {
	loc := r.Location
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := c.Date.Date()
	return time.Date(y, m, d, c.Hour, 0, 0, 0, loc).Add(r.Offset)
}

// ServerRange returns the server-time instants covering the grid days first
// through last: from the start of first to the last nanosecond of last.
func (r Reconciler) ServerRange(first, last time.Time) (from, to time.Time) {
	from = r.FromLocalCell(CellRef{Date: first})
	to = r.FromLocalCell(CellRef{Date: last.AddDate(0, 0, 1)}).Add(-time.Nanosecond)
	return from, to
}

// PlacedLesson is a lesson already reconciled into grid coordinates.
// It has no timestamp field, so it cannot be corrected a second time.
type PlacedLesson struct {
	Cell   CellRef
	Lesson *Lesson
}

// Place reconciles every lesson once, preserving input order.
func (r Reconciler) Place(lessons []Lesson) []PlacedLesson {
	placed := make([]PlacedLesson, 0, len(lessons))
	for i := range lessons {
		placed = append(placed, PlacedLesson{
			Cell:   r.ToLocalCell(lessons[i].LessonDate),
			Lesson: &lessons[i],
		})
	}
	return placed
}
