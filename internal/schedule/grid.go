package schedule

import (
	"fmt"
	"time"
)

// HourSlot is one row of the grid.
type HourSlot struct {
	Hour  int
	Label string // "09:00 – 10:00"
}

// HourRange is the half-open [From, To) range of hours shown by the grid.
type HourRange struct {
	From int
	To   int
}

// FullDay covers all 24 hours.
var FullDay = HourRange{From: 0, To: 24}

// Validate rejects ranges outside [0,24] or with From >= To.
func (r HourRange) Validate() error {
	if r.From < 0 || r.From > 24 {
		return configErrorf("from_hour", "must be within 0..24, got %d", r.From)
	}
	if r.To < 0 || r.To > 24 {
		return configErrorf("to_hour", "must be within 0..24, got %d", r.To)
	}
	if r.From >= r.To {
		return configErrorf("from_hour", "must be before to_hour (%d >= %d)", r.From, r.To)
	}
	return nil
}

// Len returns the number of rows in the range.
func (r HourRange) Len() int {
	return r.To - r.From
}

// Contains reports whether hour is one of the range's rows.
func (r HourRange) Contains(hour int) bool {
	return hour >= r.From && hour < r.To
}

// GridAxes holds the rows and columns a week grid is rendered against.
type GridAxes struct {
	Rows    []HourSlot
	Columns [7]time.Time
}

// NewGridAxes builds the hour rows for [fromHour, toHour) and the seven day
// columns of w.
func NewGridAxes(fromHour, toHour int, w WeekWindow) (GridAxes, error) {
	hours := HourRange{From: fromHour, To: toHour}
	if err := hours.Validate(); err != nil {
		return GridAxes{}, err
	}

	rows := make([]HourSlot, 0, hours.Len())
	for h := hours.From; h < hours.To; h++ {
		rows = append(rows, HourSlot{Hour: h, Label: HourLabel(h)})
	}
	return GridAxes{Rows: rows, Columns: w.Days()}, nil
}

// HourLabel formats the row label for hour h.
func HourLabel(h int) string {
	return fmt.Sprintf("%02d:00 – %02d:00", h, h+1)
}
