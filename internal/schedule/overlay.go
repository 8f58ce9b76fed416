package schedule

import (
	"time"
)

// OccupantKind classifies what a grid cell holds.
type OccupantKind int

const (
	OccupantEmpty OccupantKind = iota
	OccupantFree
	OccupantLesson
)

func (k OccupantKind) String() string {
	switch k {
	case OccupantFree:
		return "free"
	case OccupantLesson:
		return "lesson"
	default:
		return "empty"
	}
}

// Occupant is the resolved content of a cell. Lesson is set only for
// OccupantLesson.
type Occupant struct {
	Kind   OccupantKind
	Lesson *Lesson
}

// Cell is one (date, hour) unit of a built grid.
type Cell struct {
	Date     time.Time
	Hour     int
	Occupant Occupant
}

// MarkerPolicy selects which availability slots render as free markers.
type MarkerPolicy int

const (
	// MarkFree shows slots that are open for booking (IsAvailable).
	MarkFree MarkerPolicy = iota
	// MarkBusy shows slots the teacher marked as working hours (IsMarkedBusy).
	MarkBusy
)

// GridOptions tunes grid construction.
type GridOptions struct {
	Reconciler Reconciler
	Markers    MarkerPolicy
}

// Ambiguity records a lesson that lost the first-wins tie-break for a cell.
type Ambiguity struct {
	Cell    CellRef
	Winner  *Lesson
	Dropped *Lesson
}

// Grid is a week of cells, indexed [row][day].
type Grid struct {
	Window      WeekWindow
	Axes        GridAxes
	Cells       [][7]Cell
	Ambiguities []Ambiguity
	Outside     []PlacedLesson // lessons that reconcile outside the window or hour range
}

// BuildGrid resolves the occupant of every cell of w within hours.
//
// A lesson reconciling to a cell wins over any availability marker,
// whatever its status. When several lessons land on one cell the first in
// input order is kept and the rest are reported in Ambiguities.
func BuildGrid(w WeekWindow, hours HourRange, lessons []Lesson, slots []AvailabilitySlot, opts GridOptions) (*Grid, error) {
	axes, err := NewGridAxes(hours.From, hours.To, w)
	if err != nil {
		return nil, err
	}

	g := &Grid{
		Window: w,
		Axes:   axes,
		Cells:  make([][7]Cell, len(axes.Rows)),
	}

	booked := make(map[cellKey]*Lesson)
	for _, p := range opts.Reconciler.Place(lessons) {
		if !w.Contains(p.Cell.Date) || !hours.Contains(p.Cell.Hour) {
			g.Outside = append(g.Outside, p)
			continue
		}
		key := keyOf(p.Cell.Date, p.Cell.Hour)
		if winner, taken := booked[key]; taken {
			g.Ambiguities = append(g.Ambiguities, Ambiguity{Cell: p.Cell, Winner: winner, Dropped: p.Lesson})
			continue
		}
		booked[key] = p.Lesson
	}

	marked := IsAvailable
	if opts.Markers == MarkBusy {
		marked = IsMarkedBusy
	}

	for r, row := range axes.Rows {
		for d, date := range axes.Columns {
			cell := Cell{Date: date, Hour: row.Hour}
			switch lesson := booked[keyOf(date, row.Hour)]; {
			case lesson != nil:
				cell.Occupant = Occupant{Kind: OccupantLesson, Lesson: lesson}
			case marked(slots, date, row.Hour):
				cell.Occupant = Occupant{Kind: OccupantFree}
			}
			g.Cells[r][d] = cell
		}
	}

	return g, nil
}

// At returns the cell for date and hour, or false if it is outside the grid.
func (g *Grid) At(date time.Time, hour int) (Cell, bool) {
	if len(g.Axes.Rows) == 0 {
		return Cell{}, false
	}
	r := hour - g.Axes.Rows[0].Hour
	if r < 0 || r >= len(g.Cells) {
		return Cell{}, false
	}
	for d, col := range g.Axes.Columns {
		if keyOf(col, 0) == keyOf(date, 0) {
			return g.Cells[r][d], true
		}
	}
	return Cell{}, false
}

// GridStats counts cells by occupant and lessons by status.
type GridStats struct {
	Empty    int
	Free     int
	Lessons  int
	ByStatus map[LessonStatus]int
}

// Stats tallies the grid.
func (g *Grid) Stats() GridStats {
	stats := GridStats{ByStatus: make(map[LessonStatus]int)}
	for _, row := range g.Cells {
		for _, c := range row {
			switch c.Occupant.Kind {
			case OccupantLesson:
				stats.Lessons++
				stats.ByStatus[c.Occupant.Lesson.Status]++
			case OccupantFree:
				stats.Free++
			default:
				stats.Empty++
			}
		}
	}
	return stats
}

type cellKey struct {
	year  int
	month time.Month
	day   int
	hour  int
}

func keyOf(date time.Time, hour int) cellKey {
	y, m, d := date.Date()
	return cellKey{year: y, month: m, day: d, hour: hour}
}
