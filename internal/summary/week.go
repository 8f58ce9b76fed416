// Package summary provides shared week summary utilities.
package summary

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/javiermolinar/timeflow/internal/dateutil"
	"github.com/javiermolinar/timeflow/internal/schedule"
)

// Entry is one placed lesson of a week.
type Entry struct {
	Date    time.Time
	Hour    int
	Lesson  *schedule.Lesson
	Dropped bool // lost its cell to an earlier lesson
}

// WeekSummary holds aggregated week data.
type WeekSummary struct {
	Window  schedule.WeekWindow
	Entries []Entry
	Stats   schedule.GridStats
	Outside int
}

// SummarizeGrid collects the lessons of grid in chronological order.
// Lessons dropped by the first-wins rule are listed after the winner of
// their cell and flagged.
func SummarizeGrid(grid *schedule.Grid) *WeekSummary {
	s := &WeekSummary{
		Window:  grid.Window,
		Stats:   grid.Stats(),
		Outside: len(grid.Outside),
	}

	for _, row := range grid.Cells {
		for _, c := range row {
			if c.Occupant.Kind == schedule.OccupantLesson {
				s.Entries = append(s.Entries, Entry{Date: c.Date, Hour: c.Hour, Lesson: c.Occupant.Lesson})
			}
		}
	}
	for _, a := range grid.Ambiguities {
		s.Entries = append(s.Entries, Entry{Date: a.Cell.Date, Hour: a.Cell.Hour, Lesson: a.Dropped, Dropped: true})
	}

	sort.SliceStable(s.Entries, func(i, j int) bool {
		a, b := s.Entries[i], s.Entries[j]
		if !dateutil.SameDay(a.Date, b.Date) {
			return a.Date.Before(b.Date)
		}
		if a.Hour != b.Hour {
			return a.Hour < b.Hour
		}
		return !a.Dropped && b.Dropped
	})
	return s
}

// Text renders the summary as plain text, one line per lesson grouped by day.
func (s *WeekSummary) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Week %s\n", s.Window)

	var day time.Time
	for _, e := range s.Entries {
		if day.IsZero() || !dateutil.SameDay(day, e.Date) {
			day = e.Date
			fmt.Fprintf(&b, "\n%s %s\n", schedule.DayOfWeekOf(day), day.Format("02 Jan"))
		}
		line := fmt.Sprintf("  %s  %s", schedule.HourLabel(e.Hour), e.Lesson.Title())
		if e.Lesson.Subject.Name != "" {
			line += " · " + e.Lesson.Subject.Name
		}
		if e.Lesson.Status != "" && e.Lesson.Status != schedule.StatusScheduled {
			line += " (" + strings.ToLower(string(e.Lesson.Status)) + ")"
		}
		if e.Dropped {
			line += " [overlaps]"
		}
		b.WriteString(line + "\n")
	}
	if len(s.Entries) == 0 {
		b.WriteString("\nNo lessons.\n")
	}

	fmt.Fprintf(&b, "\n%s\n", s.StatsLine())
	return b.String()
}

// StatsLine is the one-line tally shown under a grid.
func (s *WeekSummary) StatsLine() string {
	st := s.Stats
	line := fmt.Sprintf("%d lessons (%d scheduled, %d rescheduled, %d cancelled) · %d free slots",
		st.Lessons,
		st.ByStatus[schedule.StatusScheduled],
		st.ByStatus[schedule.StatusRescheduled],
		st.ByStatus[schedule.StatusCancelled],
		st.Free,
	)
	if s.Outside > 0 {
		line += fmt.Sprintf(" · %d outside hours", s.Outside)
	}
	return line
}
