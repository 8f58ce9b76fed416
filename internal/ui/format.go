package ui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/x/ansi"
	"github.com/fatih/color"

	"github.com/javiermolinar/timeflow/internal/schedule"
	"github.com/javiermolinar/timeflow/internal/summary"
	"github.com/javiermolinar/timeflow/internal/tui/view"
)

const (
	hourColWidth = 14
	minCellWidth = 8
	maxCellWidth = 20
)

// GridOpts configures text grid printing.
type GridOpts struct {
	Today     time.Time
	CellWidth int // 0 = derived from the terminal width
	Markers   schedule.MarkerPolicy
}

func (o GridOpts) cellWidth() int {
	if o.CellWidth > 0 {
		return o.CellWidth
	}
	w := (termWidth() - hourColWidth - 8) / 7
	return min(maxCellWidth, max(minCellWidth, w))
}

// PrintGrid writes grid as a text table, one row per hour.
func PrintGrid(w io.Writer, grid *schedule.Grid, opts GridOpts) {
	cw := opts.cellWidth()

	labels, todayCols := view.HeaderLabels(grid.Window, opts.Today)
	var b strings.Builder
	b.WriteString(pad(labels[0], hourColWidth))
	for i, label := range labels[1:] {
		cell := pad(strings.Trim(label, "*"), cw)
		if todayCols[i+1] {
			cell = colorToday.Sprint(cell)
		} else {
			cell = formatHeader(cell)
		}
		b.WriteString(" " + cell)
	}
	fmt.Fprintln(w, b.String())
	fmt.Fprintln(w, strings.Repeat("─", hourColWidth+7*(cw+1)))

	for r, slot := range grid.Axes.Rows {
		b.Reset()
		b.WriteString(formatMuted(pad(view.HourColumnLabel(slot, hourColWidth-1), hourColWidth)))
		for _, c := range grid.Cells[r] {
			label := view.CellLabel(c, cw)
			if c.Occupant.Kind == schedule.OccupantFree && opts.Markers == schedule.MarkBusy {
				label = ansi.Truncate("· busy", cw, "…")
			}
			b.WriteString(" " + cellColor(c).Sprint(pad(label, cw)))
		}
		fmt.Fprintln(w, strings.TrimRight(b.String(), " "))
	}
}

// PrintWeekFooter writes the stats line and any lessons hidden by overlaps.
func PrintWeekFooter(w io.Writer, grid *schedule.Grid) {
	s := summary.SummarizeGrid(grid)
	fmt.Fprintf(w, "  %s\n", s.StatsLine())
	for _, a := range grid.Ambiguities {
		fmt.Fprintf(w, "  %s\n", formatWarning(fmt.Sprintf("overlap: %s %s kept %s, hid %s",
			a.Cell.Date.Format("Mon 02 Jan"), schedule.HourLabel(a.Cell.Hour),
			a.Winner.Title(), a.Dropped.Title())))
	}
}

func cellColor(c schedule.Cell) *color.Color {
	switch c.Occupant.Kind {
	case schedule.OccupantLesson:
		switch c.Occupant.Lesson.Status {
		case schedule.StatusCancelled:
			return colorCancelled
		case schedule.StatusRescheduled:
			return colorRescheduled
		}
		return colorLesson
	case schedule.OccupantFree:
		return colorFree
	}
	return colorMuted
}

// PrintLessonRow prints one lesson with its local (reconciled) time.
func PrintLessonRow(w io.Writer, l *schedule.Lesson, r schedule.Reconciler) {
	cell := r.ToLocalCell(l.LessonDate)
	who := l.Title()
	if l.Client.Age > 0 {
		who += fmt.Sprintf(" (%d)", l.Client.Age)
	}
	if l.Subject.Name != "" {
		who += " · " + l.Subject.Name
	}
	fmt.Fprintf(w, "  %s %s  %s %02d:00  %s\n",
		statusSymbol(l.Status),
		formatMuted(l.ID),
		cell.Date.Format("Mon 02 Jan"),
		cell.Hour,
		who,
	)
}

func statusSymbol(s schedule.LessonStatus) string {
	switch s {
	case schedule.StatusScheduled:
		return colorLesson.Sprint("○")
	case schedule.StatusCancelled:
		return colorCancelled.Sprint("✗")
	case schedule.StatusRescheduled:
		return colorRescheduled.Sprint("↻")
	default:
		return "?"
	}
}

// pad right-pads s to width display columns.
func pad(s string, width int) string {
	if n := ansi.StringWidth(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}
