package view

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/javiermolinar/timeflow/internal/schedule"
)

func TestWeekTableRender(t *testing.T) {
	tbl := WeekTable{
		Width:  100,
		Height: 6,
		Header: [Columns]string{"Apr 25", "Mon 14", "Tue 15", "Wed 16", "Thu 17", "Fri 18", "Sat 19", "Sun 20"},
		Rows: []WeekRow{
			{Labels: [Columns]string{"13:00", "Boris"}},
		},
	}
	out := tbl.Render()
	for _, want := range []string{"Apr 25", "Mon 14", "Boris"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
	if lines := strings.Split(out, "\n"); len(lines) != 6 {
		t.Errorf("got %d lines, want 6", len(lines))
	}

	if out := (WeekTable{Width: 60}).Render(); out != "" {
		t.Errorf("zero height rendered %q", out)
	}
}

func TestFill(t *testing.T) {
	out := Fill("ab\ncdef\nxyz", 4, 2, lipgloss.Color(""))
	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %q", lines)
	}
	for _, l := range lines {
		if w := lipgloss.Width(l); w != 4 {
			t.Errorf("line %q width %d, want 4", l, w)
		}
	}
}

func TestHeaderLabels(t *testing.T) {
	start := time.Date(2025, 4, 14, 0, 0, 0, 0, time.UTC)
	w := schedule.WeekWindow{Start: start, End: start.AddDate(0, 0, 6)}

	labels, today := HeaderLabels(w, time.Date(2025, 4, 16, 15, 0, 0, 0, time.UTC))
	want := []string{"Apr 25", "Mon 14", "Tue 15", "*Wed 16*", "Thu 17", "Fri 18", "Sat 19", "Sun 20"}
	if strings.Join(labels, "|") != strings.Join(want, "|") {
		t.Errorf("labels = %v, want %v", labels, want)
	}
	if len(today) != 1 || !today[3] {
		t.Errorf("today columns = %v, want {3}", today)
	}
}

func TestCellLabel(t *testing.T) {
	lesson := func(status schedule.LessonStatus) schedule.Cell {
		return schedule.Cell{Occupant: schedule.Occupant{
			Kind:   schedule.OccupantLesson,
			Lesson: &schedule.Lesson{Status: status, Client: schedule.Client{FullName: "Alexandra Petrova"}},
		}}
	}

	tests := []struct {
		name  string
		cell  schedule.Cell
		width int
		want  string
	}{
		{name: "empty", cell: schedule.Cell{}, want: ""},
		{name: "free", cell: schedule.Cell{Occupant: schedule.Occupant{Kind: schedule.OccupantFree}}, want: FreeLabel},
		{name: "scheduled", cell: lesson(schedule.StatusScheduled), want: "Alexandra Petrova"},
		{name: "cancelled", cell: lesson(schedule.StatusCancelled), want: "✗ Alexandra Petrova"},
		{name: "rescheduled", cell: lesson(schedule.StatusRescheduled), want: "↻ Alexandra Petrova"},
		{name: "truncated", cell: lesson(schedule.StatusScheduled), width: 8, want: "Alexand…"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CellLabel(tt.cell, tt.width); got != tt.want {
				t.Errorf("CellLabel = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHourColumnLabel(t *testing.T) {
	slot := schedule.HourSlot{Hour: 13, Label: schedule.HourLabel(13)}
	if got := HourColumnLabel(slot, 20); got != slot.Label {
		t.Errorf("wide = %q", got)
	}
	if got := HourColumnLabel(slot, 6); got != "13:00" {
		t.Errorf("narrow = %q, want 13:00", got)
	}
}

func TestRenderFooter_CompactKeepsStatusAndHelp(t *testing.T) {
	out := RenderFooter(FooterViewState{
		InnerW:     40,
		FooterH:    2,
		StatsText:  "stats",
		LegendText: "legend",
		StatusText: "status",
		HelpText:   "help",
		VAlign:     lipgloss.Top,
	})
	if strings.Contains(out, "stats") || strings.Contains(out, "legend") {
		t.Errorf("compact footer should drop stats and legend: %q", out)
	}
	if !strings.Contains(out, "status") || !strings.Contains(out, "help") {
		t.Errorf("footer = %q", out)
	}
}
