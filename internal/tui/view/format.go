// Package view provides rendering helpers for the TUI.
package view

import (
	"github.com/charmbracelet/x/ansi"

	"github.com/javiermolinar/timeflow/internal/schedule"
)

// FreeLabel marks a free availability slot.
const FreeLabel = "· free"

// CellLabel is the text shown in a grid cell, truncated to width.
func CellLabel(c schedule.Cell, width int) string {
	var label string
	switch c.Occupant.Kind {
	case schedule.OccupantLesson:
		l := c.Occupant.Lesson
		label = l.Title()
		switch l.Status {
		case schedule.StatusCancelled:
			label = "✗ " + label
		case schedule.StatusRescheduled:
			label = "↻ " + label
		}
	case schedule.OccupantFree:
		label = FreeLabel
	}
	if width <= 0 {
		return label
	}
	return ansi.Truncate(label, width, "…")
}

// HourColumnLabel shortens the hour label to its start ("13:00") when the
// column is too narrow for the full range.
func HourColumnLabel(slot schedule.HourSlot, width int) string {
	if width <= 0 || ansi.StringWidth(slot.Label) <= width {
		return slot.Label
	}
	return ansi.Truncate(slot.Label, 5, "")
}
