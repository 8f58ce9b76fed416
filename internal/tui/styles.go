// Package tui provides the terminal week browser for timeflow.
package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/javiermolinar/timeflow/internal/schedule"
	"github.com/javiermolinar/timeflow/internal/tui/theme"
)

// Default day column width, recalculated on resize.
const defaultColWidth = 16

// Styles holds all lipgloss styles for the TUI, derived from a theme.
type Styles struct {
	palette *theme.Palette

	TitleStyle lipgloss.Style

	DayHeaderStyle      lipgloss.Style
	DayHeaderTodayStyle lipgloss.Style
	HourColumnStyle     lipgloss.Style

	EmptyCellStyle lipgloss.Style
	CursorStyle    lipgloss.Style

	StatsBarStyle lipgloss.Style
	StatusStyle   lipgloss.Style
	ErrorStyle    lipgloss.Style
	HelpStyle     lipgloss.Style

	BorderStyle lipgloss.Style
	AppStyle    lipgloss.Style
}

// NewStyles creates a new Styles instance from a theme.
func NewStyles(t *theme.Theme) *Styles {
	p := theme.NewPalette(t)
	s := &Styles{palette: p}

	base := lipgloss.NewStyle().Background(p.Bg).Foreground(p.Fg)

	s.TitleStyle = base.Bold(true).Foreground(p.Accent)

	s.DayHeaderStyle = base.
		Bold(true).
		Align(lipgloss.Center)
	s.DayHeaderTodayStyle = s.DayHeaderStyle.Foreground(p.Today)
	s.HourColumnStyle = base.Foreground(p.FgMuted).PaddingRight(1)

	s.EmptyCellStyle = base.Padding(0, 1)
	s.CursorStyle = lipgloss.NewStyle().
		Background(p.BgSelection).
		Foreground(p.Fg).
		Bold(true).
		Padding(0, 1)

	s.StatsBarStyle = lipgloss.NewStyle().
		Background(p.BgHighlight).
		Foreground(p.Fg).
		Padding(0, 1)
	s.StatusStyle = base.Foreground(p.Accent).Padding(0, 1)
	s.ErrorStyle = lipgloss.NewStyle().
		Background(p.Warning).
		Foreground(p.TextOnWarning).
		Padding(0, 1)
	s.HelpStyle = base.Foreground(p.FgMuted).Padding(0, 1)

	s.BorderStyle = lipgloss.NewStyle().Foreground(p.Accent).Background(p.Bg)
	s.AppStyle = base.Padding(0, 1)

	return s
}

// Bg is the app background.
func (s *Styles) Bg() lipgloss.Color {
	return s.palette.Bg
}

// CellStyle picks the style for c. Past days are faded; odd rows use the
// alternate shade.
func (s *Styles) CellStyle(c schedule.Cell, past, odd bool) lipgloss.Style {
	p := s.palette
	cell := lipgloss.NewStyle().Padding(0, 1)

	switch c.Occupant.Kind {
	case schedule.OccupantLesson:
		bg := p.LessonBg
		switch {
		case c.Occupant.Lesson.Status == schedule.StatusCancelled && past:
			bg = p.CancelledPastBg
		case c.Occupant.Lesson.Status == schedule.StatusCancelled:
			bg = p.CancelledBg
		case c.Occupant.Lesson.Status == schedule.StatusRescheduled && past:
			bg = p.RescheduledPastBg
		case c.Occupant.Lesson.Status == schedule.StatusRescheduled:
			bg = p.RescheduledBg
		case past:
			bg = p.LessonPastBg
		case odd:
			bg = p.LessonBgAlt
		}
		cell = cell.Background(bg).Foreground(p.TextOnLesson)
		if c.Occupant.Lesson.Status == schedule.StatusCancelled {
			cell = cell.Strikethrough(true)
		}
		return cell
	case schedule.OccupantFree:
		bg := p.FreeBg
		switch {
		case past:
			bg = p.FreePastBg
		case odd:
			bg = p.FreeBgAlt
		}
		return cell.Background(bg).Foreground(p.TextOnFree)
	default:
		if past {
			return s.EmptyCellStyle.Foreground(p.FgMuted)
		}
		return s.EmptyCellStyle
	}
}
