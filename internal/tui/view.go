package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/javiermolinar/timeflow/internal/dateutil"
	"github.com/javiermolinar/timeflow/internal/schedule"
	"github.com/javiermolinar/timeflow/internal/summary"
	"github.com/javiermolinar/timeflow/internal/tui/view"
)

const (
	hourColWidth      = 15
	footerCompact     = 2
	footerFull        = 4
	footerFullMinRows = 20
)

// Layout holds dimensions derived from the window size.
type Layout struct {
	InnerW   int
	InnerH   int
	TitleH   int
	GridH    int
	FooterH  int
	ColWidth int
}

func (m Model) layout() Layout {
	frameW, frameH := m.styles.AppStyle.GetFrameSize()
	l := Layout{
		InnerW: max(0, m.width-frameW),
		InnerH: max(0, m.height-frameH),
		TitleH: 1,
	}
	l.FooterH = footerCompact
	if l.InnerH >= footerFullMinRows {
		l.FooterH = footerFull
	}
	l.GridH = max(0, l.InnerH-l.TitleH-l.FooterH)

	// The table is two narrower than the app; eight columns need nine
	// border characters.
	l.ColWidth = (l.InnerW - 2 - hourColWidth - 9) / 7
	if l.ColWidth < 4 {
		l.ColWidth = 4
	}
	return l
}

// View renders the TUI.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}
	l := m.layout()
	if l.InnerW <= 0 || l.InnerH <= 0 {
		return "Terminal too small"
	}

	title := m.renderTitle(l)
	grid := m.renderGrid(l)
	footer := view.RenderFooter(m.footerViewState(l))

	content := lipgloss.JoinVertical(lipgloss.Left, title, grid, footer)
	app := m.styles.AppStyle.Render(content)
	return view.Fill(app, m.width, m.height, m.styles.Bg())
}

func (m Model) renderTitle(l Layout) string {
	parts := []string{"timeflow"}
	if m.ownerName != "" {
		parts = append(parts, m.ownerName)
	}
	parts = append(parts, m.window.String())
	if m.markers == schedule.MarkBusy {
		parts = append(parts, "working hours")
	}
	title := strings.Join(parts, " · ")
	if m.loading {
		title += " " + m.spinner.View()
	}
	return view.Box(l.InnerW, l.TitleH, lipgloss.Top, m.styles.TitleStyle.Render(title), m.styles.Bg())
}

func (m Model) renderGrid(l Layout) string {
	if m.grid == nil {
		msg := "Loading week..."
		if m.err != nil {
			msg = "No data for this week."
		}
		return view.Box(l.InnerW, l.GridH, lipgloss.Center, m.styles.HelpStyle.Render(msg), m.styles.Bg())
	}
	return m.weekTable(l).Render()
}

// weekTable builds the visible page of the grid, scrolled so the cursor row
// stays on screen. Header and borders take four lines.
func (m Model) weekTable(l Layout) view.WeekTable {
	t := view.WeekTable{
		Width:  l.InnerW,
		Height: l.GridH,
		Border: m.styles.BorderStyle,
		Bg:     m.styles.Bg(),
	}
	if l.GridH <= 0 {
		return t
	}

	today := m.now()
	headers, todayCols := view.HeaderLabels(m.grid.Window, today)
	for i, h := range headers {
		t.Header[i] = h
		switch {
		case i == 0:
			t.HeaderStyles[i] = m.styles.HourColumnStyle.Width(hourColWidth)
		case todayCols[i]:
			t.HeaderStyles[i] = m.styles.DayHeaderTodayStyle.Width(l.ColWidth)
		default:
			t.HeaderStyles[i] = m.styles.DayHeaderStyle.Width(l.ColWidth)
		}
	}

	visible := max(1, l.GridH-4)
	first := 0
	if m.cursor.Row >= visible {
		first = m.cursor.Row - visible + 1
	}
	last := min(len(m.grid.Cells), first+visible)

	for r := first; r < last; r++ {
		var row view.WeekRow
		row.Labels[0] = view.HourColumnLabel(m.grid.Axes.Rows[r], hourColWidth-1)
		row.Styles[0] = m.styles.HourColumnStyle.Width(hourColWidth)
		for d, c := range m.grid.Cells[r] {
			style := m.styles.CellStyle(c, isPast(c, today), r%2 == 1)
			if r == m.cursor.Row && d == m.cursor.Day {
				style = m.styles.CursorStyle
			}
			row.Labels[d+1] = view.CellLabel(c, l.ColWidth-2)
			row.Styles[d+1] = style.Width(l.ColWidth)
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func (m Model) footerViewState(l Layout) view.FooterViewState {
	state := view.FooterViewState{
		InnerW:      l.InnerW,
		FooterH:     l.FooterH,
		LegendText:  "■ lesson  ✗ cancelled  ↻ rescheduled  " + view.FreeLabel,
		StatusText:  m.status,
		HelpText:    m.help.View(m.keys),
		StatsStyle:  m.styles.StatsBarStyle,
		StatusStyle: m.styles.StatusStyle,
		HelpStyle:   m.styles.HelpStyle,
		VAlign:      lipgloss.Top,
		Bg:          m.styles.Bg(),
	}
	if m.grid != nil {
		state.StatsText = summary.SummarizeGrid(m.grid).StatsLine()
	}
	if m.err != nil {
		state.StatusText = "Error: " + m.err.Error()
		state.StatusStyle = m.styles.ErrorStyle
	}
	return state
}

// isPast reports whether the cell's day is before today.
func isPast(c schedule.Cell, today time.Time) bool {
	if dateutil.SameDay(c.Date, today) {
		return false
	}
	return c.Date.Before(today)
}
