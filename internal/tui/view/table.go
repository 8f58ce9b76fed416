package view

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// Columns is the hour column plus seven days.
const Columns = 8

// WeekRow is one visible hour of the week table.
type WeekRow struct {
	Labels [Columns]string
	Styles [Columns]lipgloss.Style
}

// WeekTable is the visible page of a week grid.
type WeekTable struct {
	Width, Height int
	Header        [Columns]string
	HeaderStyles  [Columns]lipgloss.Style
	Rows          []WeekRow
	Border        lipgloss.Style
	Bg            lipgloss.Color
}

// Render draws the table inside a Width x Height box.
func (t WeekTable) Render() string {
	if t.Height <= 0 {
		return ""
	}
	rows := make([][]string, 0, len(t.Rows))
	for _, r := range t.Rows {
		r := r
		rows = append(rows, r.Labels[:])
	}
	tbl := table.New().
		Headers(t.Header[:]...).
		Width(max(0, t.Width-2)).
		Height(t.Height).
		Border(lipgloss.RoundedBorder()).
		BorderRow(false).
		BorderStyle(t.Border).
		Rows(rows...).
		StyleFunc(t.cellStyle)
	return Box(t.Width, t.Height, lipgloss.Top, tbl.Render(), t.Bg)
}

func (t WeekTable) cellStyle(row, col int) lipgloss.Style {
	switch {
	case col < 0 || col >= Columns:
		return lipgloss.NewStyle()
	case row == table.HeaderRow:
		return t.HeaderStyles[col]
	case row < 0 || row >= len(t.Rows):
		return lipgloss.NewStyle()
	}
	return t.Rows[row].Styles[col]
}
