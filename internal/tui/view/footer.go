package view

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// FooterViewState holds the strings needed to render the footer section.
type FooterViewState struct {
	InnerW      int
	FooterH     int
	StatsText   string
	LegendText  string
	StatusText  string
	HelpText    string
	StatsStyle  lipgloss.Style
	StatusStyle lipgloss.Style
	HelpStyle   lipgloss.Style
	VAlign      lipgloss.Position
	Bg          lipgloss.Color
}

// RenderFooter renders stats, legend, status, and help lines. When the
// footer is shorter than four lines only status and help are kept.
func RenderFooter(state FooterViewState) string {
	if state.FooterH <= 0 {
		return ""
	}

	status := footerLine(state.InnerW, state.StatusStyle, state.StatusText)
	help := footerLine(state.InnerW, state.HelpStyle, state.HelpText)

	var s string
	if state.FooterH >= 4 {
		s += footerLine(state.InnerW, state.StatsStyle, state.StatsText) + "\n"
		s += footerLine(state.InnerW, state.HelpStyle, state.LegendText) + "\n"
	}
	s += status + "\n" + help

	return Box(state.InnerW, state.FooterH, state.VAlign, s, state.Bg)
}

func footerLine(width int, style lipgloss.Style, content string) string {
	frameW, _ := style.GetFrameSize()
	contentWidth := width - frameW
	if contentWidth < 0 {
		contentWidth = 0
	}
	style = style.Width(contentWidth)
	if contentWidth > 0 {
		content = ansi.Truncate(content, contentWidth, "")
	}
	return style.Render(content)
}
