package view

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Box places content in a w x h area and paints the unused space with bg.
func Box(w, h int, vAlign lipgloss.Position, content string, bg lipgloss.Color) string {
	placed := lipgloss.Place(w, h, lipgloss.Left, vAlign, content, lipgloss.WithWhitespaceBackground(bg))
	return Fill(placed, w, h, bg)
}

// Fill pads every line of content to width and the block to height.
// Lines wider than width are left alone; extra lines are cut.
func Fill(content string, width, height int, bg lipgloss.Color) string {
	if width <= 0 || height <= 0 {
		return content
	}
	pad := lipgloss.NewStyle().Background(bg)
	lines := strings.Split(content, "\n")
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	for i, line := range lines {
		if gap := width - lipgloss.Width(line); gap > 0 {
			lines[i] = line + pad.Render(strings.Repeat(" ", gap))
		}
	}
	return strings.Join(lines, "\n")
}
