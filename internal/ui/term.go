package ui

import (
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// Color definitions for consistent styling across the UI.
var (
	// Booked lessons: bold cyan
	colorLesson = color.New(color.FgCyan, color.Bold)

	// Cancelled lessons: red, struck through where supported
	colorCancelled = color.New(color.FgRed, color.CrossedOut)

	// Rescheduled lessons: yellow
	colorRescheduled = color.New(color.FgYellow)

	// Free slots: green
	colorFree = color.New(color.FgGreen)

	// Headers: bold
	colorHeader = color.New(color.Bold)

	// Today's column
	colorToday = color.New(color.FgMagenta, color.Bold)

	// Warnings: yellow
	colorWarning = color.New(color.FgYellow)

	// Muted: for secondary information
	colorMuted = color.New(color.FgWhite, color.Faint)
)

// termWidth returns the terminal width, or a default if detection fails.
func termWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 120
	}
	return width
}

// stdinIsTerminal reports whether passwords can be read without echo.
func stdinIsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// DisableColor disables all color output.
func DisableColor() {
	color.NoColor = true
}

// EnableColor enables color output (if terminal supports it).
func EnableColor() {
	color.NoColor = false
}

func formatHeader(s string) string {
	return colorHeader.Sprint(s)
}

func formatMuted(s string) string {
	return colorMuted.Sprint(s)
}

func formatWarning(s string) string {
	return colorWarning.Sprint(s)
}
