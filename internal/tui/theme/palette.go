// Package theme provides color themes for the TUI.
package theme

import (
	"math"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

// Palette holds precomputed colors derived from a Theme.
type Palette struct {
	Bg          lipgloss.Color
	BgHighlight lipgloss.Color
	BgSelection lipgloss.Color
	Fg          lipgloss.Color
	FgMuted     lipgloss.Color
	Accent      lipgloss.Color
	Today       lipgloss.Color
	Warning     lipgloss.Color

	// Cell backgrounds per occupant.
	LessonBg      lipgloss.Color
	RescheduledBg lipgloss.Color
	CancelledBg   lipgloss.Color
	FreeBg        lipgloss.Color

	// Days already over keep their hue but fade.
	LessonPastBg      lipgloss.Color
	RescheduledPastBg lipgloss.Color
	CancelledPastBg   lipgloss.Color
	FreePastBg        lipgloss.Color

	// Alternate shade for the odd rows.
	LessonBgAlt lipgloss.Color
	FreeBgAlt   lipgloss.Color

	TextOnAccent  lipgloss.Color
	TextOnWarning lipgloss.Color
	TextOnLesson  lipgloss.Color
	TextOnFree    lipgloss.Color
}

// NewPalette derives a Palette from the provided Theme.
func NewPalette(t *Theme) *Palette {
	if t == nil {
		t, _ = Load(DefaultName)
	}

	isLight := isLightTheme(t.Bg)
	lessonBgHex := cellBaseBg(t.Lesson, t.Bg, isLight)
	freeBgHex := cellBaseBg(t.Free, t.Bg, isLight)

	return &Palette{
		Bg:          lipgloss.Color(t.Bg),
		BgHighlight: lipgloss.Color(t.BgHighlight),
		BgSelection: lipgloss.Color(t.BgSelection),
		Fg:          lipgloss.Color(t.Fg),
		FgMuted:     lipgloss.Color(t.FgMuted),
		Accent:      lipgloss.Color(t.Accent),
		Today:       lipgloss.Color(t.Today),
		Warning:     lipgloss.Color(t.Warning),

		LessonBg:      lipgloss.Color(lessonBgHex),
		RescheduledBg: lipgloss.Color(cellBaseBg(t.Rescheduled, t.Bg, isLight)),
		CancelledBg:   lipgloss.Color(cellBaseBg(t.Cancelled, t.Bg, isLight)),
		FreeBg:        lipgloss.Color(freeBgHex),

		LessonPastBg:      lipgloss.Color(cellMutedBg(t.Lesson, t.Bg, isLight)),
		RescheduledPastBg: lipgloss.Color(cellMutedBg(t.Rescheduled, t.Bg, isLight)),
		CancelledPastBg:   lipgloss.Color(cellMutedBg(t.Cancelled, t.Bg, isLight)),
		FreePastBg:        lipgloss.Color(cellMutedBg(t.Free, t.Bg, isLight)),

		LessonBgAlt: lipgloss.Color(alternateShade(lessonBgHex, isLight)),
		FreeBgAlt:   lipgloss.Color(alternateShade(freeBgHex, isLight)),

		TextOnAccent:  lipgloss.Color(chooseTextColor(t.Accent, t.Bg, t.Fg)),
		TextOnWarning: lipgloss.Color(chooseTextColor(t.Warning, t.Bg, t.Fg)),
		TextOnLesson:  lipgloss.Color(chooseTextColor(lessonBgHex, t.Bg, t.Fg)),
		TextOnFree:    lipgloss.Color(chooseTextColor(freeBgHex, t.Bg, t.Fg)),
	}
}

func isLightTheme(bg string) bool {
	return relativeLuminance(bg) > 0.55
}

func cellBaseBg(accent, bg string, isLight bool) string {
	if isLight {
		return blendColors(accent, bg, 0.75)
	}
	return darkenColor(accent)
}

func cellMutedBg(accent, bg string, isLight bool) string {
	if isLight {
		return blendColors(accent, bg, 0.88)
	}
	return muteColor(accent)
}

// darkenColor halves the brightness of hex, keeping every channel above a
// floor so cells stay visible on dark backgrounds.
func darkenColor(hex string) string {
	return scaleColor(hex, 0.50, 40)
}

// muteColor is a heavier darkenColor used for past days.
func muteColor(hex string) string {
	return scaleColor(hex, 0.30, 30)
}

// scaleColor multiplies each 0..255 channel by factor and raises it to at
// least floor. Invalid colors are returned unchanged.
func scaleColor(hex string, factor float64, floor int) string {
	c, err := colorful.Hex(hex)
	if err != nil {
		return hex
	}
	channel := func(v float64) float64 {
		return max(float64(int(math.Round(v*255)*factor)), float64(floor)) / 255
	}
	return colorful.Color{R: channel(c.R), G: channel(c.G), B: channel(c.B)}.Clamped().Hex()
}

// alternateShade nudges a background so neighbouring rows stay distinguishable.
func alternateShade(hex string, isLight bool) string {
	if isLight {
		return blendColors(hex, "#000000", 0.10)
	}
	return blendColors(hex, "#ffffff", 0.30)
}

// blendColors mixes b into a by ratio in RGB space; 0 keeps a.
func blendColors(a, b string, ratio float64) string {
	ca, errA := colorful.Hex(a)
	cb, errB := colorful.Hex(b)
	if errA != nil || errB != nil {
		return a
	}
	ratio = min(max(ratio, 0), 1)
	return ca.BlendRgb(cb, ratio).Hex()
}

func chooseTextColor(bg, lightText, darkText string) string {
	if contrastRatio(bg, lightText) >= contrastRatio(bg, darkText) {
		return lightText
	}
	return darkText
}

// contrastRatio is the WCAG contrast between two colors, 1 to 21.
func contrastRatio(a, b string) float64 {
	l1, l2 := relativeLuminance(a), relativeLuminance(b)
	if l1 < l2 {
		l1, l2 = l2, l1
	}
	return (l1 + 0.05) / (l2 + 0.05)
}

func relativeLuminance(hex string) float64 {
	c, err := colorful.Hex(hex)
	if err != nil {
		return 0
	}
	r, g, b := c.LinearRgb()
	return 0.2126*r + 0.7152*g + 0.0722*b
}
