// Package theme provides color themes for the TUI.
package theme

import (
	"embed"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/pelletier/go-toml/v2"
)

//go:embed embedded/*.toml
var embeddedThemes embed.FS

// DefaultName is used when no theme, or an unknown one, is configured.
const DefaultName = "mocha"

// Theme holds all colors for a TUI theme.
type Theme struct {
	Name        string `toml:"name"`
	Bg          string `toml:"bg"`
	BgHighlight string `toml:"bg_highlight"` // free markers, stats bar
	BgSelection string `toml:"bg_selection"` // cursor
	Fg          string `toml:"fg"`
	FgMuted     string `toml:"fg_muted"` // past days, hour labels
	Accent      string `toml:"accent"`   // title, borders
	Lesson      string `toml:"lesson"`
	Free        string `toml:"free"`
	Cancelled   string `toml:"cancelled"`
	Rescheduled string `toml:"rescheduled"`
	Today       string `toml:"today"`
	Warning     string `toml:"warning"` // fetch errors
}

// Color returns a lipgloss.Color for the given hex string.
func Color(hex string) lipgloss.Color {
	return lipgloss.Color(hex)
}

// Load loads a theme by name from embedded files.
// Unknown names fall back to the default theme.
func Load(name string) (*Theme, error) {
	if name == "" {
		name = DefaultName
	}
	name = strings.ToLower(name)

	data, err := embeddedThemes.ReadFile("embedded/" + name + ".toml")
	if err != nil {
		if name != DefaultName {
			return Load(DefaultName)
		}
		return nil, fmt.Errorf("loading theme %q: %w", name, err)
	}

	var t Theme
	if err := toml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parsing theme %q: %w", name, err)
	}
	t.applyDefaults()

	return &t, nil
}

func (t *Theme) applyDefaults() {
	t.Rescheduled = coalesce(t.Rescheduled, t.Lesson)
	t.Cancelled = coalesce(t.Cancelled, t.Warning, t.FgMuted)
	t.Today = coalesce(t.Today, t.Accent)
	t.Warning = coalesce(t.Warning, t.Cancelled)
	t.BgSelection = coalesce(t.BgSelection, t.BgHighlight, t.Bg)
}

func coalesce(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// Available returns a list of available theme names.
func Available() []string {
	return []string{"mocha", "macchiato", "frappe", "latte", "light"}
}

// IsAvailable reports whether a theme name is available.
func IsAvailable(name string) bool {
	name = strings.ToLower(name)
	for _, themeName := range Available() {
		if themeName == name {
			return true
		}
	}
	return false
}
