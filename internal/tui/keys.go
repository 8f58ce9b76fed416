package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/javiermolinar/timeflow/internal/schedule"
	"github.com/javiermolinar/timeflow/internal/summary"
	"github.com/javiermolinar/timeflow/internal/tui/commands"
)

type keyMap struct {
	PrevWeek key.Binding
	NextWeek key.Binding
	Today    key.Binding
	Up       key.Binding
	Down     key.Binding
	PrevDay  key.Binding
	NextDay  key.Binding
	Details  key.Binding
	Refresh  key.Binding
	Markers  key.Binding
	Copy     key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		PrevWeek: key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("←/h", "prev week")),
		NextWeek: key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("→/l", "next week")),
		Today:    key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "this week")),
		Up:       key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("↑/k", "earlier")),
		Down:     key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("↓/j", "later")),
		PrevDay:  key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev day")),
		NextDay:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next day")),
		Details:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "details")),
		Refresh:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Markers:  key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "free/busy")),
		Copy:     key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy week")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.PrevWeek, k.NextWeek, k.Today, k.Markers, k.Copy, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.PrevWeek, k.NextWeek, k.Today},
		{k.Up, k.Down, k.PrevDay, k.NextDay, k.Details},
		{k.Refresh, k.Markers, k.Copy, k.Help, k.Quit},
	}
}

// handleKeyMsg handles keyboard input.
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.logger.Debug("key", zap.String("key", msg.String()))

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.PrevWeek):
		m.window = m.nav.Advance(m.window, -1)
		return m, m.reload()
	case key.Matches(msg, m.keys.NextWeek):
		m.window = m.nav.Advance(m.window, 1)
		return m, m.reload()
	case key.Matches(msg, m.keys.Today):
		this := m.nav.CurrentWeek(m.now())
		if this.Equal(m.window) {
			return m, nil
		}
		m.window = this
		return m, m.reload()
	case key.Matches(msg, m.keys.Refresh):
		return m, m.reload()
	case key.Matches(msg, m.keys.Markers):
		if m.markers == schedule.MarkBusy {
			m.markers = schedule.MarkFree
		} else {
			m.markers = schedule.MarkBusy
		}
		return m, m.reload()

	case key.Matches(msg, m.keys.Up):
		if m.cursor.Row > 0 {
			m.cursor.Row--
		}
	case key.Matches(msg, m.keys.Down):
		if m.grid != nil && m.cursor.Row < len(m.grid.Cells)-1 {
			m.cursor.Row++
		}
	case key.Matches(msg, m.keys.PrevDay):
		m.cursor.Day = (m.cursor.Day + 6) % 7
	case key.Matches(msg, m.keys.NextDay):
		m.cursor.Day = (m.cursor.Day + 1) % 7
	case key.Matches(msg, m.keys.Details):
		m.status = m.cellDetails()
		return m, commands.ClearStatusAfter(statusTTL)

	case key.Matches(msg, m.keys.Copy):
		if m.grid == nil {
			m.status = "Nothing to copy yet"
			return m, nil
		}
		return m, commands.Copy(summary.SummarizeGrid(m.grid).Text(), "Copied week to clipboard")
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

// cellDetails describes the cell under the cursor.
func (m Model) cellDetails() string {
	c, ok := m.cursorCell()
	if !ok {
		return ""
	}
	parts := []string{
		c.Date.Format("Mon 02 Jan"),
		schedule.HourLabel(c.Hour),
	}
	switch c.Occupant.Kind {
	case schedule.OccupantLesson:
		l := c.Occupant.Lesson
		parts = append(parts, l.Title())
		if l.Subject.Name != "" {
			parts = append(parts, l.Subject.Name)
		}
		parts = append(parts, string(l.Status))
	case schedule.OccupantFree:
		if m.markers == schedule.MarkBusy {
			parts = append(parts, "working hours")
		} else {
			parts = append(parts, "free")
		}
	default:
		parts = append(parts, "empty")
	}
	return strings.Join(parts, " · ")
}

func (m Model) cursorCell() (schedule.Cell, bool) {
	if m.grid == nil || m.cursor.Row >= len(m.grid.Cells) {
		return schedule.Cell{}, false
	}
	return m.grid.Cells[m.cursor.Row][m.cursor.Day], true
}
