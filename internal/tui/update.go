package tui

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/javiermolinar/timeflow/internal/calendar"
	"github.com/javiermolinar/timeflow/internal/tui/commands"
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case commands.WeekLoadedMsg:
		if !m.tracker.Accept(msg.Request) {
			m.logger.Debug("stale_week_dropped",
				zap.String("request_id", msg.Request.ID),
				zap.String("week", msg.Request.Window.Key()),
			)
			return m, nil
		}
		m.grid = msg.Grid
		m.loading = false
		m.err = nil
		if m.cursor.Row >= len(m.grid.Cells) {
			m.cursor.Row = 0
		}
		if n := len(m.grid.Ambiguities); n > 0 {
			m.status = fmt.Sprintf("%d overlapping lesson(s) hidden", n)
			return m, commands.ClearStatusAfter(statusTTL)
		}
		return m, nil

	case commands.ErrMsg:
		if msg.Request.ID == "" {
			// Not tied to a load; whatever is in flight keeps running.
			m.logger.Warn("tui_error", zap.Error(msg.Err))
			m.status = "Error: " + msg.Err.Error()
			return m, commands.ClearStatusAfter(statusTTL)
		}
		if !m.tracker.Accept(msg.Request) {
			return m, nil
		}
		m.loading = false
		m.err = msg.Err
		// A failed refresh keeps the week on screen; a failed navigation
		// must not leave the previous week's lessons under the new header.
		if m.grid != nil && !m.grid.Window.Equal(m.window) {
			m.grid = nil
		}
		var fetchErr *calendar.DataFetchError
		if errors.As(msg.Err, &fetchErr) {
			m.logger.Warn("week_load_failed",
				zap.String("fetch", string(fetchErr.Which)),
				zap.String("week", fetchErr.Window.Key()),
				zap.Error(fetchErr.Err),
			)
		} else {
			m.logger.Warn("tui_error", zap.Error(msg.Err))
		}
		return m, nil

	case commands.StatusMsgCmd:
		m.status = msg.Msg
		return m, commands.ClearStatusAfter(statusTTL)

	case commands.ClearStatusMsg:
		m.status = ""
		return m, nil
	}

	return m, nil
}
