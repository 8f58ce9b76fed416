// Package commands provides TUI command constructors and message types.
package commands

import (
	"context"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiermolinar/timeflow/internal/calendar"
	"github.com/javiermolinar/timeflow/internal/schedule"
)

// WeekLoadedMsg is sent when the grid for a request is built.
type WeekLoadedMsg struct {
	Request calendar.Request
	Grid    *schedule.Grid
}

// ErrMsg is sent when a load fails. Request is zero for errors that are not
// tied to a week load.
type ErrMsg struct {
	Request calendar.Request
	Err     error
}

// StatusMsgCmd is sent for temporary status messages.
type StatusMsgCmd struct {
	Msg string
}

// ClearStatusMsg is sent to clear the status message.
type ClearStatusMsg struct{}

// WeekLoader builds the grid for one request.
type WeekLoader interface {
	Load(ctx context.Context, req calendar.Request) (*schedule.Grid, error)
}

// LoadWeek loads the grid for req. timeout bounds the whole join; zero
// means no limit.
func LoadWeek(loader WeekLoader, req calendar.Request, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		grid, err := loader.Load(ctx, req)
		if err != nil {
			return ErrMsg{Request: req, Err: err}
		}
		return WeekLoadedMsg{Request: req, Grid: grid}
	}
}

// clipboardWrite is swapped in tests.
var clipboardWrite = clipboard.WriteAll

// Copy writes text to the system clipboard.
func Copy(text, done string) tea.Cmd {
	return func() tea.Msg {
		if err := clipboardWrite(text); err != nil {
			return ErrMsg{Err: err}
		}
		return StatusMsgCmd{Msg: done}
	}
}

// ClearStatusAfter clears the status line after d.
func ClearStatusAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return ClearStatusMsg{}
	})
}
