package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"

	"github.com/javiermolinar/timeflow/internal/calendar"
	"github.com/javiermolinar/timeflow/internal/schedule"
	"github.com/javiermolinar/timeflow/internal/tui/commands"
)

var testNow = time.Date(2025, 4, 16, 10, 0, 0, 0, time.UTC)

type nopLoader struct{}

func (nopLoader) Load(context.Context, calendar.Request) (*schedule.Grid, error) {
	return nil, errors.New("not used")
}

func newTestModel(t *testing.T) Model {
	t.Helper()
	nav, err := schedule.NewNavigator(time.Monday)
	if err != nil {
		t.Fatalf("NewNavigator: %v", err)
	}
	m := New(nopLoader{}, nav, Options{
		OwnerID:   "t1",
		OwnerName: "Maria Ivanova",
		Now:       func() time.Time { return testNow },
	})
	m.Init()
	return m
}

func gridFor(t *testing.T, req calendar.Request, lessons []schedule.Lesson) *schedule.Grid {
	t.Helper()
	grid, err := schedule.BuildGrid(req.Window, schedule.HourRange{From: 8, To: 20}, lessons,
		[]schedule.AvailabilitySlot{{DayOfWeek: schedule.Wednesday, Time: "15:00:00"}},
		schedule.GridOptions{Reconciler: schedule.NewReconciler(4), Markers: req.Markers})
	if err != nil {
		t.Fatalf("BuildGrid: %v", err)
	}
	return grid
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	updated, _ := m.Update(msg)
	next, ok := updated.(Model)
	if !ok {
		t.Fatalf("Update returned %T", updated)
	}
	return next
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func TestNew_StartsOnCurrentWeek(t *testing.T) {
	m := newTestModel(t)
	if got := m.Window().Key(); got != "2025-04-14" {
		t.Errorf("window = %s, want 2025-04-14", got)
	}
	req := m.tracker.Current()
	if req.ID == "" || req.OwnerID != "t1" || !req.Window.Equal(m.Window()) {
		t.Errorf("initial request = %+v", req)
	}
	if !m.loading {
		t.Error("model should be loading before the first grid arrives")
	}
}

func TestUpdate_Navigation(t *testing.T) {
	tests := []struct {
		name string
		keys []string
		want string
	}{
		{name: "next week", keys: []string{"l"}, want: "2025-04-21"},
		{name: "prev week arrow", keys: []string{"left"}, want: "2025-04-07"},
		{name: "round trip", keys: []string{"right", "right", "h", "h"}, want: "2025-04-14"},
		{name: "today", keys: []string{"l", "l", "l", "t"}, want: "2025-04-14"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestModel(t)
			for _, k := range tt.keys {
				m = update(t, m, keyMsg(k))
			}
			if got := m.Window().Key(); got != tt.want {
				t.Errorf("window = %s, want %s", got, tt.want)
			}
			if got := m.tracker.Current().Window.Key(); got != tt.want {
				t.Errorf("tracked window = %s, want %s", got, tt.want)
			}
		})
	}
}

// Week A is requested, the user moves to week B, then A's response
// arrives. The grid must stay empty until B's response lands.
func TestUpdate_DropsStaleWeek(t *testing.T) {
	m := newTestModel(t)
	reqA := m.tracker.Current()

	m = update(t, m, keyMsg("l"))
	reqB := m.tracker.Current()

	m = update(t, m, commands.WeekLoadedMsg{Request: reqA, Grid: gridFor(t, reqA, nil)})
	if m.grid != nil {
		t.Fatalf("stale grid for %s was applied", reqA.Window)
	}
	if !m.loading {
		t.Error("still waiting for week B")
	}

	m = update(t, m, commands.WeekLoadedMsg{Request: reqB, Grid: gridFor(t, reqB, nil)})
	if m.grid == nil || !m.grid.Window.Equal(reqB.Window) {
		t.Fatalf("grid = %v, want week %s", m.grid, reqB.Window)
	}
	if m.loading {
		t.Error("loading should stop once the current week arrives")
	}

	// A late error for A is stale too.
	m = update(t, m, commands.ErrMsg{Request: reqA, Err: errors.New("timeout")})
	if m.err != nil || m.grid == nil {
		t.Errorf("stale error was applied: err=%v grid=%v", m.err, m.grid)
	}
}

func TestUpdate_FetchErrors(t *testing.T) {
	boom := errors.New("503")

	t.Run("failed refresh keeps the grid", func(t *testing.T) {
		m := newTestModel(t)
		req := m.tracker.Current()
		m = update(t, m, commands.WeekLoadedMsg{Request: req, Grid: gridFor(t, req, nil)})

		m = update(t, m, keyMsg("r"))
		refresh := m.tracker.Current()
		m = update(t, m, commands.ErrMsg{Request: refresh, Err: &calendar.DataFetchError{
			Which: calendar.FetchLessons, Window: refresh.Window, Err: boom,
		}})
		if m.grid == nil {
			t.Error("grid should survive a failed refresh")
		}
		if !errors.Is(m.err, boom) || m.loading {
			t.Errorf("err = %v, loading = %v", m.err, m.loading)
		}
	})

	t.Run("failed navigation clears the grid", func(t *testing.T) {
		m := newTestModel(t)
		req := m.tracker.Current()
		m = update(t, m, commands.WeekLoadedMsg{Request: req, Grid: gridFor(t, req, nil)})

		m = update(t, m, keyMsg("l"))
		next := m.tracker.Current()
		m = update(t, m, commands.ErrMsg{Request: next, Err: &calendar.DataFetchError{
			Which: calendar.FetchSlots, Window: next.Window, Err: boom,
		}})
		if m.grid != nil {
			t.Error("previous week's grid must not be shown under the new week")
		}
	})

	t.Run("success clears the error", func(t *testing.T) {
		m := newTestModel(t)
		req := m.tracker.Current()
		m = update(t, m, commands.ErrMsg{Request: req, Err: boom})
		m = update(t, m, keyMsg("r"))
		req = m.tracker.Current()
		m = update(t, m, commands.WeekLoadedMsg{Request: req, Grid: gridFor(t, req, nil)})
		if m.err != nil {
			t.Errorf("err = %v, want nil", m.err)
		}
	})
}

func TestUpdate_ClipboardErrorKeepsLoad(t *testing.T) {
	m := newTestModel(t)
	req := m.tracker.Current()
	m = update(t, m, commands.WeekLoadedMsg{Request: req, Grid: gridFor(t, req, nil)})
	m = update(t, m, keyMsg("r"))
	if !m.loading {
		t.Fatal("refresh should be loading")
	}

	m = update(t, m, commands.ErrMsg{Err: errors.New("no clipboard")})
	if !m.loading || m.grid == nil || m.err != nil {
		t.Errorf("clipboard error touched the load: loading=%v grid=%v err=%v", m.loading, m.grid, m.err)
	}
	if !strings.Contains(m.status, "no clipboard") {
		t.Errorf("status = %q", m.status)
	}

	req = m.tracker.Current()
	m = update(t, m, commands.WeekLoadedMsg{Request: req, Grid: gridFor(t, req, nil)})
	if m.loading {
		t.Error("refresh result was not applied")
	}
}

func TestUpdate_MarkerToggle(t *testing.T) {
	m := newTestModel(t)
	m = update(t, m, keyMsg("b"))
	if m.markers != schedule.MarkBusy || m.tracker.Current().Markers != schedule.MarkBusy {
		t.Errorf("markers = %v, request markers = %v", m.markers, m.tracker.Current().Markers)
	}
	m = update(t, m, keyMsg("b"))
	if m.markers != schedule.MarkFree {
		t.Errorf("markers = %v, want MarkFree", m.markers)
	}
}

func TestUpdate_CursorAndDetails(t *testing.T) {
	m := newTestModel(t)
	req := m.tracker.Current()
	lessons := []schedule.Lesson{{
		ID:         "l1",
		LessonDate: time.Date(2025, 4, 14, 13, 0, 0, 0, time.UTC), // 09:00 after the offset
		Status:     schedule.StatusScheduled,
		Client:     schedule.Client{FullName: "Boris"},
		Subject:    schedule.Subject{Name: "Math"},
	}}
	m = update(t, m, commands.WeekLoadedMsg{Request: req, Grid: gridFor(t, req, lessons)})

	m = update(t, m, keyMsg("down"))
	m = update(t, m, keyMsg("enter"))
	if want := "Mon 14 Apr · 09:00 – 10:00 · Boris · Math · Scheduled"; m.status != want {
		t.Errorf("status = %q, want %q", m.status, want)
	}

	m = update(t, m, keyMsg("tab"))
	m = update(t, m, keyMsg("tab"))
	m.cursor.Row = 7 // 15:00
	m = update(t, m, keyMsg("enter"))
	if !strings.HasSuffix(m.status, "· free") {
		t.Errorf("status = %q, want free slot", m.status)
	}
}

func TestUpdate_StatusLifecycle(t *testing.T) {
	m := newTestModel(t)
	updated, cmd := m.Update(commands.StatusMsgCmd{Msg: "Copied week to clipboard"})
	m = updated.(Model)
	if m.status != "Copied week to clipboard" || cmd == nil {
		t.Errorf("status = %q, cmd = %v", m.status, cmd)
	}
	m = update(t, m, commands.ClearStatusMsg{})
	if m.status != "" {
		t.Errorf("status = %q, want empty", m.status)
	}

	m = update(t, m, keyMsg("y"))
	if m.status != "Nothing to copy yet" {
		t.Errorf("copy without grid: status = %q", m.status)
	}
}

func TestView_RendersWeek(t *testing.T) {
	prev := lipgloss.ColorProfile()
	lipgloss.SetColorProfile(termenv.TrueColor)
	t.Cleanup(func() { lipgloss.SetColorProfile(prev) })

	m := newTestModel(t)
	m = update(t, m, tea.WindowSizeMsg{Width: 160, Height: 30})
	if out := ansi.Strip(m.View()); !strings.Contains(out, "Loading week...") {
		t.Errorf("expected loading placeholder:\n%s", out)
	}

	req := m.tracker.Current()
	lessons := []schedule.Lesson{{
		ID:         "l1",
		LessonDate: time.Date(2025, 4, 14, 17, 0, 0, 0, time.UTC),
		Status:     schedule.StatusCancelled,
		Client:     schedule.Client{FullName: "Boris"},
	}}
	m = update(t, m, commands.WeekLoadedMsg{Request: req, Grid: gridFor(t, req, lessons)})

	out := ansi.Strip(m.View())
	for _, want := range []string{
		"timeflow · Maria Ivanova · 14 Apr 2025 – 20 Apr 2025",
		"*Wed 16*",
		"13:00 – 14:00",
		"✗ Boris",
		"· free",
		"1 lessons (0 scheduled, 0 rescheduled, 1 cancelled) · 1 free slots",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q:\n%s", want, out)
		}
	}
}

func TestView_ErrorStatus(t *testing.T) {
	m := newTestModel(t)
	m = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 24})
	req := m.tracker.Current()
	m = update(t, m, commands.ErrMsg{Request: req, Err: &calendar.DataFetchError{
		Which: calendar.FetchLessons, Window: req.Window, Err: errors.New("connection refused"),
	}})

	out := ansi.Strip(m.View())
	if !strings.Contains(out, "No data for this week.") || !strings.Contains(out, "Error: loading lessons") {
		t.Errorf("view:\n%s", out)
	}
}
