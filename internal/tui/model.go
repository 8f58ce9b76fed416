package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/javiermolinar/timeflow/internal/calendar"
	"github.com/javiermolinar/timeflow/internal/schedule"
	"github.com/javiermolinar/timeflow/internal/tui/commands"
	"github.com/javiermolinar/timeflow/internal/tui/theme"
)

const statusTTL = 4 * time.Second

// Options configures the week browser.
type Options struct {
	OwnerID   string // teacher whose week is shown
	OwnerName string
	Theme     string
	Markers   schedule.MarkerPolicy
	Timeout   time.Duration // per week load
	Logger    *zap.Logger
	Now       func() time.Time
}

// Cursor is the selected cell, as a grid row and a day index.
type Cursor struct {
	Row int
	Day int
}

// Model is the bubbletea model for the week browser.
type Model struct {
	loader  commands.WeekLoader
	tracker *calendar.Tracker
	nav     schedule.Navigator

	owner     string
	ownerName string
	window    schedule.WeekWindow
	markers   schedule.MarkerPolicy
	timeout   time.Duration

	grid    *schedule.Grid
	loading bool
	err     error
	status  string
	cursor  Cursor

	spinner spinner.Model
	help    help.Model
	keys    keyMap
	styles  *Styles

	width  int
	height int

	logger *zap.Logger
	now    func() time.Time
}

// New creates the browser positioned on the current week.
func New(loader commands.WeekLoader, nav schedule.Navigator, opts Options) Model {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	t, _ := theme.Load(opts.Theme)
	styles := NewStyles(t)

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = styles.StatusStyle.Padding(0)

	h := help.New()
	h.Styles.ShortKey = styles.StatusStyle.Padding(0)
	h.Styles.ShortDesc = styles.HelpStyle.Padding(0)
	h.Styles.FullKey = h.Styles.ShortKey
	h.Styles.FullDesc = h.Styles.ShortDesc

	return Model{
		loader:    loader,
		tracker:   &calendar.Tracker{},
		nav:       nav,
		owner:     opts.OwnerID,
		ownerName: opts.OwnerName,
		window:    nav.CurrentWeek(now()),
		markers:   opts.Markers,
		timeout:   opts.Timeout,
		loading:   true,
		spinner:   sp,
		help:      h,
		keys:      defaultKeyMap(),
		styles:    styles,
		logger:    logger.Named("tui"),
		now:       now,
	}
}

// Init starts loading the first week.
func (m Model) Init() tea.Cmd {
	return m.issue()
}

// reload marks the model busy and loads the current window.
func (m *Model) reload() tea.Cmd {
	m.loading = true
	return m.issue()
}

// issue registers a new request with the tracker. Any load still in flight
// becomes stale.
func (m Model) issue() tea.Cmd {
	req := m.tracker.Issue(m.owner, m.window, m.markers)
	m.logger.Debug("week_requested",
		zap.String("request_id", req.ID),
		zap.String("week", req.Window.Key()),
	)
	return tea.Batch(commands.LoadWeek(m.loader, req, m.timeout), m.spinner.Tick)
}

// Window returns the week currently shown or being loaded.
func (m Model) Window() schedule.WeekWindow {
	return m.window
}

// Run starts the TUI.
func Run(m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
