package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/javiermolinar/timeflow/internal/api"
	"github.com/javiermolinar/timeflow/internal/config"
	"github.com/javiermolinar/timeflow/internal/logging"
	"github.com/javiermolinar/timeflow/internal/schedule"
	"github.com/javiermolinar/timeflow/internal/session"
)

var (
	// Version is set at build time
	Version = "dev"
	// Commit is set at build time
	Commit = "none"
)

// Store is the local state the CLI needs: the session and match drafts.
type Store interface {
	session.Store
	SaveDraft(ctx context.Context, name string, sel schedule.Selection) error
	GetDraft(ctx context.Context, name string) (schedule.Selection, error)
	DeleteDraft(ctx context.Context, name string) error
}

// App holds the CLI application state.
type App struct {
	store   Store
	config  *config.Config
	root    *cobra.Command
	debug   bool
	noColor bool

	logger *zap.Logger
	in     io.Reader
	out    io.Writer
	now    func() time.Time
}

// NewApp creates a new CLI application with the given store and config.
func NewApp(store Store, cfg *config.Config) *App {
	a := &App{
		store:  store,
		config: cfg,
		logger: zap.NewNop(),
		in:     os.Stdin,
		out:    os.Stdout,
		now:    time.Now,
	}

	a.root = &cobra.Command{
		Use:   "timeflow",
		Short: "Terminal client for the tutoring schedule",
		Long: `timeflow talks to the tutoring school's scheduling API.

Log in, keep teacher working hours up to date, find free teachers for a
client's preferred slots and browse week grids of lessons and free time.
Running timeflow without a command opens the week browser.`,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if a.noColor {
				DisableColor()
			}
			logger, err := logging.New(logging.Options{Debug: a.debug})
			if err != nil {
				return err
			}
			a.logger = logger
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			_ = a.logger.Sync()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runSchedule(cmd.Context(), "", schedule.MarkFree)
		},
	}

	a.root.PersistentFlags().BoolVar(&a.debug, "debug", false, "Write debug logs to "+logging.DebugLogPath)
	a.root.PersistentFlags().BoolVar(&a.noColor, "no-color", false, "Disable color output")

	a.root.AddCommand(a.versionCmd())
	a.root.AddCommand(a.configCmd())
	a.root.AddCommand(a.loginCmd())
	a.root.AddCommand(a.logoutCmd())
	a.root.AddCommand(a.registerCmd())
	a.root.AddCommand(a.whoamiCmd())
	a.root.AddCommand(a.navCmd())
	a.root.AddCommand(a.weekCmd())
	a.root.AddCommand(a.scheduleCmd())
	a.root.AddCommand(a.slotsCmd())
	a.root.AddCommand(a.subjectsCmd())
	a.root.AddCommand(a.usersCmd())
	a.root.AddCommand(a.clientsCmd())
	a.root.AddCommand(a.lessonsCmd())
	a.root.AddCommand(a.matchCmd())
	a.root.AddCommand(a.searchCmd())

	return a
}

func (a *App) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintf(a.out, "timeflow %s (commit: %s)\n", Version, Commit)
		},
	}
}

// SetIO redirects input and output, for tests and scripting.
func (a *App) SetIO(in io.Reader, out io.Writer) {
	a.in = in
	a.out = out
	a.root.SetIn(in)
	a.root.SetOut(out)
	a.root.SetErr(out)
}

// SetArgs overrides os.Args for the next Execute.
func (a *App) SetArgs(args []string) {
	a.root.SetArgs(args)
}

// Execute runs the CLI application.
func (a *App) Execute() error {
	return a.ExecuteContext(context.Background())
}

// ExecuteContext runs the CLI application with ctx.
func (a *App) ExecuteContext(ctx context.Context) error {
	return a.root.ExecuteContext(ctx)
}

// client returns an unauthenticated API client.
func (a *App) client() (*api.Client, error) {
	timeout, err := a.config.RequestTimeout()
	if err != nil {
		return nil, err
	}
	return api.New(api.Options{
		BaseURL:           a.config.API.BaseURL,
		Timeout:           timeout,
		RequestsPerSecond: a.config.API.RequestsPerSecond,
		InsecureTLS:       a.config.API.InsecureTLS,
		Logger:            a.logger,
	})
}

// authed returns the live session and a client carrying its token.
func (a *App) authed(ctx context.Context) (*session.Session, *api.Client, error) {
	sess, err := session.Load(ctx, a.store, a.config.API.BaseURL, a.now())
	if err != nil {
		return nil, nil, err
	}
	c, err := a.client()
	if err != nil {
		return nil, nil, err
	}
	return sess, c.WithToken(sess.Token), nil
}

// owner resolves the teacher a command acts on: the flag value, or the
// logged-in user.
func owner(flag string, sess *session.Session) string {
	if flag != "" {
		return flag
	}
	return sess.UserID
}
