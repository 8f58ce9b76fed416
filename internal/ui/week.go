package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/javiermolinar/timeflow/internal/calendar"
	"github.com/javiermolinar/timeflow/internal/dateutil"
	"github.com/javiermolinar/timeflow/internal/schedule"
	"github.com/javiermolinar/timeflow/internal/summary"
	"github.com/javiermolinar/timeflow/internal/tui"
)

// maxParallelWeeks bounds concurrent week loads for `week --weeks`.
const maxParallelWeeks = 4

func (a *App) weekCmd() *cobra.Command {
	var (
		date      string
		weeks     int
		teacher   string
		fromHour  int
		toHour    int
		busy      bool
		showTotal bool
	)

	cmd := &cobra.Command{
		Use:   "week",
		Short: "Print a teacher's week grid",
		Long: `Print the week grid of lessons and free slots for a teacher.

Lesson times are shifted by the configured server offset before they are
placed. Dates accept YYYY-MM-DD, "today", "next-monday" and the like.

Examples:
  timeflow week
  timeflow week --date 2025-04-14 --weeks 2
  timeflow week --teacher 3f2a... --busy`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			sess, client, err := a.authed(ctx)
			if err != nil {
				return err
			}

			ref := a.now()
			if date != "" {
				ref, err = dateutil.ParseRelativeDate(date, a.now())
				if err != nil {
					return err
				}
			}
			if weeks < 1 {
				return fmt.Errorf("--weeks must be at least 1, got %d", weeks)
			}

			hours := a.config.Hours()
			if cmd.Flags().Changed("from") {
				hours.From = fromHour
			}
			if cmd.Flags().Changed("to") {
				hours.To = toHour
			}

			nav, err := a.config.Navigator()
			if err != nil {
				return err
			}
			loader, err := calendar.NewLoader(client, hours, a.config.Reconciler(), a.logger)
			if err != nil {
				return err
			}

			markers := markerPolicy(busy)
			grids, err := loader.LoadWeeks(ctx, nav, owner(teacher, sess), nav.CurrentWeek(ref), weeks, maxParallelWeeks, markers)
			if err != nil {
				return err
			}

			for i, grid := range grids {
				if i > 0 {
					fmt.Fprintln(a.out)
				}
				a.printWeek(grid, markers, showTotal)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&date, "date", "d", "", "Any day inside the first week (default today)")
	cmd.Flags().IntVarP(&weeks, "weeks", "n", 1, "Number of consecutive weeks")
	cmd.Flags().StringVar(&teacher, "teacher", "", "Teacher ID (default: logged-in user)")
	cmd.Flags().IntVar(&fromHour, "from", 0, "First hour row (default from config)")
	cmd.Flags().IntVar(&toHour, "to", 0, "End of the last hour row (default from config)")
	cmd.Flags().BoolVar(&busy, "busy", false, "Mark configured working hours instead of free slots")
	cmd.Flags().BoolVar(&showTotal, "summary", false, "Print a chronological lesson list instead of the grid")

	return cmd
}

func (a *App) printWeek(grid *schedule.Grid, markers schedule.MarkerPolicy, list bool) {
	fmt.Fprintf(a.out, "\n  %s\n", formatHeader("WEEK: "+grid.Window.String()))
	if list {
		fmt.Fprintln(a.out, strings.Repeat("─", 60))
		fmt.Fprint(a.out, summary.SummarizeGrid(grid).Text())
		return
	}
	PrintGrid(a.out, grid, GridOpts{Today: a.now(), Markers: markers})
	PrintWeekFooter(a.out, grid)
	for _, amb := range grid.Ambiguities {
		a.logger.Warn("lesson_overlap",
			zap.String("winner", amb.Winner.ID),
			zap.String("dropped", amb.Dropped.ID),
			zap.Time("cell", amb.Cell.Date),
			zap.Int("hour", amb.Cell.Hour),
		)
	}
}

func markerPolicy(busy bool) schedule.MarkerPolicy {
	if busy {
		return schedule.MarkBusy
	}
	return schedule.MarkFree
}

func (a *App) scheduleCmd() *cobra.Command {
	var (
		teacher string
		busy    bool
	)
	cmd := &cobra.Command{
		Use:     "schedule",
		Aliases: []string{"tui"},
		Short:   "Browse week grids interactively",
		Long: `Open the interactive week browser.

h/l move between weeks, t jumps back to the current week, r reloads and
b switches between free slots and working hours.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runSchedule(cmd.Context(), teacher, markerPolicy(busy))
		},
	}
	cmd.Flags().StringVar(&teacher, "teacher", "", "Teacher ID (default: logged-in user)")
	cmd.Flags().BoolVar(&busy, "busy", false, "Start with working hours instead of free slots")
	return cmd
}

func (a *App) runSchedule(ctx context.Context, teacher string, markers schedule.MarkerPolicy) error {
	sess, client, err := a.authed(ctx)
	if err != nil {
		return err
	}

	nav, err := a.config.Navigator()
	if err != nil {
		return err
	}
	loader, err := calendar.NewLoader(client, a.config.Hours(), a.config.Reconciler(), a.logger)
	if err != nil {
		return err
	}
	timeout, err := a.config.RequestTimeout()
	if err != nil {
		return err
	}

	ownerID := owner(teacher, sess)
	ownerName := sess.FullName
	if ownerID != sess.UserID {
		ownerName = ""
	}

	a.logger.Info("tui_start", zap.String("owner", ownerID))
	return tui.Run(tui.New(loader, nav, tui.Options{
		OwnerID:   ownerID,
		OwnerName: ownerName,
		Theme:     a.config.UI.Theme,
		Markers:   markers,
		// two requests per week, plus pacing
		Timeout: 2 * timeout,
		Logger:  a.logger,
		Now:     a.now,
	}))
}
