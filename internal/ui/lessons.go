package ui

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/timeflow/internal/dateutil"
	"github.com/javiermolinar/timeflow/internal/schedule"
)

func (a *App) lessonsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lessons",
		Short: "List, cancel and reschedule lessons",
	}

	var (
		clientID string
		date     string
		teacher  string
		from, to string
	)
	list := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List lessons of a teacher or a client",
		Long: `List lessons in local time.

Without --client, lists the teacher's lessons between --from and --to
(default: the current week). With --client, lists that client's lessons,
optionally on one --date.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			sess, client, err := a.authed(ctx)
			if err != nil {
				return err
			}

			var lessons []schedule.Lesson
			if clientID != "" {
				var day time.Time
				if date != "" {
					if day, err = dateutil.ParseRelativeDate(date, a.now()); err != nil {
						return err
					}
				}
				lessons, err = client.ClientLessons(ctx, clientID, day)
			} else {
				var days *dateutil.DateRange
				if days, err = a.lessonRange(from, to); err != nil {
					return err
				}
				start, end := a.config.Reconciler().ServerRange(days.Start, days.End)
				lessons, err = client.LessonsInRange(ctx, owner(teacher, sess), start, end)
			}
			if err != nil {
				return err
			}
			a.printLessons(lessons)
			return nil
		},
	}
	list.Flags().StringVar(&clientID, "client", "", "Client ID")
	list.Flags().StringVarP(&date, "date", "d", "", "Only lessons on this day (with --client)")
	list.Flags().StringVar(&teacher, "teacher", "", "Teacher ID (default: logged-in user)")
	list.Flags().StringVar(&from, "from", "", "First day (default: start of this week)")
	list.Flags().StringVar(&to, "to", "", "Last day (default: end of the --from week)")

	cancel := &cobra.Command{
		Use:   "cancel <id>...",
		Short: "Cancel lessons",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, client, err := a.authed(cmd.Context())
			if err != nil {
				return err
			}
			for _, id := range args {
				if err := client.CancelLesson(cmd.Context(), id); err != nil {
					return fmt.Errorf("cancelling %s: %w", id, err)
				}
				fmt.Fprintf(a.out, "Cancelled %s\n", id)
			}
			return nil
		},
	}

	reschedule := &cobra.Command{
		Use:   "reschedule <id> <date> <HH:MM>",
		Short: "Move a lesson to a new local date and hour",
		Example: `  timeflow lessons reschedule 9c1e... 2025-04-17 15:00
  timeflow lessons reschedule 9c1e... next-friday 10:00`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, client, err := a.authed(cmd.Context())
			if err != nil {
				return err
			}
			day, err := dateutil.ParseRelativeDate(args[1], a.now())
			if err != nil {
				return err
			}
			at, err := time.Parse("15:04", args[2])
			if err != nil {
				return fmt.Errorf("%w: %q", schedule.ErrInvalidTime, args[2])
			}
			if at.Minute() != 0 {
				return errors.New("lessons start on the hour")
			}

			cell := schedule.CellRef{Date: day, Hour: at.Hour()}
			ts := a.config.Reconciler().FromLocalCell(cell)
			if err := client.RescheduleLesson(cmd.Context(), args[0], ts); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Rescheduled %s to %s %s\n", args[0], day.Format("Mon 02 Jan"), schedule.HourLabel(cell.Hour))
			return nil
		},
	}

	cmd.AddCommand(list, cancel, reschedule)
	return cmd
}

// lessonRange resolves --from/--to. A missing --to ends the week --from
// falls in.
// lessonRange resolves --from/--to into grid days. Both default to the
// current week; a lone --from runs to the end of its week.
func (a *App) lessonRange(from, to string) (*dateutil.DateRange, error) {
	nav, err := a.config.Navigator()
	if err != nil {
		return nil, err
	}
	start := nav.CurrentWeek(a.now()).Start
	if from != "" {
		if start, err = dateutil.ParseRelativeDate(from, a.now()); err != nil {
			return nil, err
		}
	}
	end := nav.CurrentWeek(start).End
	if to != "" {
		if end, err = dateutil.ParseRelativeDate(to, a.now()); err != nil {
			return nil, err
		}
	}
	return dateutil.NewRange(start, end)
}

func (a *App) printLessons(lessons []schedule.Lesson) {
	if len(lessons) == 0 {
		fmt.Fprintln(a.out, "No lessons.")
		return
	}
	sort.SliceStable(lessons, func(i, j int) bool {
		return lessons[i].LessonDate.Before(lessons[j].LessonDate)
	})

	r := a.config.Reconciler()
	counts := map[schedule.LessonStatus]int{}
	for i := range lessons {
		PrintLessonRow(a.out, &lessons[i], r)
		counts[lessons[i].Status]++
	}

	parts := []string{fmt.Sprintf("%d lessons", len(lessons))}
	for _, st := range []schedule.LessonStatus{schedule.StatusScheduled, schedule.StatusRescheduled, schedule.StatusCancelled} {
		if counts[st] > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", counts[st], strings.ToLower(string(st))))
		}
	}
	fmt.Fprintf(a.out, "  %s\n", formatMuted(strings.Join(parts, " · ")))
}
