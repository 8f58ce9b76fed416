package ui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/javiermolinar/timeflow/internal/api"
	"github.com/javiermolinar/timeflow/internal/dateutil"
	"github.com/javiermolinar/timeflow/internal/schedule"
)

// defaultDraft is the draft used when --draft is not given.
const defaultDraft = "default"

func (a *App) matchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "match",
		Short: "Match clients with free teachers",
		Long: `Build a client's weekly slot preferences, find teachers free at all
of them and book a recurring schedule.

Slots are given as Day@HH:MM. Commands that take --slot fall back to the
saved draft when no slot is passed, so a selection can be built up with
"match draft add" first.`,
	}
	cmd.AddCommand(a.matchFindCmd("find"), a.matchCreateCmd(), a.matchAutoCmd(), a.draftCmd())
	return cmd
}

// searchCmd is "match find" at the top level.
func (a *App) searchCmd() *cobra.Command {
	c := a.matchFindCmd("search")
	c.Short = "Find teachers free at every preferred slot"
	return c
}

func (a *App) matchFindCmd(use string) *cobra.Command {
	var (
		subject string
		slots   []string
		draft   string
	)
	cmd := &cobra.Command{
		Use:   use,
		Short: "Find teachers free at every slot",
		Example: `  timeflow match find --subject 7d0c... --slot Monday@10:00 --slot Wednesday@15:00
  timeflow search --subject 7d0c...            # uses the saved draft`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			_, client, err := a.authed(ctx)
			if err != nil {
				return err
			}
			sel, err := a.selection(ctx, slots, draft)
			if err != nil {
				return err
			}
			teachers, err := client.FindFreeTeachers(ctx, subject, sel)
			if err != nil {
				return err
			}
			a.logger.Debug("free_teachers", zap.Int("slots", sel.Len()), zap.Int("found", len(teachers)))
			if len(teachers) == 0 {
				fmt.Fprintln(a.out, "No teacher is free at every slot.")
				return nil
			}
			fmt.Fprintln(a.out, usersTable(teachers))
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "", "Subject ID (required)")
	cmd.Flags().StringArrayVarP(&slots, "slot", "s", nil, "Preferred slot, Day@HH:MM (repeatable)")
	cmd.Flags().StringVar(&draft, "draft", defaultDraft, "Draft to use when no --slot is given")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}

func (a *App) matchCreateCmd() *cobra.Command {
	var (
		subject, clientID, name string
		age, lessons            int
		start, teacher, mode    string
		slots                   []string
		draft                   string
		keepDraft               bool
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Book a recurring schedule",
		Long: `Book lessons for a client at the preferred weekly slots.

Pass --teacher to book a specific teacher, or --mode to let the server
pick the most or least loaded free teacher. Pass --client for an existing
client, or --name and --age to create one.`,
		Example: `  timeflow match create --subject 7d0c... --client 51ab... \
    --slot Monday@10:00 --start next-monday --lessons 8 --mode most`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			_, client, err := a.authed(ctx)
			if err != nil {
				return err
			}
			if clientID == "" && name == "" {
				return errors.New("either --client or --name is required")
			}
			sel, err := a.selection(ctx, slots, draft)
			if err != nil {
				return err
			}
			startDate, err := dateutil.ParseRelativeDate(start, a.now())
			if err != nil {
				return err
			}
			req := api.MatchRequest{
				ClientID:  clientID,
				FullName:  name,
				Age:       age,
				SubjectID: subject,
				Selection: sel,
				StartDate: startDate,
				Lessons:   lessons,
				TeacherID: teacher,
			}
			if teacher == "" {
				if req.Mode, err = api.ParseMode(mode); err != nil {
					return err
				}
			}

			booked, err := client.SubmitMatchRequest(ctx, req)
			if err != nil {
				return err
			}
			a.logger.Info("schedule_created",
				zap.String("teacher", booked.ID),
				zap.String("subject", subject),
				zap.Int("lessons", lessons),
			)
			fmt.Fprintf(a.out, "Booked %d lessons with %s from %s\n", lessons, formatHeader(booked.FullName), startDate.Format("Mon 02 Jan 2006"))

			if len(slots) == 0 && !keepDraft {
				return a.store.DeleteDraft(ctx, draft)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "", "Subject ID (required)")
	cmd.Flags().StringVar(&clientID, "client", "", "Existing client ID")
	cmd.Flags().StringVar(&name, "name", "", "New client's full name")
	cmd.Flags().IntVar(&age, "age", 0, "New client's age")
	cmd.Flags().StringVar(&start, "start", "today", "First day of the schedule")
	cmd.Flags().IntVarP(&lessons, "lessons", "n", 1, "Number of lessons to book")
	cmd.Flags().StringVar(&teacher, "teacher", "", "Teacher ID; omit to let the server choose")
	cmd.Flags().StringVar(&mode, "mode", "most", "Server choice when --teacher is omitted: most or least (free)")
	cmd.Flags().StringArrayVarP(&slots, "slot", "s", nil, "Preferred slot, Day@HH:MM (repeatable)")
	cmd.Flags().StringVar(&draft, "draft", defaultDraft, "Draft to use when no --slot is given")
	cmd.Flags().BoolVar(&keepDraft, "keep-draft", false, "Keep the draft after booking")
	_ = cmd.MarkFlagRequired("subject")
	cmd.MarkFlagsMutuallyExclusive("client", "name")
	return cmd
}

func (a *App) matchAutoCmd() *cobra.Command {
	var (
		clientID string
		slot     string
		lessons  int
	)
	cmd := &cobra.Command{
		Use:   "auto",
		Short: "Let the server book an existing client at one slot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, client, err := a.authed(cmd.Context())
			if err != nil {
				return err
			}
			pref, err := schedule.ParsePreference(slot)
			if err != nil {
				return err
			}
			msg, err := client.AutoSearch(cmd.Context(), clientID, pref, lessons)
			if err != nil {
				return err
			}
			if msg == "" {
				msg = "Done"
			}
			fmt.Fprintln(a.out, msg)
			return nil
		},
	}
	cmd.Flags().StringVar(&clientID, "client", "", "Client ID (required)")
	cmd.Flags().StringVarP(&slot, "slot", "s", "", "Weekly slot, Day@HH:MM (required)")
	cmd.Flags().IntVarP(&lessons, "lessons", "n", 1, "Number of lessons to book")
	_ = cmd.MarkFlagRequired("client")
	_ = cmd.MarkFlagRequired("slot")
	return cmd
}

// selection parses slot flags, or loads the named draft when there are none.
func (a *App) selection(ctx context.Context, slots []string, draft string) (schedule.Selection, error) {
	if len(slots) == 0 {
		sel, err := a.store.GetDraft(ctx, draft)
		if err != nil {
			return schedule.Selection{}, err
		}
		if sel.Len() == 0 {
			return schedule.Selection{}, fmt.Errorf("no --slot given and draft %q is empty", draft)
		}
		return sel, nil
	}
	prefs, err := parsePreferences(slots)
	if err != nil {
		return schedule.Selection{}, err
	}
	return schedule.NewSelection(prefs...), nil
}

func parsePreferences(args []string) ([]schedule.SlotPreference, error) {
	prefs := make([]schedule.SlotPreference, 0, len(args))
	for _, s := range args {
		p, err := schedule.ParsePreference(s)
		if err != nil {
			return nil, err
		}
		prefs = append(prefs, p)
	}
	return prefs, nil
}

func (a *App) draftCmd() *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "draft",
		Short: "Edit the saved slot selection",
		Long: `Build a slot selection step by step. Entries are addressed by their
1-based position, as shown by "match draft show".`,
	}
	cmd.PersistentFlags().StringVar(&name, "draft", defaultDraft, "Draft name")

	// edit loads the draft, applies fn and saves the result.
	edit := func(ctx context.Context, fn func(schedule.Selection) (schedule.Selection, error)) error {
		sel, err := a.store.GetDraft(ctx, name)
		if err != nil {
			return err
		}
		next, err := fn(sel)
		if err != nil {
			return err
		}
		if err := a.store.SaveDraft(ctx, name, next); err != nil {
			return err
		}
		a.printSelection(name, next)
		return nil
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the draft",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sel, err := a.store.GetDraft(cmd.Context(), name)
			if err != nil {
				return err
			}
			a.printSelection(name, sel)
			return nil
		},
	}

	add := &cobra.Command{
		Use:   "add [Day@HH:MM]...",
		Short: "Append slots (Monday@10:00 when none is given)",
		RunE: func(cmd *cobra.Command, args []string) error {
			prefs := []schedule.SlotPreference{schedule.DefaultPreference}
			if len(args) > 0 {
				var err error
				if prefs, err = parsePreferences(args); err != nil {
					return err
				}
			}
			return edit(cmd.Context(), func(sel schedule.Selection) (schedule.Selection, error) {
				for _, p := range prefs {
					sel = sel.Add(p)
				}
				return sel, nil
			})
		},
	}

	set := &cobra.Command{
		Use:   "set <n> <Day@HH:MM>",
		Short: "Replace entry n",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := schedule.ParsePreference(args[1])
			if err != nil {
				return err
			}
			return edit(cmd.Context(), func(sel schedule.Selection) (schedule.Selection, error) {
				i, err := entryIndex(args[0], sel)
				if err != nil {
					return sel, err
				}
				return sel.Update(i, p), nil
			})
		},
	}

	rm := &cobra.Command{
		Use:   "rm <n>",
		Short: "Remove entry n",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return edit(cmd.Context(), func(sel schedule.Selection) (schedule.Selection, error) {
				i, err := entryIndex(args[0], sel)
				if err != nil {
					return sel, err
				}
				return sel.RemoveAt(i), nil
			})
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete the draft",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.store.DeleteDraft(cmd.Context(), name); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Cleared draft %q\n", name)
			return nil
		},
	}

	cmd.AddCommand(show, add, set, rm, clearCmd)
	return cmd
}

// entryIndex converts a 1-based position into an index of sel.
func entryIndex(arg string, sel schedule.Selection) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 || n > sel.Len() {
		return 0, fmt.Errorf("entry %q out of range 1..%d", arg, sel.Len())
	}
	return n - 1, nil
}

func (a *App) printSelection(name string, sel schedule.Selection) {
	if sel.Len() == 0 {
		fmt.Fprintf(a.out, "Draft %q is empty.\n", name)
		return
	}
	fmt.Fprintf(a.out, "Draft %q\n", name)
	for i, p := range sel.Items() {
		hour := p.Time
		if t, err := time.Parse("15:04", hour); err == nil {
			hour = t.Format("15:04")
		}
		fmt.Fprintf(a.out, "  %d. %-10s %s\n", i+1, p.DayOfWeek, hour)
	}
}
