package ui

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/timeflow/internal/api"
	"github.com/javiermolinar/timeflow/internal/schedule"
)

func (a *App) slotsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "slots",
		Short: "Manage weekly working hours",
		Long: `List, add and remove a teacher's weekly time slots.

Slots added here are working hours: they repeat every week and are
offered to managers when matching clients.`,
	}

	var teacher string
	var free bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List weekly slots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, client, err := a.authed(cmd.Context())
			if err != nil {
				return err
			}
			id := owner(teacher, sess)
			var slots []schedule.AvailabilitySlot
			if free {
				slots, err = client.FreeSlots(cmd.Context(), id)
			} else {
				slots, err = client.TimeSlots(cmd.Context(), id)
			}
			if err != nil {
				return err
			}
			a.printSlots(slots)
			return nil
		},
	}
	list.Flags().StringVar(&teacher, "teacher", "", "Teacher ID (default: logged-in user)")
	list.Flags().BoolVar(&free, "free", false, "Only slots still open for booking")

	var addTeacher string
	add := &cobra.Command{
		Use:   "add <day> <time>...",
		Short: "Add working hours on a weekday",
		Example: `  timeflow slots add monday 09:00 10:00 11:00
  timeflow slots add wed 15:00`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, client, err := a.authed(cmd.Context())
			if err != nil {
				return err
			}
			day, err := schedule.ParseDayOfWeek(args[0])
			if err != nil {
				return err
			}
			id := owner(addTeacher, sess)
			for _, t := range args[1:] {
				hhmm, err := schedule.NormalizeTime(t)
				if err != nil {
					return fmt.Errorf("%s: %w", t, err)
				}
				err = client.CreateTimeSlot(cmd.Context(), api.TimeSlotRequest{
					DayOfWeek: day,
					Time:      hhmm,
					IsBusy:    true,
					UserID:    id,
				})
				if err != nil {
					return fmt.Errorf("adding %s %s: %w", day, hhmm, err)
				}
				fmt.Fprintf(a.out, "Added %s %s\n", day, hhmm)
			}
			return nil
		},
	}
	add.Flags().StringVar(&addTeacher, "teacher", "", "Teacher ID (default: logged-in user)")

	rm := &cobra.Command{
		Use:     "rm <id>...",
		Aliases: []string{"delete"},
		Short:   "Remove slots by ID",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, client, err := a.authed(cmd.Context())
			if err != nil {
				return err
			}
			for _, id := range args {
				if err := client.DeleteTimeSlot(cmd.Context(), id); err != nil {
					return fmt.Errorf("removing %s: %w", id, err)
				}
				fmt.Fprintf(a.out, "Removed %s\n", id)
			}
			return nil
		},
	}

	cmd.AddCommand(list, add, rm)
	return cmd
}

func (a *App) printSlots(slots []schedule.AvailabilitySlot) {
	if len(slots) == 0 {
		fmt.Fprintln(a.out, "No slots.")
		return
	}
	byDay := schedule.SlotsByDay(slots)
	for _, day := range schedule.AllDays() {
		daySlots := byDay[day]
		if len(daySlots) == 0 {
			continue
		}
		sort.SliceStable(daySlots, func(i, j int) bool { return daySlots[i].Time < daySlots[j].Time })
		fmt.Fprintf(a.out, "%s\n", formatHeader(string(day)))
		for _, s := range daySlots {
			state := colorFree.Sprint("free")
			if s.IsBusy {
				state = colorLesson.Sprint("working")
			}
			fmt.Fprintf(a.out, "  %s  %-8s %s\n", schedule.HourLabel(s.Hour()), state, formatMuted(s.ID))
		}
	}
}
