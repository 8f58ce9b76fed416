package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/timeflow/internal/schedule"
)

func (a *App) subjectsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "subjects",
		Short: "Manage subjects and teacher assignments",
	}

	list := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List all subjects",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, client, err := a.authed(cmd.Context())
			if err != nil {
				return err
			}
			subjects, err := client.ListSubjects(cmd.Context())
			if err != nil {
				return err
			}
			a.printSubjects(subjects)
			return nil
		},
	}

	mine := &cobra.Command{
		Use:   "mine",
		Short: "List the subjects you teach",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, client, err := a.authed(cmd.Context())
			if err != nil {
				return err
			}
			me, err := client.Me(cmd.Context())
			if err != nil {
				return err
			}
			a.printSubjects(me.Subjects)
			return nil
		},
	}

	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a subject",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, client, err := a.authed(cmd.Context())
			if err != nil {
				return err
			}
			s, err := client.CreateSubject(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Created %s %s\n", s.Name, formatMuted(s.ID))
			return nil
		},
	}

	rename := &cobra.Command{
		Use:   "rename <id> <name>",
		Short: "Rename a subject",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, client, err := a.authed(cmd.Context())
			if err != nil {
				return err
			}
			name := strings.Join(args[1:], " ")
			if err := client.RenameSubject(cmd.Context(), args[0], name); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Renamed %s to %s\n", args[0], name)
			return nil
		},
	}

	rm := &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a subject",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, client, err := a.authed(cmd.Context())
			if err != nil {
				return err
			}
			if err := client.DeleteSubject(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Deleted %s\n", args[0])
			return nil
		},
	}

	var assignTeacher string
	assign := &cobra.Command{
		Use:   "assign <subject-id>",
		Short: "Add a subject to a teacher",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, client, err := a.authed(cmd.Context())
			if err != nil {
				return err
			}
			if err := client.AssignSubject(cmd.Context(), owner(assignTeacher, sess), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Assigned %s\n", args[0])
			return nil
		},
	}
	assign.Flags().StringVar(&assignTeacher, "teacher", "", "Teacher ID (default: logged-in user)")

	var unassignTeacher string
	unassign := &cobra.Command{
		Use:   "unassign <subject-id>",
		Short: "Remove a subject from a teacher",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, client, err := a.authed(cmd.Context())
			if err != nil {
				return err
			}
			if err := client.UnassignSubject(cmd.Context(), owner(unassignTeacher, sess), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Unassigned %s\n", args[0])
			return nil
		},
	}
	unassign.Flags().StringVar(&unassignTeacher, "teacher", "", "Teacher ID (default: logged-in user)")

	cmd.AddCommand(list, mine, add, rename, rm, assign, unassign)
	return cmd
}

func (a *App) printSubjects(subjects []schedule.Subject) {
	if len(subjects) == 0 {
		fmt.Fprintln(a.out, "No subjects.")
		return
	}
	sorted := append([]schedule.Subject(nil), subjects...)
	sort.Slice(sorted, func(i, j int) bool {
		return strings.ToLower(sorted[i].Name) < strings.ToLower(sorted[j].Name)
	})
	for _, s := range sorted {
		fmt.Fprintf(a.out, "  %-24s %s\n", s.Name, formatMuted(s.ID))
	}
}
