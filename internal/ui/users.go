package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/javiermolinar/timeflow/internal/api"
	"github.com/javiermolinar/timeflow/internal/schedule"
)

func (a *App) usersCmd() *cobra.Command {
	var teachersOnly bool

	cmd := &cobra.Command{
		Use:   "users",
		Short: "List staff accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, client, err := a.authed(cmd.Context())
			if err != nil {
				return err
			}
			var users []api.User
			if teachersOnly {
				users, err = client.ListTeachers(cmd.Context())
			} else {
				users, err = client.ListUsers(cmd.Context())
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, usersTable(users))
			return nil
		},
	}
	cmd.Flags().BoolVar(&teachersOnly, "teachers", false, "Only list teachers")

	var name, email string
	update := &cobra.Command{
		Use:   "update <id>",
		Short: "Change a user's name or email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, client, err := a.authed(cmd.Context())
			if err != nil {
				return err
			}
			u, err := client.UpdateUser(cmd.Context(), args[0], api.UpdateUserRequest{FullName: name, Email: email})
			if err != nil {
				return err
			}
			printUser(a, u)
			return nil
		},
	}
	update.Flags().StringVar(&name, "name", "", "Full name (required)")
	update.Flags().StringVar(&email, "email", "", "Email address (required)")
	_ = update.MarkFlagRequired("name")
	_ = update.MarkFlagRequired("email")

	cmd.AddCommand(update)
	return cmd
}

// usersTable renders users as a plain table with a header rule.
func usersTable(users []api.User) string {
	if len(users) == 0 {
		return "No users."
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderColumn(false).
		BorderRow(false).
		BorderLeft(false).
		BorderRight(false).
		BorderTop(false).
		BorderBottom(false).
		Headers("NAME", "ROLE", "LOGIN", "SUBJECTS", "ID").
		StyleFunc(func(_, _ int) lipgloss.Style { return lipgloss.NewStyle().PaddingRight(2) })
	for _, u := range users {
		t.Row(u.FullName, string(u.Role), u.Login, subjectNames(u.Subjects), u.ID)
	}
	return t.Render()
}

func subjectNames(subjects []schedule.Subject) string {
	names := make([]string, 0, len(subjects))
	for _, s := range subjects {
		names = append(names, s.Name)
	}
	return strings.Join(names, ", ")
}

func printUser(a *App, u *api.User) {
	fmt.Fprintf(a.out, "%s\n", formatHeader(u.FullName))
	fmt.Fprintf(a.out, "  id       %s\n", u.ID)
	if u.Login != "" {
		fmt.Fprintf(a.out, "  login    %s\n", u.Login)
	}
	if u.Email != "" {
		fmt.Fprintf(a.out, "  email    %s\n", u.Email)
	}
	if u.Role != "" {
		fmt.Fprintf(a.out, "  role     %s\n", u.Role)
	}
	if len(u.Subjects) > 0 {
		fmt.Fprintf(a.out, "  subjects %s\n", subjectNames(u.Subjects))
	}
}
