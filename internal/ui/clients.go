package ui

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/timeflow/internal/schedule"
)

func (a *App) clientsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clients [query]",
		Short: "List or search clients",
		Long: `List clients, or search them by name.

Queries shorter than two characters list everyone.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, client, err := a.authed(cmd.Context())
			if err != nil {
				return err
			}
			clients, err := client.SearchClients(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			a.printClients(clients)
			return nil
		},
	}
}

func (a *App) printClients(clients []schedule.Client) {
	if len(clients) == 0 {
		fmt.Fprintln(a.out, "No clients.")
		return
	}
	for _, c := range clients {
		age := ""
		if c.Age > 0 {
			age = fmt.Sprintf("%d", c.Age)
		}
		fmt.Fprintf(a.out, "  %-28s %3s  %s\n", c.FullName, age, formatMuted(c.ID))
	}
}
