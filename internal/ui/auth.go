package ui

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/javiermolinar/timeflow/internal/api"
	"github.com/javiermolinar/timeflow/internal/schedule"
	"github.com/javiermolinar/timeflow/internal/session"
)

func (a *App) loginCmd() *cobra.Command {
	var login, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session",
		Long: `Log in to the scheduling API.

The token is stored locally per API base URL, so later commands run as
this user until it expires or you log out. Missing credentials are
prompted for.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			reader := bufio.NewReader(a.in)
			if login == "" {
				login = a.promptValue(reader, "Login", "")
			}
			if password == "" {
				var err error
				if password, err = a.readSecret(reader, "Password"); err != nil {
					return err
				}
			}

			client, err := a.client()
			if err != nil {
				return err
			}
			token, err := client.Login(ctx, login, password)
			if err != nil {
				if errors.Is(err, api.ErrUnauthorized) {
					return errors.New("login failed: wrong login or password")
				}
				return err
			}

			sess, err := session.FromToken(a.config.API.BaseURL, token, a.now())
			if err != nil {
				return err
			}
			me, err := client.WithToken(token).Me(ctx)
			if err != nil {
				return fmt.Errorf("loading profile: %w", err)
			}
			sess.FullName = me.FullName
			if me.ID != "" {
				sess.UserID = me.ID
			}
			if me.Role != "" {
				sess.Role = me.Role
			}

			if err := a.store.SaveSession(ctx, sess); err != nil {
				return fmt.Errorf("saving session: %w", err)
			}
			a.logger.Info("login", zap.String("user", sess.UserID), zap.String("role", string(sess.Role)))
			fmt.Fprintf(a.out, "Logged in as %s (%s)\n", formatHeader(sess.FullName), sess.Role)
			return nil
		},
	}
	cmd.Flags().StringVarP(&login, "login", "u", "", "Login name")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password (prompted when omitted)")
	return cmd
}

// readSecret reads a line without echo when input is the terminal.
func (a *App) readSecret(reader *bufio.Reader, label string) (string, error) {
	fmt.Fprintf(a.out, "  %s: ", label)
	if a.in == os.Stdin && stdinIsTerminal() {
		b, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(a.out)
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", strings.ToLower(label), err)
		}
		return string(b), nil
	}
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("reading %s: %w", strings.ToLower(label), err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (a *App) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.store.DeleteSession(cmd.Context(), a.config.API.BaseURL); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Logged out")
			return nil
		},
	}
}

func (a *App) registerCmd() *cobra.Command {
	var req struct {
		login, password, name, email, role string
	}

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a staff account",
		Long: `Create a teacher, manager or administrator account.

Example:
  timeflow register --login maria --name "Maria Ivanova" \
    --email maria@example.com --role teacher`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			role, err := parseRole(req.role)
			if err != nil {
				return err
			}
			code, err := api.RoleCodeFor(role)
			if err != nil {
				return err
			}
			if req.password == "" {
				if req.password, err = a.readSecret(bufio.NewReader(a.in), "Password"); err != nil {
					return err
				}
			}

			client, err := a.client()
			if err != nil {
				return err
			}
			err = client.Register(cmd.Context(), api.RegisterRequest{
				Login:    req.login,
				Password: req.password,
				FullName: req.name,
				Email:    req.email,
				Role:     code,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Registered %s as %s. Run `timeflow login` to sign in.\n", req.login, role)
			return nil
		},
	}

	cmd.Flags().StringVarP(&req.login, "login", "u", "", "Login name (required)")
	cmd.Flags().StringVarP(&req.password, "password", "p", "", "Password, at least 6 characters (prompted when omitted)")
	cmd.Flags().StringVar(&req.name, "name", "", "Full name (required)")
	cmd.Flags().StringVar(&req.email, "email", "", "Email address (required)")
	cmd.Flags().StringVar(&req.role, "role", "teacher", "Role: teacher, manager or administrator")
	_ = cmd.MarkFlagRequired("login")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func parseRole(s string) (schedule.Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "teacher", "1":
		return schedule.RoleTeacher, nil
	case "manager", "2":
		return schedule.RoleManager, nil
	case "administrator", "admin", "3":
		return schedule.RoleAdministrator, nil
	}
	return "", fmt.Errorf("unknown role %q (use teacher, manager or administrator)", s)
}

func (a *App) whoamiCmd() *cobra.Command {
	var remote bool
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, client, err := a.authed(cmd.Context())
			if err != nil {
				return err
			}
			if !remote {
				printSession(a, sess)
				return nil
			}
			me, err := client.Me(cmd.Context())
			if err != nil {
				return err
			}
			printUser(a, me)
			return nil
		},
	}
	cmd.Flags().BoolVar(&remote, "remote", false, "Fetch the profile from the API instead of the stored session")
	return cmd
}

func printSession(a *App, s *session.Session) {
	fmt.Fprintf(a.out, "%s\n", formatHeader(s.FullName))
	fmt.Fprintf(a.out, "  id      %s\n", s.UserID)
	fmt.Fprintf(a.out, "  role    %s\n", s.Role)
	fmt.Fprintf(a.out, "  api     %s\n", s.BaseURL)
	if !s.ExpiresAt.IsZero() {
		left := humanize.RelTime(s.ExpiresAt, a.now(), "ago", "from now")
		fmt.Fprintf(a.out, "  expires %s (%s)\n", s.ExpiresAt.Local().Format("Mon 02 Jan 15:04"), left)
	}
}

func (a *App) navCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "nav",
		Short: "List the commands available to your role",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var role schedule.Role
			sess, err := session.Load(cmd.Context(), a.store, a.config.API.BaseURL, a.now())
			switch {
			case err == nil:
				role = sess.Role
				fmt.Fprintf(a.out, "%s · %s\n", formatHeader(sess.FullName), role)
			case errors.Is(err, session.ErrNoSession), errors.Is(err, session.ErrExpired):
				fmt.Fprintln(a.out, formatMuted("Not logged in"))
			default:
				return err
			}
			for _, item := range schedule.ItemsForRole(role) {
				fmt.Fprintf(a.out, "  %-18s timeflow %s\n", item.Label, item.Command)
			}
			return nil
		},
	}
}
