package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/timeflow/internal/config"
	"github.com/javiermolinar/timeflow/internal/tui/theme"
)

func (a *App) configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "View or edit configuration",
		Long: `Interactive configuration management.

If no config file exists, creates one with default values.
Otherwise, displays current config and allows editing.

Example:
  timeflow config`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return a.runConfigInteractive(config.DefaultConfigPath())
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintf(a.out, "Config file: %s\n\n", config.DefaultConfigPath())
			printConfig(a.out, a.config)
		},
	})
	return cmd
}

func (a *App) runConfigInteractive(configPath string) error {
	fmt.Fprintf(a.out, "Config file: %s\n\n", configPath)

	cfg, err := config.LoadFrom(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	_, fileErr := os.Stat(configPath)
	if os.IsNotExist(fileErr) {
		fmt.Fprintln(a.out, "No config file found. Creating with default values...")
		if err := cfg.SaveTo(configPath); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		fmt.Fprintf(a.out, "Created %s\n\n", configPath)
	}

	printConfig(a.out, cfg)

	reader := bufio.NewReader(a.in)
	if !a.promptYesNo(reader, "\nWould you like to edit the configuration?") {
		return nil
	}

	cfg.API.BaseURL = a.promptValue(reader, "API base URL", cfg.API.BaseURL)
	cfg.API.Timeout = a.promptValue(reader, "Request timeout", cfg.API.Timeout)
	cfg.API.InsecureTLS = a.promptBool(reader, "Accept self-signed certificates", cfg.API.InsecureTLS)
	cfg.Schedule.WeekStart = a.promptValue(reader, "Week start (monday/sunday)", cfg.Schedule.WeekStart)
	cfg.Schedule.FromHour = a.promptInt(reader, "First hour", cfg.Schedule.FromHour)
	cfg.Schedule.ToHour = a.promptInt(reader, "Last hour (exclusive)", cfg.Schedule.ToHour)
	cfg.Schedule.OffsetHours = a.promptInt(reader, "Server offset hours", cfg.Schedule.OffsetHours)
	cfg.Storage.DBPath = a.promptValue(reader, "Database path", cfg.Storage.DBPath)
	cfg.UI.Theme = a.promptTheme(reader, cfg.UI.Theme)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := cfg.SaveTo(configPath); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Fprintln(a.out, "\nConfiguration saved!")
	return nil
}

func printConfig(w io.Writer, cfg *config.Config) {
	fmt.Fprintln(w, "Current configuration:")
	fmt.Fprintln(w, "──────────────────────")
	fmt.Fprintln(w, "[api]")
	fmt.Fprintf(w, "  base_url            = %s\n", cfg.API.BaseURL)
	fmt.Fprintf(w, "  timeout             = %s\n", cfg.API.Timeout)
	fmt.Fprintf(w, "  requests_per_second = %g\n", cfg.API.RequestsPerSecond)
	if cfg.API.InsecureTLS {
		fmt.Fprintf(w, "  insecure_tls        = %s\n", formatWarning("true"))
	}
	fmt.Fprintln(w, "\n[schedule]")
	fmt.Fprintf(w, "  week_start          = %s\n", cfg.Schedule.WeekStart)
	fmt.Fprintf(w, "  from_hour           = %d\n", cfg.Schedule.FromHour)
	fmt.Fprintf(w, "  to_hour             = %d\n", cfg.Schedule.ToHour)
	fmt.Fprintf(w, "  offset_hours        = %d\n", cfg.Schedule.OffsetHours)
	fmt.Fprintln(w, "\n[storage]")
	fmt.Fprintf(w, "  db_path             = %s\n", cfg.Storage.DBPath)
	fmt.Fprintln(w, "\n[ui]")
	fmt.Fprintf(w, "  theme               = %s\n", cfg.UI.Theme)
}

func (a *App) promptYesNo(reader *bufio.Reader, question string) bool {
	fmt.Fprintf(a.out, "%s [y/N]: ", question)
	input, _ := reader.ReadString('\n')
	input = strings.TrimSpace(strings.ToLower(input))
	return input == "y" || input == "yes"
}

func (a *App) promptValue(reader *bufio.Reader, label, current string) string {
	if current == "" {
		fmt.Fprintf(a.out, "  %s: ", label)
	} else {
		fmt.Fprintf(a.out, "  %s [%s]: ", label, current)
	}
	input, _ := reader.ReadString('\n')
	input = strings.TrimSpace(input)
	if input == "" {
		return current
	}
	return input
}

func (a *App) promptInt(reader *bufio.Reader, label string, current int) int {
	for {
		value := a.promptValue(reader, label, strconv.Itoa(current))
		n, err := strconv.Atoi(value)
		if err == nil {
			return n
		}
		fmt.Fprintf(a.out, "  %q is not a number\n", value)
	}
}

func (a *App) promptBool(reader *bufio.Reader, label string, current bool) bool {
	value := a.promptValue(reader, label+" (y/n)", map[bool]string{true: "y", false: "n"}[current])
	switch strings.ToLower(value) {
	case "y", "yes", "true":
		return true
	case "n", "no", "false":
		return false
	}
	return current
}

func (a *App) promptTheme(reader *bufio.Reader, current string) string {
	options := strings.Join(theme.Available(), ", ")
	label := fmt.Sprintf("UI theme (%s)", options)
	for {
		value := strings.ToLower(a.promptValue(reader, label, current))
		if theme.IsAvailable(value) {
			return value
		}
		fmt.Fprintf(a.out, "  Invalid theme %q. Available: %s\n", value, options)
	}
}
