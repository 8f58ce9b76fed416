// Package config handles configuration loading from files, defaults, and environment variables.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/javiermolinar/timeflow/internal/dateutil"
	"github.com/javiermolinar/timeflow/internal/schedule"
)

// Config holds the application configuration.
type Config struct {
	API      APIConfig      `toml:"api"`
	Schedule ScheduleConfig `toml:"schedule"`
	Storage  StorageConfig  `toml:"storage"`
	UI       UIConfig       `toml:"ui"`
}

// APIConfig holds settings for the remote scheduling API.
type APIConfig struct {
	BaseURL           string  `toml:"base_url"`            // e.g., "https://localhost:7143/api"
	Timeout           string  `toml:"timeout"`             // Go duration, e.g., "15s"
	RequestsPerSecond float64 `toml:"requests_per_second"` // 0 disables pacing
	InsecureTLS       bool    `toml:"insecure_tls"`        // accept self-signed dev certificates
}

// ScheduleConfig holds week grid settings.
type ScheduleConfig struct {
	WeekStart   string `toml:"week_start"`   // "monday" or "sunday"
	FromHour    int    `toml:"from_hour"`    // first hour row shown, 0..23
	ToHour      int    `toml:"to_hour"`      // end of the last hour row, 1..24
	OffsetHours int    `toml:"offset_hours"` // subtracted from server timestamps
}

// StorageConfig holds local session database settings.
type StorageConfig struct {
	DBPath string `toml:"db_path"`
}

// UIConfig holds TUI settings.
type UIConfig struct {
	Theme string `toml:"theme"` // "mocha", "macchiato", "frappe", "latte"
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:           "https://localhost:7143/api",
			Timeout:           "15s",
			RequestsPerSecond: 10,
		},
		Schedule: ScheduleConfig{
			WeekStart:   "monday",
			FromHour:    8,
			ToHour:      20,
			OffsetHours: 4,
		},
		Storage: StorageConfig{
			DBPath: defaultDBPath(),
		},
		UI: UIConfig{
			Theme: "frappe",
		},
	}
}

// defaultDBPath returns the default database path.
func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "timeflow.db"
	}
	return filepath.Join(home, ".local", "share", "timeflow", "timeflow.db")
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(home, ".config", "timeflow", "config.toml")
}

// Load loads configuration from the default path, merging with defaults and env vars.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigPath())
}

// LoadFrom loads configuration from the specified path.
// It starts with defaults, overlays file config if it exists, loads a .env
// file from the working directory if present, then applies env overrides.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	if err := loadFromFile(path, cfg); err != nil {
		return nil, err
	}

	// .env never overrides variables already set in the environment.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	cfg.Storage.DBPath = expandPath(cfg.Storage.DBPath)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// loadFromFile loads config from a file if it exists.
func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config file: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
// Environment variables take precedence over file config.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("TIMEFLOW_API_URL"); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv("TIMEFLOW_API_TIMEOUT"); v != "" {
		cfg.API.Timeout = v
	}
	if v := os.Getenv("TIMEFLOW_API_INSECURE"); v != "" {
		cfg.API.InsecureTLS = v == "1" || strings.EqualFold(v, "true")
	}

	if v := os.Getenv("TIMEFLOW_WEEK_START"); v != "" {
		cfg.Schedule.WeekStart = v
	}
	ints := []struct {
		env string
		dst *int
	}{
		{"TIMEFLOW_FROM_HOUR", &cfg.Schedule.FromHour},
		{"TIMEFLOW_TO_HOUR", &cfg.Schedule.ToHour},
		{"TIMEFLOW_OFFSET_HOURS", &cfg.Schedule.OffsetHours},
	}
	for _, o := range ints {
		v := os.Getenv(o.env)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s must be an integer, got %q", o.env, v)
		}
		*o.dst = n
	}

	if v := os.Getenv("TIMEFLOW_DB_PATH"); v != "" {
		cfg.Storage.DBPath = v
	}
	if v := os.Getenv("TIMEFLOW_UI_THEME"); v != "" {
		cfg.UI.Theme = v
	}
	return nil
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// Validate checks if the configuration is valid.
// Schedule problems are reported as *schedule.ConfigurationError.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api.base_url must be an absolute URL, got %q", c.API.BaseURL)
	}
	if _, err := c.RequestTimeout(); err != nil {
		return err
	}
	if c.API.RequestsPerSecond < 0 {
		return errors.New("api.requests_per_second must not be negative")
	}

	if _, err := c.Navigator(); err != nil {
		return err
	}
	if err := c.Hours().Validate(); err != nil {
		return err
	}
	if c.Schedule.OffsetHours < -14 || c.Schedule.OffsetHours > 14 {
		return &schedule.ConfigurationError{
			Field:  "offset_hours",
			Reason: fmt.Sprintf("must be within -14..14, got %d", c.Schedule.OffsetHours),
		}
	}

	if c.Storage.DBPath == "" {
		return errors.New("db_path must be set")
	}
	return nil
}

// RequestTimeout parses api.timeout.
func (c *Config) RequestTimeout() (time.Duration, error) {
	d, err := time.ParseDuration(c.API.Timeout)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("api.timeout must be a positive duration, got %q", c.API.Timeout)
	}
	return d, nil
}

// Navigator builds the week navigator for the configured week start.
func (c *Config) Navigator() (schedule.Navigator, error) {
	wd, ok := dateutil.ParseWeekday(c.Schedule.WeekStart)
	if !ok {
		return schedule.Navigator{}, &schedule.ConfigurationError{
			Field:  "week_start",
			Reason: fmt.Sprintf("unknown weekday %q", c.Schedule.WeekStart),
		}
	}
	return schedule.NewNavigator(wd)
}

// Hours returns the configured grid hour range.
func (c *Config) Hours() schedule.HourRange {
	return schedule.HourRange{From: c.Schedule.FromHour, To: c.Schedule.ToHour}
}

// Reconciler returns the timestamp reconciler for the configured offset.
func (c *Config) Reconciler() schedule.Reconciler {
	return schedule.NewReconciler(c.Schedule.OffsetHours)
}

// Save writes the configuration to the default path.
func (c *Config) Save() error {
	return c.SaveTo(DefaultConfigPath())
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
