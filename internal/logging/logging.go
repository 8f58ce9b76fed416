// Package logging builds the zap logger shared by the CLI, API client and TUI.
package logging

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DebugLogPath is the fixed path for debug logs.
const DebugLogPath = "timeflow-debug.log"

// Options selects where and how much to log.
type Options struct {
	Debug bool   // write debug-level JSON lines to Path
	Path  string // defaults to DebugLogPath
}

// New returns a no-op logger unless debug logging is enabled.
// The TUI owns the terminal, so nothing is ever written to stdout or stderr.
func New(opts Options) (*zap.Logger, error) {
	if !opts.Debug {
		return zap.NewNop(), nil
	}

	path := opts.Path
	if path == "" {
		path = DebugLogPath
	}

	var cfg zap.Config
	if os.Getenv("TIMEFLOW_ENV") == "development" {
		cfg = zap.NewDevelopmentConfig()
		cfg.Encoding = "console"
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Sampling = nil
	}
	cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{path}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("creating debug log: %w", err)
	}
	logger.Debug("debug_start", zap.String("log_file", path))
	return logger, nil
}
