package schedule

import (
	"errors"
	"fmt"
)

// ErrConfiguration matches any *ConfigurationError via errors.Is.
var ErrConfiguration = errors.New("invalid schedule configuration")

// ConfigurationError reports a grid or week setting that cannot be used.
// It is fatal at setup; callers must not fall back to defaults.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Is lets errors.Is(err, ErrConfiguration) match.
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

func configErrorf(field, format string, args ...any) error {
	return &ConfigurationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
