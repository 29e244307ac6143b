// internal/config/validate.go
package config

import (
	"fmt"

	"github.com/tamzrod/river-shifttags/internal/tags"
)

// Validate checks argument correctness.
// It performs declarative validation only.
// It MUST NOT mutate its input.
func Validate(a Args) error {
	if a.TagCount < tags.MinCount || a.TagCount > tags.MaxCount {
		return &RangeError{Value: fmt.Sprint(a.TagCount)}
	}

	switch a.Mode {
	case tags.Focus, tags.Window:
	default:
		return &UsageError{Reason: fmt.Sprintf("unknown mode %s", a.Mode)}
	}

	switch a.Direction {
	case tags.Left, tags.Right:
	default:
		return &UsageError{Reason: fmt.Sprintf("unknown direction %s", a.Direction)}
	}

	return nil
}

// ValidateSettings checks settings after Normalize.
func ValidateSettings(s *Settings) error {
	switch s.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level %q must be one of debug, info, warn, error", s.Log.Level)
	}

	switch s.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format %q must be text or json", s.Log.Format)
	}

	return nil
}
