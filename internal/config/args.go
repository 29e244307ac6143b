// internal/config/args.go
package config

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/tamzrod/river-shifttags/internal/tags"
)

// Args is the validated command line.
type Args struct {
	TagCount  int
	Mode      tags.Mode
	Direction tags.Direction
}

// UsageError means the command line is malformed.
type UsageError struct {
	Reason string
}

func (e *UsageError) Error() string {
	return "usage: " + e.Reason
}

// RangeError means TAG_COUNT parsed but lies outside [1, 32].
type RangeError struct {
	Value string
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("invalid tag count [%d..%d]", tags.MinCount, tags.MaxCount)
}

// Usage returns the usage line for prog.
func Usage(prog string) string {
	if prog == "" {
		prog = "river-shifttags"
	}
	return fmt.Sprintf("USAGE: %s TAG_COUNT [focus|window] [left|right]", prog)
}

// ParseArgs validates argv (program name included).
// It returns *UsageError or *RangeError on bad input.
func ParseArgs(argv []string) (Args, error) {
	if len(argv) != 4 {
		return Args{}, &UsageError{Reason: fmt.Sprintf("expected 3 arguments, got %d", max(len(argv)-1, 0))}
	}

	count, err := parseTagCount(argv[1])
	if err != nil {
		return Args{}, err
	}

	mode, ok := tags.ParseMode(argv[2])
	if !ok {
		return Args{}, &UsageError{Reason: fmt.Sprintf("unknown mode %q", argv[2])}
	}

	dir, ok := tags.ParseDirection(argv[3])
	if !ok {
		return Args{}, &UsageError{Reason: fmt.Sprintf("unknown direction %q", argv[3])}
	}

	a := Args{TagCount: count, Mode: mode, Direction: dir}
	if err := Validate(a); err != nil {
		return Args{}, err
	}
	return a, nil
}

// parseTagCount accepts a strict decimal integer. Zero and non-numbers are
// usage errors; any other number outside the range is a RangeError.
func parseTagCount(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return 0, &RangeError{Value: s}
		}
		return 0, &UsageError{Reason: fmt.Sprintf("TAG_COUNT %q is not a number", s)}
	}
	if n == 0 {
		return 0, &UsageError{Reason: "TAG_COUNT must not be zero"}
	}
	return n, nil
}
