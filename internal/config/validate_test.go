// internal/config/validate_test.go
package config

import (
	"errors"
	"testing"

	"github.com/tamzrod/river-shifttags/internal/tags"
)

// helper to build args quickly
func args(count int, mode tags.Mode, dir tags.Direction) Args {
	return Args{TagCount: count, Mode: mode, Direction: dir}
}

// ---- tests ----

func TestValidate_Bounds(t *testing.T) {
	for _, n := range []int{1, 9, 32} {
		if err := Validate(args(n, tags.Focus, tags.Left)); err != nil {
			t.Fatalf("count=%d: unexpected error: %v", n, err)
		}
	}
}

func TestValidate_OutOfRange(t *testing.T) {
	for _, n := range []int{-1, 0, 33, 1000} {
		err := Validate(args(n, tags.Window, tags.Right))

		var rerr *RangeError
		if !errors.As(err, &rerr) {
			t.Fatalf("count=%d: expected RangeError, got %v", n, err)
		}
	}
}

func TestValidate_UnknownModeAndDirection(t *testing.T) {
	var uerr *UsageError

	if err := Validate(args(4, tags.Mode(7), tags.Left)); !errors.As(err, &uerr) {
		t.Fatalf("expected UsageError for mode, got %v", err)
	}
	if err := Validate(args(4, tags.Focus, tags.Direction(7))); !errors.As(err, &uerr) {
		t.Fatalf("expected UsageError for direction, got %v", err)
	}
}

func TestValidateSettings(t *testing.T) {
	ok := Defaults()
	if err := ValidateSettings(&ok); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}

	badLevel := Defaults()
	badLevel.Log.Level = "verbose"
	if err := ValidateSettings(&badLevel); err == nil {
		t.Fatalf("expected error for log level")
	}

	badFormat := Defaults()
	badFormat.Log.Format = "xml"
	if err := ValidateSettings(&badFormat); err == nil {
		t.Fatalf("expected error for log format")
	}
}
