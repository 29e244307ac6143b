// internal/logging/logger_test.go
package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestNew_DefaultLevelIsWarn(t *testing.T) {
	var buf bytes.Buffer
	log := New("", "text", &buf)

	log.Info("hidden")
	log.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info must be filtered at default level: %q", out)
	}
	if !strings.Contains(out, "shown") {
		t.Fatalf("warn must be logged: %q", out)
	}
}

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	log := New("debug", "json", &buf)

	log.Debug("event", "object", 3)

	if !strings.HasPrefix(strings.TrimSpace(buf.String()), "{") {
		t.Fatalf("expected json output, got %q", buf.String())
	}
}
