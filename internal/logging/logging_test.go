package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for input, want := range cases {
		if got := ParseLevel(input); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestNewJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New("info", "json", &buf)
	logger.Debug("hidden")
	logger.Info("saved", "files", 2)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one line, got %q", buf.String())
	}
	var record map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &record); err != nil {
		t.Fatalf("expected json output: %v", err)
	}
	if record["msg"] != "saved" || record["files"] != float64(2) {
		t.Fatalf("unexpected record %v", record)
	}
}

func TestNewTextFormat(t *testing.T) {
	var buf bytes.Buffer
	New("debug", "text", &buf).Debug("visible", "bu", "acme")
	if !strings.Contains(buf.String(), "bu=acme") {
		t.Fatalf("expected text output, got %q", buf.String())
	}
}
