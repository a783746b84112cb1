package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var lines []map[string]any
	for _, l := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if l == "" {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(l), &m); err != nil {
			t.Fatalf("Invalid JSON log line %q: %v", l, err)
		}
		lines = append(lines, m)
	}
	return lines
}

func TestInitLevel(t *testing.T) {
	defer Init(DefaultConfig())

	var buf bytes.Buffer
	Init(Config{Level: "warn", Output: &buf})

	Info().Msg("hidden")
	Warn().Msg("shown")

	lines := decodeLines(t, &buf)
	if len(lines) != 1 {
		t.Fatalf("Expected 1 line, got %d", len(lines))
	}
	if lines[0]["message"] != "shown" {
		t.Errorf("Expected message 'shown', got %v", lines[0]["message"])
	}
}

func TestInitInvalidLevel(t *testing.T) {
	defer Init(DefaultConfig())

	var buf bytes.Buffer
	Init(Config{Level: "loud", Output: &buf})

	Debug().Msg("hidden")
	Info().Msg("shown")

	if n := len(decodeLines(t, &buf)); n != 1 {
		t.Errorf("Expected invalid level to fall back to info, got %d lines", n)
	}
}

func TestWithRunAndStage(t *testing.T) {
	defer Init(DefaultConfig())

	var buf bytes.Buffer
	Init(Config{Level: "info", Output: &buf})

	WithRun("first")
	WithRun("second")
	Stage("load").Msg("Loading data")

	// Re-tagging must not stack run_id fields.
	if strings.Count(buf.String(), `"run_id"`) != 1 {
		t.Errorf("Expected a single run_id field, got %s", buf.String())
	}

	lines := decodeLines(t, &buf)
	if len(lines) != 1 {
		t.Fatalf("Expected 1 line, got %d", len(lines))
	}
	if lines[0]["run_id"] != "second" {
		t.Errorf("Expected run_id 'second', got %v", lines[0]["run_id"])
	}
	if lines[0]["stage"] != "load" {
		t.Errorf("Expected stage 'load', got %v", lines[0]["stage"])
	}
}
