package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNewWithWriter_JSONRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(WarnLevel, FormatJSON, &buf)

	log.Infow("dropped", "k", 1)
	log.Warnw("kept", "route", "/movies")
	_ = log.Sync()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("want 1 line, got %d: %q", len(lines), buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("not JSON: %v", err)
	}
	if entry["msg"] != "kept" || entry["level"] != "warn" || entry["route"] != "/movies" {
		t.Fatalf("unexpected entry: %v", entry)
	}
}

func TestNewWithWriter_ConsoleAndPrintf(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(InfoLevel, FormatConsole, &buf)

	log.Printf("applied %d migrations", 1)
	_ = log.Sync()

	out := buf.String()
	if !strings.Contains(out, "INFO") || !strings.Contains(out, "applied 1 migrations") {
		t.Fatalf("unexpected console output: %q", out)
	}
}

func TestToZapLevel_UnknownFallsBackToDebug(t *testing.T) {
	if got := toZapLevel("verbose"); got != defaultZapLevel {
		t.Fatalf("got %v, want %v", got, defaultZapLevel)
	}
}
