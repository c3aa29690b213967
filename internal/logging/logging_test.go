package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		level string
		want  zerolog.Level
	}{
		{"", zerolog.WarnLevel},
		{"debug", zerolog.DebugLevel},
		{" INFO ", zerolog.InfoLevel},
		{"error", zerolog.ErrorLevel},
		{"disabled", zerolog.Disabled},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			l, _, err := New(Options{Level: tt.level, Out: &bytes.Buffer{}})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if l.GetLevel() != tt.want {
				t.Errorf("level = %v, want %v", l.GetLevel(), tt.want)
			}
		})
	}
}

func TestNew_InvalidLevel(t *testing.T) {
	if _, _, err := New(Options{Level: "loud"}); err == nil {
		t.Fatal("expected error for invalid level")
	}
}

func TestNew_ConsoleOutput(t *testing.T) {
	var buf bytes.Buffer
	l, _, err := New(Options{Level: "info", Out: &buf})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	l.Info().Str("city", "Karachi").Msg("location applied")
	l.Debug().Msg("hidden")

	out := buf.String()
	if !strings.Contains(out, "location applied") || !strings.Contains(out, "Karachi") {
		t.Errorf("console output missing message: %q", out)
	}
	if strings.Contains(out, "hidden") {
		t.Errorf("debug message should be filtered: %q", out)
	}
}

func TestNew_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "salahme.log")
	l, closer, err := New(Options{Level: "info", File: path})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	l.Info().Str("request_id", "abc").Msg("search failed")
	if err := closer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}

	var line map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(data), &line); err != nil {
		t.Fatalf("log file should hold JSON lines: %v (%q)", err, data)
	}
	if line["message"] != "search failed" || line["request_id"] != "abc" {
		t.Errorf("unexpected log line: %v", line)
	}
}
