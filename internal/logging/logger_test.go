package logging_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"vidup/internal/config"
	"vidup/internal/logging"
)

func TestNewFromConfigConsole(t *testing.T) {
	cfg := config.Default()
	logger, closeLog, err := logging.NewFromConfig(&cfg, "run-1")
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	defer closeLog()
	if logger == nil {
		t.Fatal("expected logger instance")
	}
	logger.Debug("debug message")
}

func TestFileOutputIsJSONWithRunID(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "logs", "vidup.log")
	logger, closeLog, err := logging.New(logging.Options{
		Format:      "console",
		Level:       "info",
		OutputPaths: []string{logPath},
		RunID:       "abc-123",
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	defer closeLog()

	logging.NewComponentLogger(logger, "analysis").Info("scenes registered", logging.Int("scenes", 4))

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var record map[string]any
	if err := json.Unmarshal(content, &record); err != nil {
		t.Fatalf("expected JSON line, got %q: %v", content, err)
	}
	checks := map[string]any{
		"msg":                  "scenes registered",
		"level":                "info",
		logging.FieldRunID:     "abc-123",
		logging.FieldComponent: "analysis",
		"scenes":               float64(4),
	}
	for key, want := range checks {
		if record[key] != want {
			t.Fatalf("field %s = %v, want %v (record %v)", key, record[key], want, record)
		}
	}
	if _, ok := record["ts"]; !ok {
		t.Fatalf("expected ts key, got %v", record)
	}
}

func TestInfoOmitsSourceDebugIncludesIt(t *testing.T) {
	dir := t.TempDir()
	for _, tc := range []struct {
		level string
		want  bool
	}{
		{"info", false},
		{"debug", true},
	} {
		logPath := filepath.Join(dir, tc.level+".log")
		logger, closeLog, err := logging.New(logging.Options{Format: "json", Level: tc.level, OutputPaths: []string{logPath}})
		if err != nil {
			t.Fatalf("New returned error: %v", err)
		}
		logger.Info("message")
		if err := closeLog(); err != nil {
			t.Fatalf("close log: %v", err)
		}
		content, err := os.ReadFile(logPath)
		if err != nil {
			t.Fatalf("read log file: %v", err)
		}
		if got := strings.Contains(string(content), ".go:"); got != tc.want {
			t.Fatalf("level %s: source present = %v, want %v (%q)", tc.level, got, tc.want, content)
		}
	}
}

func TestLevelFiltering(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "warn.log")
	logger, closeLog, err := logging.New(logging.Options{Format: "json", Level: "warn", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	defer closeLog()
	logger.Info("dropped")
	logging.WarnWithContext(logger, "kept", "stream_error")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	text := string(content)
	if strings.Contains(text, "dropped") || !strings.Contains(text, "kept") {
		t.Fatalf("unexpected output %q", text)
	}
	if !strings.Contains(text, `"event_type":"stream_error"`) || !strings.Contains(text, logging.FieldImpact) {
		t.Fatalf("expected warning context fields, got %q", text)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNewInvalidLevelDefaultsToInfo(t *testing.T) {
	logger, closeLog, err := logging.New(logging.Options{Format: "console", Level: "invalid"})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if err := closeLog(); err != nil {
		t.Fatalf("close without files: %v", err)
	}
	if logger == nil {
		t.Fatal("expected logger instance")
	}
}

func TestCloseReleasesLogFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "vidup.log")
	logger, closeLog, err := logging.New(logging.Options{Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("before close")
	if err := closeLog(); err != nil {
		t.Fatalf("close log: %v", err)
	}
	if err := closeLog(); err != nil {
		t.Fatalf("second close: %v", err)
	}
	logger.Info("after close")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	text := string(content)
	if !strings.Contains(text, "before close") || strings.Contains(text, "after close") {
		t.Fatalf("expected only the record written before close, got %q", text)
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := logging.NewNop()
	if logger.Enabled(t.Context(), 12) {
		t.Fatal("nop logger should not be enabled")
	}
	logging.NewComponentLogger(nil, "x").Error("ignored")
}
