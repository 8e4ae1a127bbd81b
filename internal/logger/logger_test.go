package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"drowsiness/internal/config"
)

func TestNewLogger_CreatesLogFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	cfg := &config.Config{LogDirectory: dir}

	l, err := NewLogger(cfg)
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}
	defer l.Close()

	l.Info("frame %d processed", 1)
	l.Warning("actuator %s unavailable", "COM2")
	l.Error("detector failed: %v", "boom")

	tests := []struct {
		file    string
		content string
	}{
		{InfoFile, "frame 1 processed"},
		{WarningFile, "actuator COM2 unavailable"},
		{ErrorFile, "detector failed: boom"},
	}

	for _, tt := range tests {
		data, err := os.ReadFile(filepath.Join(dir, tt.file))
		if err != nil {
			t.Fatalf("Failed to read %s: %v", tt.file, err)
		}
		if !strings.Contains(string(data), tt.content) {
			t.Errorf("%s = %q, expected it to contain %q", tt.file, data, tt.content)
		}
	}
}

func TestCleanLogs(t *testing.T) {
	dir := t.TempDir()
	l, err := NewLogger(&config.Config{LogDirectory: dir})
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}
	defer l.Close()

	l.Warning("something to clear")
	if err := l.CleanLogs(WarningFile); err != nil {
		t.Fatalf("CleanLogs failed: %v", err)
	}

	info, err := os.Stat(filepath.Join(dir, WarningFile))
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if info.Size() != 0 {
		t.Errorf("Expected empty warning.log, got %d bytes", info.Size())
	}
}

func TestNewWriterLogger(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriterLogger(&buf)

	l.Info("hello %s", "driver")
	l.Error("bad %d", 7)

	out := buf.String()
	if !strings.Contains(out, "INFO") || !strings.Contains(out, "hello driver") {
		t.Errorf("missing info entry in %q", out)
	}
	if !strings.Contains(out, "ERROR") || !strings.Contains(out, "bad 7") {
		t.Errorf("missing error entry in %q", out)
	}
	if l.LogDir() != "" {
		t.Errorf("writer logger should have no log dir, got %q", l.LogDir())
	}
	if err := l.CleanLogs(InfoFile); err != nil {
		t.Errorf("CleanLogs on writer logger: %v", err)
	}
}
