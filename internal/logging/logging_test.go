package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNew_WritesToFile(t *testing.T) {
	dir := t.TempDir()

	log, cleanup, err := New(dir, "debug")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	log.Info("hello from the test")
	cleanup()

	data, err := os.ReadFile(filepath.Join(dir, logFileName))
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(data), "hello from the test") {
		t.Errorf("log file missing expected entry: %s", data)
	}
}

func TestNew_LevelFilters(t *testing.T) {
	dir := t.TempDir()

	log, cleanup, err := New(dir, "warn")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	log.Debug("suppressed")
	log.Warn("kept")
	cleanup()

	data, err := os.ReadFile(filepath.Join(dir, logFileName))
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if strings.Contains(string(data), "suppressed") {
		t.Error("debug entries must be filtered at warn level")
	}
	if !strings.Contains(string(data), "kept") {
		t.Error("warn entries must pass")
	}
}

func TestNew_BadLevel(t *testing.T) {
	if _, _, err := New(t.TempDir(), "shouting"); err == nil {
		t.Fatal("expected error for unknown log level")
	}
}
