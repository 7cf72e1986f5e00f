package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("warn")
	if err != nil {
		t.Fatalf("ParseLevel(warn) error: %v", err)
	}
	if lvl != zapcore.WarnLevel {
		t.Fatalf("expected warn level, got %v", lvl)
	}

	if _, err := ParseLevel("loud"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestNewWritesRotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "elfwalk.log")
	cfg := DefaultConfig()
	cfg.File = path

	log, err := New(cfg)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	log.Infow("hello", "player", 7)
	log.Debugw("filtered")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, "hello") || !strings.Contains(out, "player") {
		t.Fatalf("log file missing entry: %q", out)
	}
	if strings.Contains(out, "filtered") {
		t.Fatalf("debug entry written at info level: %q", out)
	}
}
