package logger

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"INFO", zapcore.InfoLevel},
		{"Warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"CRITICAL", zapcore.ErrorLevel},
	}
	for _, tc := range tests {
		got, err := ParseLevel(tc.in)
		if err != nil {
			t.Fatalf("ParseLevel(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
	if _, err := ParseLevel("verbose"); err == nil {
		t.Fatalf("ParseLevel(verbose): want error")
	}
}

func TestLogAt(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := zap.New(core).Sugar()

	LogAt(log, "warning", "disk slow")
	LogAt(log, "critical", "cluster lost")
	LogAt(log, "verbose", "chatty")

	entries := logs.AllUntimed()
	if len(entries) != 3 {
		t.Fatalf("want 3 entries, got %d", len(entries))
	}
	if entries[0].Level != zapcore.WarnLevel {
		t.Errorf("warning logged at %v", entries[0].Level)
	}
	if entries[1].Level != zapcore.ErrorLevel || entries[1].ContextMap()["critical"] != true {
		t.Errorf("critical entry = %v %v", entries[1].Level, entries[1].ContextMap())
	}
	if entries[2].Level != zapcore.InfoLevel || entries[2].ContextMap()["raw_level"] != "verbose" {
		t.Errorf("unknown level entry = %v %v", entries[2].Level, entries[2].ContextMap())
	}
}

func TestNew_WritesFile(t *testing.T) {
	prev := zap.L()
	defer zap.ReplaceGlobals(prev)

	root := t.TempDir()
	log, err := New(root, "info", false)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	log.Infow("hello", "k", "v")
	_ = log.Sync()

	b, err := os.ReadFile(filepath.Join(root, "logs", "apiguard.log"))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if len(b) == 0 {
		t.Fatalf("log file empty")
	}
}

func TestNew_BadLevel(t *testing.T) {
	if _, err := New(t.TempDir(), "loud", false); err == nil {
		t.Fatalf("want error for unknown level")
	}
}

func TestSetLevel(t *testing.T) {
	prev := zap.L()
	defer zap.ReplaceGlobals(prev)
	defer func() { _ = SetLevel("info") }()

	log, err := New(t.TempDir(), "info", false)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	core := log.Desugar().Core()
	if core.Enabled(zapcore.DebugLevel) {
		t.Fatalf("debug enabled at info level")
	}

	if err := SetLevel("DEBUG"); err != nil {
		t.Fatalf("SetLevel: %v", err)
	}
	if !core.Enabled(zapcore.DebugLevel) {
		t.Fatalf("debug still disabled after SetLevel(DEBUG)")
	}

	if err := SetLevel("verbose"); err == nil {
		t.Fatalf("SetLevel(verbose): want error")
	}
	if !core.Enabled(zapcore.DebugLevel) {
		t.Fatalf("rejected level changed the current one")
	}
}
