package logging

import (
	"log/slog"
	"testing"
)

func TestNewLevels(t *testing.T) {
	cases := []struct {
		level string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tc := range cases {
		logger := New(tc.level)
		if logger == nil || logger.Logger == nil {
			t.Fatalf("New(%q) returned nil logger", tc.level)
		}
		if !logger.Enabled(nil, tc.want) {
			t.Errorf("New(%q): expected level %v to be enabled", tc.level, tc.want)
		}
		if tc.want > slog.LevelDebug && logger.Enabled(nil, tc.want-4) {
			t.Errorf("New(%q): expected level below %v to be disabled", tc.level, tc.want)
		}
	}
}

func TestDefault(t *testing.T) {
	logger := Default()
	if logger == nil {
		t.Fatal("Default returned nil")
	}
	if logger.Enabled(nil, slog.LevelDebug) {
		t.Error("default logger should not log debug")
	}
}

func TestComponentNilReceiver(t *testing.T) {
	var logger *Logger
	child := logger.Component("webhook")
	if child == nil || child.Logger == nil {
		t.Fatal("Component on nil logger should fall back to default")
	}
}
