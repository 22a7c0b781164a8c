package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestNewLoggerLevelFiltering(t *testing.T) {
	tests := []struct {
		name  string
		level log.Level
		emit  func(*log.Logger)
		want  bool
	}{
		{"info passes at info", log.InfoLevel, func(l *log.Logger) { l.Info("movie loaded") }, true},
		{"debug filtered at info", log.InfoLevel, func(l *log.Logger) { l.Debug("cache key") }, false},
		{"debug passes at debug", log.DebugLevel, func(l *log.Logger) { l.Debug("cache key") }, true},
		{"warn passes at info", log.InfoLevel, func(l *log.Logger) { l.Warn("window clamped") }, true},
	}

	for _, tt := range tests {
		var buf bytes.Buffer
		tt.emit(newLogger(&buf, tt.level))
		if got := buf.Len() > 0; got != tt.want {
			t.Errorf("%s: wrote output = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestProgressReportsElapsed(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, log.InfoLevel)

	p := newProgress(logger)
	p.done("laid out 12 trees")

	out := buf.String()
	if !strings.Contains(out, "laid out 12 trees") {
		t.Errorf("missing message in %q", out)
	}
	// The elapsed duration rides in parentheses after the message.
	if !strings.Contains(out, "(") || !strings.Contains(out, ")") {
		t.Errorf("missing elapsed time in %q", out)
	}
}

func TestLoggerContextRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, log.DebugLevel)

	ctx := withLogger(context.Background(), logger)
	if got := loggerFromContext(ctx); got != logger {
		t.Fatal("context should carry the attached logger")
	}

	loggerFromContext(ctx).Debug("resolved anchor", "pair", 1)
	if !strings.Contains(buf.String(), "resolved anchor") {
		t.Error("retrieved logger should write to the original sink")
	}
}

func TestLoggerFromBareContext(t *testing.T) {
	if loggerFromContext(context.Background()) == nil {
		t.Error("a bare context should fall back to the default logger")
	}
}

func TestLoggerLevelsAreIndependent(t *testing.T) {
	var a, b bytes.Buffer
	quiet := newLogger(&a, log.WarnLevel)
	chatty := newLogger(&b, log.DebugLevel)

	quiet.Info("dropped")
	chatty.Info("kept")

	if a.Len() != 0 {
		t.Error("warn-level logger should drop info messages")
	}
	if b.Len() == 0 {
		t.Error("debug-level logger should keep info messages")
	}
}
