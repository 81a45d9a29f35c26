package logging

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestNewLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		logFunc func(*log.Logger)
		wantLog bool
	}{
		{"info at info level", log.InfoLevel, func(l *log.Logger) { l.Info("test") }, true},
		{"debug at info level", log.InfoLevel, func(l *log.Logger) { l.Debug("test") }, false},
		{"debug at debug level", log.DebugLevel, func(l *log.Logger) { l.Debug("test") }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.logFunc(New(&buf, tt.level))
			if (buf.Len() > 0) != tt.wantLog {
				t.Errorf("wantLog=%v, got output %q", tt.wantLog, buf.String())
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	if ParseLevel("debug") != log.DebugLevel {
		t.Error("Expected debug level")
	}
	if ParseLevel("loud") != log.InfoLevel {
		t.Error("Unknown names should fall back to info")
	}
}

func TestContextRoundTrip(t *testing.T) {
	if FromContext(context.Background()) != log.Default() {
		t.Error("Expected default logger without one attached")
	}
	l := New(&bytes.Buffer{}, log.InfoLevel)
	if FromContext(WithLogger(context.Background(), l)) != l {
		t.Error("Expected the attached logger")
	}
}

func TestProgressDone(t *testing.T) {
	var buf bytes.Buffer
	NewProgress(New(&buf, log.InfoLevel)).Done("exported", "samples", 11)
	out := buf.String()
	if !strings.Contains(out, "exported") || !strings.Contains(out, "elapsed") {
		t.Errorf("Unexpected output %q", out)
	}
}
