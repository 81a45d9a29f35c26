// Package logging builds the charmbracelet logger shared by the CLI and the
// core packages and carries it through context.Context.
package logging

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// New creates a logger with "HH:MM:SS.ms" timestamps filtered at level.
func New(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// ParseLevel maps a config level name to a log level, defaulting to info.
func ParseLevel(name string) log.Level {
	level, err := log.ParseLevel(name)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

type ctxKey int

const loggerKey ctxKey = 0

func WithLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext returns the logger attached to ctx, or log.Default().
func FromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

// Progress logs how long an operation took once it is done.
type Progress struct {
	logger *log.Logger
	start  time.Time
}

func NewProgress(l *log.Logger) *Progress {
	return &Progress{logger: l, start: time.Now()}
}

func (p *Progress) Done(msg string, keyvals ...any) {
	keyvals = append(keyvals, "elapsed", time.Since(p.start).Round(time.Millisecond))
	p.logger.Info(msg, keyvals...)
}
