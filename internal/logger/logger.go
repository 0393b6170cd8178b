// Package logger carries a zerolog logger through context.Context.
package logger

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type ctxKey struct{}

// FieldComponent names the subsystem that emitted a log line.
const FieldComponent = "component"

// New returns a human-readable console logger on stderr.
func New() zerolog.Logger {
	out := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}
	return zerolog.New(out).With().Timestamp().Logger()
}

// NewWithWriter returns a JSON logger writing to w.
func NewWithWriter(w io.Writer) zerolog.Logger {
	return zerolog.New(w).With().Timestamp().Logger()
}

// NewWithLevel returns a logger at the named level. Unknown or empty
// levels fall back to info. When json is false the output is the
// console format.
func NewWithLevel(level string, json bool) zerolog.Logger {
	var l zerolog.Logger
	if json {
		l = NewWithWriter(os.Stdout)
	} else {
		l = New()
	}
	return l.Level(ParseLevel(level))
}

// ParseLevel maps a configuration string to a zerolog level.
func ParseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// WithContext stores logger in ctx.
func WithContext(ctx context.Context, logger zerolog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// FromContext returns the logger stored in ctx, or a console logger when
// there is none.
func FromContext(ctx context.Context) zerolog.Logger {
	if logger, ok := ctx.Value(ctxKey{}).(zerolog.Logger); ok {
		return logger
	}
	return New()
}

// WithFields returns a child logger with the given fields attached.
func WithFields(logger zerolog.Logger, fields map[string]any) zerolog.Logger {
	c := logger.With()
	for k, v := range fields {
		c = c.Interface(k, v)
	}
	return c.Logger()
}

// WithComponent tags logger with a component name.
func WithComponent(logger zerolog.Logger, component string) zerolog.Logger {
	return logger.With().Str(FieldComponent, component).Logger()
}
