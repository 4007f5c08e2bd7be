// Package logger builds the zerolog loggers used by the CLI and the daemon.
package logger

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

type ctxKey struct{}

// Options controls the logger New builds.
type Options struct {
	Verbose bool // debug level instead of info
	Quiet   bool // warnings and errors only
	JSON    bool // raw JSON lines instead of the console writer
}

// New returns a stderr logger. Console output is used unless JSON is set.
func New(opts Options) zerolog.Logger {
	var w io.Writer = os.Stderr
	if !opts.JSON {
		w = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}
	return NewWithWriter(w).Level(level(opts))
}

// NewWithWriter returns a timestamped logger writing to w.
func NewWithWriter(w io.Writer) zerolog.Logger {
	return zerolog.New(w).With().Timestamp().Logger()
}

// Nop discards everything.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}

func level(opts Options) zerolog.Level {
	switch {
	case opts.Verbose:
		return zerolog.DebugLevel
	case opts.Quiet:
		return zerolog.WarnLevel
	}
	return zerolog.InfoLevel
}

// WithContext stores l in ctx.
func WithContext(ctx context.Context, l zerolog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the logger stored in ctx, or a disabled logger.
func FromContext(ctx context.Context) zerolog.Logger {
	if l, ok := ctx.Value(ctxKey{}).(zerolog.Logger); ok {
		return l
	}
	return zerolog.Nop()
}

// WithFields returns a child logger carrying fields.
func WithFields(l zerolog.Logger, fields map[string]any) zerolog.Logger {
	c := l.With()
	for k, v := range fields {
		c = c.Interface(k, v)
	}
	return c.Logger()
}
