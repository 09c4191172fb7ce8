// Package logging configures the process-wide slog logger.
package logging

import (
	"io"
	"log/slog"
	"time"

	"github.com/lmittmann/tint"
	"github.com/rs/xid"
)

// Options controls how log records are rendered.
type Options struct {
	Verbose bool
	Color   bool
}

// NewHandler returns a tint handler writing to w. Debug records are only
// emitted in verbose mode.
func NewHandler(w io.Writer, opts Options) slog.Handler {
	level := slog.LevelInfo
	if opts.Verbose {
		level = slog.LevelDebug
	}

	return tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.TimeOnly,
		NoColor:    !opts.Color,
	})
}

// Setup installs the default logger and tags every record with a run id so
// concurrent invocations can be told apart in shared logs.
func Setup(w io.Writer, opts Options) *slog.Logger {
	logger := slog.New(NewHandler(w, opts)).With("run", xid.New().String())
	slog.SetDefault(logger)

	return logger
}
