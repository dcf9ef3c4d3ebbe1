// Package logging provides the configured slog logger used by dycheck.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// Options configures the default logger.
type Options struct {
	// Verbose toggles debug level logging when true.
	Verbose bool
	// Writer directs log output; defaults to os.Stderr when nil.
	Writer io.Writer
}

// New constructs a slog.Logger with dycheck defaults.
func New(opts Options) *slog.Logger {
	level := slog.LevelInfo
	if opts.Verbose {
		level = slog.LevelDebug
	}
	writer := opts.Writer
	if writer == nil {
		writer = os.Stderr
	}
	return slog.New(slog.NewTextHandler(writer, &slog.HandlerOptions{Level: level}))
}

// Discard returns a logger that drops every record. Used as the default in
// library code when the caller wires no logger.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.Level(127)}))
}
