// Package logging provides the package-level structured logger shared by
// the redundancy and vpdmgr packages of the write pipeline.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// L is the global logger. It discards all output until Init is called,
// so packages that log unconditionally are silent in tests that never
// configure logging.
var L *slog.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))

// Options configures logger initialization.
type Options struct {
	Enabled bool       // If false, all logging is discarded.
	Level   slog.Level // Minimum log level. Default: LevelInfo when enabled.
	Output  io.Writer  // Default: os.Stderr when enabled.
}

// Init configures logging. Call from main() before any log calls.
func Init(opts Options) {
	if !opts.Enabled {
		L = slog.New(slog.NewTextHandler(io.Discard, nil))
		return
	}

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	level := opts.Level
	if level == 0 {
		level = slog.LevelInfo
	}

	L = slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level}))
}

// Debug logs a debug message with optional key-value pairs.
func Debug(msg string, args ...any) { L.Debug(msg, args...) }

// Info logs an info message with optional key-value pairs.
func Info(msg string, args ...any) { L.Info(msg, args...) }

// Warn logs a warning message with optional key-value pairs.
func Warn(msg string, args ...any) { L.Warn(msg, args...) }

// Error logs an error message with optional key-value pairs.
func Error(msg string, args ...any) { L.Error(msg, args...) }
