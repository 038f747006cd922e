// Package logging builds the application's logr.Logger on top of a slog handler
// and provides small helpers for logging and wrapping errors in one step.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/go-logr/logr"
)

// Options selects the output format and minimum level.
type Options struct {
	Level  string // "debug", "info", "warn", "error"
	Format string // "json" or "text"
}

// New returns a logr.Logger writing to w.
//
// At "debug" every V-level up to 4 is emitted; at "info" only V(0).
func New(w io.Writer, opts Options) logr.Logger {
	handlerOpts := &slog.HandlerOptions{Level: ParseLevel(opts.Level)}

	var handler slog.Handler
	if strings.EqualFold(opts.Format, "text") {
		handler = slog.NewTextHandler(w, handlerOpts)
	} else {
		handler = slog.NewJSONHandler(w, handlerOpts)
	}
	return logr.FromSlogHandler(handler)
}

// ParseLevel maps a level name to a slog level. Unknown names fall back to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		// logr V(n) is slog level -n; LevelDebug is -4.
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LogAndWrapErr logs err at error level with the given key/value pairs and
// returns it wrapped with msg. A nil err is returned unchanged and not logged.
func LogAndWrapErr(logger logr.Logger, msg string, err error, kv ...any) error {
	if err == nil {
		return nil
	}
	logger.Error(err, msg, kv...)
	return fmt.Errorf("%s: %w", msg, err)
}

// DebugAndWrapErr is LogAndWrapErr for expected failures: it logs at V(1).
func DebugAndWrapErr(logger logr.Logger, msg string, err error, kv ...any) error {
	if err == nil {
		return nil
	}
	logger.V(1).Info(msg, append(kv, "err", err)...)
	return fmt.Errorf("%s: %w", msg, err)
}
