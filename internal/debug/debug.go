// Package debug carries the --debug switch through the context and
// configures the process-wide slog logger.
package debug

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

type contextKey string

const debugKey contextKey = "debug_enabled"

// WithDebug returns a context with debug mode enabled/disabled.
func WithDebug(ctx context.Context, enabled bool) context.Context {
	return context.WithValue(ctx, debugKey, enabled)
}

// IsEnabled returns true if debug mode is enabled in the context.
func IsEnabled(ctx context.Context) bool {
	if v, ok := ctx.Value(debugKey).(bool); ok {
		return v
	}
	return false
}

// SetupLogger installs a stderr text logger at debug or warn level.
func SetupLogger(debugEnabled bool) {
	slog.SetDefault(NewLogger(os.Stderr, debugEnabled, false))
}

// NewLogger builds a logger that never prints credentials. Attributes whose
// key mentions a token, password or authorization are replaced.
func NewLogger(w io.Writer, debugEnabled, jsonFormat bool) *slog.Logger {
	level := slog.LevelWarn
	if debugEnabled {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level, ReplaceAttr: redact}
	if jsonFormat {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func redact(_ []string, a slog.Attr) slog.Attr {
	key := strings.ToLower(a.Key)
	for _, secret := range []string{"token", "password", "authorization"} {
		if strings.Contains(key, secret) {
			return slog.String(a.Key, "[redacted]")
		}
	}
	return a
}
