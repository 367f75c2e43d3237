// Package observability sets up Hanabi's logging.
//
// One slog handler is installed at startup from the log configuration.
// Per-message child loggers carry the trace id minted when a message
// arrives, and RedactSecrets strips API credentials from text that is about
// to be logged, such as the resolved-configuration line.
package observability

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/bdobrica/Hanabi/common/redact"
	"github.com/bdobrica/Hanabi/common/trace"
)

// Setup installs the global slog handler. Unknown levels fall back to info,
// unknown formats to text.
func Setup(level, format string) {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}
	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithTrace returns a logger carrying the trace_id from ctx, or the default
// logger when the context has none.
func WithTrace(ctx context.Context) *slog.Logger {
	traceID := trace.FromContext(ctx)
	if traceID == "" {
		return slog.Default()
	}
	return slog.With("trace_id", traceID)
}

// RedactSecrets replaces each of the given secret values occurring in msg
// with a placeholder. Used at startup to log the resolved configuration
// without leaking API keys or the Matrix access token.
func RedactSecrets(msg string, secrets ...string) string {
	return redact.String(msg, secrets...)
}
