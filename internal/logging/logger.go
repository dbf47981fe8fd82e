// Package logging configures the process-wide slog logger and hands out
// request-scoped loggers that carry the chi request ID, so every entry
// written while serving an upload or a validation run can be correlated.
package logging

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
)

// Setup installs the default slog logger.
//
// level accepts debug, info, warn and error; anything else falls back to
// info. format selects json for log shippers or text for terminals, with
// text as the fallback. Debug level also records source positions, which
// is worth the cost only while diagnosing a misbehaving validation run.
func Setup(level, format string) {
	lvl := parseLevel(level)
	opts := &slog.HandlerOptions{
		Level:     lvl,
		AddSource: lvl == slog.LevelDebug,
	}

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

// FromContext returns the default logger, tagged with request_id when the
// context passed through chi's RequestID middleware.
//
//	logger := logging.FromContext(r.Context())
//	logger.Info("file accepted", "session_id", sess.ID, "rows", sess.RowCount)
func FromContext(ctx context.Context) *slog.Logger {
	logger := slog.Default()
	if reqID := middleware.GetReqID(ctx); reqID != "" {
		logger = logger.With("request_id", reqID)
	}
	return logger
}

// WithFields returns a request-scoped logger pre-loaded with extra
// attributes, for multi-step operations that log more than once:
//
//	runLog := logging.WithFields(ctx, "session_id", id, "file_name", sess.FileName)
//	runLog.Info("validation started")
//	runLog.Info("validation finished", "status", report.Summary.ValidationStatus)
func WithFields(ctx context.Context, args ...any) *slog.Logger {
	return FromContext(ctx).With(args...)
}
