package infrastructure

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// GenerateTraceID returns a new v4 UUID used to correlate the log
// lines of one request or one pipeline run.
func GenerateTraceID() string {
	return uuid.New().String()
}

// ContextWithTraceID stamps a fresh trace ID onto the context.
func ContextWithTraceID(ctx context.Context) context.Context {
	return WithTraceID(ctx, GenerateTraceID())
}

// EnsureTraceID returns the context unchanged when it already carries
// a trace ID, otherwise stamps a fresh one. Called at the edges
// (HTTP middleware, run start) so everything below logs correlated.
func EnsureTraceID(ctx context.Context) context.Context {
	if GetTraceID(ctx) == "" {
		return ContextWithTraceID(ctx)
	}
	return ctx
}

// LoggerWithContext returns the process logger enriched with the
// context's trace ID. The service decorators use this instead of
// threading a logger through every call.
func LoggerWithContext(ctx context.Context) *slog.Logger {
	logger := GetLogger()
	if traceID := GetTraceID(ctx); traceID != "" {
		logger = logger.With(slog.String("trace_id", traceID))
	}
	return logger
}
