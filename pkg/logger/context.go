package logger

import (
	"context"
	"log/slog"
)

type loggerKey struct{}
type traceKey struct{}

// With returns a new context that includes a logger with fields.
func With(ctx context.Context, fields ...any) context.Context {
	l := From(ctx).With(fields...)
	return context.WithValue(ctx, loggerKey{}, l)
}

// WithTrace stores the request trace id and scopes the context logger to it,
// so every log line produced under this context carries the id.
func WithTrace(ctx context.Context, traceID string) context.Context {
	ctx = context.WithValue(ctx, traceKey{}, traceID)
	return With(ctx, "traceID", traceID)
}

// TraceID returns the trace id set by WithTrace, or empty when not set.
func TraceID(ctx context.Context) string {
	if id, ok := ctx.Value(traceKey{}).(string); ok {
		return id
	}
	return ""
}

// From returns the logger stored in context, or default if missing.
func From(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return LoggerWrapper()
}
