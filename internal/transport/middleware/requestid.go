package middleware

import (
	"context"
	"net/http"

	"github.com/serfi-platform/user-management/pkg/logger"

	"github.com/google/uuid"
)

func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get("X-Trace-ID")
		if traceID == "" {
			traceID = uuid.NewString()
		}

		ctx := logger.WithTrace(r.Context(), traceID)

		// propagate back to response
		w.Header().Set("X-Trace-ID", traceID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// TraceID returns the request's trace id, or empty when not set.
func TraceID(ctx context.Context) string {
	return logger.TraceID(ctx)
}
