package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/hongminglow/learning-be/internal/logging"
)

// RequestIDHeader echoes the request ID back to the client.
const RequestIDHeader = "X-Request-ID"

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

type principalSlot struct{ id string }

// Logging assigns each request a ULID request ID and logs one line when it
// completes.
func Logging(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := ulid.Make().String()
		w.Header().Set(RequestIDHeader, requestID)

		slot := &principalSlot{}
		ctx := logging.WithRequestID(r.Context(), requestID)
		ctx = withPrincipalSlot(ctx, slot)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(ctx))

		attrs := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		}
		if slot.id != "" {
			attrs = append(attrs, "principal", slot.id)
		}
		logger.InfoContext(ctx, "request completed", attrs...)
	})
}
