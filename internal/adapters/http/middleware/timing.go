package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"cadetportal/internal/ctxutil"
	"cadetportal/internal/metrics"
)

// DefaultSlowRequest is the default threshold for slow request warnings.
const DefaultSlowRequest = 200 * time.Millisecond

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

// WriteHeader captures the status code and delegates to the underlying ResponseWriter.
// PRE: code is a valid HTTP status code
// POST: status stored, header written to underlying ResponseWriter
func (sw *statusWriter) WriteHeader(code int) {
	sw.status = code
	sw.ResponseWriter.WriteHeader(code)
}

// Unwrap exposes the underlying writer to http.ResponseController.
func (sw *statusWriter) Unwrap() http.ResponseWriter { return sw.ResponseWriter }

// Timing returns middleware that assigns a request ID, records request metrics
// and logs duration.
// Normal requests log at DEBUG; slow requests (above threshold) log at WARN.
// Long-lived event streams are counted but never reported as slow.
func Timing(threshold time.Duration) func(http.Handler) http.Handler {
	if threshold <= 0 {
		threshold = DefaultSlowRequest
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqID := r.Header.Get("X-Request-ID")
			if reqID == "" {
				reqID = uuid.NewString()
			}
			w.Header().Set("X-Request-ID", reqID)
			r = r.WithContext(ctxutil.WithRequestID(r.Context(), reqID))

			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			defer func() {
				d := time.Since(start)
				metrics.ObserveRequest(r.Method, sw.status, d)

				attrs := []any{
					"request_id", reqID,
					"method", r.Method,
					"path", r.URL.Path,
					"status", sw.status,
					"duration_ms", float64(d.Microseconds()) / 1000.0,
				}
				if d >= threshold && sw.Header().Get("Content-Type") != "text/event-stream" {
					slog.Warn("slow_request", attrs...)
				} else {
					slog.Debug("request", attrs...)
				}
			}()

			next.ServeHTTP(sw, r)
		})
	}
}
