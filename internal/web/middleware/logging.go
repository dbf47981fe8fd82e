// Package middleware holds the HTTP middleware for the validation API:
// request logging and trusted-proxy client IP resolution.
package middleware

import (
	"net/http"
	"time"

	"github.com/mquintana/itemcheck/internal/logging"
)

// Logger emits one structured entry per request with method, path, status,
// response size, duration and client IP. Error-class responses are logged
// at warn so upload rejections and auth failures stand out in the stream.
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)

		// TrustedRealIP runs earlier and rewrites RemoteAddr when the
		// proxy headers are trustworthy, so RemoteAddr is authoritative.
		logger := logging.FromContext(r.Context())
		attrs := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.status,
			"bytes", ww.bytes,
			"duration_ms", time.Since(start).Milliseconds(),
			"ip", r.RemoteAddr,
		}
		if ww.status >= http.StatusBadRequest {
			logger.Warn("request", attrs...)
		} else {
			logger.Info("request", attrs...)
		}
	})
}

// responseWriter captures the status code and body size of a response.
type responseWriter struct {
	http.ResponseWriter
	status      int
	bytes       int
	wroteHeader bool
}

func (w *responseWriter) WriteHeader(status int) {
	if w.wroteHeader {
		return
	}
	w.status = status
	w.wroteHeader = true
	w.ResponseWriter.WriteHeader(status)
}

func (w *responseWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

// Unwrap exposes the wrapped writer so http.ResponseController keeps
// working through this middleware.
func (w *responseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
