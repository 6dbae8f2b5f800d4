package transport

import (
	"log/slog"
	"net/http"
	"time"
)

// RequestLogger logs one line per request at debug level.
func RequestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			if logger != nil {
				logger.Debug("request",
					"method", r.Method,
					"path", r.URL.Path,
					"duration", time.Since(start),
				)
			}
		})
	}
}
