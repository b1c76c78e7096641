package router

import (
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"time"
)

// loggingMiddleware writes one debug record per request once the response
// is complete. Requests to quiet routes are served without a record.
func loggingMiddleware(logger *slog.Logger, quietdownRoutes, hideHeaders []string) Middleware {
	quiet := slices.Clone(quietdownRoutes)
	hidden := slices.Clone(hideHeaders)
	logger.Debug("request logging enabled", "quietdownRoutes", quiet, "hideHeaders", hidden)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if slices.Contains(quiet, r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)

			attrs := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", sw.status,
				"duration", time.Since(start),
				"header", redactHeaders(r.Header.Clone(), hidden),
			}
			if r.ContentLength > 0 {
				attrs = append(attrs, "contentLength", r.ContentLength)
			}
			logger.DebugContext(r.Context(), "request", attrs...)
		})
	}
}

// redactHeaders replaces the values of hidden headers by their total size.
func redactHeaders(headers http.Header, hidden []string) http.Header {
	for _, name := range hidden {
		canonical := http.CanonicalHeaderKey(name)
		values, ok := headers[canonical]
		if !ok {
			continue
		}
		size := 0
		for _, v := range values {
			size += len(v)
		}
		headers[canonical] = []string{fmt.Sprintf("[REDACTED - %d bytes]", size)}
	}
	return headers
}
