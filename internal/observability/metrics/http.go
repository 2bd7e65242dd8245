// Package metrics provides Prometheus instrumentation for errdex.
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Middleware returns HTTP middleware for request metrics.
func Middleware(next http.Handler) http.Handler {
	if !enabled {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}

		defer func() {
			duration := time.Since(start).Seconds()

			// Normalize path to avoid high cardinality from database
			// names, versions and selectors
			path := normalizePath(r.URL.Path)

			httpRequestsTotal.WithLabelValues(
				r.Method,
				path,
				strconv.Itoa(rw.status),
			).Inc()

			httpDuration.WithLabelValues(
				r.Method,
				path,
			).Observe(duration)
		}()

		next.ServeHTTP(rw, r)
	})
}

// responseWriter wraps http.ResponseWriter to capture status code.
type responseWriter struct {
	http.ResponseWriter
	status int
}

// WriteHeader captures status code.
func (rw *responseWriter) WriteHeader(status int) {
	rw.status = status
	rw.ResponseWriter.WriteHeader(status)
}

// routeActions are the fixed trailing segments of the databases API. Any
// other segment in those positions is a caller-supplied value.
var routeActions = map[string]bool{
	"records":   true,
	"selectors": true,
	"search":    true,
	"sources":   true,
}

// normalizePath collapses dynamic segments of the databases API into
// placeholders. For example:
//
//	/api/v1/databases/proto/1.0.0/records            -> /api/v1/databases/{name}/{version}/records
//	/api/v1/databases/proto/latest/selectors/0x8e4a23d6 -> /api/v1/databases/{name}/{version}/selectors/{selector}
func normalizePath(path string) string {
	if path == "/health" || path == "/healthz" || path == "/readyz" || path == "/metrics" {
		return path
	}

	const prefix = "/api/v1/databases"
	if !strings.HasPrefix(path, prefix) {
		return path
	}

	rest := strings.Trim(strings.TrimPrefix(path, prefix), "/")
	if rest == "" {
		return prefix
	}

	parts := strings.Split(rest, "/")
	normalized := []string{prefix, "{name}"}
	if len(parts) >= 2 {
		normalized = append(normalized, "{version}")
	}
	for i := 2; i < len(parts); i++ {
		if routeActions[parts[i]] {
			normalized = append(normalized, parts[i])
		} else {
			normalized = append(normalized, "{selector}")
		}
	}
	return strings.Join(normalized, "/")
}
