// Package metrics provides Prometheus instrumentation for errdex.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	enabled     bool
	serviceName string

	// HTTP metrics
	httpRequestsTotal *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec

	// Registry domain metrics
	databasePublishTotal  *prometheus.CounterVec
	databaseRetrieveTotal *prometheus.CounterVec
	databaseDeleteTotal   *prometheus.CounterVec
	selectorLookupTotal   *prometheus.CounterVec
)

// Init initializes the metrics system.
func Init(enabledFlag bool, svcName string) {
	enabled = enabledFlag
	serviceName = svcName

	if !enabled {
		return
	}

	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	databasePublishTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "database_publish_total",
			Help: "Total number of error databases published",
		},
		[]string{"status"},
	)

	databaseRetrieveTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "database_retrieve_total",
			Help: "Total number of error database retrievals",
		},
		[]string{"status"},
	)

	databaseDeleteTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "database_delete_total",
			Help: "Total number of error database deletions",
		},
		[]string{"status"},
	)

	selectorLookupTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "selector_lookup_total",
			Help: "Total number of selector lookups",
		},
		[]string{"result"},
	)

	// Note: Go runtime metrics (goroutines, memory, GC) are automatically
	// collected by prometheus/client_golang - no custom collector needed
}

// RecordPublish counts a publish attempt. Status is "success" or "error".
func RecordPublish(status string) {
	if enabled {
		databasePublishTotal.WithLabelValues(status).Inc()
	}
}

// RecordRetrieve counts a database or record retrieval.
func RecordRetrieve(status string) {
	if enabled {
		databaseRetrieveTotal.WithLabelValues(status).Inc()
	}
}

// RecordDelete counts a delete attempt.
func RecordDelete(status string) {
	if enabled {
		databaseDeleteTotal.WithLabelValues(status).Inc()
	}
}

// RecordLookup counts a selector lookup. Result is "hit", "miss" or
// "invalid".
func RecordLookup(result string) {
	if enabled {
		selectorLookupTotal.WithLabelValues(result).Inc()
	}
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	if !enabled {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})
	}
	return promhttp.Handler()
}

// Enabled returns whether metrics are enabled.
func Enabled() bool {
	return enabled
}

// ServiceName returns the configured service name for metric labels.
func ServiceName() string {
	return serviceName
}
