package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Media-Catalog Metrics
var (
	// Request counters
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jan",
			Subsystem: "media_catalog",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// Request duration histogram
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "jan",
			Subsystem: "media_catalog",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 120},
		},
		[]string{"method", "endpoint"},
	)

	// Relay operations (upload/delete) per backend and asset kind
	RelayOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jan",
			Subsystem: "media_catalog",
			Name:      "relay_operations_total",
			Help:      "Total asset relay operations",
		},
		[]string{"backend", "operation", "kind", "status"},
	)

	RelayDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "jan",
			Subsystem: "media_catalog",
			Name:      "relay_duration_seconds",
			Help:      "Asset relay operation duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 15, 60, 300},
		},
		[]string{"backend", "operation"},
	)

	// Upload bytes counter
	UploadBytesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jan",
			Subsystem: "media_catalog",
			Name:      "upload_bytes_total",
			Help:      "Total bytes relayed to the media host",
		},
		[]string{"kind"},
	)

	// Record store operations
	StoreOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jan",
			Subsystem: "media_catalog",
			Name:      "store_operations_total",
			Help:      "Total record store operations",
		},
		[]string{"backend", "operation", "status"},
	)

	// Compensating deletes issued after a failed create
	CompensationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jan",
			Subsystem: "media_catalog",
			Name:      "compensations_total",
			Help:      "Best-effort asset deletions issued after a failed create",
		},
		[]string{"status"},
	)
)

// RecordRequest records an HTTP request
func RecordRequest(method, endpoint, status string, durationSec float64) {
	RequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	RequestDuration.WithLabelValues(method, endpoint).Observe(durationSec)
}

// RecordRelayOperation records an upload or delete against the asset relay
func RecordRelayOperation(backend, operation, kind, status string, durationSec float64) {
	RelayOperationsTotal.WithLabelValues(backend, operation, kind, status).Inc()
	RelayDuration.WithLabelValues(backend, operation).Observe(durationSec)
}

// RecordUploadBytes records bytes sent to the relay
func RecordUploadBytes(kind string, bytes int64) {
	if bytes <= 0 {
		return
	}
	UploadBytesTotal.WithLabelValues(kind).Add(float64(bytes))
}

// RecordStoreOperation records a record store call
func RecordStoreOperation(backend, operation, status string) {
	StoreOperationsTotal.WithLabelValues(backend, operation, status).Inc()
}

// RecordCompensation records one compensating delete
func RecordCompensation(status string) {
	CompensationsTotal.WithLabelValues(status).Inc()
}

// Handler exposes the default registry for scraping.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Status returns the label value for an operation outcome.
func Status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
