// Package metrics defines the prometheus collectors exported by the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Status label values
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "setlist_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "setlist_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

// Media source metrics
var (
	SourceLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "setlist_source_lookups_total",
			Help: "Total number of batched lookups sent to media sources",
		},
		[]string{"source", "status"},
	)

	SourceLookupIDs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "setlist_source_lookup_ids_total",
			Help: "Total number of source ids requested from media sources",
		},
		[]string{"source"},
	)

	SourceLookupDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "setlist_source_lookup_duration_seconds",
			Help:    "Media source lookup duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"source"},
	)

	SourceBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "setlist_source_breaker_state",
			Help: "Circuit breaker state per source (0 closed, 1 half-open, 2 open)",
		},
		[]string{"source"},
	)
)

// Playlist metrics
var (
	PlaylistOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "setlist_playlist_operations_total",
			Help: "Total number of playlist operations",
		},
		[]string{"operation", "status"},
	)

	PlaylistMigrationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "setlist_playlist_migrations_total",
			Help: "Total number of legacy playlists upgraded on load",
		},
	)

	ReconciledItemsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "setlist_reconciled_items_total",
			Help: "Total number of media records matched during reconciliation, by origin",
		},
		[]string{"origin"}, // "store", "source"
	)
)

// ObserveOperation records the outcome of a playlist operation
func ObserveOperation(operation string, err error) {
	status := StatusSuccess
	if err != nil {
		status = StatusError
	}
	PlaylistOperationsTotal.WithLabelValues(operation, status).Inc()
}
