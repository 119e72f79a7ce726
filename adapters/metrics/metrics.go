// Package metrics provides Prometheus metrics collection for the store.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector holds all Prometheus metrics for the store.
type Collector struct {
	// Store operation metrics
	OpsTotal   *prometheus.CounterVec
	OpDuration *prometheus.HistogramVec

	// Schema cache metrics
	SchemaFetches     *prometheus.CounterVec
	SchemaCacheHits   prometheus.Counter
	SchemaCacheMisses prometheus.Counter

	// Render metrics
	DanglingLinkages prometheus.Counter
	ReverseQueries   prometheus.Counter

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// New creates a new metrics collector with all metrics registered.
func New() *Collector {
	return &Collector{
		OpsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "relstore",
				Name:      "store_ops_total",
				Help:      "Total number of store operations by outcome",
			},
			[]string{"op", "outcome"},
		),
		OpDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "relstore",
				Name:      "store_op_duration_seconds",
				Help:      "Store operation duration in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
			[]string{"op"},
		),

		SchemaFetches: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "relstore",
				Name:      "schema_fetches_total",
				Help:      "Schema source fetches by outcome",
			},
			[]string{"outcome"},
		),
		SchemaCacheHits: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: "relstore",
				Name:      "schema_cache_hits_total",
				Help:      "Schema cache lookups served from memory",
			},
		),
		SchemaCacheMisses: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: "relstore",
				Name:      "schema_cache_misses_total",
				Help:      "Schema cache lookups requiring a fetch",
			},
		),

		DanglingLinkages: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: "relstore",
				Name:      "dangling_linkages_total",
				Help:      "Linkages found dangling while rendering",
			},
		),
		ReverseQueries: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: "relstore",
				Name:      "reverse_queries_total",
				Help:      "Persistence scans executed for reverse relationships",
			},
		),

		RequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "relstore",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests processed",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "relstore",
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"method", "route"},
		),
	}
}
