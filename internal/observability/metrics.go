// Package observability provides metrics and tracing.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SnapshotOps counts whole-collection snapshot operations by key and operation.
	SnapshotOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quantum_snapshot_ops_total",
		Help: "Total number of persisted snapshot operations by key and operation",
	}, []string{"key", "operation"})

	// SnapshotLatency records snapshot load/save latency by operation.
	SnapshotLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "quantum_snapshot_latency_seconds",
		Help:    "Persisted snapshot operation latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quantum_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// ToastsPublished counts user-visible notifications by severity.
	ToastsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quantum_toasts_total",
		Help: "Total number of toast notifications by severity",
	}, []string{"severity"})

	// SeedFetches counts seed document fetches by outcome.
	SeedFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quantum_seed_fetch_total",
		Help: "Total number of seed data fetches by outcome",
	}, []string{"outcome"})

	// WebSocketConnections is the gauge of active toast stream connections.
	WebSocketConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "quantum_websocket_connections_total",
		Help: "Number of active WebSocket connections",
	})
)

// ObserveSnapshot records one snapshot operation with its latency.
func ObserveSnapshot(key, operation string, start time.Time) {
	SnapshotOps.WithLabelValues(key, operation).Inc()
	SnapshotLatency.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
