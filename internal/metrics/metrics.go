// Package metrics wires up the broker's Prometheus instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups the counters and histograms recorded while handling
// requests. All are registered against a dedicated registry so a
// process embedding the broker doesn't collide with its own metrics.
type Metrics struct {
	Registry *prometheus.Registry

	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	MessagesProduced prometheus.Counter
	MessagesFetched  prometheus.Counter
	RetentionDeleted prometheus.Counter
	ActiveConnections prometheus.Gauge
}

// New creates a Metrics instance with all collectors registered.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "unclek",
			Name:      "requests_total",
			Help:      "Total requests handled, by API key and error code.",
		}, []string{"api_key", "error_code"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "unclek",
			Name:      "request_duration_seconds",
			Help:      "Request handling latency, by API key.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"api_key"}),
		MessagesProduced: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "unclek",
			Name:      "messages_produced_total",
			Help:      "Total messages appended across all topics.",
		}),
		MessagesFetched: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "unclek",
			Name:      "messages_fetched_total",
			Help:      "Total messages returned to consumers across all topics.",
		}),
		RetentionDeleted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "unclek",
			Name:      "retention_deleted_total",
			Help:      "Total messages deleted by the retention scheduler.",
		}),
		ActiveConnections: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "unclek",
			Name:      "active_connections",
			Help:      "Number of open Kafka-protocol connections.",
		}),
	}
}
