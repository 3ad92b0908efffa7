// Package metrics provides Prometheus metrics export for the brain.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hrygo/linguapet/ai/brain"
)

// PrometheusExporter exports brain metrics in Prometheus format.
// It implements brain.Observer.
type PrometheusExporter struct {
	registry *prometheus.Registry

	turns       *prometheus.CounterVec
	turnLatency *prometheus.HistogramVec
	notes       *prometheus.CounterVec
}

var _ brain.Observer = (*PrometheusExporter)(nil)

// Config configures the Prometheus exporter.
type Config struct {
	// Registry to use (if nil, creates a new one)
	Registry *prometheus.Registry

	// Buckets for latency histograms (in seconds)
	LatencyBuckets []float64
}

// DefaultConfig returns default Prometheus configuration.
// Turns are local and fast, so buckets start well below a millisecond.
func DefaultConfig() Config {
	return Config{
		LatencyBuckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	}
}

// NewPrometheusExporter creates a new Prometheus metrics exporter.
func NewPrometheusExporter(cfg Config) *PrometheusExporter {
	if len(cfg.LatencyBuckets) == 0 {
		cfg.LatencyBuckets = DefaultConfig().LatencyBuckets
	}

	registry := cfg.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	e := &PrometheusExporter{registry: registry}

	e.turns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "linguapet",
			Subsystem: "brain",
			Name:      "turns_total",
			Help:      "Total number of conversation turns by route",
		},
		[]string{"route"},
	)

	e.turnLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "linguapet",
			Subsystem: "brain",
			Name:      "turn_latency_seconds",
			Help:      "Conversation turn latency in seconds",
			Buckets:   cfg.LatencyBuckets,
		},
		[]string{"route"},
	)

	e.notes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "linguapet",
			Subsystem: "brain",
			Name:      "notes_total",
			Help:      "Total number of note append attempts",
		},
		[]string{"status"},
	)

	registry.MustRegister(e.turns, e.turnLatency, e.notes)

	return e
}

// ObserveTurn records a completed turn.
func (e *PrometheusExporter) ObserveTurn(route brain.Route, latency time.Duration) {
	e.turns.WithLabelValues(string(route)).Inc()
	e.turnLatency.WithLabelValues(string(route)).Observe(latency.Seconds())
}

// ObserveNote records a note append attempt.
func (e *PrometheusExporter) ObserveNote(accepted bool) {
	status := "accepted"
	if !accepted {
		status = "rejected"
	}
	e.notes.WithLabelValues(status).Inc()
}

// Handler returns an HTTP handler for the metrics endpoint.
func (e *PrometheusExporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{})
}
