package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for the analysis service
type Metrics struct {
	AnalysesTotal   *prometheus.CounterVec
	AnalysisSeconds prometheus.Histogram
	RequestsTotal   *prometheus.CounterVec
	registry        *prometheus.Registry
}

// NewMetrics registers the collectors on a fresh registry
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		AnalysesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "phishguard",
			Name:      "analyses_total",
			Help:      "URL analyses by resulting risk level.",
		}, []string{"risk_level"}),
		AnalysisSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "phishguard",
			Name:      "analysis_duration_seconds",
			Help:      "End-to-end analysis latency.",
			Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.2, 0.5, 1, 2, 5},
		}),
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "phishguard",
			Name:      "http_requests_total",
			Help:      "HTTP requests by path and status.",
		}, []string{"path", "status"}),
		registry: registry,
	}
}

// Registry exposes the underlying registry for the /metrics handler
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
