package server

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "godt"

// Metrics are the service's Prometheus collectors, registered on their own
// registry so several servers can coexist in one process.
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	droppedTerms    *prometheus.CounterVec
}

// NewMetrics creates the collectors on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		registry: reg,
		requestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of table requests",
			},
			[]string{"table", "status"},
		),
		requestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Duration of table requests in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"table"},
		),
		droppedTerms: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "engine",
				Name:      "dropped_terms_total",
				Help:      "Sort and search terms dropped because their column did not resolve",
			},
			[]string{"table", "kind"},
		),
	}
}

// Registry exposes the registry for the /metrics endpoint.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// DroppedTerm matches engine.Config.OnDropped.
func (m *Metrics) DroppedTerm(table, kind string, _ error) {
	m.droppedTerms.WithLabelValues(table, kind).Inc()
}

func (m *Metrics) observe(table string, status int, d time.Duration) {
	m.requestsTotal.WithLabelValues(table, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(table).Observe(d.Seconds())
}
