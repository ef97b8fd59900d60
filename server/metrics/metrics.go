package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics encapsulates Prometheus metrics for the relay.
type Metrics struct {
	registry           *prometheus.Registry
	RequestsTotal      *prometheus.CounterVec
	RequestDuration    *prometheus.HistogramVec
	ActiveRequests     *prometheus.GaugeVec
	ErrorsTotal        *prometheus.CounterVec
	CompletionsTotal   *prometheus.CounterVec
	CompletionDuration prometheus.Histogram
	ActiveSessions     prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with a custom registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	m := &Metrics{
		registry: registry,
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leadline_http_requests_total",
				Help: "Total number of HTTP requests by endpoint and status",
			},
			[]string{"endpoint", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "leadline_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		),
		ActiveRequests: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "leadline_http_active_requests",
				Help: "Number of currently active HTTP requests",
			},
			[]string{"endpoint"},
		),
		ErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leadline_errors_total",
				Help: "Total number of errors by type",
			},
			[]string{"type"},
		),
		CompletionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leadline_completions_total",
				Help: "Total number of completion calls by outcome (ok, provider_error, malformed, timeout)",
			},
			[]string{"outcome"},
		),
		CompletionDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "leadline_completion_duration_seconds",
				Help:    "Duration of completion calls in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
		ActiveSessions: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "leadline_active_sessions",
				Help: "Number of sessions currently held in memory",
			},
		),
	}

	// Register default Go metrics
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m.RequestsTotal.WithLabelValues("/health", "200").Add(0)
	m.RequestsTotal.WithLabelValues("/metrics", "200").Add(0)
	m.CompletionsTotal.WithLabelValues("ok").Add(0)

	return m
}

// Registry exposes the underlying registry so other components can register
// their own collectors on it.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveCompletion records one completion call.
func (m *Metrics) ObserveCompletion(outcome string, elapsed time.Duration) {
	m.CompletionsTotal.WithLabelValues(outcome).Inc()
	m.CompletionDuration.Observe(elapsed.Seconds())
}

// Handler returns a handler for the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: false,
	})
}
