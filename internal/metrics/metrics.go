package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for the HTTP server
type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	RequestsInFlight prometheus.Gauge

	SessionsStarted   *prometheus.CounterVec
	SessionsCompleted *prometheus.CounterVec
	AnswersSubmitted  *prometheus.CounterVec
}

// New creates a metrics set on a private registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests by method, path pattern and status code.",
		}, []string{"method", "path", "status"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by method and path pattern.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
		RequestsInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being served.",
		}),
		SessionsStarted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "practice_sessions_started_total",
			Help: "Practice sessions started, by skill and level.",
		}, []string{"skill", "level"}),
		SessionsCompleted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "practice_sessions_completed_total",
			Help: "Practice sessions completed, by skill and level.",
		}, []string{"skill", "level"}),
		AnswersSubmitted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "practice_answers_submitted_total",
			Help: "Answers submitted, by outcome.",
		}, []string{"outcome"}),
	}
}

// Handler serves the /metrics endpoint for this registry
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
