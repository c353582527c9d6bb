// Package metrics exposes Prometheus collectors for HTTP traffic and for
// document and challenge activity.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/phrazzld/receipt-api/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "receipt_api"

// Metrics owns a private registry so tests and multiple instances do not
// collide on the global default registry.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
	documents     *prometheus.CounterVec
	challenges    *prometheus.CounterVec
	resolutions   *prometheus.CounterVec
	rateLimitHits prometheus.Counter
}

// New registers every collector on a fresh registry, including the Go
// runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route pattern and status code.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by method and route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		documents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_created_total",
			Help:      "Receipts and invoices issued.",
		}, []string{"kind"}),
		challenges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "challenges_created_total",
			Help:      "Challenges raised, by disputed document kind.",
		}, []string{"kind"}),
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "challenges_resolved_total",
			Help:      "Challenge resolutions, by resulting status.",
		}, []string{"status"}),
		rateLimitHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_requests_total",
			Help:      "Requests rejected by the authentication rate limiter.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpDuration,
		m.documents,
		m.challenges,
		m.resolutions,
		m.rateLimitHits,
	)
	return m
}

// Registry returns the registry backing m.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveHTTP records one completed request.
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// RateLimited counts a rejected request.
func (m *Metrics) RateLimited() {
	m.rateLimitHits.Inc()
}

// DocumentCreated counts an issued receipt or invoice.
func (m *Metrics) DocumentCreated(kind domain.DocumentKind) {
	m.documents.WithLabelValues(string(kind)).Inc()
}

// ChallengeCreated counts a new challenge against a document of kind.
func (m *Metrics) ChallengeCreated(kind domain.DocumentKind) {
	m.challenges.WithLabelValues(string(kind)).Inc()
}

// ChallengeResolved counts a resolution to status.
func (m *Metrics) ChallengeResolved(status domain.ChallengeStatus) {
	m.resolutions.WithLabelValues(string(status)).Inc()
}
