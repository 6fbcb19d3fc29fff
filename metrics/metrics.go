// Package metrics holds the Prometheus collectors of the analyzer.
package metrics

import (
	"net/http"
	"time"

	"github.com/pivolan/marathon_analyzer/domain/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "marathon"

type Manager struct {
	registry *prometheus.Registry

	recordsLoaded   prometheus.Counter
	recordsExcluded *prometheus.CounterVec
	viewDuration    *prometheus.HistogramVec
	httpRequests    *prometheus.CounterVec
}

// New creates a Manager with its own registry, so tests can build as many as they need.
func New() *Manager {
	m := &Manager{
		registry: prometheus.NewRegistry(),
		recordsLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_loaded_total",
			Help:      "Raw result records read from the source.",
		}),
		recordsExcluded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_excluded_total",
			Help:      "Records excluded from one or more views, by reason.",
		}, []string{"reason"}),
		viewDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "view_duration_seconds",
			Help:      "Time spent computing an aggregate view.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}, []string{"view"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Dashboard HTTP requests by route and status code.",
		}, []string{"route", "code"}),
	}
	m.registry.MustRegister(m.recordsLoaded, m.recordsExcluded, m.viewDuration, m.httpRequests)
	return m
}

func (m *Manager) RecordLoaded(n int) {
	m.recordsLoaded.Add(float64(n))
}

func (m *Manager) RecordExcluded(reason string, n int) {
	m.recordsExcluded.WithLabelValues(reason).Add(float64(n))
}

// RecordExclusions adds a cleaning report's per-reason counts.
func (m *Manager) RecordExclusions(counts []models.ExclusionCount) {
	for _, c := range counts {
		m.RecordExcluded(string(c.Reason), c.Count)
	}
}

// ObserveView returns a func that records the elapsed time for view when called.
func (m *Manager) ObserveView(view string) func() {
	start := time.Now()
	return func() {
		m.viewDuration.WithLabelValues(view).Observe(time.Since(start).Seconds())
	}
}

func (m *Manager) RecordHTTP(route, code string) {
	m.httpRequests.WithLabelValues(route, code).Inc()
}

func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
