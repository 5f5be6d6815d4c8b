// Package metrics exposes Prometheus collectors for the quote service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics aggregates the service's counters. All methods are nil-safe so
// callers can run without instrumentation wired.
type Metrics struct {
	registry    *prometheus.Registry
	refreshRuns *prometheus.CounterVec
	quotes      *prometheus.CounterVec
}

// New builds and registers the collectors on a fresh registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())

	refreshRuns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "relocalc_rate_refresh_total",
		Help: "Rate table refresh attempts partitioned by status.",
	}, []string{"status"})
	quotes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "relocalc_quote_requests_total",
		Help: "Quote requests partitioned by outcome.",
	}, []string{"outcome"})
	registry.MustRegister(refreshRuns, quotes)

	return &Metrics{registry: registry, refreshRuns: refreshRuns, quotes: quotes}
}

// RefreshRun records one refresh attempt, keyed by whether it succeeded.
func (m *Metrics) RefreshRun(err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "failure"
	}
	m.refreshRuns.WithLabelValues(status).Inc()
}

// Quote records one quote request with its outcome label.
func (m *Metrics) Quote(outcome string) {
	if m == nil {
		return
	}
	m.quotes.WithLabelValues(outcome).Inc()
}

// Handler serves the registry in Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
