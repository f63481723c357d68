// Package metrics exposes Prometheus metrics of the graph router and the
// session store.
package metrics

import (
	"errors"
	"time"

	"pivot-graph-be/pkg/jsongraph"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "pivot_graph"

// Metrics owns a private registry so several instances can coexist in
// tests.
type Metrics struct {
	Registry *prometheus.Registry

	// routeLatency measures handler time. Labels: kind (get, call), route.
	routeLatency *prometheus.HistogramVec
	// routeErrors counts handler errors. Labels: kind, route, code.
	routeErrors *prometheus.CounterVec
	// activeSessions tracks sessions held in working memory.
	activeSessions prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		routeLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "router",
			Name:      "handler_duration_seconds",
			Help:      "Route handler latency in seconds",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
		}, []string{"kind", "route"}),
		routeErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "router",
			Name:      "handler_errors_total",
			Help:      "Route handler errors by code",
		}, []string{"kind", "route", "code"}),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "sessions",
			Name:      "active",
			Help:      "Sessions held in working memory",
		}),
	}
	m.Registry.MustRegister(
		m.routeLatency,
		m.routeErrors,
		m.activeSessions,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveRoute records one handler invocation.
func (m *Metrics) ObserveRoute(kind, route string, elapsed time.Duration, err error) {
	m.routeLatency.WithLabelValues(kind, route).Observe(elapsed.Seconds())
	if err == nil {
		return
	}
	// A missing reference is an expected outcome of following stale refs.
	var missing *jsongraph.MissingReferenceError
	if errors.As(err, &missing) {
		return
	}
	m.routeErrors.WithLabelValues(kind, route, jsongraph.NewErrorValue(err).Code).Inc()
}

func (m *Metrics) SetActiveSessions(n int) {
	m.activeSessions.Set(float64(n))
}
