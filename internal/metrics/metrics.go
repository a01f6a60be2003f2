// Package metrics exposes service counters in the Prometheus format.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service collectors on a private registry.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	reg *prometheus.Registry

	charts   *prometheus.CounterVec
	readings *prometheus.CounterVec
	credits  *prometheus.CounterVec
	errors   *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// New registers every collector on a fresh registry.
func New() *Metrics {
	m := &Metrics{reg: prometheus.NewRegistry()}
	m.charts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "daivaya",
		Name:      "charts_computed_total",
		Help:      "Number of birth charts computed by result",
	}, []string{"result"})
	m.readings = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "daivaya",
		Name:      "readings_generated_total",
		Help:      "Number of readings generated by kind",
	}, []string{"kind"})
	m.credits = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "daivaya",
		Name:      "credits_charged_total",
		Help:      "Credits charged by kind",
	}, []string{"kind"})
	m.errors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "daivaya",
		Name:      "errors_total",
		Help:      "Failed operations by operation and error kind",
	}, []string{"op", "kind"})
	m.duration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "daivaya",
		Name:      "operation_duration_seconds",
		Help:      "Time spent in service operations",
		Buckets:   prometheus.DefBuckets,
	}, []string{"op"})

	m.reg.MustRegister(
		m.charts, m.readings, m.credits, m.errors, m.duration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ChartComputed counts a chart computation.
func (m *Metrics) ChartComputed(ok bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "error"
	}
	m.charts.WithLabelValues(result).Inc()
}

// ReadingGenerated counts a paid reading of the given kind.
func (m *Metrics) ReadingGenerated(kind string) {
	if m == nil {
		return
	}
	m.readings.WithLabelValues(kind).Inc()
}

// CreditsCharged adds amount to the charged credits of kind.
func (m *Metrics) CreditsCharged(kind string, amount int64) {
	if m == nil || amount <= 0 {
		return
	}
	m.credits.WithLabelValues(kind).Add(float64(amount))
}

// Failed counts a failed operation.
func (m *Metrics) Failed(op, kind string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(op, kind).Inc()
}

// Observe records how long op took in seconds.
func (m *Metrics) Observe(op string, seconds float64) {
	if m == nil {
		return
	}
	m.duration.WithLabelValues(op).Observe(seconds)
}

// Handler serves the registry. A nil receiver serves 404.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}
