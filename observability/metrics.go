// Package observability exposes prometheus metrics for the interception
// engine.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the engine's prometheus collectors. Construct with
// NewMetrics; a nil *Metrics is safe to use and records nothing.
type Metrics struct {
	intercepted     prometheus.Counter
	unmatched       prometheus.Counter
	dispositions    *prometheus.CounterVec
	resolverSeconds prometheus.Histogram
}

// NewMetrics builds the collectors and registers them on reg. Pass
// prometheus.DefaultRegisterer for the usual global registry, or a fresh
// one in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		intercepted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mockwire_intercepted_total",
			Help: "Intercepted requests submitted for resolution.",
		}),
		unmatched: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mockwire_unmatched_total",
			Help: "Intercepted requests no handler matched.",
		}),
		dispositions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mockwire_dispositions_total",
			Help: "Resolved dispositions by result.",
		}, []string{"result"}),
		resolverSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "mockwire_resolver_duration_seconds",
			Help:    "Resolver invocation duration.",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}),
	}
	reg.MustRegister(m.intercepted, m.unmatched, m.dispositions, m.resolverSeconds)
	return m
}

// ObserveIntercepted counts one intercepted request.
func (m *Metrics) ObserveIntercepted() {
	if m == nil {
		return
	}
	m.intercepted.Inc()
}

// ObserveUnmatched counts one request with no matching handler.
func (m *Metrics) ObserveUnmatched() {
	if m == nil {
		return
	}
	m.unmatched.Inc()
}

// ObserveDisposition counts one terminal disposition by result label
// ("mocked", "passed_through", "failed").
func (m *Metrics) ObserveDisposition(result string) {
	if m == nil {
		return
	}
	m.dispositions.WithLabelValues(result).Inc()
}

// ObserveResolverDuration records one resolver invocation duration in
// seconds.
func (m *Metrics) ObserveResolverDuration(seconds float64) {
	if m == nil {
		return
	}
	m.resolverSeconds.Observe(seconds)
}
