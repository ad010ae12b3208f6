// Package metrics exposes Prometheus collectors for upstream fetches, searches and
// fields that had to fall back to the sentinel value.
//
// All methods are safe to call on a nil *Metrics, so components can run without metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Fetch targets
const (
	TargetSearch    = "search"
	TargetDetail    = "detail"
	TargetReference = "reference"
)

// Outcomes
const (
	OutcomeOK        = "ok"
	OutcomeError     = "error"
	OutcomeNoResults = "no_results"
)

// Metrics holds the collectors registered for one process
type Metrics struct {
	upstreamRequests *prometheus.CounterVec
	upstreamDuration *prometheus.HistogramVec
	searches         *prometheus.CounterVec
	degradedFields   *prometheus.CounterVec
}

// New creates the collectors and registers them with reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		upstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cfp_upstream_requests_total",
			Help: "Upstream HTTP requests by target and outcome",
		}, []string{"target", "outcome"}),
		upstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cfp_upstream_request_duration_seconds",
			Help:    "Upstream HTTP request latency by target",
			Buckets: prometheus.DefBuckets,
		}, []string{"target"}),
		searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cfp_searches_total",
			Help: "Searches by outcome",
		}, []string{"outcome"}),
		degradedFields: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cfp_degraded_fields_total",
			Help: "Fields replaced by the sentinel value, by field",
		}, []string{"field"}),
	}

	reg.MustRegister(m.upstreamRequests, m.upstreamDuration, m.searches, m.degradedFields)
	return m
}

// ObserveFetch records one upstream request
func (m *Metrics) ObserveFetch(target string, err error, d time.Duration) {
	if m == nil {
		return
	}
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
	}
	m.upstreamRequests.WithLabelValues(target, outcome).Inc()
	m.upstreamDuration.WithLabelValues(target).Observe(d.Seconds())
}

// IncSearch records a finished search
func (m *Metrics) IncSearch(outcome string) {
	if m == nil {
		return
	}
	m.searches.WithLabelValues(outcome).Inc()
}

// AddDegraded records n sentinel substitutions for field
func (m *Metrics) AddDegraded(field string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.degradedFields.WithLabelValues(field).Add(float64(n))
}
