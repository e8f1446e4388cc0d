package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for profile resolution and visibility.
// All methods are safe on a nil receiver.
type Metrics struct {
	// Visibility decisions by path ("single", "batch") and reason
	Decisions *prometheus.CounterVec

	// Evaluation latency by path
	EvaluateLatency *prometheus.HistogramVec

	// Store read latencies by read name
	StoreReadLatency *prometheus.HistogramVec

	// Resolve outcomes: "ok", "not_found", "integrity", "error"
	ResolveOutcome *prometheus.CounterVec

	// Effective profile cache lookups by result: "hit", "miss", "error", "bypass"
	CacheLookups *prometheus.CounterVec
}

// New registers the profile metrics on reg. A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		Decisions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "personas_visibility_decisions_total",
			Help: "Visibility decisions by evaluation path and reason",
		}, []string{"path", "reason"}),

		EvaluateLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "personas_visibility_evaluate_duration_seconds",
			Help:    "Duration of visibility evaluation including store reads",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"path"}),

		StoreReadLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "personas_store_read_duration_seconds",
			Help:    "Duration of record store reads by read",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		}, []string{"read"}),

		ResolveOutcome: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "personas_resolve_outcomes_total",
			Help: "Effective profile resolutions by outcome",
		}, []string{"outcome"}),

		CacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "personas_effective_profile_cache_lookups_total",
			Help: "Effective profile cache lookups by result",
		}, []string{"result"}),
	}
}

// IncrementDecision records a visibility decision.
func (m *Metrics) IncrementDecision(path, reason string) {
	if m != nil {
		m.Decisions.WithLabelValues(path, reason).Inc()
	}
}

// ObserveEvaluateLatency records the duration of an evaluation.
func (m *Metrics) ObserveEvaluateLatency(path string, d time.Duration) {
	if m != nil {
		m.EvaluateLatency.WithLabelValues(path).Observe(d.Seconds())
	}
}

// ObserveStoreRead records the duration of a store read.
func (m *Metrics) ObserveStoreRead(read string, d time.Duration) {
	if m != nil {
		m.StoreReadLatency.WithLabelValues(read).Observe(d.Seconds())
	}
}

// IncrementResolve records a resolution outcome.
func (m *Metrics) IncrementResolve(outcome string) {
	if m != nil {
		m.ResolveOutcome.WithLabelValues(outcome).Inc()
	}
}

// IncrementCacheLookup records a cache lookup result.
func (m *Metrics) IncrementCacheLookup(result string) {
	if m != nil {
		m.CacheLookups.WithLabelValues(result).Inc()
	}
}
