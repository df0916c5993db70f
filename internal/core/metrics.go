package core

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics aggregates per-run counters on a private registry so parallel
// runs never collide.
type Metrics struct {
	registry *prometheus.Registry

	Eligible        prometheus.Counter
	Inferred        prometheus.Counter
	NotEligible     prometheus.Counter
	Abandoned       prometheus.Counter
	AlreadyInferred prometheus.Counter
	Duration        prometheus.Histogram
}

// NewMetrics builds and registers the run metrics.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		Eligible: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "orthoinfer_reactions_eligible_total",
			Help: "Reactions admitted by the protein-evidence test.",
		}),
		Inferred: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "orthoinfer_reactions_inferred_total",
			Help: "Reactions projected onto the target species.",
		}),
		NotEligible: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "orthoinfer_reactions_not_eligible_total",
			Help: "Reactions excluded by skip checks or lack of protein evidence.",
		}),
		Abandoned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "orthoinfer_reactions_abandoned_total",
			Help: "Eligible reactions dropped because a required participant failed to infer.",
		}),
		AlreadyInferred: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "orthoinfer_reactions_already_inferred_total",
			Help: "Reactions whose projection from a previous run was adopted.",
		}),
		Duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "orthoinfer_reaction_duration_seconds",
			Help:    "Wall time spent projecting one reaction.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
		}),
	}
	reg.MustRegister(m.Eligible, m.Inferred, m.NotEligible, m.Abandoned, m.AlreadyInferred, m.Duration)
	return m
}

// Handler serves the registry in Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) observeOutcome(o Outcome, d time.Duration) {
	m.Duration.Observe(d.Seconds())
	switch o.Kind {
	case OutcomeInferred:
		m.Eligible.Inc()
		m.Inferred.Inc()
	case OutcomeAbandoned:
		m.Eligible.Inc()
		m.Abandoned.Inc()
	case OutcomeNotEligible:
		m.NotEligible.Inc()
	case OutcomeAlreadyInferred:
		m.AlreadyInferred.Inc()
	}
}
