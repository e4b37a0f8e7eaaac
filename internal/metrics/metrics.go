// Package metrics holds the prometheus collectors of the session guard,
// the places aggregator and the refresh-record purge.
package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "odyssey"

type Metrics struct {
	guardDecisions *prometheus.CounterVec
	fetches        *prometheus.CounterVec
	rounds         prometheus.Histogram
	aggregations   *prometheus.CounterVec
	purgedRecords  prometheus.Counter
	purgeRuns      *prometheus.CounterVec
}

// New : registers all collectors on reg. A nil *Metrics is valid and records nothing.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		guardDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "guard_decisions_total",
			Help:      "Session guard decisions by outcome.",
		}, []string{"outcome"}),
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "aggregator_fetches_total",
			Help:      "Upstream page fetches by result.",
		}, []string{"result"}),
		rounds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "aggregator_rounds",
			Help:      "Pagination rounds performed per aggregation.",
			Buckets:   prometheus.LinearBuckets(1, 1, 10),
		}),
		aggregations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "aggregations_total",
			Help:      "Aggregations by result.",
		}, []string{"result"}),
		purgedRecords: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_purged_total",
			Help:      "Refresh records removed by the daily purge.",
		}),
		purgeRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_purge_runs_total",
			Help:      "Purge sweeps by result.",
		}, []string{"result"}),
	}

	reg.MustRegister(m.guardDecisions, m.fetches, m.rounds, m.aggregations, m.purgedRecords, m.purgeRuns)
	return m
}

func (m *Metrics) GuardDecision(outcome string) {
	if m == nil {
		return
	}
	m.guardDecisions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Fetch(result string) {
	if m == nil {
		return
	}
	m.fetches.WithLabelValues(result).Inc()
}

// Aggregation : one finished aggregation and the rounds it took
func (m *Metrics) Aggregation(result string, rounds int) {
	if m == nil {
		return
	}
	m.aggregations.WithLabelValues(result).Inc()
	m.rounds.Observe(float64(rounds))
}

// Purged : one purge sweep, removed is only counted when err is nil
func (m *Metrics) Purged(removed int64, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.purgeRuns.WithLabelValues("error").Inc()
		return
	}
	m.purgeRuns.WithLabelValues("ok").Inc()
	m.purgedRecords.Add(float64(removed))
}
