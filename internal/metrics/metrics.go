// Package metrics exposes the sync pipeline counters to Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "mutualfund"

// Run results
const (
	RunSucceeded = "succeeded"
	RunFailed    = "failed"
	RunSkipped   = "skipped"
	RunCancelled = "cancelled"
)

// Revaluation results
const (
	RevalueOK     = "ok"
	RevalueFailed = "failed"
)

// Sync holds the collectors of the NAV sync job
type Sync struct {
	records     *prometheus.CounterVec
	runs        *prometheus.CounterVec
	revaluation *prometheus.CounterVec
	duration    prometheus.Histogram
}

// NewSync creates the collectors and registers them with reg
func NewSync(reg prometheus.Registerer) *Sync {
	m := &Sync{
		records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "nav_sync",
			Name:      "records_total",
			Help:      "Feed records processed, by outcome.",
		}, []string{"outcome"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "nav_sync",
			Name:      "runs_total",
			Help:      "Scheduled sync runs, by result.",
		}, []string{"result"}),
		revaluation: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "nav_sync",
			Name:      "portfolios_revalued_total",
			Help:      "Holdings revalued on the push path, by result.",
		}, []string{"result"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "nav_sync",
			Name:      "run_duration_seconds",
			Help:      "Wall time of completed sync runs.",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10),
		}),
	}

	if reg != nil {
		reg.MustRegister(m.records, m.runs, m.revaluation, m.duration)
	}
	return m
}

// ObserveRecords adds n records with the given outcome
func (m *Sync) ObserveRecords(outcome string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.records.WithLabelValues(outcome).Add(float64(n))
}

// ObserveRun counts one run and, for completed runs, its duration
func (m *Sync) ObserveRun(result string, d time.Duration) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(result).Inc()
	if result == RunSucceeded {
		m.duration.Observe(d.Seconds())
	}
}

// ObserveRevaluation adds the push path outcome of one run
func (m *Sync) ObserveRevaluation(revalued, failed int) {
	if m == nil {
		return
	}
	if revalued > 0 {
		m.revaluation.WithLabelValues(RevalueOK).Add(float64(revalued))
	}
	if failed > 0 {
		m.revaluation.WithLabelValues(RevalueFailed).Add(float64(failed))
	}
}
