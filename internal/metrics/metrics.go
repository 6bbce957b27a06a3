// Package metrics exposes Prometheus instrumentation for plan runs.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PlanMetrics records optimization run counters and solve latency.
// It implements planner.SolveRecorder.
type PlanMetrics struct {
	plansTotal    prometheus.Counter
	solvesTotal   *prometheus.CounterVec
	solveDuration prometheus.Histogram
}

// New creates plan metrics registered on reg.
func New(reg prometheus.Registerer) *PlanMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	plans := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "slitplan_plans_total",
		Help: "Number of optimization runs assembled",
	})
	solves := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "slitplan_coil_solves_total",
		Help: "Number of per-coil solves by outcome",
	}, []string{"outcome"})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "slitplan_solve_duration_seconds",
		Help:    "Per-coil solve duration",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
	})
	reg.MustRegister(plans, solves, duration)
	return &PlanMetrics{
		plansTotal:    plans,
		solvesTotal:   solves,
		solveDuration: duration,
	}
}

// RecordPlan counts one assembled plan.
func (m *PlanMetrics) RecordPlan() {
	m.plansTotal.Inc()
}

// RecordSolve counts one per-coil solve and its duration.
func (m *PlanMetrics) RecordSolve(coilID string, ok bool, duration time.Duration) {
	outcome := "ok"
	if !ok {
		outcome = "failed"
	}
	m.solvesTotal.WithLabelValues(outcome).Inc()
	m.solveDuration.Observe(duration.Seconds())
}
