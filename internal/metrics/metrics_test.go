package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordPlan(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.RecordPlan()
	m.RecordPlan()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.plansTotal))
}

func TestRecordSolveByOutcome(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.RecordSolve("c1", true, 2*time.Millisecond)
	m.RecordSolve("c2", true, 1*time.Millisecond)
	m.RecordSolve("c3", false, 5*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.solvesTotal.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.solvesTotal.WithLabelValues("failed")))

	count, err := testutil.GatherAndCount(reg,
		"slitplan_plans_total", "slitplan_coil_solves_total", "slitplan_solve_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}

func TestNewRegistersCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)

	// Registering the same metrics twice on one registry must panic.
	assert.Panics(t, func() { New(reg) })
}
