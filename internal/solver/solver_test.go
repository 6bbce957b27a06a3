package solver

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coilworks/slitplan/internal/model"
)

func order(id string, width, length float64) model.Order {
	return model.Order{ID: id, Label: id, Width: width, Length: length}
}

func coil(width float64) model.Coil {
	return model.Coil{ID: "c1", Label: "Coil", Width: width, Length: 1000}
}

func TestSolve_SelectsMaxLengthSubset(t *testing.T) {
	sv := New()
	orders := []model.Order{
		order("a", 30, 5),
		order("b", 40, 3),
		order("c", 50, 6),
		order("d", 20, 2),
	}

	pattern, err := sv.Solve(coil(100), orders)
	require.NoError(t, err)

	// Best subset within width 100 is {30, 50, 20} with total length 13.
	assert.InDelta(t, 13.0, pattern.TotalLength(), 1e-9)
	assert.InDelta(t, 100.0, pattern.UsedWidth(), 1e-9)
	assert.Len(t, pattern.Cuts, 3)

	got := map[string]bool{}
	for _, c := range pattern.Cuts {
		got[c.OrderID] = true
	}
	assert.True(t, got["a"])
	assert.True(t, got["c"])
	assert.True(t, got["d"])
}

func TestSolve_EmptyCatalog(t *testing.T) {
	sv := New()
	pattern, err := sv.Solve(coil(100), nil)
	require.NoError(t, err)
	assert.Empty(t, pattern.Cuts)
	assert.Equal(t, "c1", pattern.Coil.ID)
}

func TestSolve_ZeroCapacity(t *testing.T) {
	sv := New()
	pattern, err := sv.Solve(coil(0), []model.Order{order("a", 30, 5)})
	require.NoError(t, err)
	assert.Empty(t, pattern.Cuts)
}

func TestSolve_OversizedOrdersExcluded(t *testing.T) {
	sv := New()
	orders := []model.Order{
		order("wide", 200, 100),
		order("fits", 80, 4),
	}
	pattern, err := sv.Solve(coil(100), orders)
	require.NoError(t, err)
	require.Len(t, pattern.Cuts, 1)
	assert.Equal(t, "fits", pattern.Cuts[0].OrderID)
}

func TestSolve_NothingFitsIsEmptyNotError(t *testing.T) {
	sv := New()
	pattern, err := sv.Solve(coil(10), []model.Order{order("a", 50, 5)})
	require.NoError(t, err)
	assert.Empty(t, pattern.Cuts)
}

func TestSolve_FractionalWidths(t *testing.T) {
	sv := New()
	orders := []model.Order{
		order("a", 33.3, 5),
		order("b", 33.3, 5),
		order("c", 33.3, 5),
	}
	pattern, err := sv.Solve(coil(99.9), orders)
	require.NoError(t, err)
	assert.Len(t, pattern.Cuts, 3)
	assert.LessOrEqual(t, pattern.UsedWidth(), 99.9+1e-9)
}

func TestSolve_TieBreakFewestCuts(t *testing.T) {
	sv := New()
	orders := []model.Order{
		order("single", 50, 10),
		order("half1", 25, 5),
		order("half2", 25, 5),
	}
	pattern, err := sv.Solve(coil(50), orders)
	require.NoError(t, err)
	require.Len(t, pattern.Cuts, 1)
	assert.Equal(t, "single", pattern.Cuts[0].OrderID)
}

func TestSolve_TieBreakLexSmallestIndexSet(t *testing.T) {
	sv := New()
	orders := []model.Order{
		order("first", 10, 5),
		order("second", 10, 5),
	}
	pattern, err := sv.Solve(coil(10), orders)
	require.NoError(t, err)
	require.Len(t, pattern.Cuts, 1)
	assert.Equal(t, "first", pattern.Cuts[0].OrderID)
}

func TestSolve_Deterministic(t *testing.T) {
	sv := New()
	orders := []model.Order{
		order("a", 30, 7),
		order("b", 30, 7),
		order("c", 40, 9),
		order("d", 40, 9),
	}
	first, err := sv.Solve(coil(70), orders)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := sv.Solve(coil(70), orders)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestSolve_CellBudgetExceeded(t *testing.T) {
	sv := &Solver{MaxCells: 100}
	orders := []model.Order{
		order("a", 30, 5),
		order("b", 40, 3),
	}
	_, err := sv.Solve(coil(1000), orders)
	var ie *InfeasibleError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, "c1", ie.CoilID)
}

// bruteForceBest enumerates all subsets and returns the maximum total
// length achievable within the width capacity.
func bruteForceBest(capacity float64, orders []model.Order) float64 {
	n := len(orders)
	best := 0.0
	for mask := 0; mask < 1<<n; mask++ {
		var width, length float64
		for i := 0; i < n; i++ {
			if mask&(1<<i) != 0 {
				width += orders[i].Width
				length += orders[i].Length
			}
		}
		if width <= capacity+1e-9 && length > best {
			best = length
		}
	}
	return best
}

func TestSolve_MatchesBruteForce(t *testing.T) {
	sv := New()

	// Deterministic pseudo-random instances with widths on the 0.1 mm
	// grid so discretization is exact.
	seed := uint64(42)
	next := func(n int) int {
		seed = seed*6364136223846793005 + 1442695040888963407
		return int(seed>>33) % n
	}

	for trial := 0; trial < 25; trial++ {
		n := 3 + next(8)
		orders := make([]model.Order, n)
		for i := range orders {
			orders[i] = order(
				fmt.Sprintf("o%d", i),
				float64(1+next(400))/10.0,
				float64(next(500)),
			)
		}
		capacity := float64(10 + next(800))

		pattern, err := sv.Solve(coil(capacity), orders)
		require.NoError(t, err)

		want := bruteForceBest(capacity, orders)
		assert.InDelta(t, want, pattern.TotalLength(), 1e-6,
			"trial %d: capacity %.1f orders %v", trial, capacity, orders)
		assert.LessOrEqual(t, pattern.UsedWidth(), capacity+1e-9)
	}
}

func TestUnitConversion(t *testing.T) {
	// Order widths round up, capacities round down. On-grid values
	// convert exactly in both directions.
	assert.Equal(t, 1000, widthUnits(100))
	assert.Equal(t, 333, widthUnits(33.3))
	assert.Equal(t, 334, widthUnits(33.31))
	assert.Equal(t, 1, widthUnits(0.06))
	assert.Equal(t, 0, widthUnits(0))

	assert.Equal(t, 1000, capacityUnits(100))
	assert.Equal(t, 333, capacityUnits(33.3))
	assert.Equal(t, 333, capacityUnits(33.39))
	assert.Equal(t, 0, capacityUnits(0.09))
}

func TestSolve_OffGridWidthsNeverOvershootCapacity(t *testing.T) {
	sv := New()
	// Three of these sum to 100.02 mm: any two fit, three do not. The
	// solver must return the optimal two-cut pattern, not an error.
	orders := []model.Order{
		order("a", 33.34, 5),
		order("b", 33.34, 5),
		order("c", 33.34, 5),
	}
	pattern, err := sv.Solve(coil(100), orders)
	require.NoError(t, err)
	require.Len(t, pattern.Cuts, 2)
	assert.InDelta(t, 10.0, pattern.TotalLength(), 1e-9)
	assert.LessOrEqual(t, pattern.UsedWidth(), 100.0+1e-9)
	assert.Equal(t, "a", pattern.Cuts[0].OrderID)
	assert.Equal(t, "b", pattern.Cuts[1].OrderID)
}

func TestSolve_CapacityInvariantHolds(t *testing.T) {
	sv := New()
	orders := []model.Order{
		order("a", 33.34, 5),
		order("b", 33.33, 5),
		order("c", 33.33, 5),
	}
	pattern, err := sv.Solve(coil(100), orders)
	require.NoError(t, err)
	assert.True(t, pattern.UsedWidth() <= 100+1e-9,
		"used %.4f exceeds capacity", pattern.UsedWidth())
	assert.False(t, math.IsNaN(pattern.TotalLength()))
}
