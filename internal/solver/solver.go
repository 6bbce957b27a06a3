// Package solver selects order subsets for coils. For one coil it
// solves an exact 0/1 knapsack: choose orders whose widths sum to at
// most the coil width, maximizing total satisfied length. The
// companion Sequence step reorders a pattern's cuts ascending to
// reduce shear repositioning.
package solver

import (
	"fmt"
	"math"

	"github.com/coilworks/slitplan/internal/model"
)

// unitsPerMM is the capacity granularity: the dynamic program runs on
// 0.1 mm integer units. Order widths round up and capacities round
// down, so any subset that fits in units also fits in mm.
const unitsPerMM = 10

// DefaultMaxCells bounds the DP table size (items x capacity units).
// Instances above the bound fail with an InfeasibleError instead of
// exhausting memory.
const DefaultMaxCells = 16 << 20

// InfeasibleError signals that the solver could not certify any
// result for a coil. It is reserved for solver-internal failure;
// "nothing fits" is an empty pattern, not an error.
type InfeasibleError struct {
	CoilID string
	Reason string
}

func (e *InfeasibleError) Error() string {
	return fmt.Sprintf("optimization infeasible for coil %s: %s", e.CoilID, e.Reason)
}

// Solver runs the per-coil selection. The zero value is not ready;
// use New.
type Solver struct {
	// MaxCells caps the DP table size. Zero means DefaultMaxCells.
	MaxCells int
}

func New() *Solver {
	return &Solver{MaxCells: DefaultMaxCells}
}

// candidate is an order admitted to the DP, with its width in
// capacity units.
type candidate struct {
	order model.Order
	units int
}

// Solve selects the subset of orders that fits the coil's width and
// maximizes total satisfied length. Orders wider than the coil are
// excluded without error; an empty catalog or a non-positive capacity
// yields an empty pattern.
//
// Ties are broken deterministically: maximum total length first, then
// fewest cuts, then the lexicographically smallest set of order
// indices, so identical inputs always produce identical patterns.
func (s *Solver) Solve(coil model.Coil, orders []model.Order) (model.Pattern, error) {
	pattern := model.Pattern{Coil: coil}

	capUnits := capacityUnits(coil.Width)
	if capUnits <= 0 || len(orders) == 0 {
		return pattern, nil
	}

	var cands []candidate
	for _, o := range orders {
		u := widthUnits(o.Width)
		if u <= 0 {
			// Positive width below granularity still occupies a slot.
			u = 1
		}
		if u > capUnits {
			continue
		}
		cands = append(cands, candidate{order: o, units: u})
	}
	if len(cands) == 0 {
		return pattern, nil
	}

	maxCells := s.MaxCells
	if maxCells <= 0 {
		maxCells = DefaultMaxCells
	}
	n := len(cands)
	cols := capUnits + 1
	if (n+1)*cols > maxCells {
		return model.Pattern{}, &InfeasibleError{
			CoilID: coil.ID,
			Reason: fmt.Sprintf("instance too large: %d orders x %d capacity units exceeds cell budget", n, capUnits),
		}
	}

	// Suffix DP: row i holds the best (length, cuts) achievable with
	// orders i..n-1 at each remaining capacity. Filling backwards lets
	// the reconstruction walk forward and include the earliest order
	// index whenever doing so still attains the optimum, which yields
	// the lexicographically smallest optimal subset.
	values := make([]float64, (n+1)*cols)
	counts := make([]int32, (n+1)*cols)

	for i := n - 1; i >= 0; i-- {
		row := i * cols
		next := (i + 1) * cols
		u := cands[i].units
		v := cands[i].order.Length
		for w := 0; w < cols; w++ {
			skipVal, skipCnt := values[next+w], counts[next+w]
			if u > w {
				values[row+w], counts[row+w] = skipVal, skipCnt
				continue
			}
			takeVal := values[next+w-u] + v
			takeCnt := counts[next+w-u] + 1
			if takeVal > skipVal || (takeVal == skipVal && takeCnt <= skipCnt) {
				values[row+w], counts[row+w] = takeVal, takeCnt
			} else {
				values[row+w], counts[row+w] = skipVal, skipCnt
			}
		}
	}

	w := capUnits
	for i := 0; i < n; i++ {
		row := i * cols
		next := (i + 1) * cols
		u := cands[i].units
		if u > w {
			continue
		}
		takeVal := values[next+w-u] + cands[i].order.Length
		takeCnt := counts[next+w-u] + 1
		if takeVal == values[row+w] && takeCnt == counts[row+w] {
			o := cands[i].order
			pattern.Cuts = append(pattern.Cuts, model.Cut{
				OrderID: o.ID,
				Label:   o.Label,
				Width:   o.Width,
				Length:  o.Length,
			})
			w -= u
		}
	}

	if pattern.UsedWidth() > coil.Width+1e-9 {
		return model.Pattern{}, &InfeasibleError{
			CoilID: coil.ID,
			Reason: fmt.Sprintf("capacity invariant violated: %.3f > %.3f", pattern.UsedWidth(), coil.Width),
		}
	}
	return pattern, nil
}

// discretizationEps absorbs float noise when a width lands exactly on
// the unit grid, so an exact fit is not rounded away.
const discretizationEps = 1e-9

// widthUnits converts an order width to capacity units, rounding up.
func widthUnits(mm float64) int {
	return int(math.Ceil(mm*unitsPerMM - discretizationEps))
}

// capacityUnits converts a coil width to capacity units, rounding
// down.
func capacityUnits(mm float64) int {
	return int(math.Floor(mm*unitsPerMM + discretizationEps))
}
