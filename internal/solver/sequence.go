package solver

import (
	"sort"

	"github.com/coilworks/slitplan/internal/model"
)

// Sequence reorders a pattern's cuts into ascending width order. The
// cut multiset is preserved exactly: the result is a permutation,
// never an addition, removal, or value change, and applying Sequence
// to an already-adjusted pattern is a no-op.
//
// Ascending order is a proxy for minimizing blade travel between
// consecutive cuts, the simplest admissible policy. A true
// distance-minimizing ordering would slot in behind the same
// contract.
func Sequence(p model.Pattern) model.AdjustedPattern {
	cuts := make([]model.Cut, len(p.Cuts))
	copy(cuts, p.Cuts)
	sort.SliceStable(cuts, func(i, j int) bool {
		return cuts[i].Width < cuts[j].Width
	})
	return model.AdjustedPattern{Coil: p.Coil, Cuts: cuts}
}
