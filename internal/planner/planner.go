// Package planner assembles optimization plans: it runs the pattern
// solver once per coil and sequences each resulting pattern,
// collecting the (pattern, adjusted pattern) pairs in input coil
// order.
package planner

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/coilworks/slitplan/internal/model"
	"github.com/coilworks/slitplan/internal/solver"
)

// SolveRecorder receives per-coil solve outcomes. Implementations
// must be safe for concurrent use.
type SolveRecorder interface {
	RecordSolve(coilID string, ok bool, duration time.Duration)
}

// PartialFailureError reports that one or more coil slots failed
// while the rest of the plan succeeded. The plan is still returned in
// full; failed slots carry their error in place.
type PartialFailureError struct {
	Failed []int // failed slot indices, input order
	Total  int
}

func (e *PartialFailureError) Error() string {
	return fmt.Sprintf("%d of %d coils failed to solve", len(e.Failed), e.Total)
}

// Assembler runs the per-coil pipeline. Coils are independent, so
// solves run on a bounded worker pool; results are written into
// positional slots, preserving input order without locking.
type Assembler struct {
	Solver *solver.Solver
	// Workers bounds the pool size. Zero means NumCPU.
	Workers int
	// Recorder observes solve outcomes; nil disables recording.
	Recorder SolveRecorder
}

func New() *Assembler {
	return &Assembler{Solver: solver.New()}
}

// Assemble solves every coil against the full order catalog and
// sequences each pattern. Orders are not depleted across coils: the
// same order may be selected independently for multiple coils in one
// run.
//
// Malformed orders are excluded from the catalog and reported on the
// plan; a malformed coil fails only its own slot. A failure on one
// coil never aborts the batch: the slot records the error and
// processing continues. When any slot failed, the returned error is a
// *PartialFailureError and the plan is still fully populated.
//
// Cancelling ctx aborts remaining solves; aborted slots carry the
// context error.
func (a *Assembler) Assemble(ctx context.Context, coils []model.Coil, orders []model.Order) (model.Plan, error) {
	plan := model.Plan{}

	catalog := make([]model.Order, 0, len(orders))
	for _, o := range orders {
		if err := o.Validate(); err != nil {
			plan.RejectedOrders = append(plan.RejectedOrders, model.RejectedOrder{
				Order:  o,
				Reason: err.Error(),
			})
			continue
		}
		catalog = append(catalog, o)
	}

	if len(coils) == 0 {
		return plan, nil
	}

	sv := a.Solver
	if sv == nil {
		sv = solver.New()
	}

	plan.Entries = make([]model.PlanEntry, len(coils))

	workers := a.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(coils) {
		workers = len(coils)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for k := 0; k < workers; k++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				plan.Entries[i] = a.solveSlot(ctx, sv, coils[i], catalog)
			}
		}()
	}
	for i := range coils {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	var failed []int
	for i, e := range plan.Entries {
		if e.Failed() {
			failed = append(failed, i)
		}
	}
	if len(failed) > 0 {
		return plan, &PartialFailureError{Failed: failed, Total: len(coils)}
	}
	return plan, nil
}

// solveSlot runs the solve-then-sequence pipeline for one coil slot.
func (a *Assembler) solveSlot(ctx context.Context, sv *solver.Solver, coil model.Coil, catalog []model.Order) model.PlanEntry {
	entry := model.PlanEntry{Coil: coil}

	if err := ctx.Err(); err != nil {
		entry.Error = err.Error()
		return entry
	}
	if err := coil.Validate(); err != nil {
		entry.Error = err.Error()
		return entry
	}

	start := time.Now()
	pattern, err := sv.Solve(coil, catalog)
	if a.Recorder != nil {
		a.Recorder.RecordSolve(coil.ID, err == nil, time.Since(start))
	}
	if err != nil {
		entry.Error = err.Error()
		return entry
	}

	adjusted := solver.Sequence(pattern)
	entry.Pattern = &pattern
	entry.Adjusted = &adjusted
	return entry
}
