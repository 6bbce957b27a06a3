package model

import (
	"fmt"

	"github.com/google/uuid"
)

// Coil represents a roll of stock material from which narrower strips
// are slit. Width is the usable capacity in mm; Length is the roll
// length, carried through to reports but not part of the selection
// objective.
type Coil struct {
	ID     string  `json:"id"`
	Label  string  `json:"label"`
	Width  float64 `json:"width"`  // mm
	Length float64 `json:"length"` // mm
}

// NewCoil creates a Coil with a generated ID.
func NewCoil(label string, width, length float64) Coil {
	return Coil{
		ID:     uuid.New().String()[:8],
		Label:  label,
		Width:  width,
		Length: length,
	}
}

// Validate reports whether the coil record is well formed. A zero
// width is allowed and yields an empty pattern; a negative width or
// length is a malformed record.
func (c Coil) Validate() error {
	if c.Width < 0 {
		return &ValidationError{Kind: "coil", ID: c.ID, Field: "width", Value: c.Width}
	}
	if c.Length < 0 {
		return &ValidationError{Kind: "coil", ID: c.ID, Field: "length", Value: c.Length}
	}
	return nil
}

// Order represents a customer request for a strip of a given width
// and length. Width consumes coil capacity; Length is the value the
// selection maximizes.
type Order struct {
	ID     string  `json:"id"`
	Label  string  `json:"label"`
	Width  float64 `json:"width"`  // mm
	Length float64 `json:"length"` // mm
}

// NewOrder creates an Order with a generated ID.
func NewOrder(label string, width, length float64) Order {
	return Order{
		ID:     uuid.New().String()[:8],
		Label:  label,
		Width:  width,
		Length: length,
	}
}

// Validate reports whether the order record is well formed.
func (o Order) Validate() error {
	if o.Width <= 0 {
		return &ValidationError{Kind: "order", ID: o.ID, Field: "width", Value: o.Width}
	}
	if o.Length < 0 {
		return &ValidationError{Kind: "order", ID: o.ID, Field: "length", Value: o.Length}
	}
	return nil
}

// ValidationError reports a malformed coil or order record. It is
// surfaced per offending record and never aborts a batch.
type ValidationError struct {
	Kind  string  // "coil" or "order"
	ID    string  // record ID, may be empty for raw rows
	Field string  // offending field name
	Value float64 // offending value
}

func (e *ValidationError) Error() string {
	id := e.ID
	if id == "" {
		id = "?"
	}
	return fmt.Sprintf("invalid %s %s: %s=%g", e.Kind, id, e.Field, e.Value)
}

// Cut is one strip selected from the order catalog for a pattern.
type Cut struct {
	OrderID string  `json:"order_id"`
	Label   string  `json:"label,omitempty"`
	Width   float64 `json:"width"`  // mm
	Length  float64 `json:"length"` // mm
}

// Pattern is the unordered outcome of selecting a subset of orders
// for one coil. Invariant: UsedWidth() never exceeds Coil.Width.
type Pattern struct {
	Coil Coil  `json:"coil"`
	Cuts []Cut `json:"cuts"`
}

// UsedWidth returns the total width consumed by the pattern's cuts.
func (p Pattern) UsedWidth() float64 {
	var total float64
	for _, c := range p.Cuts {
		total += c.Width
	}
	return total
}

// TotalLength returns the total satisfied order length.
func (p Pattern) TotalLength() float64 {
	var total float64
	for _, c := range p.Cuts {
		total += c.Length
	}
	return total
}

// Utilization returns the used fraction of the coil width as a
// percentage. A zero-width coil has zero utilization.
func (p Pattern) Utilization() float64 {
	if p.Coil.Width <= 0 {
		return 0
	}
	return p.UsedWidth() / p.Coil.Width * 100.0
}

// Widths returns the cut widths in pattern order.
func (p Pattern) Widths() []float64 {
	ws := make([]float64, len(p.Cuts))
	for i, c := range p.Cuts {
		ws[i] = c.Width
	}
	return ws
}

// AdjustedPattern holds the same cuts as its source pattern, permuted
// into ascending width order to reduce blade repositioning between
// consecutive cuts.
type AdjustedPattern struct {
	Coil Coil  `json:"coil"`
	Cuts []Cut `json:"cuts"`
}

// Widths returns the cut widths in sequence order.
func (a AdjustedPattern) Widths() []float64 {
	ws := make([]float64, len(a.Cuts))
	for i, c := range a.Cuts {
		ws[i] = c.Width
	}
	return ws
}

// PlanEntry is the result slot for one input coil. Pattern and
// Adjusted are set on success; Error carries the failure otherwise.
// Failed slots keep their position so the plan always corresponds
// one-to-one with the input coil sequence.
type PlanEntry struct {
	Coil     Coil             `json:"coil"`
	Pattern  *Pattern         `json:"pattern,omitempty"`
	Adjusted *AdjustedPattern `json:"adjusted,omitempty"`
	Error    string           `json:"error,omitempty"`
}

// Failed reports whether this slot failed to solve.
func (e PlanEntry) Failed() bool {
	return e.Error != ""
}

// RejectedOrder is an order excluded from the catalog at the
// boundary, with the reason it was rejected.
type RejectedOrder struct {
	Order  Order  `json:"order"`
	Reason string `json:"reason"`
}

// Plan is the full ordered result of solving every coil against the
// order catalog, one entry per input coil in input order. Orders
// rejected during boundary validation are reported alongside the
// entries rather than silently dropped.
type Plan struct {
	Entries        []PlanEntry     `json:"entries"`
	RejectedOrders []RejectedOrder `json:"rejected_orders,omitempty"`
}

// FailedCount returns the number of failed slots.
func (p Plan) FailedCount() int {
	n := 0
	for _, e := range p.Entries {
		if e.Failed() {
			n++
		}
	}
	return n
}

// Utilizations returns the per-coil width utilization percentages of
// the successful slots, in plan order.
func (p Plan) Utilizations() []float64 {
	var us []float64
	for _, e := range p.Entries {
		if !e.Failed() && e.Pattern != nil {
			us = append(us, e.Pattern.Utilization())
		}
	}
	return us
}

// TotalSatisfiedLength sums the satisfied order length across all
// successful slots.
func (p Plan) TotalSatisfiedLength() float64 {
	var total float64
	for _, e := range p.Entries {
		if !e.Failed() && e.Pattern != nil {
			total += e.Pattern.TotalLength()
		}
	}
	return total
}
