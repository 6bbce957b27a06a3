package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCoilGeneratesID(t *testing.T) {
	c := NewCoil("Coil A", 1250, 2500)
	assert.Len(t, c.ID, 8)
	assert.Equal(t, "Coil A", c.Label)
	assert.Equal(t, 1250.0, c.Width)

	other := NewCoil("Coil B", 950, 2000)
	assert.NotEqual(t, c.ID, other.ID)
}

func TestCoilValidate(t *testing.T) {
	assert.NoError(t, Coil{Width: 100, Length: 500}.Validate())
	assert.NoError(t, Coil{Width: 0, Length: 0}.Validate())

	err := Coil{ID: "c1", Width: -1, Length: 500}.Validate()
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "coil", ve.Kind)
	assert.Equal(t, "width", ve.Field)
	assert.Equal(t, -1.0, ve.Value)

	err = Coil{ID: "c2", Width: 100, Length: -5}.Validate()
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "length", ve.Field)
}

func TestOrderValidate(t *testing.T) {
	assert.NoError(t, Order{Width: 30, Length: 5}.Validate())
	assert.NoError(t, Order{Width: 30, Length: 0}.Validate())

	var ve *ValidationError
	require.ErrorAs(t, Order{ID: "o1", Width: 0, Length: 5}.Validate(), &ve)
	assert.Equal(t, "order", ve.Kind)
	assert.Equal(t, "width", ve.Field)

	require.ErrorAs(t, Order{ID: "o2", Width: 30, Length: -1}.Validate(), &ve)
	assert.Equal(t, "length", ve.Field)
}

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{Kind: "order", ID: "o1", Field: "width", Value: -2}
	assert.Equal(t, "invalid order o1: width=-2", err.Error())

	anon := &ValidationError{Kind: "coil", Field: "width", Value: -1}
	assert.Contains(t, anon.Error(), "invalid coil ?")
}

func TestPatternDerivedValues(t *testing.T) {
	p := Pattern{
		Coil: Coil{Width: 100, Length: 1000},
		Cuts: []Cut{
			{OrderID: "a", Width: 30, Length: 5},
			{OrderID: "b", Width: 50, Length: 6},
		},
	}
	assert.InDelta(t, 80.0, p.UsedWidth(), 1e-9)
	assert.InDelta(t, 11.0, p.TotalLength(), 1e-9)
	assert.InDelta(t, 80.0, p.Utilization(), 1e-9)
	assert.Equal(t, []float64{30, 50}, p.Widths())
}

func TestPatternUtilizationZeroWidthCoil(t *testing.T) {
	p := Pattern{Coil: Coil{Width: 0}}
	assert.Equal(t, 0.0, p.Utilization())
}

func TestPlanEntryFailed(t *testing.T) {
	assert.False(t, PlanEntry{}.Failed())
	assert.True(t, PlanEntry{Error: "boom"}.Failed())
}

func TestPlanAggregates(t *testing.T) {
	ok := Pattern{
		Coil: Coil{Width: 100},
		Cuts: []Cut{{Width: 50, Length: 6}, {Width: 30, Length: 5}},
	}
	plan := Plan{
		Entries: []PlanEntry{
			{Coil: ok.Coil, Pattern: &ok},
			{Coil: Coil{Width: -1}, Error: "invalid coil"},
		},
		RejectedOrders: []RejectedOrder{{Order: Order{ID: "bad"}, Reason: "invalid"}},
	}

	assert.Equal(t, 1, plan.FailedCount())
	assert.Equal(t, []float64{80.0}, plan.Utilizations())
	assert.InDelta(t, 11.0, plan.TotalSatisfiedLength(), 1e-9)
}
