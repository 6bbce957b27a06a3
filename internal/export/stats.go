package export

import (
	"gonum.org/v1/gonum/stat"

	"github.com/coilworks/slitplan/internal/model"
)

// Summary aggregates plan-level statistics for report headers.
type Summary struct {
	Coils             int     `json:"coils"`
	Failed            int     `json:"failed"`
	RejectedOrders    int     `json:"rejected_orders"`
	TotalLength       float64 `json:"total_length"`
	MeanUtilization   float64 `json:"mean_utilization"`
	StdDevUtilization float64 `json:"stddev_utilization"`
}

// Summarize computes summary statistics over the plan's successful
// slots.
func Summarize(plan model.Plan) Summary {
	s := Summary{
		Coils:          len(plan.Entries),
		Failed:         plan.FailedCount(),
		RejectedOrders: len(plan.RejectedOrders),
		TotalLength:    plan.TotalSatisfiedLength(),
	}
	us := plan.Utilizations()
	if len(us) > 0 {
		s.MeanUtilization = stat.Mean(us, nil)
	}
	if len(us) > 1 {
		s.StdDevUtilization = stat.StdDev(us, nil)
	}
	return s
}
