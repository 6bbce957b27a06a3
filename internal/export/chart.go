package export

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/coilworks/slitplan/internal/model"
)

// UtilizationChart builds a bar chart of per-coil width utilization.
// Failed slots are shown as zero-height bars so the x axis still
// matches the input coil sequence one-to-one.
func UtilizationChart(plan model.Plan) *charts.Bar {
	bar := charts.NewBar()
	s := Summarize(plan)
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Coil width utilization",
			Subtitle: fmt.Sprintf("%d coils, mean %.1f%%", s.Coils, s.MeanUtilization),
		}),
		charts.WithYAxisOpts(opts.YAxis{Name: "%", Max: 100}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)

	var labels []string
	var data []opts.BarData
	for _, e := range plan.Entries {
		labels = append(labels, e.Coil.Label)
		if e.Failed() || e.Pattern == nil {
			data = append(data, opts.BarData{Value: 0.0, Name: e.Error})
			continue
		}
		data = append(data, opts.BarData{Value: e.Pattern.Utilization()})
	}

	bar.SetXAxis(labels).AddSeries("utilization", data)
	return bar
}

// RenderChart writes the utilization chart as a standalone HTML page.
func RenderChart(w io.Writer, plan model.Plan) error {
	return UtilizationChart(plan).Render(w)
}
