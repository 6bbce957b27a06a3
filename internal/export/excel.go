// Package export renders optimization plans to their presentation
// artifacts: xlsx workbooks, PDF reports, QR-coded run labels, and
// utilization charts. The core makes no assumption about display;
// everything here consumes a finished Plan value.
package export

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/coilworks/slitplan/internal/model"
)

const (
	sheetPatterns = "Patterns"
	sheetAdjusted = "Adjusted Patterns"
	sheetSummary  = "Summary"
)

// FormatWidths renders cut widths the way the legacy tool printed
// patterns: space-separated numbers.
func FormatWidths(widths []float64) string {
	parts := make([]string, len(widths))
	for i, w := range widths {
		parts[i] = fmt.Sprintf("%g", w)
	}
	return strings.Join(parts, " ")
}

// NewWorkbook builds an xlsx workbook holding the plan's patterns
// before and after shear adjustment, plus a summary sheet.
func NewWorkbook(plan model.Plan) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", sheetPatterns); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(sheetAdjusted); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(sheetSummary); err != nil {
		return nil, err
	}

	if err := writePatternSheet(f, sheetPatterns, plan, false); err != nil {
		return nil, err
	}
	if err := writePatternSheet(f, sheetAdjusted, plan, true); err != nil {
		return nil, err
	}
	if err := writeSummarySheet(f, plan); err != nil {
		return nil, err
	}

	return f, nil
}

// WriteWorkbook writes the plan workbook to path.
func WriteWorkbook(path string, plan model.Plan) error {
	f, err := NewWorkbook(plan)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.SaveAs(path)
}

func writePatternSheet(f *excelize.File, sheet string, plan model.Plan, adjusted bool) error {
	headers := []string{"Coil", "Coil Width (mm)", "Coil Length (mm)", "Pattern", "Used Width (mm)", "Satisfied Length (mm)", "Status"}
	if err := writeRow(f, sheet, 1, headers); err != nil {
		return err
	}

	for i, e := range plan.Entries {
		row := i + 2
		cells := []any{e.Coil.Label, e.Coil.Width, e.Coil.Length}
		switch {
		case e.Failed():
			cells = append(cells, "", "", "", e.Error)
		case adjusted:
			cells = append(cells, FormatWidths(e.Adjusted.Widths()), e.Pattern.UsedWidth(), e.Pattern.TotalLength(), "ok")
		default:
			cells = append(cells, FormatWidths(e.Pattern.Widths()), e.Pattern.UsedWidth(), e.Pattern.TotalLength(), "ok")
		}
		if err := writeRow(f, sheet, row, cells); err != nil {
			return err
		}
	}
	return nil
}

func writeSummarySheet(f *excelize.File, plan model.Plan) error {
	s := Summarize(plan)
	rows := [][]any{
		{"Coils", s.Coils},
		{"Failed slots", s.Failed},
		{"Rejected orders", s.RejectedOrders},
		{"Total satisfied length (mm)", s.TotalLength},
		{"Mean utilization (%)", s.MeanUtilization},
		{"Utilization std dev", s.StdDevUtilization},
	}
	for i, r := range rows {
		if err := writeRow(f, sheetSummary, i+1, r); err != nil {
			return err
		}
	}
	return nil
}

func writeRow[T any](f *excelize.File, sheet string, row int, values []T) error {
	for col, v := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return err
		}
	}
	return nil
}

// SampleCoilsWorkbook generates the default inventory file served by
// the download route, for users who have no spreadsheet at hand.
func SampleCoilsWorkbook() (*excelize.File, error) {
	return sampleWorkbook([][]float64{
		{100, 500},
		{950, 2000},
		{1250, 2500},
	})
}

// SampleOrdersWorkbook generates the default order file served by the
// download route.
func SampleOrdersWorkbook() (*excelize.File, error) {
	return sampleWorkbook([][]float64{
		{30, 5},
		{40, 3},
		{50, 6},
		{20, 2},
		{310, 1200},
		{455, 800},
	})
}

func sampleWorkbook(rows [][]float64) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := writeRow(f, "Sheet1", 1, []string{"Width", "Length"}); err != nil {
		return nil, err
	}
	for i, r := range rows {
		if err := writeRow(f, "Sheet1", i+2, []any{r[0], r[1]}); err != nil {
			return nil, err
		}
	}
	return f, nil
}
