package export

import (
	"fmt"

	"github.com/go-pdf/fpdf"

	"github.com/coilworks/slitplan/internal/model"
)

// cutColor represents an RGB color for a drawn cut strip.
type cutColor struct {
	R, G, B int
}

// cutColors is the palette cycled through when drawing pattern strips.
var cutColors = []cutColor{
	{R: 76, G: 175, B: 80},  // green
	{R: 33, G: 150, B: 243}, // blue
	{R: 255, G: 152, B: 0},  // orange
	{R: 156, G: 39, B: 176}, // purple
	{R: 0, G: 188, B: 212},  // cyan
	{R: 244, G: 67, B: 54},  // red
	{R: 255, G: 235, B: 59}, // yellow
	{R: 121, G: 85, B: 72},  // brown
}

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	stripTop     = 45.0
	stripHeight  = 40.0
	tableTop     = stripTop + stripHeight + 15.0
)

// ExportPDF generates a PDF report for the plan. Each coil is
// rendered on its own page with its adjusted pattern drawn to scale,
// followed by a summary page.
func ExportPDF(path string, plan model.Plan) error {
	if len(plan.Entries) == 0 {
		return fmt.Errorf("no plan entries to export")
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)

	for i, entry := range plan.Entries {
		pdf.AddPage()
		renderCoilPage(pdf, entry, i+1, len(plan.Entries))
	}

	pdf.AddPage()
	renderSummaryPage(pdf, plan)

	return pdf.OutputFileAndClose(path)
}

func renderCoilPage(pdf *fpdf.Fpdf, entry model.PlanEntry, pageNum, total int) {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(0, 8, fmt.Sprintf("Coil %d of %d: %s", pageNum, total, entry.Coil.Label), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(marginLeft, marginTop+10)
	pdf.CellFormat(0, 6, fmt.Sprintf("Width %.1f mm, length %.1f mm", entry.Coil.Width, entry.Coil.Length), "", 1, "L", false, 0, "")

	if entry.Failed() {
		pdf.SetTextColor(200, 30, 30)
		pdf.SetFont("Helvetica", "B", 12)
		pdf.SetXY(marginLeft, stripTop)
		pdf.CellFormat(0, 8, "FAILED: "+entry.Error, "", 1, "L", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
		return
	}

	drawStrip(pdf, entry)
	drawCutTable(pdf, entry)
}

// drawStrip draws the coil as a horizontal bar with the adjusted
// cuts as colored segments and the unused remainder in gray.
func drawStrip(pdf *fpdf.Fpdf, entry model.PlanEntry) {
	drawWidth := pageWidth - marginLeft - marginRight
	if entry.Coil.Width <= 0 {
		pdf.SetFont("Helvetica", "I", 10)
		pdf.SetXY(marginLeft, stripTop)
		pdf.CellFormat(0, 6, "Zero-width coil: empty pattern", "", 1, "L", false, 0, "")
		return
	}
	scale := drawWidth / entry.Coil.Width

	// Coil outline
	pdf.SetDrawColor(60, 60, 60)
	pdf.SetFillColor(235, 235, 235)
	pdf.Rect(marginLeft, stripTop, drawWidth, stripHeight, "FD")

	x := marginLeft
	pdf.SetFont("Helvetica", "", 8)
	for i, cut := range entry.Adjusted.Cuts {
		c := cutColors[i%len(cutColors)]
		w := cut.Width * scale
		pdf.SetFillColor(c.R, c.G, c.B)
		pdf.Rect(x, stripTop, w, stripHeight, "FD")
		if w > 12 {
			pdf.SetTextColor(255, 255, 255)
			pdf.SetXY(x, stripTop+stripHeight/2-3)
			pdf.CellFormat(w, 6, fmt.Sprintf("%g", cut.Width), "", 0, "C", false, 0, "")
			pdf.SetTextColor(0, 0, 0)
		}
		x += w
	}
}

func drawCutTable(pdf *fpdf.Fpdf, entry model.PlanEntry) {
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetXY(marginLeft, tableTop)
	pdf.CellFormat(60, 6, "Cut (shear order)", "B", 0, "L", false, 0, "")
	pdf.CellFormat(35, 6, "Width (mm)", "B", 0, "R", false, 0, "")
	pdf.CellFormat(35, 6, "Length (mm)", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	y := tableTop + 6
	for i, cut := range entry.Adjusted.Cuts {
		pdf.SetXY(marginLeft, y)
		label := cut.Label
		if label == "" {
			label = cut.OrderID
		}
		pdf.CellFormat(60, 5, fmt.Sprintf("%d. %s", i+1, label), "", 0, "L", false, 0, "")
		pdf.CellFormat(35, 5, fmt.Sprintf("%.1f", cut.Width), "", 0, "R", false, 0, "")
		pdf.CellFormat(35, 5, fmt.Sprintf("%.1f", cut.Length), "", 1, "R", false, 0, "")
		y += 5
	}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetXY(marginLeft, y+2)
	pdf.CellFormat(0, 6, fmt.Sprintf("Used %.1f of %.1f mm (%.1f%%)",
		entry.Pattern.UsedWidth(), entry.Coil.Width, entry.Pattern.Utilization()), "", 1, "L", false, 0, "")
}

func renderSummaryPage(pdf *fpdf.Fpdf, plan model.Plan) {
	s := Summarize(plan)

	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(0, 8, "Plan summary", "", 1, "L", false, 0, "")

	rows := [][2]string{
		{"Coils", fmt.Sprintf("%d", s.Coils)},
		{"Failed slots", fmt.Sprintf("%d", s.Failed)},
		{"Rejected orders", fmt.Sprintf("%d", s.RejectedOrders)},
		{"Total satisfied length", fmt.Sprintf("%.1f mm", s.TotalLength)},
		{"Mean utilization", fmt.Sprintf("%.1f%%", s.MeanUtilization)},
		{"Utilization std dev", fmt.Sprintf("%.2f", s.StdDevUtilization)},
	}

	pdf.SetFont("Helvetica", "", 11)
	y := marginTop + 14.0
	for _, r := range rows {
		pdf.SetXY(marginLeft, y)
		pdf.CellFormat(70, 7, r[0], "", 0, "L", false, 0, "")
		pdf.CellFormat(60, 7, r[1], "", 1, "R", false, 0, "")
		y += 7
	}
}
