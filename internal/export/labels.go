package export

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/go-pdf/fpdf"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/coilworks/slitplan/internal/model"
)

// LabelInfo holds the data encoded into each coil label's QR code.
type LabelInfo struct {
	CoilLabel   string    `json:"coil"`
	CoilWidth   float64   `json:"coil_width_mm"`
	CoilLength  float64   `json:"coil_length_mm"`
	Cuts        []float64 `json:"cuts_mm"`
	Utilization float64   `json:"utilization_pct"`
}

// Label layout constants for Avery 5160-compatible labels (3 columns,
// 10 rows per US Letter page).
const (
	labelPageWidth  = 215.9
	labelPageHeight = 279.4
	labelMarginTop  = 12.7
	labelMarginLeft = 4.8
	labelWidth      = 66.7
	labelHeight     = 25.4
	labelCols       = 3
	labelRows       = 10
	labelsPerPage   = labelCols * labelRows
	qrSize          = 20.0
	labelPadding    = 2.0
)

// ExportLabels generates a PDF of QR-coded labels, one per
// successfully solved coil. Each label shows the coil name and the
// adjusted cut sequence, with the run metadata encoded as JSON in the
// QR code so shop-floor scanners can pull up the slot.
func ExportLabels(path string, plan model.Plan) error {
	var entries []model.PlanEntry
	for _, e := range plan.Entries {
		if !e.Failed() {
			entries = append(entries, e)
		}
	}
	if len(entries) == 0 {
		return fmt.Errorf("no solved coils to generate labels for")
	}

	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetAutoPageBreak(false, 0)

	for i, entry := range entries {
		if i%labelsPerPage == 0 {
			pdf.AddPage()
		}
		slot := i % labelsPerPage
		col := slot % labelCols
		row := slot / labelCols

		x := labelMarginLeft + float64(col)*labelWidth
		y := labelMarginTop + float64(row)*labelHeight

		if err := renderLabel(pdf, entry, x, y, i); err != nil {
			return err
		}
	}

	return pdf.OutputFileAndClose(path)
}

func renderLabel(pdf *fpdf.Fpdf, entry model.PlanEntry, x, y float64, index int) error {
	info := LabelInfo{
		CoilLabel:   entry.Coil.Label,
		CoilWidth:   entry.Coil.Width,
		CoilLength:  entry.Coil.Length,
		Cuts:        entry.Adjusted.Widths(),
		Utilization: entry.Pattern.Utilization(),
	}
	payload, err := json.Marshal(info)
	if err != nil {
		return err
	}

	png, err := qrcode.Encode(string(payload), qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("QR encode for coil %s: %w", entry.Coil.ID, err)
	}

	imgName := fmt.Sprintf("qr-%d", index)
	opts := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(imgName, opts, bytes.NewReader(png))
	pdf.ImageOptions(imgName, x+labelPadding, y+(labelHeight-qrSize)/2, qrSize, qrSize, false, opts, 0, "")

	textX := x + labelPadding + qrSize + labelPadding
	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetXY(textX, y+labelPadding+1)
	pdf.CellFormat(labelWidth-qrSize-3*labelPadding, 4, truncate(entry.Coil.Label, 26), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	pdf.SetXY(textX, y+labelPadding+6)
	pdf.CellFormat(labelWidth-qrSize-3*labelPadding, 3.5, fmt.Sprintf("%.0f x %.0f mm", entry.Coil.Width, entry.Coil.Length), "", 1, "L", false, 0, "")

	pdf.SetXY(textX, y+labelPadding+10)
	pdf.CellFormat(labelWidth-qrSize-3*labelPadding, 3.5, "Cuts: "+truncate(FormatWidths(entry.Adjusted.Widths()), 30), "", 1, "L", false, 0, "")

	pdf.SetXY(textX, y+labelPadding+14)
	pdf.CellFormat(labelWidth-qrSize-3*labelPadding, 3.5, fmt.Sprintf("Util %.1f%%", entry.Pattern.Utilization()), "", 1, "L", false, 0, "")

	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
