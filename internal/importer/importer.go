// Package importer provides CSV and Excel ingestion for coil and
// order lists. It supports automatic delimiter detection, flexible
// column mapping, and case-insensitive header recognition. Rows are
// rejected or coerced here, before the core ever sees them.
package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/coilworks/slitplan/internal/model"
)

// Record is one validated (label, width, length) row. Coils and
// orders share the shape; the caller decides which it becomes.
type Record struct {
	Label  string
	Width  float64
	Length float64
}

// Result holds the records of an import operation together with the
// per-row errors and warnings it produced. A bad row never aborts the
// file.
type Result struct {
	Records  []Record
	Errors   []string
	Warnings []string
}

// Coils converts the imported records into coil values.
func (r Result) Coils() []model.Coil {
	coils := make([]model.Coil, 0, len(r.Records))
	for _, rec := range r.Records {
		coils = append(coils, model.NewCoil(rec.Label, rec.Width, rec.Length))
	}
	return coils
}

// Orders converts the imported records into order values.
func (r Result) Orders() []model.Order {
	orders := make([]model.Order, 0, len(r.Records))
	for _, rec := range r.Records {
		orders = append(orders, model.NewOrder(rec.Label, rec.Width, rec.Length))
	}
	return orders
}

// ColumnMapping maps semantic column roles to their indices in the
// data.
type ColumnMapping struct {
	Label  int
	Width  int
	Length int
}

// headerAliases maps canonical column names to their accepted aliases
// (all lowercase).
var headerAliases = map[string][]string{
	"label":  {"label", "name", "coil", "order", "material", "description", "desc", "item"},
	"width":  {"width", "w", "coil width", "order width", "width (mm)", "width mm"},
	"length": {"length", "len", "l", "coil length", "order length", "length (mm)", "length mm"},
}

// DetectCSVDelimiter reads the file content and determines the most
// likely CSV delimiter. It tries comma, semicolon, tab, and pipe. The
// delimiter that produces the most consistent column count across
// lines wins.
func DetectCSVDelimiter(data []byte) rune {
	candidates := []rune{',', ';', '\t', '|'}
	bestDelimiter := ','
	bestScore := 0

	for _, delim := range candidates {
		reader := csv.NewReader(bytes.NewReader(data))
		reader.Comma = delim
		reader.LazyQuotes = true
		reader.FieldsPerRecord = -1

		records, err := reader.ReadAll()
		if err != nil || len(records) < 1 {
			continue
		}

		firstCols := len(records[0])
		if firstCols < 2 {
			continue
		}

		score := 0
		for _, row := range records {
			if len(row) == firstCols {
				score++
			}
		}

		weighted := score*10 + firstCols
		if weighted > bestScore {
			bestScore = weighted
			bestDelimiter = delim
		}
	}

	return bestDelimiter
}

// DetectColumns examines a header row and returns a ColumnMapping. It
// performs case-insensitive matching against known aliases for each
// column role. Returns the mapping and true if a header was detected,
// or a default positional mapping and false if not.
func DetectColumns(row []string) (ColumnMapping, bool) {
	mapping := ColumnMapping{Label: -1, Width: -1, Length: -1}

	isHeader := false
	for i, cell := range row {
		normalized := strings.ToLower(strings.TrimSpace(cell))
		for role, aliases := range headerAliases {
			for _, alias := range aliases {
				if normalized == alias {
					isHeader = true
					switch role {
					case "label":
						if mapping.Label == -1 {
							mapping.Label = i
						}
					case "width":
						if mapping.Width == -1 {
							mapping.Width = i
						}
					case "length":
						if mapping.Length == -1 {
							mapping.Length = i
						}
					}
				}
			}
		}
	}

	if !isHeader {
		// Positional fallback: Width, Length (no label column). Two
		// numeric columns is the layout the legacy spreadsheets used.
		return ColumnMapping{Label: -1, Width: 0, Length: 1}, false
	}

	return mapping, true
}

// getCell safely retrieves a cell value from a row by column index.
func getCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseRow extracts a Record from a row using the given column
// mapping. Returns the record and any error message.
func parseRow(row []string, mapping ColumnMapping, rowLabel string, count int) (Record, string) {
	label := getCell(row, mapping.Label)
	if label == "" {
		label = fmt.Sprintf("Row %d", count+1)
	}

	widthStr := getCell(row, mapping.Width)
	if widthStr == "" {
		return Record{}, fmt.Sprintf("%s: Missing width value", rowLabel)
	}
	width, err := strconv.ParseFloat(widthStr, 64)
	if err != nil {
		return Record{}, fmt.Sprintf("%s: Invalid width '%s'", rowLabel, widthStr)
	}

	lengthStr := getCell(row, mapping.Length)
	if lengthStr == "" {
		return Record{}, fmt.Sprintf("%s: Missing length value", rowLabel)
	}
	length, err := strconv.ParseFloat(lengthStr, 64)
	if err != nil {
		return Record{}, fmt.Sprintf("%s: Invalid length '%s'", rowLabel, lengthStr)
	}

	if width <= 0 || length < 0 {
		return Record{}, fmt.Sprintf("%s: Width must be positive and length non-negative", rowLabel)
	}

	return Record{Label: label, Width: width, Length: length}, ""
}

// isEmptyRow returns true if the row has no meaningful content.
func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// ImportCSV imports records from a CSV file. It automatically detects
// the delimiter and maps columns by header names.
func ImportCSV(path string) Result {
	result := Result{}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open file: %v", err))
		return result
	}

	return ImportCSVData(data)
}

// ImportCSVData imports records from raw CSV bytes.
func ImportCSVData(data []byte) Result {
	result := Result{}

	if len(bytes.TrimSpace(data)) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	delimiter := DetectCSVDelimiter(data)
	if delimiter != ',' {
		delimName := map[rune]string{';': "semicolon", '\t': "tab", '|': "pipe"}[delimiter]
		result.Warnings = append(result.Warnings, fmt.Sprintf("Detected %s delimiter", delimName))
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read CSV: %v", err))
		return result
	}

	if len(records) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	return importFromRows(records, "Line", result.Warnings)
}

// ImportCSVFromReader imports records from a CSV reader with a
// specific delimiter.
func ImportCSVFromReader(reader io.Reader, delimiter rune) Result {
	result := Result{}

	csvReader := csv.NewReader(reader)
	csvReader.Comma = delimiter
	csvReader.LazyQuotes = true
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read CSV: %v", err))
		return result
	}

	if len(records) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	return importFromRows(records, "Line", nil)
}

// ImportExcel imports records from an Excel (.xlsx) file. Reads the
// first sheet and auto-detects column mapping from headers.
func ImportExcel(path string) Result {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return Result{Errors: []string{fmt.Sprintf("Cannot open Excel file: %v", err)}}
	}
	defer f.Close()

	return importWorkbook(f)
}

// ImportExcelFromReader imports records from Excel data supplied by a
// reader, e.g. an uploaded file.
func ImportExcelFromReader(r io.Reader) Result {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Result{Errors: []string{fmt.Sprintf("Cannot open Excel file: %v", err)}}
	}
	defer f.Close()

	return importWorkbook(f)
}

func importWorkbook(f *excelize.File) Result {
	result := Result{}

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		result.Errors = append(result.Errors, "Excel file has no sheets")
		return result
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read Excel data: %v", err))
		return result
	}

	if len(rows) == 0 {
		result.Errors = append(result.Errors, "Sheet is empty")
		return result
	}

	return importFromRows(rows, "Row", nil)
}

// importFromRows is the shared import logic for CSV and Excel data.
// It detects headers, maps columns, and parses each row.
func importFromRows(rows [][]string, rowPrefix string, initialWarnings []string) Result {
	result := Result{Warnings: initialWarnings}

	if len(rows) == 0 {
		result.Errors = append(result.Errors, "No data rows found")
		return result
	}

	mapping, hasHeader := DetectColumns(rows[0])
	startRow := 0
	if hasHeader {
		startRow = 1
		result.Warnings = append(result.Warnings, "Detected header row, skipping")

		missing := []string{}
		if mapping.Width == -1 {
			missing = append(missing, "Width")
		}
		if mapping.Length == -1 {
			missing = append(missing, "Length")
		}
		if len(missing) > 0 {
			result.Errors = append(result.Errors, fmt.Sprintf("Required columns not found in header: %s", strings.Join(missing, ", ")))
			return result
		}
	} else {
		// No recognized header: if the first cell is not numeric the
		// row is likely an unrecognized header, so skip it and keep
		// positional mapping.
		if len(rows[0]) >= 2 {
			if _, err := strconv.ParseFloat(strings.TrimSpace(rows[0][0]), 64); err != nil {
				startRow = 1
				result.Warnings = append(result.Warnings, "Detected header row, skipping")
			}
		}
	}

	for i := startRow; i < len(rows); i++ {
		row := rows[i]
		lineNum := i + 1

		if isEmptyRow(row) {
			continue
		}

		rowLabel := fmt.Sprintf("%s %d", rowPrefix, lineNum)
		rec, errMsg := parseRow(row, mapping, rowLabel, len(result.Records))

		if errMsg != "" {
			result.Errors = append(result.Errors, errMsg)
			continue
		}

		result.Records = append(result.Records, rec)
	}

	return result
}
