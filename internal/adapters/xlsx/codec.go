// Package xlsx stores period snapshots and reports as Excel workbooks.
package xlsx

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/example/boxkeep/internal/ports/secondary"
)

// Column headers, in file order.
const (
	colID              = "pid"
	colSerial          = "Serial_Number"
	colBox             = "Box"
	colCell            = "Cell"
	colPlacedAt        = "Place_Date"
	colReportGenerated = "Report_Generated"
	colRetrievedAt     = "Takeout_Date"
)

var header = []interface{}{colID, colSerial, colBox, colCell, colPlacedAt, colReportGenerated, colRetrievedAt}

// Layouts accepted for date cells besides the canonical one.
var fallbackLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"1/2/06 15:04",
	"01-02-06 15:04",
}

// writeWorkbook writes records into a single-sheet workbook at path.
// The file is written next to path and renamed into place.
func writeWorkbook(path string, records []*secondary.InventoryRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, r := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		retrieved := ""
		if r.RetrievedAt != nil {
			retrieved = secondary.FormatTimestamp(*r.RetrievedAt)
		}
		row := []interface{}{
			r.ID,
			r.Serial,
			r.Box,
			r.Cell,
			secondary.FormatTimestamp(r.PlacedAt),
			r.ReportGenerated,
			retrieved,
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write record %d: %w", r.ID, err)
		}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := f.WriteTo(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close workbook: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

// readWorkbook parses the first sheet of the workbook at path.
func readWorkbook(path string) ([]*secondary.InventoryRecord, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	return decodeSheet(f)
}

func decodeSheet(f *excelize.File) ([]*secondary.InventoryRecord, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	// Raw values keep date cells as serial numbers whatever their display format
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	cols := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		cols[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{colID, colSerial, colBox, colCell, colPlacedAt, colReportGenerated} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("missing column %q", required)
		}
	}

	records := make([]*secondary.InventoryRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if blank(row) {
			continue
		}
		r, err := decodeRow(cols, row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		records = append(records, r)
	}
	return records, nil
}

func decodeRow(cols map[string]int, row []string) (*secondary.InventoryRecord, error) {
	get := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var (
		r   secondary.InventoryRecord
		err error
	)
	if r.ID, err = parseInt(get(colID)); err != nil {
		return nil, fmt.Errorf("%s: %w", colID, err)
	}
	r.Serial = get(colSerial)
	if r.Box, err = parseInt(get(colBox)); err != nil {
		return nil, fmt.Errorf("%s: %w", colBox, err)
	}
	if r.Cell, err = parseInt(get(colCell)); err != nil {
		return nil, fmt.Errorf("%s: %w", colCell, err)
	}
	if r.PlacedAt, err = parseDate(get(colPlacedAt)); err != nil {
		return nil, fmt.Errorf("%s: %w", colPlacedAt, err)
	}
	if v := get(colReportGenerated); v != "" {
		if r.ReportGenerated, err = strconv.ParseBool(v); err != nil {
			return nil, fmt.Errorf("%s: %w", colReportGenerated, err)
		}
	}
	if v := get(colRetrievedAt); v != "" {
		t, err := parseDate(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", colRetrievedAt, err)
		}
		r.RetrievedAt = &t
	}
	return &r, nil
}

// parseInt accepts integral floats such as "3.0".
func parseInt(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int(f)) {
		return 0, fmt.Errorf("not an integer: %q", s)
	}
	return int(f), nil
}

// parseDate reads text in the canonical layout, a fallback layout, or an
// Excel serial date number.
func parseDate(s string) (time.Time, error) {
	if t, err := secondary.ParseTimestamp(s); err == nil {
		return t, nil
	}
	for _, layout := range fallbackLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, err
		}
		// Serial dates carry no zone; keep the wall clock
		t = t.Round(time.Second)
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.Local), nil
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

func blank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
