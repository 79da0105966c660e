// Package export writes bills of materials to CSV, XLSX and PDF files,
// prints QR-coded part labels and uploads reports to object storage.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/PhotoBOM/internal/model"
)

// Columns written to CSV and XLSX exports.
var Columns = []string{"Item No", "Part Name", "Quantity", "Material"}

// SheetName is the worksheet name used in XLSX exports.
const SheetName = "BOM"

// TimestampName appends t as _YYYYMMDD_HHMMSS to base.
func TimestampName(base string, t time.Time) string {
	return fmt.Sprintf("%s_%s", base, t.Format("20060102_150405"))
}

// mkdirFor creates the parent directory of path.
func mkdirFor(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return nil
}

// ExportCSV writes items to path with the Columns header.
func ExportCSV(path string, items []model.LineItem) error {
	if err := mkdirFor(path); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(Columns); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, it := range items {
		if err := w.Write([]string{it.ItemNo, it.PartName, strconv.Itoa(it.Quantity), it.Material}); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return f.Close()
}

// ExportXLSX writes items to a single-sheet workbook at path.
func ExportXLSX(path string, items []model.LineItem) error {
	if err := mkdirFor(path); err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	rows := [][]interface{}{{Columns[0], Columns[1], Columns[2], Columns[3]}}
	for _, it := range items {
		rows = append(rows, []interface{}{it.ItemNo, it.PartName, it.Quantity, it.Material})
	}
	for i, row := range rows {
		for j, cell := range row {
			ref, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				return fmt.Errorf("failed to create cell reference: %w", err)
			}
			if err := f.SetCellValue(SheetName, ref, cell); err != nil {
				return fmt.Errorf("failed to set cell %s: %w", ref, err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}
