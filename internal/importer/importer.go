// Package importer provides CSV and Excel import functionality for BOM line
// items. It supports automatic delimiter detection, flexible column mapping,
// and case-insensitive header recognition.
package importer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/PhotoBOM/internal/model"
)

// ImportResult holds the results of an import operation. Row-level numeric
// problems are reported as *model.MalformedLineItemError.
type ImportResult struct {
	Items    []model.LineItem
	Errors   []error
	Warnings []string
}

// HasErrors reports whether any row or file error was recorded.
func (r ImportResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// ColumnMapping maps semantic column roles to their indices in the data.
type ColumnMapping struct {
	ItemNo    int
	Level     int
	PartName  int
	Quantity  int
	UnitPrice int
	Material  int
}

// headerAliases maps canonical column names to their accepted aliases (all lowercase).
var headerAliases = map[string][]string{
	"item_no":    {"item no", "item no.", "item", "item #", "item number", "no", "no.", "#"},
	"level":      {"level", "lvl", "depth"},
	"part_name":  {"part name", "part", "name", "description", "desc", "label", "component"},
	"quantity":   {"quantity", "qty", "count", "pcs", "pieces", "amount"},
	"unit_price": {"unit price", "price", "unit cost", "cost", "price each", "unit price (usd)"},
	"material":   {"material", "materials", "spec", "specification"},
}

// DetectCSVDelimiter reads the file content and determines the most likely CSV delimiter.
// It tries comma, semicolon, tab, and pipe. The delimiter that produces the most
// consistent (non-one) column count across lines wins.
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

// DetectColumns examines a header row and returns a ColumnMapping.
// Returns the mapping and true if a header was detected, or the positional
// mapping (Item No, Part Name, Quantity, Unit Price, Material) and false.
func DetectColumns(row []string) (ColumnMapping, bool) {
	mapping := ColumnMapping{
		ItemNo:    -1,
		Level:     -1,
		PartName:  -1,
		Quantity:  -1,
		UnitPrice: -1,
		Material:  -1,
	}

	set := func(dst *int, i int) {
		if *dst == -1 {
			*dst = i
		}
	}

	isHeader := false
	for i, cell := range row {
		normalized := strings.ToLower(strings.TrimSpace(cell))
		for role, aliases := range headerAliases {
			for _, alias := range aliases {
				if normalized != alias {
					continue
				}
				isHeader = true
				switch role {
				case "item_no":
					set(&mapping.ItemNo, i)
				case "level":
					set(&mapping.Level, i)
				case "part_name":
					set(&mapping.PartName, i)
				case "quantity":
					set(&mapping.Quantity, i)
				case "unit_price":
					set(&mapping.UnitPrice, i)
				case "material":
					set(&mapping.Material, i)
				}
			}
		}
	}

	if !isHeader {
		return ColumnMapping{
			ItemNo:    0,
			Level:     -1,
			PartName:  1,
			Quantity:  2,
			UnitPrice: 3,
			Material:  4,
		}, false
	}

	return mapping, true
}

// getCell safely retrieves a cell value from a row by column index.
// Returns empty string if the index is out of range or negative.
func getCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseRow extracts a LineItem from a row using the given column mapping.
// Returns the item, any error, and any warning message.
func parseRow(row []string, mapping ColumnMapping, rowLabel string, rowNum, itemCount int) (model.LineItem, error, string) {
	itemNo := getCell(row, mapping.ItemNo)
	if itemNo == "" {
		itemNo = strconv.Itoa(itemCount + 1)
	}

	name := getCell(row, mapping.PartName)
	if name == "" {
		name = fmt.Sprintf("Part %d", itemCount+1)
	}

	qty, err := model.CoerceQuantity(getCell(row, mapping.Quantity))
	if err != nil {
		return model.LineItem{}, annotate(err, itemNo, rowNum), ""
	}
	price, err := model.CoercePrice(getCell(row, mapping.UnitPrice))
	if err != nil {
		return model.LineItem{}, annotate(err, itemNo, rowNum), ""
	}

	item := model.LineItem{
		ItemNo:    itemNo,
		PartName:  name,
		Quantity:  qty,
		UnitPrice: price,
		Material:  getCell(row, mapping.Material),
	}

	var warning string
	if levelStr := getCell(row, mapping.Level); levelStr != "" {
		level, err := strconv.Atoi(levelStr)
		if err != nil || level < 0 {
			warning = fmt.Sprintf("%s: Invalid level '%s', defaulting to 0", rowLabel, levelStr)
		} else {
			item.Level = level
		}
	} else if mapping.Level == -1 {
		item.Level = strings.Count(itemNo, ".")
	}

	return item, nil, warning
}

// annotate attaches the item number and source row to a coercion error.
func annotate(err error, itemNo string, rowNum int) error {
	var mErr *model.MalformedLineItemError
	if errors.As(err, &mErr) {
		mErr.ItemNo = itemNo
		mErr.Row = rowNum
		return mErr
	}
	return err
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

// ImportCSV imports line items from a CSV file.
// It automatically detects the delimiter and maps columns by header names.
// Supports comma, semicolon, tab, and pipe delimiters.
func ImportCSV(path string) ImportResult {
	result := ImportResult{}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Errorf("cannot open file: %w", err))
		return result
	}

	if len(bytes.TrimSpace(data)) == 0 {
		result.Errors = append(result.Errors, errors.New("file is empty"))
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
		result.Errors = append(result.Errors, fmt.Errorf("cannot read CSV: %w", err))
		return result
	}

	if len(records) == 0 {
		result.Errors = append(result.Errors, errors.New("file is empty"))
		return result
	}

	return importFromRows(records, "Line", result.Warnings)
}

// ImportCSVFromReader imports line items from a CSV reader with a specific delimiter.
func ImportCSVFromReader(reader io.Reader, delimiter rune) ImportResult {
	result := ImportResult{}

	csvReader := csv.NewReader(reader)
	csvReader.Comma = delimiter
	csvReader.LazyQuotes = true
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Errorf("cannot read CSV: %w", err))
		return result
	}

	if len(records) == 0 {
		result.Errors = append(result.Errors, errors.New("file is empty"))
		return result
	}

	return importFromRows(records, "Line", nil)
}

// ImportExcel imports line items from the first sheet of an Excel workbook.
func ImportExcel(path string) ImportResult {
	result := ImportResult{}

	f, err := excelize.OpenFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Errorf("cannot open Excel file: %w", err))
		return result
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		result.Errors = append(result.Errors, errors.New("excel file has no sheets"))
		return result
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		result.Errors = append(result.Errors, fmt.Errorf("cannot read Excel data: %w", err))
		return result
	}

	if len(rows) == 0 {
		result.Errors = append(result.Errors, errors.New("sheet is empty"))
		return result
	}

	return importFromRows(rows, "Row", nil)
}

// ImportFile dispatches on the file extension: .xlsx/.xlsm to ImportExcel,
// anything else to ImportCSV.
func ImportFile(path string) ImportResult {
	lower := strings.ToLower(path)
	if strings.HasSuffix(lower, ".xlsx") || strings.HasSuffix(lower, ".xlsm") {
		return ImportExcel(path)
	}
	return ImportCSV(path)
}

// importFromRows is the shared import logic for both CSV and Excel data.
// It detects headers, maps columns, and parses each row into line items.
func importFromRows(rows [][]string, rowPrefix string, initialWarnings []string) ImportResult {
	result := ImportResult{
		Warnings: initialWarnings,
	}

	if len(rows) == 0 {
		result.Errors = append(result.Errors, errors.New("no data rows found"))
		return result
	}

	mapping, hasHeader := DetectColumns(rows[0])
	startRow := 0
	if hasHeader {
		startRow = 1
		result.Warnings = append(result.Warnings, "Detected header row, skipping")

		missing := []string{}
		if mapping.Quantity == -1 {
			missing = append(missing, "Quantity")
		}
		if mapping.UnitPrice == -1 {
			missing = append(missing, "Unit Price")
		}
		if len(missing) > 0 {
			result.Errors = append(result.Errors, fmt.Errorf("required columns not found in header: %s", strings.Join(missing, ", ")))
			return result
		}
	} else if len(rows[0]) >= 3 {
		// Quantity column is not numeric: treat as an unrecognised header
		if _, err := strconv.ParseFloat(strings.TrimSpace(rows[0][2]), 64); err != nil {
			startRow = 1
			result.Warnings = append(result.Warnings, "Detected header row, skipping")
		}
	}

	for i := startRow; i < len(rows); i++ {
		row := rows[i]
		lineNum := i + 1

		if isEmptyRow(row) {
			continue
		}

		rowLabel := fmt.Sprintf("%s %d", rowPrefix, lineNum)
		item, err, warning := parseRow(row, mapping, rowLabel, lineNum, len(result.Items))
		if err != nil {
			result.Errors = append(result.Errors, err)
			continue
		}
		if warning != "" {
			result.Warnings = append(result.Warnings, warning)
		}

		result.Items = append(result.Items, item)
	}

	return result
}
