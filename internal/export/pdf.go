package export

import (
	"fmt"
	"strconv"

	"github.com/go-pdf/fpdf"

	"github.com/piwi3910/PhotoBOM/internal/model"
	"github.com/piwi3910/PhotoBOM/internal/report"
)

// categoryColors tints the category badge on each assembly page.
var categoryColors = map[model.Category][3]int{
	model.CategoryWood:       {210, 180, 140},
	model.CategoryMechanical: {176, 190, 197},
	model.CategoryUnknown:    {230, 230, 230},
}

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	rowHeight    = 6.0
	contentWidth = pageWidth - marginLeft - marginRight
)

// bomColWidths matches report.Header.
var bomColWidths = []float64{18, 62, 20, 30, 30, 107}

// ExportPDF writes one page per assembly followed by a summary page.
// A nil summary means the validation gate withheld it; the summary page then
// lists the violations instead of totals.
func ExportPDF(path string, results []model.AssemblyResult, summary *model.Summary, violations []string) error {
	if len(results) == 0 {
		return fmt.Errorf("no assemblies to export")
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)

	for i, r := range results {
		pdf.AddPage()
		renderAssemblyPage(pdf, r, i+1)
	}

	pdf.AddPage()
	renderSummaryPage(pdf, summary, violations)

	return pdf.OutputFileAndClose(path)
}

// renderAssemblyPage draws the BOM table for one assembly, continuing on
// further pages if the items overflow.
func renderAssemblyPage(pdf *fpdf.Fpdf, r model.AssemblyResult, num int) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(marginLeft, marginTop)
	title := fmt.Sprintf("Assembly %d: %s (%s)", num, r.BOMName, r.Name)
	pdf.CellFormat(contentWidth, headerHeight, title, "", 0, "L", false, 0, "")

	// Category badge
	col := categoryColors[model.Category(r.Category.String())]
	pdf.SetFillColor(col[0], col[1], col[2])
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetXY(pageWidth-marginRight-35, marginTop+3)
	pdf.CellFormat(35, 6, r.Category.String(), "1", 0, "C", true, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetXY(marginLeft, marginTop+headerHeight)
	info := fmt.Sprintf("Template: %s | Source: %s", r.Template, r.Source)
	if r.Meta != nil {
		info += fmt.Sprintf(" | Camera: %s %s", r.Meta.Make, r.Meta.Model)
		if r.Meta.TakenAt != "" {
			info += " | Taken: " + r.Meta.TakenAt
		}
	}
	pdf.CellFormat(contentWidth, 5, info, "", 0, "L", false, 0, "")

	y := marginTop + headerHeight + 10
	y = drawBOMHeader(pdf, y)

	pdf.SetFont("Helvetica", "", 8)
	for i, row := range report.Rows(r.Items) {
		if y+rowHeight > pageHeight-marginBottom-10 {
			pdf.AddPage()
			y = drawBOMHeader(pdf, marginTop)
			pdf.SetFont("Helvetica", "", 8)
		}
		if i%2 == 0 {
			pdf.SetFillColor(245, 245, 245)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}
		x := marginLeft
		for j, cell := range row {
			align := "L"
			if j >= 2 && j <= 4 {
				align = "R"
			}
			pdf.SetXY(x, y)
			pdf.CellFormat(bomColWidths[j], rowHeight, cell, "1", 0, align, true, 0, "")
			x += bomColWidths[j]
		}
		y += rowHeight
	}

	y += 4
	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(contentWidth, 7, "Assembly Total: "+report.FormatCurrency(r.GrandTotal), "", 0, "R", false, 0, "")

	if r.Duplicate {
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetTextColor(200, 0, 0)
		pdf.SetXY(marginLeft, y+8)
		pdf.CellFormat(contentWidth, 5, "Note: photo looks like an earlier photo in this batch", "", 0, "L", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
	}
}

func drawBOMHeader(pdf *fpdf.Fpdf, y float64) float64 {
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	x := marginLeft
	for i, header := range report.Header {
		pdf.SetXY(x, y)
		pdf.CellFormat(bomColWidths[i], rowHeight, header, "1", 0, "C", true, 0, "")
		x += bomColWidths[i]
	}
	return y + rowHeight
}

// renderSummaryPage draws the cross-assembly summary.
func renderSummaryPage(pdf *fpdf.Fpdf, summary *model.Summary, violations []string) {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(contentWidth, 10, "Bill of Materials Summary", "", 0, "L", false, 0, "")

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Line(marginLeft, marginTop+12, pageWidth-marginRight, marginTop+12)

	y := marginTop + 18

	if summary == nil {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.SetTextColor(200, 0, 0)
		pdf.SetXY(marginLeft, y)
		pdf.CellFormat(contentWidth, 7, "Summary withheld: validation failed", "", 0, "L", false, 0, "")
		y += 8
		pdf.SetFont("Helvetica", "", 9)
		pdf.SetTextColor(0, 0, 0)
		for _, v := range violations {
			pdf.SetXY(marginLeft+5, y)
			pdf.CellFormat(contentWidth-5, 5, "- "+v, "", 0, "L", false, 0, "")
			y += 5
		}
		renderFooter(pdf)
		return
	}

	colWidths := []float64{15, 90, 50, 30, 40}
	headers := []string{"#", "Assembly", "Template", "Parts", "Total"}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	x := marginLeft
	for i, h := range headers {
		pdf.SetXY(x, y)
		pdf.CellFormat(colWidths[i], rowHeight, h, "1", 0, "C", true, 0, "")
		x += colWidths[i]
	}
	y += rowHeight

	pdf.SetFont("Helvetica", "", 9)
	for i, a := range summary.Assemblies {
		if i%2 == 0 {
			pdf.SetFillColor(245, 245, 245)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}
		row := []string{
			strconv.Itoa(i + 1),
			a.Name,
			string(a.Template),
			strconv.Itoa(a.PartCount),
			report.FormatCurrency(a.Total),
		}
		x = marginLeft
		for j, cell := range row {
			pdf.SetXY(x, y)
			pdf.CellFormat(colWidths[j], rowHeight, cell, "1", 0, "C", true, 0, "")
			x += colWidths[j]
		}
		y += rowHeight
	}

	y += 5
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Overall Total: "+report.FormatCurrency(summary.OverallTotal), "", 0, "L", false, 0, "")

	if len(summary.Violations) > 0 {
		y += 10
		pdf.SetFont("Helvetica", "B", 10)
		pdf.SetTextColor(200, 120, 0)
		pdf.SetXY(marginLeft, y)
		pdf.CellFormat(contentWidth, 6, "Validation warnings", "", 0, "L", false, 0, "")
		y += 7
		pdf.SetFont("Helvetica", "", 9)
		for _, v := range summary.Violations {
			pdf.SetXY(marginLeft+5, y)
			pdf.CellFormat(contentWidth-5, 5, "- "+v, "", 0, "L", false, 0, "")
			y += 5
		}
		pdf.SetTextColor(0, 0, 0)
	}

	renderFooter(pdf)
}

func renderFooter(pdf *fpdf.Fpdf) {
	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetXY(marginLeft, pageHeight-marginBottom)
	pdf.CellFormat(contentWidth, 4, "Generated by PhotoBOM - photo to bill of materials", "", 0, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
}
