// Package report renders BOMs and batch summaries for the console.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"

	"github.com/piwi3910/PhotoBOM/internal/model"
	"github.com/piwi3910/PhotoBOM/internal/store"
)

// Header is the column order of the console BOM table.
var Header = []string{"Item No", "Part Name", "Quantity", "Unit Price", "Subtotal", "Material"}

// Hint printed after a validation failure.
const ValidationHint = "Provide 3+ images named with keywords like 'table', 'chair', 'shelf' to select templates."

// FormatCurrency renders v as "$ " followed by a thousands-grouped
// two-decimal amount, e.g. "$ 4,095.00".
func FormatCurrency(v float64) string {
	return "$ " + humanize.FormatFloat("#,###.##", v)
}

// indent prefixes a part name with two spaces per level.
func indent(name string, level int) string {
	if level <= 0 {
		return name
	}
	return strings.Repeat("  ", level) + name
}

// Rows converts items to table rows in Header order.
func Rows(items []model.LineItem) [][]string {
	rows := make([][]string, 0, len(items))
	for _, it := range items {
		rows = append(rows, []string{
			it.ItemNo,
			indent(it.PartName, it.Level),
			strconv.Itoa(it.Quantity),
			FormatCurrency(it.UnitPrice),
			FormatCurrency(it.Subtotal),
			it.Material,
		})
	}
	return rows
}

// WriteTable renders items as a grid table.
func WriteTable(w io.Writer, items []model.LineItem) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(Header)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetRowLine(true)
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_LEFT,
	})
	table.AppendBulk(Rows(items))
	table.Render()
}

// WriteAssembly prints one assembly: heading, table and total.
func WriteAssembly(w io.Writer, r model.AssemblyResult) {
	fmt.Fprintf(w, "\n=== Bill of Materials (%s) ===\n", r.Name)
	WriteTable(w, r.Items)
	fmt.Fprintf(w, "\nAssembly Total: %s\n", FormatCurrency(r.GrandTotal))
}

// WriteSummary prints the per-assembly totals and overall total.
// Informational violations are listed after the totals.
func WriteSummary(w io.Writer, s model.Summary) {
	fmt.Fprintf(w, "\n=== Summary ===\n")
	for _, a := range s.Assemblies {
		fmt.Fprintf(w, " - %s: %s (%d parts)\n", a.Name, FormatCurrency(a.Total), a.PartCount)
	}
	fmt.Fprintf(w, "Overall Total: %s\n", FormatCurrency(s.OverallTotal))
	for _, v := range s.Violations {
		fmt.Fprintf(w, "[WARN] %s\n", v)
	}
}

// WriteValidationFailure prints the gate failure in place of the summary.
func WriteValidationFailure(w io.Writer, err *model.ValidationError, policy model.ValidationPolicy) {
	fmt.Fprintf(w, "\n[ERROR] Validation failed: need at least %d assemblies and at least %d parts in each.\n",
		policy.MinAssemblies, policy.MinItemsPerAssembly)
	for _, v := range err.Violations {
		fmt.Fprintf(w, " - %s\n", v)
	}
	fmt.Fprintf(w, "[HINT] %s\n", ValidationHint)
}

// WriteTemplate prints a catalog entry with its keywords, total and structure.
func WriteTemplate(w io.Writer, b model.BOM) error {
	items, total, err := model.ComputeTotals(b.Items)
	if err != nil {
		return err
	}
	kw := model.Keywords(b.Template)
	keywords := "(default)"
	if len(kw) > 0 {
		keywords = strings.Join(kw, ", ")
	}
	s := b.Structure()

	fmt.Fprintf(w, "\n=== %s [%s] ===\n", b.Name, b.Template)
	fmt.Fprintf(w, "Keywords: %s\n", keywords)
	fmt.Fprintf(w, "Structure: %d top-level, %d sub-assemblies, %d parts, %d rows\n",
		s.TopLevel, len(s.SubAssemblies), s.Parts, s.TotalItems)
	for _, sa := range s.SubAssemblies {
		fmt.Fprintf(w, "  %s %s: %d parts\n", sa.ItemNo, sa.Name, sa.PartRows)
	}
	WriteTable(w, items)
	fmt.Fprintf(w, "\nTemplate Total: %s\n", FormatCurrency(total))
	return nil
}

// runStatus describes how the validation gate treated a stored run.
func runStatus(r store.Run) string {
	switch {
	case r.OverallTotal == nil:
		return "withheld"
	case r.Validated:
		return "ok"
	default:
		return "unvalidated"
	}
}

func runTotal(r store.Run) string {
	if r.OverallTotal == nil {
		return "-"
	}
	return FormatCurrency(*r.OverallTotal)
}

// WriteRuns lists stored runs, newest first.
func WriteRuns(w io.Writer, runs []store.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return
	}
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Run", "Started", "Images", "Skipped", "Status", "Overall Total"})
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	for _, r := range runs {
		table.Append([]string{
			r.ID,
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			strconv.Itoa(r.Images),
			strconv.Itoa(r.Failures),
			runStatus(r),
			runTotal(r),
		})
	}
	table.Render()
}

// WriteRun prints one stored run with its assemblies.
func WriteRun(w io.Writer, r store.Run) {
	fmt.Fprintf(w, "\n=== Run %s ===\n", r.ID)
	fmt.Fprintf(w, "Started: %s (took %s)\n", r.StartedAt.Local().Format("2006-01-02 15:04:05"), r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond))
	fmt.Fprintf(w, "Images: %d, skipped: %d, status: %s\n", r.Images, r.Failures, runStatus(r))

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"#", "Image", "Template", "Category", "Parts", "Total"})
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	for i, a := range r.Assemblies {
		name := a.Name
		if a.Duplicate {
			name += " (duplicate)"
		}
		table.Append([]string{
			strconv.Itoa(i + 1),
			name,
			string(a.Template),
			a.Category.String(),
			strconv.Itoa(a.PartCount),
			FormatCurrency(a.Total),
		})
	}
	table.Render()

	fmt.Fprintf(w, "Overall Total: %s\n", runTotal(r))
	for _, v := range r.Violations {
		fmt.Fprintf(w, "[WARN] %s\n", v)
	}
}
