package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/PhotoBOM/internal/model"
	"github.com/piwi3910/PhotoBOM/internal/store"
)

func TestFormatCurrency(t *testing.T) {
	tests := map[float64]string{
		4095:    "$ 4,095.00",
		232.7:   "$ 232.70",
		0.08:    "$ 0.08",
		0:       "$ 0.00",
		1234567: "$ 1,234,567.00",
	}
	for in, want := range tests {
		assert.Equal(t, want, FormatCurrency(in))
	}
}

func TestRowsIndentByLevel(t *testing.T) {
	rows := Rows([]model.LineItem{
		{ItemNo: "1", Level: 0, PartName: "Cabinet", Quantity: 1, UnitPrice: 10, Subtotal: 10},
		{ItemNo: "1.1", Level: 1, PartName: "Door", Quantity: 2, UnitPrice: 2.5, Subtotal: 5},
		{ItemNo: "1.1.1", Level: 2, PartName: "Hinge", Quantity: 4, UnitPrice: 0.25, Subtotal: 1},
	})
	require.Len(t, rows, 3)
	assert.Equal(t, "Cabinet", rows[0][1])
	assert.Equal(t, "  Door", rows[1][1])
	assert.Equal(t, "    Hinge", rows[2][1])
	assert.Equal(t, []string{"1.1", "  Door", "2", "$ 2.50", "$ 5.00", ""}, rows[1])
}

func TestWriteAssembly(t *testing.T) {
	r, err := model.NewAssemblyResult("demo_engine.png", "input_images/demo_engine.png", model.CategoryMechanical)
	require.NoError(t, err)

	var buf bytes.Buffer
	WriteAssembly(&buf, r)
	out := buf.String()

	assert.Contains(t, out, "=== Bill of Materials (demo_engine.png) ===")
	assert.Contains(t, out, "Item No")
	assert.Contains(t, out, "Cylinder Block")
	assert.Contains(t, out, "$ 850.00")
	assert.Contains(t, out, "Assembly Total: $ 4,095.00")
	assert.Contains(t, out, "+") // grid borders
}

func TestWriteSummary(t *testing.T) {
	var buf bytes.Buffer
	WriteSummary(&buf, model.Summary{
		Assemblies: []model.AssemblySummary{
			{Name: "table.png", Total: 232.70, PartCount: 10},
			{Name: "chair.jpg", Total: 136.80, PartCount: 10},
		},
		OverallTotal: 369.50,
	})
	out := buf.String()

	assert.Contains(t, out, " - table.png: $ 232.70 (10 parts)")
	assert.Contains(t, out, "Overall Total: $ 369.50")
	assert.Less(t, strings.Index(out, "table.png"), strings.Index(out, "chair.jpg"))
}

func TestWriteValidationFailure(t *testing.T) {
	var buf bytes.Buffer
	WriteValidationFailure(&buf, &model.ValidationError{Violations: []string{"need at least 3 assemblies, got 2"}}, model.DefaultValidationPolicy())
	out := buf.String()

	assert.Contains(t, out, "[ERROR] Validation failed: need at least 3 assemblies and at least 10 parts in each.")
	assert.Contains(t, out, "got 2")
	assert.Contains(t, out, "[HINT] Provide 3+ images")
}

func TestWriteTemplate(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTemplate(&buf, model.GetTemplate(model.TemplateTable)))
	out := buf.String()

	assert.Contains(t, out, "Wood Table [table]")
	assert.Contains(t, out, "Keywords: (default)")
	assert.Contains(t, out, "10 top-level")
	assert.Contains(t, out, "Template Total: $ 232.70")
}

func TestWriteRuns(t *testing.T) {
	var buf bytes.Buffer
	WriteRuns(&buf, nil)
	assert.Equal(t, "No runs recorded.\n", buf.String())

	total := 4464.5
	start := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	buf.Reset()
	WriteRuns(&buf, []store.Run{
		{ID: "run-a", StartedAt: start, Images: 4, Failures: 1, Validated: true, OverallTotal: &total},
		{ID: "run-b", StartedAt: start, Images: 2, Violations: []string{"need at least 3 assemblies, got 2"}},
	})
	out := buf.String()
	assert.Contains(t, out, "run-a")
	assert.Contains(t, out, "$ 4,464.50")
	assert.Contains(t, out, "withheld")
}

func TestWriteRun(t *testing.T) {
	start := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	var buf bytes.Buffer
	WriteRun(&buf, store.Run{
		ID:         "run-b",
		StartedAt:  start,
		FinishedAt: start.Add(1500 * time.Millisecond),
		Images:     1,
		Assemblies: []store.RunAssembly{{Name: "shelf.png", Template: model.TemplateShelf, Category: model.CategoryWood, PartCount: 10, Total: 201.62, Duplicate: true}},
		Violations: []string{"need at least 3 assemblies, got 1"},
	})
	out := buf.String()
	assert.Contains(t, out, "=== Run run-b ===")
	assert.Contains(t, out, "took 1.5s")
	assert.Contains(t, out, "shelf.png (duplicate)")
	assert.Contains(t, out, "$ 201.62")
	assert.Contains(t, out, "Overall Total: -")
	assert.True(t, strings.Contains(out, "[WARN] need at least 3 assemblies, got 1"))
}
