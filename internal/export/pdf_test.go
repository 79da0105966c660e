package export

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/PhotoBOM/internal/model"
)

// buildTestResults creates a realistic three-assembly batch for testing.
func buildTestResults(t *testing.T) []model.AssemblyResult {
	t.Helper()
	var results []model.AssemblyResult
	for _, name := range []string{"demo_engine.png", "table.png", "chair.jpg"} {
		r, err := model.NewAssemblyResult(name, filepath.Join("input_images", name), model.CategoryWood)
		if err != nil {
			t.Fatalf("NewAssemblyResult(%s): %v", name, err)
		}
		results = append(results, r)
	}
	results[0].Category = model.CategoryMechanical
	results[0].Meta = &model.PhotoMeta{Make: "Canon", Model: "EOS 5D", TakenAt: "2024:01:02 10:11:12"}
	results[2].Duplicate = true
	return results
}

func TestExportPDF_CreatesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.pdf")

	results := buildTestResults(t)
	summary, err := model.Aggregate(results, model.DefaultValidationPolicy())
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}

	if err := ExportPDF(path, results, &summary, nil); err != nil {
		t.Fatalf("ExportPDF returned error: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("PDF file was not created: %v", err)
	}
	if info.Size() < 1000 {
		t.Errorf("PDF file seems too small: %d bytes", info.Size())
	}
}

func TestExportPDF_WithheldSummary(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "withheld.pdf")

	results := buildTestResults(t)[:2]
	err := ExportPDF(path, results, nil, []string{"need at least 3 assemblies, got 2"})
	if err != nil {
		t.Fatalf("ExportPDF returned error: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("PDF file was not created: %v", err)
	}
}

func TestExportPDF_LongBOMPaginates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "long.pdf")

	var items []model.LineItem
	for i := 0; i < 60; i++ {
		items = append(items, model.LineItem{ItemNo: "x", PartName: "Bolt", Quantity: 1, UnitPrice: 0.1, Subtotal: 0.1})
	}
	results := []model.AssemblyResult{{Name: "long.png", Template: model.TemplateTable, Items: items, GrandTotal: 6}}

	if err := ExportPDF(path, results, nil, nil); err != nil {
		t.Fatalf("ExportPDF returned error: %v", err)
	}
}

func TestExportPDF_NoResults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.pdf")
	if err := ExportPDF(path, nil, nil, nil); err == nil {
		t.Fatal("expected error for empty results, got nil")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("no file should be written for empty results")
	}
}
