package batch

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/piwi3910/PhotoBOM/internal/analyzer"
	"github.com/piwi3910/PhotoBOM/internal/metrics"
	"github.com/piwi3910/PhotoBOM/internal/model"
	"github.com/piwi3910/PhotoBOM/internal/project"
	"github.com/piwi3910/PhotoBOM/internal/store"
)

type fakeHistory struct {
	runs []store.Run
	err  error
}

func (f *fakeHistory) RecordRun(_ context.Context, run store.Run) (string, error) {
	f.runs = append(f.runs, run)
	return run.ID, f.err
}

func writePNG(t *testing.T, path string, img image.Image) string {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

func solid(c color.RGBA) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 160, 120))
	for y := 0; y < 120; y++ {
		for x := 0; x < 160; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

// fixture writes a table, an engine, a broken file and a chair, in that order.
func fixture(t *testing.T) []string {
	t.Helper()
	dir := t.TempDir()
	broken := filepath.Join(dir, "broken.png")
	require.NoError(t, os.WriteFile(broken, []byte("not an image"), 0644))
	return []string{
		writePNG(t, filepath.Join(dir, "table.png"), project.DemoTableImage()),
		writePNG(t, filepath.Join(dir, "engine.png"), solid(color.RGBA{128, 128, 128, 255})),
		broken,
		writePNG(t, filepath.Join(dir, "chair.png"), solid(color.RGBA{200, 160, 120, 255})),
	}
}

func newTestProcessor(policy model.ValidationPolicy) (*Processor, *fakeHistory) {
	cfg := model.DefaultAppConfig()
	cfg.Validation = policy
	cfg.Classifier.DuplicateDistance = 0
	p := NewProcessor(cfg, zap.NewNop())
	h := &fakeHistory{}
	p.History = h
	p.Metrics = metrics.NewRecorder()
	p.Now = func() time.Time { return time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC) }
	return p, h
}

func TestRunSkipsFailuresAndKeepsOrder(t *testing.T) {
	p, history := newTestProcessor(model.DefaultValidationPolicy())

	out := p.Run(context.Background(), fixture(t))

	require.Equal(t, 3, out.Processed())
	assert.Equal(t, "table.png", out.Results[0].Name)
	assert.Equal(t, "engine.png", out.Results[1].Name)
	assert.Equal(t, "chair.png", out.Results[2].Name)
	assert.Equal(t, model.CategoryWood, out.Results[0].Category)
	assert.Equal(t, model.CategoryMechanical, out.Results[1].Category)
	assert.Equal(t, model.TemplateChair, out.Results[2].Template)

	require.Len(t, out.Failures, 1)
	assert.Equal(t, []string{"broken.png"}, out.FailedNames())
	var unsupported *analyzer.UnsupportedFormatError
	assert.True(t, errors.As(out.Failures[0].Err, &unsupported))

	require.NotNil(t, out.Summary)
	assert.Nil(t, out.ValidationErr)
	assert.InDelta(t, 4464.50, out.Summary.OverallTotal, 1e-9)

	require.Len(t, history.runs, 1)
	run := history.runs[0]
	assert.Equal(t, out.RunID, run.ID)
	assert.Equal(t, 4, run.Images)
	assert.Equal(t, 1, run.Failures)
	assert.True(t, run.Validated)
	require.NotNil(t, run.OverallTotal)
	assert.Len(t, run.Assemblies, 3)

	assert.Equal(t, 3.0, testutil.ToFloat64(p.Metrics.ImagesTotal.WithLabelValues(metrics.OutcomeProcessed)))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.Metrics.ImagesTotal.WithLabelValues(metrics.OutcomeSkipped)))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.Metrics.RunsTotal.WithLabelValues("ok")))
}

func TestRunWithholdsSummaryWhenEnforced(t *testing.T) {
	p, history := newTestProcessor(model.DefaultValidationPolicy())

	out := p.Run(context.Background(), fixture(t)[:2])

	assert.Equal(t, 2, out.Processed())
	assert.Nil(t, out.Summary)
	require.NotNil(t, out.ValidationErr)
	assert.Equal(t, []string{"need at least 3 assemblies, got 2"}, out.ValidationErr.Violations)

	require.Len(t, history.runs, 1)
	assert.Nil(t, history.runs[0].OverallTotal)
	assert.False(t, history.runs[0].Validated)
	assert.Equal(t, out.ValidationErr.Violations, history.runs[0].Violations)
	assert.Equal(t, 1.0, testutil.ToFloat64(p.Metrics.ValidationFailures))
}

func TestRunInformationalValidation(t *testing.T) {
	policy := model.DefaultValidationPolicy()
	policy.Enforce = false
	p, history := newTestProcessor(policy)

	out := p.Run(context.Background(), fixture(t)[:1])

	require.NotNil(t, out.Summary)
	assert.Nil(t, out.ValidationErr)
	assert.InDelta(t, 232.70, out.Summary.OverallTotal, 1e-9)
	assert.Len(t, out.Summary.Violations, 1)
	assert.False(t, history.runs[0].Validated)
	require.NotNil(t, history.runs[0].OverallTotal)
}

func TestRunNoImages(t *testing.T) {
	p, _ := newTestProcessor(model.DefaultValidationPolicy())
	out := p.Run(context.Background(), nil)
	assert.Equal(t, 0, out.Processed())
	assert.NotNil(t, out.ValidationErr)
}

func TestRunFlagsDuplicates(t *testing.T) {
	p, _ := newTestProcessor(model.DefaultValidationPolicy())
	p.DuplicateDistance = 10

	dir := t.TempDir()
	paths := []string{
		writePNG(t, filepath.Join(dir, "table.png"), project.DemoTableImage()),
		writePNG(t, filepath.Join(dir, "shelf.png"), project.DemoTableImage()),
	}
	out := p.Run(context.Background(), paths)

	require.Len(t, out.Results, 2)
	assert.False(t, out.Results[0].Duplicate)
	assert.True(t, out.Results[1].Duplicate, "identical photo is flagged")
	assert.Equal(t, model.TemplateShelf, out.Results[1].Template, "duplicates are still priced")
	assert.Equal(t, 1.0, testutil.ToFloat64(p.Metrics.DuplicatesTotal))
}

func TestRunCancelledContext(t *testing.T) {
	p, _ := newTestProcessor(model.DefaultValidationPolicy())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := p.Run(ctx, fixture(t))
	assert.Empty(t, out.Results)
	require.Len(t, out.Failures, 4)
	assert.ErrorIs(t, out.Failures[0].Err, context.Canceled)
}

func TestRunHistoryErrorIsNotFatal(t *testing.T) {
	p, history := newTestProcessor(model.DefaultValidationPolicy())
	history.err = errors.New("disk full")

	out := p.Run(context.Background(), fixture(t))
	assert.NotNil(t, out.Summary)
}

func TestAnalyzeAttachesMeta(t *testing.T) {
	p, _ := newTestProcessor(model.DefaultValidationPolicy())
	photo := &analyzer.Photo{
		Name:  "motor_mount.png",
		Image: solid(color.RGBA{200, 160, 120, 255}),
		Meta:  &model.PhotoMeta{Make: "Nikon"},
	}

	result, analysis, err := p.Analyze(photo, "upload")
	require.NoError(t, err)
	assert.Equal(t, model.TemplateEngine, result.Template)
	assert.Equal(t, model.CategoryWood, analysis.Category, "advisory only")
	assert.Equal(t, model.CategoryWood, result.Category)
	assert.Equal(t, "Nikon", result.Meta.Make)
	assert.Equal(t, "upload", result.Source)
}
