// Package batch runs the photo to BOM pipeline over a list of images.
package batch

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/piwi3910/PhotoBOM/internal/analyzer"
	"github.com/piwi3910/PhotoBOM/internal/metrics"
	"github.com/piwi3910/PhotoBOM/internal/model"
	"github.com/piwi3910/PhotoBOM/internal/store"
)

// RunRecorder persists finished runs. *store.Store implements it.
type RunRecorder interface {
	RecordRun(ctx context.Context, run store.Run) (string, error)
}

// Failure is an image that was skipped.
type Failure struct {
	Path string `json:"path"`
	Err  error  `json:"-"`
}

// Outcome is the result of one batch run. Summary is nil when the
// validation gate withheld it, in which case ValidationErr is set.
type Outcome struct {
	RunID         string
	StartedAt     time.Time
	FinishedAt    time.Time
	Results       []model.AssemblyResult
	Failures      []Failure
	Summary       *model.Summary
	ValidationErr *model.ValidationError
}

// Processed reports how many images produced a result.
func (o Outcome) Processed() int {
	return len(o.Results)
}

// Processor turns image files into priced assemblies. The zero value is not
// usable; create one with NewProcessor.
type Processor struct {
	Classifier        *analyzer.Classifier
	Policy            model.ValidationPolicy
	DuplicateDistance int

	Logger  *zap.Logger
	Metrics *metrics.Recorder // optional
	History RunRecorder       // optional

	Now func() time.Time
}

// NewProcessor builds a processor from the classifier and validation
// sections of the app config.
func NewProcessor(cfg model.AppConfig, logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{
		Classifier:        analyzer.NewClassifier(analyzer.ThresholdsFromConfig(cfg.Classifier)),
		Policy:            cfg.Validation,
		DuplicateDistance: cfg.Classifier.DuplicateDistance,
		Logger:            logger,
		Now:               time.Now,
	}
}

// Analyze prices one decoded photo. source is recorded on the result as-is.
func (p *Processor) Analyze(photo *analyzer.Photo, source string) (model.AssemblyResult, analyzer.Analysis, error) {
	analysis, err := p.Classifier.Classify(photo.Image)
	if err != nil {
		return model.AssemblyResult{}, analyzer.Analysis{}, err
	}

	result, err := model.NewAssemblyResult(photo.Name, source, analysis.Category)
	if err != nil {
		return model.AssemblyResult{}, analyzer.Analysis{}, err
	}
	result.Meta = photo.Meta

	log := p.Logger.With(zap.String("image", photo.Name))
	log.Debug("classified image",
		zap.String("category", analysis.Category.String()),
		zap.Float64("hue", analysis.HSV.H),
		zap.Float64("saturation", analysis.HSV.S),
		zap.Float64("value", analysis.HSV.V),
		zap.Bool("downsampled", analysis.Downsampled),
	)
	if expected := model.ExpectedCategory(result.Template); analysis.Category != expected {
		log.Warn("image color does not match the selected BOM; using it anyway",
			zap.String("category", analysis.Category.String()),
			zap.String("expected", expected.String()),
			zap.String("template", string(result.Template)),
		)
	}
	return result, analysis, nil
}

// ProcessFile loads, classifies and prices the image at path.
func (p *Processor) ProcessFile(path string) (model.AssemblyResult, *analyzer.Photo, error) {
	photo, err := analyzer.Load(path)
	if err != nil {
		return model.AssemblyResult{}, nil, err
	}
	result, _, err := p.Analyze(photo, path)
	if err != nil {
		return model.AssemblyResult{}, nil, err
	}
	return result, photo, nil
}

// Run processes paths in order. Images that fail are logged, recorded in
// Failures and left out; the rest keep their input order. The validation
// gate runs once over the completed results.
func (p *Processor) Run(ctx context.Context, paths []string) Outcome {
	now := p.Now
	if now == nil {
		now = time.Now
	}

	out := Outcome{
		RunID:     uuid.NewString(),
		StartedAt: now(),
		Results:   []model.AssemblyResult{},
	}
	log := p.Logger.With(zap.String("run_id", out.RunID))
	dedup := analyzer.NewDuplicateFilter(p.DuplicateDistance)

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			out.Failures = append(out.Failures, Failure{Path: path, Err: err})
			continue
		}

		start := time.Now()
		result, photo, err := p.ProcessFile(path)
		if err != nil {
			log.Warn("skipping image", zap.String("path", path), zap.Error(err))
			p.Metrics.RecordSkip()
			out.Failures = append(out.Failures, Failure{Path: path, Err: err})
			continue
		}

		if dedup.Seen(photo.Image) {
			result.Duplicate = true
			p.Metrics.RecordDuplicate()
			log.Warn("image looks like a duplicate of an earlier photo in this run",
				zap.String("image", result.Name))
		}

		p.Metrics.RecordImage(result.Category.String(), string(result.Template), result.GrandTotal, time.Since(start))
		out.Results = append(out.Results, result)
	}

	summary, err := model.Aggregate(out.Results, p.Policy)
	var vErr *model.ValidationError
	switch {
	case errors.As(err, &vErr):
		out.ValidationErr = vErr
		log.Warn("validation failed; summary withheld", zap.Strings("violations", vErr.Violations))
		p.Metrics.RecordRun(nil)
	case err != nil:
		log.Error("aggregate failed", zap.Error(err))
		p.Metrics.RecordRun(nil)
	default:
		out.Summary = &summary
		for _, v := range summary.Violations {
			log.Info("validation note", zap.String("violation", v))
		}
		p.Metrics.RecordRun(&summary.OverallTotal)
	}

	out.FinishedAt = now()
	p.record(ctx, log, out)
	return out
}

func (p *Processor) record(ctx context.Context, log *zap.Logger, out Outcome) {
	if p.History == nil {
		return
	}
	run := store.Run{
		ID:         out.RunID,
		StartedAt:  out.StartedAt,
		FinishedAt: out.FinishedAt,
		Images:     len(out.Results) + len(out.Failures),
		Failures:   len(out.Failures),
		Validated:  out.Summary != nil && len(out.Summary.Violations) == 0,
		Assemblies: store.AssembliesFrom(out.Results),
	}
	if out.Summary != nil {
		total := out.Summary.OverallTotal
		run.OverallTotal = &total
		run.Violations = out.Summary.Violations
	} else if out.ValidationErr != nil {
		run.Violations = out.ValidationErr.Violations
	}
	if _, err := p.History.RecordRun(ctx, run); err != nil {
		log.Warn("failed to record run history", zap.Error(err))
	}
}

// FailedNames returns the base names of the skipped images.
func (o Outcome) FailedNames() []string {
	names := make([]string, 0, len(o.Failures))
	for _, f := range o.Failures {
		names = append(names, filepath.Base(f.Path))
	}
	return names
}
