// Package metrics provides Prometheus metrics for photo processing runs.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome label values for ImagesTotal.
const (
	OutcomeProcessed = "processed"
	OutcomeSkipped   = "skipped"
)

// Recorder owns a registry and the metrics registered on it.
type Recorder struct {
	registry *prometheus.Registry

	ImagesTotal          *prometheus.CounterVec
	ClassificationsTotal *prometheus.CounterVec
	DuplicatesTotal      prometheus.Counter
	RunsTotal            *prometheus.CounterVec
	ValidationFailures   prometheus.Counter
	ProcessDuration      prometheus.Histogram
	AssemblyTotal        *prometheus.GaugeVec
	OverallTotal         prometheus.Gauge
}

// NewRecorder creates a recorder on a fresh registry.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,

		ImagesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "photobom_images_total",
				Help: "Images seen by the batch processor",
			},
			[]string{"outcome"},
		),

		ClassificationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "photobom_classifications_total",
				Help: "Color classification results",
			},
			[]string{"category"},
		),

		DuplicatesTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "photobom_duplicate_photos_total",
				Help: "Photos perceptually identical to an earlier photo in the same run",
			},
		),

		RunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "photobom_runs_total",
				Help: "Completed batch runs",
			},
			[]string{"status"},
		),

		ValidationFailures: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "photobom_validation_failures_total",
				Help: "Runs whose summary was withheld by the validation gate",
			},
		),

		ProcessDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "photobom_image_duration_seconds",
				Help:    "Time taken to decode, classify and price one image",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
			},
		),

		AssemblyTotal: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "photobom_assembly_total_dollars",
				Help: "Grand total of the most recent BOM per template",
			},
			[]string{"template"},
		),

		OverallTotal: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "photobom_run_total_dollars",
				Help: "Overall total of the most recent validated run",
			},
		),
	}
}

// RecordImage records one successfully processed image.
func (r *Recorder) RecordImage(category, template string, total float64, duration time.Duration) {
	if r == nil {
		return
	}
	r.ImagesTotal.WithLabelValues(OutcomeProcessed).Inc()
	r.ClassificationsTotal.WithLabelValues(category).Inc()
	r.AssemblyTotal.WithLabelValues(template).Set(total)
	r.ProcessDuration.Observe(duration.Seconds())
}

// RecordSkip records an image that failed and was excluded.
func (r *Recorder) RecordSkip() {
	if r == nil {
		return
	}
	r.ImagesTotal.WithLabelValues(OutcomeSkipped).Inc()
}

// RecordDuplicate records a duplicate-photo advisory.
func (r *Recorder) RecordDuplicate() {
	if r == nil {
		return
	}
	r.DuplicatesTotal.Inc()
}

// RecordRun records a finished run. A nil overall total means the summary
// was withheld.
func (r *Recorder) RecordRun(overall *float64) {
	if r == nil {
		return
	}
	if overall == nil {
		r.RunsTotal.WithLabelValues("withheld").Inc()
		r.ValidationFailures.Inc()
		return
	}
	r.RunsTotal.WithLabelValues("ok").Inc()
	r.OverallTotal.Set(*overall)
}

// Gatherer exposes the registry for scraping and tests.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// WriteTextfile writes the registry to path for the node exporter textfile
// collector.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
