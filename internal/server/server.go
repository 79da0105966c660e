// Package server exposes the photo to BOM pipeline over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/piwi3910/PhotoBOM/internal/analyzer"
	"github.com/piwi3910/PhotoBOM/internal/batch"
	"github.com/piwi3910/PhotoBOM/internal/metrics"
	"github.com/piwi3910/PhotoBOM/internal/model"
	"github.com/piwi3910/PhotoBOM/internal/store"
)

// MaxUploadBytes caps the body of POST /analyze.
const MaxUploadBytes = 32 << 20

// RunHistory reads stored runs. *store.Store implements it.
type RunHistory interface {
	ListRuns(ctx context.Context, limit int) ([]store.Run, error)
	GetRun(ctx context.Context, id string) (store.Run, error)
}

type server struct {
	processor *batch.Processor
	history   RunHistory
	metrics   *metrics.Recorder
	logger    *zap.Logger
}

// templateInfo is the catalog listing entry.
type templateInfo struct {
	ID               model.TemplateID `json:"id"`
	Name             string           `json:"name"`
	Keywords         []string         `json:"keywords"`
	ExpectedCategory model.Category   `json:"expected_category"`
	PartCount        int              `json:"part_count"`
	Total            float64          `json:"total"`
}

// templateDetail is a template with computed subtotals.
type templateDetail struct {
	templateInfo
	Items     []model.LineItem `json:"items"`
	Structure model.Structure  `json:"structure"`
}

type analyzeResponse struct {
	Result   model.AssemblyResult `json:"result"`
	Analysis analyzer.Analysis    `json:"analysis"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// New returns the HTTP handler. history and rec may be nil, in which case
// /runs answers 503 and /metrics 404.
func New(p *batch.Processor, history RunHistory, rec *metrics.Recorder, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &server{processor: p, history: history, metrics: rec, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	r.Get("/templates", s.handleTemplates)
	r.Get("/templates/{id}", s.handleTemplate)
	r.Post("/analyze", s.handleAnalyze)
	r.Get("/runs", s.handleRuns)
	r.Get("/runs/{id}", s.handleRun)
	if rec != nil {
		r.Handle("/metrics", rec.Handler())
	}
	return r
}

func (s *server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func infoFor(bom model.BOM, total float64) templateInfo {
	return templateInfo{
		ID:               bom.Template,
		Name:             bom.Name,
		Keywords:         model.Keywords(bom.Template),
		ExpectedCategory: model.ExpectedCategory(bom.Template),
		PartCount:        len(bom.Items),
		Total:            total,
	}
}

func (s *server) handleTemplates(w http.ResponseWriter, r *http.Request) {
	var out []templateInfo
	for _, bom := range model.Templates() {
		_, total, err := model.ComputeTotals(bom.Items)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		out = append(out, infoFor(bom, total))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *server) handleTemplate(w http.ResponseWriter, r *http.Request) {
	bom, ok := model.LookupTemplate(model.TemplateID(chi.URLParam(r, "id")))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown template")
		return
	}
	items, total, err := model.ComputeTotals(bom.Items)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, templateDetail{
		templateInfo: infoFor(bom, total),
		Items:        items,
		Structure:    bom.Structure(),
	})
}

// analyzeStatus maps pipeline errors to HTTP status codes.
func analyzeStatus(err error) int {
	var (
		unsupported *analyzer.UnsupportedFormatError
		decode      *analyzer.DecodeError
		empty       *analyzer.EmptyImageError
		tooLarge    *http.MaxBytesError
	)
	switch {
	case errors.As(err, &unsupported):
		return http.StatusUnsupportedMediaType
	case errors.As(err, &decode), errors.As(err, &empty):
		return http.StatusUnprocessableEntity
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

func (s *server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("filename")
	if name == "" {
		name = "upload"
	}

	start := time.Now()
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxUploadBytes))
	if err != nil {
		writeError(w, analyzeStatus(err), "failed to read image body")
		return
	}

	photo, err := analyzer.Decode(name, data)
	if err != nil {
		s.metrics.RecordSkip()
		s.logger.Warn("rejected upload", zap.String("filename", name), zap.Error(err))
		writeError(w, analyzeStatus(err), err.Error())
		return
	}

	result, analysis, err := s.processor.Analyze(photo, name)
	if err != nil {
		s.metrics.RecordSkip()
		writeError(w, analyzeStatus(err), err.Error())
		return
	}
	s.metrics.RecordImage(result.Category.String(), string(result.Template), result.GrandTotal, time.Since(start))

	writeJSON(w, http.StatusOK, analyzeResponse{Result: result, Analysis: analysis})
}

func (s *server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeError(w, http.StatusServiceUnavailable, "run history is disabled")
		return
	}
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}
	runs, err := s.history.ListRuns(r.Context(), limit)
	if err != nil {
		s.logger.Error("list runs", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list runs")
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *server) handleRun(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeError(w, http.StatusServiceUnavailable, "run history is disabled")
		return
	}
	run, err := s.history.GetRun(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrRunNotFound) {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}
	if err != nil {
		s.logger.Error("get run", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load run")
		return
	}
	writeJSON(w, http.StatusOK, run)
}
