package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/piwi3910/PhotoBOM/internal/model"
)

// ErrRunNotFound is returned by GetRun for an unknown id.
var ErrRunNotFound = errors.New("run not found")

const violationSep = "\n"

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// RunAssembly is one processed image of a stored run.
type RunAssembly struct {
	Name      string           `json:"name"`
	Source    string           `json:"source"`
	Template  model.TemplateID `json:"template"`
	Category  model.Category   `json:"category"`
	PartCount int              `json:"part_count"`
	Total     float64          `json:"total"`
	Duplicate bool             `json:"duplicate,omitempty"`
}

// Run is a stored batch run. OverallTotal is nil when the summary was withheld.
type Run struct {
	ID           string        `json:"id"`
	StartedAt    time.Time     `json:"started_at"`
	FinishedAt   time.Time     `json:"finished_at"`
	Images       int           `json:"images"`
	Failures     int           `json:"failures"`
	Validated    bool          `json:"validated"`
	OverallTotal *float64      `json:"overall_total,omitempty"`
	Violations   []string      `json:"violations,omitempty"`
	Assemblies   []RunAssembly `json:"assemblies,omitempty"`
}

// AssembliesFrom converts batch results for storage.
func AssembliesFrom(results []model.AssemblyResult) []RunAssembly {
	out := make([]RunAssembly, 0, len(results))
	for _, r := range results {
		out = append(out, RunAssembly{
			Name:      r.Name,
			Source:    r.Source,
			Template:  r.Template,
			Category:  r.Category,
			PartCount: len(r.Items),
			Total:     r.GrandTotal,
			Duplicate: r.Duplicate,
		})
	}
	return out
}

// Store records runs in a SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and migrates it.
func Open(path string) (*Store, error) {
	db, err := openDB(path)
	if err != nil {
		return nil, err
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func cents(v float64) int64 {
	return int64(math.Round(v * 100))
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// RecordRun stores run and its assemblies in one transaction. An empty ID
// is replaced with a new UUID; the stored ID is returned.
func (s *Store) RecordRun(ctx context.Context, run Run) (string, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var overall sql.NullInt64
	if run.OverallTotal != nil {
		overall = sql.NullInt64{Int64: cents(*run.OverallTotal), Valid: true}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO runs (id, started_at, finished_at, image_count, failure_count, validated, overall_total_cents, violations)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.StartedAt.UTC().Format(timeLayout),
		run.FinishedAt.UTC().Format(timeLayout),
		run.Images,
		run.Failures,
		boolInt(run.Validated),
		overall,
		strings.Join(run.Violations, violationSep),
	); err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	for i, a := range run.Assemblies {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO run_assemblies (run_id, position, name, source, template, category, part_count, grand_total_cents, duplicate)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID, i, a.Name, a.Source, string(a.Template), a.Category.String(), a.PartCount, cents(a.Total), boolInt(a.Duplicate),
		); err != nil {
			return "", fmt.Errorf("insert assembly %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit run: %w", err)
	}
	return run.ID, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var (
		run               Run
		started, finished string
		validated         int
		overall           sql.NullInt64
		violations        string
	)
	if err := row.Scan(&run.ID, &started, &finished, &run.Images, &run.Failures, &validated, &overall, &violations); err != nil {
		return Run{}, err
	}

	var err error
	if run.StartedAt, err = time.Parse(timeLayout, started); err != nil {
		return Run{}, fmt.Errorf("parse started_at: %w", err)
	}
	if run.FinishedAt, err = time.Parse(timeLayout, finished); err != nil {
		return Run{}, fmt.Errorf("parse finished_at: %w", err)
	}
	run.Validated = validated != 0
	if overall.Valid {
		total := float64(overall.Int64) / 100
		run.OverallTotal = &total
	}
	if violations != "" {
		run.Violations = strings.Split(violations, violationSep)
	}
	return run, nil
}

const runColumns = `id, started_at, finished_at, image_count, failure_count, validated, overall_total_cents, violations`

// ListRuns returns the most recent runs first, without assemblies.
// limit <= 0 returns all runs.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `SELECT `+runColumns+` FROM runs ORDER BY started_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// GetRun returns a run with its assemblies in input order.
func (s *Store) GetRun(ctx context.Context, id string) (Run, error) {
	run, err := scanRun(s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return Run{}, fmt.Errorf("get run: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT name, source, template, category, part_count, grand_total_cents, duplicate
		FROM run_assemblies WHERE run_id = ? ORDER BY position`, id)
	if err != nil {
		return Run{}, fmt.Errorf("query assemblies: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			a                  RunAssembly
			template, category string
			totalCents         int64
			duplicate          int
		)
		if err := rows.Scan(&a.Name, &a.Source, &template, &category, &a.PartCount, &totalCents, &duplicate); err != nil {
			return Run{}, fmt.Errorf("scan assembly: %w", err)
		}
		a.Template = model.TemplateID(template)
		a.Category = model.Category(category)
		a.Total = float64(totalCents) / 100
		a.Duplicate = duplicate != 0
		run.Assemblies = append(run.Assemblies, a)
	}
	if err := rows.Err(); err != nil {
		return Run{}, fmt.Errorf("iterate assemblies: %w", err)
	}
	return run, nil
}
