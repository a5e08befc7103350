// ABOUTME: Match run history stored in SQLite
// ABOUTME: Records per-catalog counts for every finished run
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/harper/catmatch/internal/models"
)

// RunRecord is one row of match run history
type RunRecord struct {
	ID            string        `yaml:"id" json:"id"`
	SourcePath    string        `yaml:"source_path" json:"source_path"`
	TargetPath    string        `yaml:"target_path" json:"target_path"`
	ReportPath    string        `yaml:"report_path" json:"report_path"`
	Model         string        `yaml:"model" json:"model"`
	TopK          int           `yaml:"top_k" json:"top_k"`
	Matched       int           `yaml:"matched" json:"matched"`
	SourceTotal   int           `yaml:"source_total" json:"source_total"`
	SourceSkipped int           `yaml:"source_skipped" json:"source_skipped"`
	SourceFailed  int           `yaml:"source_failed" json:"source_failed"`
	TargetTotal   int           `yaml:"target_total" json:"target_total"`
	TargetSkipped int           `yaml:"target_skipped" json:"target_skipped"`
	TargetFailed  int           `yaml:"target_failed" json:"target_failed"`
	Duration      time.Duration `yaml:"duration" json:"duration"`
	CreatedAt     time.Time     `yaml:"created_at" json:"created_at"`
}

// RunStore handles run history persistence
type RunStore struct {
	db *DB
}

// NewRunStore creates a new RunStore
func NewRunStore(db *DB) *RunStore {
	return &RunStore{db: db}
}

// Save inserts a run record
func (s *RunStore) Save(run *RunRecord) error {
	if run.ID == "" {
		return fmt.Errorf("%w: run id", models.ErrMissingField)
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}

	_, err := s.db.Exec(`
		INSERT INTO match_runs (
			id, source_path, target_path, report_path, model, top_k, matched,
			source_total, source_skipped, source_failed,
			target_total, target_skipped, target_failed,
			duration_ms, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.SourcePath, run.TargetPath, run.ReportPath, run.Model, run.TopK, run.Matched,
		run.SourceTotal, run.SourceSkipped, run.SourceFailed,
		run.TargetTotal, run.TargetSkipped, run.TargetFailed,
		run.Duration.Milliseconds(), run.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	return nil
}

// Get retrieves a run by ID
func (s *RunStore) Get(id string) (*RunRecord, error) {
	row := s.db.QueryRow(selectRuns+" WHERE id = ?", id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s: %w", id, models.ErrNotFound)
	}
	return run, err
}

// List returns the most recent runs first; limit <= 0 returns all
func (s *RunStore) List(limit int) ([]RunRecord, error) {
	query := selectRuns + " ORDER BY created_at DESC, id ASC"
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var runs []RunRecord
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

const selectRuns = `
	SELECT id, source_path, target_path, report_path, model, top_k, matched,
		source_total, source_skipped, source_failed,
		target_total, target_skipped, target_failed,
		duration_ms, created_at
	FROM match_runs`

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row scanner) (*RunRecord, error) {
	var (
		run        RunRecord
		source     sql.NullString
		target     sql.NullString
		report     sql.NullString
		model      sql.NullString
		durationMs int64
	)
	err := row.Scan(&run.ID, &source, &target, &report, &model, &run.TopK, &run.Matched,
		&run.SourceTotal, &run.SourceSkipped, &run.SourceFailed,
		&run.TargetTotal, &run.TargetSkipped, &run.TargetFailed,
		&durationMs, &run.CreatedAt)
	if err != nil {
		return nil, err
	}
	run.SourcePath = source.String
	run.TargetPath = target.String
	run.ReportPath = report.String
	run.Model = model.String
	run.Duration = time.Duration(durationMs) * time.Millisecond
	return &run, nil
}
