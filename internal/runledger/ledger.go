package runledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bmh-genomics/minionpipe/internal/domain"
)

type DB interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Ledger records pipeline runs in Postgres, one row per run.
type Ledger struct {
	db DB
}

func NewLedger(db DB) (*Ledger, error) {
	if db == nil {
		return nil, errors.New("db is required")
	}
	return &Ledger{db: db}, nil
}

// RecordStart inserts the run row at pipeline start.
func (l *Ledger) RecordStart(ctx context.Context, run domain.PipelineRun) error {
	if l == nil || l.db == nil {
		return errors.New("ledger not initialized")
	}
	if err := run.Validate(); err != nil {
		return err
	}
	_, err := l.db.ExecContext(
		ctx,
		`INSERT INTO pipeline_runs (
			run_id,
			input_dir,
			output_dir,
			samplesheet_path,
			flowcell,
			kit,
			keep_intermediates,
			status,
			started_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		strings.TrimSpace(run.ID),
		strings.TrimSpace(run.InputDir),
		strings.TrimSpace(run.OutputDir),
		strings.TrimSpace(run.SampleSheetPath),
		strings.TrimSpace(run.Flowcell),
		strings.TrimSpace(run.Kit),
		run.KeepIntermediates,
		strings.TrimSpace(run.Status),
		normalizeTime(run.StartedAt),
	)
	if err != nil {
		return fmt.Errorf("insert pipeline run: %w", err)
	}
	return nil
}

// RecordFinish updates the run row with its terminal status, end time,
// archive path and error text (empty on success).
func (l *Ledger) RecordFinish(ctx context.Context, run domain.PipelineRun, runErr error) error {
	if l == nil || l.db == nil {
		return errors.New("ledger not initialized")
	}
	if strings.TrimSpace(run.ID) == "" {
		return errors.New("run id is required")
	}
	endedAt := time.Now().UTC()
	if run.EndedAt != nil {
		endedAt = run.EndedAt.UTC()
	}
	var errText sql.NullString
	if runErr != nil {
		errText = sql.NullString{String: runErr.Error(), Valid: true}
	}
	_, err := l.db.ExecContext(
		ctx,
		`UPDATE pipeline_runs
		 SET status = $2, ended_at = $3, archive_path = $4, error = $5
		 WHERE run_id = $1`,
		strings.TrimSpace(run.ID),
		strings.TrimSpace(run.Status),
		endedAt,
		nullIfEmpty(run.ArchivePath),
		errText,
	)
	if err != nil {
		return fmt.Errorf("update pipeline run: %w", err)
	}
	return nil
}

func normalizeTime(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t.UTC()
}

func nullIfEmpty(s string) sql.NullString {
	s = strings.TrimSpace(s)
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
