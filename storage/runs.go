package storage

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/teranos/azsku/errors"
)

const (
	RunInsertQuery = `
		INSERT INTO extraction_runs (id, extractor_version, started_at, dry_run)
		VALUES (?, ?, ?, ?)`

	RunFinishQuery = `
		UPDATE extraction_runs
		SET finished_at = ?, documents = ?, skipped = ?, failed = ?,
			entities_new = ?, entities_changed = ?, entities_unchanged = ?
		WHERE id = ?`

	RunLastQuery = `
		SELECT id, extractor_version, started_at, finished_at, dry_run, documents, skipped, failed,
			entities_new, entities_changed, entities_unchanged
		FROM extraction_runs
		WHERE finished_at IS NOT NULL AND dry_run = 0
		ORDER BY started_at DESC
		LIMIT 1`
)

// Run is one row of the extraction run log.
type Run struct {
	ID               string
	ExtractorVersion string
	StartedAt        time.Time
	FinishedAt       *time.Time
	DryRun           bool
	Documents        int
	Skipped          int
	Failed           int
	New              int
	Changed          int
	Unchanged        int
}

// StartRun records the start of a run. The run ID must be a UUID.
func (s *SQLStore) StartRun(ctx context.Context, run *Run) error {
	if _, err := uuid.Parse(run.ID); err != nil {
		return errors.Wrapf(errors.ErrInvalidRequest, "run id %q: %v", run.ID, err)
	}
	if run.ExtractorVersion == "" {
		run.ExtractorVersion = s.extractorVersion
	}
	if _, err := s.db.ExecContext(ctx, RunInsertQuery, run.ID, run.ExtractorVersion, run.StartedAt.UTC(), run.DryRun); err != nil {
		return errors.Wrapf(err, "start run %s", run.ID)
	}
	return nil
}

// FinishRun records the counts and end time of a run.
func (s *SQLStore) FinishRun(ctx context.Context, run *Run) error {
	if run.FinishedAt == nil {
		now := time.Now().UTC()
		run.FinishedAt = &now
	}
	res, err := s.db.ExecContext(ctx, RunFinishQuery,
		run.FinishedAt.UTC(), run.Documents, run.Skipped, run.Failed,
		run.New, run.Changed, run.Unchanged, run.ID)
	if err != nil {
		return errors.Wrapf(err, "finish run %s", run.ID)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errors.Wrapf(errors.ErrNotFound, "run %s", run.ID)
	}
	return nil
}

// LastRun returns the most recent finished run that wrote to the store.
func (s *SQLStore) LastRun(ctx context.Context) (*Run, error) {
	var r Run
	var finished sql.NullTime
	err := s.db.QueryRowContext(ctx, RunLastQuery).Scan(
		&r.ID, &r.ExtractorVersion, &r.StartedAt, &finished, &r.DryRun,
		&r.Documents, &r.Skipped, &r.Failed, &r.New, &r.Changed, &r.Unchanged)
	if err == sql.ErrNoRows {
		return nil, errors.Wrap(errors.ErrNotFound, "no finished run")
	}
	if err != nil {
		return nil, errors.Wrap(err, "last run")
	}
	if finished.Valid {
		t := finished.Time
		r.FinishedAt = &t
	}
	return &r, nil
}
