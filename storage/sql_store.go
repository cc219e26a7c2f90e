// Package storage persists extracted entities, document fingerprints and the
// run log in SQLite.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/teranos/azsku/assemble"
	"github.com/teranos/azsku/errors"
	"github.com/teranos/azsku/ledger"
	"github.com/teranos/azsku/logger"
	"github.com/teranos/azsku/version"
)

// Query constants
const (
	EntitySelectQuery = `
		SELECT id, fingerprint, extractor_version FROM entities
		WHERE kind = ? AND name = ?`

	EntityInsertQuery = `
		INSERT INTO entities (kind, name, fingerprint, record, last_updated_azure, extractor_version, run_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	EntityUpdateQuery = `
		UPDATE entities
		SET fingerprint = ?, record = ?, last_updated_azure = ?, extractor_version = ?, run_id = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`

	EntityGetQuery = `
		SELECT kind, name, fingerprint, record, COALESCE(last_updated_azure, ''), extractor_version, run_id
		FROM entities WHERE kind = ? AND name = ?`

	EntityCountQuery = `
		SELECT COUNT(*) FROM entities WHERE kind = ?`
)

// StoredEntity is one persisted entity row.
type StoredEntity struct {
	Kind             string
	Name             string
	Fingerprint      string
	Record           json.RawMessage
	LastUpdatedAzure string
	ExtractorVersion string
	RunID            string
}

type entityRow struct {
	id               int64
	fingerprint      string
	extractorVersion string
}

// SQLStore is the SQLite-backed entity and fingerprint store.
type SQLStore struct {
	db               *sql.DB
	logger           *zap.SugaredLogger
	extractorVersion string
}

// NewSQLStore creates a store writing rows stamped with extractorVersion.
func NewSQLStore(db *sql.DB, log *zap.SugaredLogger, extractorVersion string) *SQLStore {
	log = logger.OrNop(log)
	return &SQLStore{
		db:               db,
		logger:           log,
		extractorVersion: extractorVersion,
	}
}

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *SQLStore) lookup(ctx context.Context, q queryer, rec assemble.Record) ([]entityRow, error) {
	rows, err := q.QueryContext(ctx, EntitySelectQuery, rec.EntityKind(), rec.EntityName())
	if err != nil {
		return nil, errors.Wrapf(err, "select %s %s", rec.EntityKind(), rec.EntityName())
	}
	defer rows.Close()

	var matches []entityRow
	for rows.Next() {
		var r entityRow
		if err := rows.Scan(&r.id, &r.fingerprint, &r.extractorVersion); err != nil {
			return nil, errors.Wrap(err, "scan entity")
		}
		matches = append(matches, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate entities")
	}
	if len(matches) > 1 {
		return nil, errors.Wrapf(errors.ErrConflict, "%d %s rows named %q", len(matches), rec.EntityKind(), rec.EntityName())
	}
	return matches, nil
}

func (s *SQLStore) verdict(matches []entityRow, fingerprint string) ledger.Verdict {
	if len(matches) == 0 {
		return ledger.New
	}
	v := ledger.Compare(matches[0].fingerprint, fingerprint, true)
	if v == ledger.Unchanged && !version.Compatible(matches[0].extractorVersion, s.extractorVersion) {
		return ledger.Changed
	}
	return v
}

// Check reports what Upsert would do without writing.
func (s *SQLStore) Check(ctx context.Context, rec assemble.Record) (ledger.Verdict, error) {
	fp, err := rec.Fingerprint()
	if err != nil {
		return 0, errors.Wrapf(err, "fingerprint %s %s", rec.EntityKind(), rec.EntityName())
	}
	matches, err := s.lookup(ctx, s.db, rec)
	if err != nil {
		return 0, err
	}
	return s.verdict(matches, fp), nil
}

// Upsert writes rec unless an identical record with a compatible extractor
// version is already stored. More than one stored row with the same kind and
// name is ErrConflict.
func (s *SQLStore) Upsert(ctx context.Context, rec assemble.Record, runID string) (ledger.Verdict, error) {
	fp, err := rec.Fingerprint()
	if err != nil {
		return 0, errors.Wrapf(err, "fingerprint %s %s", rec.EntityKind(), rec.EntityName())
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return 0, errors.Wrapf(err, "marshal %s %s", rec.EntityKind(), rec.EntityName())
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, errors.Wrap(err, "begin upsert")
	}
	defer tx.Rollback()

	matches, err := s.lookup(ctx, tx, rec)
	if err != nil {
		return 0, err
	}
	verdict := s.verdict(matches, fp)

	lastUpdated := sql.NullString{String: rec.LastUpdated(), Valid: rec.LastUpdated() != ""}
	switch verdict {
	case ledger.New:
		_, err = tx.ExecContext(ctx, EntityInsertQuery,
			rec.EntityKind(), rec.EntityName(), fp, string(data), lastUpdated, s.extractorVersion, runID)
	case ledger.Changed:
		_, err = tx.ExecContext(ctx, EntityUpdateQuery,
			fp, string(data), lastUpdated, s.extractorVersion, runID, matches[0].id)
	}
	if err != nil {
		return 0, errors.Wrapf(err, "write %s %s", rec.EntityKind(), rec.EntityName())
	}
	if err := tx.Commit(); err != nil {
		return 0, errors.Wrap(err, "commit upsert")
	}

	if verdict != ledger.Unchanged {
		s.logger.Debugw("Stored entity",
			"kind", rec.EntityKind(),
			"name", rec.EntityName(),
			logger.FieldVerdict, verdict.String())
	}
	return verdict, nil
}

// Get returns the stored entity of a kind and name.
func (s *SQLStore) Get(ctx context.Context, kind, name string) (*StoredEntity, error) {
	var e StoredEntity
	var record string
	err := s.db.QueryRowContext(ctx, EntityGetQuery, kind, name).Scan(
		&e.Kind, &e.Name, &e.Fingerprint, &record, &e.LastUpdatedAzure, &e.ExtractorVersion, &e.RunID)
	if err == sql.ErrNoRows {
		return nil, errors.Wrapf(errors.ErrNotFound, "%s %q", kind, name)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "get %s %q", kind, name)
	}
	e.Record = json.RawMessage(record)
	return &e, nil
}

// Count returns the number of stored entities of a kind.
func (s *SQLStore) Count(ctx context.Context, kind string) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, EntityCountQuery, kind).Scan(&n); err != nil {
		return 0, errors.Wrapf(err, "count %s", kind)
	}
	return n, nil
}
