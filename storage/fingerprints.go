package storage

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/teranos/azsku/errors"
)

const (
	DocumentFingerprintGetQuery = `
		SELECT fingerprint FROM document_fingerprints WHERE path = ?`

	DocumentFingerprintPutQuery = `
		INSERT INTO document_fingerprints (path, fingerprint) VALUES (?, ?)
		ON CONFLICT(path) DO UPDATE SET fingerprint = excluded.fingerprint, updated_at = CURRENT_TIMESTAMP`

	SeriesSourceGetQuery = `
		SELECT composite, dependencies FROM series_sources WHERE path = ?`

	SeriesSourcePutQuery = `
		INSERT INTO series_sources (path, composite, dependencies) VALUES (?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET composite = excluded.composite,
			dependencies = excluded.dependencies, updated_at = CURRENT_TIMESTAMP`
)

// SeriesSource is the composite fingerprint of a series document and the
// companion documents it was assembled from.
type SeriesSource struct {
	Path         string
	Composite    string
	Dependencies []string
}

// DocumentFingerprint returns the recorded fingerprint of a document.
func (s *SQLStore) DocumentFingerprint(ctx context.Context, path string) (string, error) {
	var fp string
	err := s.db.QueryRowContext(ctx, DocumentFingerprintGetQuery, path).Scan(&fp)
	if err == sql.ErrNoRows {
		return "", errors.Wrapf(errors.ErrNotFound, "document %s", path)
	}
	if err != nil {
		return "", errors.Wrapf(err, "get fingerprint of %s", path)
	}
	return fp, nil
}

// PutDocumentFingerprint records the fingerprint of a document.
func (s *SQLStore) PutDocumentFingerprint(ctx context.Context, path, fingerprint string) error {
	if _, err := s.db.ExecContext(ctx, DocumentFingerprintPutQuery, path, fingerprint); err != nil {
		return errors.Wrapf(err, "put fingerprint of %s", path)
	}
	return nil
}

// SeriesSource returns the recorded composite of a series document.
func (s *SQLStore) SeriesSource(ctx context.Context, path string) (*SeriesSource, error) {
	var composite, deps string
	err := s.db.QueryRowContext(ctx, SeriesSourceGetQuery, path).Scan(&composite, &deps)
	if err == sql.ErrNoRows {
		return nil, errors.Wrapf(errors.ErrNotFound, "series source %s", path)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "get series source %s", path)
	}
	src := &SeriesSource{Path: path, Composite: composite}
	if err := json.Unmarshal([]byte(deps), &src.Dependencies); err != nil {
		return nil, errors.Wrapf(err, "decode dependencies of %s", path)
	}
	return src, nil
}

// PutSeriesSource records the composite of a series document.
func (s *SQLStore) PutSeriesSource(ctx context.Context, src SeriesSource) error {
	deps, err := json.Marshal(src.Dependencies)
	if err != nil {
		return errors.Wrapf(err, "encode dependencies of %s", src.Path)
	}
	if _, err := s.db.ExecContext(ctx, SeriesSourcePutQuery, src.Path, src.Composite, string(deps)); err != nil {
		return errors.Wrapf(err, "put series source %s", src.Path)
	}
	return nil
}
