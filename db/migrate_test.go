package db

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestOpenWithMigrations(t *testing.T) {
	t.Run("opens database and creates extraction tables", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "test.db")

		db, err := OpenWithMigrations(dbPath, zaptest.NewLogger(t).Sugar())
		require.NoError(t, err)
		require.NotNil(t, db)
		defer db.Close()

		for _, table := range []string{"schema_migrations", "entities", "document_fingerprints", "series_sources", "extraction_runs"} {
			var count int
			err = db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&count)
			require.NoError(t, err)
			assert.Equal(t, 1, count, "table %s should exist after migrations", table)
		}
	})

	t.Run("wraps migration errors with context", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "test.db")

		db, err := Open(dbPath, nil)
		require.NoError(t, err)
		_, err = db.Exec("CREATE TABLE schema_migrations (bad_schema TEXT)")
		require.NoError(t, err)
		db.Close()

		db, err = OpenWithMigrations(dbPath, nil)
		require.Error(t, err)
		assert.Nil(t, db)

		detailed := fmt.Sprintf("%+v", err)
		assert.Contains(t, detailed, "migrate")
		assert.Contains(t, detailed, "connection.go", "error should have stack trace")
	})
}

func TestMigrate(t *testing.T) {
	t.Run("records every migration", func(t *testing.T) {
		db, err := Open(filepath.Join(t.TempDir(), "test.db"), nil)
		require.NoError(t, err)
		defer db.Close()

		require.NoError(t, Migrate(db, nil))

		var versions []string
		rows, err := db.Query("SELECT version FROM schema_migrations ORDER BY version")
		require.NoError(t, err)
		defer rows.Close()
		for rows.Next() {
			var v string
			require.NoError(t, rows.Scan(&v))
			versions = append(versions, v)
		}
		require.NoError(t, rows.Err())
		assert.Equal(t, []string{"000", "001"}, versions)
	})

	t.Run("is idempotent", func(t *testing.T) {
		db, err := Open(filepath.Join(t.TempDir(), "test.db"), nil)
		require.NoError(t, err)
		defer db.Close()

		require.NoError(t, Migrate(db, nil))
		require.NoError(t, Migrate(db, nil), "running migrations multiple times should be safe")
	})

	t.Run("entity kind is constrained", func(t *testing.T) {
		db, err := Open(filepath.Join(t.TempDir(), "test.db"), nil)
		require.NoError(t, err)
		defer db.Close()
		require.NoError(t, Migrate(db, nil))

		_, err = db.Exec(`INSERT INTO entities (kind, name, fingerprint, record, extractor_version, run_id)
			VALUES ('sku', 'x', 'fp', '{}', 'dev', 'r')`)
		assert.Error(t, err)
	})

	t.Run("closed database", func(t *testing.T) {
		db, err := Open(filepath.Join(t.TempDir(), "test.db"), nil)
		require.NoError(t, err)
		db.Close()

		err = Migrate(db, nil)
		require.Error(t, err)
		assert.True(t, IsDatabaseClosed(err))
	})
}

func TestIsDatabaseClosed(t *testing.T) {
	assert.False(t, IsDatabaseClosed(nil))
	assert.True(t, IsDatabaseClosed(ErrDatabaseClosed))
	assert.True(t, IsDatabaseClosed(fmt.Errorf("sql: database is closed")))
	assert.False(t, IsDatabaseClosed(fmt.Errorf("disk I/O error")))
}
