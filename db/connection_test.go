package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/teranos/azsku/errors"
)

func TestOpen_Pragmas(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "azsku.db"), zaptest.NewLogger(t).Sugar())
	require.NoError(t, err)
	defer db.Close()

	var journalMode string
	require.NoError(t, db.QueryRow("PRAGMA journal_mode").Scan(&journalMode))
	assert.Equal(t, "wal", journalMode)

	var foreignKeys, busyTimeout int
	require.NoError(t, db.QueryRow("PRAGMA foreign_keys").Scan(&foreignKeys))
	require.NoError(t, db.QueryRow("PRAGMA busy_timeout").Scan(&busyTimeout))
	assert.Equal(t, 1, foreignKeys)
	assert.Equal(t, SQLiteBusyTimeoutMS, busyTimeout)
}

func TestOpen_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "new.db")
	assert.NoFileExists(t, path)

	db, err := Open(path, nil)
	require.NoError(t, err)
	defer db.Close()

	assert.FileExists(t, path)
}

func TestOpen_InvalidPath(t *testing.T) {
	db, err := Open("/invalid/nonexistent/path/azsku.db", nil)
	// sql.Open is lazy; the first pragma is what touches the file
	if err == nil {
		db.Close()
		t.Fatal("expected an error for a path in a missing directory")
	}

	assert.Contains(t, err.Error(), "journal_mode")
	assert.NotNil(t, errors.GetStack(err))
}
