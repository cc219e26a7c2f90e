package db

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/teranos/azsku/errors"
	"github.com/teranos/azsku/logger"
)

// SQLiteBusyTimeoutMS is how long a writer waits on a locked database
const SQLiteBusyTimeoutMS = 5000

// pragmas applied to every connection opened by Open, in order.
var pragmas = []struct {
	name  string
	value string
}{
	{"journal_mode", "WAL"}, // readers (classify, am) never block a running extract
	{"foreign_keys", "ON"},
	{"busy_timeout", fmt.Sprint(SQLiteBusyTimeoutMS)},
}

// Open opens the extraction database at path. A nil logger is silent.
func Open(path string, log *zap.SugaredLogger) (*sql.DB, error) {
	log = logger.OrNop(log)
	log.Debugw("Opening database", logger.FieldPath, path)

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}

	for _, p := range pragmas {
		if _, err := db.Exec(fmt.Sprintf("PRAGMA %s = %s", p.name, p.value)); err != nil {
			db.Close()
			return nil, errors.Wrapf(err, "failed to set %s", p.name)
		}
	}

	log.Infow("Database opened", logger.FieldPath, path)
	return db, nil
}

// OpenWithMigrations opens the database at path and applies pending migrations.
func OpenWithMigrations(path string, log *zap.SugaredLogger) (*sql.DB, error) {
	db, err := Open(path, log)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}

	if err := Migrate(db, log); err != nil {
		db.Close()
		return nil, errors.Wrapf(err, "migrate %s", path)
	}

	return db, nil
}
