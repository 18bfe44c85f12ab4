// internal/common/database/sqlite.go
package database

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// SQLiteClient wraps an embedded SQLite database file.
type SQLiteClient struct {
	DB *sql.DB
}

// NewSQLite opens (or creates) the database at path in WAL mode, creating the
// parent directory when needed. ":memory:" is accepted for tests.
func NewSQLite(path string) (*SQLiteClient, error) {
	if path == "" {
		return nil, eris.New("sqlite: empty db path")
	}

	dsn := path
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, eris.Wrap(err, "sqlite: create db dir")
		}
		dsn = "file:" + path + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	// one connection: writers are serialized
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}

	return &SQLiteClient{DB: db}, nil
}

func (c *SQLiteClient) Ping(ctx context.Context) error {
	return eris.Wrap(c.DB.PingContext(ctx), "sqlite: ping")
}

func (c *SQLiteClient) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
