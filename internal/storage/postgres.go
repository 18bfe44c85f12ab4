// internal/storage/postgres.go
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"magick-cards/internal/common/database"

	"github.com/lib/pq"
	"github.com/rotisserie/eris"
)

// PostgresBackend stores blobs in a two-column table keyed by the namespaced key.
type PostgresBackend struct {
	client *database.PostgresClient
	table  string
}

func NewPostgresBackend(client *database.PostgresClient, table string) *PostgresBackend {
	if table == "" {
		table = "kv_store"
	}
	return &PostgresBackend{client: client, table: pq.QuoteIdentifier(table)}
}

func (p *PostgresBackend) Migrate(ctx context.Context) error {
	_, err := p.client.Exec(ctx, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	key        TEXT PRIMARY KEY,
	value      BYTEA NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`, p.table))
	return eris.Wrap(err, "postgres: migrate")
}

func (p *PostgresBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := p.client.QueryRow(ctx,
		fmt.Sprintf(`SELECT value FROM %s WHERE key = $1`, p.table), key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, eris.Wrapf(err, "postgres: get %s", key)
	}
	return value, true, nil
}

func (p *PostgresBackend) Set(ctx context.Context, key string, value []byte) error {
	_, err := p.client.Exec(ctx,
		fmt.Sprintf(`INSERT INTO %s (key, value, updated_at) VALUES ($1, $2, NOW())
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`, p.table),
		key, value,
	)
	return eris.Wrapf(err, "postgres: set %s", key)
}

func (p *PostgresBackend) Remove(ctx context.Context, key string) error {
	_, err := p.client.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE key = $1`, p.table), key)
	return eris.Wrapf(err, "postgres: remove %s", key)
}

func (p *PostgresBackend) RemoveAll(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	_, err := p.client.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE key = ANY($1)`, p.table), pq.Array(keys))
	return eris.Wrap(err, "postgres: remove all")
}

func (p *PostgresBackend) Close() error {
	return p.client.Close()
}
