// internal/storage/backend.go
package storage

import (
	"context"
	"fmt"

	"magick-cards/internal/common/config"
	"magick-cards/internal/common/database"
)

// Backend is a durable key/value store of opaque byte blobs. Keys arrive
// already namespaced by Store.
type Backend interface {
	// Get returns found=false and a nil error when key is absent.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
	RemoveAll(ctx context.Context, keys []string) error
	Close() error
}

// NewBackend builds the backend selected by cfg.Driver and checks it is reachable.
func NewBackend(ctx context.Context, cfg config.StorageConfig) (Backend, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		return NewMemoryBackend(), nil

	case config.DriverRedis:
		client, err := database.NewRedis(cfg.Redis)
		if err != nil {
			return nil, err
		}
		if err := client.Ping(ctx); err != nil {
			_ = client.Close()
			return nil, err
		}
		return NewRedisBackend(client), nil

	case config.DriverPostgres:
		client, err := database.NewPostgres(cfg.Postgres)
		if err != nil {
			return nil, err
		}
		if err := client.Ping(ctx); err != nil {
			_ = client.Close()
			return nil, err
		}
		backend := NewPostgresBackend(client, cfg.Postgres.Table)
		if err := backend.Migrate(ctx); err != nil {
			_ = client.Close()
			return nil, err
		}
		return backend, nil

	case config.DriverSQLite, "":
		client, err := database.NewSQLite(cfg.SQLite.Path)
		if err != nil {
			return nil, err
		}
		backend := NewSQLiteBackend(client)
		if err := backend.Migrate(ctx); err != nil {
			_ = client.Close()
			return nil, err
		}
		return backend, nil

	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Driver)
	}
}
