// internal/storage/redis.go
package storage

import (
	"context"
	"errors"

	"magick-cards/internal/common/database"

	"github.com/redis/go-redis/v9"
)

type RedisBackend struct {
	client *database.RedisClient
}

func NewRedisBackend(client *database.RedisClient) *RedisBackend {
	return &RedisBackend{client: client}
}

func (r *RedisBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, err := r.client.Get(ctx, key)
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

func (r *RedisBackend) Set(ctx context.Context, key string, value []byte) error {
	return r.client.Set(ctx, key, value)
}

func (r *RedisBackend) Remove(ctx context.Context, key string) error {
	return r.client.Del(ctx, key)
}

func (r *RedisBackend) RemoveAll(ctx context.Context, keys []string) error {
	return r.client.Del(ctx, keys...)
}

func (r *RedisBackend) Close() error {
	return r.client.Close()
}
