package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// KeyStore is the minimal key/value contract the cache layer consumes: a
// string-keyed store of serialized blobs with per-key expiry and glob-style
// key enumeration.
type KeyStore interface {
	// Get returns the stored bytes and whether the key was present. A missing
	// key is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// SetEx stores value under key with the given TTL.
	SetEx(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Del deletes the given keys in one batch. Absent keys are ignored.
	Del(ctx context.Context, keys ...string) error

	// Keys enumerates all keys matching a glob pattern.
	Keys(ctx context.Context, pattern string) ([]string, error)
}

// RedisKeyStore adapts a shared go-redis client to the KeyStore contract.
// Connection multiplexing across concurrent requests is the client's own
// responsibility.
type RedisKeyStore struct {
	client *redis.Client
}

// NewRedisKeyStore wraps an existing redis client.
func NewRedisKeyStore(client *redis.Client) *RedisKeyStore {
	if client == nil {
		panic("redis client cannot be nil")
	}
	return &RedisKeyStore{client: client}
}

func (s *RedisKeyStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	return b, true, nil
}

func (s *RedisKeyStore) SetEx(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := s.client.SetEx(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis setex: %w", err)
	}
	return nil
}

func (s *RedisKeyStore) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

func (s *RedisKeyStore) Keys(ctx context.Context, pattern string) ([]string, error) {
	keys, err := s.client.Keys(ctx, pattern).Result()
	if err != nil {
		return nil, fmt.Errorf("redis keys: %w", err)
	}
	return keys, nil
}
