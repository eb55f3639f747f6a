package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/storefront/backend/internal/domain/shared"
)

// DefaultIdempotencyPrefix namespaces payment capture keys in Redis
const DefaultIdempotencyPrefix = "storefront:idempotency:"

// RedisIdempotencyStore records processed keys with SET NX so that several
// server instances agree on which payment captures were already applied.
// The Redis client is shared and owned by the caller.
type RedisIdempotencyStore struct {
	client    redis.UniversalClient
	keyPrefix string
}

// NewRedisIdempotencyStore creates a store on an existing client
func NewRedisIdempotencyStore(client redis.UniversalClient, keyPrefix string) *RedisIdempotencyStore {
	if keyPrefix == "" {
		keyPrefix = DefaultIdempotencyPrefix
	}
	return &RedisIdempotencyStore{client: client, keyPrefix: keyPrefix}
}

// MarkProcessed sets the key if absent. It reports false when another caller got there first.
func (s *RedisIdempotencyStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, s.keyPrefix+key, time.Now().Unix(), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark %q as processed: %w", key, err)
	}
	return ok, nil
}

// IsProcessed reports whether the key is set
func (s *RedisIdempotencyStore) IsProcessed(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Exists(ctx, s.keyPrefix+key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check %q: %w", key, err)
	}
	return n > 0, nil
}

// Release deletes the key
func (s *RedisIdempotencyStore) Release(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to release %q: %w", key, err)
	}
	return nil
}

// Close is a no-op; the shared client is closed by its owner
func (s *RedisIdempotencyStore) Close() error {
	return nil
}

// Ensure RedisIdempotencyStore implements IdempotencyStore
var _ shared.IdempotencyStore = (*RedisIdempotencyStore)(nil)
