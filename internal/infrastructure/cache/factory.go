package cache

import (
	"github.com/redis/go-redis/v9"
	"github.com/storefront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// NewIdempotencyStore returns a Redis-backed store when a client is given and
// the in-memory store otherwise. The in-memory store does not share state
// across instances, so running more than one server without Redis may apply
// a capture twice; that case is logged.
func NewIdempotencyStore(client *redis.Client, logger *zap.Logger) shared.IdempotencyStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	if client != nil {
		logger.Info("Using Redis idempotency store")
		return NewRedisIdempotencyStore(client, DefaultIdempotencyPrefix)
	}
	logger.Warn("Redis disabled, using in-memory idempotency store; payment deduplication is per instance")
	return NewInMemoryIdempotencyStore()
}
