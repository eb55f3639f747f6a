package event

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/storefront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// DefaultEventDedupTTL is how long a handled event id is remembered
const DefaultEventDedupTTL = 24 * time.Hour

// IdempotencyStats is a snapshot of an IdempotentHandler's counters
type IdempotencyStats struct {
	Processed int64 `json:"processed"`
	Duplicate int64 `json:"duplicate"`
	Failed    int64 `json:"failed"`
}

// IdempotentHandler wraps an EventHandler so each event id is handled at
// most once. The id is released again when the wrapped handler fails so a
// redelivery can retry.
type IdempotentHandler struct {
	handler shared.EventHandler
	store   shared.IdempotencyStore
	ttl     time.Duration
	logger  *zap.Logger

	processed atomic.Int64
	duplicate atomic.Int64
	failed    atomic.Int64
}

// IdempotentHandlerOption configures an IdempotentHandler
type IdempotentHandlerOption func(*IdempotentHandler)

// WithDedupTTL overrides DefaultEventDedupTTL
func WithDedupTTL(ttl time.Duration) IdempotentHandlerOption {
	return func(h *IdempotentHandler) {
		h.ttl = ttl
	}
}

// NewIdempotentHandler wraps handler with deduplication on store
func NewIdempotentHandler(handler shared.EventHandler, store shared.IdempotencyStore, logger *zap.Logger, opts ...IdempotentHandlerOption) *IdempotentHandler {
	h := &IdempotentHandler{
		handler: handler,
		store:   store,
		ttl:     DefaultEventDedupTTL,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// EventTypes returns the wrapped handler's event types
func (h *IdempotentHandler) EventTypes() []string {
	return h.handler.EventTypes()
}

// Handle runs the wrapped handler unless the event was already handled
func (h *IdempotentHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	key := "event:" + event.EventID().String()

	isNew, err := h.store.MarkProcessed(ctx, key, h.ttl)
	switch {
	case err != nil:
		// a store outage must not drop events
		h.logger.Warn("Idempotency check failed, handling event anyway",
			zap.String("event_id", event.EventID().String()),
			zap.String("event_type", event.EventType()),
			zap.Error(err),
		)
	case !isNew:
		h.duplicate.Add(1)
		h.logger.Debug("Duplicate event skipped",
			zap.String("event_id", event.EventID().String()),
			zap.String("event_type", event.EventType()),
		)
		return nil
	}

	if err := h.handler.Handle(ctx, event); err != nil {
		h.failed.Add(1)
		if releaseErr := h.store.Release(ctx, key); releaseErr != nil {
			h.logger.Warn("Failed to release idempotency key",
				zap.String("key", key),
				zap.Error(releaseErr),
			)
		}
		return err
	}

	h.processed.Add(1)
	return nil
}

// Stats returns the handler's counters
func (h *IdempotentHandler) Stats() IdempotencyStats {
	return IdempotencyStats{
		Processed: h.processed.Load(),
		Duplicate: h.duplicate.Load(),
		Failed:    h.failed.Load(),
	}
}

var _ shared.EventHandler = (*IdempotentHandler)(nil)
