// Package event provides the in-process domain event bus.
package event

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// ErrBusStopped is returned by Publish after Stop
var ErrBusStopped = errors.New("event bus stopped")

// InMemoryEventBus dispatches domain events synchronously to the handlers
// registered for their type. A failing or panicking handler is logged and
// does not prevent the remaining handlers from running.
type InMemoryEventBus struct {
	registry *HandlerRegistry
	logger   *zap.Logger
	stopped  atomic.Bool
	failures atomic.Int64
}

// NewInMemoryEventBus creates a new in-memory event bus
func NewInMemoryEventBus(zapLogger *zap.Logger) *InMemoryEventBus {
	if zapLogger == nil {
		zapLogger = zap.NewNop()
	}
	return &InMemoryEventBus{
		registry: NewHandlerRegistry(),
		logger:   zapLogger.Named("event_bus"),
	}
}

// Publish delivers events to all registered handlers in registration order
func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	if b.stopped.Load() {
		return ErrBusStopped
	}

	log := b.logger
	if requestID := logger.GetRequestID(ctx); requestID != "" {
		log = log.With(zap.String("request_id", requestID))
	}
	for _, event := range events {
		for _, handler := range b.registry.GetHandlers(event.EventType()) {
			if err := b.dispatch(ctx, handler, event); err != nil {
				b.failures.Add(1)
				log.Error("Event handler failed",
					zap.String("event_type", event.EventType()),
					zap.String("event_id", event.EventID().String()),
					zap.String("aggregate_id", event.AggregateID().String()),
					zap.Error(err),
				)
			}
		}
	}
	return nil
}

// Subscribe registers a handler. Without explicit event types the handler's
// own EventTypes are used; an empty list subscribes to every event.
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}
	b.registry.Register(handler, eventTypes...)
	b.logger.Debug("Handler subscribed", zap.Strings("event_types", eventTypes))
}

// Unsubscribe removes a handler
func (b *InMemoryEventBus) Unsubscribe(handler shared.EventHandler) {
	b.registry.Unregister(handler)
}

// Start marks the bus as accepting events
func (b *InMemoryEventBus) Start(ctx context.Context) error {
	b.stopped.Store(false)
	b.logger.Info("Event bus started", zap.Int("handlers", len(b.registry.GetAllHandlers())))
	return nil
}

// Stop makes subsequent Publish calls fail with ErrBusStopped
func (b *InMemoryEventBus) Stop(ctx context.Context) error {
	b.stopped.Store(true)
	b.logger.Info("Event bus stopped", zap.Int64("handler_failures", b.failures.Load()))
	return nil
}

// Failures returns how many handler invocations failed or panicked
func (b *InMemoryEventBus) Failures() int64 {
	return b.failures.Load()
}

func (b *InMemoryEventBus) dispatch(ctx context.Context, handler shared.EventHandler, event shared.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return handler.Handle(ctx, event)
}

var _ shared.EventBus = (*InMemoryEventBus)(nil)
