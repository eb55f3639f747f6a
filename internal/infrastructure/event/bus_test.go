package event

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testEvent struct {
	shared.BaseDomainEvent
}

func newTestEvent(eventType string) *testEvent {
	return &testEvent{BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "Order", uuid.New())}
}

// recorder remembers every event it was handed and optionally fails
type recorder struct {
	types []string
	err   error

	mu   sync.Mutex
	seen []shared.DomainEvent
}

func newRecorder(eventTypes ...string) *recorder {
	return &recorder{types: eventTypes}
}

func (r *recorder) Handle(_ context.Context, event shared.DomainEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, event)
	return r.err
}

func (r *recorder) EventTypes() []string { return r.types }

func (r *recorder) handled() []shared.DomainEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]shared.DomainEvent(nil), r.seen...)
}

type panicHandler struct{}

func (panicHandler) Handle(context.Context, shared.DomainEvent) error { panic("boom") }
func (panicHandler) EventTypes() []string                            { return []string{"OrderPaid"} }

func TestInMemoryEventBus_Routing(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	paid := newRecorder("OrderPaid")
	delivered := newRecorder("OrderDelivered")
	everything := newRecorder()
	bus.Subscribe(paid)
	bus.Subscribe(delivered)
	bus.Subscribe(everything)

	first, second := newTestEvent("OrderPaid"), newTestEvent("OrderPaid")
	require.NoError(t, bus.Publish(context.Background(), first, second, newTestEvent("OrderDelivered"), newTestEvent("ProductDeleted")))

	assert.Equal(t, []shared.DomainEvent{first, second}, paid.handled())
	assert.Len(t, delivered.handled(), 1)
	assert.Len(t, everything.handled(), 4, "a handler without event types sees every event")
}

func TestInMemoryEventBus_ExplicitTypesOverrideHandler(t *testing.T) {
	bus := NewInMemoryEventBus(nil)
	h := newRecorder("OrderPaid")
	bus.Subscribe(h, "OrderDelivered")

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("OrderPaid"), newTestEvent("OrderDelivered")))
	require.Len(t, h.handled(), 1)
	assert.Equal(t, "OrderDelivered", h.handled()[0].EventType())
}

func TestInMemoryEventBus_FailuresAreIsolated(t *testing.T) {
	tests := []struct {
		name    string
		failing shared.EventHandler
	}{
		{"error", &recorder{types: []string{"OrderPaid"}, err: errors.New("stock update failed")}},
		{"panic", panicHandler{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bus := NewInMemoryEventBus(zap.NewNop())
			after := newRecorder("OrderPaid")
			bus.Subscribe(tt.failing)
			bus.Subscribe(after)

			require.NotPanics(t, func() {
				require.NoError(t, bus.Publish(context.Background(), newTestEvent("OrderPaid")))
			})
			assert.Len(t, after.handled(), 1)
			assert.Equal(t, int64(1), bus.Failures())
		})
	}
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	h := newRecorder("OrderPaid")
	bus.Subscribe(h)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("OrderPaid")))
	bus.Unsubscribe(h)
	require.NoError(t, bus.Publish(context.Background(), newTestEvent("OrderPaid")))

	assert.Len(t, h.handled(), 1)
}

func TestInMemoryEventBus_StopRejectsPublish(t *testing.T) {
	ctx := context.Background()
	bus := NewInMemoryEventBus(zap.NewNop())
	h := newRecorder("OrderPaid")
	bus.Subscribe(h)

	require.NoError(t, bus.Start(ctx))
	require.NoError(t, bus.Publish(ctx, newTestEvent("OrderPaid")))
	require.NoError(t, bus.Stop(ctx))

	assert.ErrorIs(t, bus.Publish(ctx, newTestEvent("OrderPaid")), ErrBusStopped)
	assert.Len(t, h.handled(), 1)

	require.NoError(t, bus.Start(ctx))
	assert.NoError(t, bus.Publish(ctx, newTestEvent("OrderPaid")))
}
