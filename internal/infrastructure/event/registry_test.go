package event

import (
	"context"
	"testing"

	"github.com/storefront/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
)

type recordingHandler struct {
	eventTypes []string
	handled    []shared.DomainEvent
}

func (h *recordingHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	h.handled = append(h.handled, event)
	return nil
}

func (h *recordingHandler) EventTypes() []string {
	return h.eventTypes
}

func TestHandlerRegistry_Register(t *testing.T) {
	registry := NewHandlerRegistry()
	handler := &recordingHandler{}

	registry.Register(handler, "OrderPaid", "OrderDelivered")
	registry.Register(handler, "OrderPaid")

	assert.Len(t, registry.GetHandlers("OrderPaid"), 1)
	assert.Len(t, registry.GetHandlers("OrderDelivered"), 1)
	assert.Empty(t, registry.GetHandlers("OrderCreated"))
}

func TestHandlerRegistry_Wildcard(t *testing.T) {
	registry := NewHandlerRegistry()
	typed := &recordingHandler{}
	all := &recordingHandler{}

	registry.Register(typed, "OrderPaid")
	registry.Register(all)

	handlers := registry.GetHandlers("OrderPaid")
	assert.Equal(t, []shared.EventHandler{typed, all}, handlers)
	assert.Equal(t, []shared.EventHandler{all}, registry.GetHandlers("ProductCreated"))
}

func TestHandlerRegistry_Unregister(t *testing.T) {
	registry := NewHandlerRegistry()
	h1 := &recordingHandler{}
	h2 := &recordingHandler{}

	registry.Register(h1, "OrderPaid", "OrderDelivered")
	registry.Register(h2, "OrderPaid")
	registry.Register(h1)

	registry.Unregister(h1)

	assert.Equal(t, []shared.EventHandler{h2}, registry.GetHandlers("OrderPaid"))
	assert.Empty(t, registry.GetHandlers("OrderDelivered"))
	assert.Len(t, registry.GetAllHandlers(), 1)
}

func TestHandlerRegistry_GetAllHandlers_NoDuplicates(t *testing.T) {
	registry := NewHandlerRegistry()
	h := &recordingHandler{}

	registry.Register(h, "OrderPaid", "OrderDelivered", "OrderCreated")
	registry.Register(h)

	assert.Len(t, registry.GetAllHandlers(), 1)
}
