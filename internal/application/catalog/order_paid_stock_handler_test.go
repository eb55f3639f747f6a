package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
	"github.com/storefront/backend/internal/domain/trade"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type mockStockDecreaser struct {
	mock.Mock
}

func (m *mockStockDecreaser) DecreaseStock(ctx context.Context, id uuid.UUID, qty int) error {
	return m.Called(ctx, id, qty).Error(0)
}

func newPaidEvent(t *testing.T, lines map[uuid.UUID]int) *trade.OrderPaidEvent {
	t.Helper()
	items := make([]trade.OrderItem, 0, len(lines))
	for id, qty := range lines {
		item, err := trade.NewOrderItem(id, "Item", "/images/item.jpg", qty, decimal.NewFromInt(10))
		require.NoError(t, err)
		items = append(items, item)
	}
	order, err := trade.NewOrder(uuid.New(), items,
		valueobject.MustNewShippingAddress("1 Main St", "Boston", "02101", "USA"),
		"", trade.DefaultPricingPolicy())
	require.NoError(t, err)
	require.NoError(t, order.MarkPaid(trade.PaymentResult{ID: "CAPTURE-1", Status: "COMPLETED"}, time.Now()))

	for _, e := range order.GetDomainEvents() {
		if paid, ok := e.(*trade.OrderPaidEvent); ok {
			return paid
		}
	}
	t.Fatal("no OrderPaid event raised")
	return nil
}

func TestOrderPaidStockHandler_EventTypes(t *testing.T) {
	h := NewOrderPaidStockHandler(new(mockStockDecreaser), nil)
	assert.Equal(t, []string{trade.EventTypeOrderPaid}, h.EventTypes())
}

func TestOrderPaidStockHandler_DecrementsEveryLine(t *testing.T) {
	ctx := context.Background()
	p1, p2 := uuid.New(), uuid.New()
	stock := new(mockStockDecreaser)
	stock.On("DecreaseStock", ctx, p1, 2).Return(nil)
	stock.On("DecreaseStock", ctx, p2, 1).Return(nil)

	h := NewOrderPaidStockHandler(stock, nil)
	require.NoError(t, h.Handle(ctx, newPaidEvent(t, map[uuid.UUID]int{p1: 2, p2: 1})))
	stock.AssertExpectations(t)
}

func TestOrderPaidStockHandler_BusinessFailuresAreLogged(t *testing.T) {
	ctx := context.Background()
	p1, p2 := uuid.New(), uuid.New()
	stock := new(mockStockDecreaser)
	stock.On("DecreaseStock", ctx, p1, 5).Return(shared.ErrInsufficientStock)
	stock.On("DecreaseStock", ctx, p2, 1).Return(nil)

	core, logs := observer.New(zap.WarnLevel)
	h := NewOrderPaidStockHandler(stock, zap.New(core))

	require.NoError(t, h.Handle(ctx, newPaidEvent(t, map[uuid.UUID]int{p1: 5, p2: 1})))
	stock.AssertExpectations(t)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "Stock not decremented for paid order line", logs.All()[0].Message)
}

func TestOrderPaidStockHandler_InfrastructureFailuresAreReturned(t *testing.T) {
	ctx := context.Background()
	p1 := uuid.New()
	stock := new(mockStockDecreaser)
	stock.On("DecreaseStock", ctx, p1, 1).Return(errors.New("connection reset"))

	h := NewOrderPaidStockHandler(stock, nil)
	err := h.Handle(ctx, newPaidEvent(t, map[uuid.UUID]int{p1: 1}))
	assert.ErrorContains(t, err, "connection reset")
}

func TestOrderPaidStockHandler_RejectsOtherEvents(t *testing.T) {
	h := NewOrderPaidStockHandler(new(mockStockDecreaser), nil)
	err := h.Handle(context.Background(), &trade.OrderDeliveredEvent{})
	assert.Error(t, err)
}
