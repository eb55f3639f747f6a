package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/trade"
	"go.uber.org/zap"
)

// StockDecreaser removes sold units from stock
type StockDecreaser interface {
	DecreaseStock(ctx context.Context, id uuid.UUID, qty int) error
}

// OrderPaidStockHandler takes paid order lines out of stock.
// A line that cannot be decremented (product gone, not enough stock) is
// logged and skipped; the payment itself stands.
type OrderPaidStockHandler struct {
	stock  StockDecreaser
	logger *zap.Logger
}

// NewOrderPaidStockHandler creates a new OrderPaidStockHandler
func NewOrderPaidStockHandler(stock StockDecreaser, logger *zap.Logger) *OrderPaidStockHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderPaidStockHandler{
		stock:  stock,
		logger: logger.Named("stock_handler"),
	}
}

// EventTypes implements shared.EventHandler
func (h *OrderPaidStockHandler) EventTypes() []string {
	return []string{trade.EventTypeOrderPaid}
}

// Handle implements shared.EventHandler. Only infrastructure failures are
// returned; business rejections are logged.
func (h *OrderPaidStockHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	paid, ok := event.(*trade.OrderPaidEvent)
	if !ok {
		return fmt.Errorf("stock handler: unexpected event %T", event)
	}

	var errs []error
	for _, item := range paid.Items {
		err := h.stock.DecreaseStock(ctx, item.ProductID, item.Qty)
		if err == nil {
			continue
		}
		fields := []zap.Field{
			zap.String("order_id", paid.OrderID.String()),
			zap.String("product_id", item.ProductID.String()),
			zap.Int("qty", item.Qty),
			zap.Error(err),
		}
		if _, isDomain := shared.AsDomainError(err); isDomain {
			h.logger.Warn("Stock not decremented for paid order line", fields...)
			continue
		}
		h.logger.Error("Stock decrement failed", fields...)
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
