package trade

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

const AggregateTypeOrder = "Order"

const (
	EventTypeOrderCreated   = "OrderCreated"
	EventTypeOrderPaid      = "OrderPaid"
	EventTypeOrderDelivered = "OrderDelivered"
)

// OrderItemInfo is the item information carried by order events
type OrderItemInfo struct {
	ProductID uuid.UUID       `json:"product_id"`
	Qty       int             `json:"qty"`
	Price     decimal.Decimal `json:"price"`
}

func itemInfos(order *Order) []OrderItemInfo {
	infos := make([]OrderItemInfo, len(order.Items))
	for i, item := range order.Items {
		infos[i] = OrderItemInfo{ProductID: item.ProductID, Qty: item.Qty, Price: item.Price}
	}
	return infos
}

// OrderCreatedEvent is raised when a shopper places an order
type OrderCreatedEvent struct {
	shared.BaseDomainEvent
	OrderID       uuid.UUID       `json:"order_id"`
	UserID        uuid.UUID       `json:"user_id"`
	PaymentMethod string          `json:"payment_method"`
	TotalPrice    decimal.Decimal `json:"total_price"`
	Items         []OrderItemInfo `json:"items"`
}

func NewOrderCreatedEvent(order *Order) *OrderCreatedEvent {
	return &OrderCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderCreated, AggregateTypeOrder, order.ID),
		OrderID:         order.ID,
		UserID:          order.UserID,
		PaymentMethod:   order.PaymentMethod,
		TotalPrice:      order.TotalPrice,
		Items:           itemInfos(order),
	}
}

// OrderPaidEvent is raised when a payment capture is recorded.
// It triggers the stock decrement for every line.
type OrderPaidEvent struct {
	shared.BaseDomainEvent
	OrderID       uuid.UUID       `json:"order_id"`
	UserID        uuid.UUID       `json:"user_id"`
	PaymentID     string          `json:"payment_id"`
	PaymentMethod string          `json:"payment_method"`
	TotalPrice    decimal.Decimal `json:"total_price"`
	Items         []OrderItemInfo `json:"items"`
}

func NewOrderPaidEvent(order *Order) *OrderPaidEvent {
	paymentID := ""
	if order.PaymentResult != nil {
		paymentID = order.PaymentResult.ID
	}
	return &OrderPaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderPaid, AggregateTypeOrder, order.ID),
		OrderID:         order.ID,
		UserID:          order.UserID,
		PaymentID:       paymentID,
		PaymentMethod:   order.PaymentMethod,
		TotalPrice:      order.TotalPrice,
		Items:           itemInfos(order),
	}
}

// OrderDeliveredEvent is raised when an admin marks the order delivered
type OrderDeliveredEvent struct {
	shared.BaseDomainEvent
	OrderID uuid.UUID `json:"order_id"`
	UserID  uuid.UUID `json:"user_id"`
}

func NewOrderDeliveredEvent(order *Order) *OrderDeliveredEvent {
	return &OrderDeliveredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderDelivered, AggregateTypeOrder, order.ID),
		OrderID:         order.ID,
		UserID:          order.UserID,
	}
}
