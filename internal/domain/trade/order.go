package trade

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

// DefaultPaymentMethod is used when the shopper does not pick one
const DefaultPaymentMethod = "PayPal"

// OrderStatus is derived from the paid and delivered flags
type OrderStatus string

const (
	OrderStatusAwaitingPayment OrderStatus = "AWAITING_PAYMENT"
	OrderStatusPaid            OrderStatus = "PAID"
	OrderStatusDelivered       OrderStatus = "DELIVERED"
)

// MaxItemQty caps the quantity of one product in an order
const MaxItemQty = 1000

var (
	ErrInvalidQuantity       = shared.NewDomainError("INVALID_QUANTITY", "Quantity must be between 1 and 1000")
	ErrNoOrderItems          = shared.NewDomainError("NO_ORDER_ITEMS", "No order items")
	ErrOrderAlreadyPaid      = shared.NewDomainError("ORDER_ALREADY_PAID", "Order is already paid")
	ErrOrderNotPaid          = shared.NewDomainError("ORDER_NOT_PAID", "Order must be paid before it can be delivered")
	ErrOrderAlreadyDelivered = shared.NewDomainError("ORDER_ALREADY_DELIVERED", "Order is already delivered")
)

// OrderItem is a line of an order. Name, image and price are snapshots
// of the product at the time the order was placed.
type OrderItem struct {
	ProductID uuid.UUID
	Name      string
	Image     string
	Qty       int
	Price     decimal.Decimal
}

// NewOrderItem validates and creates an order line
func NewOrderItem(productID uuid.UUID, name, image string, qty int, price decimal.Decimal) (OrderItem, error) {
	if productID == uuid.Nil {
		return OrderItem{}, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if strings.TrimSpace(name) == "" {
		return OrderItem{}, shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name cannot be empty")
	}
	if qty < 1 || qty > MaxItemQty {
		return OrderItem{}, ErrInvalidQuantity
	}
	if price.IsNegative() {
		return OrderItem{}, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	return OrderItem{
		ProductID: productID,
		Name:      name,
		Image:     image,
		Qty:       qty,
		Price:     price.Round(2),
	}, nil
}

// LineTotal returns qty × price
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Qty)))
}

// PaymentResult holds the capture details returned by the payment provider
type PaymentResult struct {
	ID           string
	Status       string
	UpdateTime   string
	EmailAddress string
}

// Order is a customer purchase with items, shipping, and payment state
type Order struct {
	shared.BaseAggregateRoot
	UserID          uuid.UUID
	Items           []OrderItem
	ShippingAddress valueobject.ShippingAddress
	PaymentMethod   string
	ItemsPrice      decimal.Decimal
	ShippingPrice   decimal.Decimal
	TaxPrice        decimal.Decimal
	TotalPrice      decimal.Decimal
	IsPaid          bool
	PaidAt          *time.Time
	PaymentResult   *PaymentResult
	IsDelivered     bool
	DeliveredAt     *time.Time
}

// NewOrder places an order and prices it with the given policy
func NewOrder(
	userID uuid.UUID,
	items []OrderItem,
	address valueobject.ShippingAddress,
	paymentMethod string,
	policy PricingPolicy,
) (*Order, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	if len(items) == 0 {
		return nil, ErrNoOrderItems
	}
	if address.IsEmpty() {
		return nil, shared.NewDomainError("INVALID_ADDRESS", "Shipping address is required")
	}
	paymentMethod = strings.TrimSpace(paymentMethod)
	if paymentMethod == "" {
		paymentMethod = DefaultPaymentMethod
	}
	if len(paymentMethod) > 50 {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", "Payment method cannot exceed 50 characters")
	}

	order := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		UserID:            userID,
		Items:             append([]OrderItem(nil), items...),
		ShippingAddress:   address,
		PaymentMethod:     paymentMethod,
	}
	order.applyPrices(policy.Calculate(order.Items))

	order.AddDomainEvent(NewOrderCreatedEvent(order))

	return order, nil
}

func (o *Order) applyPrices(p Prices) {
	o.ItemsPrice = p.Items
	o.ShippingPrice = p.Shipping
	o.TaxPrice = p.Tax
	o.TotalPrice = p.Total
}

// MarkPaid records a completed payment capture
func (o *Order) MarkPaid(result PaymentResult, paidAt time.Time) error {
	if o.IsPaid {
		return ErrOrderAlreadyPaid
	}
	if strings.TrimSpace(result.ID) == "" {
		return shared.NewDomainError("INVALID_PAYMENT", "Payment ID is required")
	}

	o.IsPaid = true
	o.PaidAt = &paidAt
	o.PaymentResult = &result
	o.UpdatedAt = time.Now()

	o.AddDomainEvent(NewOrderPaidEvent(o))

	return nil
}

// MarkDelivered records delivery of a paid order
func (o *Order) MarkDelivered(deliveredAt time.Time) error {
	if !o.IsPaid {
		return ErrOrderNotPaid
	}
	if o.IsDelivered {
		return ErrOrderAlreadyDelivered
	}

	o.IsDelivered = true
	o.DeliveredAt = &deliveredAt
	o.UpdatedAt = time.Now()

	o.AddDomainEvent(NewOrderDeliveredEvent(o))

	return nil
}

// CanDeliver reports whether MarkDelivered would succeed
func (o *Order) CanDeliver() bool {
	return o.IsPaid && !o.IsDelivered
}

// IsOwnedBy returns true if the order belongs to the user
func (o *Order) IsOwnedBy(userID uuid.UUID) bool {
	return o.UserID == userID
}

// Status derives the lifecycle status from the flags
func (o *Order) Status() OrderStatus {
	switch {
	case o.IsDelivered:
		return OrderStatusDelivered
	case o.IsPaid:
		return OrderStatusPaid
	default:
		return OrderStatusAwaitingPayment
	}
}

// TotalQuantity returns the number of units across all lines
func (o *Order) TotalQuantity() int {
	total := 0
	for _, item := range o.Items {
		total += item.Qty
	}
	return total
}

// ProductIDs returns the distinct product IDs referenced by the order
func (o *Order) ProductIDs() []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(o.Items))
	ids := make([]uuid.UUID, 0, len(o.Items))
	for _, item := range o.Items {
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		ids = append(ids, item.ProductID)
	}
	return ids
}
