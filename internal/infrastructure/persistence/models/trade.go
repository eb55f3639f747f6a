package models

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
	"github.com/storefront/backend/internal/domain/trade"
)

// OrderModel is the persistence model for the Order aggregate root.
type OrderModel struct {
	AggregateModel
	UserID              uuid.UUID        `gorm:"type:uuid;not null;index"`
	Items               []OrderItemModel `gorm:"foreignKey:OrderID;references:ID;constraint:OnDelete:CASCADE"`
	ShippingAddress     string           `gorm:"type:varchar(300);not null"`
	ShippingCity        string           `gorm:"type:varchar(100);not null"`
	ShippingPostalCode  string           `gorm:"type:varchar(20);not null"`
	ShippingCountry     string           `gorm:"type:varchar(100);not null"`
	PaymentMethod       string           `gorm:"type:varchar(50);not null;default:'PayPal'"`
	ItemsPrice          decimal.Decimal  `gorm:"type:decimal(18,2);not null;default:0"`
	ShippingPrice       decimal.Decimal  `gorm:"type:decimal(18,2);not null;default:0"`
	TaxPrice            decimal.Decimal  `gorm:"type:decimal(18,2);not null;default:0"`
	TotalPrice          decimal.Decimal  `gorm:"type:decimal(18,2);not null;default:0"`
	IsPaid              bool             `gorm:"not null;default:false;index"`
	PaidAt              *time.Time
	PaymentID           string `gorm:"type:varchar(100);uniqueIndex:uniq_orders_payment_id,where:payment_id <> ''"`
	PaymentStatus       string `gorm:"type:varchar(50)"`
	PaymentUpdateTime   string `gorm:"type:varchar(50)"`
	PaymentEmailAddress string `gorm:"type:varchar(200)"`
	IsDelivered         bool   `gorm:"not null;default:false;index"`
	DeliveredAt         *time.Time
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model to a domain Order.
// Items are returned in line order.
func (m *OrderModel) ToDomain() *trade.Order {
	items := append([]OrderItemModel(nil), m.Items...)
	sort.Slice(items, func(i, j int) bool { return items[i].LineNo < items[j].LineNo })

	order := &trade.Order{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		UserID:            m.UserID,
		Items:             make([]trade.OrderItem, len(items)),
		ShippingAddress: valueobject.ShippingAddressFromDTO(valueobject.ShippingAddressDTO{
			Address:    m.ShippingAddress,
			City:       m.ShippingCity,
			PostalCode: m.ShippingPostalCode,
			Country:    m.ShippingCountry,
		}),
		PaymentMethod: m.PaymentMethod,
		ItemsPrice:    m.ItemsPrice,
		ShippingPrice: m.ShippingPrice,
		TaxPrice:      m.TaxPrice,
		TotalPrice:    m.TotalPrice,
		IsPaid:        m.IsPaid,
		PaidAt:        m.PaidAt,
		IsDelivered:   m.IsDelivered,
		DeliveredAt:   m.DeliveredAt,
	}
	for i := range items {
		order.Items[i] = items[i].ToDomain()
	}
	if m.PaymentID != "" {
		order.PaymentResult = &trade.PaymentResult{
			ID:           m.PaymentID,
			Status:       m.PaymentStatus,
			UpdateTime:   m.PaymentUpdateTime,
			EmailAddress: m.PaymentEmailAddress,
		}
	}
	return order
}

// FromDomain populates the persistence model from a domain Order.
func (m *OrderModel) FromDomain(o *trade.Order) {
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)
	m.UserID = o.UserID
	m.ShippingAddress = o.ShippingAddress.Address()
	m.ShippingCity = o.ShippingAddress.City()
	m.ShippingPostalCode = o.ShippingAddress.PostalCode()
	m.ShippingCountry = o.ShippingAddress.Country()
	m.PaymentMethod = o.PaymentMethod
	m.ItemsPrice = o.ItemsPrice
	m.ShippingPrice = o.ShippingPrice
	m.TaxPrice = o.TaxPrice
	m.TotalPrice = o.TotalPrice
	m.IsPaid = o.IsPaid
	m.PaidAt = o.PaidAt
	m.IsDelivered = o.IsDelivered
	m.DeliveredAt = o.DeliveredAt

	m.PaymentID, m.PaymentStatus, m.PaymentUpdateTime, m.PaymentEmailAddress = "", "", "", ""
	if o.PaymentResult != nil {
		m.PaymentID = o.PaymentResult.ID
		m.PaymentStatus = o.PaymentResult.Status
		m.PaymentUpdateTime = o.PaymentResult.UpdateTime
		m.PaymentEmailAddress = o.PaymentResult.EmailAddress
	}

	m.Items = make([]OrderItemModel, len(o.Items))
	for i, item := range o.Items {
		m.Items[i] = OrderItemModelFromDomain(o.ID, i+1, item)
	}
}

// OrderModelFromDomain creates a new persistence model from a domain Order.
func OrderModelFromDomain(o *trade.Order) *OrderModel {
	m := &OrderModel{}
	m.FromDomain(o)
	return m
}

// OrderItemModel is one line of an order.
type OrderItemModel struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key"`
	OrderID   uuid.UUID       `gorm:"type:uuid;not null;index;uniqueIndex:idx_order_item_line,priority:1"`
	LineNo    int             `gorm:"not null;uniqueIndex:idx_order_item_line,priority:2"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Name      string          `gorm:"type:varchar(200);not null"`
	Image     string          `gorm:"type:varchar(500)"`
	Qty       int             `gorm:"not null"`
	Price     decimal.Decimal `gorm:"type:decimal(18,2);not null"`
}

// TableName returns the table name for GORM
func (OrderItemModel) TableName() string {
	return "order_items"
}

// ToDomain converts the persistence model to a domain OrderItem.
func (m *OrderItemModel) ToDomain() trade.OrderItem {
	return trade.OrderItem{
		ProductID: m.ProductID,
		Name:      m.Name,
		Image:     m.Image,
		Qty:       m.Qty,
		Price:     m.Price,
	}
}

// OrderItemModelFromDomain creates a line model. The line ID is derived from
// the order ID and line number so repeated mapping yields the same key.
func OrderItemModelFromDomain(orderID uuid.UUID, lineNo int, item trade.OrderItem) OrderItemModel {
	return OrderItemModel{
		ID:        uuid.NewSHA1(orderID, []byte{byte(lineNo >> 8), byte(lineNo)}),
		OrderID:   orderID,
		LineNo:    lineNo,
		ProductID: item.ProductID,
		Name:      item.Name,
		Image:     item.Image,
		Qty:       item.Qty,
		Price:     item.Price,
	}
}
