package trade

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/trade"
)

// OrderItemRequest is one cart line of a new order
type OrderItemRequest struct {
	Product uuid.UUID `json:"product" binding:"required"`
	Qty     int       `json:"qty" binding:"required,min=1,max=1000"`
}

// ShippingAddressRequest is the delivery address of a new order
type ShippingAddressRequest struct {
	Address    string `json:"address" binding:"required,max=300"`
	City       string `json:"city" binding:"required,max=100"`
	PostalCode string `json:"postalCode" binding:"required,max=20"`
	Country    string `json:"country" binding:"required,max=100"`
}

// CreateOrderRequest represents a checkout. Prices are computed by the server.
type CreateOrderRequest struct {
	OrderItems      []OrderItemRequest     `json:"orderItems" binding:"required,dive"`
	ShippingAddress ShippingAddressRequest `json:"shippingAddress" binding:"required"`
	PaymentMethod   string                 `json:"paymentMethod" binding:"max=50"`
}

// PayerRequest is the payer block of a PayPal capture
type PayerRequest struct {
	EmailAddress string `json:"email_address" binding:"omitempty,max=200"`
}

// PayOrderRequest is the capture details the PayPal JS SDK hands to onApprove
type PayOrderRequest struct {
	ID         string       `json:"id" binding:"required,max=100"`
	Status     string       `json:"status" binding:"max=50"`
	UpdateTime string       `json:"update_time" binding:"max=50"`
	Payer      PayerRequest `json:"payer"`
}

// ListOrdersQuery filters the admin order list
type ListOrdersQuery struct {
	Page        int   `form:"page" binding:"omitempty,min=1"`
	PageSize    int   `form:"page_size" binding:"omitempty,min=1,max=100"`
	IsPaid      *bool `form:"is_paid"`
	IsDelivered *bool `form:"is_delivered"`
}

// OrderUserResponse is the order owner embedded in order responses
type OrderUserResponse struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
}

// OrderItemResponse is one order line
type OrderItemResponse struct {
	Product uuid.UUID `json:"product"`
	Name    string    `json:"name"`
	Image   string    `json:"image"`
	Qty     int       `json:"qty"`
	Price   Money     `json:"price"`
}

// ShippingAddressResponse is the delivery address of an order
type ShippingAddressResponse struct {
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

// PaymentResultResponse is the stored PayPal capture
type PaymentResultResponse struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	UpdateTime   string `json:"update_time"`
	EmailAddress string `json:"email_address"`
}

// DisplayAmount is a converted amount and its formatted text
type DisplayAmount struct {
	Amount    decimal.Decimal `json:"amount"`
	Formatted string          `json:"formatted"`
}

// DisplayLineResponse is one order line in display currency
type DisplayLineResponse struct {
	Name      string        `json:"name"`
	UnitPrice DisplayAmount `json:"unitPrice"`
	LineTotal DisplayAmount `json:"lineTotal"`
}

// DisplayResponse is the order priced in the display currency
type DisplayResponse struct {
	Currency      string                `json:"currency"`
	Rate          decimal.Decimal       `json:"rate"`
	Lines         []DisplayLineResponse `json:"lines"`
	ItemsPrice    DisplayAmount         `json:"itemsPrice"`
	ShippingPrice DisplayAmount         `json:"shippingPrice"`
	TaxPrice      DisplayAmount         `json:"taxPrice"`
	TotalPrice    DisplayAmount         `json:"totalPrice"`
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID              uuid.UUID               `json:"id"`
	User            OrderUserResponse       `json:"user"`
	OrderItems      []OrderItemResponse     `json:"orderItems"`
	ShippingAddress ShippingAddressResponse `json:"shippingAddress"`
	PaymentMethod   string                  `json:"paymentMethod"`
	PaymentResult   *PaymentResultResponse  `json:"paymentResult,omitempty"`
	ItemsPrice      Money                   `json:"itemsPrice"`
	ShippingPrice   Money                   `json:"shippingPrice"`
	TaxPrice        Money                   `json:"taxPrice"`
	TotalPrice      Money                   `json:"totalPrice"`
	IsPaid          bool                    `json:"isPaid"`
	PaidAt          *time.Time              `json:"paidAt,omitempty"`
	IsDelivered     bool                    `json:"isDelivered"`
	DeliveredAt     *time.Time              `json:"deliveredAt,omitempty"`
	Status          string                  `json:"status"`
	Display         *DisplayResponse        `json:"display,omitempty"`
	CreatedAt       time.Time               `json:"createdAt"`
	UpdatedAt       time.Time               `json:"updatedAt"`
}

// OrderListResponse is one page of orders
type OrderListResponse struct {
	Orders   []OrderResponse `json:"orders"`
	Page     int             `json:"page"`
	Pages    int             `json:"pages"`
	PageSize int             `json:"pageSize"`
	Total    int64           `json:"total"`
}

// ToOrderResponse converts a domain Order. user may be nil when the owner
// account no longer exists; only the id is reported then.
func ToOrderResponse(o *trade.Order, user *identity.User) OrderResponse {
	items := make([]OrderItemResponse, len(o.Items))
	for i, item := range o.Items {
		items[i] = OrderItemResponse{
			Product: item.ProductID,
			Name:    item.Name,
			Image:   item.Image,
			Qty:     item.Qty,
			Price:   NewMoney(item.Price),
		}
	}

	resp := OrderResponse{
		ID:         o.ID,
		User:       OrderUserResponse{ID: o.UserID},
		OrderItems: items,
		ShippingAddress: ShippingAddressResponse{
			Address:    o.ShippingAddress.Address(),
			City:       o.ShippingAddress.City(),
			PostalCode: o.ShippingAddress.PostalCode(),
			Country:    o.ShippingAddress.Country(),
		},
		PaymentMethod: o.PaymentMethod,
		ItemsPrice:    NewMoney(o.ItemsPrice),
		ShippingPrice: NewMoney(o.ShippingPrice),
		TaxPrice:      NewMoney(o.TaxPrice),
		TotalPrice:    NewMoney(o.TotalPrice),
		IsPaid:        o.IsPaid,
		PaidAt:        o.PaidAt,
		IsDelivered:   o.IsDelivered,
		DeliveredAt:   o.DeliveredAt,
		Status:        string(o.Status()),
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
	if user != nil {
		resp.User.Username = user.Username
		resp.User.Email = user.Email
	}
	if o.PaymentResult != nil {
		resp.PaymentResult = &PaymentResultResponse{
			ID:           o.PaymentResult.ID,
			Status:       o.PaymentResult.Status,
			UpdateTime:   o.PaymentResult.UpdateTime,
			EmailAddress: o.PaymentResult.EmailAddress,
		}
	}
	return resp
}
