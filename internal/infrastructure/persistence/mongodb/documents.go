package mongodb

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
	"github.com/storefront/backend/internal/domain/trade"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Identifiers are stored as canonical UUID strings in _id so documents stay
// readable in the shell and references match the REST representation.

// productDocument is the stored form of catalog.Product
type productDocument struct {
	ID           string               `bson:"_id"`
	Name         string               `bson:"name"`
	Image        string               `bson:"image"`
	Brand        string               `bson:"brand"`
	Category     string               `bson:"category"`
	Description  string               `bson:"description"`
	Price        primitive.Decimal128 `bson:"price"`
	CountInStock int                  `bson:"countInStock"`
	Version      int                  `bson:"version"`
	CreatedAt    time.Time            `bson:"createdAt"`
	UpdatedAt    time.Time            `bson:"updatedAt"`
}

func productDocumentFromDomain(p *catalog.Product) productDocument {
	return productDocument{
		ID:           p.ID.String(),
		Name:         p.Name,
		Image:        p.Image,
		Brand:        p.Brand,
		Category:     p.Category,
		Description:  p.Description,
		Price:        toDecimal128(p.Price),
		CountInStock: p.CountInStock,
		Version:      p.Version,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func (d productDocument) toDomain() *catalog.Product {
	return &catalog.Product{
		BaseAggregateRoot: aggregateRoot(d.ID, d.Version, d.CreatedAt, d.UpdatedAt),
		Name:              d.Name,
		Image:             d.Image,
		Brand:             d.Brand,
		Category:          d.Category,
		Description:       d.Description,
		Price:             fromDecimal128(d.Price),
		CountInStock:      d.CountInStock,
	}
}

// userDocument is the stored form of identity.User
type userDocument struct {
	ID           string     `bson:"_id"`
	Username     string     `bson:"username"`
	Email        string     `bson:"email"`
	PasswordHash string     `bson:"password"`
	IsAdmin      bool       `bson:"isAdmin"`
	LastLoginAt  *time.Time `bson:"lastLoginAt,omitempty"`
	Version      int        `bson:"version"`
	CreatedAt    time.Time  `bson:"createdAt"`
	UpdatedAt    time.Time  `bson:"updatedAt"`
}

func userDocumentFromDomain(u *identity.User) userDocument {
	return userDocument{
		ID:           u.ID.String(),
		Username:     u.Username,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		IsAdmin:      u.IsAdmin,
		LastLoginAt:  u.LastLoginAt,
		Version:      u.Version,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (d userDocument) toDomain() *identity.User {
	return &identity.User{
		BaseAggregateRoot: aggregateRoot(d.ID, d.Version, d.CreatedAt, d.UpdatedAt),
		Username:          d.Username,
		Email:             d.Email,
		PasswordHash:      d.PasswordHash,
		IsAdmin:           d.IsAdmin,
		LastLoginAt:       d.LastLoginAt,
	}
}

type orderItemDocument struct {
	Product string               `bson:"product"`
	Name    string               `bson:"name"`
	Image   string               `bson:"image"`
	Qty     int                  `bson:"qty"`
	Price   primitive.Decimal128 `bson:"price"`
}

type paymentResultDocument struct {
	ID           string `bson:"id"`
	Status       string `bson:"status"`
	UpdateTime   string `bson:"update_time"`
	EmailAddress string `bson:"email_address"`
}

// orderDocument is the stored form of trade.Order; lines are embedded
type orderDocument struct {
	ID              string                         `bson:"_id"`
	User            string                         `bson:"user"`
	OrderItems      []orderItemDocument            `bson:"orderItems"`
	ShippingAddress valueobject.ShippingAddressDTO `bson:"shippingAddress"`
	PaymentMethod   string                         `bson:"paymentMethod"`
	PaymentResult   *paymentResultDocument         `bson:"paymentResult,omitempty"`
	ItemsPrice      primitive.Decimal128           `bson:"itemsPrice"`
	ShippingPrice   primitive.Decimal128           `bson:"shippingPrice"`
	TaxPrice        primitive.Decimal128           `bson:"taxPrice"`
	TotalPrice      primitive.Decimal128           `bson:"totalPrice"`
	IsPaid          bool                           `bson:"isPaid"`
	PaidAt          *time.Time                     `bson:"paidAt,omitempty"`
	IsDelivered     bool                           `bson:"isDelivered"`
	DeliveredAt     *time.Time                     `bson:"deliveredAt,omitempty"`
	Version         int                            `bson:"version"`
	CreatedAt       time.Time                      `bson:"createdAt"`
	UpdatedAt       time.Time                      `bson:"updatedAt"`
}

func orderDocumentFromDomain(o *trade.Order) orderDocument {
	items := make([]orderItemDocument, len(o.Items))
	for i, item := range o.Items {
		items[i] = orderItemDocument{
			Product: item.ProductID.String(),
			Name:    item.Name,
			Image:   item.Image,
			Qty:     item.Qty,
			Price:   toDecimal128(item.Price),
		}
	}

	doc := orderDocument{
		ID:              o.ID.String(),
		User:            o.UserID.String(),
		OrderItems:      items,
		ShippingAddress: o.ShippingAddress.ToDTO(),
		PaymentMethod:   o.PaymentMethod,
		ItemsPrice:      toDecimal128(o.ItemsPrice),
		ShippingPrice:   toDecimal128(o.ShippingPrice),
		TaxPrice:        toDecimal128(o.TaxPrice),
		TotalPrice:      toDecimal128(o.TotalPrice),
		IsPaid:          o.IsPaid,
		PaidAt:          o.PaidAt,
		IsDelivered:     o.IsDelivered,
		DeliveredAt:     o.DeliveredAt,
		Version:         o.Version,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
	if o.PaymentResult != nil {
		doc.PaymentResult = &paymentResultDocument{
			ID:           o.PaymentResult.ID,
			Status:       o.PaymentResult.Status,
			UpdateTime:   o.PaymentResult.UpdateTime,
			EmailAddress: o.PaymentResult.EmailAddress,
		}
	}
	return doc
}

func (d orderDocument) toDomain() *trade.Order {
	items := make([]trade.OrderItem, len(d.OrderItems))
	for i, item := range d.OrderItems {
		items[i] = trade.OrderItem{
			ProductID: parseID(item.Product),
			Name:      item.Name,
			Image:     item.Image,
			Qty:       item.Qty,
			Price:     fromDecimal128(item.Price),
		}
	}

	order := &trade.Order{
		BaseAggregateRoot: aggregateRoot(d.ID, d.Version, d.CreatedAt, d.UpdatedAt),
		UserID:            parseID(d.User),
		Items:             items,
		ShippingAddress:   valueobject.ShippingAddressFromDTO(d.ShippingAddress),
		PaymentMethod:     d.PaymentMethod,
		ItemsPrice:        fromDecimal128(d.ItemsPrice),
		ShippingPrice:     fromDecimal128(d.ShippingPrice),
		TaxPrice:          fromDecimal128(d.TaxPrice),
		TotalPrice:        fromDecimal128(d.TotalPrice),
		IsPaid:            d.IsPaid,
		PaidAt:            d.PaidAt,
		IsDelivered:       d.IsDelivered,
		DeliveredAt:       d.DeliveredAt,
	}
	if d.PaymentResult != nil {
		order.PaymentResult = &trade.PaymentResult{
			ID:           d.PaymentResult.ID,
			Status:       d.PaymentResult.Status,
			UpdateTime:   d.PaymentResult.UpdateTime,
			EmailAddress: d.PaymentResult.EmailAddress,
		}
	}
	return order
}

func aggregateRoot(id string, version int, createdAt, updatedAt time.Time) shared.BaseAggregateRoot {
	return shared.BaseAggregateRoot{
		BaseEntity: shared.BaseEntity{
			ID:        parseID(id),
			CreatedAt: createdAt,
			UpdatedAt: updatedAt,
		},
		Version: version,
	}
}

// parseID returns uuid.Nil for malformed stored ids
func parseID(s string) uuid.UUID {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil
	}
	return id
}

func toDecimal128(d decimal.Decimal) primitive.Decimal128 {
	v, err := primitive.ParseDecimal128(d.StringFixed(2))
	if err != nil {
		return primitive.NewDecimal128(0, 0)
	}
	return v
}

func fromDecimal128(v primitive.Decimal128) decimal.Decimal {
	d, err := decimal.NewFromString(v.String())
	if err != nil {
		return decimal.Zero
	}
	return d
}
