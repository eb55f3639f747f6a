package catalog

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

const AggregateTypeProduct = "Product"

const (
	EventTypeProductCreated      = "ProductCreated"
	EventTypeProductUpdated      = "ProductUpdated"
	EventTypeProductPriceChanged = "ProductPriceChanged"
	EventTypeProductStockChanged = "ProductStockChanged"
)

// ProductCreatedEvent is published when a new product is created
type ProductCreatedEvent struct {
	shared.BaseDomainEvent
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
}

func NewProductCreatedEvent(product *Product) *ProductCreatedEvent {
	return &ProductCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductCreated, AggregateTypeProduct, product.ID),
		ProductID:       product.ID,
		Name:            product.Name,
		Price:           product.Price,
	}
}

// ProductUpdatedEvent is published when descriptive fields change
type ProductUpdatedEvent struct {
	shared.BaseDomainEvent
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	Category  string    `json:"category,omitempty"`
}

func NewProductUpdatedEvent(product *Product) *ProductUpdatedEvent {
	return &ProductUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductUpdated, AggregateTypeProduct, product.ID),
		ProductID:       product.ID,
		Name:            product.Name,
		Category:        product.Category,
	}
}

// ProductPriceChangedEvent is published when the unit price changes
type ProductPriceChangedEvent struct {
	shared.BaseDomainEvent
	ProductID uuid.UUID       `json:"product_id"`
	OldPrice  decimal.Decimal `json:"old_price"`
	NewPrice  decimal.Decimal `json:"new_price"`
}

func NewProductPriceChangedEvent(product *Product, oldPrice decimal.Decimal) *ProductPriceChangedEvent {
	return &ProductPriceChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductPriceChanged, AggregateTypeProduct, product.ID),
		ProductID:       product.ID,
		OldPrice:        oldPrice,
		NewPrice:        product.Price,
	}
}

// ProductStockChangedEvent is published when count in stock changes
type ProductStockChangedEvent struct {
	shared.BaseDomainEvent
	ProductID uuid.UUID `json:"product_id"`
	OldCount  int       `json:"old_count"`
	NewCount  int       `json:"new_count"`
}

func NewProductStockChangedEvent(product *Product, oldCount int) *ProductStockChangedEvent {
	return &ProductStockChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductStockChanged, AggregateTypeProduct, product.ID),
		ProductID:       product.ID,
		OldCount:        oldCount,
		NewCount:        product.CountInStock,
	}
}
