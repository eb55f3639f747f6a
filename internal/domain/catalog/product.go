package catalog

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

// Product is a catalog item available for purchase.
// It is the aggregate root for product-related operations.
type Product struct {
	shared.BaseAggregateRoot
	Name         string
	Image        string
	Brand        string
	Category     string
	Description  string
	Price        decimal.Decimal
	CountInStock int
}

// ProductDetails carries the descriptive fields an admin can edit
type ProductDetails struct {
	Name        string
	Image       string
	Brand       string
	Category    string
	Description string
}

// NewProduct creates a new product with a price and no stock
func NewProduct(name string, price decimal.Decimal) (*Product, error) {
	name = strings.TrimSpace(name)
	if err := validateProductName(name); err != nil {
		return nil, err
	}
	if err := validatePrice(price); err != nil {
		return nil, err
	}

	product := &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Price:             price.Round(2),
	}

	product.AddDomainEvent(NewProductCreatedEvent(product))

	return product, nil
}

// UpdateDetails replaces the descriptive fields of the product
func (p *Product) UpdateDetails(details ProductDetails) error {
	name := strings.TrimSpace(details.Name)
	if err := validateProductName(name); err != nil {
		return err
	}
	if len(details.Image) > 500 {
		return shared.NewDomainError("INVALID_IMAGE", "Image path cannot exceed 500 characters")
	}

	p.Name = name
	p.Image = strings.TrimSpace(details.Image)
	p.Brand = strings.TrimSpace(details.Brand)
	p.Category = strings.TrimSpace(details.Category)
	p.Description = details.Description
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewProductUpdatedEvent(p))

	return nil
}

// SetImage sets the product image path or URL
func (p *Product) SetImage(image string) {
	p.Image = strings.TrimSpace(image)
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// SetPrice changes the unit price
func (p *Product) SetPrice(price decimal.Decimal) error {
	if err := validatePrice(price); err != nil {
		return err
	}
	if p.Price.Equal(price) {
		return nil
	}

	oldPrice := p.Price
	p.Price = price.Round(2)
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewProductPriceChangedEvent(p, oldPrice))

	return nil
}

// SetStock overwrites the stock count
func (p *Product) SetStock(count int) error {
	if count < 0 {
		return shared.NewDomainError("INVALID_STOCK", "Count in stock cannot be negative")
	}
	old := p.CountInStock
	p.CountInStock = count
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	if old != count {
		p.AddDomainEvent(NewProductStockChangedEvent(p, old))
	}
	return nil
}

// DecreaseStock removes qty units from stock
func (p *Product) DecreaseStock(qty int) error {
	if qty <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if !p.HasStock(qty) {
		return shared.ErrInsufficientStock
	}
	return p.SetStock(p.CountInStock - qty)
}

// IncreaseStock adds qty units to stock
func (p *Product) IncreaseStock(qty int) error {
	if qty <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	return p.SetStock(p.CountInStock + qty)
}

// InStock returns true if at least one unit is available
func (p *Product) InStock() bool {
	return p.CountInStock > 0
}

// HasStock returns true if qty units can be sold
func (p *Product) HasStock(qty int) bool {
	return qty > 0 && p.CountInStock >= qty
}

func validateProductName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot exceed 200 characters")
	}
	return nil
}

func validatePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}
	return nil
}
