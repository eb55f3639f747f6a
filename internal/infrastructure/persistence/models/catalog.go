package models

import (
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
)

// ProductModel is the persistence model for the Product domain entity.
type ProductModel struct {
	AggregateModel
	Name         string          `gorm:"type:varchar(200);not null;index"`
	Image        string          `gorm:"type:varchar(500)"`
	Brand        string          `gorm:"type:varchar(100)"`
	Category     string          `gorm:"type:varchar(100);index"`
	Description  string          `gorm:"type:text"`
	Price        decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	CountInStock int             `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product entity.
func (m *ProductModel) ToDomain() *catalog.Product {
	return &catalog.Product{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Name:              m.Name,
		Image:             m.Image,
		Brand:             m.Brand,
		Category:          m.Category,
		Description:       m.Description,
		Price:             m.Price,
		CountInStock:      m.CountInStock,
	}
}

// FromDomain populates the persistence model from a domain Product entity.
func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.Name = p.Name
	m.Image = p.Image
	m.Brand = p.Brand
	m.Category = p.Category
	m.Description = p.Description
	m.Price = p.Price
	m.CountInStock = p.CountInStock
}

// ProductModelFromDomain creates a new persistence model from a domain Product entity.
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{}
	m.FromDomain(p)
	return m
}
