package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
)

// ListProductsQuery is the product search of the storefront home page
type ListProductsQuery struct {
	Keyword  string `form:"keyword" binding:"max=100"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// CreateProductRequest represents a request to create a new product
type CreateProductRequest struct {
	Name         string          `json:"name" binding:"required,min=1,max=200"`
	Price        decimal.Decimal `json:"price" binding:"required"`
	Image        string          `json:"image" binding:"max=500"`
	Brand        string          `json:"brand" binding:"max=100"`
	Category     string          `json:"category" binding:"max=100"`
	Description  string          `json:"description" binding:"max=5000"`
	CountInStock int             `json:"countInStock" binding:"min=0"`
}

// UpdateProductRequest is a partial update; nil fields are left unchanged
type UpdateProductRequest struct {
	Name         *string          `json:"name" binding:"omitempty,min=1,max=200"`
	Price        *decimal.Decimal `json:"price"`
	Image        *string          `json:"image" binding:"omitempty,max=500"`
	Brand        *string          `json:"brand" binding:"omitempty,max=100"`
	Category     *string          `json:"category" binding:"omitempty,max=100"`
	Description  *string          `json:"description" binding:"omitempty,max=5000"`
	CountInStock *int             `json:"countInStock" binding:"omitempty,min=0"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID           uuid.UUID       `json:"id"`
	Name         string          `json:"name"`
	Image        string          `json:"image"`
	Brand        string          `json:"brand"`
	Category     string          `json:"category"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	CountInStock int             `json:"countInStock"`
	InStock      bool            `json:"inStock"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// ProductListResponse is one page of search results
type ProductListResponse struct {
	Products []ProductResponse `json:"products"`
	Page     int               `json:"page"`
	Pages    int               `json:"pages"`
	PageSize int               `json:"pageSize"`
	Total    int64             `json:"total"`
}

// UploadImageResponse carries the public URL of an uploaded image
type UploadImageResponse struct {
	Image string `json:"image"`
}

// ToProductResponse converts a domain Product to a response DTO
func ToProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:           p.ID,
		Name:         p.Name,
		Image:        p.Image,
		Brand:        p.Brand,
		Category:     p.Category,
		Description:  p.Description,
		Price:        p.Price,
		CountInStock: p.CountInStock,
		InStock:      p.InStock(),
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

// ToProductResponses converts a slice of domain Products
func ToProductResponses(products []catalog.Product) []ProductResponse {
	responses := make([]ProductResponse, len(products))
	for i := range products {
		responses[i] = ToProductResponse(&products[i])
	}
	return responses
}
