package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// ProductService handles product-related business operations
type ProductService struct {
	productRepo    catalog.ProductRepository
	images         ImageStorage
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// ProductServiceOption configures a ProductService
type ProductServiceOption func(*ProductService)

// WithImageStorage enables product image uploads
func WithImageStorage(images ImageStorage) ProductServiceOption {
	return func(s *ProductService) {
		s.images = images
	}
}

// WithEventPublisher publishes product domain events after each save
func WithEventPublisher(publisher shared.EventPublisher) ProductServiceOption {
	return func(s *ProductService) {
		s.eventPublisher = publisher
	}
}

// NewProductService creates a new ProductService
func NewProductService(productRepo catalog.ProductRepository, zapLogger *zap.Logger, opts ...ProductServiceOption) *ProductService {
	if zapLogger == nil {
		zapLogger = zap.NewNop()
	}
	s := &ProductService{
		productRepo: productRepo,
		logger:      zapLogger.Named("product_service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns one page of products whose name contains the keyword,
// case-insensitively. An empty keyword matches every product.
func (s *ProductService) List(ctx context.Context, query ListProductsQuery) (*ProductListResponse, error) {
	pageSize := query.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	filter := shared.Filter{
		Page:     query.Page,
		PageSize: pageSize,
		OrderBy:  "created_at",
		OrderDir: "desc",
		Search:   query.Keyword,
	}.Normalize(maxPageSize)

	total, err := s.productRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	products, err := s.productRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	page := shared.NewPaginated(products, total, filter.Page, filter.PageSize)
	return &ProductListResponse{
		Products: ToProductResponses(page.Items),
		Page:     page.Page,
		Pages:    page.TotalPages,
		PageSize: page.PageSize,
		Total:    page.Total,
	}, nil
}

// GetByID retrieves a product by ID
func (s *ProductService) GetByID(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToProductResponse(product)
	return &response, nil
}

// Create adds a product to the catalog
func (s *ProductService) Create(ctx context.Context, req CreateProductRequest) (*ProductResponse, error) {
	product, err := catalog.NewProduct(req.Name, req.Price)
	if err != nil {
		return nil, err
	}
	if err := product.UpdateDetails(catalog.ProductDetails{
		Name:        req.Name,
		Image:       req.Image,
		Brand:       req.Brand,
		Category:    req.Category,
		Description: req.Description,
	}); err != nil {
		return nil, err
	}
	if err := product.SetStock(req.CountInStock); err != nil {
		return nil, err
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	s.publish(ctx, product)

	logger.FromContext(ctx).Info("Product created",
		zap.String("product_id", product.ID.String()),
		zap.String("name", product.Name))

	response := ToProductResponse(product)
	return &response, nil
}

// Update applies a partial update to a product
func (s *ProductService) Update(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	loadedVersion := product.Version

	details := catalog.ProductDetails{
		Name:        product.Name,
		Image:       product.Image,
		Brand:       product.Brand,
		Category:    product.Category,
		Description: product.Description,
	}
	changed := false
	if req.Name != nil {
		details.Name, changed = *req.Name, true
	}
	if req.Image != nil {
		details.Image, changed = *req.Image, true
	}
	if req.Brand != nil {
		details.Brand, changed = *req.Brand, true
	}
	if req.Category != nil {
		details.Category, changed = *req.Category, true
	}
	if req.Description != nil {
		details.Description, changed = *req.Description, true
	}
	if changed {
		if err := product.UpdateDetails(details); err != nil {
			return nil, err
		}
	}
	if req.Price != nil {
		if err := product.SetPrice(*req.Price); err != nil {
			return nil, err
		}
	}
	if req.CountInStock != nil && *req.CountInStock != product.CountInStock {
		if err := product.SetStock(*req.CountInStock); err != nil {
			return nil, err
		}
	}

	if err := s.productRepo.SaveWithLock(ctx, product, loadedVersion); err != nil {
		if errors.Is(err, shared.ErrConcurrencyConflict) {
			s.logger.Warn("Product changed during update", zap.String("product_id", id.String()))
		}
		return nil, err
	}
	s.publish(ctx, product)

	response := ToProductResponse(product)
	return &response, nil
}

// Delete removes a product from the catalog
func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.productRepo.Delete(ctx, id); err != nil {
		return err
	}
	logger.FromContext(ctx).Info("Product deleted", zap.String("product_id", id.String()))
	return nil
}

// DecreaseStock removes qty units from a product's stock atomically.
// It fails with shared.ErrInsufficientStock when fewer units remain.
func (s *ProductService) DecreaseStock(ctx context.Context, id uuid.UUID, qty int) error {
	if qty <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	return s.productRepo.AdjustStock(ctx, id, -qty)
}

func (s *ProductService) publish(ctx context.Context, product *catalog.Product) {
	events := product.GetDomainEvents()
	product.ClearDomainEvents()
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish product events",
			zap.String("product_id", product.ID.String()),
			zap.Error(err))
	}
}
