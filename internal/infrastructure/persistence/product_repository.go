package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormProductRepository implements catalog.ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID finds a product by its ID
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var model models.ProductModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDs finds multiple products by their IDs
func (r *GormProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	if len(ids) == 0 {
		return []catalog.Product{}, nil
	}

	var rows []models.ProductModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	return productsToDomain(rows), nil
}

// FindAll finds products matching the filter, paged and ordered
func (r *GormProductRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Product, error) {
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.ProductModel{}), filter)

	sortField := ValidateSortField(filter.OrderBy, ProductSortFields, "created_at")
	query = query.Order(sortField + " " + ValidateSortOrder(filter.OrderDir)).Order("id ASC")
	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	var rows []models.ProductModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return productsToDomain(rows), nil
}

// Count counts products matching the filter
func (r *GormProductRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.ProductModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a product
func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	return r.db.WithContext(ctx).Save(models.ProductModelFromDomain(product)).Error
}

// SaveWithLock updates the product row only if its version still matches
// expectedVersion, then advances the version by one.
func (r *GormProductRepository) SaveWithLock(ctx context.Context, product *catalog.Product, expectedVersion int) error {
	model := models.ProductModelFromDomain(product)
	now := time.Now()

	result := r.db.WithContext(ctx).
		Model(&models.ProductModel{}).
		Where("id = ? AND version = ?", product.ID, expectedVersion).
		Updates(map[string]any{
			"name":           model.Name,
			"image":          model.Image,
			"brand":          model.Brand,
			"category":       model.Category,
			"description":    model.Description,
			"price":          model.Price,
			"count_in_stock": model.CountInStock,
			"version":        expectedVersion + 1,
			"updated_at":     now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var exists int64
		if err := r.db.WithContext(ctx).Model(&models.ProductModel{}).Where("id = ?", product.ID).Count(&exists).Error; err != nil {
			return err
		}
		if exists == 0 {
			return shared.ErrNotFound
		}
		return shared.ErrConcurrencyConflict
	}

	product.Version = expectedVersion + 1
	product.UpdatedAt = now
	return nil
}

// Delete deletes a product
func (r *GormProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.ProductModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// AdjustStock adds delta to count_in_stock in a single conditional UPDATE so
// concurrent adjustments can never drive the count below zero.
func (r *GormProductRepository) AdjustStock(ctx context.Context, id uuid.UUID, delta int) error {
	if delta == 0 {
		return nil
	}

	result := r.db.WithContext(ctx).
		Model(&models.ProductModel{}).
		Where("id = ? AND count_in_stock + ? >= 0", id, delta).
		Updates(map[string]any{
			"count_in_stock": gorm.Expr("count_in_stock + ?", delta),
			"version":        gorm.Expr("version + 1"),
			"updated_at":     time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var exists int64
	if err := r.db.WithContext(ctx).Model(&models.ProductModel{}).Where("id = ?", id).Count(&exists).Error; err != nil {
		return err
	}
	if exists == 0 {
		return shared.ErrNotFound
	}
	return shared.ErrInsufficientStock
}

func (r *GormProductRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where(`LOWER(name) LIKE ? ESCAPE '\'`, likePattern(filter.Search))
	}
	for key, value := range filter.Filters {
		switch key {
		case "category":
			query = query.Where("category = ?", value)
		case "brand":
			query = query.Where("brand = ?", value)
		case "in_stock":
			if value == true {
				query = query.Where("count_in_stock > 0")
			}
		}
	}
	return query
}

func productsToDomain(rows []models.ProductModel) []catalog.Product {
	products := make([]catalog.Product, len(rows))
	for i := range rows {
		products[i] = *rows[i].ToDomain()
	}
	return products
}

// Ensure GormProductRepository implements ProductRepository
var _ catalog.ProductRepository = (*GormProductRepository)(nil)
