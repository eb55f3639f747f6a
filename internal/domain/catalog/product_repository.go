package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	// FindByID finds a product by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindByIDs finds multiple products by their IDs. Missing IDs are skipped.
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Product, error)

	// FindAll finds products matching the filter.
	// filter.Search is a case-insensitive substring match on the product name.
	FindAll(ctx context.Context, filter shared.Filter) ([]Product, error)

	// Count counts products matching the filter, ignoring paging
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// Save creates or updates a product
	Save(ctx context.Context, product *Product) error

	// SaveWithLock writes an edited product only while the stored version
	// still equals expectedVersion, so a concurrent stock adjustment is not
	// overwritten. It fails with ErrConcurrencyConflict otherwise.
	SaveWithLock(ctx context.Context, product *Product, expectedVersion int) error

	// Delete deletes a product
	Delete(ctx context.Context, id uuid.UUID) error

	// AdjustStock atomically adds delta to the stock count.
	// It fails with ErrInsufficientStock if the result would be negative.
	AdjustStock(ctx context.Context, id uuid.UUID, delta int) error
}
