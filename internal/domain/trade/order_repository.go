package trade

import (
	"context"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// OrderRepository defines the interface for order persistence
type OrderRepository interface {
	// FindByID finds an order by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindByUser returns every order placed by the user, newest first
	FindByUser(ctx context.Context, userID uuid.UUID) ([]Order, error)

	// FindAll lists orders. filter.Filters supports "is_paid" and "is_delivered" (bool).
	FindAll(ctx context.Context, filter shared.Filter) ([]Order, int64, error)

	// Save inserts a new order
	Save(ctx context.Context, order *Order) error

	// SaveWithLock updates an existing order if its stored version still equals
	// order.Version, then increments the version. A stale version yields
	// shared.ErrConcurrencyConflict.
	SaveWithLock(ctx context.Context, order *Order) error
}
