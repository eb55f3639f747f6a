package identity

import (
	"context"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// UserRepository defines the interface for user persistence
type UserRepository interface {
	// Create creates a new user. Duplicate username or email yields shared.ErrAlreadyExists.
	Create(ctx context.Context, user *User) error

	// Update updates an existing user
	Update(ctx context.Context, user *User) error

	// Delete deletes a user by ID
	Delete(ctx context.Context, id uuid.UUID) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)

	// FindByIDs finds users by ID. Missing IDs are skipped.
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]User, error)

	// FindByEmail finds a user by email
	FindByEmail(ctx context.Context, email string) (*User, error)

	// FindAll lists users. filter.Search matches username or email.
	FindAll(ctx context.Context, filter shared.Filter) ([]User, int64, error)

	// ExistsByUsername checks if a username already exists
	ExistsByUsername(ctx context.Context, username string) (bool, error)

	// ExistsByEmail checks if an email already exists
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}
