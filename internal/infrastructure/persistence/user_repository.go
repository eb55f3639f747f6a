package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormUserRepository implements identity.UserRepository using GORM
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GormUserRepository
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// Create creates a new user
func (r *GormUserRepository) Create(ctx context.Context, user *identity.User) error {
	return translateWriteError(r.db.WithContext(ctx).Create(models.UserModelFromDomain(user)).Error)
}

// Update overwrites every column of an existing user
func (r *GormUserRepository) Update(ctx context.Context, user *identity.User) error {
	result := r.db.WithContext(ctx).
		Model(&models.UserModel{}).
		Where("id = ?", user.ID).
		Select("*").
		Omit("id", "created_at").
		Updates(models.UserModelFromDomain(user))
	if result.Error != nil {
		return translateWriteError(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete deletes a user by ID
func (r *GormUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.UserModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	return r.findOne(ctx, "id = ?", id)
}

// FindByIDs finds users by ID, skipping unknown IDs
func (r *GormUserRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]identity.User, error) {
	if len(ids) == 0 {
		return []identity.User{}, nil
	}
	var rows []models.UserModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	return usersToDomain(rows), nil
}

// FindByEmail finds a user by email, case-insensitively
func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	return r.findOne(ctx, "email = ?", strings.ToLower(strings.TrimSpace(email)))
}

// FindAll lists users with paging. filter.Search matches username or email.
func (r *GormUserRepository) FindAll(ctx context.Context, filter shared.Filter) ([]identity.User, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.UserModel{})
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where(`username LIKE ? ESCAPE '\' OR email LIKE ? ESCAPE '\'`, pattern, pattern)
	}
	if v, ok := filter.Filters["is_admin"].(bool); ok {
		query = query.Where("is_admin = ?", v)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sortField := ValidateSortField(filter.OrderBy, UserSortFields, "created_at")
	query = query.Order(sortField + " " + ValidateSortOrder(filter.OrderDir))
	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	var rows []models.UserModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return usersToDomain(rows), total, nil
}

// ExistsByUsername checks if a username already exists
func (r *GormUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, "username = ?", strings.ToLower(strings.TrimSpace(username)))
}

// ExistsByEmail checks if an email already exists
func (r *GormUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, "email = ?", strings.ToLower(strings.TrimSpace(email)))
}

func (r *GormUserRepository) findOne(ctx context.Context, query string, args ...any) (*identity.User, error) {
	var model models.UserModel
	if err := r.db.WithContext(ctx).Where(query, args...).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

func (r *GormUserRepository) exists(ctx context.Context, query string, args ...any) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.UserModel{}).Where(query, args...).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func usersToDomain(rows []models.UserModel) []identity.User {
	users := make([]identity.User, len(rows))
	for i := range rows {
		users[i] = *rows[i].ToDomain()
	}
	return users
}

// Ensure GormUserRepository implements UserRepository
var _ identity.UserRepository = (*GormUserRepository)(nil)
