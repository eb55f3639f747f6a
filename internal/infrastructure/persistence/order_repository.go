package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/trade"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormOrderRepository implements trade.OrderRepository using GORM.
// Order lines live in order_items and are written once, with the order.
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// FindByID finds an order with its lines
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.Order, error) {
	var model models.OrderModel
	if err := r.db.WithContext(ctx).Preload("Items").First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByUser returns the user's orders, newest first
func (r *GormOrderRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]trade.Order, error) {
	var rows []models.OrderModel
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return ordersToDomain(rows), nil
}

// FindAll lists orders with paging and the is_paid / is_delivered filters
func (r *GormOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]trade.Order, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.OrderModel{})
	if v, ok := filter.Filters["is_paid"].(bool); ok {
		query = query.Where("is_paid = ?", v)
	}
	if v, ok := filter.Filters["is_delivered"].(bool); ok {
		query = query.Where("is_delivered = ?", v)
	}
	if v, ok := filter.Filters["user_id"].(uuid.UUID); ok {
		query = query.Where("user_id = ?", v)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sortField := ValidateSortField(filter.OrderBy, OrderSortFields, "created_at")
	query = query.Order(sortField + " " + ValidateSortOrder(filter.OrderDir)).Order("id ASC")
	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	var rows []models.OrderModel
	if err := query.Preload("Items").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return ordersToDomain(rows), total, nil
}

// Save inserts a new order together with its lines
func (r *GormOrderRepository) Save(ctx context.Context, order *trade.Order) error {
	model := models.OrderModelFromDomain(order)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return translateWriteError(tx.Create(model).Error)
	})
}

// SaveWithLock writes the mutable order state if the stored version matches
// order.Version, then bumps the version on both sides. A payment id already
// recorded on another order yields shared.ErrAlreadyExists.
func (r *GormOrderRepository) SaveWithLock(ctx context.Context, order *trade.Order) error {
	model := models.OrderModelFromDomain(order)
	now := time.Now()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.OrderModel{}).
			Where("id = ? AND version = ?", order.ID, order.Version).
			Updates(map[string]any{
				"is_paid":               model.IsPaid,
				"paid_at":               model.PaidAt,
				"payment_id":            model.PaymentID,
				"payment_status":        model.PaymentStatus,
				"payment_update_time":   model.PaymentUpdateTime,
				"payment_email_address": model.PaymentEmailAddress,
				"is_delivered":          model.IsDelivered,
				"delivered_at":          model.DeliveredAt,
				"version":               order.Version + 1,
				"updated_at":            now,
			})
		if result.Error != nil {
			return translateWriteError(result.Error)
		}
		if result.RowsAffected > 0 {
			return nil
		}

		var count int64
		if err := tx.Model(&models.OrderModel{}).Where("id = ?", order.ID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return shared.ErrNotFound
		}
		return shared.ErrConcurrencyConflict
	})
	if err != nil {
		return err
	}

	order.IncrementVersion()
	order.UpdatedAt = now
	return nil
}

func ordersToDomain(rows []models.OrderModel) []trade.Order {
	orders := make([]trade.Order, len(rows))
	for i := range rows {
		orders[i] = *rows[i].ToDomain()
	}
	return orders
}

// Ensure GormOrderRepository implements OrderRepository
var _ trade.OrderRepository = (*GormOrderRepository)(nil)
