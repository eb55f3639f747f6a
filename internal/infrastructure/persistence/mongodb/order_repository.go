package mongodb

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/trade"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// OrderRepository implements trade.OrderRepository on the orders collection.
// Order lines are embedded in the order document.
type OrderRepository struct {
	coll *mongo.Collection
}

// NewOrderRepository creates a new OrderRepository
func NewOrderRepository(db *mongo.Database) *OrderRepository {
	return &OrderRepository{coll: db.Collection(OrdersCollection)}
}

// FindByID finds an order by ID
func (r *OrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.Order, error) {
	var doc orderDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc); err != nil {
		return nil, translateError(err)
	}
	return doc.toDomain(), nil
}

// FindByUser returns the user's orders, newest first
func (r *OrderRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]trade.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}})
	return r.find(ctx, bson.M{"user": userID.String()}, opts)
}

// FindAll lists orders with paging and the is_paid / is_delivered / user_id filters
func (r *OrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]trade.Order, int64, error) {
	query := bson.M{}
	if v, ok := filter.Filters["is_paid"].(bool); ok {
		query["isPaid"] = v
	}
	if v, ok := filter.Filters["is_delivered"].(bool); ok {
		query["isDelivered"] = v
	}
	if v, ok := filter.Filters["user_id"].(uuid.UUID); ok {
		query["user"] = v.String()
	}

	total, err := r.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().SetSort(sortSpec(filter.OrderBy, filter.OrderDir, orderSortFields, "createdAt"))
	if filter.PageSize > 0 {
		opts.SetSkip(int64(filter.Offset())).SetLimit(int64(filter.PageSize))
	}
	orders, err := r.find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// Save inserts a new order
func (r *OrderRepository) Save(ctx context.Context, order *trade.Order) error {
	_, err := r.coll.InsertOne(ctx, orderDocumentFromDomain(order))
	return translateError(err)
}

// SaveWithLock writes the payment and delivery state if the stored version
// still matches order.Version, incrementing it in the same update. Reusing
// a payment id from another order yields shared.ErrAlreadyExists.
func (r *OrderRepository) SaveWithLock(ctx context.Context, order *trade.Order) error {
	doc := orderDocumentFromDomain(order)
	now := time.Now().UTC()

	set := bson.M{
		"isPaid":      doc.IsPaid,
		"paidAt":      doc.PaidAt,
		"isDelivered": doc.IsDelivered,
		"deliveredAt": doc.DeliveredAt,
		"updatedAt":   now,
	}
	if doc.PaymentResult != nil {
		set["paymentResult"] = doc.PaymentResult
	}

	result, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": doc.ID, "version": order.Version},
		bson.M{"$set": set, "$inc": bson.M{"version": 1}},
	)
	if err != nil {
		return translateError(err)
	}
	if result.MatchedCount == 0 {
		n, err := r.coll.CountDocuments(ctx, bson.M{"_id": doc.ID}, options.Count().SetLimit(1))
		if err != nil {
			return err
		}
		if n == 0 {
			return shared.ErrNotFound
		}
		return shared.ErrConcurrencyConflict
	}

	order.IncrementVersion()
	order.UpdatedAt = now
	return nil
}

func (r *OrderRepository) find(ctx context.Context, query bson.M, opts *options.FindOptions) ([]trade.Order, error) {
	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	var docs []orderDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	orders := make([]trade.Order, len(docs))
	for i := range docs {
		orders[i] = *docs[i].toDomain()
	}
	return orders, nil
}

// Ensure OrderRepository implements trade.OrderRepository
var _ trade.OrderRepository = (*OrderRepository)(nil)
