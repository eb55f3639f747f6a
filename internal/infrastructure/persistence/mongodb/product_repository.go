package mongodb

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ProductRepository implements catalog.ProductRepository on the products collection
type ProductRepository struct {
	coll *mongo.Collection
}

// NewProductRepository creates a new ProductRepository
func NewProductRepository(db *mongo.Database) *ProductRepository {
	return &ProductRepository{coll: db.Collection(ProductsCollection)}
}

// FindByID finds a product by its ID
func (r *ProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var doc productDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc); err != nil {
		return nil, translateError(err)
	}
	return doc.toDomain(), nil
}

// FindByIDs finds the products with the given IDs, skipping unknown ones
func (r *ProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	if len(ids) == 0 {
		return []catalog.Product{}, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = id.String()
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": keys}}, options.Find())
}

// FindAll finds products matching the filter, paged and ordered
func (r *ProductRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Product, error) {
	opts := options.Find().SetSort(sortSpec(filter.OrderBy, filter.OrderDir, productSortFields, "createdAt"))
	if filter.PageSize > 0 {
		opts.SetSkip(int64(filter.Offset())).SetLimit(int64(filter.PageSize))
	}
	return r.find(ctx, productQuery(filter), opts)
}

// Count counts products matching the filter
func (r *ProductRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	return r.coll.CountDocuments(ctx, productQuery(filter))
}

// Save creates or replaces a product
func (r *ProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	doc := productDocumentFromDomain(product)
	_, err := r.coll.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	return translateError(err)
}

// SaveWithLock sets the editable fields with a filter on the expected
// version and advances it by one.
func (r *ProductRepository) SaveWithLock(ctx context.Context, product *catalog.Product, expectedVersion int) error {
	doc := productDocumentFromDomain(product)
	now := time.Now().UTC()

	result, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": doc.ID, "version": expectedVersion},
		bson.M{"$set": bson.M{
			"name":         doc.Name,
			"image":        doc.Image,
			"brand":        doc.Brand,
			"category":     doc.Category,
			"description":  doc.Description,
			"price":        doc.Price,
			"countInStock": doc.CountInStock,
			"version":      expectedVersion + 1,
			"updatedAt":    now,
		}},
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

	product.Version = expectedVersion + 1
	product.UpdatedAt = now
	return nil
}

// Delete deletes a product
func (r *ProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.coll.DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// AdjustStock applies $inc to countInStock guarded by a filter that only
// matches when the result stays non-negative.
func (r *ProductRepository) AdjustStock(ctx context.Context, id uuid.UUID, delta int) error {
	if delta == 0 {
		return nil
	}

	result, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id.String(), "countInStock": bson.M{"$gte": -delta}},
		bson.M{
			"$inc": bson.M{"countInStock": delta, "version": 1},
			"$set": bson.M{"updatedAt": time.Now().UTC()},
		},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount > 0 {
		return nil
	}

	exists, err := r.coll.CountDocuments(ctx, bson.M{"_id": id.String()}, options.Count().SetLimit(1))
	if err != nil {
		return err
	}
	if exists == 0 {
		return shared.ErrNotFound
	}
	return shared.ErrInsufficientStock
}

func (r *ProductRepository) find(ctx context.Context, query bson.M, opts *options.FindOptions) ([]catalog.Product, error) {
	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	var docs []productDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	products := make([]catalog.Product, len(docs))
	for i := range docs {
		products[i] = *docs[i].toDomain()
	}
	return products, nil
}

func productQuery(filter shared.Filter) bson.M {
	query := bson.M{}
	if filter.Search != "" {
		query["name"] = containsRegex(filter.Search)
	}
	for key, value := range filter.Filters {
		switch key {
		case "category":
			query["category"] = value
		case "brand":
			query["brand"] = value
		case "in_stock":
			if value == true {
				query["countInStock"] = bson.M{"$gt": 0}
			}
		}
	}
	return query
}

// Ensure ProductRepository implements catalog.ProductRepository
var _ catalog.ProductRepository = (*ProductRepository)(nil)
