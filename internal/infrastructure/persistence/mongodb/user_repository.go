package mongodb

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/shared"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UserRepository implements identity.UserRepository on the users collection.
// Uniqueness of email and username relies on the indexes from EnsureIndexes.
type UserRepository struct {
	coll *mongo.Collection
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(UsersCollection)}
}

// Create inserts a new user
func (r *UserRepository) Create(ctx context.Context, user *identity.User) error {
	_, err := r.coll.InsertOne(ctx, userDocumentFromDomain(user))
	return translateError(err)
}

// Update replaces an existing user
func (r *UserRepository) Update(ctx context.Context, user *identity.User) error {
	doc := userDocumentFromDomain(user)
	result, err := r.coll.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc)
	if err != nil {
		return translateError(err)
	}
	if result.MatchedCount == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete deletes a user by ID
func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.coll.DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindByID finds a user by ID
func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	return r.findOne(ctx, bson.M{"_id": id.String()})
}

// FindByIDs finds users by ID, skipping unknown IDs
func (r *UserRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]identity.User, error) {
	if len(ids) == 0 {
		return []identity.User{}, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = id.String()
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": keys}}, options.Find())
}

// FindByEmail finds a user by email, case-insensitively
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	return r.findOne(ctx, bson.M{"email": normalize(email)})
}

// FindAll lists users with paging. filter.Search matches username or email.
func (r *UserRepository) FindAll(ctx context.Context, filter shared.Filter) ([]identity.User, int64, error) {
	query := bson.M{}
	if filter.Search != "" {
		re := containsRegex(filter.Search)
		query["$or"] = bson.A{bson.M{"username": re}, bson.M{"email": re}}
	}
	if v, ok := filter.Filters["is_admin"].(bool); ok {
		query["isAdmin"] = v
	}

	total, err := r.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().SetSort(sortSpec(filter.OrderBy, filter.OrderDir, userSortFields, "createdAt"))
	if filter.PageSize > 0 {
		opts.SetSkip(int64(filter.Offset())).SetLimit(int64(filter.PageSize))
	}
	users, err := r.find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// ExistsByUsername checks if a username already exists
func (r *UserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, bson.M{"username": normalize(username)})
}

// ExistsByEmail checks if an email already exists
func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, bson.M{"email": normalize(email)})
}

func (r *UserRepository) findOne(ctx context.Context, query bson.M) (*identity.User, error) {
	var doc userDocument
	if err := r.coll.FindOne(ctx, query).Decode(&doc); err != nil {
		return nil, translateError(err)
	}
	return doc.toDomain(), nil
}

func (r *UserRepository) find(ctx context.Context, query bson.M, opts *options.FindOptions) ([]identity.User, error) {
	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	var docs []userDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	users := make([]identity.User, len(docs))
	for i := range docs {
		users[i] = *docs[i].toDomain()
	}
	return users, nil
}

func (r *UserRepository) exists(ctx context.Context, query bson.M) (bool, error) {
	n, err := r.coll.CountDocuments(ctx, query, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Ensure UserRepository implements identity.UserRepository
var _ identity.UserRepository = (*UserRepository)(nil)
