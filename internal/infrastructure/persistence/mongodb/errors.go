package mongodb

import (
	"errors"
	"regexp"
	"strings"

	"github.com/storefront/backend/internal/domain/shared"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// translateError maps driver errors onto the shared domain errors
func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return shared.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return shared.ErrAlreadyExists
	default:
		return err
	}
}

// containsRegex builds a case-insensitive substring match with the
// keyword's regex metacharacters escaped
func containsRegex(keyword string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(strings.TrimSpace(keyword)), Options: "i"}
}

// sortSpec resolves an order-by request against the allowed fields and
// appends _id as a tie breaker so paging is stable
func sortSpec(orderBy, orderDir string, allowed map[string]string, defaultField string) bson.D {
	field, ok := allowed[strings.TrimSpace(orderBy)]
	if !ok {
		field = defaultField
	}
	dir := -1
	if strings.EqualFold(strings.TrimSpace(orderDir), "asc") {
		dir = 1
	}
	return bson.D{{Key: field, Value: dir}, {Key: "_id", Value: 1}}
}

var productSortFields = map[string]string{
	"created_at":     "createdAt",
	"createdAt":      "createdAt",
	"updated_at":     "updatedAt",
	"updatedAt":      "updatedAt",
	"name":           "name",
	"price":          "price",
	"brand":          "brand",
	"category":       "category",
	"count_in_stock": "countInStock",
	"countInStock":   "countInStock",
}

var orderSortFields = map[string]string{
	"created_at":  "createdAt",
	"createdAt":   "createdAt",
	"updated_at":  "updatedAt",
	"updatedAt":   "updatedAt",
	"total_price": "totalPrice",
	"totalPrice":  "totalPrice",
	"paid_at":     "paidAt",
	"paidAt":      "paidAt",
}

var userSortFields = map[string]string{
	"created_at": "createdAt",
	"createdAt":  "createdAt",
	"username":   "username",
	"email":      "email",
}
