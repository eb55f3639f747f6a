package persistence

import (
	"strings"
)

// ValidateSortOrder normalizes the sort order to ASC or DESC.
// Anything other than asc yields DESC.
func ValidateSortOrder(orderDir string) string {
	if strings.EqualFold(strings.TrimSpace(orderDir), "asc") {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField resolves sortField through the allow-list and returns the
// column to order by. Unknown or empty fields resolve to defaultColumn.
func ValidateSortField(sortField string, allowed map[string]string, defaultColumn string) string {
	if column, ok := allowed[strings.TrimSpace(sortField)]; ok {
		return column
	}
	return defaultColumn
}

// ProductSortFields maps accepted sort keys to product columns
var ProductSortFields = map[string]string{
	"created_at":     "created_at",
	"createdAt":      "created_at",
	"updated_at":     "updated_at",
	"name":           "name",
	"price":          "price",
	"brand":          "brand",
	"category":       "category",
	"count_in_stock": "count_in_stock",
	"countInStock":   "count_in_stock",
}

// OrderSortFields maps accepted sort keys to order columns
var OrderSortFields = map[string]string{
	"created_at":   "created_at",
	"createdAt":    "created_at",
	"total_price":  "total_price",
	"totalPrice":   "total_price",
	"paid_at":      "paid_at",
	"paidAt":       "paid_at",
	"delivered_at": "delivered_at",
	"deliveredAt":  "delivered_at",
}

// UserSortFields maps accepted sort keys to user columns
var UserSortFields = map[string]string{
	"created_at": "created_at",
	"createdAt":  "created_at",
	"username":   "username",
	"email":      "email",
	"is_admin":   "is_admin",
	"isAdmin":    "is_admin",
}

// likePattern lowercases s and escapes LIKE wildcards for a contains match
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(strings.TrimSpace(s))) + "%"
}
