package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSortOrder(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty string returns DESC", "", "DESC"},
		{"asc lowercase returns ASC", "asc", "ASC"},
		{"ASC uppercase returns ASC", "ASC", "ASC"},
		{"whitespace around asc returns ASC", "  asc  ", "ASC"},
		{"desc returns DESC", "desc", "DESC"},
		{"sql injection attempt returns DESC", "ASC; DROP TABLE users;--", "DESC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ValidateSortOrder(tt.input))
		})
	}
}

func TestValidateSortField(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty returns default", "", "created_at"},
		{"snake case key", "count_in_stock", "count_in_stock"},
		{"camel case alias", "countInStock", "count_in_stock"},
		{"unknown field returns default", "password_hash", "created_at"},
		{"sql injection returns default", "name; DROP TABLE products", "created_at"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ValidateSortField(tt.input, ProductSortFields, "created_at"))
		})
	}
}

func TestLikePattern(t *testing.T) {
	assert.Equal(t, "%airpods%", likePattern(" AirPods "))
	assert.Equal(t, `%50\% off\_x%`, likePattern("50% OFF_x"))
}
