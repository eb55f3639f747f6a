package valueobject

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewShippingAddress(t *testing.T) {
	tests := []struct {
		name        string
		address     string
		city        string
		postalCode  string
		country     string
		wantErr     bool
		errContains string
	}{
		{
			name:       "valid address",
			address:    "221B Baker Street",
			city:       "London",
			postalCode: "NW1 6XE",
			country:    "United Kingdom",
		},
		{
			name:        "missing address line",
			city:        "Mumbai",
			postalCode:  "400001",
			country:     "India",
			wantErr:     true,
			errContains: "Address is required",
		},
		{
			name:        "missing city",
			address:     "12 MG Road",
			postalCode:  "560001",
			country:     "India",
			wantErr:     true,
			errContains: "City is required",
		},
		{
			name:        "missing postal code",
			address:     "12 MG Road",
			city:        "Bengaluru",
			country:     "India",
			wantErr:     true,
			errContains: "Postal code is required",
		},
		{
			name:        "whitespace country",
			address:     "12 MG Road",
			city:        "Bengaluru",
			postalCode:  "560001",
			country:     "   ",
			wantErr:     true,
			errContains: "Country is required",
		},
		{
			name:        "postal code too long",
			address:     "12 MG Road",
			city:        "Bengaluru",
			postalCode:  strings.Repeat("9", 21),
			country:     "India",
			wantErr:     true,
			errContains: "cannot exceed 20",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addr, err := NewShippingAddress(tt.address, tt.city, tt.postalCode, tt.country)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				assert.True(t, addr.IsEmpty())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.address, addr.Address())
			assert.Equal(t, tt.city, addr.City())
			assert.Equal(t, tt.postalCode, addr.PostalCode())
			assert.Equal(t, tt.country, addr.Country())
		})
	}
}

func TestShippingAddress_TrimsInput(t *testing.T) {
	addr, err := NewShippingAddress("  1 Main St ", " Springfield", "12345 ", " USA ")
	require.NoError(t, err)
	assert.Equal(t, "1 Main St, Springfield 12345, USA", addr.String())
}

func TestShippingAddress_JSON(t *testing.T) {
	addr := MustNewShippingAddress("1 Main St", "Springfield", "12345", "USA")

	data, err := json.Marshal(addr)
	require.NoError(t, err)
	assert.JSONEq(t, `{"address":"1 Main St","city":"Springfield","postalCode":"12345","country":"USA"}`, string(data))

	var decoded ShippingAddress
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, addr.Equals(decoded))

	err = json.Unmarshal([]byte(`{"address":"1 Main St","city":"","postalCode":"1","country":"USA"}`), &decoded)
	require.Error(t, err)
}

func TestShippingAddressFromDTO(t *testing.T) {
	dto := ShippingAddressDTO{Address: "a", City: "b", PostalCode: "c", Country: "d"}
	addr := ShippingAddressFromDTO(dto)
	assert.Equal(t, dto, addr.ToDTO())
	assert.False(t, addr.IsEmpty())
	assert.True(t, ShippingAddress{}.IsEmpty())
	assert.Equal(t, "", ShippingAddress{}.String())
}
