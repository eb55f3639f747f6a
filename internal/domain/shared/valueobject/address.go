package valueobject

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/storefront/backend/internal/domain/shared"
)

const (
	maxAddressLineLength = 300
	maxCityLength        = 100
	maxPostalCodeLength  = 20
	maxCountryLength     = 100
)

// ShippingAddress is an immutable value object describing where an order ships.
// All four fields are required.
type ShippingAddress struct {
	address    string
	city       string
	postalCode string
	country    string
}

// NewShippingAddress validates and creates a shipping address
func NewShippingAddress(address, city, postalCode, country string) (ShippingAddress, error) {
	address = strings.TrimSpace(address)
	city = strings.TrimSpace(city)
	postalCode = strings.TrimSpace(postalCode)
	country = strings.TrimSpace(country)

	if err := requireField("Address", address, maxAddressLineLength); err != nil {
		return ShippingAddress{}, err
	}
	if err := requireField("City", city, maxCityLength); err != nil {
		return ShippingAddress{}, err
	}
	if err := requireField("Postal code", postalCode, maxPostalCodeLength); err != nil {
		return ShippingAddress{}, err
	}
	if err := requireField("Country", country, maxCountryLength); err != nil {
		return ShippingAddress{}, err
	}

	return ShippingAddress{
		address:    address,
		city:       city,
		postalCode: postalCode,
		country:    country,
	}, nil
}

// MustNewShippingAddress creates a shipping address, panics on error
func MustNewShippingAddress(address, city, postalCode, country string) ShippingAddress {
	addr, err := NewShippingAddress(address, city, postalCode, country)
	if err != nil {
		panic(err)
	}
	return addr
}

func requireField(label, value string, maxLen int) error {
	if value == "" {
		return shared.NewDomainError("INVALID_ADDRESS", label+" is required")
	}
	if len(value) > maxLen {
		return shared.NewDomainError("INVALID_ADDRESS", fmt.Sprintf("%s cannot exceed %d characters", label, maxLen))
	}
	return nil
}

func (a ShippingAddress) Address() string    { return a.address }
func (a ShippingAddress) City() string       { return a.city }
func (a ShippingAddress) PostalCode() string { return a.postalCode }
func (a ShippingAddress) Country() string    { return a.country }

// IsEmpty returns true for the zero value
func (a ShippingAddress) IsEmpty() bool {
	return a.address == "" && a.city == "" && a.postalCode == "" && a.country == ""
}

// String formats the address the way it is printed on the order page:
// "address, city postalCode, country"
func (a ShippingAddress) String() string {
	if a.IsEmpty() {
		return ""
	}
	return fmt.Sprintf("%s, %s %s, %s", a.address, a.city, a.postalCode, a.country)
}

// Equals returns true if both addresses are equal
func (a ShippingAddress) Equals(other ShippingAddress) bool {
	return a == other
}

// ShippingAddressDTO is the flat form used for JSON and for storage documents
type ShippingAddressDTO struct {
	Address    string `json:"address" bson:"address"`
	City       string `json:"city" bson:"city"`
	PostalCode string `json:"postalCode" bson:"postalCode"`
	Country    string `json:"country" bson:"country"`
}

// ToDTO converts the value object to its flat form
func (a ShippingAddress) ToDTO() ShippingAddressDTO {
	return ShippingAddressDTO{
		Address:    a.address,
		City:       a.city,
		PostalCode: a.postalCode,
		Country:    a.country,
	}
}

// ShippingAddressFromDTO rebuilds a stored address without re-validating it
func ShippingAddressFromDTO(dto ShippingAddressDTO) ShippingAddress {
	return ShippingAddress{
		address:    dto.Address,
		city:       dto.City,
		postalCode: dto.PostalCode,
		country:    dto.Country,
	}
}

// MarshalJSON implements json.Marshaler
func (a ShippingAddress) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.ToDTO())
}

// UnmarshalJSON implements json.Unmarshaler and applies the constructor's validation
func (a *ShippingAddress) UnmarshalJSON(data []byte) error {
	var dto ShippingAddressDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return err
	}
	addr, err := NewShippingAddress(dto.Address, dto.City, dto.PostalCode, dto.Country)
	if err != nil {
		return err
	}
	*a = addr
	return nil
}
