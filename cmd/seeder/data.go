package main

import (
	"fmt"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/identity"
)

type sampleUser struct {
	username string
	email    string
	password string
	admin    bool
}

type sampleProduct struct {
	details catalog.ProductDetails
	price   string
	stock   int
}

var sampleUsers = []sampleUser{
	{username: "admin", email: "admin@example.com", password: "storefront123", admin: true},
	{username: "john", email: "john@example.com", password: "storefront123"},
	{username: "jane", email: "jane@example.com", password: "storefront123"},
}

var sampleProducts = []sampleProduct{
	{
		details: catalog.ProductDetails{
			Name:        "Airpods Wireless Bluetooth Headphones",
			Image:       "/images/airpods.jpg",
			Brand:       "Apple",
			Category:    "Electronics",
			Description: "Bluetooth technology lets you connect it with compatible devices wirelessly. High-quality AAC audio offers immersive listening experience.",
		},
		price: "89.99",
		stock: 10,
	},
	{
		details: catalog.ProductDetails{
			Name:        "iPhone 13 Pro 256GB Memory",
			Image:       "/images/phone.jpg",
			Brand:       "Apple",
			Category:    "Electronics",
			Description: "Introducing the iPhone 13 Pro. A transformative triple-camera system that adds tons of capability without complexity.",
		},
		price: "599.99",
		stock: 7,
	},
	{
		details: catalog.ProductDetails{
			Name:        "Cannon EOS 80D DSLR Camera",
			Image:       "/images/camera.jpg",
			Brand:       "Cannon",
			Category:    "Electronics",
			Description: "Characterized by versatile imaging specs, the Canon EOS 80D further clarifies itself using a pair of robust focusing systems.",
		},
		price: "929.99",
		stock: 5,
	},
	{
		details: catalog.ProductDetails{
			Name:        "Sony Playstation 5 White Version",
			Image:       "/images/playstation.jpg",
			Brand:       "Sony",
			Category:    "Electronics",
			Description: "The ultimate home entertainment center starts with PlayStation.",
		},
		price: "399.99",
		stock: 11,
	},
	{
		details: catalog.ProductDetails{
			Name:        "Logitech G-Series Gaming Mouse",
			Image:       "/images/mouse.jpg",
			Brand:       "Logitech",
			Category:    "Electronics",
			Description: "Get a better handle on your games with this Logitech LIGHTSYNC gaming mouse.",
		},
		price: "49.99",
		stock: 7,
	},
	{
		details: catalog.ProductDetails{
			Name:        "Amazon Echo Dot 3rd Generation",
			Image:       "/images/alexa.jpg",
			Brand:       "Amazon",
			Category:    "Electronics",
			Description: "Meet Echo Dot - Our most popular smart speaker with a fabric design.",
		},
		price: "29.99",
		stock: 0,
	},
}

func buildUsers() ([]*identity.User, error) {
	users := make([]*identity.User, 0, len(sampleUsers))
	for _, s := range sampleUsers {
		newUser := identity.NewUser
		if s.admin {
			newUser = identity.NewAdminUser
		}
		u, err := newUser(s.username, s.email, s.password)
		if err != nil {
			return nil, fmt.Errorf("sample user %s: %w", s.username, err)
		}
		u.ClearDomainEvents()
		users = append(users, u)
	}
	return users, nil
}

func buildProduct(s sampleProduct) (*catalog.Product, error) {
	p, err := catalog.NewProduct(s.details.Name, decimal.RequireFromString(s.price))
	if err != nil {
		return nil, err
	}
	if err := p.UpdateDetails(s.details); err != nil {
		return nil, err
	}
	if err := p.SetStock(s.stock); err != nil {
		return nil, err
	}
	p.ClearDomainEvents()
	return p, nil
}

// fakeProducts generates n extra catalog entries. The same seed yields the
// same products.
func fakeProducts(n int, seed uint64) []sampleProduct {
	f := gofakeit.New(seed)
	out := make([]sampleProduct, 0, n)
	for range n {
		price := decimal.NewFromFloat(f.Price(5, 500)).Round(2)
		out = append(out, sampleProduct{
			details: catalog.ProductDetails{
				Name:        f.ProductName(),
				Image:       "/images/sample.jpg",
				Brand:       f.Company(),
				Category:    f.ProductCategory(),
				Description: f.Sentence(12),
			},
			price: price.StringFixed(2),
			stock: f.Number(0, 25),
		})
	}
	return out
}
