package router

import (
	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/interfaces/http/handler"
)

// Handlers are the storefront API handlers
type Handlers struct {
	Product *handler.ProductHandler
	Order   *handler.OrderHandler
	Auth    *handler.AuthHandler
	User    *handler.UserHandler
	Config  *handler.ConfigHandler
}

// Guards are the middleware protecting routes
type Guards struct {
	// Auth requires a valid access token
	Auth gin.HandlerFunc
	// Admin requires the admin flag; it runs after Auth
	Admin gin.HandlerFunc
	// BodyLimit caps JSON request bodies
	BodyLimit gin.HandlerFunc
	// UploadBodyLimit caps multipart uploads
	UploadBodyLimit gin.HandlerFunc
	// ImageUploads mounts the upload route
	ImageUploads bool
}

// StorefrontGroups builds the /api/v1 route table
func StorefrontGroups(h Handlers, g Guards) []RouteRegistrar {
	user := []gin.HandlerFunc{g.Auth}
	admin := []gin.HandlerFunc{g.Auth, g.Admin}
	with := func(mw []gin.HandlerFunc, fn gin.HandlerFunc) []gin.HandlerFunc {
		return append(append([]gin.HandlerFunc{}, mw...), fn)
	}

	products := NewDomainGroup("products", "/products")
	products.
		GET("", h.Product.List).
		GET("/:id", h.Product.GetByID).
		POST("", with(admin, h.Product.Create)...).
		PUT("/:id", with(admin, h.Product.Update)...).
		DELETE("/:id", with(admin, h.Product.Delete)...)

	orders := NewDomainGroup("orders", "/orders").Use(g.Auth)
	orders.
		POST("", h.Order.Create).
		GET("/mine", h.Order.ListMine).
		GET("", g.Admin, h.Order.List).
		GET("/:id", h.Order.GetByID).
		PUT("/:id/pay", h.Order.Pay).
		PUT("/:id/deliver", g.Admin, h.Order.Deliver)

	config := NewDomainGroup("config", "/config")
	config.GET("/paypal", h.Config.PayPal)

	users := NewDomainGroup("users", "/users")
	users.
		POST("", h.Auth.Register).
		POST("/auth", h.Auth.Login).
		POST("/refresh", h.Auth.Refresh).
		POST("/logout", with(user, h.Auth.Logout)...).
		GET("/profile", with(user, h.User.GetProfile)...).
		PUT("/profile", with(user, h.User.UpdateProfile)...).
		GET("", with(admin, h.User.List)...).
		PUT("/:id/admin", with(admin, h.User.SetAdmin)...).
		DELETE("/:id", with(admin, h.User.Delete)...)

	groups := []*DomainGroup{products, orders, config, users}
	if g.BodyLimit != nil {
		for _, group := range groups {
			group.Use(g.BodyLimit)
		}
	}

	registrars := make([]RouteRegistrar, 0, len(groups)+1)
	for _, group := range groups {
		registrars = append(registrars, group)
	}

	if g.ImageUploads {
		uploads := NewDomainGroup("uploads", "/uploads")
		if g.UploadBodyLimit != nil {
			uploads.Use(g.UploadBodyLimit)
		}
		uploads.POST("/products/image", with(admin, h.Product.UploadImage)...)
		registrars = append(registrars, uploads)
	}
	return registrars
}
