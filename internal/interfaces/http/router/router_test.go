package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func text(body string) gin.HandlerFunc {
	return func(c *gin.Context) { c.String(http.StatusOK, body) }
}

func serveRoute(engine *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestNewRouter(t *testing.T) {
	r := NewRouter(gin.New())
	assert.Equal(t, "v1", r.apiVersion)
	assert.Empty(t, r.registrars)

	r = NewRouter(gin.New(), WithAPIVersion("v2"))
	assert.Equal(t, "v2", r.apiVersion)
}

func TestRouter_RegisterAccumulates(t *testing.T) {
	r := NewRouter(gin.New())
	r.Register(NewDomainGroup("a", "/a"), NewDomainGroup("b", "/b")).
		Register(NewDomainGroup("c", "/c"))

	assert.Len(t, r.registrars, 3)
}

func TestRouter_SetupMountsUnderVersion(t *testing.T) {
	engine := gin.New()
	g := NewDomainGroup("config", "/config")
	g.GET("/paypal", text("paypal"))
	NewRouter(engine, WithAPIVersion("v2")).Register(g).Setup()

	w := serveRoute(engine, http.MethodGet, "/api/v2/config/paypal")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "paypal", w.Body.String())

	assert.Equal(t, http.StatusNotFound, serveRoute(engine, http.MethodGet, "/api/v1/config/paypal").Code)
}

func TestDomainGroup_Methods(t *testing.T) {
	engine := gin.New()
	g := NewDomainGroup("products", "/products")
	assert.Equal(t, "products", g.Name())
	assert.Equal(t, "/products", g.Prefix())

	g.GET("", text("list")).
		POST("", text("create")).
		PUT("/:id", text("update")).
		DELETE("/:id", text("delete"))
	NewRouter(engine).Register(g).Setup()

	tests := []struct {
		method string
		path   string
		want   string
	}{
		{http.MethodGet, "/api/v1/products", "list"},
		{http.MethodPost, "/api/v1/products", "create"},
		{http.MethodPut, "/api/v1/products/42", "update"},
		{http.MethodDelete, "/api/v1/products/42", "delete"},
	}
	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			w := serveRoute(engine, tt.method, tt.path)
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.want, w.Body.String())
		})
	}
}

func TestDomainGroup_MiddlewareOrder(t *testing.T) {
	engine := gin.New()
	var order []string
	step := func(name string) gin.HandlerFunc {
		return func(c *gin.Context) {
			order = append(order, name)
			c.Next()
		}
	}

	g := NewDomainGroup("orders", "/orders").Use(step("group"))
	g.GET("/mine", step("route"), func(c *gin.Context) {
		order = append(order, "handler")
		c.Status(http.StatusOK)
	})
	g.RegisterRoutes(engine.Group("/api/v1"))

	assert.Equal(t, http.StatusOK, serveRoute(engine, http.MethodGet, "/api/v1/orders/mine").Code)
	assert.Equal(t, []string{"group", "route", "handler"}, order)
}

func TestDomainGroup_StaticSegmentBeatsParam(t *testing.T) {
	engine := gin.New()
	g := NewDomainGroup("orders", "/orders")
	g.GET("/mine", text("mine")).
		GET("/:id", func(c *gin.Context) { c.String(http.StatusOK, "order "+c.Param("id")) })
	NewRouter(engine).Register(g).Setup()

	assert.Equal(t, "mine", serveRoute(engine, http.MethodGet, "/api/v1/orders/mine").Body.String())
	assert.Equal(t, "order 42", serveRoute(engine, http.MethodGet, "/api/v1/orders/42").Body.String())
}

// storefrontEngine mounts the real route table with guards that only record
// whether they ran. Handlers are never reached, so nil handler structs are fine.
func storefrontEngine(authOK bool, uploads bool) *gin.Engine {
	engine := gin.New()
	guards := Guards{
		Auth: func(c *gin.Context) {
			if !authOK {
				c.AbortWithStatus(http.StatusUnauthorized)
			}
		},
		Admin:        func(c *gin.Context) { c.AbortWithStatus(http.StatusForbidden) },
		ImageUploads: uploads,
	}
	NewRouter(engine).Register(StorefrontGroups(Handlers{}, guards)...).Setup()
	return engine
}

func TestStorefrontGroups_RouteTable(t *testing.T) {
	routes := map[string]bool{}
	for _, r := range storefrontEngine(true, true).Routes() {
		routes[r.Method+" "+r.Path] = true
	}

	for _, want := range []string{
		"GET /api/v1/products",
		"GET /api/v1/products/:id",
		"POST /api/v1/products",
		"PUT /api/v1/products/:id",
		"DELETE /api/v1/products/:id",
		"POST /api/v1/orders",
		"GET /api/v1/orders",
		"GET /api/v1/orders/mine",
		"GET /api/v1/orders/:id",
		"PUT /api/v1/orders/:id/pay",
		"PUT /api/v1/orders/:id/deliver",
		"GET /api/v1/config/paypal",
		"POST /api/v1/users",
		"POST /api/v1/users/auth",
		"POST /api/v1/users/refresh",
		"POST /api/v1/users/logout",
		"GET /api/v1/users/profile",
		"PUT /api/v1/users/profile",
		"GET /api/v1/users",
		"PUT /api/v1/users/:id/admin",
		"DELETE /api/v1/users/:id",
		"POST /api/v1/uploads/products/image",
	} {
		assert.True(t, routes[want], "missing route %s", want)
	}
}

func TestStorefrontGroups_UploadsRouteOptional(t *testing.T) {
	for _, r := range storefrontEngine(true, false).Routes() {
		require.NotContains(t, r.Path, "/uploads")
	}
}

func TestStorefrontGroups_Guards(t *testing.T) {
	protected := []struct {
		method string
		path   string
		admin  bool
	}{
		{http.MethodPost, "/api/v1/products", true},
		{http.MethodPut, "/api/v1/products/42", true},
		{http.MethodDelete, "/api/v1/products/42", true},
		{http.MethodPost, "/api/v1/orders", false},
		{http.MethodGet, "/api/v1/orders", true},
		{http.MethodGet, "/api/v1/orders/mine", false},
		{http.MethodGet, "/api/v1/orders/42", false},
		{http.MethodPut, "/api/v1/orders/42/pay", false},
		{http.MethodPut, "/api/v1/orders/42/deliver", true},
		{http.MethodPost, "/api/v1/users/logout", false},
		{http.MethodGet, "/api/v1/users/profile", false},
		{http.MethodPut, "/api/v1/users/profile", false},
		{http.MethodGet, "/api/v1/users", true},
		{http.MethodPut, "/api/v1/users/42/admin", true},
		{http.MethodDelete, "/api/v1/users/42", true},
		{http.MethodPost, "/api/v1/uploads/products/image", true},
	}

	anonymous := storefrontEngine(false, true)
	customer := storefrontEngine(true, true)
	for _, tt := range protected {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			assert.Equal(t, http.StatusUnauthorized, serveRoute(anonymous, tt.method, tt.path).Code)
			if tt.admin {
				assert.Equal(t, http.StatusForbidden, serveRoute(customer, tt.method, tt.path).Code)
			}
		})
	}
}
