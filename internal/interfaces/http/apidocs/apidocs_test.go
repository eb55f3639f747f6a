package apidocs

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpec_CoversStorefrontRoutes(t *testing.T) {
	var doc struct {
		OpenAPI string                    `json:"openapi"`
		Paths   map[string]map[string]any `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(Spec(), &doc))
	assert.Equal(t, "3.0.3", doc.OpenAPI)

	routes := map[string][]string{
		"/products":               {"get", "post"},
		"/products/{id}":          {"get", "put", "delete"},
		"/uploads/products/image": {"post"},
		"/orders":                 {"get", "post"},
		"/orders/mine":            {"get"},
		"/orders/{id}":            {"get"},
		"/orders/{id}/pay":        {"put"},
		"/orders/{id}/deliver":    {"put"},
		"/config/paypal":          {"get"},
		"/users":                  {"get", "post"},
		"/users/auth":             {"post"},
		"/users/refresh":          {"post"},
		"/users/logout":           {"post"},
		"/users/profile":          {"get", "put"},
		"/users/{id}/admin":       {"put"},
		"/users/{id}":             {"delete"},
	}
	for path, methods := range routes {
		ops, ok := doc.Paths[path]
		require.True(t, ok, "missing path %s", path)
		for _, m := range methods {
			assert.Contains(t, ops, m, "%s %s", m, path)
		}
	}
}

func TestMount(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("serves the document and the UI", func(t *testing.T) {
		engine := gin.New()
		Mount(engine)

		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, SpecPath, nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
		assert.JSONEq(t, string(Spec()), rec.Body.String())

		rec = httptest.NewRecorder()
		engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), SpecPath)
	})

	t.Run("guards run first", func(t *testing.T) {
		engine := gin.New()
		Mount(engine, func(c *gin.Context) { c.AbortWithStatus(http.StatusNotFound) })

		for _, path := range []string{SpecPath, "/swagger/index.html"} {
			rec := httptest.NewRecorder()
			engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
			assert.Equal(t, http.StatusNotFound, rec.Code, path)
		}
	})
}
