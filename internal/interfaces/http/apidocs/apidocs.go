// Package apidocs serves the checked-in OpenAPI document and a Swagger UI
// that reads it.
package apidocs

import (
	_ "embed"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// SpecPath is where the OpenAPI document is served
const SpecPath = "/openapi.json"

//go:embed openapi.json
var spec []byte

// Spec returns the raw OpenAPI document
func Spec() []byte {
	return spec
}

// Mount registers the document at SpecPath and the UI under /swagger.
// guards run before both, typically middleware.SwaggerProtection.
func Mount(r gin.IRoutes, guards ...gin.HandlerFunc) {
	serveSpec := func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", spec)
	}
	ui := ginSwagger.WrapHandler(swaggerFiles.Handler,
		ginSwagger.URL(SpecPath),
		ginSwagger.DocExpansion("none"),
		ginSwagger.PersistAuthorization(true),
	)

	r.GET(SpecPath, append(append([]gin.HandlerFunc{}, guards...), serveSpec)...)
	r.GET("/swagger/*any", append(append([]gin.HandlerFunc{}, guards...), ui)...)
}
