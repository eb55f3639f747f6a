package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	catalogapp "github.com/storefront/backend/internal/application/catalog"
	"github.com/storefront/backend/internal/interfaces/http/dto"
)

// ProductHandler handles catalog endpoints
type ProductHandler struct {
	BaseHandler
	productService *catalogapp.ProductService
	maxUploadSize  int64
}

// NewProductHandler creates a new ProductHandler. maxUploadSize bounds the
// image upload form; zero means 5 MiB.
func NewProductHandler(productService *catalogapp.ProductService, maxUploadSize int64) *ProductHandler {
	if maxUploadSize <= 0 {
		maxUploadSize = 5 << 20
	}
	return &ProductHandler{
		productService: productService,
		maxUploadSize:  maxUploadSize,
	}
}

// List godoc
// @Summary      Search products
// @Description  Products whose name contains keyword, case-insensitive, newest first
// @Tags         products
// @Produce      json
// @Param        keyword   query string false "Name filter"
// @Param        page      query int    false "Page number" default(1)
// @Param        page_size query int    false "Page size"   default(20)
// @Success      200 {object} dto.Response{data=catalogapp.ProductListResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /products [get]
func (h *ProductHandler) List(c *gin.Context) {
	var query catalogapp.ListProductsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.productService.List(c.Request.Context(), query)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, result, result.Total, result.Page, result.PageSize)
}

// GetByID godoc
// @Summary      Get product by ID
// @Tags         products
// @Produce      json
// @Param        id path string true "Product ID"
// @Success      200 {object} dto.Response{data=catalogapp.ProductResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /products/{id} [get]
func (h *ProductHandler) GetByID(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	product, err := h.productService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Create godoc
// @Summary      Create a product
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        request body catalogapp.CreateProductRequest true "Product"
// @Success      201 {object} dto.Response{data=catalogapp.ProductResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /products [post]
func (h *ProductHandler) Create(c *gin.Context) {
	var req catalogapp.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	product, err := h.productService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, product)
}

// Update godoc
// @Summary      Update a product
// @Description  Partial update; omitted fields keep their value
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        id      path string                          true "Product ID"
// @Param        request body catalogapp.UpdateProductRequest true "Changes"
// @Success      200 {object} dto.Response{data=catalogapp.ProductResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /products/{id} [put]
func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req catalogapp.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	product, err := h.productService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Delete godoc
// @Summary      Delete a product
// @Tags         products
// @Param        id path string true "Product ID"
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /products/{id} [delete]
func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if err := h.productService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// UploadImage godoc
// @Summary      Upload a product image
// @Description  Stores a jpg, png or webp image and returns its public URL
// @Tags         products
// @Accept       multipart/form-data
// @Produce      json
// @Param        image formData file true "Image file"
// @Success      201 {object} dto.Response{data=catalogapp.UploadImageResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      413 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /uploads/products/image [post]
func (h *ProductHandler) UploadImage(c *gin.Context) {
	if !h.productService.ImageUploadsEnabled() {
		h.HandleError(c, catalogapp.ErrImageStorageDisabled)
		return
	}

	file, err := c.FormFile("image")
	if err != nil {
		h.BadRequest(c, "An image file is required in the \"image\" form field")
		return
	}
	if file.Size > h.maxUploadSize {
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeTooLarge, "Image exceeds the maximum upload size")
		return
	}

	body, err := file.Open()
	if err != nil {
		h.HandleError(c, err)
		return
	}
	defer body.Close()

	resp, err := h.productService.UploadImage(c.Request.Context(), catalogapp.UploadImageInput{
		Filename:    file.Filename,
		ContentType: file.Header.Get("Content-Type"),
		Size:        file.Size,
		Body:        body,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}
