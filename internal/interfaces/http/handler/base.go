package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	tradeapp "github.com/storefront/backend/internal/application/trade"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a success response with pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends an error response with the given status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, middleware.GetRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// Unauthorized sends a 401 unauthorized response
func (h *BaseHandler) Unauthorized(c *gin.Context, message string) {
	h.Error(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, message)
}

// BindError answers a failed request binding
func (h *BaseHandler) BindError(c *gin.Context, err error) {
	middleware.HandleBindError(c, err)
}

// HandleError converts domain errors to HTTP responses. Anything that is not
// a domain error is logged and answered with a generic 500.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	requestID := middleware.GetRequestID(c)

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code := dto.NormalizeErrorCode(domainErr.Code)
		statusCode := dto.GetHTTPStatus(code)
		if statusCode >= http.StatusInternalServerError {
			logger.GetGinLogger(c).Error("Request failed", zap.String("code", domainErr.Code), zap.Error(err))
		}
		c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, domainErr.Message, requestID))
		return
	}

	logger.GetGinLogger(c).Error("Unhandled error", zap.Error(err))
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, dto.NewErrorResponseWithRequestID(
		dto.ErrCodeInternal,
		"An unexpected error occurred",
		requestID,
	))
}

// pathID parses the :id path parameter, answering 400 when it is not a UUID
func (h *BaseHandler) pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid ID format")
		return uuid.Nil, false
	}
	return id, true
}

// currentUserID returns the authenticated user, answering 401 when absent
func (h *BaseHandler) currentUserID(c *gin.Context) (uuid.UUID, bool) {
	id, ok := middleware.GetJWTUserID(c)
	if !ok {
		h.Unauthorized(c, "Not authorized, no token")
		return uuid.Nil, false
	}
	return id, true
}

// caller describes the authenticated user to the order service
func (h *BaseHandler) caller(c *gin.Context) (tradeapp.Caller, bool) {
	id, ok := h.currentUserID(c)
	if !ok {
		return tradeapp.Caller{}, false
	}
	return tradeapp.Caller{UserID: id, IsAdmin: middleware.IsAdmin(c)}, true
}
