package dto

import (
	"net/http"
	"strings"
)

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	ErrCodeUnknown  = "ERR_UNKNOWN"
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation error codes
const (
	ErrCodeValidation   = "ERR_VALIDATION"
	ErrCodeBadRequest   = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	ErrCodeInvalidJSON  = "ERR_INVALID_JSON"
	ErrCodeTooLarge     = "ERR_REQUEST_TOO_LARGE"
)

// Authentication error codes
const (
	ErrCodeUnauthorized       = "ERR_UNAUTHORIZED"
	ErrCodeForbidden          = "ERR_FORBIDDEN"
	ErrCodeInvalidCredentials = "ERR_INVALID_CREDENTIALS"
	ErrCodeTokenExpired       = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid       = "ERR_TOKEN_INVALID"
	ErrCodeTokenRevoked       = "ERR_TOKEN_REVOKED"
)

// Resource error codes
const (
	ErrCodeNotFound            = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists       = "ERR_ALREADY_EXISTS"
	ErrCodeConflict            = "ERR_CONFLICT"
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
)

// Business rule error codes
const (
	ErrCodeInvalidState       = "ERR_INVALID_STATE"
	ErrCodeInsufficientStock  = "ERR_INSUFFICIENT_STOCK"
	ErrCodeNoOrderItems       = "ERR_NO_ORDER_ITEMS"
	ErrCodeOrderAlreadyPaid   = "ERR_ORDER_ALREADY_PAID"
	ErrCodeOrderNotPaid       = "ERR_ORDER_NOT_PAID"
	ErrCodeOrderDelivered     = "ERR_ORDER_ALREADY_DELIVERED"
	ErrCodePaymentProcessed   = "ERR_PAYMENT_ALREADY_PROCESSED"
	ErrCodePaymentNotVerified = "ERR_PAYMENT_NOT_VERIFIED"
	ErrCodeCannotDeleteAdmin  = "ERR_CANNOT_DELETE_ADMIN"
	ErrCodeStorageDisabled    = "ERR_STORAGE_DISABLED"
)

// Rate limiting error codes
const (
	ErrCodeRateLimited = "ERR_RATE_LIMITED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeValidation:   http.StatusBadRequest,
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,
	ErrCodeTooLarge:     http.StatusRequestEntityTooLarge,

	ErrCodeUnauthorized:       http.StatusUnauthorized,
	ErrCodeForbidden:          http.StatusForbidden,
	ErrCodeInvalidCredentials: http.StatusUnauthorized,
	ErrCodeTokenExpired:       http.StatusUnauthorized,
	ErrCodeTokenInvalid:       http.StatusUnauthorized,
	ErrCodeTokenRevoked:       http.StatusUnauthorized,

	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,

	// Business rule errors -> 422 Unprocessable Entity, repeated actions -> 409
	ErrCodeInvalidState:       http.StatusUnprocessableEntity,
	ErrCodeInsufficientStock:  http.StatusUnprocessableEntity,
	ErrCodeNoOrderItems:       http.StatusUnprocessableEntity,
	ErrCodeOrderNotPaid:       http.StatusUnprocessableEntity,
	ErrCodeOrderAlreadyPaid:   http.StatusConflict,
	ErrCodeOrderDelivered:     http.StatusConflict,
	ErrCodePaymentProcessed:   http.StatusConflict,
	ErrCodePaymentNotVerified: http.StatusUnprocessableEntity,
	ErrCodeCannotDeleteAdmin:  http.StatusUnprocessableEntity,
	ErrCodeStorageDisabled:    http.StatusServiceUnavailable,

	ErrCodeRateLimited: http.StatusTooManyRequests,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps domain error codes to API error codes
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":                 ErrCodeNotFound,
	"ALREADY_EXISTS":            ErrCodeAlreadyExists,
	"INVALID_INPUT":             ErrCodeInvalidInput,
	"VALIDATION_ERROR":          ErrCodeValidation,
	"INVALID_STATE":             ErrCodeInvalidState,
	"UNAUTHORIZED":              ErrCodeUnauthorized,
	"FORBIDDEN":                 ErrCodeForbidden,
	"CONCURRENCY_CONFLICT":      ErrCodeConcurrencyConflict,
	"INSUFFICIENT_STOCK":        ErrCodeInsufficientStock,
	"INVALID_CREDENTIALS":       ErrCodeInvalidCredentials,
	"TOKEN_EXPIRED":             ErrCodeTokenExpired,
	"TOKEN_INVALID":             ErrCodeTokenInvalid,
	"TOKEN_REVOKED":             ErrCodeTokenRevoked,
	"USERNAME_EXISTS":           ErrCodeAlreadyExists,
	"EMAIL_EXISTS":              ErrCodeAlreadyExists,
	"NO_ORDER_ITEMS":            ErrCodeNoOrderItems,
	"ORDER_ALREADY_PAID":        ErrCodeOrderAlreadyPaid,
	"ORDER_NOT_PAID":            ErrCodeOrderNotPaid,
	"ORDER_ALREADY_DELIVERED":   ErrCodeOrderDelivered,
	"PAYMENT_ALREADY_PROCESSED": ErrCodePaymentProcessed,
	"PAYMENT_NOT_VERIFIED":      ErrCodePaymentNotVerified,
	"CANNOT_DELETE_ADMIN":       ErrCodeCannotDeleteAdmin,
	"CANNOT_CHANGE_OWN_ADMIN":   ErrCodeInvalidState,
	"STORAGE_DISABLED":          ErrCodeStorageDisabled,
	"BAD_REQUEST":               ErrCodeBadRequest,
	"INTERNAL_ERROR":            ErrCodeInternal,
}

// NormalizeErrorCode converts a domain error code to the API format.
// Field validation codes raised by the domain (INVALID_EMAIL, INVALID_PRICE, ...)
// become ERR_VALIDATION. Codes already in API format pass through; anything
// else becomes ERR_INTERNAL.
func NormalizeErrorCode(code string) string {
	if apiCode, ok := DomainErrorCodeMapping[code]; ok {
		return apiCode
	}
	if _, ok := ErrorCodeHTTPStatus[code]; ok {
		return code
	}
	if strings.HasPrefix(code, "INVALID_") {
		return ErrCodeValidation
	}
	return ErrCodeInternal
}
