package model

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Status        string `json:"status"`
	Message       string `json:"message"`
	Code          string `json:"code,omitempty"`
	CorrelationID string `json:"correlationId,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON        = "INVALID_JSON"
	ErrCodeMissingField       = "MISSING_FIELD"
	ErrCodeInvalidInput       = "INVALID_INPUT"
	ErrCodeInvalidID          = "INVALID_ID"
	ErrCodeEmptyOrder         = "EMPTY_ORDER"
	ErrCodeInvalidQuantity    = "INVALID_QUANTITY"
	ErrCodeInsufficientStock  = "INSUFFICIENT_STOCK"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeProductNotFound    = "PRODUCT_NOT_FOUND"
	ErrCodeOrderNotFound      = "ORDER_NOT_FOUND"
	ErrCodeCategoryNotFound   = "CATEGORY_NOT_FOUND"
	ErrCodeSlugTaken          = "SLUG_TAKEN"
	ErrCodeEmailTaken         = "EMAIL_TAKEN"
	ErrCodeConflict           = "CONFLICT"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeUnauthorised       = "UNAUTHORIZED"
	ErrCodeForbidden          = "FORBIDDEN"
	ErrCodeInternalError      = "INTERNAL_ERROR"
)

// ErrorKind classifies a DomainError and decides its HTTP status.
type ErrorKind string

const (
	KindInvalidInput      ErrorKind = "invalid_input"
	KindNotFound          ErrorKind = "not_found"
	KindConflict          ErrorKind = "conflict"
	KindForbidden         ErrorKind = "forbidden"
	KindUnauthorized      ErrorKind = "unauthorized"
	KindInsufficientStock ErrorKind = "insufficient_stock"
	KindInternal          ErrorKind = "internal"
)

// DomainError is the typed failure every layer returns to the HTTP boundary.
type DomainError struct {
	Kind    ErrorKind
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(kind ErrorKind, code, message string) *DomainError {
	return &DomainError{
		Kind:    kind,
		Code:    code,
		Message: message,
	}
}

func InvalidInput(format string, args ...any) *DomainError {
	return NewDomainError(KindInvalidInput, ErrCodeInvalidInput, fmt.Sprintf(format, args...))
}

func NotFound(code, format string, args ...any) *DomainError {
	return NewDomainError(KindNotFound, code, fmt.Sprintf(format, args...))
}

func Conflict(code, format string, args ...any) *DomainError {
	return NewDomainError(KindConflict, code, fmt.Sprintf(format, args...))
}

func InsufficientStock(productName string) *DomainError {
	return NewDomainError(KindInsufficientStock, ErrCodeInsufficientStock,
		fmt.Sprintf("Not enough stock for product: %s", productName))
}

// Common domain errors
var (
	ErrEmptyOrder         = NewDomainError(KindInvalidInput, ErrCodeEmptyOrder, "Order must have at least one item")
	ErrInvalidQuantity    = NewDomainError(KindInvalidInput, ErrCodeInvalidQuantity, "Quantity must be greater than zero")
	ErrOrderNotFound      = NewDomainError(KindNotFound, ErrCodeOrderNotFound, "Order not found")
	ErrProductNotFound    = NewDomainError(KindNotFound, ErrCodeProductNotFound, "Product not found")
	ErrCategoryNotFound   = NewDomainError(KindNotFound, ErrCodeCategoryNotFound, "Category not found")
	ErrUserNotFound       = NewDomainError(KindNotFound, ErrCodeNotFound, "User not found")
	ErrEmailTaken         = NewDomainError(KindConflict, ErrCodeEmailTaken, "Email already registered")
	ErrInvalidCredentials = NewDomainError(KindUnauthorized, ErrCodeInvalidCredentials, "Invalid email or password")
	ErrUnauthorized       = NewDomainError(KindUnauthorized, ErrCodeUnauthorised, "Authentication required")
	ErrForbidden          = NewDomainError(KindForbidden, ErrCodeForbidden, "You do not have permission to perform this action")
	ErrAccountInactive    = NewDomainError(KindForbidden, ErrCodeForbidden, "Account is inactive")
	ErrInternal           = NewDomainError(KindInternal, ErrCodeInternalError, "An internal error occurred")
)

// IsKind reports whether err wraps a DomainError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var de *DomainError
	return errors.As(err, &de) && de.Kind == kind
}

// HTTPStatus maps an error to the status code written at the boundary.
func HTTPStatus(err error) int {
	var de *DomainError
	if !errors.As(err, &de) {
		return http.StatusInternalServerError
	}

	switch de.Kind {
	case KindInvalidInput, KindInsufficientStock:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindForbidden:
		return http.StatusForbidden
	case KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
