package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel kinds. Every AppError wraps exactly one of them so callers can
// use errors.Is regardless of the message.
var (
	ErrNotFound                = errors.New("not found")
	ErrInsufficientStock       = errors.New("insufficient stock")
	ErrEmptyCart               = errors.New("cart is empty")
	ErrItemNotFound            = errors.New("item not found in cart")
	ErrAlreadyReviewed         = errors.New("already reviewed")
	ErrNotPurchased            = errors.New("not purchased")
	ErrUnauthorized            = errors.New("unauthorized")
	ErrForbidden               = errors.New("forbidden")
	ErrValidation              = errors.New("validation failed")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrAlreadyExists           = errors.New("already exists")
	ErrInternal                = errors.New("internal error")
)

// AppError is the machine-checkable error surfaced to API callers.
type AppError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"errors,omitempty"`
	Status  int               `json:"-"`
	Err     error             `json:"-"`
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s with ID %s not found", resource, id),
		Status:  http.StatusNotFound,
		Err:     ErrNotFound,
	}
}

// InsufficientStock names the medicine whose stock cannot cover the request.
func InsufficientStock(medicineName string) *AppError {
	return &AppError{
		Code:    "INSUFFICIENT_STOCK",
		Message: fmt.Sprintf("Insufficient stock for %s", medicineName),
		Status:  http.StatusBadRequest,
		Err:     ErrInsufficientStock,
	}
}

func EmptyCart() *AppError {
	return &AppError{
		Code:    "EMPTY_CART",
		Message: "Cart is empty",
		Status:  http.StatusBadRequest,
		Err:     ErrEmptyCart,
	}
}

func ItemNotFound(medicineID string) *AppError {
	return &AppError{
		Code:    "ITEM_NOT_FOUND",
		Message: fmt.Sprintf("Medicine %s is not in the cart", medicineID),
		Status:  http.StatusNotFound,
		Err:     ErrItemNotFound,
	}
}

func AlreadyReviewed() *AppError {
	return &AppError{
		Code:    "ALREADY_REVIEWED",
		Message: "You have already reviewed this medicine",
		Status:  http.StatusBadRequest,
		Err:     ErrAlreadyReviewed,
	}
}

func NotPurchased() *AppError {
	return &AppError{
		Code:    "NOT_PURCHASED",
		Message: "You can only review medicines you have purchased and received",
		Status:  http.StatusBadRequest,
		Err:     ErrNotPurchased,
	}
}

func Unauthorized(message string) *AppError {
	return &AppError{
		Code:    "UNAUTHORIZED",
		Message: message,
		Status:  http.StatusUnauthorized,
		Err:     ErrUnauthorized,
	}
}

func Forbidden(message string) *AppError {
	return &AppError{
		Code:    "FORBIDDEN",
		Message: message,
		Status:  http.StatusForbidden,
		Err:     ErrForbidden,
	}
}

// Validation carries a per-field description of what failed.
func Validation(message string, fields map[string]string) *AppError {
	return &AppError{
		Code:    "VALIDATION_ERROR",
		Message: message,
		Fields:  fields,
		Status:  http.StatusBadRequest,
		Err:     ErrValidation,
	}
}

func InvalidStatusTransition(from, to string) *AppError {
	return &AppError{
		Code:    "INVALID_STATUS_TRANSITION",
		Message: fmt.Sprintf("Order status cannot change from %s to %s", from, to),
		Status:  http.StatusConflict,
		Err:     ErrInvalidStatusTransition,
	}
}

func AlreadyExists(resource, field, value string) *AppError {
	return &AppError{
		Code:    "ALREADY_EXISTS",
		Message: fmt.Sprintf("%s with %s %q already exists", resource, field, value),
		Status:  http.StatusConflict,
		Err:     ErrAlreadyExists,
	}
}

// Internal hides err from the caller; it stays reachable through Unwrap for logging.
func Internal(message string, err error) *AppError {
	return &AppError{
		Code:    "INTERNAL_ERROR",
		Message: message,
		Status:  http.StatusInternalServerError,
		Err:     fmt.Errorf("%w: %v", ErrInternal, err),
	}
}

// HTTPStatus returns the status code an error should be reported with.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrItemNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInsufficientStock), errors.Is(err, ErrEmptyCart),
		errors.Is(err, ErrAlreadyReviewed), errors.Is(err, ErrNotPurchased),
		errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrInvalidStatusTransition), errors.Is(err, ErrAlreadyExists):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
