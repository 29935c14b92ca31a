package errorutil

import (
	"errors"
	"fmt"
	"net/http"
)

// Category groups errors by how a caller can recover from them.
type Category string

const (
	CategoryValidation  Category = "VALIDATION"
	CategoryConflict    Category = "CONFLICT"
	CategoryAuth        Category = "AUTH"
	CategoryExpiry      Category = "EXPIRY"
	CategoryIntegrity   Category = "INTEGRITY"
	CategoryDependency  Category = "DEPENDENCY"
	CategoryRateLimited Category = "RATE_LIMITED"
	CategoryNotFound    Category = "NOT_FOUND"
	CategoryInternal    Category = "INTERNAL"
)

// DomainError standardizes application errors. Code is the opaque,
// localizable identifier returned to callers; Message and Err are for logs.
type DomainError struct {
	Code       string
	Message    string
	Category   Category
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, category Category, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, Category: category, HTTPStatus: status, Details: details}
}

func NewValidationError(code, message string) *DomainError {
	return NewDomainError(code, message, CategoryValidation, http.StatusBadRequest, nil)
}

func NewConflict(code, message string) *DomainError {
	return NewDomainError(code, message, CategoryConflict, http.StatusConflict, nil)
}

func NewAuthError(code, message string) *DomainError {
	return NewDomainError(code, message, CategoryAuth, http.StatusUnauthorized, nil)
}

func NewExpiryError(code, message string) *DomainError {
	return NewDomainError(code, message, CategoryExpiry, http.StatusBadRequest, nil)
}

func NewIntegrityError(code, message string) *DomainError {
	return NewDomainError(code, message, CategoryIntegrity, http.StatusUnauthorized, nil)
}

func NewDependencyError(code, message string) *DomainError {
	return NewDomainError(code, message, CategoryDependency, http.StatusBadGateway, nil)
}

func NewRateLimited(code, message string) *DomainError {
	return NewDomainError(code, message, CategoryRateLimited, http.StatusTooManyRequests, nil)
}

func NewNotFound(resource string) error {
	return &DomainError{
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		Category:   CategoryNotFound,
		HTTPStatus: http.StatusNotFound,
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError("UNAUTHORIZED", message, CategoryAuth, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError("FORBIDDEN", message, CategoryAuth, http.StatusForbidden, nil)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		Category:   CategoryInternal,
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError. Anything that is not
// already a DomainError becomes an opaque internal error.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		Category:   CategoryInternal,
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// Internal reports whether err should be logged as a server-side failure.
func Internal(err *DomainError) bool {
	return err != nil && (err.HTTPStatus >= http.StatusInternalServerError || err.Category == CategoryDependency)
}
