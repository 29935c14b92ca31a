package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToDomainError(t *testing.T) {
	sentinel := NewConflict("EMAIL_ALREADY_REGISTERED", "email already registered")
	wrapped := fmt.Errorf("%w: %w", sentinel, errors.New("duplicate key"))

	got := ToDomainError(wrapped)
	assert.Same(t, sentinel, got)
	assert.Equal(t, http.StatusConflict, got.HTTPStatus)

	plain := ToDomainError(errors.New("driver exploded"))
	assert.Equal(t, "INTERNAL_ERROR", plain.Code)
	assert.Equal(t, http.StatusInternalServerError, plain.HTTPStatus)
	assert.NotContains(t, plain.Code, "exploded")

	assert.Nil(t, ToDomainError(nil))
}

func TestCategoryStatuses(t *testing.T) {
	cases := []struct {
		err      *DomainError
		status   int
		internal bool
	}{
		{NewValidationError("V", "v"), http.StatusBadRequest, false},
		{NewConflict("C", "c"), http.StatusConflict, false},
		{NewAuthError("A", "a"), http.StatusUnauthorized, false},
		{NewExpiryError("E", "e"), http.StatusBadRequest, false},
		{NewIntegrityError("I", "i"), http.StatusUnauthorized, false},
		{NewDependencyError("D", "d"), http.StatusBadGateway, true},
		{NewRateLimited("R", "r"), http.StatusTooManyRequests, false},
		{ToDomainError(NewInternalError(nil)), http.StatusInternalServerError, true},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.status, tc.err.HTTPStatus, tc.err.Code)
		assert.Equal(t, tc.internal, Internal(tc.err), tc.err.Code)
	}
}

func TestDomainError_Message(t *testing.T) {
	err := &DomainError{Message: "mail failed", Err: errors.New("timeout")}
	assert.Equal(t, "mail failed: timeout", err.Error())
	assert.ErrorContains(t, ToDomainError(NewNotFound("user")), "user not found")
}
