package auth

import (
	"net/http"

	apperrors "github.com/spec-kit/bookshelf-auth/pkg/util/errorutil"
)

// Failures of the authentication core. Compare with errors.Is; causes are
// attached by wrapping, e.g. fmt.Errorf("%w: %w", ErrDeliveryFailed, err).
var (
	ErrMissingFields = apperrors.NewValidationError("MISSING_FIELDS", "required fields are missing")

	ErrEmailAlreadyRegistered = apperrors.NewConflict("EMAIL_ALREADY_REGISTERED", "email already registered")

	ErrNoCodeRequested  = apperrors.NewValidationError("NO_CODE_REQUESTED", "no verification code requested for this email")
	ErrCodeMismatch     = apperrors.NewValidationError("CODE_MISMATCH", "verification code does not match")
	ErrCodeExpired      = apperrors.NewExpiryError("CODE_EXPIRED", "verification code expired")
	ErrCodeRecentlySent = apperrors.NewRateLimited("CODE_RECENTLY_SENT", "a verification code was sent recently")

	// ErrInvalidCredentials covers both an unknown email and a wrong password.
	ErrInvalidCredentials = apperrors.NewAuthError("INVALID_CREDENTIALS", "invalid email or password")
	ErrAccountSuspended   = apperrors.NewAuthError("ACCOUNT_SUSPENDED", "account suspended")

	ErrBadSignature  = apperrors.NewIntegrityError("BAD_SIGNATURE", "session token failed integrity check")
	ErrTokenRequired = apperrors.NewAuthError("UNAUTHORIZED", "session token required")

	ErrTokenExpired = apperrors.NewDomainError("TOKEN_EXPIRED", "session token expired",
		apperrors.CategoryExpiry, http.StatusUnauthorized, nil)

	ErrDeliveryFailed = apperrors.NewDependencyError("DELIVERY_FAILED", "verification email could not be delivered")
	ErrStorage        = apperrors.NewDependencyError("DEPENDENCY_UNAVAILABLE", "credential store unavailable")

	ErrHashing = apperrors.NewDomainError("INTERNAL_ERROR", "password hashing failed",
		apperrors.CategoryInternal, http.StatusInternalServerError, nil)
)
