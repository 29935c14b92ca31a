package handlers

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/bookshelf-auth/pkg/util/errorutil"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

var errInvalidPayload = apperrors.NewValidationError("INVALID_PAYLOAD", "request body could not be parsed")

// bindAndValidate parses the JSON body into dst and applies its format rules.
// Empty fields pass so the services can report MISSING_FIELDS themselves.
func bindAndValidate(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return errInvalidPayload
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return errInvalidPayload
		}
		details := make(map[string]any, len(verrs))
		for _, fe := range verrs {
			details[fe.Field()] = fe.Tag()
		}
		return apperrors.NewDomainError("VALIDATION_FAILED", "request failed validation",
			apperrors.CategoryValidation, http.StatusBadRequest, details)
	}
	return nil
}
