package validation

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/isati-sh/daycare-sub001/internal/apperrors"
)

var validate = validator.New()

// ValidateEmail checks if an email address is valid
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return apperrors.NewFieldError(apperrors.ErrInvalidEmail, "email", "email is required")
	}
	if err := validate.Var(email, "email"); err != nil {
		return apperrors.NewFieldError(apperrors.ErrInvalidEmail, "email", "invalid email format")
	}
	return nil
}

// ValidatePassword checks if a password meets requirements
func ValidatePassword(password string) error {
	if err := validate.Var(password, "min=8"); err != nil {
		return apperrors.NewFieldError(apperrors.ErrWeakPassword, "password", "password must be at least 8 characters")
	}
	return nil
}

// ValidateName checks that a display name is present
func ValidateName(field, name string) error {
	if strings.TrimSpace(name) == "" {
		return apperrors.NewFieldError(apperrors.ErrMissingName, field, field+" is required")
	}
	return nil
}

// NormalizeEmail lower-cases and trims an address for lookup and storage
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
