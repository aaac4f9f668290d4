package validation

import (
	"strings"
	"time"

	"github.com/isati-sh/daycare-sub001/internal/apperrors"
	"github.com/isati-sh/daycare-sub001/internal/models"
)

const (
	ageGroupRule = "oneof=infant toddler preschool"
	statusRule   = "oneof=active inactive waitlist"
	dateRule     = "datetime=2006-01-02"
)

// ValidateChild checks a full child record. Fields are checked in order
// first_name, last_name, date_of_birth, age_group, status and the first
// failure is returned.
func ValidateChild(c *models.Child, now time.Time) error {
	if err := validateNames(&c.FirstName, &c.LastName); err != nil {
		return err
	}
	if err := ValidateDateOfBirth(c.DateOfBirth, now); err != nil {
		return err
	}
	if err := ValidateAgeGroup(c.AgeGroup); err != nil {
		return err
	}
	return ValidateStatus(c.Status)
}

// ValidateChildPatch checks only the fields present in p, in the same order
// as ValidateChild.
func ValidateChildPatch(p models.ChildPatch, now time.Time) error {
	if err := validateNames(p.FirstName, p.LastName); err != nil {
		return err
	}
	if p.DateOfBirth != nil {
		if err := ValidateDateOfBirth(*p.DateOfBirth, now); err != nil {
			return err
		}
	}
	if p.AgeGroup != nil {
		if err := ValidateAgeGroup(*p.AgeGroup); err != nil {
			return err
		}
	}
	if p.Status != nil {
		return ValidateStatus(*p.Status)
	}
	return nil
}

func validateNames(first, last *string) error {
	if first != nil && strings.TrimSpace(*first) == "" {
		return apperrors.NewFieldError(apperrors.ErrMissingName, "first_name", "first name is required")
	}
	if last != nil && strings.TrimSpace(*last) == "" {
		return apperrors.NewFieldError(apperrors.ErrMissingName, "last_name", "last name is required")
	}
	return nil
}

// ValidateDateOfBirth requires a YYYY-MM-DD calendar date that is not after
// the day containing now.
func ValidateDateOfBirth(value string, now time.Time) error {
	return validatePastDate("date_of_birth", value, now, apperrors.ErrFutureDateOfBirth, "date of birth cannot be in the future")
}

// ValidateLogDate applies the date of birth rules to a daily log date
func ValidateLogDate(value string, now time.Time) error {
	return validatePastDate("log_date", value, now, apperrors.ErrFutureLogDate, "log date cannot be in the future")
}

func validatePastDate(field, value string, now time.Time, futureErr error, futureMsg string) error {
	date, err := ParseDate(value, now.Location())
	if err != nil {
		return apperrors.NewFieldError(apperrors.ErrInvalidDateFormat, field, field+" must be in YYYY-MM-DD format")
	}
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	if date.After(today) {
		return apperrors.NewFieldError(futureErr, field, futureMsg)
	}
	return nil
}

// ParseDate parses a strict YYYY-MM-DD date in loc
func ParseDate(value string, loc *time.Location) (time.Time, error) {
	if err := validate.Var(value, "required,"+dateRule); err != nil {
		return time.Time{}, err
	}
	return time.ParseInLocation(models.DateLayout, value, loc)
}

// ValidateAgeGroup checks g against the accepted age groups
func ValidateAgeGroup(g models.AgeGroup) error {
	if err := validate.Var(string(g), "required,"+ageGroupRule); err != nil {
		return apperrors.NewFieldError(apperrors.ErrInvalidAgeGroup, "age_group", "age group must be one of infant, toddler, preschool")
	}
	return nil
}

// ValidateStatus checks s against the accepted enrollment statuses
func ValidateStatus(s models.ChildStatus) error {
	if err := validate.Var(string(s), "required,"+statusRule); err != nil {
		return apperrors.NewFieldError(apperrors.ErrInvalidStatus, "status", "status must be one of active, inactive, waitlist")
	}
	return nil
}
