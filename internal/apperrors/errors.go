package apperrors

import (
	"errors"
	"fmt"
)

// Access errors
var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrUnauthorized    = errors.New("not allowed for this role")
)

// Enrollment errors
var (
	ErrMissingParentName = errors.New("parent name is required for a new parent account")
	ErrInvalidTeacher    = errors.New("teacher not found or not a teacher")
	ErrMissingName       = errors.New("first and last name are required")
	ErrInvalidDateFormat = errors.New("date must be in YYYY-MM-DD format")
	ErrFutureDateOfBirth = errors.New("date of birth cannot be in the future")
	ErrInvalidAgeGroup   = errors.New("invalid age group")
	ErrInvalidStatus     = errors.New("invalid status")
)

// Daily log errors
var (
	ErrFutureLogDate     = errors.New("log date cannot be in the future")
	ErrInvalidNapMinutes = errors.New("nap minutes cannot be negative")
)

// Resource errors
var (
	ErrNotFound              = errors.New("resource not found")
	ErrResourceAlreadyExists = errors.New("resource already exists")
	ErrStorageFailure        = errors.New("storage failure")
)

// Account errors
var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrInvalidRole        = errors.New("invalid role")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDisabled    = errors.New("account is disabled")
	ErrInvalidToken       = errors.New("invalid token")
)

// CustomError carries a sentinel plus the offending field and a user-facing message.
type CustomError struct {
	Err     error
	Field   string
	Message string
}

func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Err.Error()
}

func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewFieldError builds a CustomError for a single invalid field.
func NewFieldError(err error, field, message string) *CustomError {
	return &CustomError{Err: err, Field: field, Message: message}
}

// StorageError wraps a failure from the record store. It matches ErrStorageFailure
// and unwraps to the driver error.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func (e *StorageError) Is(target error) bool {
	return target == ErrStorageFailure
}

// Storage wraps err as a StorageError unless it is nil or already one.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StorageError
	if errors.As(err, &se) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}

// FieldOf returns the field attached to err, if any.
func FieldOf(err error) string {
	var ce *CustomError
	if errors.As(err, &ce) {
		return ce.Field
	}
	return ""
}
