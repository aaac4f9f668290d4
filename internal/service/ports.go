package service

import (
	"context"
	"time"

	"github.com/isati-sh/daycare-sub001/internal/models"
)

// Find operations return (nil, nil) when no record matches. Update and
// delete operations return an error wrapping apperrors.ErrNotFound when no
// row was affected. Any other failure wraps apperrors.ErrStorageFailure.

// AccountStore persists accounts
type AccountStore interface {
	FindAccountByEmail(ctx context.Context, email string) (*models.Account, error)
	FindAccountByID(ctx context.Context, id string) (*models.Account, error)
	InsertAccount(ctx context.Context, account *models.Account) error
	UpdateAccount(ctx context.Context, account *models.Account) error
	ListAccounts(ctx context.Context, filter models.AccountFilter) ([]models.Account, error)
}

// ChildStore persists child records
type ChildStore interface {
	InsertChild(ctx context.Context, child *models.Child) error
	FindChildByID(ctx context.Context, id string) (*models.Child, error)
	UpdateChild(ctx context.Context, id string, patch models.ChildPatch, updatedAt time.Time) error
	DeleteChild(ctx context.Context, id string) error
	ListChildren(ctx context.Context, filter models.ChildFilter) ([]models.Child, error)
}

// EmergencyContactStore persists the emergency contacts of a child
type EmergencyContactStore interface {
	InsertEmergencyContact(ctx context.Context, contact *models.EmergencyContact) error
	ListEmergencyContacts(ctx context.Context, childID string) ([]models.EmergencyContact, error)
}

// DailyLogStore persists daily logs
type DailyLogStore interface {
	InsertDailyLog(ctx context.Context, log *models.DailyLog) error
	ListDailyLogs(ctx context.Context, childID string) ([]models.DailyLog, error)
}

// Store groups every port. Both the SQL repositories and the in-memory store
// provide one.
type Store struct {
	Accounts          AccountStore
	Children          ChildStore
	EmergencyContacts EmergencyContactStore
	DailyLogs         DailyLogStore
}

// Clock returns the current time
type Clock func() time.Time
