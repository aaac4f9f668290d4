package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/isati-sh/daycare-sub001/internal/apperrors"
	"github.com/isati-sh/daycare-sub001/internal/models"
	"github.com/isati-sh/daycare-sub001/internal/validation"
)

// ProfileDirectory finds parent accounts by email, creating them on first use
type ProfileDirectory struct {
	accounts AccountStore
	now      Clock
	log      zerolog.Logger
}

// NewProfileDirectory creates a profile directory
func NewProfileDirectory(accounts AccountStore, now Clock, log zerolog.Logger) *ProfileDirectory {
	if now == nil {
		now = time.Now
	}
	return &ProfileDirectory{accounts: accounts, now: now, log: log}
}

// ResolveOrCreateParent returns the id of the account registered under
// email. An existing account is reused as is, whatever its name or role.
// Otherwise displayName is required and a new account is created with the
// parent role. There is no lock between lookup and insert; a concurrent
// insert of the same email loses on the unique constraint.
func (d *ProfileDirectory) ResolveOrCreateParent(ctx context.Context, email, displayName string) (string, error) {
	email = validation.NormalizeEmail(email)
	if err := validation.ValidateEmail(email); err != nil {
		return "", apperrors.NewFieldError(apperrors.ErrInvalidEmail, "parent_email", "parent email is invalid")
	}

	existing, err := d.accounts.FindAccountByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if existing != nil {
		return existing.ID, nil
	}

	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return "", apperrors.NewFieldError(apperrors.ErrMissingParentName, "parent_name", "parent name is required for a new parent account")
	}

	now := d.now().UTC()
	account := &models.Account{
		ID:           uuid.NewString(),
		Email:        email,
		FullName:     displayName,
		SiteRole:     models.RoleParent,
		ActiveStatus: true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := d.accounts.InsertAccount(ctx, account); err != nil {
		return "", err
	}

	d.log.Info().Str("account_id", account.ID).Str("email", email).Msg("created parent account")
	return account.ID, nil
}
