package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/isati-sh/daycare-sub001/internal/apperrors"
	"github.com/isati-sh/daycare-sub001/internal/credentials"
	"github.com/isati-sh/daycare-sub001/internal/models"
	"github.com/isati-sh/daycare-sub001/internal/security"
	"github.com/isati-sh/daycare-sub001/internal/validation"
)

// AccountService handles registration and account administration
type AccountService struct {
	accounts AccountStore
	now      Clock
	log      zerolog.Logger
}

// NewAccountService creates a new account service
func NewAccountService(accounts AccountStore, now Clock, log zerolog.Logger) *AccountService {
	if now == nil {
		now = time.Now
	}
	return &AccountService{accounts: accounts, now: now, log: log}
}

// Register creates a self-service account. It has no role until an admin
// assigns one.
func (s *AccountService) Register(ctx context.Context, email, password, fullName string) (*models.Account, error) {
	if err := validation.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, err
	}
	if err := validation.ValidateName("full_name", fullName); err != nil {
		return nil, err
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return nil, err
	}
	account, err := s.insert(ctx, email, fullName, models.RoleNone, hash)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("account_id", account.ID).Msg("account registered")
	return account, nil
}

// CreateAccount lets an admin create an account with a role already set.
// The generated temporary password is returned once and never stored in clear.
func (s *AccountService) CreateAccount(ctx context.Context, actor *models.Account, email, fullName string, role models.SiteRole) (*models.Account, string, error) {
	if err := Authorize(actor, adminRoles...); err != nil {
		return nil, "", err
	}
	if err := validation.ValidateEmail(email); err != nil {
		return nil, "", err
	}
	if err := validation.ValidateName("full_name", fullName); err != nil {
		return nil, "", err
	}
	if !role.Valid() {
		return nil, "", apperrors.NewFieldError(apperrors.ErrInvalidRole, "site_role", "role must be one of admin, teacher, parent")
	}

	password, err := credentials.GenerateTemporaryPassword()
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate password: %w", err)
	}
	hash, err := security.HashPassword(password)
	if err != nil {
		return nil, "", err
	}

	account, err := s.insert(ctx, email, fullName, role, hash)
	if err != nil {
		return nil, "", err
	}

	s.log.Info().Str("account_id", account.ID).Str("role", string(role)).Str("actor_id", actor.ID).Msg("account created")
	return account, password, nil
}

// EnsureAdmin creates the bootstrap admin when no account uses email.
// An existing account is left untouched.
func (s *AccountService) EnsureAdmin(ctx context.Context, email, password, fullName string) (*models.Account, error) {
	existing, err := s.accounts.FindAccountByEmail(ctx, validation.NormalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, err
	}
	if strings.TrimSpace(fullName) == "" {
		fullName = "Administrator"
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return nil, err
	}
	account, err := s.insert(ctx, email, fullName, models.RoleAdmin, hash)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("account_id", account.ID).Msg("bootstrap admin created")
	return account, nil
}

func (s *AccountService) insert(ctx context.Context, email, fullName string, role models.SiteRole, hash string) (*models.Account, error) {
	email = validation.NormalizeEmail(email)

	existing, err := s.accounts.FindAccountByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.NewFieldError(apperrors.ErrEmailTaken, "email", "email already registered")
	}

	now := s.now().UTC()
	account := &models.Account{
		ID:           uuid.NewString(),
		Email:        email,
		FullName:     strings.TrimSpace(fullName),
		SiteRole:     role,
		ActiveStatus: true,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.accounts.InsertAccount(ctx, account); err != nil {
		if errors.Is(err, apperrors.ErrResourceAlreadyExists) {
			return nil, apperrors.NewFieldError(apperrors.ErrEmailTaken, "email", "email already registered")
		}
		return nil, err
	}
	return account, nil
}

// AssignRole sets the role of an account
func (s *AccountService) AssignRole(ctx context.Context, actor *models.Account, accountID string, role models.SiteRole) (*models.Account, error) {
	if err := Authorize(actor, adminRoles...); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, apperrors.NewFieldError(apperrors.ErrInvalidRole, "site_role", "role must be one of admin, teacher, parent")
	}
	return s.modify(ctx, accountID, func(a *models.Account) {
		a.SiteRole = role
	})
}

// Deactivate disables an account and clears its role. Reactivating does not
// bring the role back; an admin has to assign it again.
func (s *AccountService) Deactivate(ctx context.Context, actor *models.Account, accountID string) (*models.Account, error) {
	if err := Authorize(actor, adminRoles...); err != nil {
		return nil, err
	}
	if actor.ID == accountID {
		return nil, fmt.Errorf("%w: cannot deactivate your own account", apperrors.ErrUnauthorized)
	}
	account, err := s.modify(ctx, accountID, func(a *models.Account) {
		a.ActiveStatus = false
		a.SiteRole = models.RoleNone
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("account_id", accountID).Str("actor_id", actor.ID).Msg("account deactivated")
	return account, nil
}

// Reactivate re-enables an account without assigning a role
func (s *AccountService) Reactivate(ctx context.Context, actor *models.Account, accountID string) (*models.Account, error) {
	if err := Authorize(actor, adminRoles...); err != nil {
		return nil, err
	}
	return s.modify(ctx, accountID, func(a *models.Account) {
		a.ActiveStatus = true
	})
}

// ResetPassword replaces the password with a new temporary one
func (s *AccountService) ResetPassword(ctx context.Context, actor *models.Account, accountID string) (string, error) {
	if err := Authorize(actor, adminRoles...); err != nil {
		return "", err
	}
	password, err := credentials.GenerateTemporaryPassword()
	if err != nil {
		return "", fmt.Errorf("failed to generate password: %w", err)
	}
	hash, err := security.HashPassword(password)
	if err != nil {
		return "", err
	}
	if _, err := s.modify(ctx, accountID, func(a *models.Account) {
		a.PasswordHash = hash
	}); err != nil {
		return "", err
	}
	return password, nil
}

// ChangePassword lets a signed-in account replace its own password
func (s *AccountService) ChangePassword(ctx context.Context, actor *models.Account, current, next string) error {
	if actor == nil {
		return apperrors.ErrUnauthenticated
	}
	if !security.CheckPassword(actor.PasswordHash, current) {
		return apperrors.ErrInvalidCredentials
	}
	if err := validation.ValidatePassword(next); err != nil {
		return err
	}
	hash, err := security.HashPassword(next)
	if err != nil {
		return err
	}
	_, err = s.modify(ctx, actor.ID, func(a *models.Account) {
		a.PasswordHash = hash
	})
	return err
}

// ListAccounts lists accounts for admins
func (s *AccountService) ListAccounts(ctx context.Context, actor *models.Account, filter models.AccountFilter) ([]models.Account, error) {
	if err := Authorize(actor, adminRoles...); err != nil {
		return nil, err
	}
	return s.accounts.ListAccounts(ctx, filter)
}

// ListTeachers lists active teachers for assignment pickers
func (s *AccountService) ListTeachers(ctx context.Context, actor *models.Account) ([]models.Account, error) {
	if err := Authorize(actor, staffRoles...); err != nil {
		return nil, err
	}
	return s.accounts.ListAccounts(ctx, models.AccountFilter{Role: models.RoleTeacher, ActiveOnly: true})
}

func (s *AccountService) modify(ctx context.Context, accountID string, change func(*models.Account)) (*models.Account, error) {
	account, err := s.accounts.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, fmt.Errorf("account %s: %w", accountID, apperrors.ErrNotFound)
	}
	change(account)
	account.UpdatedAt = s.now().UTC()
	if err := s.accounts.UpdateAccount(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}
