package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/isati-sh/daycare-sub001/internal/apperrors"
	"github.com/isati-sh/daycare-sub001/internal/models"
	"github.com/isati-sh/daycare-sub001/internal/security"
	"github.com/isati-sh/daycare-sub001/internal/validation"
)

// AuthService signs accounts in and resolves session tokens back to accounts
type AuthService struct {
	accounts AccountStore
	tokens   *security.TokenManager
	log      zerolog.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(accounts AccountStore, tokens *security.TokenManager, log zerolog.Logger) *AuthService {
	return &AuthService{accounts: accounts, tokens: tokens, log: log}
}

// Login checks credentials and issues a session token
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *models.Session, *models.Account, error) {
	account, err := s.accounts.FindAccountByEmail(ctx, validation.NormalizeEmail(email))
	if err != nil {
		return "", nil, nil, err
	}
	if account == nil || !security.CheckPassword(account.PasswordHash, password) {
		return "", nil, nil, apperrors.ErrInvalidCredentials
	}
	if !account.ActiveStatus {
		return "", nil, nil, apperrors.ErrAccountDisabled
	}

	token, session, err := s.tokens.Issue(account.ID)
	if err != nil {
		return "", nil, nil, err
	}
	s.log.Info().Str("account_id", account.ID).Msg("signed in")
	return token, session, account, nil
}

// Authenticate resolves a token to the current state of its account. Role
// changes and deactivation take effect on the next request.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.Account, error) {
	session, err := s.tokens.Parse(token)
	if err != nil {
		return nil, err
	}
	account, err := s.accounts.FindAccountByID(ctx, session.AccountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, fmt.Errorf("%w: account no longer exists", apperrors.ErrInvalidToken)
	}
	if !account.ActiveStatus {
		return nil, apperrors.ErrAccountDisabled
	}
	return account, nil
}

// SessionID returns the token id used to bind CSRF tokens
func (s *AuthService) SessionID(token string) (string, error) {
	session, err := s.tokens.Parse(token)
	if err != nil {
		return "", err
	}
	return session.ID, nil
}

// IsAuthFailure reports whether err means "no usable session" rather than
// a storage problem.
func IsAuthFailure(err error) bool {
	return errors.Is(err, apperrors.ErrInvalidToken) || errors.Is(err, apperrors.ErrAccountDisabled)
}
