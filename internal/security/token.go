package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/isati-sh/daycare-sub001/internal/apperrors"
	"github.com/isati-sh/daycare-sub001/internal/models"
)

const tokenIssuer = "daycare"

// TokenManager signs and verifies HS256 session tokens. The token carries
// only the account id; role and status are loaded fresh on every request.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager creates a token manager
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs a new token for accountID
func (m *TokenManager) Issue(accountID string) (string, *models.Session, error) {
	now := m.now()
	session := &models.Session{
		ID:        uuid.NewString(),
		AccountID: accountID,
		IssuedAt:  now,
		ExpiresAt: now.Add(m.ttl),
	}

	claims := jwt.RegisteredClaims{
		ID:        session.ID,
		Subject:   accountID,
		Issuer:    tokenIssuer,
		IssuedAt:  jwt.NewNumericDate(session.IssuedAt),
		NotBefore: jwt.NewNumericDate(session.IssuedAt),
		ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return token, session, nil
}

// Parse verifies a token and returns its session
func (m *TokenManager) Parse(tokenString string) (*models.Session, error) {
	if tokenString == "" {
		return nil, apperrors.ErrInvalidToken
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	},
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: expired", apperrors.ErrInvalidToken)
		}
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidToken, err)
	}
	if !token.Valid || claims.Subject == "" {
		return nil, apperrors.ErrInvalidToken
	}

	session := &models.Session{ID: claims.ID, AccountID: claims.Subject}
	if claims.IssuedAt != nil {
		session.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		session.ExpiresAt = claims.ExpiresAt.Time
	}
	return session, nil
}
