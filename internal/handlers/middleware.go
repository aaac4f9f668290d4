package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/isati-sh/daycare-sub001/internal/apperrors"
	"github.com/isati-sh/daycare-sub001/internal/models"
	"github.com/isati-sh/daycare-sub001/internal/security"
	"github.com/isati-sh/daycare-sub001/internal/service"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	AccountContextKey ContextKey = "account"
	SessionContextKey ContextKey = "session"
)

// requestSession is the token a request was authenticated with
type requestSession struct {
	token      string
	fromCookie bool
}

// Middleware holds dependencies for middleware functions
type Middleware struct {
	authService *service.AuthService
	csrf        *security.CSRFGenerator
	limiter     *security.RateLimiter
}

// NewMiddleware creates a new middleware instance
func NewMiddleware(authService *service.AuthService, csrf *security.CSRFGenerator, limiter *security.RateLimiter) *Middleware {
	return &Middleware{
		authService: authService,
		csrf:        csrf,
		limiter:     limiter,
	}
}

// RequireAuth resolves the bearer token or session cookie to an account and
// stores it in the request context. Cookie requests that change state must
// also carry a valid CSRF header.
func (m *Middleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, fromCookie := security.TokenFromRequest(r)
		if token == "" {
			respondWithAppError(w, apperrors.ErrUnauthenticated)
			return
		}

		account, err := m.authService.Authenticate(r.Context(), token)
		if err != nil {
			if fromCookie && service.IsAuthFailure(err) {
				http.SetCookie(w, security.CreateDeleteCookie(r))
			}
			respondWithAppError(w, err)
			return
		}

		if fromCookie && !isSafeMethod(r.Method) && !m.validCSRF(r, token) {
			respondWithError(w, http.StatusForbidden, "invalid_csrf_token", ErrInvalidCSRFToken, "", nil)
			return
		}

		ctx := context.WithValue(r.Context(), AccountContextKey, account)
		ctx = context.WithValue(ctx, SessionContextKey, requestSession{token: token, fromCookie: fromCookie})
		next(w, r.WithContext(ctx))
	}
}

func (m *Middleware) validCSRF(r *http.Request, token string) bool {
	sessionID, err := m.authService.SessionID(token)
	if err != nil {
		return false
	}
	return m.csrf.ValidateToken(sessionID, r.Header.Get(CSRFHeader))
}

// RateLimit limits requests per client IP
func (m *Middleware) RateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if m.limiter != nil && !m.limiter.Allow(security.GetClientIP(r)) {
			respondWithError(w, http.StatusTooManyRequests, "rate_limited", ErrRateLimited, "", nil)
			return
		}
		next(w, r)
	}
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Logging logs every request with its status and duration
func Logging(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			log.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", rec.status).
				Dur("duration", time.Since(start)).
				Msg("request")
		})
	}
}

// GetAccountFromContext retrieves the signed-in account from the request context
func GetAccountFromContext(ctx context.Context) *models.Account {
	account, ok := ctx.Value(AccountContextKey).(*models.Account)
	if !ok {
		return nil
	}
	return account
}

func sessionFromContext(ctx context.Context) (requestSession, bool) {
	s, ok := ctx.Value(SessionContextKey).(requestSession)
	return s, ok
}
