package handlers

import (
	"net/http"
	"time"

	"github.com/isati-sh/daycare-sub001/internal/models"
	"github.com/isati-sh/daycare-sub001/internal/security"
	"github.com/isati-sh/daycare-sub001/internal/service"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	authService    *service.AuthService
	accountService *service.AccountService
	csrf           *security.CSRFGenerator
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, accountService *service.AccountService, csrf *security.CSRFGenerator) *AuthHandler {
	return &AuthHandler{
		authService:    authService,
		accountService: accountService,
		csrf:           csrf,
	}
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	CSRFToken string          `json:"csrf_token"`
	Account   *models.Account `json:"account"`
}

type meResponse struct {
	Account   *models.Account `json:"account"`
	CSRFToken string          `json:"csrf_token,omitempty"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// Register creates an account with no role. An admin assigns one later.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	account, err := h.accountService.Register(r.Context(), req.Email, req.Password, req.FullName)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, account)
}

// Login checks credentials, sets the session cookie and returns the token
// for bearer clients.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	token, session, account, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	csrfToken, err := h.csrf.GenerateToken(session.ID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	http.SetCookie(w, security.CreateSessionCookie(r, token, session.ExpiresAt))
	respondJSON(w, http.StatusOK, sessionResponse{
		Token:     token,
		ExpiresAt: session.ExpiresAt,
		CSRFToken: csrfToken,
		Account:   account,
	})
}

// Logout clears the session cookie. Tokens are not tracked server side and
// stay valid until they expire.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, security.CreateDeleteCookie(r))
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the signed-in account, plus a fresh CSRF token for cookie sessions
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	resp := meResponse{Account: GetAccountFromContext(r.Context())}

	if s, ok := sessionFromContext(r.Context()); ok && s.fromCookie {
		if sessionID, err := h.authService.SessionID(s.token); err == nil {
			resp.CSRFToken, _ = h.csrf.GenerateToken(sessionID)
		}
	}
	respondJSON(w, http.StatusOK, resp)
}

// ChangePassword replaces the password of the signed-in account
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	actor := GetAccountFromContext(r.Context())
	if err := h.accountService.ChangePassword(r.Context(), actor, req.CurrentPassword, req.NewPassword); err != nil {
		respondWithAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
