package handlers

import (
	"net/http"
	"strconv"

	"github.com/isati-sh/daycare-sub001/internal/models"
	"github.com/isati-sh/daycare-sub001/internal/service"
)

// AdminHandler handles account administration and the enrollment summary
type AdminHandler struct {
	accountService *service.AccountService
	enrollment     *service.EnrollmentService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(accountService *service.AccountService, enrollment *service.EnrollmentService) *AdminHandler {
	return &AdminHandler{accountService: accountService, enrollment: enrollment}
}

type createAccountRequest struct {
	Email    string          `json:"email"`
	FullName string          `json:"full_name"`
	SiteRole models.SiteRole `json:"site_role"`
}

type createAccountResponse struct {
	Account           *models.Account `json:"account"`
	TemporaryPassword string          `json:"temporary_password"`
}

type assignRoleRequest struct {
	SiteRole models.SiteRole `json:"site_role"`
}

type resetPasswordResponse struct {
	TemporaryPassword string `json:"temporary_password"`
}

// Summary returns enrollment counts
func (h *AdminHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.enrollment.Summary(r.Context(), GetAccountFromContext(r.Context()))
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

// ListTeachers returns active teachers for staff
func (h *AdminHandler) ListTeachers(w http.ResponseWriter, r *http.Request) {
	teachers, err := h.accountService.ListTeachers(r.Context(), GetAccountFromContext(r.Context()))
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, orEmpty(teachers))
}

// ListAccounts returns accounts, filtered by the role and active query parameters
func (h *AdminHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	filter := models.AccountFilter{Role: models.SiteRole(r.URL.Query().Get("role"))}
	if active := r.URL.Query().Get("active"); active != "" {
		filter.ActiveOnly, _ = strconv.ParseBool(active)
	}

	accounts, err := h.accountService.ListAccounts(r.Context(), GetAccountFromContext(r.Context()), filter)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, orEmpty(accounts))
}

// CreateAccount creates an account with a role and returns its temporary password
func (h *AdminHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	account, password, err := h.accountService.CreateAccount(r.Context(), GetAccountFromContext(r.Context()), req.Email, req.FullName, req.SiteRole)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, createAccountResponse{Account: account, TemporaryPassword: password})
}

// AssignRole sets the role of an account
func (h *AdminHandler) AssignRole(w http.ResponseWriter, r *http.Request) {
	var req assignRoleRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	account, err := h.accountService.AssignRole(r.Context(), GetAccountFromContext(r.Context()), r.PathValue("id"), req.SiteRole)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, account)
}

// Deactivate disables an account and clears its role
func (h *AdminHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	account, err := h.accountService.Deactivate(r.Context(), GetAccountFromContext(r.Context()), r.PathValue("id"))
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, account)
}

// Reactivate re-enables an account
func (h *AdminHandler) Reactivate(w http.ResponseWriter, r *http.Request) {
	account, err := h.accountService.Reactivate(r.Context(), GetAccountFromContext(r.Context()), r.PathValue("id"))
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, account)
}

// ResetPassword issues a new temporary password
func (h *AdminHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	password, err := h.accountService.ResetPassword(r.Context(), GetAccountFromContext(r.Context()), r.PathValue("id"))
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, resetPasswordResponse{TemporaryPassword: password})
}
