package handlers

import "net/http"

// Handlers groups everything the router needs
type Handlers struct {
	Middleware *Middleware
	Auth       *AuthHandler
	Children   *ChildHandler
	Admin      *AdminHandler
}

// NewRouter registers every API route on a new mux
func NewRouter(h Handlers) *http.ServeMux {
	mw := h.Middleware
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Public routes
	mux.HandleFunc("POST /api/register", mw.RateLimit(h.Auth.Register))
	mux.HandleFunc("POST /api/login", mw.RateLimit(h.Auth.Login))
	mux.HandleFunc("POST /api/logout", h.Auth.Logout)

	// Signed-in routes
	mux.HandleFunc("GET /api/me", mw.RequireAuth(h.Auth.Me))
	mux.HandleFunc("POST /api/me/password", mw.RequireAuth(h.Auth.ChangePassword))
	mux.HandleFunc("GET /api/teachers", mw.RequireAuth(h.Admin.ListTeachers))

	// Children
	mux.HandleFunc("GET /api/children", mw.RequireAuth(h.Children.List))
	mux.HandleFunc("POST /api/children", mw.RequireAuth(h.Children.Create))
	mux.HandleFunc("GET /api/children/{id}", mw.RequireAuth(h.Children.Get))
	mux.HandleFunc("PATCH /api/children/{id}", mw.RequireAuth(h.Children.Update))
	mux.HandleFunc("DELETE /api/children/{id}", mw.RequireAuth(h.Children.Delete))
	mux.HandleFunc("PUT /api/children/{id}/teacher", mw.RequireAuth(h.Children.AssignTeacher))
	mux.HandleFunc("PUT /api/children/{id}/status", mw.RequireAuth(h.Children.SetStatus))
	mux.HandleFunc("PATCH /api/children/{id}/care", mw.RequireAuth(h.Children.UpdateCare))
	mux.HandleFunc("GET /api/children/{id}/emergency-contacts", mw.RequireAuth(h.Children.ListEmergencyContacts))
	mux.HandleFunc("GET /api/children/{id}/logs", mw.RequireAuth(h.Children.ListLogs))
	mux.HandleFunc("POST /api/children/{id}/logs", mw.RequireAuth(h.Children.CreateLog))

	// Admin routes
	mux.HandleFunc("GET /api/admin/summary", mw.RequireAuth(h.Admin.Summary))
	mux.HandleFunc("GET /api/admin/accounts", mw.RequireAuth(h.Admin.ListAccounts))
	mux.HandleFunc("POST /api/admin/accounts", mw.RequireAuth(h.Admin.CreateAccount))
	mux.HandleFunc("POST /api/admin/accounts/{id}/role", mw.RequireAuth(h.Admin.AssignRole))
	mux.HandleFunc("POST /api/admin/accounts/{id}/deactivate", mw.RequireAuth(h.Admin.Deactivate))
	mux.HandleFunc("POST /api/admin/accounts/{id}/reactivate", mw.RequireAuth(h.Admin.Reactivate))
	mux.HandleFunc("POST /api/admin/accounts/{id}/reset-password", mw.RequireAuth(h.Admin.ResetPassword))

	return mux
}
