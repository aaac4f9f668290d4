package handlers

const (
	// CSRFHeader carries the CSRF token on cookie-authenticated mutations
	CSRFHeader = "X-CSRF-Token"

	maxBodyBytes = 1 << 20

	ErrInvalidBody      = "Invalid request body"
	ErrRateLimited      = "Too many requests. Please try again later."
	ErrInvalidCSRFToken = "Invalid CSRF token"
)
