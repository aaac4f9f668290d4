package security

import (
	"net/http"
	"strings"
	"time"
)

// SessionCookieName holds the signed session token for browser clients
const SessionCookieName = "session_token"

// IsSecureRequest determines if the request is over HTTPS, directly or
// behind a proxy that sets X-Forwarded-Proto.
func IsSecureRequest(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto == "https" {
		return true
	}
	return r.URL.Scheme == "https"
}

// CreateSessionCookie creates a session cookie with proper security flags
func CreateSessionCookie(r *http.Request, value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   IsSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
	}
}

// CreateDeleteCookie creates a cookie that clears the session
func CreateDeleteCookie(r *http.Request) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   IsSecureRequest(r),
	}
}

// TokenFromRequest returns the session token and whether it came from the
// cookie. A bearer Authorization header wins over the cookie.
func TokenFromRequest(r *http.Request) (token string, fromCookie bool) {
	if header := r.Header.Get("Authorization"); header != "" {
		if after, ok := strings.CutPrefix(header, "Bearer "); ok {
			return strings.TrimSpace(after), false
		}
	}
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		return cookie.Value, true
	}
	return "", false
}
