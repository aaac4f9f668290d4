package models

import "time"

// SiteRole is the role column on an account. The empty value is stored as NULL
// and means the account has no access yet.
type SiteRole string

const (
	RoleNone    SiteRole = ""
	RoleAdmin   SiteRole = "admin"
	RoleTeacher SiteRole = "teacher"
	RoleParent  SiteRole = "parent"
)

// Valid reports whether r is one of the assignable roles
func (r SiteRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleTeacher, RoleParent:
		return true
	}
	return false
}

// Account is a person known to the system: admin, teacher or parent
type Account struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	FullName      string    `json:"full_name"`
	SiteRole      SiteRole  `json:"site_role"`
	ActiveStatus  bool      `json:"active_status"`
	EmailVerified bool      `json:"email_verified"`
	PasswordHash  string    `json:"-"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// HasRole reports whether the account holds any of roles. A NULL role never matches.
func (a *Account) HasRole(roles ...SiteRole) bool {
	if a == nil || a.SiteRole == RoleNone {
		return false
	}
	for _, r := range roles {
		if a.SiteRole == r {
			return true
		}
	}
	return false
}

// CanLogin reports whether the account may start a session
func (a *Account) CanLogin() bool {
	return a.ActiveStatus && a.PasswordHash != ""
}

// AccountFilter narrows ListAccounts. Zero values match everything.
type AccountFilter struct {
	Role       SiteRole
	ActiveOnly bool
}
