package models

import "time"

// Session is the decoded form of a signed session token
type Session struct {
	ID        string
	AccountID string
	ExpiresAt time.Time
	IssuedAt  time.Time
}

// IsExpired checks if the session has expired
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}
