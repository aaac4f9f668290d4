package models

import "time"

// DailyLog records a child's day as written by staff
type DailyLog struct {
	ID         string    `json:"id"`
	ChildID    string    `json:"child_id"`
	AuthorID   string    `json:"author_id"`
	LogDate    string    `json:"log_date"`
	Mood       string    `json:"mood,omitempty"`
	Meals      string    `json:"meals,omitempty"`
	NapMinutes int       `json:"nap_minutes"`
	Notes      string    `json:"notes,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
