package models

import "time"

// EmergencyContact is an optional sub-record of a child
type EmergencyContact struct {
	ID           string    `json:"id"`
	ChildID      string    `json:"child_id"`
	Name         string    `json:"name"`
	Phone        string    `json:"phone"`
	Relationship string    `json:"relationship,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
