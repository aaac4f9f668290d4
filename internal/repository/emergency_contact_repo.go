package repository

import (
	"context"

	"github.com/isati-sh/daycare-sub001/internal/database"
	"github.com/isati-sh/daycare-sub001/internal/models"
)

// EmergencyContactRepository handles database operations for emergency contacts
type EmergencyContactRepository struct {
	db database.DBTX
}

// NewEmergencyContactRepository creates a new emergency contact repository
func NewEmergencyContactRepository(db database.DBTX) *EmergencyContactRepository {
	return &EmergencyContactRepository{db: db}
}

// InsertEmergencyContact inserts a contact for an existing child
func (r *EmergencyContactRepository) InsertEmergencyContact(ctx context.Context, c *models.EmergencyContact) error {
	query := `
		INSERT INTO emergency_contacts (id, child_id, name, phone, relationship, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query, c.ID, c.ChildID, c.Name, c.Phone, c.Relationship, c.CreatedAt)
	if err != nil {
		return storageErr(r.db, "failed to create emergency contact", err)
	}
	return nil
}

// ListEmergencyContacts retrieves the contacts of a child in insertion order
func (r *EmergencyContactRepository) ListEmergencyContacts(ctx context.Context, childID string) ([]models.EmergencyContact, error) {
	query := `
		SELECT id, child_id, name, phone, relationship, created_at
		FROM emergency_contacts
		WHERE child_id = ?
		ORDER BY created_at, id
	`
	rows, err := r.db.QueryContext(ctx, query, childID)
	if err != nil {
		return nil, storageErr(r.db, "failed to list emergency contacts", err)
	}
	defer rows.Close()

	var contacts []models.EmergencyContact
	for rows.Next() {
		var c models.EmergencyContact
		if err := rows.Scan(&c.ID, &c.ChildID, &c.Name, &c.Phone, &c.Relationship, &c.CreatedAt); err != nil {
			return nil, storageErr(r.db, "failed to scan emergency contact", err)
		}
		contacts = append(contacts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(r.db, "failed to list emergency contacts", err)
	}
	return contacts, nil
}
