package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/isati-sh/daycare-sub001/internal/database"
	"github.com/isati-sh/daycare-sub001/internal/models"
)

const childColumns = `id, first_name, last_name, date_of_birth, age_group, status, parent_id, teacher_id,
	allergies, medical_notes, emergency_contact, enrollment_date, created_at, updated_at`

// ChildRepository handles database operations for child records
type ChildRepository struct {
	db database.DBTX
}

// NewChildRepository creates a new child repository
func NewChildRepository(db database.DBTX) *ChildRepository {
	return &ChildRepository{db: db}
}

// InsertChild inserts a fully populated child record
func (r *ChildRepository) InsertChild(ctx context.Context, c *models.Child) error {
	allergies, err := encodeAllergies(c.Allergies)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO children (` + childColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.ExecContext(ctx, query,
		c.ID,
		c.FirstName,
		c.LastName,
		c.DateOfBirth,
		string(c.AgeGroup),
		string(c.Status),
		nullString(c.ParentID),
		nullString(c.TeacherID),
		allergies,
		c.MedicalNotes,
		c.EmergencyContact,
		c.EnrollmentDate,
		c.CreatedAt,
		c.UpdatedAt,
	)
	if err != nil {
		return storageErr(r.db, "failed to create child", err)
	}
	return nil
}

// FindChildByID retrieves a child by ID
func (r *ChildRepository) FindChildByID(ctx context.Context, id string) (*models.Child, error) {
	query := `SELECT ` + childColumns + ` FROM children WHERE id = ?`
	c, err := scanChild(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr(r.db, "failed to get child", err)
	}
	return c, nil
}

// UpdateChild writes only the columns supplied in patch, plus updated_at
func (r *ChildRepository) UpdateChild(ctx context.Context, id string, patch models.ChildPatch, updatedAt time.Time) error {
	var sets []string
	var args []any
	set := func(column string, value any) {
		sets = append(sets, column+" = ?")
		args = append(args, value)
	}

	if patch.FirstName != nil {
		set("first_name", *patch.FirstName)
	}
	if patch.LastName != nil {
		set("last_name", *patch.LastName)
	}
	if patch.DateOfBirth != nil {
		set("date_of_birth", *patch.DateOfBirth)
	}
	if patch.AgeGroup != nil {
		set("age_group", string(*patch.AgeGroup))
	}
	if patch.Status != nil {
		set("status", string(*patch.Status))
	}
	if patch.TeacherID != nil {
		set("teacher_id", nullString(*patch.TeacherID))
	}
	if patch.Allergies != nil {
		allergies, err := encodeAllergies(*patch.Allergies)
		if err != nil {
			return err
		}
		set("allergies", allergies)
	}
	if patch.MedicalNotes != nil {
		set("medical_notes", *patch.MedicalNotes)
	}
	if patch.EmergencyContact != nil {
		set("emergency_contact", *patch.EmergencyContact)
	}
	set("updated_at", updatedAt)
	args = append(args, id)

	query := "UPDATE children SET " + strings.Join(sets, ", ") + " WHERE id = ?"
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return storageErr(r.db, "failed to update child", err)
	}
	return requireAffected(result, "child", id)
}

// DeleteChild removes a child. Contacts and logs go with it via ON DELETE CASCADE.
func (r *ChildRepository) DeleteChild(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM children WHERE id = ?", id)
	if err != nil {
		return storageErr(r.db, "failed to delete child", err)
	}
	return requireAffected(result, "child", id)
}

// ListChildren retrieves children matching filter, ordered by name
func (r *ChildRepository) ListChildren(ctx context.Context, filter models.ChildFilter) ([]models.Child, error) {
	var where []string
	var args []any
	if filter.ParentID != "" {
		where = append(where, "parent_id = ?")
		args = append(args, filter.ParentID)
	}
	if filter.TeacherID != "" {
		where = append(where, "teacher_id = ?")
		args = append(args, filter.TeacherID)
	}
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(filter.Status))
	}
	if filter.AgeGroup != "" {
		where = append(where, "age_group = ?")
		args = append(args, string(filter.AgeGroup))
	}

	query := `SELECT ` + childColumns + ` FROM children`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY last_name, first_name, id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageErr(r.db, "failed to list children", err)
	}
	defer rows.Close()

	var children []models.Child
	for rows.Next() {
		c, err := scanChild(rows)
		if err != nil {
			return nil, storageErr(r.db, "failed to scan child", err)
		}
		children = append(children, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(r.db, "failed to list children", err)
	}
	return children, nil
}

func scanChild(s scanner) (*models.Child, error) {
	c := &models.Child{}
	var ageGroup, status string
	var parentID, teacherID, allergies sql.NullString
	err := s.Scan(
		&c.ID,
		&c.FirstName,
		&c.LastName,
		&c.DateOfBirth,
		&ageGroup,
		&status,
		&parentID,
		&teacherID,
		&allergies,
		&c.MedicalNotes,
		&c.EmergencyContact,
		&c.EnrollmentDate,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.AgeGroup = models.AgeGroup(ageGroup)
	c.Status = models.ChildStatus(status)
	c.ParentID = parentID.String
	c.TeacherID = teacherID.String
	if allergies.Valid && allergies.String != "" {
		if err := json.Unmarshal([]byte(allergies.String), &c.Allergies); err != nil {
			return nil, fmt.Errorf("failed to decode allergies: %w", err)
		}
	}
	return c, nil
}

// encodeAllergies stores an empty list as NULL and anything else as a JSON array
func encodeAllergies(allergies []string) (sql.NullString, error) {
	if len(allergies) == 0 {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(allergies)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("failed to encode allergies: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}
