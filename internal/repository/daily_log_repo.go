package repository

import (
	"context"
	"database/sql"

	"github.com/isati-sh/daycare-sub001/internal/database"
	"github.com/isati-sh/daycare-sub001/internal/models"
)

// DailyLogRepository handles database operations for daily logs
type DailyLogRepository struct {
	db database.DBTX
}

// NewDailyLogRepository creates a new daily log repository
func NewDailyLogRepository(db database.DBTX) *DailyLogRepository {
	return &DailyLogRepository{db: db}
}

// InsertDailyLog inserts a log entry
func (r *DailyLogRepository) InsertDailyLog(ctx context.Context, l *models.DailyLog) error {
	query := `
		INSERT INTO daily_logs (id, child_id, author_id, log_date, mood, meals, nap_minutes, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		l.ID, l.ChildID, nullString(l.AuthorID), l.LogDate, l.Mood, l.Meals, l.NapMinutes, l.Notes, l.CreatedAt)
	if err != nil {
		return storageErr(r.db, "failed to create daily log", err)
	}
	return nil
}

// ListDailyLogs retrieves the logs of a child, newest date first
func (r *DailyLogRepository) ListDailyLogs(ctx context.Context, childID string) ([]models.DailyLog, error) {
	query := `
		SELECT id, child_id, author_id, log_date, mood, meals, nap_minutes, notes, created_at
		FROM daily_logs
		WHERE child_id = ?
		ORDER BY log_date DESC, created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, childID)
	if err != nil {
		return nil, storageErr(r.db, "failed to list daily logs", err)
	}
	defer rows.Close()

	var logs []models.DailyLog
	for rows.Next() {
		var l models.DailyLog
		var authorID sql.NullString
		if err := rows.Scan(&l.ID, &l.ChildID, &authorID, &l.LogDate, &l.Mood, &l.Meals, &l.NapMinutes, &l.Notes, &l.CreatedAt); err != nil {
			return nil, storageErr(r.db, "failed to scan daily log", err)
		}
		l.AuthorID = authorID.String
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(r.db, "failed to list daily logs", err)
	}
	return logs, nil
}
