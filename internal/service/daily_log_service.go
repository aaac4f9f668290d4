package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/isati-sh/daycare-sub001/internal/apperrors"
	"github.com/isati-sh/daycare-sub001/internal/models"
	"github.com/isati-sh/daycare-sub001/internal/validation"
)

// DailyLogInput is a log entry as written by staff. LogDate defaults to today.
type DailyLogInput struct {
	LogDate    string
	Mood       string
	Meals      string
	NapMinutes int
	Notes      string
}

// DailyLogService records and lists daily logs
type DailyLogService struct {
	children ChildStore
	logs     DailyLogStore
	now      Clock
	log      zerolog.Logger
}

// NewDailyLogService creates a daily log service
func NewDailyLogService(store Store, now Clock, log zerolog.Logger) *DailyLogService {
	if now == nil {
		now = time.Now
	}
	return &DailyLogService{children: store.Children, logs: store.DailyLogs, now: now, log: log}
}

// CreateLog writes a log for a child. Admins may log for any child, teachers
// only for children assigned to them.
func (s *DailyLogService) CreateLog(ctx context.Context, actor *models.Account, childID string, in DailyLogInput) (*models.DailyLog, error) {
	if err := Authorize(actor, staffRoles...); err != nil {
		return nil, err
	}

	child, err := s.children.FindChildByID(ctx, childID)
	if err != nil {
		return nil, err
	}
	if child == nil {
		return nil, fmt.Errorf("child %s: %w", childID, apperrors.ErrNotFound)
	}
	if actor.SiteRole == models.RoleTeacher && child.TeacherID != actor.ID {
		return nil, fmt.Errorf("%w: child %s is not assigned to you", apperrors.ErrUnauthorized, childID)
	}

	now := s.now()
	logDate := strings.TrimSpace(in.LogDate)
	if logDate == "" {
		logDate = now.Format(models.DateLayout)
	}
	if err := validation.ValidateLogDate(logDate, now); err != nil {
		return nil, err
	}
	if in.NapMinutes < 0 {
		return nil, apperrors.NewFieldError(apperrors.ErrInvalidNapMinutes, "nap_minutes", "nap minutes cannot be negative")
	}

	entry := &models.DailyLog{
		ID:         uuid.NewString(),
		ChildID:    childID,
		AuthorID:   actor.ID,
		LogDate:    logDate,
		Mood:       strings.TrimSpace(in.Mood),
		Meals:      strings.TrimSpace(in.Meals),
		NapMinutes: in.NapMinutes,
		Notes:      strings.TrimSpace(in.Notes),
		CreatedAt:  now.UTC(),
	}
	if err := s.logs.InsertDailyLog(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// ListLogs returns a child's logs under the GetChild rules
func (s *DailyLogService) ListLogs(ctx context.Context, actor *models.Account, childID string) ([]models.DailyLog, error) {
	if actor == nil {
		return nil, apperrors.ErrUnauthenticated
	}
	child, err := s.children.FindChildByID(ctx, childID)
	if err != nil {
		return nil, err
	}
	if child == nil {
		return nil, fmt.Errorf("child %s: %w", childID, apperrors.ErrNotFound)
	}
	if err := AuthorizeChildRead(actor, child); err != nil {
		return nil, err
	}
	return s.logs.ListDailyLogs(ctx, childID)
}
