package service

import (
	"context"
	"strings"

	"github.com/isati-sh/daycare-sub001/internal/apperrors"
	"github.com/isati-sh/daycare-sub001/internal/models"
)

// TeacherAssignmentResolver checks that a teacher reference points at a teacher
type TeacherAssignmentResolver struct {
	accounts AccountStore
}

// NewTeacherAssignmentResolver creates a resolver
func NewTeacherAssignmentResolver(accounts AccountStore) *TeacherAssignmentResolver {
	return &TeacherAssignmentResolver{accounts: accounts}
}

// ResolveTeacher returns "" for an empty id (unassigned). Otherwise the
// account must exist, be active and hold the teacher role; admins are not
// accepted.
func (r *TeacherAssignmentResolver) ResolveTeacher(ctx context.Context, teacherID string) (string, error) {
	teacherID = strings.TrimSpace(teacherID)
	if teacherID == "" {
		return "", nil
	}

	account, err := r.accounts.FindAccountByID(ctx, teacherID)
	if err != nil {
		return "", err
	}
	if account == nil || !account.ActiveStatus || account.SiteRole != models.RoleTeacher {
		return "", apperrors.NewFieldError(apperrors.ErrInvalidTeacher, "teacher_id", "teacher not found, inactive or not a teacher")
	}
	return account.ID, nil
}
