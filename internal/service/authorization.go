package service

import (
	"fmt"

	"github.com/isati-sh/daycare-sub001/internal/apperrors"
	"github.com/isati-sh/daycare-sub001/internal/models"
)

// Authorize checks that actor is signed in and holds one of allowed.
// An account whose role is NULL never passes.
func Authorize(actor *models.Account, allowed ...models.SiteRole) error {
	if actor == nil {
		return apperrors.ErrUnauthenticated
	}
	if !actor.HasRole(allowed...) {
		return fmt.Errorf("%w: role %q", apperrors.ErrUnauthorized, actor.SiteRole)
	}
	return nil
}

// AuthorizeRead passes when the role check passes or when actor owns the
// record (ownerID is its id).
func AuthorizeRead(actor *models.Account, ownerID string, allowed ...models.SiteRole) error {
	if actor == nil {
		return apperrors.ErrUnauthenticated
	}
	if ownerID != "" && actor.ID == ownerID {
		return nil
	}
	return Authorize(actor, allowed...)
}

// AuthorizeChildRead lets admins read any child, teachers the children
// assigned to them and parents their own children.
func AuthorizeChildRead(actor *models.Account, child *models.Child) error {
	if actor != nil && actor.SiteRole == models.RoleTeacher {
		if child.TeacherID == actor.ID {
			return nil
		}
		return fmt.Errorf("%w: child %s is not assigned to you", apperrors.ErrUnauthorized, child.ID)
	}
	return AuthorizeRead(actor, child.ParentID, adminRoles...)
}

var (
	staffRoles = []models.SiteRole{models.RoleAdmin, models.RoleTeacher}
	adminRoles = []models.SiteRole{models.RoleAdmin}
)
