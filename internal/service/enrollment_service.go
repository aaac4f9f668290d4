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

// EnrollmentInput is a new child enrollment as submitted by staff
type EnrollmentInput struct {
	FirstName   string
	LastName    string
	DateOfBirth string
	AgeGroup    models.AgeGroup
	// Status defaults to active when empty
	Status models.ChildStatus

	// ParentEmail links the child to a parent account, creating one named
	// ParentName when the email is unknown.
	ParentEmail string
	ParentName  string
	TeacherID   string

	// Allergies is a comma separated list
	Allergies         string
	MedicalNotes      string
	EmergencyContact  string
	EmergencyContacts []EmergencyContactInput
}

// EmergencyContactInput is an optional contact written after the child
type EmergencyContactInput struct {
	Name         string
	Phone        string
	Relationship string
}

// ChildUpdate is a partial update. Nil fields are left untouched. A
// TeacherID of "" clears the assignment and an Allergies value that
// normalizes to nothing clears the list.
type ChildUpdate struct {
	FirstName        *string
	LastName         *string
	DateOfBirth      *string
	AgeGroup         *models.AgeGroup
	Status           *models.ChildStatus
	TeacherID        *string
	Allergies        *string
	MedicalNotes     *string
	EmergencyContact *string
}

// CareUpdate holds the fields a parent may change on their own child
type CareUpdate struct {
	Allergies        *string
	MedicalNotes     *string
	EmergencyContact *string
}

// EnrollmentService runs the enrollment workflow and the child read views
type EnrollmentService struct {
	children  ChildStore
	contacts  EmergencyContactStore
	directory *ProfileDirectory
	teachers  *TeacherAssignmentResolver
	now       Clock
	log       zerolog.Logger
}

// NewEnrollmentService creates an enrollment service over store
func NewEnrollmentService(store Store, now Clock, log zerolog.Logger) *EnrollmentService {
	if now == nil {
		now = time.Now
	}
	return &EnrollmentService{
		children:  store.Children,
		contacts:  store.EmergencyContacts,
		directory: NewProfileDirectory(store.Accounts, now, log),
		teachers:  NewTeacherAssignmentResolver(store.Accounts),
		now:       now,
		log:       log,
	}
}

// Create enrolls a child. Steps run in order and stop at the first error:
// authorize, resolve parent, resolve teacher, validate, normalize, insert.
// A parent account created before a later step fails is kept.
func (s *EnrollmentService) Create(ctx context.Context, actor *models.Account, in EnrollmentInput) (*models.Child, error) {
	if err := Authorize(actor, staffRoles...); err != nil {
		return nil, err
	}

	var parentID string
	if strings.TrimSpace(in.ParentEmail) != "" {
		id, err := s.directory.ResolveOrCreateParent(ctx, in.ParentEmail, in.ParentName)
		if err != nil {
			return nil, err
		}
		parentID = id
	}

	teacherID, err := s.teachers.ResolveTeacher(ctx, in.TeacherID)
	if err != nil {
		return nil, err
	}

	status := in.Status
	if status == "" {
		status = models.StatusActive
	}

	now := s.now()
	child := &models.Child{
		FirstName:        strings.TrimSpace(in.FirstName),
		LastName:         strings.TrimSpace(in.LastName),
		DateOfBirth:      strings.TrimSpace(in.DateOfBirth),
		AgeGroup:         in.AgeGroup,
		Status:           status,
		ParentID:         parentID,
		TeacherID:        teacherID,
		MedicalNotes:     strings.TrimSpace(in.MedicalNotes),
		EmergencyContact: strings.TrimSpace(in.EmergencyContact),
	}
	if err := validation.ValidateChild(child, now); err != nil {
		return nil, err
	}

	child.Allergies = validation.NormalizeAllergies(in.Allergies)
	child.ID = uuid.NewString()
	child.EnrollmentDate = now.Format(models.DateLayout)
	child.CreatedAt = now.UTC()
	child.UpdatedAt = now.UTC()

	if err := s.children.InsertChild(ctx, child); err != nil {
		return nil, err
	}

	s.addEmergencyContacts(ctx, child.ID, in.EmergencyContacts)

	s.log.Info().
		Str("child_id", child.ID).
		Str("actor_id", actor.ID).
		Str("parent_id", parentID).
		Str("teacher_id", teacherID).
		Msg("child enrolled")
	return child, nil
}

// addEmergencyContacts writes contact sub-records. Failures are logged and
// never undo the enrollment.
func (s *EnrollmentService) addEmergencyContacts(ctx context.Context, childID string, contacts []EmergencyContactInput) {
	for _, in := range contacts {
		name := strings.TrimSpace(in.Name)
		phone := strings.TrimSpace(in.Phone)
		if name == "" || phone == "" {
			s.log.Warn().Str("child_id", childID).Msg("skipping emergency contact without name or phone")
			continue
		}
		contact := &models.EmergencyContact{
			ID:           uuid.NewString(),
			ChildID:      childID,
			Name:         name,
			Phone:        phone,
			Relationship: strings.TrimSpace(in.Relationship),
			CreatedAt:    s.now().UTC(),
		}
		if err := s.contacts.InsertEmergencyContact(ctx, contact); err != nil {
			s.log.Error().Err(err).Str("child_id", childID).Msg("failed to save emergency contact")
		}
	}
}

// Update applies a partial update. Nothing is written unless every supplied
// field is valid. The parent link cannot be changed here.
func (s *EnrollmentService) Update(ctx context.Context, actor *models.Account, childID string, in ChildUpdate) (*models.Child, error) {
	if err := Authorize(actor, staffRoles...); err != nil {
		return nil, err
	}

	child, err := s.mustFindChild(ctx, childID)
	if err != nil {
		return nil, err
	}

	patch := models.ChildPatch{
		FirstName:        trimmed(in.FirstName),
		LastName:         trimmed(in.LastName),
		DateOfBirth:      trimmed(in.DateOfBirth),
		AgeGroup:         in.AgeGroup,
		Status:           in.Status,
		MedicalNotes:     trimmed(in.MedicalNotes),
		EmergencyContact: trimmed(in.EmergencyContact),
		Allergies:        normalizedAllergies(in.Allergies),
	}
	if err := validation.ValidateChildPatch(patch, s.now()); err != nil {
		return nil, err
	}

	if in.TeacherID != nil {
		teacherID, err := s.teachers.ResolveTeacher(ctx, *in.TeacherID)
		if err != nil {
			return nil, err
		}
		patch.TeacherID = &teacherID
	}

	return s.persist(ctx, child, patch)
}

// UpdateCare lets a parent change the care fields of their own child
func (s *EnrollmentService) UpdateCare(ctx context.Context, actor *models.Account, childID string, in CareUpdate) (*models.Child, error) {
	if err := Authorize(actor, models.RoleParent); err != nil {
		return nil, err
	}

	child, err := s.mustFindChild(ctx, childID)
	if err != nil {
		return nil, err
	}
	if child.ParentID != actor.ID {
		return nil, fmt.Errorf("%w: not the parent of child %s", apperrors.ErrUnauthorized, childID)
	}

	patch := models.ChildPatch{
		Allergies:        normalizedAllergies(in.Allergies),
		MedicalNotes:     trimmed(in.MedicalNotes),
		EmergencyContact: trimmed(in.EmergencyContact),
	}
	return s.persist(ctx, child, patch)
}

// Delete removes a child record. Admin only.
func (s *EnrollmentService) Delete(ctx context.Context, actor *models.Account, childID string) error {
	if err := Authorize(actor, adminRoles...); err != nil {
		return err
	}
	if err := s.children.DeleteChild(ctx, childID); err != nil {
		return err
	}
	s.log.Info().Str("child_id", childID).Str("actor_id", actor.ID).Msg("child deleted")
	return nil
}

// AssignTeacher sets or, with "", clears the teacher of a child
func (s *EnrollmentService) AssignTeacher(ctx context.Context, actor *models.Account, childID, teacherID string) (*models.Child, error) {
	if err := Authorize(actor, staffRoles...); err != nil {
		return nil, err
	}

	child, err := s.mustFindChild(ctx, childID)
	if err != nil {
		return nil, err
	}

	resolved, err := s.teachers.ResolveTeacher(ctx, teacherID)
	if err != nil {
		return nil, err
	}
	return s.persist(ctx, child, models.ChildPatch{TeacherID: &resolved})
}

// SetStatus moves a child between active, inactive and waitlist
func (s *EnrollmentService) SetStatus(ctx context.Context, actor *models.Account, childID string, status models.ChildStatus) (*models.Child, error) {
	if err := Authorize(actor, staffRoles...); err != nil {
		return nil, err
	}
	if err := validation.ValidateStatus(status); err != nil {
		return nil, err
	}

	child, err := s.mustFindChild(ctx, childID)
	if err != nil {
		return nil, err
	}
	return s.persist(ctx, child, models.ChildPatch{Status: &status})
}

func (s *EnrollmentService) persist(ctx context.Context, child *models.Child, patch models.ChildPatch) (*models.Child, error) {
	if patch.IsEmpty() {
		return child, nil
	}
	now := s.now().UTC()
	if err := s.children.UpdateChild(ctx, child.ID, patch, now); err != nil {
		return nil, err
	}
	patch.Apply(child)
	child.UpdatedAt = now
	return child, nil
}

// GetChild returns a child to an admin, its assigned teacher or its parent
func (s *EnrollmentService) GetChild(ctx context.Context, actor *models.Account, childID string) (*models.Child, error) {
	if actor == nil {
		return nil, apperrors.ErrUnauthenticated
	}
	child, err := s.mustFindChild(ctx, childID)
	if err != nil {
		return nil, err
	}
	if err := AuthorizeChildRead(actor, child); err != nil {
		return nil, err
	}
	return child, nil
}

// ListChildren returns the children visible to actor: everything for
// admins, assigned children for teachers, own children for parents.
func (s *EnrollmentService) ListChildren(ctx context.Context, actor *models.Account, filter models.ChildFilter) ([]models.Child, error) {
	if actor == nil {
		return nil, apperrors.ErrUnauthenticated
	}
	switch actor.SiteRole {
	case models.RoleAdmin:
	case models.RoleTeacher:
		filter.TeacherID = actor.ID
	case models.RoleParent:
		filter.ParentID = actor.ID
	default:
		return nil, fmt.Errorf("%w: role %q", apperrors.ErrUnauthorized, actor.SiteRole)
	}
	return s.children.ListChildren(ctx, filter)
}

// ListEmergencyContacts returns the contacts of a child under the GetChild rules
func (s *EnrollmentService) ListEmergencyContacts(ctx context.Context, actor *models.Account, childID string) ([]models.EmergencyContact, error) {
	if _, err := s.GetChild(ctx, actor, childID); err != nil {
		return nil, err
	}
	return s.contacts.ListEmergencyContacts(ctx, childID)
}

// Summary counts children by status and age group. Admin only.
func (s *EnrollmentService) Summary(ctx context.Context, actor *models.Account) (*models.EnrollmentSummary, error) {
	if err := Authorize(actor, adminRoles...); err != nil {
		return nil, err
	}
	children, err := s.children.ListChildren(ctx, models.ChildFilter{})
	if err != nil {
		return nil, err
	}

	summary := &models.EnrollmentSummary{
		Total:      len(children),
		ByStatus:   make(map[models.ChildStatus]int, len(models.ChildStatuses)),
		ByAgeGroup: make(map[models.AgeGroup]int, len(models.AgeGroups)),
	}
	for _, st := range models.ChildStatuses {
		summary.ByStatus[st] = 0
	}
	for _, g := range models.AgeGroups {
		summary.ByAgeGroup[g] = 0
	}
	for _, c := range children {
		summary.ByStatus[c.Status]++
		summary.ByAgeGroup[c.AgeGroup]++
		if c.TeacherID == "" {
			summary.Unassigned++
		}
	}
	return summary, nil
}

func (s *EnrollmentService) mustFindChild(ctx context.Context, childID string) (*models.Child, error) {
	child, err := s.children.FindChildByID(ctx, childID)
	if err != nil {
		return nil, err
	}
	if child == nil {
		return nil, fmt.Errorf("child %s: %w", childID, apperrors.ErrNotFound)
	}
	return child, nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

func normalizedAllergies(raw *string) *[]string {
	if raw == nil {
		return nil
	}
	list := validation.NormalizeAllergies(*raw)
	return &list
}
