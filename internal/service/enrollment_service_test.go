package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isati-sh/daycare-sub001/internal/apperrors"
	"github.com/isati-sh/daycare-sub001/internal/logger"
	"github.com/isati-sh/daycare-sub001/internal/models"
	"github.com/isati-sh/daycare-sub001/internal/service"
)

func TestCreateThenFindReturnsNormalizedRecord(t *testing.T) {
	f := newFixture(t)

	child, err := f.enroll.Create(f.ctx, f.admin, service.EnrollmentInput{
		FirstName:        "  Ada ",
		LastName:         "Lovelace",
		DateOfBirth:      "2021-12-10",
		AgeGroup:         models.AgeGroupToddler,
		ParentEmail:      " New.Parent@Example.com ",
		ParentName:       "Nell Parent",
		TeacherID:        f.teacher.ID,
		Allergies:        "Peanuts, dairy, PEANUTS ",
		MedicalNotes:     "inhaler in bag",
		EmergencyContact: "Gran 555-0101",
	})
	require.NoError(t, err)

	stored, err := f.store.Children.FindChildByID(f.ctx, child.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)

	assert.Equal(t, "Ada", stored.FirstName)
	assert.Equal(t, "Lovelace", stored.LastName)
	assert.Equal(t, "2021-12-10", stored.DateOfBirth)
	assert.Equal(t, models.AgeGroupToddler, stored.AgeGroup)
	assert.Equal(t, models.StatusActive, stored.Status, "status defaults to active")
	assert.Equal(t, f.teacher.ID, stored.TeacherID)
	assert.ElementsMatch(t, []string{"peanuts", "dairy"}, stored.Allergies)
	assert.Equal(t, "2024-06-15", stored.EnrollmentDate)
	assert.Equal(t, "inhaler in bag", stored.MedicalNotes)

	parent, err := f.store.Accounts.FindAccountByEmail(f.ctx, "new.parent@example.com")
	require.NoError(t, err)
	require.NotNil(t, parent)
	assert.Equal(t, parent.ID, stored.ParentID)
	assert.Equal(t, models.RoleParent, parent.SiteRole)
	assert.Equal(t, "Nell Parent", parent.FullName)
	assert.True(t, parent.ActiveStatus)
}

func TestCreateWithoutParentOrTeacher(t *testing.T) {
	f := newFixture(t)

	child := f.enrollChild(t, func(in *service.EnrollmentInput) {
		in.Status = models.StatusWaitlist
		in.Allergies = "   "
	})

	assert.Empty(t, child.ParentID)
	assert.Empty(t, child.TeacherID)
	assert.Nil(t, child.Allergies)
	assert.Equal(t, models.StatusWaitlist, child.Status)
}

func TestCreateRequiresStaff(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name  string
		actor *models.Account
		want  error
	}{
		{"no session", nil, apperrors.ErrUnauthenticated},
		{"parent", f.parent, apperrors.ErrUnauthorized},
		{"null role", f.nobody, apperrors.ErrUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			in.ParentEmail = "someone@example.com"
			in.ParentName = "Some One"

			_, err := f.enroll.Create(f.ctx, tt.actor, in)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	// the gate runs before parent resolution
	found, err := f.store.Accounts.FindAccountByEmail(f.ctx, "someone@example.com")
	require.NoError(t, err)
	assert.Nil(t, found)

	_, err = f.enroll.Create(f.ctx, f.teacher, validInput())
	assert.NoError(t, err, "teachers may enroll")
}

func TestCreateValidationErrors(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name   string
		mutate func(*service.EnrollmentInput)
		want   error
	}{
		{"future dob", func(in *service.EnrollmentInput) { in.DateOfBirth = "2999-01-01" }, apperrors.ErrFutureDateOfBirth},
		{"day first dob", func(in *service.EnrollmentInput) { in.DateOfBirth = "01-01-2020" }, apperrors.ErrInvalidDateFormat},
		{"blank name", func(in *service.EnrollmentInput) { in.FirstName = " " }, apperrors.ErrMissingName},
		{"bad age group", func(in *service.EnrollmentInput) { in.AgeGroup = "teen" }, apperrors.ErrInvalidAgeGroup},
		{"pending status", func(in *service.EnrollmentInput) { in.Status = "pending" }, apperrors.ErrInvalidStatus},
		{"admin as teacher", func(in *service.EnrollmentInput) { in.TeacherID = "admin-1" }, apperrors.ErrInvalidTeacher},
		{"unknown teacher", func(in *service.EnrollmentInput) { in.TeacherID = "missing" }, apperrors.ErrInvalidTeacher},
		{"new parent without name", func(in *service.EnrollmentInput) { in.ParentEmail = "fresh@example.com" }, apperrors.ErrMissingParentName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)
			_, err := f.enroll.Create(f.ctx, f.admin, in)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	children, err := f.store.Children.ListChildren(f.ctx, models.ChildFilter{})
	require.NoError(t, err)
	assert.Empty(t, children, "no child written on failure")
}

func TestCreateKeepsParentCreatedBeforeLaterFailure(t *testing.T) {
	f := newFixture(t)
	before := f.accountCount(t)

	in := validInput()
	in.ParentEmail = "orphan@example.com"
	in.ParentName = "Orphan Parent"
	in.DateOfBirth = "2999-01-01"

	_, err := f.enroll.Create(f.ctx, f.admin, in)
	require.ErrorIs(t, err, apperrors.ErrFutureDateOfBirth)

	assert.Equal(t, before+1, f.accountCount(t))
	orphan, err := f.store.Accounts.FindAccountByEmail(f.ctx, "orphan@example.com")
	require.NoError(t, err)
	require.NotNil(t, orphan)
	assert.Equal(t, models.RoleParent, orphan.SiteRole)

	// retrying with a fixed date reuses the account
	in.DateOfBirth = "2022-01-01"
	child, err := f.enroll.Create(f.ctx, f.admin, in)
	require.NoError(t, err)
	assert.Equal(t, orphan.ID, child.ParentID)
	assert.Equal(t, before+1, f.accountCount(t))
}

func TestCreateReusesExistingAccountUnchanged(t *testing.T) {
	f := newFixture(t)

	// a teacher's email used as parent email links to the teacher account as is
	child := f.enrollChild(t, func(in *service.EnrollmentInput) {
		in.ParentEmail = f.teacher.Email
		in.ParentName = "Different Name"
	})

	assert.Equal(t, f.teacher.ID, child.ParentID)
	teacher, err := f.store.Accounts.FindAccountByID(f.ctx, f.teacher.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleTeacher, teacher.SiteRole)
	assert.Equal(t, "Tess Teacher", teacher.FullName)
}

func TestUpdateWithInvalidStatusLeavesRecordUnchanged(t *testing.T) {
	f := newFixture(t)
	child := f.enrollChild(t, nil)

	before, err := f.store.Children.FindChildByID(f.ctx, child.ID)
	require.NoError(t, err)

	_, err = f.enroll.Update(f.ctx, f.admin, child.ID, service.ChildUpdate{
		FirstName: ptr("Augusta"),
		Status:    ptr(models.ChildStatus("archived")),
	})
	require.ErrorIs(t, err, apperrors.ErrInvalidStatus)

	after, err := f.store.Children.FindChildByID(f.ctx, child.ID)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestUpdateInvalidTeacherWritesNothing(t *testing.T) {
	f := newFixture(t)
	child := f.enrollChild(t, func(in *service.EnrollmentInput) { in.TeacherID = "teacher-1" })

	_, err := f.enroll.Update(f.ctx, f.admin, child.ID, service.ChildUpdate{
		LastName:  ptr("Byron"),
		TeacherID: ptr("admin-1"),
	})
	require.ErrorIs(t, err, apperrors.ErrInvalidTeacher)

	after, err := f.store.Children.FindChildByID(f.ctx, child.ID)
	require.NoError(t, err)
	assert.Equal(t, "Lovelace", after.LastName)
	assert.Equal(t, "teacher-1", after.TeacherID)
}

func TestUpdateAppliesOnlySuppliedFields(t *testing.T) {
	f := newFixture(t)
	child := f.enrollChild(t, func(in *service.EnrollmentInput) {
		in.TeacherID = "teacher-1"
		in.Allergies = "eggs"
		in.MedicalNotes = "none"
	})

	updated, err := f.enroll.Update(f.ctx, f.teacher, child.ID, service.ChildUpdate{
		AgeGroup:  ptr(models.AgeGroupPreschool),
		TeacherID: ptr(""),
		Allergies: ptr("Soy, soy"),
	})
	require.NoError(t, err)
	assert.Equal(t, models.AgeGroupPreschool, updated.AgeGroup)

	stored, err := f.store.Children.FindChildByID(f.ctx, child.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AgeGroupPreschool, stored.AgeGroup)
	assert.Empty(t, stored.TeacherID, "empty teacher id clears the assignment")
	assert.Equal(t, []string{"soy"}, stored.Allergies)
	assert.Equal(t, "none", stored.MedicalNotes)
	assert.Equal(t, "Ada", stored.FirstName)
	assert.Equal(t, child.ParentID, stored.ParentID)
	assert.Equal(t, child.EnrollmentDate, stored.EnrollmentDate)

	cleared, err := f.enroll.Update(f.ctx, f.admin, child.ID, service.ChildUpdate{Allergies: ptr("  ")})
	require.NoError(t, err)
	assert.Nil(t, cleared.Allergies)
}

func TestUpdateMissingChild(t *testing.T) {
	f := newFixture(t)

	_, err := f.enroll.Update(f.ctx, f.admin, "missing", service.ChildUpdate{FirstName: ptr("X")})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = f.enroll.Update(f.ctx, f.parent, "missing", service.ChildUpdate{})
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized, "gate runs before the lookup")
}

func TestSetStatusRoundTripChangesNothingElse(t *testing.T) {
	f := newFixture(t)
	child := f.enrollChild(t, func(in *service.EnrollmentInput) {
		in.TeacherID = "teacher-1"
		in.Allergies = "latex"
	})

	before, err := f.store.Children.FindChildByID(f.ctx, child.ID)
	require.NoError(t, err)

	_, err = f.enroll.SetStatus(f.ctx, f.admin, child.ID, models.StatusInactive)
	require.NoError(t, err)
	mid, err := f.store.Children.FindChildByID(f.ctx, child.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInactive, mid.Status)

	_, err = f.enroll.SetStatus(f.ctx, f.admin, child.ID, models.StatusActive)
	require.NoError(t, err)

	after, err := f.store.Children.FindChildByID(f.ctx, child.ID)
	require.NoError(t, err)
	after.UpdatedAt = before.UpdatedAt
	assert.Equal(t, before, after)

	_, err = f.enroll.SetStatus(f.ctx, f.admin, child.ID, "pending")
	assert.ErrorIs(t, err, apperrors.ErrInvalidStatus)
	_, err = f.enroll.SetStatus(f.ctx, f.admin, "missing", models.StatusActive)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestAssignTeacher(t *testing.T) {
	f := newFixture(t)
	child := f.enrollChild(t, nil)

	updated, err := f.enroll.AssignTeacher(f.ctx, f.teacher, child.ID, f.other.ID)
	require.NoError(t, err)
	assert.Equal(t, f.other.ID, updated.TeacherID)

	_, err = f.enroll.AssignTeacher(f.ctx, f.admin, child.ID, f.admin.ID)
	assert.ErrorIs(t, err, apperrors.ErrInvalidTeacher)

	cleared, err := f.enroll.AssignTeacher(f.ctx, f.admin, child.ID, "")
	require.NoError(t, err)
	assert.Empty(t, cleared.TeacherID)

	_, err = f.enroll.AssignTeacher(f.ctx, f.parent, child.ID, f.teacher.ID)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	_, err = f.enroll.AssignTeacher(f.ctx, f.admin, "missing", f.teacher.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestInactiveTeacherIsRejected(t *testing.T) {
	f := newFixture(t)

	_, err := f.accounts.Deactivate(f.ctx, f.admin, f.teacher.ID)
	require.NoError(t, err)
	// role back, account still inactive
	account, err := f.accounts.AssignRole(f.ctx, f.admin, f.teacher.ID, models.RoleTeacher)
	require.NoError(t, err)
	require.Equal(t, models.RoleTeacher, account.SiteRole)
	require.False(t, account.ActiveStatus)

	in := validInput()
	in.TeacherID = f.teacher.ID
	_, err = f.enroll.Create(f.ctx, f.admin, in)
	assert.ErrorIs(t, err, apperrors.ErrInvalidTeacher)
	children, err := f.store.Children.ListChildren(f.ctx, models.ChildFilter{})
	require.NoError(t, err)
	assert.Empty(t, children, "nothing written")

	child := f.enrollChild(t, nil)
	_, err = f.enroll.AssignTeacher(f.ctx, f.admin, child.ID, f.teacher.ID)
	assert.ErrorIs(t, err, apperrors.ErrInvalidTeacher)

	_, err = f.accounts.Reactivate(f.ctx, f.admin, f.teacher.ID)
	require.NoError(t, err)
	updated, err := f.enroll.AssignTeacher(f.ctx, f.admin, child.ID, f.teacher.ID)
	require.NoError(t, err)
	assert.Equal(t, f.teacher.ID, updated.TeacherID)
}

func TestDeleteIsAdminOnlyAndHard(t *testing.T) {
	f := newFixture(t)
	child := f.enrollChild(t, func(in *service.EnrollmentInput) {
		in.EmergencyContacts = []service.EmergencyContactInput{{Name: "Gran", Phone: "555-0101"}}
	})

	err := f.enroll.Delete(f.ctx, f.teacher, child.ID)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	require.NoError(t, f.enroll.Delete(f.ctx, f.admin, child.ID))

	_, err = f.enroll.GetChild(f.ctx, f.admin, child.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	contacts, err := f.store.EmergencyContacts.ListEmergencyContacts(f.ctx, child.ID)
	require.NoError(t, err)
	assert.Empty(t, contacts)

	assert.ErrorIs(t, f.enroll.Delete(f.ctx, f.admin, child.ID), apperrors.ErrNotFound)
}

func TestEmergencyContactsAreBestEffort(t *testing.T) {
	f := newFixture(t)

	child := f.enrollChild(t, func(in *service.EnrollmentInput) {
		in.EmergencyContacts = []service.EmergencyContactInput{
			{Name: "Gran", Phone: "555-0101", Relationship: "grandmother"},
			{Name: "No Phone"},
		}
	})
	contacts, err := f.enroll.ListEmergencyContacts(f.ctx, f.admin, child.ID)
	require.NoError(t, err)
	require.Len(t, contacts, 1)
	assert.Equal(t, "Gran", contacts[0].Name)

	broken := f.store
	broken.EmergencyContacts = failingContacts{}
	svc := service.NewEnrollmentService(broken, clock, logger.Nop())

	in := validInput()
	in.EmergencyContacts = []service.EmergencyContactInput{{Name: "Gran", Phone: "555-0101"}}
	created, err := svc.Create(f.ctx, f.admin, in)
	require.NoError(t, err, "contact failure must not fail the enrollment")

	stored, err := f.store.Children.FindChildByID(f.ctx, created.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored)
}

type failingContacts struct{}

func (failingContacts) InsertEmergencyContact(context.Context, *models.EmergencyContact) error {
	return apperrors.Storage("failed to create emergency contact", errors.New("disk full"))
}

func (failingContacts) ListEmergencyContacts(context.Context, string) ([]models.EmergencyContact, error) {
	return nil, nil
}

// barrierAccounts holds every email lookup until all expected callers have
// looked up, so concurrent enrollments all miss before any inserts.
type barrierAccounts struct {
	service.AccountStore
	arrived *sync.WaitGroup
}

func (b barrierAccounts) FindAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	account, err := b.AccountStore.FindAccountByEmail(ctx, email)
	b.arrived.Done()
	b.arrived.Wait()
	return account, err
}

func TestConcurrentEnrollmentsWithSameNewParent(t *testing.T) {
	f := newFixture(t)
	before := f.accountCount(t)

	const callers = 2
	var arrived sync.WaitGroup
	arrived.Add(callers)

	racing := f.store
	racing.Accounts = barrierAccounts{AccountStore: f.store.Accounts, arrived: &arrived}
	svc := service.NewEnrollmentService(racing, clock, logger.Nop())

	errs := make([]error, callers)
	var done sync.WaitGroup
	for i := 0; i < callers; i++ {
		done.Add(1)
		go func(i int) {
			defer done.Done()
			in := validInput()
			in.ParentEmail = "twins@example.com"
			in.ParentName = "Twin Parent"
			_, errs[i] = svc.Create(context.Background(), f.admin, in)
		}(i)
	}
	done.Wait()

	var failures int
	for _, err := range errs {
		if err != nil {
			failures++
			assert.ErrorIs(t, err, apperrors.ErrStorageFailure)
		}
	}
	assert.Equal(t, 1, failures, "exactly one enrollment loses the race")
	assert.Equal(t, before+1, f.accountCount(t), "only one parent account exists")

	children, err := f.store.Children.ListChildren(f.ctx, models.ChildFilter{})
	require.NoError(t, err)
	assert.Len(t, children, 1)
}

func TestReadViewsAreScopedByRole(t *testing.T) {
	f := newFixture(t)
	mine := f.enrollChild(t, func(in *service.EnrollmentInput) {
		in.ParentEmail = f.parent.Email
		in.TeacherID = f.teacher.ID
	})
	other := f.enrollChild(t, func(in *service.EnrollmentInput) {
		in.FirstName = "Grace"
		in.LastName = "Hopper"
		in.TeacherID = f.other.ID
	})

	all, err := f.enroll.ListChildren(f.ctx, f.admin, models.ChildFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	assigned, err := f.enroll.ListChildren(f.ctx, f.teacher, models.ChildFilter{})
	require.NoError(t, err)
	require.Len(t, assigned, 1)
	assert.Equal(t, mine.ID, assigned[0].ID)

	own, err := f.enroll.ListChildren(f.ctx, f.parent, models.ChildFilter{TeacherID: f.other.ID})
	require.NoError(t, err)
	assert.Empty(t, own, "parent filter cannot widen the scope")

	_, err = f.enroll.ListChildren(f.ctx, f.nobody, models.ChildFilter{})
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	_, err = f.enroll.ListChildren(f.ctx, nil, models.ChildFilter{})
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)

	got, err := f.enroll.GetChild(f.ctx, f.parent, mine.ID)
	require.NoError(t, err)
	assert.Equal(t, mine.ID, got.ID)

	_, err = f.enroll.GetChild(f.ctx, f.parent, other.ID)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	got, err = f.enroll.GetChild(f.ctx, f.teacher, mine.ID)
	require.NoError(t, err)
	assert.Equal(t, mine.ID, got.ID)

	_, err = f.enroll.GetChild(f.ctx, f.teacher, other.ID)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized, "teacher reads assigned children only")
	_, err = f.enroll.ListEmergencyContacts(f.ctx, f.teacher, other.ID)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	_, err = f.enroll.GetChild(f.ctx, f.admin, other.ID)
	assert.NoError(t, err)
}

func TestUpdateCareByParent(t *testing.T) {
	f := newFixture(t)
	child := f.enrollChild(t, func(in *service.EnrollmentInput) {
		in.ParentEmail = f.parent.Email
	})

	updated, err := f.enroll.UpdateCare(f.ctx, f.parent, child.ID, service.CareUpdate{
		Allergies:    ptr("Bees, bees"),
		MedicalNotes: ptr("epipen in office"),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"bees"}, updated.Allergies)
	assert.Equal(t, "epipen in office", updated.MedicalNotes)

	stranger := f.seedAccount(t, "parent-2", "stranger@example.com", "Stranger", models.RoleParent)
	_, err = f.enroll.UpdateCare(f.ctx, stranger, child.ID, service.CareUpdate{MedicalNotes: ptr("x")})
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	_, err = f.enroll.UpdateCare(f.ctx, f.admin, child.ID, service.CareUpdate{MedicalNotes: ptr("x")})
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized, "staff use Update")
}

func TestSummary(t *testing.T) {
	f := newFixture(t)
	f.enrollChild(t, func(in *service.EnrollmentInput) { in.TeacherID = f.teacher.ID })
	f.enrollChild(t, func(in *service.EnrollmentInput) {
		in.AgeGroup = models.AgeGroupInfant
		in.Status = models.StatusWaitlist
	})

	summary, err := f.enroll.Summary(f.ctx, f.admin)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 1, summary.ByStatus[models.StatusActive])
	assert.Equal(t, 1, summary.ByStatus[models.StatusWaitlist])
	assert.Equal(t, 0, summary.ByStatus[models.StatusInactive])
	assert.Equal(t, 1, summary.ByAgeGroup[models.AgeGroupInfant])
	assert.Equal(t, 1, summary.Unassigned)

	_, err = f.enroll.Summary(f.ctx, f.teacher)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}
