package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/isati-sh/daycare-sub001/internal/logger"
	"github.com/isati-sh/daycare-sub001/internal/models"
	"github.com/isati-sh/daycare-sub001/internal/service"
	"github.com/isati-sh/daycare-sub001/internal/storage/memory"
)

var fixedNow = time.Date(2024, time.June, 15, 9, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

type fixture struct {
	ctx      context.Context
	mem      *memory.Store
	store    service.Store
	enroll   *service.EnrollmentService
	accounts *service.AccountService

	admin   *models.Account
	teacher *models.Account
	other   *models.Account // second teacher
	parent  *models.Account
	nobody  *models.Account // registered, no role yet
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mem := memory.New()
	f := &fixture{
		ctx:   context.Background(),
		mem:   mem,
		store: mem.Ports(),
	}
	f.enroll = service.NewEnrollmentService(f.store, clock, logger.Nop())
	f.accounts = service.NewAccountService(f.store.Accounts, clock, logger.Nop())

	f.admin = f.seedAccount(t, "admin-1", "admin@daycare.test", "Avery Admin", models.RoleAdmin)
	f.teacher = f.seedAccount(t, "teacher-1", "teacher@daycare.test", "Tess Teacher", models.RoleTeacher)
	f.other = f.seedAccount(t, "teacher-2", "other@daycare.test", "Theo Teacher", models.RoleTeacher)
	f.parent = f.seedAccount(t, "parent-1", "parent@daycare.test", "Pat Parent", models.RoleParent)
	f.nobody = f.seedAccount(t, "nobody-1", "nobody@daycare.test", "Nova None", models.RoleNone)
	return f
}

func (f *fixture) seedAccount(t *testing.T, id, email, name string, role models.SiteRole) *models.Account {
	t.Helper()
	a := &models.Account{
		ID:           id,
		Email:        email,
		FullName:     name,
		SiteRole:     role,
		ActiveStatus: true,
		CreatedAt:    fixedNow,
		UpdatedAt:    fixedNow,
	}
	require.NoError(t, f.mem.InsertAccount(context.Background(), a))
	return a
}

func validInput() service.EnrollmentInput {
	return service.EnrollmentInput{
		FirstName:   "Ada",
		LastName:    "Lovelace",
		DateOfBirth: "2021-12-10",
		AgeGroup:    models.AgeGroupToddler,
	}
}

func (f *fixture) enrollChild(t *testing.T, mutate func(*service.EnrollmentInput)) *models.Child {
	t.Helper()
	in := validInput()
	if mutate != nil {
		mutate(&in)
	}
	child, err := f.enroll.Create(f.ctx, f.admin, in)
	require.NoError(t, err)
	return child
}

func (f *fixture) accountCount(t *testing.T) int {
	t.Helper()
	all, err := f.store.Accounts.ListAccounts(f.ctx, models.AccountFilter{})
	require.NoError(t, err)
	return len(all)
}

func ptr[T any](v T) *T { return &v }
