package service_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isati-sh/daycare-sub001/internal/logger"
	"github.com/isati-sh/daycare-sub001/internal/models"
	"github.com/isati-sh/daycare-sub001/internal/service"
	"github.com/isati-sh/daycare-sub001/internal/storage/memory"
)

func TestBackupRoundTrip(t *testing.T) {
	f := newFixture(t)
	registered, err := f.accounts.Register(f.ctx, "hash@example.com", "keep-this-hash", "Hash Keeper")
	require.NoError(t, err)

	child := f.enrollChild(t, func(in *service.EnrollmentInput) {
		in.ParentEmail = f.parent.Email
		in.TeacherID = f.teacher.ID
		in.Allergies = "nuts"
		in.EmergencyContacts = []service.EmergencyContactInput{{Name: "Gran", Phone: "555-0101"}}
	})
	logs := service.NewDailyLogService(f.store, clock, logger.Nop())
	_, err = logs.CreateLog(f.ctx, f.teacher, child.ID, service.DailyLogInput{Mood: "calm"})
	require.NoError(t, err)

	var buf bytes.Buffer
	data, err := service.NewBackupService(f.store, "memory", clock, logger.Nop()).Export(f.ctx, &buf)
	require.NoError(t, err)
	assert.Len(t, data.Accounts, 6)
	assert.Contains(t, buf.String(), `"password_hash"`)

	target := memory.New().Ports()
	stats, err := service.NewBackupService(target, "memory", clock, logger.Nop()).Import(f.ctx, &buf)
	require.NoError(t, err)
	assert.Equal(t, 6, stats.Accounts)
	assert.Equal(t, 1, stats.Children)
	assert.Equal(t, 1, stats.EmergencyContacts)
	assert.Equal(t, 1, stats.DailyLogs)
	assert.Zero(t, stats.Skipped)

	restored, err := target.Children.FindChildByID(f.ctx, child.ID)
	require.NoError(t, err)
	require.NotNil(t, restored)
	assert.Equal(t, []string{"nuts"}, restored.Allergies)
	assert.Equal(t, f.parent.ID, restored.ParentID)

	account, err := target.Accounts.FindAccountByEmail(f.ctx, "hash@example.com")
	require.NoError(t, err)
	assert.Equal(t, registered.PasswordHash, account.PasswordHash)
}

func TestImportRemapsExistingAccounts(t *testing.T) {
	f := newFixture(t)
	child := f.enrollChild(t, func(in *service.EnrollmentInput) { in.TeacherID = f.teacher.ID })

	var buf bytes.Buffer
	_, err := service.NewBackupService(f.store, "memory", clock, logger.Nop()).Export(f.ctx, &buf)
	require.NoError(t, err)

	mem := memory.New()
	existing := &models.Account{ID: "local-teacher", Email: f.teacher.Email, FullName: "Local", SiteRole: models.RoleTeacher, ActiveStatus: true}
	require.NoError(t, mem.InsertAccount(f.ctx, existing))

	stats, err := service.NewBackupService(mem.Ports(), "memory", clock, logger.Nop()).Import(f.ctx, &buf)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Skipped)

	restored, err := mem.FindChildByID(f.ctx, child.ID)
	require.NoError(t, err)
	assert.Equal(t, "local-teacher", restored.TeacherID)
}

func TestImportRejectsUnknownVersion(t *testing.T) {
	f := newFixture(t)
	body, err := json.Marshal(map[string]any{"version": "0.1"})
	require.NoError(t, err)

	_, err = service.NewBackupService(f.store, "memory", clock, logger.Nop()).Import(f.ctx, bytes.NewReader(body))
	assert.ErrorContains(t, err, "unsupported backup version")

	_, err = service.NewBackupService(f.store, "memory", clock, logger.Nop()).Import(f.ctx, strings.NewReader("{"))
	assert.ErrorContains(t, err, "failed to decode backup")
}
