package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isati-sh/daycare-sub001/internal/apperrors"
	"github.com/isati-sh/daycare-sub001/internal/logger"
	"github.com/isati-sh/daycare-sub001/internal/service"
)

func TestDailyLogs(t *testing.T) {
	f := newFixture(t)
	logs := service.NewDailyLogService(f.store, clock, logger.Nop())

	child := f.enrollChild(t, func(in *service.EnrollmentInput) {
		in.ParentEmail = f.parent.Email
		in.TeacherID = f.teacher.ID
	})

	entry, err := logs.CreateLog(f.ctx, f.teacher, child.ID, service.DailyLogInput{
		Mood:       " happy ",
		Meals:      "ate all lunch",
		NapMinutes: 45,
	})
	require.NoError(t, err)
	assert.Equal(t, "2024-06-15", entry.LogDate, "defaults to today")
	assert.Equal(t, "happy", entry.Mood)
	assert.Equal(t, f.teacher.ID, entry.AuthorID)

	_, err = logs.CreateLog(f.ctx, f.admin, child.ID, service.DailyLogInput{LogDate: "2024-06-14", Notes: "quiet day"})
	require.NoError(t, err)

	got, err := logs.ListLogs(f.ctx, f.parent, child.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "2024-06-15", got[0].LogDate, "newest first")
	assert.Equal(t, "2024-06-14", got[1].LogDate)
}

func TestDailyLogRules(t *testing.T) {
	f := newFixture(t)
	logs := service.NewDailyLogService(f.store, clock, logger.Nop())

	child := f.enrollChild(t, func(in *service.EnrollmentInput) { in.TeacherID = f.teacher.ID })

	_, err := logs.CreateLog(f.ctx, f.other, child.ID, service.DailyLogInput{})
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized, "teacher not assigned")

	_, err = logs.CreateLog(f.ctx, f.parent, child.ID, service.DailyLogInput{})
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	_, err = logs.CreateLog(f.ctx, f.teacher, child.ID, service.DailyLogInput{LogDate: "2024-06-16"})
	assert.ErrorIs(t, err, apperrors.ErrFutureLogDate)

	_, err = logs.CreateLog(f.ctx, f.teacher, child.ID, service.DailyLogInput{LogDate: "15/06/2024"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidDateFormat)

	_, err = logs.CreateLog(f.ctx, f.teacher, child.ID, service.DailyLogInput{NapMinutes: -5})
	assert.ErrorIs(t, err, apperrors.ErrInvalidNapMinutes)

	_, err = logs.CreateLog(f.ctx, f.admin, "missing", service.DailyLogInput{})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = logs.ListLogs(f.ctx, f.parent, child.ID)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized, "not this parent's child")
	_, err = logs.ListLogs(f.ctx, f.other, child.ID)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized, "teacher not assigned")
	_, err = logs.ListLogs(f.ctx, f.teacher, child.ID)
	assert.NoError(t, err)
	_, err = logs.ListLogs(f.ctx, nil, child.ID)
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
}
