package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/Freeeeeet/guide_scheduler/internal/model"
	"github.com/Freeeeeet/guide_scheduler/internal/service"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeeklySchedule(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	f := newFixture(t)
	f.workMonday(t, "9:00", "17:00")

	week, err := f.svc.Schedules.GetWeeklySchedule(ctx, guideID)
	require.NoError(t, err)
	require.Len(t, week, 7)
	for day, entry := range week {
		assert.Equal(t, day, entry.DayOfWeek)
		assert.Equal(t, day == 1, entry.IsAvailable)
	}
	assert.Equal(t, "09:00", week[1].StartTime.String())

	t.Run("rejects invalid entries", func(t *testing.T) {
		cases := []*model.WeeklyScheduleEntry{
			{GuideID: guideID, DayOfWeek: 7, IsAvailable: true, StartTime: tp(t, "09:00"), EndTime: tp(t, "10:00")},
			{GuideID: guideID, DayOfWeek: 2, IsAvailable: true},
			{GuideID: guideID, DayOfWeek: 2, IsAvailable: true, StartTime: tp(t, "12:00"), EndTime: tp(t, "09:00")},
			{GuideID: 0, DayOfWeek: 2},
		}
		for _, entry := range cases {
			err := f.svc.Schedules.SetWeeklyEntry(ctx, entry)
			assert.True(t, errors.Is(err, model.ErrValidation), "%+v", entry)
		}
	})

	t.Run("unavailable day drops hours", func(t *testing.T) {
		entry := &model.WeeklyScheduleEntry{GuideID: guideID, DayOfWeek: 1, StartTime: tp(t, "09:00"), EndTime: tp(t, "10:00")}
		require.NoError(t, f.svc.Schedules.SetWeeklyEntry(ctx, entry))

		stored, err := f.store.Schedules().GetWeeklyEntry(ctx, guideID, 1)
		require.NoError(t, err)
		assert.False(t, stored.IsAvailable)
		assert.Nil(t, stored.StartTime)
	})
}

func TestTemplateChangeKeepsBookings(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	f := newFixture(t)
	f.workMonday(t, "09:00", "17:00")
	b, err := f.book(t, nextMonday, "10:00", "12:00")
	require.NoError(t, err)
	_, err = f.svc.Bookings.Transition(ctx, b.ID, model.RoleGuide, model.BookingStatusConfirmed)
	require.NoError(t, err)

	_, err = f.svc.Schedules.AddException(ctx, service.ExceptionInput{GuideID: guideID, Date: nextMonday, Reason: "sick"})
	require.NoError(t, err)

	stored, err := f.svc.Bookings.Get(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BookingStatusConfirmed, stored.Status)

	// Новые брони на этот день невозможны
	_, err = f.book(t, nextMonday, "14:00", "15:00")
	assert.True(t, errors.Is(err, model.ErrValidation))
}

func TestExceptions(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("validation", func(t *testing.T) {
		f := newFixture(t)
		cases := []service.ExceptionInput{
			{GuideID: guideID, Date: today.AddDays(-1)},
			{GuideID: guideID, Date: nextMonday, IsAvailable: true},
			{GuideID: guideID, Date: nextMonday, IsAvailable: true, StartTime: tp(t, "10:00")},
			{GuideID: guideID, Date: nextMonday, IsAvailable: true, StartTime: tp(t, "12:00"), EndTime: tp(t, "12:00")},
			{GuideID: guideID},
		}
		for _, in := range cases {
			_, err := f.svc.Schedules.AddException(ctx, in)
			assert.True(t, errors.Is(err, model.ErrValidation), "%+v", in)
		}
	})

	t.Run("upsert replaces same date", func(t *testing.T) {
		f := newFixture(t)
		first, err := f.svc.Schedules.AddException(ctx, service.ExceptionInput{GuideID: guideID, Date: nextMonday, Reason: "holiday"})
		require.NoError(t, err)

		second, err := f.svc.Schedules.AddException(ctx, service.ExceptionInput{
			GuideID: guideID, Date: nextMonday, IsAvailable: true,
			StartTime: tp(t, "10:00"), EndTime: tp(t, "14:00"),
		})
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)

		list, err := f.svc.Schedules.ListExceptions(ctx, guideID, today, nextMonday.AddDays(30))
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.True(t, list[0].IsAvailable)
	})

	t.Run("list sorted and remove idempotent", func(t *testing.T) {
		f := newFixture(t)
		dates := []int{9, 2, 5}
		for _, d := range dates {
			_, err := f.svc.Schedules.AddException(ctx, service.ExceptionInput{GuideID: guideID, Date: today.AddDays(d)})
			require.NoError(t, err)
		}

		list, err := f.svc.Schedules.ListExceptions(ctx, guideID, today, today.AddDays(30))
		require.NoError(t, err)
		require.Len(t, list, 3)
		assert.Equal(t, today.AddDays(2), list[0].ExceptionDate)
		assert.Equal(t, today.AddDays(5), list[1].ExceptionDate)
		assert.Equal(t, today.AddDays(9), list[2].ExceptionDate)

		require.NoError(t, f.svc.Schedules.RemoveException(ctx, list[1].ID))
		require.NoError(t, f.svc.Schedules.RemoveException(ctx, list[1].ID))
		require.NoError(t, f.svc.Schedules.RemoveException(ctx, uuid.New()))

		list, err = f.svc.Schedules.ListExceptions(ctx, guideID, today, today.AddDays(30))
		require.NoError(t, err)
		assert.Len(t, list, 2)
	})

	t.Run("purge past", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Schedules.AddException(ctx, service.ExceptionInput{GuideID: guideID, Date: today})
		require.NoError(t, err)
		_, err = f.svc.Schedules.AddException(ctx, service.ExceptionInput{GuideID: guideID, Date: today.AddDays(3)})
		require.NoError(t, err)

		deleted, err := f.svc.Schedules.PurgePastExceptions(ctx, today.AddDays(1))
		require.NoError(t, err)
		assert.Equal(t, int64(1), deleted)

		deleted, err = f.svc.Schedules.PurgePastExceptions(ctx, today)
		require.NoError(t, err)
		assert.Equal(t, int64(0), deleted)
	})

	t.Run("writes invalidate slot cache", func(t *testing.T) {
		f := newFixture(t)
		e, err := f.svc.Schedules.AddException(ctx, service.ExceptionInput{GuideID: guideID, Date: nextMonday})
		require.NoError(t, err)
		require.NoError(t, f.svc.Schedules.RemoveException(ctx, e.ID))
		assert.Equal(t, 2, f.cache.invalidations(guideID))
	})
}
