package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Freeeeeet/guide_scheduler/internal/calendar"
	"github.com/Freeeeeet/guide_scheduler/internal/model"
	"github.com/Freeeeeet/guide_scheduler/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MaxReasonLength ограничение на длину причины исключения
const MaxReasonLength = 500

// ScheduleService недельный шаблон и исключения на даты
type ScheduleService struct {
	store  repository.Store
	cache  SlotCache
	opts   Options
	logger *zap.Logger
}

func NewScheduleService(store repository.Store, cache SlotCache, opts Options, logger *zap.Logger) *ScheduleService {
	return &ScheduleService{
		store:  store,
		cache:  cache,
		opts:   opts.withDefaults(),
		logger: logger,
	}
}

// SetWeeklyEntry записывает шаблон на день недели.
// Существующие брони не трогаются; шаблон влияет только на новые слоты.
func (s *ScheduleService) SetWeeklyEntry(ctx context.Context, entry *model.WeeklyScheduleEntry) error {
	if entry.GuideID <= 0 {
		return model.NewValidationError("guide_id must be positive")
	}
	if entry.DayOfWeek < 0 || entry.DayOfWeek > 6 {
		return model.NewValidationError("day_of_week must be 0..6, got %d", entry.DayOfWeek)
	}
	if err := model.ValidateHours(entry.IsAvailable, entry.StartTime, entry.EndTime); err != nil {
		return err
	}
	if !entry.IsAvailable {
		entry.StartTime, entry.EndTime = nil, nil
	}
	entry.UpdatedAt = s.opts.now()

	err := s.store.InGuideTx(ctx, entry.GuideID, func(tx repository.Store) error {
		if err := tx.Schedules().UpsertWeekly(ctx, entry); err != nil {
			return fmt.Errorf("upsert weekly entry: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	invalidateSlots(ctx, s.cache, s.logger, entry.GuideID)

	s.logger.Info("Weekly schedule updated",
		zap.Int64("guide_id", entry.GuideID),
		zap.Int("day_of_week", entry.DayOfWeek),
		zap.Bool("is_available", entry.IsAvailable),
	)

	return nil
}

// GetWeeklySchedule возвращает семь записей, воскресенье первым.
// Дни без сохранённой записи недоступны.
func (s *ScheduleService) GetWeeklySchedule(ctx context.Context, guideID int64) ([]*model.WeeklyScheduleEntry, error) {
	stored, err := s.store.Schedules().ListWeekly(ctx, guideID)
	if err != nil {
		return nil, fmt.Errorf("list weekly schedule: %w", err)
	}

	week := make([]*model.WeeklyScheduleEntry, 7)
	for day := range week {
		week[day] = &model.WeeklyScheduleEntry{GuideID: guideID, DayOfWeek: day}
	}
	for _, entry := range stored {
		if entry.DayOfWeek >= 0 && entry.DayOfWeek < len(week) {
			week[entry.DayOfWeek] = entry
		}
	}

	return week, nil
}

// ExceptionInput исключение на конкретную дату
type ExceptionInput struct {
	GuideID     int64
	Date        calendar.Date
	IsAvailable bool
	StartTime   *calendar.LocalTime
	EndTime     *calendar.LocalTime
	Reason      string
}

// AddException создаёт или заменяет исключение на дату.
// Подтверждение замены остаётся за вызывающей стороной.
func (s *ScheduleService) AddException(ctx context.Context, in ExceptionInput) (*model.ScheduleException, error) {
	if in.GuideID <= 0 {
		return nil, model.NewValidationError("guide_id must be positive")
	}
	if in.Date.IsZero() {
		return nil, model.NewValidationError("date is required")
	}
	if in.Date.Before(s.opts.today()) {
		return nil, model.NewValidationError("date %s is in the past", in.Date)
	}
	if err := model.ValidateHours(in.IsAvailable, in.StartTime, in.EndTime); err != nil {
		return nil, err
	}
	reason := strings.TrimSpace(in.Reason)
	if len(reason) > MaxReasonLength {
		return nil, model.NewValidationError("reason longer than %d bytes", MaxReasonLength)
	}

	exception := &model.ScheduleException{
		GuideID:       in.GuideID,
		ExceptionDate: in.Date,
		IsAvailable:   in.IsAvailable,
		Reason:        reason,
		CreatedAt:     s.opts.now(),
	}
	if in.IsAvailable {
		exception.StartTime, exception.EndTime = in.StartTime, in.EndTime
	}

	err := s.store.InGuideTx(ctx, in.GuideID, func(tx repository.Store) error {
		if err := tx.Exceptions().Upsert(ctx, exception); err != nil {
			return fmt.Errorf("upsert exception: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	invalidateSlots(ctx, s.cache, s.logger, in.GuideID)

	s.logger.Info("Schedule exception saved",
		zap.String("exception_id", exception.ID.String()),
		zap.Int64("guide_id", in.GuideID),
		zap.String("date", in.Date.String()),
		zap.Bool("is_available", in.IsAvailable),
	)

	return exception, nil
}

// RemoveException удаляет исключение; отсутствие записи не ошибка
func (s *ScheduleService) RemoveException(ctx context.Context, id uuid.UUID) error {
	exception, err := s.store.Exceptions().GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get exception: %w", err)
	}
	if exception == nil {
		return nil
	}

	err = s.store.InGuideTx(ctx, exception.GuideID, func(tx repository.Store) error {
		if err := tx.Exceptions().Delete(ctx, id); err != nil {
			return fmt.Errorf("delete exception: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	invalidateSlots(ctx, s.cache, s.logger, exception.GuideID)

	s.logger.Info("Schedule exception removed",
		zap.String("exception_id", id.String()),
		zap.Int64("guide_id", exception.GuideID),
	)

	return nil
}

// ListExceptions исключения гида за [from, to] по возрастанию даты
func (s *ScheduleService) ListExceptions(ctx context.Context, guideID int64, from, to calendar.Date) ([]*model.ScheduleException, error) {
	if err := validateRange(from, to, 0); err != nil {
		return nil, err
	}
	exceptions, err := s.store.Exceptions().ListRange(ctx, guideID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list exceptions: %w", err)
	}
	return exceptions, nil
}

// PurgePastExceptions удаляет исключения на даты раньше before.
// Нулевая дата означает "сегодня".
func (s *ScheduleService) PurgePastExceptions(ctx context.Context, before calendar.Date) (int64, error) {
	if before.IsZero() {
		before = s.opts.today()
	}
	deleted, err := s.store.Exceptions().DeleteBefore(ctx, before)
	if err != nil {
		return 0, fmt.Errorf("delete past exceptions: %w", err)
	}

	s.logger.Info("Past schedule exceptions purged",
		zap.String("before", before.String()),
		zap.Int64("deleted", deleted),
	)

	return deleted, nil
}
