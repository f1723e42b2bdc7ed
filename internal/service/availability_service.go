package service

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/guide_scheduler/internal/calendar"
	"github.com/Freeeeeet/guide_scheduler/internal/model"
	"github.com/Freeeeeet/guide_scheduler/internal/repository"
	"go.uber.org/zap"
)

// MaxCalendarDays ограничение на длину диапазона в Calendar
const MaxCalendarDays = 62

type AvailabilityService struct {
	store  repository.Store
	cache  SlotCache
	opts   Options
	logger *zap.Logger
}

func NewAvailabilityService(store repository.Store, cache SlotCache, opts Options, logger *zap.Logger) *AvailabilityService {
	return &AvailabilityService{
		store:  store,
		cache:  cache,
		opts:   opts.withDefaults(),
		logger: logger,
	}
}

// Today текущая дата в зоне движка
func (s *AvailabilityService) Today() calendar.Date {
	return s.opts.today()
}

// Resolve возвращает рабочее окно гида на дату.
// Порядок: прошедшая дата, исключение на дату, недельный шаблон, по умолчанию недоступен.
func (s *AvailabilityService) Resolve(ctx context.Context, guideID int64, date calendar.Date) (model.Availability, error) {
	if date.IsZero() {
		return model.Availability{}, model.NewValidationError("date is required")
	}
	return resolveAvailability(ctx, s.store, s.opts.today(), guideID, date)
}

func resolveAvailability(ctx context.Context, store repository.Store, today calendar.Date, guideID int64, date calendar.Date) (model.Availability, error) {
	if date.Before(today) {
		return model.Availability{IsAvailable: false, Reason: "Past date", Source: model.SourcePast}, nil
	}

	// Исключение на дату полностью заменяет шаблон
	exception, err := store.Exceptions().GetByDate(ctx, guideID, date)
	if err != nil {
		return model.Availability{}, fmt.Errorf("get exception: %w", err)
	}
	if exception != nil {
		return model.Availability{
			IsAvailable: exception.IsAvailable,
			StartTime:   exception.StartTime,
			EndTime:     exception.EndTime,
			Reason:      exception.Reason,
			Source:      model.SourceException,
		}, nil
	}

	entry, err := store.Schedules().GetWeeklyEntry(ctx, guideID, date.Weekday())
	if err != nil {
		return model.Availability{}, fmt.Errorf("get weekly entry: %w", err)
	}
	if entry != nil {
		return model.Availability{
			IsAvailable: entry.IsAvailable,
			StartTime:   entry.StartTime,
			EndTime:     entry.EndTime,
			Source:      model.SourceWeekly,
		}, nil
	}

	return model.Availability{IsAvailable: false, Source: model.SourceDefault}, nil
}

// AvailableSlots возвращает свободные времена начала длительностью durationMinutes.
// stepMinutes <= 0 означает шаг по умолчанию.
func (s *AvailabilityService) AvailableSlots(ctx context.Context, guideID int64, date calendar.Date, durationMinutes, stepMinutes int) ([]calendar.LocalTime, error) {
	if date.IsZero() {
		return nil, model.NewValidationError("date is required")
	}
	if durationMinutes <= 0 || durationMinutes > calendar.MinutesPerDay {
		return nil, model.NewValidationError("duration must be 1..%d minutes, got %d", calendar.MinutesPerDay, durationMinutes)
	}
	if stepMinutes > calendar.MinutesPerDay {
		return nil, model.NewValidationError("step must be at most %d minutes, got %d", calendar.MinutesPerDay, stepMinutes)
	}
	if stepMinutes <= 0 {
		stepMinutes = s.opts.SlotStepMinutes
	}

	today := s.opts.today()
	if date.Before(today) {
		return []calendar.LocalTime{}, nil
	}

	// Поколение читается до хранилища: если бронь успеет сбросить кэш,
	// результат этого чтения запишется в уже мёртвое поколение
	gen, cached := s.cacheGeneration(ctx, guideID)
	if cached {
		slots, ok, err := s.cache.Get(ctx, guideID, gen, date, durationMinutes, stepMinutes)
		if err != nil {
			s.logger.Warn("Slot cache get failed", zap.Int64("guide_id", guideID), zap.Error(err))
		} else if ok {
			return slots, nil
		}
	}

	availability, err := resolveAvailability(ctx, s.store, today, guideID, date)
	if err != nil {
		return nil, err
	}

	bookings, err := s.store.Bookings().ListActiveByGuideDate(ctx, guideID, date)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}

	slots := FreeSlots(availability, bookings, durationMinutes, stepMinutes)

	if cached {
		if err := s.cache.Set(ctx, guideID, gen, date, durationMinutes, stepMinutes, slots); err != nil {
			s.logger.Warn("Slot cache set failed", zap.Int64("guide_id", guideID), zap.Error(err))
		}
	}

	return slots, nil
}

// cacheGeneration false, если кэша нет или он недоступен
func (s *AvailabilityService) cacheGeneration(ctx context.Context, guideID int64) (int64, bool) {
	if s.cache == nil {
		return 0, false
	}
	gen, err := s.cache.Generation(ctx, guideID)
	if err != nil {
		s.logger.Warn("Slot cache generation failed", zap.Int64("guide_id", guideID), zap.Error(err))
		return 0, false
	}
	return gen, true
}

// FreeSlots чистая функция: кандидаты из окна минус пересекающиеся с активными бронями
func FreeSlots(availability model.Availability, bookings []*model.Booking, durationMinutes, stepMinutes int) []calendar.LocalTime {
	start, end, ok := availability.Window()
	if !ok {
		return []calendar.LocalTime{}
	}

	candidates := calendar.GenerateSlots(start, end, durationMinutes, stepMinutes)
	free := make([]calendar.LocalTime, 0, len(candidates))
	for _, t := range candidates {
		slotEnd := t.Add(durationMinutes)
		busy := false
		for _, b := range bookings {
			if b.Status.IsActive() && b.Overlaps(t, slotEnd) {
				busy = true
				break
			}
		}
		if !busy {
			free = append(free, t)
		}
	}

	return free
}

// CalendarDay сводка по дню для календаря гида
type CalendarDay struct {
	Date           calendar.Date      `json:"date"`
	Availability   model.Availability `json:"availability"`
	ActiveBookings int                `json:"active_bookings"`

	// Bookings активные брони дня по времени начала
	Bookings []*model.Booking `json:"-"`
}

// Calendar возвращает доступность и число активных броней по каждому дню [from, to]
func (s *AvailabilityService) Calendar(ctx context.Context, guideID int64, from, to calendar.Date) ([]CalendarDay, error) {
	if err := validateRange(from, to, MaxCalendarDays); err != nil {
		return nil, err
	}

	bookings, err := s.store.Bookings().ListByGuide(ctx, guideID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	active := make(map[calendar.Date][]*model.Booking)
	for _, b := range bookings {
		if b.Status.IsActive() {
			active[b.BookingDate] = append(active[b.BookingDate], b)
		}
	}

	today := s.opts.today()
	days := make([]CalendarDay, 0, from.DaysUntil(to)+1)
	for d := from; !d.After(to); d = d.AddDays(1) {
		availability, err := resolveAvailability(ctx, s.store, today, guideID, d)
		if err != nil {
			return nil, err
		}
		days = append(days, CalendarDay{
			Date:           d,
			Availability:   availability,
			ActiveBookings: len(active[d]),
			Bookings:       active[d],
		})
	}

	return days, nil
}

// validateRange проверяет from <= to и, если maxDays > 0, длину диапазона
func validateRange(from, to calendar.Date, maxDays int) error {
	if from.IsZero() || to.IsZero() {
		return model.NewValidationError("from and to are required")
	}
	if from.After(to) {
		return model.NewValidationError("from %s is after to %s", from, to)
	}
	if maxDays > 0 && from.DaysUntil(to)+1 > maxDays {
		return model.NewValidationError("range longer than %d days", maxDays)
	}
	return nil
}
