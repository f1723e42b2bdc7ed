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

// MaxNotesLength ограничение на длину примечания к брони
const MaxNotesLength = 2000

type BookingService struct {
	store    repository.Store
	cache    SlotCache
	notifier Notifier
	opts     Options
	logger   *zap.Logger
}

func NewBookingService(store repository.Store, cache SlotCache, notifier Notifier, opts Options, logger *zap.Logger) *BookingService {
	return &BookingService{
		store:    store,
		cache:    cache,
		notifier: notifier,
		opts:     opts.withDefaults(),
		logger:   logger,
	}
}

// CreateBookingInput запрос туриста на бронирование
type CreateBookingInput struct {
	GuideID   int64
	TouristID int64
	Date      calendar.Date
	StartTime calendar.LocalTime
	EndTime   calendar.LocalTime
	Notes     string
}

func (in CreateBookingInput) validate(today calendar.Date) error {
	switch {
	case in.GuideID <= 0 || in.TouristID <= 0:
		return model.NewValidationError("guide_id and tourist_id must be positive")
	case in.GuideID == in.TouristID:
		return model.NewValidationError("guide cannot book themselves")
	case in.Date.IsZero():
		return model.NewValidationError("date is required")
	case in.Date.Before(today):
		return model.NewValidationError("date %s is in the past", in.Date)
	case !in.StartTime.Valid() || !in.EndTime.Valid():
		return model.NewValidationError("time of day out of range")
	case in.StartTime >= in.EndTime:
		return model.NewValidationError("start_time must be before end_time")
	case len(in.Notes) > MaxNotesLength:
		return model.NewValidationError("notes longer than %d bytes", MaxNotesLength)
	}
	return nil
}

// CreateBooking создаёт бронь в статусе pending.
// Проверка окна, пересечений и вставка выполняются в одной транзакции гида.
func (s *BookingService) CreateBooking(ctx context.Context, in CreateBookingInput) (*model.Booking, error) {
	today := s.opts.today()
	if err := in.validate(today); err != nil {
		return nil, err
	}

	var booking *model.Booking
	err := s.store.InGuideTx(ctx, in.GuideID, func(tx repository.Store) error {
		// Рабочее окно гида на дату
		availability, err := resolveAvailability(ctx, tx, today, in.GuideID, in.Date)
		if err != nil {
			return err
		}
		windowStart, windowEnd, ok := availability.Window()
		if !ok {
			return model.NewValidationError("guide is not available on %s", in.Date)
		}
		if !calendar.Contains(windowStart, windowEnd, in.StartTime, in.EndTime) {
			return model.NewValidationError("%s-%s is outside working hours %s-%s",
				in.StartTime, in.EndTime, windowStart, windowEnd)
		}

		// Пересечения с активными бронями
		existing, err := tx.Bookings().ListActiveByGuideDate(ctx, in.GuideID, in.Date)
		if err != nil {
			return fmt.Errorf("list bookings: %w", err)
		}
		for _, b := range existing {
			if b.Overlaps(in.StartTime, in.EndTime) {
				return model.NewConflictError("%s-%s overlaps booking %s", in.StartTime, in.EndTime, b.ID)
			}
		}

		// Стоимость по тарифам гида
		baseFee, hourlyFee, err := feesFor(ctx, tx, in.GuideID, s.opts)
		if err != nil {
			return err
		}
		durationHours := calendar.DurationHours(in.StartTime, in.EndTime)

		booking = &model.Booking{
			ID:            uuid.New(),
			GuideID:       in.GuideID,
			TouristID:     in.TouristID,
			BookingDate:   in.Date,
			StartTime:     in.StartTime,
			EndTime:       in.EndTime,
			Status:        model.BookingStatusPending,
			Fee:           ComputeFee(baseFee, hourlyFee, durationHours, s.opts.FeeBaseHours),
			DurationHours: durationHours,
			Notes:         strings.TrimSpace(in.Notes),
			CreatedAt:     s.opts.now(),
		}
		if err := tx.Bookings().Create(ctx, booking); err != nil {
			return fmt.Errorf("create booking: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, in.GuideID)

	s.logger.Info("Booking created",
		zap.String("booking_id", booking.ID.String()),
		zap.Int64("guide_id", booking.GuideID),
		zap.Int64("tourist_id", booking.TouristID),
		zap.String("date", booking.BookingDate.String()),
		zap.String("start", booking.StartTime.String()),
		zap.String("end", booking.EndTime.String()),
		zap.Int64("fee", int64(booking.Fee)),
	)

	if s.notifier != nil {
		if err := s.notifier.BookingCreated(ctx, booking); err != nil {
			s.logger.Warn("Failed to notify about booking", zap.String("booking_id", booking.ID.String()), zap.Error(err))
		}
	}

	return booking, nil
}

// Transition меняет статус брони от имени роли actor
func (s *BookingService) Transition(ctx context.Context, bookingID uuid.UUID, actor model.Role, target model.BookingStatus) (*model.Booking, error) {
	if !actor.Valid() {
		return nil, model.NewValidationError("unknown role %q", actor)
	}
	if !target.Valid() {
		return nil, model.NewValidationError("unknown status %q", target)
	}

	booking, err := s.Get(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	from := booking.Status
	if !CanTransition(from, actor, target) {
		return nil, model.NewInvalidTransitionError("%s cannot move booking from %s to %s", actor, from, target)
	}

	now := s.opts.now()
	updated, err := s.store.Bookings().UpdateStatus(ctx, bookingID, from, target, now)
	if err != nil {
		return nil, fmt.Errorf("update booking status: %w", err)
	}
	if !updated {
		return nil, model.NewInvalidTransitionError("booking %s is no longer %s", bookingID, from)
	}

	booking.Status = target
	booking.UpdatedAt = now

	// Отмена освобождает время гида
	s.invalidate(ctx, booking.GuideID)

	s.logger.Info("Booking status changed",
		zap.String("booking_id", bookingID.String()),
		zap.String("from", string(from)),
		zap.String("to", string(target)),
		zap.String("actor", string(actor)),
	)

	if s.notifier != nil {
		if err := s.notifier.BookingStatusChanged(ctx, booking, from, actor); err != nil {
			s.logger.Warn("Failed to notify about status change", zap.String("booking_id", bookingID.String()), zap.Error(err))
		}
	}

	return booking, nil
}

// Get возвращает бронь или NotFound
func (s *BookingService) Get(ctx context.Context, bookingID uuid.UUID) (*model.Booking, error) {
	booking, err := s.store.Bookings().GetByID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}
	if booking == nil {
		return nil, model.NewNotFoundError("booking %s not found", bookingID)
	}
	return booking, nil
}

// ListForGuide брони гида за [from, to] в порядке даты и времени
func (s *BookingService) ListForGuide(ctx context.Context, guideID int64, from, to calendar.Date) ([]*model.Booking, error) {
	if err := validateRange(from, to, 0); err != nil {
		return nil, err
	}
	bookings, err := s.store.Bookings().ListByGuide(ctx, guideID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list guide bookings: %w", err)
	}
	return bookings, nil
}

// ListForTourist все брони туриста
func (s *BookingService) ListForTourist(ctx context.Context, touristID int64) ([]*model.Booking, error) {
	bookings, err := s.store.Bookings().ListByTourist(ctx, touristID)
	if err != nil {
		return nil, fmt.Errorf("list tourist bookings: %w", err)
	}
	return bookings, nil
}

func (s *BookingService) invalidate(ctx context.Context, guideID int64) {
	invalidateSlots(ctx, s.cache, s.logger, guideID)
}

// invalidateSlots сбрасывает кэш слотов гида; ошибка кэша не отменяет запись
func invalidateSlots(ctx context.Context, cache SlotCache, logger *zap.Logger, guideID int64) {
	if cache == nil {
		return
	}
	if err := cache.Invalidate(ctx, guideID); err != nil {
		logger.Warn("Failed to invalidate slot cache", zap.Int64("guide_id", guideID), zap.Error(err))
	}
}
