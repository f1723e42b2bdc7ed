package repository

import (
	"context"
	"time"

	"github.com/Freeeeeet/guide_scheduler/internal/calendar"
	"github.com/Freeeeeet/guide_scheduler/internal/model"
	"github.com/google/uuid"
)

// Get-методы возвращают nil, nil, если запись не найдена.

type ScheduleRepository interface {
	GetWeeklyEntry(ctx context.Context, guideID int64, dayOfWeek int) (*model.WeeklyScheduleEntry, error)
	ListWeekly(ctx context.Context, guideID int64) ([]*model.WeeklyScheduleEntry, error)
	UpsertWeekly(ctx context.Context, entry *model.WeeklyScheduleEntry) error
}

type ExceptionRepository interface {
	GetByDate(ctx context.Context, guideID int64, date calendar.Date) (*model.ScheduleException, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.ScheduleException, error)
	// Upsert заменяет исключение на ту же дату; ID и CreatedAt заполняются из хранилища
	Upsert(ctx context.Context, exception *model.ScheduleException) error
	// Delete идемпотентен
	Delete(ctx context.Context, id uuid.UUID) error
	ListRange(ctx context.Context, guideID int64, from, to calendar.Date) ([]*model.ScheduleException, error)
	DeleteBefore(ctx context.Context, date calendar.Date) (int64, error)
}

type BookingRepository interface {
	// Create возвращает model.ErrConflict, если окно пересекается с активной бронью гида
	Create(ctx context.Context, booking *model.Booking) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Booking, error)
	ListActiveByGuideDate(ctx context.Context, guideID int64, date calendar.Date) ([]*model.Booking, error)
	ListByGuide(ctx context.Context, guideID int64, from, to calendar.Date) ([]*model.Booking, error)
	ListByTourist(ctx context.Context, touristID int64) ([]*model.Booking, error)
	// UpdateStatus меняет статус только если текущий равен from; false значит статус уже другой
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.BookingStatus, at time.Time) (bool, error)
}

type ReviewRepository interface {
	// Create возвращает model.ErrConflict для повторного отзыва того же автора
	Create(ctx context.Context, review *model.Review) error
	ListByReviewee(ctx context.Context, revieweeID int64) ([]*model.Review, error)
}

type GuideRepository interface {
	GetProfile(ctx context.Context, guideID int64) (*model.GuideProfile, error)
	UpsertProfile(ctx context.Context, profile *model.GuideProfile) error
}

// Store единственный источник истины для движка
type Store interface {
	Schedules() ScheduleRepository
	Exceptions() ExceptionRepository
	Bookings() BookingRepository
	Reviews() ReviewRepository
	Guides() GuideRepository

	// InGuideTx выполняет fn атомарно; записи по одному гиду сериализуются.
	// Ошибка fn откатывает все изменения.
	InGuideTx(ctx context.Context, guideID int64, fn func(tx Store) error) error
}
