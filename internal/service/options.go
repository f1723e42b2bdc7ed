package service

import (
	"context"
	"time"

	"github.com/Freeeeeet/guide_scheduler/internal/calendar"
	"github.com/Freeeeeet/guide_scheduler/internal/model"
)

// Options общие параметры движка
type Options struct {
	Location         *time.Location
	Now              func() time.Time
	SlotStepMinutes  int
	FeeBaseHours     float64
	DefaultBaseFee   model.Money
	DefaultHourlyFee model.Money
}

// DefaultOptions шаг 60 минут, 2 базовых часа, ¥6,000 + ¥3,000/час
func DefaultOptions() Options {
	return Options{
		Location:         time.UTC,
		Now:              time.Now,
		SlotStepMinutes:  60,
		FeeBaseHours:     2,
		DefaultBaseFee:   6000,
		DefaultHourlyFee: 3000,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Location == nil {
		o.Location = d.Location
	}
	if o.Now == nil {
		o.Now = d.Now
	}
	if o.SlotStepMinutes <= 0 {
		o.SlotStepMinutes = d.SlotStepMinutes
	}
	return o
}

func (o Options) now() time.Time {
	return o.Now().In(o.Location)
}

// today текущая дата в зоне движка
func (o Options) today() calendar.Date {
	return calendar.Today(o.Now(), o.Location)
}

// SlotCache необязательный кэш результатов AvailableSlots.
// Записи гида живут в поколении gen; Invalidate начинает новое поколение,
// поэтому Set со старым gen уже никто не прочитает.
type SlotCache interface {
	Generation(ctx context.Context, guideID int64) (int64, error)
	Get(ctx context.Context, guideID, gen int64, date calendar.Date, durationMinutes, stepMinutes int) ([]calendar.LocalTime, bool, error)
	Set(ctx context.Context, guideID, gen int64, date calendar.Date, durationMinutes, stepMinutes int, slots []calendar.LocalTime) error
	Invalidate(ctx context.Context, guideID int64) error
}

// Notifier получает события о бронированиях; не часть движка
type Notifier interface {
	BookingCreated(ctx context.Context, booking *model.Booking) error
	BookingStatusChanged(ctx context.Context, booking *model.Booking, from model.BookingStatus, actor model.Role) error
}
