package service

import (
	"github.com/Freeeeeet/guide_scheduler/internal/repository"
	"go.uber.org/zap"
)

// Services набор сервисов поверх одного хранилища
type Services struct {
	Availability *AvailabilityService
	Bookings     *BookingService
	Schedules    *ScheduleService
	Guides       *GuideService
	Reviews      *ReviewService
}

func New(store repository.Store, cache SlotCache, notifier Notifier, opts Options, logger *zap.Logger) *Services {
	return &Services{
		Availability: NewAvailabilityService(store, cache, opts, logger),
		Bookings:     NewBookingService(store, cache, notifier, opts, logger),
		Schedules:    NewScheduleService(store, cache, opts, logger),
		Guides:       NewGuideService(store, opts, logger),
		Reviews:      NewReviewService(store, opts, logger),
	}
}
