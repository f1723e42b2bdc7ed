package model

import (
	"time"

	"github.com/Freeeeeet/guide_scheduler/internal/calendar"
	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"   // Ожидает подтверждения гида
	BookingStatusConfirmed BookingStatus = "confirmed" // Подтверждено гидом
	BookingStatusCompleted BookingStatus = "completed" // Экскурсия состоялась
	BookingStatusCancelled BookingStatus = "cancelled" // Отменено гидом или туристом
)

// IsActive сообщает, участвует ли бронирование в проверке пересечений
func (s BookingStatus) IsActive() bool {
	return s == BookingStatusPending || s == BookingStatusConfirmed
}

// IsTerminal сообщает, что дальнейшие переходы запрещены
func (s BookingStatus) IsTerminal() bool {
	return s == BookingStatusCompleted || s == BookingStatusCancelled
}

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCompleted, BookingStatusCancelled:
		return true
	}
	return false
}

// ActiveBookingStatuses статусы, занимающие время гида
var ActiveBookingStatuses = []BookingStatus{BookingStatusPending, BookingStatusConfirmed}

// Role роль участника, заявленная провайдером идентификации
type Role string

const (
	RoleTourist Role = "tourist"
	RoleGuide   Role = "guide"
)

func (r Role) Valid() bool {
	return r == RoleTourist || r == RoleGuide
}

// Money сумма в минимальных единицах валюты (целые иены)
type Money int64

type Booking struct {
	ID            uuid.UUID          `json:"id"`
	GuideID       int64              `json:"guide_id"`
	TouristID     int64              `json:"tourist_id"`
	BookingDate   calendar.Date      `json:"booking_date"`
	StartTime     calendar.LocalTime `json:"start_time"`
	EndTime       calendar.LocalTime `json:"end_time"`
	Status        BookingStatus      `json:"status"`
	Fee           Money              `json:"fee"`
	DurationHours float64            `json:"duration_hours"`
	Notes         string             `json:"notes,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

// Overlaps проверяет пересечение с окном [start, end) того же дня
func (b *Booking) Overlaps(start, end calendar.LocalTime) bool {
	return calendar.RangesOverlap(b.StartTime, b.EndTime, start, end)
}
