package model

import (
	"time"

	"github.com/Freeeeeet/guide_scheduler/internal/calendar"
	"github.com/google/uuid"
)

// WeeklyScheduleEntry шаблон рабочего времени гида на день недели
type WeeklyScheduleEntry struct {
	GuideID     int64               `json:"guide_id"`
	DayOfWeek   int                 `json:"day_of_week"` // 0 = Sunday, 6 = Saturday
	IsAvailable bool                `json:"is_available"`
	StartTime   *calendar.LocalTime `json:"start_time,omitempty"`
	EndTime     *calendar.LocalTime `json:"end_time,omitempty"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// ScheduleException переопределяет шаблон на конкретную дату целиком
type ScheduleException struct {
	ID            uuid.UUID           `json:"id"`
	GuideID       int64               `json:"guide_id"`
	ExceptionDate calendar.Date       `json:"exception_date"`
	IsAvailable   bool                `json:"is_available"`
	StartTime     *calendar.LocalTime `json:"start_time,omitempty"`
	EndTime       *calendar.LocalTime `json:"end_time,omitempty"`
	Reason        string              `json:"reason,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
}

// AvailabilitySource откуда взято окно доступности
type AvailabilitySource string

const (
	SourceException AvailabilitySource = "exception"
	SourceWeekly    AvailabilitySource = "weekly"
	SourceDefault   AvailabilitySource = "default"
	SourcePast      AvailabilitySource = "past"
)

// Availability рабочее окно гида на дату
type Availability struct {
	IsAvailable bool                `json:"is_available"`
	StartTime   *calendar.LocalTime `json:"start_time,omitempty"`
	EndTime     *calendar.LocalTime `json:"end_time,omitempty"`
	Reason      string              `json:"reason,omitempty"`
	Source      AvailabilitySource  `json:"source"`
}

// Window возвращает окно, если гид доступен
func (a Availability) Window() (start, end calendar.LocalTime, ok bool) {
	if !a.IsAvailable || a.StartTime == nil || a.EndTime == nil {
		return 0, 0, false
	}
	return *a.StartTime, *a.EndTime, true
}

// ValidateHours проверяет инвариант: доступный день требует оба времени и start < end
func ValidateHours(isAvailable bool, start, end *calendar.LocalTime) error {
	if !isAvailable {
		return nil
	}
	if start == nil || end == nil {
		return NewValidationError("start_time and end_time are required when available")
	}
	if !start.Valid() || !end.Valid() {
		return NewValidationError("time of day out of range")
	}
	if *start >= *end {
		return NewValidationError("start_time must be before end_time")
	}
	return nil
}
