package service

import "github.com/Freeeeeet/guide_scheduler/internal/model"

// bookingTransitions допустимые переходы: текущий статус -> роль -> целевые статусы
var bookingTransitions = map[model.BookingStatus]map[model.Role][]model.BookingStatus{
	model.BookingStatusPending: {
		model.RoleTourist: {model.BookingStatusCancelled},
		model.RoleGuide:   {model.BookingStatusConfirmed, model.BookingStatusCancelled},
	},
	model.BookingStatusConfirmed: {
		model.RoleTourist: {model.BookingStatusCancelled},
		model.RoleGuide:   {model.BookingStatusCompleted, model.BookingStatusCancelled},
	},
}

// CanTransition сообщает, может ли роль перевести бронь из from в to
func CanTransition(from model.BookingStatus, role model.Role, to model.BookingStatus) bool {
	for _, allowed := range bookingTransitions[from][role] {
		if allowed == to {
			return true
		}
	}
	return false
}
