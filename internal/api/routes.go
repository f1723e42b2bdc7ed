package api

import "net/http"

func (a *API) RegisterRoutes() {
	a.router.HandleFunc("/health", a.health).Methods(http.MethodGet)

	// Доступность и слоты
	a.router.HandleFunc("/guides/{guideId}/availability", a.getAvailability).Methods(http.MethodGet)
	a.router.HandleFunc("/guides/{guideId}/slots", a.getSlots).Methods(http.MethodGet)
	a.router.HandleFunc("/guides/{guideId}/calendar", a.getCalendar).Methods(http.MethodGet)
	a.router.HandleFunc("/guides/{guideId}/week.png", a.getWeekImage).Methods(http.MethodGet)

	// Недельный шаблон и исключения
	a.router.HandleFunc("/guides/{guideId}/schedule", a.getWeeklySchedule).Methods(http.MethodGet)
	a.router.HandleFunc("/guides/{guideId}/schedule/{dayOfWeek:[0-9]+}", a.getWeeklyEntry).Methods(http.MethodGet)
	a.router.HandleFunc("/guides/{guideId}/schedule/{dayOfWeek:[0-9]+}", a.putWeeklyEntry).Methods(http.MethodPut)
	a.router.HandleFunc("/guides/{guideId}/exceptions", a.listExceptions).Methods(http.MethodGet)
	a.router.HandleFunc("/guides/{guideId}/exceptions/{date}", a.putException).Methods(http.MethodPut)
	a.router.HandleFunc("/exceptions/{id}", a.deleteException).Methods(http.MethodDelete)

	// Тарифы
	a.router.HandleFunc("/guides/{guideId}/fees", a.getFees).Methods(http.MethodGet)
	a.router.HandleFunc("/guides/{guideId}/fees", a.putFees).Methods(http.MethodPut)

	// Бронирования
	a.router.HandleFunc("/bookings", a.createBooking).Methods(http.MethodPost)
	a.router.HandleFunc("/bookings/{id}", a.getBooking).Methods(http.MethodGet)
	a.router.HandleFunc("/bookings/{id}/status", a.updateBookingStatus).Methods(http.MethodPatch)
	a.router.HandleFunc("/guides/{guideId}/bookings", a.listGuideBookings).Methods(http.MethodGet)
	a.router.HandleFunc("/tourists/{touristId}/bookings", a.listTouristBookings).Methods(http.MethodGet)

	// Отзывы
	a.router.HandleFunc("/bookings/{id}/reviews", a.createReview).Methods(http.MethodPost)
	a.router.HandleFunc("/users/{userId}/reviews", a.listReviews).Methods(http.MethodGet)
}
