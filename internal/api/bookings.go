package api

import (
	"net/http"

	"github.com/Freeeeeet/guide_scheduler/internal/model"
	"github.com/Freeeeeet/guide_scheduler/internal/service"
)

type createBookingRequest struct {
	GuideID   int64  `json:"guide_id" validate:"required,gt=0"`
	TouristID int64  `json:"tourist_id" validate:"required,gt=0,nefield=GuideID"`
	Date      string `json:"date" validate:"required"`
	StartTime string `json:"start_time" validate:"required"`
	EndTime   string `json:"end_time" validate:"required"`
	Notes     string `json:"notes" validate:"max=2000"`
}

func (a *API) createBooking(w http.ResponseWriter, r *http.Request) {
	var req createBookingRequest
	if err := a.decode(r, &req); err != nil {
		a.Error(w, r, err)
		return
	}

	date, err := parseDate("date", req.Date)
	if err != nil {
		a.Error(w, r, err)
		return
	}
	start, err := parseTime("start_time", req.StartTime)
	if err != nil {
		a.Error(w, r, err)
		return
	}
	end, err := parseTime("end_time", req.EndTime)
	if err != nil {
		a.Error(w, r, err)
		return
	}

	booking, err := a.services.Bookings.CreateBooking(r.Context(), service.CreateBookingInput{
		GuideID:   req.GuideID,
		TouristID: req.TouristID,
		Date:      date,
		StartTime: start,
		EndTime:   end,
		Notes:     req.Notes,
	})
	if err != nil {
		a.Error(w, r, err)
		return
	}
	a.Response(w, http.StatusCreated, booking)
}

func (a *API) getBooking(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		a.Error(w, r, err)
		return
	}

	booking, err := a.services.Bookings.Get(r.Context(), id)
	if err != nil {
		a.Error(w, r, err)
		return
	}
	a.Response(w, http.StatusOK, booking)
}

// updateStatusRequest роль приходит от провайдера идентификации перед API
type updateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending confirmed completed cancelled"`
	Role   string `json:"role" validate:"required,oneof=tourist guide"`
}

func (a *API) updateBookingStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		a.Error(w, r, err)
		return
	}

	var req updateStatusRequest
	if err := a.decode(r, &req); err != nil {
		a.Error(w, r, err)
		return
	}

	booking, err := a.services.Bookings.Transition(r.Context(), id, model.Role(req.Role), model.BookingStatus(req.Status))
	if err != nil {
		a.Error(w, r, err)
		return
	}
	a.Response(w, http.StatusOK, booking)
}

func (a *API) listGuideBookings(w http.ResponseWriter, r *http.Request) {
	guideID, err := pathInt64(r, "guideId")
	if err != nil {
		a.Error(w, r, err)
		return
	}
	from, err := queryDate(r, "from")
	if err != nil {
		a.Error(w, r, err)
		return
	}
	to, err := queryDate(r, "to")
	if err != nil {
		a.Error(w, r, err)
		return
	}

	bookings, err := a.services.Bookings.ListForGuide(r.Context(), guideID, from, to)
	if err != nil {
		a.Error(w, r, err)
		return
	}
	a.Response(w, http.StatusOK, bookings)
}

func (a *API) listTouristBookings(w http.ResponseWriter, r *http.Request) {
	touristID, err := pathInt64(r, "touristId")
	if err != nil {
		a.Error(w, r, err)
		return
	}

	bookings, err := a.services.Bookings.ListForTourist(r.Context(), touristID)
	if err != nil {
		a.Error(w, r, err)
		return
	}
	a.Response(w, http.StatusOK, bookings)
}
