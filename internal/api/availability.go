package api

import (
	"net/http"

	"github.com/Freeeeeet/guide_scheduler/internal/calendar"
	"github.com/Freeeeeet/guide_scheduler/internal/render"
	"go.uber.org/zap"
)

func (a *API) getAvailability(w http.ResponseWriter, r *http.Request) {
	guideID, err := pathInt64(r, "guideId")
	if err != nil {
		a.Error(w, r, err)
		return
	}
	date, err := queryDate(r, "date")
	if err != nil {
		a.Error(w, r, err)
		return
	}

	availability, err := a.services.Availability.Resolve(r.Context(), guideID, date)
	if err != nil {
		a.Error(w, r, err)
		return
	}
	a.Response(w, http.StatusOK, availability)
}

type getSlotsResponse struct {
	Date     calendar.Date        `json:"date"`
	Duration int                  `json:"duration"`
	Slots    []calendar.LocalTime `json:"slots"`
}

func (a *API) getSlots(w http.ResponseWriter, r *http.Request) {
	guideID, err := pathInt64(r, "guideId")
	if err != nil {
		a.Error(w, r, err)
		return
	}
	date, err := queryDate(r, "date")
	if err != nil {
		a.Error(w, r, err)
		return
	}
	duration, err := queryInt(r, "duration", 60)
	if err != nil {
		a.Error(w, r, err)
		return
	}
	step, err := queryInt(r, "step", 0)
	if err != nil {
		a.Error(w, r, err)
		return
	}

	slots, err := a.services.Availability.AvailableSlots(r.Context(), guideID, date, duration, step)
	if err != nil {
		a.Error(w, r, err)
		return
	}
	a.Response(w, http.StatusOK, getSlotsResponse{Date: date, Duration: duration, Slots: slots})
}

func (a *API) getCalendar(w http.ResponseWriter, r *http.Request) {
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

	days, err := a.services.Availability.Calendar(r.Context(), guideID, from, to)
	if err != nil {
		a.Error(w, r, err)
		return
	}
	a.Response(w, http.StatusOK, days)
}

// getWeekImage отдаёт PNG на семь дней начиная с from (по умолчанию сегодня)
func (a *API) getWeekImage(w http.ResponseWriter, r *http.Request) {
	guideID, err := pathInt64(r, "guideId")
	if err != nil {
		a.Error(w, r, err)
		return
	}

	today := a.services.Availability.Today()
	from := today
	if r.URL.Query().Get("from") != "" {
		if from, err = queryDate(r, "from"); err != nil {
			a.Error(w, r, err)
			return
		}
	}

	days, err := a.services.Availability.Calendar(r.Context(), guideID, from, from.AddDays(6))
	if err != nil {
		a.Error(w, r, err)
		return
	}

	img, err := render.WeekImage(days, today)
	if err != nil {
		a.Error(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(img); err != nil {
		a.logger.Warn("Failed to write week image", zap.Error(err))
	}
}
