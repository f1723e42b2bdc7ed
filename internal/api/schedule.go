package api

import (
	"net/http"
	"strconv"

	"github.com/Freeeeeet/guide_scheduler/internal/model"
	"github.com/Freeeeeet/guide_scheduler/internal/service"
	"github.com/gorilla/mux"
)

func (a *API) getWeeklySchedule(w http.ResponseWriter, r *http.Request) {
	guideID, err := pathInt64(r, "guideId")
	if err != nil {
		a.Error(w, r, err)
		return
	}

	week, err := a.services.Schedules.GetWeeklySchedule(r.Context(), guideID)
	if err != nil {
		a.Error(w, r, err)
		return
	}
	a.Response(w, http.StatusOK, week)
}

func pathDayOfWeek(r *http.Request) (int, error) {
	day, err := strconv.Atoi(mux.Vars(r)["dayOfWeek"])
	if err != nil || day < 0 || day > 6 {
		return 0, model.NewValidationError("dayOfWeek must be 0..6")
	}
	return day, nil
}

func (a *API) getWeeklyEntry(w http.ResponseWriter, r *http.Request) {
	guideID, err := pathInt64(r, "guideId")
	if err != nil {
		a.Error(w, r, err)
		return
	}
	day, err := pathDayOfWeek(r)
	if err != nil {
		a.Error(w, r, err)
		return
	}

	week, err := a.services.Schedules.GetWeeklySchedule(r.Context(), guideID)
	if err != nil {
		a.Error(w, r, err)
		return
	}
	a.Response(w, http.StatusOK, week[day])
}

// hoursRequest общая часть шаблона и исключения
type hoursRequest struct {
	IsAvailable bool    `json:"is_available"`
	StartTime   *string `json:"start_time" validate:"required_if=IsAvailable true"`
	EndTime     *string `json:"end_time" validate:"required_if=IsAvailable true"`
}

func (a *API) putWeeklyEntry(w http.ResponseWriter, r *http.Request) {
	guideID, err := pathInt64(r, "guideId")
	if err != nil {
		a.Error(w, r, err)
		return
	}
	day, err := pathDayOfWeek(r)
	if err != nil {
		a.Error(w, r, err)
		return
	}

	var req hoursRequest
	if err := a.decode(r, &req); err != nil {
		a.Error(w, r, err)
		return
	}
	start, err := parseOptionalTime("start_time", req.StartTime)
	if err != nil {
		a.Error(w, r, err)
		return
	}
	end, err := parseOptionalTime("end_time", req.EndTime)
	if err != nil {
		a.Error(w, r, err)
		return
	}

	entry := &model.WeeklyScheduleEntry{
		GuideID:     guideID,
		DayOfWeek:   day,
		IsAvailable: req.IsAvailable,
		StartTime:   start,
		EndTime:     end,
	}
	if err := a.services.Schedules.SetWeeklyEntry(r.Context(), entry); err != nil {
		a.Error(w, r, err)
		return
	}
	a.Response(w, http.StatusOK, entry)
}

func (a *API) listExceptions(w http.ResponseWriter, r *http.Request) {
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

	exceptions, err := a.services.Schedules.ListExceptions(r.Context(), guideID, from, to)
	if err != nil {
		a.Error(w, r, err)
		return
	}
	a.Response(w, http.StatusOK, exceptions)
}

type exceptionRequest struct {
	hoursRequest
	Reason string `json:"reason" validate:"max=500"`
}

func (a *API) putException(w http.ResponseWriter, r *http.Request) {
	guideID, err := pathInt64(r, "guideId")
	if err != nil {
		a.Error(w, r, err)
		return
	}
	date, err := parseDate("date", mux.Vars(r)["date"])
	if err != nil {
		a.Error(w, r, err)
		return
	}

	var req exceptionRequest
	if err := a.decode(r, &req); err != nil {
		a.Error(w, r, err)
		return
	}
	start, err := parseOptionalTime("start_time", req.StartTime)
	if err != nil {
		a.Error(w, r, err)
		return
	}
	end, err := parseOptionalTime("end_time", req.EndTime)
	if err != nil {
		a.Error(w, r, err)
		return
	}

	exception, err := a.services.Schedules.AddException(r.Context(), service.ExceptionInput{
		GuideID:     guideID,
		Date:        date,
		IsAvailable: req.IsAvailable,
		StartTime:   start,
		EndTime:     end,
		Reason:      req.Reason,
	})
	if err != nil {
		a.Error(w, r, err)
		return
	}
	a.Response(w, http.StatusOK, exception)
}

func (a *API) deleteException(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		a.Error(w, r, err)
		return
	}

	if err := a.services.Schedules.RemoveException(r.Context(), id); err != nil {
		a.Error(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
