package api

import (
	"net/http"

	"github.com/Freeeeeet/guide_scheduler/internal/model"
)

func (a *API) getFees(w http.ResponseWriter, r *http.Request) {
	guideID, err := pathInt64(r, "guideId")
	if err != nil {
		a.Error(w, r, err)
		return
	}

	profile, err := a.services.Guides.GetFees(r.Context(), guideID)
	if err != nil {
		a.Error(w, r, err)
		return
	}
	a.Response(w, http.StatusOK, profile)
}

type feesRequest struct {
	BaseFee   *int64 `json:"base_fee" validate:"required,gte=0"`
	HourlyFee *int64 `json:"hourly_fee" validate:"required,gte=0"`
}

func (a *API) putFees(w http.ResponseWriter, r *http.Request) {
	guideID, err := pathInt64(r, "guideId")
	if err != nil {
		a.Error(w, r, err)
		return
	}

	var req feesRequest
	if err := a.decode(r, &req); err != nil {
		a.Error(w, r, err)
		return
	}

	profile, err := a.services.Guides.SetFees(r.Context(), guideID, model.Money(*req.BaseFee), model.Money(*req.HourlyFee))
	if err != nil {
		a.Error(w, r, err)
		return
	}
	a.Response(w, http.StatusOK, profile)
}
