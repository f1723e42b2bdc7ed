package api

import (
	"net/http"

	"github.com/Freeeeeet/guide_scheduler/internal/service"
)

type createReviewRequest struct {
	ReviewerID int64  `json:"reviewer_id" validate:"required,gt=0"`
	RevieweeID int64  `json:"reviewee_id" validate:"required,gt=0,nefield=ReviewerID"`
	Rating     int    `json:"rating" validate:"required,min=1,max=5"`
	Comment    string `json:"comment" validate:"max=2000"`
}

func (a *API) createReview(w http.ResponseWriter, r *http.Request) {
	bookingID, err := pathUUID(r, "id")
	if err != nil {
		a.Error(w, r, err)
		return
	}

	var req createReviewRequest
	if err := a.decode(r, &req); err != nil {
		a.Error(w, r, err)
		return
	}

	review, err := a.services.Reviews.CreateReview(r.Context(), service.ReviewInput{
		BookingID:  bookingID,
		ReviewerID: req.ReviewerID,
		RevieweeID: req.RevieweeID,
		Rating:     req.Rating,
		Comment:    req.Comment,
	})
	if err != nil {
		a.Error(w, r, err)
		return
	}
	a.Response(w, http.StatusCreated, review)
}

func (a *API) listReviews(w http.ResponseWriter, r *http.Request) {
	userID, err := pathInt64(r, "userId")
	if err != nil {
		a.Error(w, r, err)
		return
	}

	reviews, err := a.services.Reviews.ListReviewsForUser(r.Context(), userID)
	if err != nil {
		a.Error(w, r, err)
		return
	}
	a.Response(w, http.StatusOK, reviews)
}
