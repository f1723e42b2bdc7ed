package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Freeeeeet/guide_scheduler/internal/model"
	"github.com/Freeeeeet/guide_scheduler/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MaxCommentLength ограничение на длину отзыва
const MaxCommentLength = 2000

type ReviewService struct {
	store  repository.Store
	opts   Options
	logger *zap.Logger
}

func NewReviewService(store repository.Store, opts Options, logger *zap.Logger) *ReviewService {
	return &ReviewService{
		store:  store,
		opts:   opts.withDefaults(),
		logger: logger,
	}
}

// ReviewInput отзыв одного участника завершённой экскурсии о другом
type ReviewInput struct {
	BookingID  uuid.UUID
	ReviewerID int64
	RevieweeID int64
	Rating     int
	Comment    string
}

// CreateReview сохраняет отзыв; один отзыв на автора в рамках брони
func (s *ReviewService) CreateReview(ctx context.Context, in ReviewInput) (*model.Review, error) {
	if in.Rating < model.MinRating || in.Rating > model.MaxRating {
		return nil, model.NewValidationError("rating must be %d..%d, got %d", model.MinRating, model.MaxRating, in.Rating)
	}
	comment := strings.TrimSpace(in.Comment)
	if len(comment) > MaxCommentLength {
		return nil, model.NewValidationError("comment longer than %d bytes", MaxCommentLength)
	}

	booking, err := s.store.Bookings().GetByID(ctx, in.BookingID)
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}
	if booking == nil {
		return nil, model.NewNotFoundError("booking %s not found", in.BookingID)
	}
	if booking.Status != model.BookingStatusCompleted {
		return nil, model.NewValidationError("booking %s is %s, reviews are allowed after completion", booking.ID, booking.Status)
	}

	// Автор и адресат должны быть разными сторонами брони
	parties := (in.ReviewerID == booking.TouristID && in.RevieweeID == booking.GuideID) ||
		(in.ReviewerID == booking.GuideID && in.RevieweeID == booking.TouristID)
	if !parties {
		return nil, model.NewValidationError("reviewer and reviewee must be the guide and the tourist of booking %s", booking.ID)
	}

	review := &model.Review{
		ID:         uuid.New(),
		BookingID:  booking.ID,
		ReviewerID: in.ReviewerID,
		RevieweeID: in.RevieweeID,
		Rating:     in.Rating,
		Comment:    comment,
		CreatedAt:  s.opts.now(),
	}
	if err := s.store.Reviews().Create(ctx, review); err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}

	s.logger.Info("Review created",
		zap.String("review_id", review.ID.String()),
		zap.String("booking_id", booking.ID.String()),
		zap.Int64("reviewer_id", in.ReviewerID),
		zap.Int("rating", in.Rating),
	)

	return review, nil
}

// ListReviewsForUser отзывы об участнике, новые первыми
func (s *ReviewService) ListReviewsForUser(ctx context.Context, revieweeID int64) ([]*model.Review, error) {
	reviews, err := s.store.Reviews().ListByReviewee(ctx, revieweeID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return reviews, nil
}
