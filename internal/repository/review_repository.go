package repository

import (
	"context"
	"time"

	"github.com/Freeeeeet/guide_scheduler/internal/model"
	"github.com/Freeeeeet/guide_scheduler/internal/repository/base"
	"github.com/google/uuid"
)

type PgReviewRepository struct {
	*base.Repository
}

func NewReviewRepository(q base.Querier) *PgReviewRepository {
	return &PgReviewRepository{Repository: base.NewRepository(q)}
}

// Create создаёт отзыв; повтор от того же автора упирается в UNIQUE (booking_id, reviewer_id)
func (r *PgReviewRepository) Create(ctx context.Context, review *model.Review) error {
	query := `
		INSERT INTO reviews (id, booking_id, reviewer_id, reviewee_id, rating, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	if review.ID == uuid.Nil {
		review.ID = uuid.New()
	}
	if review.CreatedAt.IsZero() {
		review.CreatedAt = time.Now()
	}

	_, err := r.ExecAffected(
		ctx, query,
		review.ID,
		review.BookingID,
		review.ReviewerID,
		review.RevieweeID,
		review.Rating,
		review.Comment,
		review.CreatedAt,
	)

	return base.Wrap("create review", err)
}

// ListByReviewee получает отзывы о пользователе, новые первыми
func (r *PgReviewRepository) ListByReviewee(ctx context.Context, revieweeID int64) ([]*model.Review, error) {
	query := `
		SELECT id, booking_id, reviewer_id, reviewee_id, rating, comment, created_at
		FROM reviews
		WHERE reviewee_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.Query(ctx, query, revieweeID)
	if err != nil {
		return nil, base.Wrap("list reviews", err)
	}
	defer rows.Close()

	reviews := make([]*model.Review, 0)
	for rows.Next() {
		var review model.Review
		err := rows.Scan(
			&review.ID,
			&review.BookingID,
			&review.ReviewerID,
			&review.RevieweeID,
			&review.Rating,
			&review.Comment,
			&review.CreatedAt,
		)
		if err != nil {
			return nil, base.Wrap("scan review", err)
		}
		reviews = append(reviews, &review)
	}

	if err := rows.Err(); err != nil {
		return nil, base.Wrap("list reviews", err)
	}

	return reviews, nil
}
