package repository

import (
	"context"
	"time"

	"github.com/Freeeeeet/guide_scheduler/internal/model"
	"github.com/Freeeeeet/guide_scheduler/internal/repository/base"
)

type PgGuideRepository struct {
	*base.Repository
}

func NewGuideRepository(q base.Querier) *PgGuideRepository {
	return &PgGuideRepository{Repository: base.NewRepository(q)}
}

// GetProfile получает тарифы гида
func (r *PgGuideRepository) GetProfile(ctx context.Context, guideID int64) (*model.GuideProfile, error) {
	query := `
		SELECT guide_id, base_fee, hourly_fee, updated_at
		FROM guide_profiles
		WHERE guide_id = $1
	`

	var (
		profile            model.GuideProfile
		baseFee, hourlyFee int64
	)
	err := r.QueryRow(ctx, query, guideID).Scan(&profile.GuideID, &baseFee, &hourlyFee, &profile.UpdatedAt)
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, base.Wrap("get guide profile", err)
	}

	profile.BaseFee = model.Money(baseFee)
	profile.HourlyFee = model.Money(hourlyFee)

	return &profile, nil
}

// UpsertProfile создаёт или обновляет тарифы гида
func (r *PgGuideRepository) UpsertProfile(ctx context.Context, profile *model.GuideProfile) error {
	query := `
		INSERT INTO guide_profiles (guide_id, base_fee, hourly_fee, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (guide_id) DO UPDATE
		SET base_fee = EXCLUDED.base_fee,
		    hourly_fee = EXCLUDED.hourly_fee,
		    updated_at = EXCLUDED.updated_at
	`

	if profile.UpdatedAt.IsZero() {
		profile.UpdatedAt = time.Now()
	}

	_, err := r.ExecAffected(ctx, query, profile.GuideID, int64(profile.BaseFee), int64(profile.HourlyFee), profile.UpdatedAt)
	return base.Wrap("upsert guide profile", err)
}
