package service

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/guide_scheduler/internal/model"
	"github.com/Freeeeeet/guide_scheduler/internal/repository"
	"go.uber.org/zap"
)

type GuideService struct {
	store  repository.Store
	opts   Options
	logger *zap.Logger
}

func NewGuideService(store repository.Store, opts Options, logger *zap.Logger) *GuideService {
	return &GuideService{
		store:  store,
		opts:   opts.withDefaults(),
		logger: logger,
	}
}

// GetFees возвращает тарифы гида; без профиля действуют тарифы по умолчанию
func (s *GuideService) GetFees(ctx context.Context, guideID int64) (*model.GuideProfile, error) {
	profile, err := s.store.Guides().GetProfile(ctx, guideID)
	if err != nil {
		return nil, fmt.Errorf("get guide profile: %w", err)
	}
	if profile == nil {
		return &model.GuideProfile{
			GuideID:   guideID,
			BaseFee:   s.opts.DefaultBaseFee,
			HourlyFee: s.opts.DefaultHourlyFee,
		}, nil
	}
	return profile, nil
}

// SetFees сохраняет тарифы гида. Уже созданные брони не пересчитываются.
func (s *GuideService) SetFees(ctx context.Context, guideID int64, baseFee, hourlyFee model.Money) (*model.GuideProfile, error) {
	if guideID <= 0 {
		return nil, model.NewValidationError("guide_id must be positive")
	}
	if baseFee < 0 || hourlyFee < 0 {
		return nil, model.NewValidationError("fees must be non-negative")
	}

	profile := &model.GuideProfile{
		GuideID:   guideID,
		BaseFee:   baseFee,
		HourlyFee: hourlyFee,
		UpdatedAt: s.opts.now(),
	}
	err := s.store.InGuideTx(ctx, guideID, func(tx repository.Store) error {
		if err := tx.Guides().UpsertProfile(ctx, profile); err != nil {
			return fmt.Errorf("upsert guide profile: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Guide fees updated",
		zap.Int64("guide_id", guideID),
		zap.Int64("base_fee", int64(baseFee)),
		zap.Int64("hourly_fee", int64(hourlyFee)),
	)

	return profile, nil
}

// feesFor читает тарифы в рамках транзакции брони
func feesFor(ctx context.Context, store repository.Store, guideID int64, opts Options) (baseFee, hourlyFee model.Money, err error) {
	profile, err := store.Guides().GetProfile(ctx, guideID)
	if err != nil {
		return 0, 0, fmt.Errorf("get guide profile: %w", err)
	}
	if profile == nil {
		return opts.DefaultBaseFee, opts.DefaultHourlyFee, nil
	}
	return profile.BaseFee, profile.HourlyFee, nil
}
