package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Freeeeeet/guide_scheduler/internal/repository/base"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// PgStore реализация Store поверх PostgreSQL
type PgStore struct {
	pool   *pgxpool.Pool
	q      base.Querier
	inTx   bool
	logger *zap.Logger
}

// NewPgStore создаёт хранилище на пуле соединений
func NewPgStore(pool *pgxpool.Pool, logger *zap.Logger) *PgStore {
	return &PgStore{
		pool:   pool,
		q:      pool,
		logger: logger,
	}
}

func (s *PgStore) Schedules() ScheduleRepository   { return NewScheduleRepository(s.q) }
func (s *PgStore) Exceptions() ExceptionRepository { return NewExceptionRepository(s.q) }
func (s *PgStore) Bookings() BookingRepository     { return NewBookingRepository(s.q) }
func (s *PgStore) Reviews() ReviewRepository       { return NewReviewRepository(s.q) }
func (s *PgStore) Guides() GuideRepository         { return NewGuideRepository(s.q) }

// InGuideTx открывает транзакцию и берёт advisory-блокировку гида до её конца.
// Вложенный вызов переиспользует текущую транзакцию.
func (s *PgStore) InGuideTx(ctx context.Context, guideID int64, fn func(tx Store) error) error {
	if s.inTx {
		if err := s.lockGuide(ctx, s.q, guideID); err != nil {
			return err
		}
		return fn(s)
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return base.Wrap("begin transaction", err)
	}
	defer func() {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			s.logger.Warn("Failed to rollback transaction",
				zap.Int64("guide_id", guideID),
				zap.Error(rbErr))
		}
	}()

	if err := s.lockGuide(ctx, tx, guideID); err != nil {
		return err
	}

	if err := fn(&PgStore{pool: s.pool, q: tx, inTx: true, logger: s.logger}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return base.Wrap("commit transaction", err)
	}

	return nil
}

func (s *PgStore) lockGuide(ctx context.Context, q base.Querier, guideID int64) error {
	_, err := q.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, fmt.Sprintf("guide:%d", guideID))
	return base.Wrap("lock guide", err)
}

var _ Store = (*PgStore)(nil)
