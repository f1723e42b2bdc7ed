package repository

import (
	"context"
	"time"

	"github.com/Freeeeeet/guide_scheduler/internal/calendar"
	"github.com/Freeeeeet/guide_scheduler/internal/model"
	"github.com/Freeeeeet/guide_scheduler/internal/repository/base"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const exceptionColumns = `id, guide_id, exception_date, is_available, start_minute, end_minute, reason, created_at`

// PgExceptionRepository управляет исключениями из недельного шаблона
type PgExceptionRepository struct {
	*base.Repository
}

func NewExceptionRepository(q base.Querier) *PgExceptionRepository {
	return &PgExceptionRepository{Repository: base.NewRepository(q)}
}

// GetByDate получает исключение гида на дату
func (r *PgExceptionRepository) GetByDate(ctx context.Context, guideID int64, date calendar.Date) (*model.ScheduleException, error) {
	query := `SELECT ` + exceptionColumns + ` FROM schedule_exceptions WHERE guide_id = $1 AND exception_date = $2`

	exception, err := scanException(r.QueryRow(ctx, query, guideID, date.Time(time.UTC)))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, base.Wrap("get exception by date", err)
	}

	return exception, nil
}

// GetByID получает исключение по ID
func (r *PgExceptionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.ScheduleException, error) {
	query := `SELECT ` + exceptionColumns + ` FROM schedule_exceptions WHERE id = $1`

	exception, err := scanException(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, base.Wrap("get exception by id", err)
	}

	return exception, nil
}

// Upsert создаёт исключение или заменяет существующее на ту же дату
func (r *PgExceptionRepository) Upsert(ctx context.Context, exception *model.ScheduleException) error {
	query := `
		INSERT INTO schedule_exceptions (id, guide_id, exception_date, is_available, start_minute, end_minute, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (guide_id, exception_date) DO UPDATE
		SET is_available = EXCLUDED.is_available,
		    start_minute = EXCLUDED.start_minute,
		    end_minute = EXCLUDED.end_minute,
		    reason = EXCLUDED.reason
		RETURNING id, created_at
	`

	if exception.ID == uuid.Nil {
		exception.ID = uuid.New()
	}
	if exception.CreatedAt.IsZero() {
		exception.CreatedAt = time.Now()
	}

	err := r.QueryRow(
		ctx, query,
		exception.ID,
		exception.GuideID,
		exception.ExceptionDate.Time(time.UTC),
		exception.IsAvailable,
		minutesOrNil(exception.StartTime),
		minutesOrNil(exception.EndTime),
		exception.Reason,
		exception.CreatedAt,
	).Scan(&exception.ID, &exception.CreatedAt)

	return base.Wrap("upsert exception", err)
}

// Delete удаляет исключение; отсутствие записи не ошибка
func (r *PgExceptionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.ExecAffected(ctx, `DELETE FROM schedule_exceptions WHERE id = $1`, id)
	return base.Wrap("delete exception", err)
}

// ListRange получает исключения гида в диапазоне дат включительно
func (r *PgExceptionRepository) ListRange(ctx context.Context, guideID int64, from, to calendar.Date) ([]*model.ScheduleException, error) {
	query := `
		SELECT ` + exceptionColumns + `
		FROM schedule_exceptions
		WHERE guide_id = $1 AND exception_date BETWEEN $2 AND $3
		ORDER BY exception_date
	`

	rows, err := r.Query(ctx, query, guideID, from.Time(time.UTC), to.Time(time.UTC))
	if err != nil {
		return nil, base.Wrap("list exceptions", err)
	}
	defer rows.Close()

	exceptions := make([]*model.ScheduleException, 0)
	for rows.Next() {
		exception, err := scanException(rows)
		if err != nil {
			return nil, base.Wrap("scan exception", err)
		}
		exceptions = append(exceptions, exception)
	}

	if err := rows.Err(); err != nil {
		return nil, base.Wrap("list exceptions", err)
	}

	return exceptions, nil
}

// DeleteBefore удаляет исключения на прошедшие даты
func (r *PgExceptionRepository) DeleteBefore(ctx context.Context, date calendar.Date) (int64, error) {
	affected, err := r.ExecAffected(ctx, `DELETE FROM schedule_exceptions WHERE exception_date < $1`, date.Time(time.UTC))
	if err != nil {
		return 0, base.Wrap("delete past exceptions", err)
	}
	return affected, nil
}

func scanException(row pgx.Row) (*model.ScheduleException, error) {
	var (
		exception  model.ScheduleException
		date       time.Time
		start, end *int
	)

	err := row.Scan(
		&exception.ID,
		&exception.GuideID,
		&date,
		&exception.IsAvailable,
		&start,
		&end,
		&exception.Reason,
		&exception.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	exception.ExceptionDate = calendar.DateOf(date)
	exception.StartTime = timeOrNil(start)
	exception.EndTime = timeOrNil(end)

	return &exception, nil
}
