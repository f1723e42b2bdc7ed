package repository

import (
	"context"
	"time"

	"github.com/Freeeeeet/guide_scheduler/internal/calendar"
	"github.com/Freeeeeet/guide_scheduler/internal/model"
	"github.com/Freeeeeet/guide_scheduler/internal/repository/base"
	"github.com/jackc/pgx/v5"
)

// PgScheduleRepository управляет недельными шаблонами гидов
type PgScheduleRepository struct {
	*base.Repository
}

func NewScheduleRepository(q base.Querier) *PgScheduleRepository {
	return &PgScheduleRepository{Repository: base.NewRepository(q)}
}

// GetWeeklyEntry получает шаблон на день недели
func (r *PgScheduleRepository) GetWeeklyEntry(ctx context.Context, guideID int64, dayOfWeek int) (*model.WeeklyScheduleEntry, error) {
	query := `
		SELECT guide_id, day_of_week, is_available, start_minute, end_minute, updated_at
		FROM weekly_schedules
		WHERE guide_id = $1 AND day_of_week = $2
	`

	entry, err := scanWeeklyEntry(r.QueryRow(ctx, query, guideID, dayOfWeek))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, base.Wrap("get weekly entry", err)
	}

	return entry, nil
}

// ListWeekly получает все дни шаблона гида
func (r *PgScheduleRepository) ListWeekly(ctx context.Context, guideID int64) ([]*model.WeeklyScheduleEntry, error) {
	query := `
		SELECT guide_id, day_of_week, is_available, start_minute, end_minute, updated_at
		FROM weekly_schedules
		WHERE guide_id = $1
		ORDER BY day_of_week
	`

	rows, err := r.Query(ctx, query, guideID)
	if err != nil {
		return nil, base.Wrap("list weekly schedule", err)
	}
	defer rows.Close()

	entries := make([]*model.WeeklyScheduleEntry, 0, 7)
	for rows.Next() {
		entry, err := scanWeeklyEntry(rows)
		if err != nil {
			return nil, base.Wrap("scan weekly entry", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, base.Wrap("list weekly schedule", err)
	}

	return entries, nil
}

// UpsertWeekly создаёт или заменяет шаблон на день недели
func (r *PgScheduleRepository) UpsertWeekly(ctx context.Context, entry *model.WeeklyScheduleEntry) error {
	query := `
		INSERT INTO weekly_schedules (guide_id, day_of_week, is_available, start_minute, end_minute, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (guide_id, day_of_week) DO UPDATE
		SET is_available = EXCLUDED.is_available,
		    start_minute = EXCLUDED.start_minute,
		    end_minute = EXCLUDED.end_minute,
		    updated_at = EXCLUDED.updated_at
	`

	if entry.UpdatedAt.IsZero() {
		entry.UpdatedAt = time.Now()
	}

	_, err := r.ExecAffected(
		ctx, query,
		entry.GuideID,
		entry.DayOfWeek,
		entry.IsAvailable,
		minutesOrNil(entry.StartTime),
		minutesOrNil(entry.EndTime),
		entry.UpdatedAt,
	)

	return base.Wrap("upsert weekly entry", err)
}

func scanWeeklyEntry(row pgx.Row) (*model.WeeklyScheduleEntry, error) {
	var (
		entry      model.WeeklyScheduleEntry
		start, end *int
	)

	err := row.Scan(
		&entry.GuideID,
		&entry.DayOfWeek,
		&entry.IsAvailable,
		&start,
		&end,
		&entry.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	entry.StartTime = timeOrNil(start)
	entry.EndTime = timeOrNil(end)

	return &entry, nil
}

func minutesOrNil(t *calendar.LocalTime) *int {
	if t == nil {
		return nil
	}
	m := t.Minutes()
	return &m
}

func timeOrNil(m *int) *calendar.LocalTime {
	if m == nil {
		return nil
	}
	t := calendar.FromMinutes(*m)
	return &t
}
