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

const bookingColumns = `id, guide_id, tourist_id, booking_date, start_minute, end_minute, status, fee, duration_hours, notes, created_at, updated_at`

type PgBookingRepository struct {
	*base.Repository
}

func NewBookingRepository(q base.Querier) *PgBookingRepository {
	return &PgBookingRepository{Repository: base.NewRepository(q)}
}

// Create создаёт новое бронирование.
// Пересечение с активной бронью гида отсекается ограничением bookings_no_overlap.
func (r *PgBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	query := `
		INSERT INTO bookings (id, guide_id, tourist_id, booking_date, start_minute, end_minute, status, fee, duration_hours, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)
		RETURNING created_at, updated_at
	`

	if booking.ID == uuid.Nil {
		booking.ID = uuid.New()
	}
	if booking.CreatedAt.IsZero() {
		booking.CreatedAt = time.Now()
	}

	err := r.QueryRow(
		ctx, query,
		booking.ID,
		booking.GuideID,
		booking.TouristID,
		booking.BookingDate.Time(time.UTC),
		booking.StartTime.Minutes(),
		booking.EndTime.Minutes(),
		string(booking.Status),
		int64(booking.Fee),
		booking.DurationHours,
		booking.Notes,
		booking.CreatedAt,
	).Scan(&booking.CreatedAt, &booking.UpdatedAt)

	return base.Wrap("create booking", err)
}

// GetByID получает бронирование по ID
func (r *PgBookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	booking, err := scanBooking(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, base.Wrap("get booking by id", err)
	}

	return booking, nil
}

// ListActiveByGuideDate получает pending и confirmed бронирования гида на дату
func (r *PgBookingRepository) ListActiveByGuideDate(ctx context.Context, guideID int64, date calendar.Date) ([]*model.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE guide_id = $1 AND booking_date = $2 AND status IN ('pending', 'confirmed')
		ORDER BY start_minute
	`

	rows, err := r.Query(ctx, query, guideID, date.Time(time.UTC))
	if err != nil {
		return nil, base.Wrap("get active bookings by guide", err)
	}

	return collectBookings(rows, "get active bookings by guide")
}

// ListByGuide получает все бронирования гида в диапазоне дат включительно
func (r *PgBookingRepository) ListByGuide(ctx context.Context, guideID int64, from, to calendar.Date) ([]*model.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE guide_id = $1 AND booking_date BETWEEN $2 AND $3
		ORDER BY booking_date, start_minute
	`

	rows, err := r.Query(ctx, query, guideID, from.Time(time.UTC), to.Time(time.UTC))
	if err != nil {
		return nil, base.Wrap("get bookings by guide", err)
	}

	return collectBookings(rows, "get bookings by guide")
}

// ListByTourist получает все бронирования туриста
func (r *PgBookingRepository) ListByTourist(ctx context.Context, touristID int64) ([]*model.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE tourist_id = $1
		ORDER BY booking_date DESC, start_minute DESC
	`

	rows, err := r.Query(ctx, query, touristID)
	if err != nil {
		return nil, base.Wrap("get bookings by tourist", err)
	}

	return collectBookings(rows, "get bookings by tourist")
}

// UpdateStatus меняет статус, если он не изменился с момента чтения
func (r *PgBookingRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.BookingStatus, at time.Time) (bool, error) {
	query := `
		UPDATE bookings
		SET status = $1, updated_at = $2
		WHERE id = $3 AND status = $4
	`

	affected, err := r.ExecAffected(ctx, query, string(to), at, id, string(from))
	if err != nil {
		return false, base.Wrap("update booking status", err)
	}

	return affected == 1, nil
}

func scanBooking(row pgx.Row) (*model.Booking, error) {
	var (
		booking    model.Booking
		date       time.Time
		start, end int
		status     string
		fee        int64
	)

	err := row.Scan(
		&booking.ID,
		&booking.GuideID,
		&booking.TouristID,
		&date,
		&start,
		&end,
		&status,
		&fee,
		&booking.DurationHours,
		&booking.Notes,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	booking.BookingDate = calendar.DateOf(date)
	booking.StartTime = calendar.FromMinutes(start)
	booking.EndTime = calendar.FromMinutes(end)
	booking.Status = model.BookingStatus(status)
	booking.Fee = model.Money(fee)

	return &booking, nil
}

func collectBookings(rows pgx.Rows, op string) ([]*model.Booking, error) {
	defer rows.Close()

	bookings := make([]*model.Booking, 0)
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, base.Wrap("scan booking", err)
		}
		bookings = append(bookings, booking)
	}

	if err := rows.Err(); err != nil {
		return nil, base.Wrap(op, err)
	}

	return bookings, nil
}
