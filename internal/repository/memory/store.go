// Package memory хранит данные движка в памяти процесса.
// Используется в тестах и при STORE=memory; ограничения повторяют схему PostgreSQL.
package memory

import (
	"context"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/Freeeeeet/guide_scheduler/internal/calendar"
	"github.com/Freeeeeet/guide_scheduler/internal/model"
	"github.com/Freeeeeet/guide_scheduler/internal/repository"
	"github.com/google/uuid"
)

type weeklyKey struct {
	guideID   int64
	dayOfWeek int
}

type state struct {
	weekly     map[weeklyKey]model.WeeklyScheduleEntry
	exceptions map[uuid.UUID]model.ScheduleException
	bookings   map[uuid.UUID]model.Booking
	reviews    map[uuid.UUID]model.Review
	profiles   map[int64]model.GuideProfile
}

func newState() *state {
	return &state{
		weekly:     make(map[weeklyKey]model.WeeklyScheduleEntry),
		exceptions: make(map[uuid.UUID]model.ScheduleException),
		bookings:   make(map[uuid.UUID]model.Booking),
		reviews:    make(map[uuid.UUID]model.Review),
		profiles:   make(map[int64]model.GuideProfile),
	}
}

func (s *state) clone() state {
	return state{
		weekly:     maps.Clone(s.weekly),
		exceptions: maps.Clone(s.exceptions),
		bookings:   maps.Clone(s.bookings),
		reviews:    maps.Clone(s.reviews),
		profiles:   maps.Clone(s.profiles),
	}
}

// Store реализация repository.Store в памяти
type Store struct {
	// txLock семафор на одну транзакцию; ожидание прерывается контекстом
	txLock chan struct{}
	mu     *sync.RWMutex
	data   *state
	inTx   bool
}

func NewStore() *Store {
	return &Store{
		txLock: make(chan struct{}, 1),
		mu:     &sync.RWMutex{},
		data:   newState(),
	}
}

func (s *Store) Schedules() repository.ScheduleRepository   { return scheduleRepo{s} }
func (s *Store) Exceptions() repository.ExceptionRepository { return exceptionRepo{s} }
func (s *Store) Bookings() repository.BookingRepository     { return bookingRepo{s} }
func (s *Store) Reviews() repository.ReviewRepository       { return reviewRepo{s} }
func (s *Store) Guides() repository.GuideRepository         { return guideRepo{s} }

// InGuideTx держит эксклюзивную блокировку на время fn и откатывает изменения при ошибке
func (s *Store) InGuideTx(ctx context.Context, _ int64, fn func(tx repository.Store) error) error {
	if s.inTx {
		return fn(s)
	}

	if err := ctx.Err(); err != nil {
		return model.NewUnavailableError(err, "begin transaction")
	}

	select {
	case s.txLock <- struct{}{}:
	case <-ctx.Done():
		return model.NewUnavailableError(ctx.Err(), "wait for transaction")
	}
	defer func() { <-s.txLock }()

	// mu вне транзакций держится только на время одной операции
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	if err := fn(&Store{txLock: s.txLock, mu: s.mu, data: s.data, inTx: true}); err != nil {
		*s.data = snapshot
		return err
	}

	return nil
}

func (s *Store) read(ctx context.Context, fn func(*state)) error {
	if err := ctx.Err(); err != nil {
		return model.NewUnavailableError(err, "read")
	}
	if !s.inTx {
		s.mu.RLock()
		defer s.mu.RUnlock()
	}
	fn(s.data)
	return nil
}

func (s *Store) write(ctx context.Context, fn func(*state) error) error {
	if err := ctx.Err(); err != nil {
		return model.NewUnavailableError(err, "write")
	}
	if !s.inTx {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	return fn(s.data)
}

type scheduleRepo struct{ s *Store }

func (r scheduleRepo) GetWeeklyEntry(ctx context.Context, guideID int64, dayOfWeek int) (*model.WeeklyScheduleEntry, error) {
	var out *model.WeeklyScheduleEntry
	err := r.s.read(ctx, func(st *state) {
		if entry, ok := st.weekly[weeklyKey{guideID, dayOfWeek}]; ok {
			out = &entry
		}
	})
	return out, err
}

func (r scheduleRepo) ListWeekly(ctx context.Context, guideID int64) ([]*model.WeeklyScheduleEntry, error) {
	out := make([]*model.WeeklyScheduleEntry, 0, 7)
	err := r.s.read(ctx, func(st *state) {
		for key, entry := range st.weekly {
			if key.guideID == guideID {
				out = append(out, &entry)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].DayOfWeek < out[j].DayOfWeek })
	return out, err
}

func (r scheduleRepo) UpsertWeekly(ctx context.Context, entry *model.WeeklyScheduleEntry) error {
	if entry.UpdatedAt.IsZero() {
		entry.UpdatedAt = time.Now()
	}
	return r.s.write(ctx, func(st *state) error {
		stored := *entry
		stored.StartTime, stored.EndTime = copyTime(entry.StartTime), copyTime(entry.EndTime)
		st.weekly[weeklyKey{entry.GuideID, entry.DayOfWeek}] = stored
		return nil
	})
}

type exceptionRepo struct{ s *Store }

func (r exceptionRepo) GetByDate(ctx context.Context, guideID int64, date calendar.Date) (*model.ScheduleException, error) {
	var out *model.ScheduleException
	err := r.s.read(ctx, func(st *state) {
		out = findException(st, guideID, date)
	})
	return out, err
}

func (r exceptionRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.ScheduleException, error) {
	var out *model.ScheduleException
	err := r.s.read(ctx, func(st *state) {
		if exception, ok := st.exceptions[id]; ok {
			out = &exception
		}
	})
	return out, err
}

func (r exceptionRepo) Upsert(ctx context.Context, exception *model.ScheduleException) error {
	return r.s.write(ctx, func(st *state) error {
		if existing := findException(st, exception.GuideID, exception.ExceptionDate); existing != nil {
			exception.ID = existing.ID
			exception.CreatedAt = existing.CreatedAt
		}
		if exception.ID == uuid.Nil {
			exception.ID = uuid.New()
		}
		if exception.CreatedAt.IsZero() {
			exception.CreatedAt = time.Now()
		}
		stored := *exception
		stored.StartTime, stored.EndTime = copyTime(exception.StartTime), copyTime(exception.EndTime)
		st.exceptions[exception.ID] = stored
		return nil
	})
}

func (r exceptionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.s.write(ctx, func(st *state) error {
		delete(st.exceptions, id)
		return nil
	})
}

func (r exceptionRepo) ListRange(ctx context.Context, guideID int64, from, to calendar.Date) ([]*model.ScheduleException, error) {
	out := make([]*model.ScheduleException, 0)
	err := r.s.read(ctx, func(st *state) {
		for _, exception := range st.exceptions {
			d := exception.ExceptionDate
			if exception.GuideID == guideID && !d.Before(from) && !d.After(to) {
				out = append(out, &exception)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ExceptionDate.Before(out[j].ExceptionDate) })
	return out, err
}

func (r exceptionRepo) DeleteBefore(ctx context.Context, date calendar.Date) (int64, error) {
	var deleted int64
	err := r.s.write(ctx, func(st *state) error {
		for id, exception := range st.exceptions {
			if exception.ExceptionDate.Before(date) {
				delete(st.exceptions, id)
				deleted++
			}
		}
		return nil
	})
	return deleted, err
}

func copyTime(t *calendar.LocalTime) *calendar.LocalTime {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

func findException(st *state, guideID int64, date calendar.Date) *model.ScheduleException {
	for _, exception := range st.exceptions {
		if exception.GuideID == guideID && exception.ExceptionDate == date {
			return &exception
		}
	}
	return nil
}

type bookingRepo struct{ s *Store }

func (r bookingRepo) Create(ctx context.Context, booking *model.Booking) error {
	return r.s.write(ctx, func(st *state) error {
		if booking.ID == uuid.Nil {
			booking.ID = uuid.New()
		}
		if _, exists := st.bookings[booking.ID]; exists {
			return model.NewConflictError("booking %s already exists", booking.ID)
		}
		if booking.Status.IsActive() {
			for _, other := range st.bookings {
				if other.GuideID == booking.GuideID &&
					other.BookingDate == booking.BookingDate &&
					other.Status.IsActive() &&
					other.Overlaps(booking.StartTime, booking.EndTime) {
					return model.NewConflictError("guide %d already booked %s %s-%s",
						booking.GuideID, other.BookingDate, other.StartTime, other.EndTime)
				}
			}
		}
		if booking.CreatedAt.IsZero() {
			booking.CreatedAt = time.Now()
		}
		booking.UpdatedAt = booking.CreatedAt
		st.bookings[booking.ID] = *booking
		return nil
	})
}

func (r bookingRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	var out *model.Booking
	err := r.s.read(ctx, func(st *state) {
		if booking, ok := st.bookings[id]; ok {
			out = &booking
		}
	})
	return out, err
}

func (r bookingRepo) ListActiveByGuideDate(ctx context.Context, guideID int64, date calendar.Date) ([]*model.Booking, error) {
	return r.filter(ctx, func(b *model.Booking) bool {
		return b.GuideID == guideID && b.BookingDate == date && b.Status.IsActive()
	}, false)
}

func (r bookingRepo) ListByGuide(ctx context.Context, guideID int64, from, to calendar.Date) ([]*model.Booking, error) {
	return r.filter(ctx, func(b *model.Booking) bool {
		return b.GuideID == guideID && !b.BookingDate.Before(from) && !b.BookingDate.After(to)
	}, false)
}

func (r bookingRepo) ListByTourist(ctx context.Context, touristID int64) ([]*model.Booking, error) {
	return r.filter(ctx, func(b *model.Booking) bool {
		return b.TouristID == touristID
	}, true)
}

func (r bookingRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.BookingStatus, at time.Time) (bool, error) {
	var updated bool
	err := r.s.write(ctx, func(st *state) error {
		booking, ok := st.bookings[id]
		if !ok || booking.Status != from {
			return nil
		}
		booking.Status = to
		booking.UpdatedAt = at
		st.bookings[id] = booking
		updated = true
		return nil
	})
	return updated, err
}

func (r bookingRepo) filter(ctx context.Context, keep func(*model.Booking) bool, desc bool) ([]*model.Booking, error) {
	out := make([]*model.Booking, 0)
	err := r.s.read(ctx, func(st *state) {
		for _, booking := range st.bookings {
			if keep(&booking) {
				out = append(out, &booking)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if desc {
			a, b = b, a
		}
		if c := a.BookingDate.Compare(b.BookingDate); c != 0 {
			return c < 0
		}
		return a.StartTime < b.StartTime
	})
	return out, err
}

type reviewRepo struct{ s *Store }

func (r reviewRepo) Create(ctx context.Context, review *model.Review) error {
	return r.s.write(ctx, func(st *state) error {
		for _, other := range st.reviews {
			if other.BookingID == review.BookingID && other.ReviewerID == review.ReviewerID {
				return model.NewConflictError("user %d already reviewed booking %s", review.ReviewerID, review.BookingID)
			}
		}
		if review.ID == uuid.Nil {
			review.ID = uuid.New()
		}
		if review.CreatedAt.IsZero() {
			review.CreatedAt = time.Now()
		}
		st.reviews[review.ID] = *review
		return nil
	})
}

func (r reviewRepo) ListByReviewee(ctx context.Context, revieweeID int64) ([]*model.Review, error) {
	out := make([]*model.Review, 0)
	err := r.s.read(ctx, func(st *state) {
		for _, review := range st.reviews {
			if review.RevieweeID == revieweeID {
				out = append(out, &review)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, err
}

type guideRepo struct{ s *Store }

func (r guideRepo) GetProfile(ctx context.Context, guideID int64) (*model.GuideProfile, error) {
	var out *model.GuideProfile
	err := r.s.read(ctx, func(st *state) {
		if profile, ok := st.profiles[guideID]; ok {
			out = &profile
		}
	})
	return out, err
}

func (r guideRepo) UpsertProfile(ctx context.Context, profile *model.GuideProfile) error {
	if profile.UpdatedAt.IsZero() {
		profile.UpdatedAt = time.Now()
	}
	return r.s.write(ctx, func(st *state) error {
		st.profiles[profile.GuideID] = *profile
		return nil
	})
}

var _ repository.Store = (*Store)(nil)
