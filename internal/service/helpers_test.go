package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Freeeeeet/guide_scheduler/internal/calendar"
	"github.com/Freeeeeet/guide_scheduler/internal/model"
	"github.com/Freeeeeet/guide_scheduler/internal/repository/memory"
	"github.com/Freeeeeet/guide_scheduler/internal/service"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	guideID   int64 = 10
	touristID int64 = 20
)

// Четверг
var today = calendar.NewDate(2025, time.May, 1)

// nextMonday первый понедельник после today
var nextMonday = calendar.NewDate(2025, time.May, 5)

func testOptions() service.Options {
	opts := service.DefaultOptions()
	opts.Location = time.UTC
	opts.Now = func() time.Time { return time.Date(2025, time.May, 1, 8, 30, 0, 0, time.UTC) }
	return opts
}

type fixture struct {
	store    *memory.Store
	cache    *recordingCache
	notifier *recordingNotifier
	svc      *service.Services
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:    memory.NewStore(),
		cache:    newRecordingCache(),
		notifier: &recordingNotifier{},
	}
	f.svc = service.New(f.store, f.cache, f.notifier, testOptions(), zap.NewNop())
	return f
}

func tm(t *testing.T, s string) calendar.LocalTime {
	t.Helper()
	lt, err := calendar.ParseTime(s)
	require.NoError(t, err)
	return lt
}

func tp(t *testing.T, s string) *calendar.LocalTime {
	t.Helper()
	lt := tm(t, s)
	return &lt
}

// workMonday задаёт шаблон понедельника
func (f *fixture) workMonday(t *testing.T, start, end string) {
	t.Helper()
	require.NoError(t, f.svc.Schedules.SetWeeklyEntry(context.Background(), &model.WeeklyScheduleEntry{
		GuideID:     guideID,
		DayOfWeek:   1,
		IsAvailable: true,
		StartTime:   tp(t, start),
		EndTime:     tp(t, end),
	}))
}

func (f *fixture) book(t *testing.T, date calendar.Date, start, end string) (*model.Booking, error) {
	t.Helper()
	return f.svc.Bookings.CreateBooking(context.Background(), service.CreateBookingInput{
		GuideID:   guideID,
		TouristID: touristID,
		Date:      date,
		StartTime: tm(t, start),
		EndTime:   tm(t, end),
	})
}

type cacheKey struct {
	guideID  int64
	gen      int64
	date     calendar.Date
	duration int
	step     int
}

// recordingCache повторяет поколения Redis-кэша в памяти
type recordingCache struct {
	mu          sync.Mutex
	entries     map[cacheKey][]calendar.LocalTime
	generations map[int64]int64
	invalidated map[int64]int

	// beforeSet вызывается один раз перед следующей записью
	beforeSet func()
}

func newRecordingCache() *recordingCache {
	return &recordingCache{
		entries:     make(map[cacheKey][]calendar.LocalTime),
		generations: make(map[int64]int64),
		invalidated: make(map[int64]int),
	}
}

func (c *recordingCache) Generation(_ context.Context, guideID int64) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generations[guideID], nil
}

func (c *recordingCache) Get(_ context.Context, guideID, gen int64, date calendar.Date, duration, step int) ([]calendar.LocalTime, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	slots, ok := c.entries[cacheKey{guideID, gen, date, duration, step}]
	return slots, ok, nil
}

func (c *recordingCache) Set(_ context.Context, guideID, gen int64, date calendar.Date, duration, step int, slots []calendar.LocalTime) error {
	c.mu.Lock()
	hook := c.beforeSet
	c.beforeSet = nil
	c.mu.Unlock()
	if hook != nil {
		hook()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cacheKey{guideID, gen, date, duration, step}] = slots
	return nil
}

func (c *recordingCache) Invalidate(_ context.Context, guideID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generations[guideID]++
	c.invalidated[guideID]++
	return nil
}

func (c *recordingCache) invalidations(guideID int64) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.invalidated[guideID]
}

type statusEvent struct {
	from, to model.BookingStatus
	actor    model.Role
}

type recordingNotifier struct {
	mu      sync.Mutex
	created []*model.Booking
	changes []statusEvent
	err     error
}

func (n *recordingNotifier) BookingCreated(_ context.Context, b *model.Booking) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.created = append(n.created, b)
	return n.err
}

func (n *recordingNotifier) BookingStatusChanged(_ context.Context, b *model.Booking, from model.BookingStatus, actor model.Role) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.changes = append(n.changes, statusEvent{from: from, to: b.Status, actor: actor})
	return n.err
}
