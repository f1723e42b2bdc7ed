package calendar_test

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/Freeeeeet/guide_scheduler/internal/calendar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustTime(t *testing.T, s string) calendar.LocalTime {
	t.Helper()
	lt, err := calendar.ParseTime(s)
	require.NoError(t, err)
	return lt
}

func TestDateWeekday(t *testing.T) {
	t.Parallel()

	cases := []struct {
		date string
		want int
	}{
		{"2025-04-27", 0}, // Sunday
		{"2025-04-28", 1},
		{"2025-05-03", 6},
		{"2024-02-29", 4},
	}

	for _, tc := range cases {
		t.Run(tc.date, func(t *testing.T) {
			d, err := calendar.ParseDate(tc.date)
			require.NoError(t, err)
			assert.Equal(t, tc.want, d.Weekday())
		})
	}
}

func TestDateArithmetic(t *testing.T) {
	t.Parallel()

	d := calendar.NewDate(2025, time.December, 31)
	assert.Equal(t, "2026-01-01", d.AddDays(1).String())
	assert.True(t, d.Before(d.AddDays(1)))
	assert.True(t, d.After(d.AddDays(-1)))
	assert.Equal(t, 0, d.Compare(calendar.NewDate(2025, time.December, 31)))
	assert.Equal(t, 31, d.DaysUntil(calendar.NewDate(2026, time.January, 31)))
	assert.Equal(t, -1, d.DaysUntil(d.AddDays(-1)))

	_, err := calendar.ParseDate("2025-13-01")
	assert.Error(t, err)
}

func TestDateJSON(t *testing.T) {
	t.Parallel()

	var d calendar.Date
	require.NoError(t, json.Unmarshal([]byte(`"2025-05-20"`), &d))
	assert.Equal(t, calendar.NewDate(2025, time.May, 20), d)

	b, err := json.Marshal(d)
	require.NoError(t, err)
	assert.JSONEq(t, `"2025-05-20"`, string(b))
}

func TestParseTime(t *testing.T) {
	t.Parallel()

	t.Run("accepts single digit hour", func(t *testing.T) {
		assert.Equal(t, 9*60, mustTime(t, "9:00").Minutes())
		assert.Equal(t, "09:00", mustTime(t, "9:00").String())
	})

	t.Run("round trip through minutes", func(t *testing.T) {
		lt := mustTime(t, "17:45")
		assert.Equal(t, lt, calendar.FromMinutes(lt.Minutes()))
	})

	t.Run("end of day", func(t *testing.T) {
		assert.Equal(t, calendar.MinutesPerDay, mustTime(t, "24:00").Minutes())
	})

	for _, bad := range []string{"", "9", "9:0", "25:00", "10:60", "ab:cd"} {
		_, err := calendar.ParseTime(bad)
		assert.Error(t, err, bad)
	}
}

func TestRangesOverlap(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name         string
		aStart, aEnd string
		bStart, bEnd string
		want         bool
	}{
		{"adjacent after", "09:00", "11:00", "11:00", "12:00", false},
		{"adjacent before", "11:00", "12:00", "09:00", "11:00", false},
		{"partial", "09:00", "11:00", "10:30", "12:00", true},
		{"contained", "09:00", "17:00", "10:00", "11:00", true},
		{"identical", "10:00", "11:00", "10:00", "11:00", true},
		{"disjoint", "09:00", "10:00", "13:00", "14:00", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := calendar.RangesOverlap(
				mustTime(t, tc.aStart), mustTime(t, tc.aEnd),
				mustTime(t, tc.bStart), mustTime(t, tc.bEnd),
			)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestGenerateSlots(t *testing.T) {
	t.Parallel()

	t.Run("hourly slots of two hours", func(t *testing.T) {
		slots := calendar.GenerateSlots(mustTime(t, "09:00"), mustTime(t, "13:00"), 120, 60)
		want := []calendar.LocalTime{mustTime(t, "09:00"), mustTime(t, "10:00"), mustTime(t, "11:00")}
		assert.Equal(t, want, slots)
	})

	t.Run("duration longer than window", func(t *testing.T) {
		slots := calendar.GenerateSlots(mustTime(t, "09:00"), mustTime(t, "10:00"), 90, 30)
		assert.Empty(t, slots)
		assert.NotNil(t, slots)
	})

	t.Run("step does not divide window", func(t *testing.T) {
		slots := calendar.GenerateSlots(mustTime(t, "10:00"), mustTime(t, "11:40"), 30, 45)
		assert.Equal(t, []calendar.LocalTime{mustTime(t, "10:00"), mustTime(t, "10:45")}, slots)
	})

	t.Run("non positive step", func(t *testing.T) {
		assert.Empty(t, calendar.GenerateSlots(mustTime(t, "10:00"), mustTime(t, "12:00"), 60, 0))
	})

	t.Run("huge duration", func(t *testing.T) {
		slots := calendar.GenerateSlots(mustTime(t, "09:00"), mustTime(t, "17:00"), math.MaxInt-100, 60)
		assert.Empty(t, slots)
	})

	t.Run("huge step yields only the window start", func(t *testing.T) {
		slots := calendar.GenerateSlots(mustTime(t, "09:00"), mustTime(t, "17:00"), 60, math.MaxInt)
		assert.Equal(t, []calendar.LocalTime{mustTime(t, "09:00")}, slots)
	})

	t.Run("empty window", func(t *testing.T) {
		assert.Empty(t, calendar.GenerateSlots(mustTime(t, "12:00"), mustTime(t, "12:00"), 1, 1))
		assert.Empty(t, calendar.GenerateSlots(mustTime(t, "13:00"), mustTime(t, "12:00"), 30, 30))
	})

	t.Run("deterministic", func(t *testing.T) {
		a := calendar.GenerateSlots(mustTime(t, "08:00"), mustTime(t, "18:00"), 60, 30)
		b := calendar.GenerateSlots(mustTime(t, "08:00"), mustTime(t, "18:00"), 60, 30)
		assert.Equal(t, a, b)
		for i := 1; i < len(a); i++ {
			assert.Less(t, a[i-1], a[i])
		}
	})
}

func TestDurationHours(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 3.0, calendar.DurationHours(mustTime(t, "10:00"), mustTime(t, "13:00")))
	assert.Equal(t, 1.5, calendar.DurationHours(mustTime(t, "10:00"), mustTime(t, "11:30")))
	assert.Equal(t, 1.25, calendar.DurationHours(mustTime(t, "10:00"), mustTime(t, "11:20")))
}

func TestToday(t *testing.T) {
	t.Parallel()

	tokyo := time.FixedZone("JST", 9*60*60)
	now := time.Date(2025, time.May, 1, 20, 0, 0, 0, time.UTC)
	assert.Equal(t, calendar.NewDate(2025, time.May, 2), calendar.Today(now, tokyo))
}
