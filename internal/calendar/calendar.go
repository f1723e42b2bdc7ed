package calendar

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Date календарная дата без времени и зоны
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate нормализует дату (32 января -> 1 февраля)
func NewDate(year int, month time.Month, day int) Date {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DateOf возвращает дату момента t в его собственной зоне
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate разбирает дату в формате YYYY-MM-DD
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return DateOf(t), nil
}

// Time возвращает начало дня в указанной зоне
func (d Date) Time(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// Weekday возвращает день недели, 0 = воскресенье
func (d Date) Weekday() int {
	return int(d.Time(time.UTC).Weekday())
}

func (d Date) AddDays(n int) Date {
	return DateOf(d.Time(time.UTC).AddDate(0, 0, n))
}

// DaysUntil число дней от d до other (отрицательное, если other раньше)
func (d Date) DaysUntil(other Date) int {
	return int(other.Time(time.UTC).Sub(d.Time(time.UTC)).Hours() / 24)
}

func (d Date) Before(other Date) bool {
	return d.Compare(other) < 0
}

func (d Date) After(other Date) bool {
	return d.Compare(other) > 0
}

// Compare возвращает -1, 0 или 1
func (d Date) Compare(other Date) int {
	switch {
	case d.Year != other.Year:
		return cmpInt(d.Year, other.Year)
	case d.Month != other.Month:
		return cmpInt(int(d.Month), int(other.Month))
	default:
		return cmpInt(d.Day, other.Day)
	}
}

func (d Date) IsZero() bool {
	return d == Date{}
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// LocalTime время суток с точностью до минуты
type LocalTime int

// MinutesPerDay верхняя граница для LocalTime; 24:00 допустимо как конец окна
const MinutesPerDay = 24 * 60

// FromMinutes обратная к Minutes
func FromMinutes(m int) LocalTime {
	return LocalTime(m)
}

// NewTime собирает время из часов и минут
func NewTime(hour, minute int) LocalTime {
	return LocalTime(hour*60 + minute)
}

// ParseTime принимает "9:00" и "09:00"
func ParseTime(s string) (LocalTime, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 || len(parts[1]) != 2 {
		return 0, fmt.Errorf("parse time %q: want HH:MM", s)
	}

	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("parse time %q: %w", s, err)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("parse time %q: %w", s, err)
	}

	if h < 0 || m < 0 || m > 59 || h*60+m > MinutesPerDay {
		return 0, fmt.Errorf("parse time %q: out of range", s)
	}

	return NewTime(h, m), nil
}

// Minutes возвращает количество минут с полуночи
func (t LocalTime) Minutes() int {
	return int(t)
}

// Add сдвигает время на n минут
func (t LocalTime) Add(minutes int) LocalTime {
	return t + LocalTime(minutes)
}

func (t LocalTime) Valid() bool {
	return t >= 0 && t <= MinutesPerDay
}

func (t LocalTime) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

func (t LocalTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *LocalTime) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseTime(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// RangesOverlap проверяет пересечение полуинтервалов [aStart, aEnd) и [bStart, bEnd).
// Бронь до 11:00 не конфликтует с бронью с 11:00.
func RangesOverlap(aStart, aEnd, bStart, bEnd LocalTime) bool {
	return aStart < bEnd && bStart < aEnd
}

// Contains проверяет, что [start, end) лежит внутри окна [windowStart, windowEnd)
func Contains(windowStart, windowEnd, start, end LocalTime) bool {
	return start >= windowStart && end <= windowEnd && start < end
}

// GenerateSlots возвращает все времена начала t, для которых
// t >= windowStart и t+durationMinutes <= windowEnd, с шагом stepMinutes.
func GenerateSlots(windowStart, windowEnd LocalTime, durationMinutes, stepMinutes int) []LocalTime {
	slots := make([]LocalTime, 0)
	if durationMinutes <= 0 || stepMinutes <= 0 || windowEnd <= windowStart {
		return slots
	}
	if durationMinutes > int(windowEnd-windowStart) {
		return slots
	}

	// Сравнение с lastStart вместо t+duration не переполняется;
	// t < windowStart ловит переполнение при огромном шаге
	lastStart := windowEnd - LocalTime(durationMinutes)
	for t := windowStart; t >= windowStart && t <= lastStart; t = t.Add(stepMinutes) {
		slots = append(slots, t)
	}

	return slots
}

// DurationHours возвращает длительность в часах, округлённую до четверти часа
func DurationHours(start, end LocalTime) float64 {
	minutes := float64(end.Minutes() - start.Minutes())
	return math.Round(minutes/15) / 4
}

// Today возвращает текущую дату в зоне loc
func Today(now time.Time, loc *time.Location) Date {
	return DateOf(now.In(loc))
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
