package notify

import (
	"fmt"
	"strconv"
	"time"

	"github.com/Freeeeeet/guide_scheduler/internal/calendar"
	"github.com/Freeeeeet/guide_scheduler/internal/model"
)

// StatusDisplay представляет отображение статуса бронирования
type StatusDisplay struct {
	Emoji string
	Text  string
}

// GetStatusDisplay возвращает emoji и текст для статуса бронирования
func GetStatusDisplay(status model.BookingStatus) StatusDisplay {
	displays := map[model.BookingStatus]StatusDisplay{
		model.BookingStatusPending:   {"⏳", "Ожидает подтверждения"},
		model.BookingStatusConfirmed: {"✅", "Подтверждена"},
		model.BookingStatusCompleted: {"✔️", "Завершена"},
		model.BookingStatusCancelled: {"❌", "Отменена"},
	}

	if display, ok := displays[status]; ok {
		return display
	}

	return StatusDisplay{"❓", "Неизвестно"}
}

// GetRoleName возвращает название роли на русском
func GetRoleName(role model.Role) string {
	switch role {
	case model.RoleGuide:
		return "гид"
	case model.RoleTourist:
		return "турист"
	default:
		return string(role)
	}
}

// FormatDate форматирует дату с коротким днём недели: 05.05.2025 (Пн)
func FormatDate(d calendar.Date) string {
	names := []string{"Вс", "Пн", "Вт", "Ср", "Чт", "Пт", "Сб"}
	return fmt.Sprintf("%s (%s)", d.Time(time.UTC).Format("02.01.2006"), names[d.Weekday()])
}

// FormatTimeRange форматирует диапазон времени
func FormatTimeRange(start, end calendar.LocalTime) string {
	return fmt.Sprintf("%s-%s", start, end)
}

// FormatDuration форматирует длительность в часах
func FormatDuration(hours float64) string {
	minutes := int(hours * 60)
	if minutes < 60 {
		return fmt.Sprintf("%d мин", minutes)
	}
	h, m := minutes/60, minutes%60
	if m == 0 {
		return fmt.Sprintf("%d ч", h)
	}
	return fmt.Sprintf("%d ч %d мин", h, m)
}

// FormatYen форматирует сумму с разделителем тысяч: ¥9,000
func FormatYen(amount model.Money) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}

	digits := strconv.FormatInt(int64(amount), 10)
	out := make([]byte, 0, len(digits)+len(digits)/3)
	for i := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, digits[i])
	}

	return sign + "¥" + string(out)
}
