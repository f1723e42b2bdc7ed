package render

import (
	"bytes"
	"fmt"
	"image/color"

	"github.com/Freeeeeet/guide_scheduler/internal/calendar"
	"github.com/Freeeeeet/guide_scheduler/internal/model"
	"github.com/Freeeeeet/guide_scheduler/internal/service"
	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"
)

// Константы размеров и отступов
const (
	imageWidth       = 1400
	imageHeight      = 900
	headerHeight     = 100
	leftLabelsWidth  = 80
	legendWidth      = 140
	dayPaddingX      = 8
	minBlockHeight   = 8.0
	blockRadius      = 6.0
	shadowOffset     = 3.0
	hourPadding      = 1
	defaultStartHour = 8
	defaultEndHour   = 18
)

// Цветовая схема
var (
	bgColor        = color.RGBA{245, 246, 248, 255}
	textColor      = color.RGBA{80, 85, 90, 220}
	hourLabelColor = color.RGBA{110, 115, 120, 200}
	hourLineColor  = color.NRGBA{150, 150, 150, 255}
	todayBgColor   = color.NRGBA{255, 99, 71, 125}
	evenDayColor   = color.NRGBA{240, 240, 240, 255}
	oddDayColor    = color.NRGBA{220, 220, 220, 255}
	pastDayColor   = color.NRGBA{200, 200, 200, 255}

	windowColor       = color.RGBA{133, 193, 85, 220}
	pendingColor      = color.RGBA{255, 214, 102, 255}
	confirmedColor    = color.RGBA{255, 182, 193, 255}
	blockTextColor    = color.RGBA{20, 24, 28, 230}
	blockShadowColor  = color.RGBA{0, 0, 0, 20}
	legendItemColor   = color.RGBA{70, 74, 78, 220}
	exceptionTagColor = color.RGBA{120, 40, 50, 255}
)

var weekdayShort = []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// hourRange диапазон часов по вертикали
type hourRange struct {
	start int
	end   int
	total int
}

// WeekImage рисует PNG с рабочими окнами и активными бронями по дням
func WeekImage(days []service.CalendarDay, today calendar.Date) ([]byte, error) {
	if len(days) == 0 {
		return nil, fmt.Errorf("render week: no days")
	}

	hours := calculateHourRange(days)

	dc := gg.NewContext(imageWidth, imageHeight)
	dc.SetColor(bgColor)
	dc.Clear()
	dc.SetFontFace(basicfont.Face7x13)

	dayWidth := (imageWidth - leftLabelsWidth - legendWidth) / len(days)
	dayHeight := imageHeight - headerHeight
	cellHeight := float64(dayHeight) / float64(hours.total)

	drawHeader(dc, days)
	drawHourLabels(dc, hours, cellHeight)
	for i, day := range days {
		x := float64(leftLabelsWidth + i*dayWidth)
		drawDay(dc, day, i, day.Date == today, x, dayWidth, dayHeight, hours, cellHeight)
	}
	drawLegend(dc, leftLabelsWidth+len(days)*dayWidth)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// calculateHourRange охватывает все окна и брони с запасом в час
func calculateHourRange(days []service.CalendarDay) hourRange {
	minMinute, maxMinute := calendar.MinutesPerDay, 0
	extend := func(start, end calendar.LocalTime) {
		minMinute = min(minMinute, start.Minutes())
		maxMinute = max(maxMinute, end.Minutes())
	}
	for _, day := range days {
		if start, end, ok := day.Availability.Window(); ok {
			extend(start, end)
		}
		for _, b := range day.Bookings {
			extend(b.StartTime, b.EndTime)
		}
	}

	startHour, endHour := defaultStartHour, defaultEndHour
	if minMinute < maxMinute {
		startHour = minMinute/60 - hourPadding
		endHour = (maxMinute+59)/60 + hourPadding
	}
	startHour = max(startHour, 0)
	endHour = min(endHour, 24)

	return hourRange{start: startHour, end: endHour, total: endHour - startHour}
}

func drawHeader(dc *gg.Context, days []service.CalendarDay) {
	title := fmt.Sprintf("%s - %s", days[0].Date, days[len(days)-1].Date)
	dc.SetColor(textColor)
	dc.DrawStringAnchored(title, 20, float64(headerHeight)/4, 0, 0.5)
}

func drawHourLabels(dc *gg.Context, hours hourRange, cellHeight float64) {
	dc.SetColor(hourLabelColor)
	for i := 0; i <= hours.total; i++ {
		y := float64(headerHeight) + float64(i)*cellHeight
		label := calendar.NewTime(hours.start+i, 0).String()
		dc.DrawStringAnchored(label, float64(leftLabelsWidth)-10, y, 1, 0.5)
	}
}

func drawDay(dc *gg.Context, day service.CalendarDay, index int, isToday bool, x float64, dayWidth, dayHeight int, hours hourRange, cellHeight float64) {
	y := float64(headerHeight)

	// Фон дня
	switch {
	case isToday:
		dc.SetColor(todayBgColor)
	case day.Availability.Source == model.SourcePast:
		dc.SetColor(pastDayColor)
	case index%2 == 0:
		dc.SetColor(evenDayColor)
	default:
		dc.SetColor(oddDayColor)
	}
	dc.DrawRectangle(x, y, float64(dayWidth), float64(dayHeight))
	dc.Fill()

	// Заголовок дня
	dc.SetColor(textColor)
	center := x + float64(dayWidth)/2
	dc.DrawStringAnchored(weekdayShort[day.Date.Weekday()], center, y-36, 0.5, 0.5)
	dc.DrawStringAnchored(fmt.Sprintf("%02d.%02d", day.Date.Day, int(day.Date.Month)), center, y-18, 0.5, 0.5)
	if day.Availability.Source == model.SourceException {
		dc.SetColor(exceptionTagColor)
		dc.DrawStringAnchored("special", center, y-54, 0.5, 0.5)
	}

	// Линии часов
	dc.SetLineWidth(0.3)
	dc.SetColor(hourLineColor)
	for i := 0; i <= hours.total; i++ {
		hy := y + float64(i)*cellHeight
		dc.DrawLine(x, hy, x+float64(dayWidth), hy)
		dc.Stroke()
	}

	// Рабочее окно и брони поверх него
	if start, end, ok := day.Availability.Window(); ok {
		drawBlock(dc, x, dayWidth, hours, cellHeight, start, end, windowColor, "")
	}
	for _, b := range day.Bookings {
		fill := pendingColor
		if b.Status == model.BookingStatusConfirmed {
			fill = confirmedColor
		}
		drawBlock(dc, x, dayWidth, hours, cellHeight, b.StartTime, b.EndTime, fill, b.StartTime.String()+"-"+b.EndTime.String())
	}
}

func drawBlock(dc *gg.Context, x float64, dayWidth int, hours hourRange, cellHeight float64, start, end calendar.LocalTime, fill color.RGBA, label string) {
	top := float64(headerHeight) + (float64(start.Minutes())/60-float64(hours.start))*cellHeight
	height := float64(end.Minutes()-start.Minutes()) / 60 * cellHeight
	if height < minBlockHeight {
		height = minBlockHeight
	}
	width := float64(dayWidth - dayPaddingX*2)
	left := x + dayPaddingX

	dc.SetColor(blockShadowColor)
	dc.DrawRoundedRectangle(left+shadowOffset, top+2+shadowOffset, width, height-4, blockRadius)
	dc.Fill()

	dc.SetColor(fill)
	dc.DrawRoundedRectangle(left, top+2, width, height-4, blockRadius)
	dc.Fill()

	dc.SetColor(darkenColor(fill, 0.8))
	dc.SetLineWidth(1)
	dc.DrawRoundedRectangle(left, top+2, width, height-4, blockRadius)
	dc.Stroke()

	if label != "" && height > 20 {
		dc.SetColor(blockTextColor)
		dc.DrawStringAnchored(label, left+8, top+16, 0, 0)
	}
}

func drawLegend(dc *gg.Context, x int) {
	items := []struct {
		label string
		clr   color.Color
	}{
		{"Working hours", windowColor},
		{"Pending", pendingColor},
		{"Confirmed", confirmedColor},
	}

	const boxW, boxH = 20.0, 14.0
	lx := float64(x + 10)
	ly := float64(imageHeight) - 100.0

	for _, item := range items {
		dc.SetColor(item.clr)
		dc.DrawRoundedRectangle(lx, ly, boxW, boxH, 3)
		dc.Fill()

		dc.SetColor(legendItemColor)
		dc.DrawStringAnchored(item.label, lx+boxW+8, ly+boxH/2, 0, 0.5)
		ly += boxH + 14
	}
}

// darkenColor затемняет цвет на указанный множитель
func darkenColor(c color.RGBA, factor float64) color.RGBA {
	return color.RGBA{
		R: uint8(float64(c.R) * factor),
		G: uint8(float64(c.G) * factor),
		B: uint8(float64(c.B) * factor),
		A: c.A,
	}
}
