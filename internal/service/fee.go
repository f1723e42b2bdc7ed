package service

import (
	"math"

	"github.com/Freeeeeet/guide_scheduler/internal/model"
)

// ComputeFee считает стоимость: базовый тариф покрывает baseHours,
// каждый час сверх них оплачивается по hourlyFee. Округление до целой иены.
func ComputeFee(baseFee, hourlyFee model.Money, durationHours, baseHours float64) model.Money {
	extraHours := math.Max(0, durationHours-baseHours)
	return baseFee + model.Money(math.Round(float64(hourlyFee)*extraHours))
}
