package service_test

import (
	"testing"

	"github.com/Freeeeeet/guide_scheduler/internal/model"
	"github.com/Freeeeeet/guide_scheduler/internal/service"
	"github.com/stretchr/testify/assert"
)

func TestComputeFee(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		hours float64
		want  model.Money
	}{
		{"one hour stays at base", 1, 6000},
		{"two hours exactly base", 2, 6000},
		{"three hours", 3, 9000},
		{"two and a half hours", 2.5, 7500},
		{"quarter over base", 2.25, 6750},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, service.ComputeFee(6000, 3000, tc.hours, 2))
		})
	}
}

func TestComputeFeeRoundsToWholeYen(t *testing.T) {
	t.Parallel()

	// 1001 * 0.25 = 250.25
	assert.Equal(t, model.Money(250), service.ComputeFee(0, 1001, 2.25, 2))
}

func TestComputeFeeMonotonic(t *testing.T) {
	t.Parallel()

	prev := service.ComputeFee(6000, 3000, 0.25, 2)
	for hours := 0.5; hours <= 12; hours += 0.25 {
		fee := service.ComputeFee(6000, 3000, hours, 2)
		assert.GreaterOrEqual(t, fee, prev, "hours=%v", hours)
		prev = fee
	}
}
