package model

import "time"

// GuideProfile тарифы гида
type GuideProfile struct {
	GuideID   int64     `json:"guide_id"`
	BaseFee   Money     `json:"base_fee"`   // за базовые часы
	HourlyFee Money     `json:"hourly_fee"` // за каждый час сверх базовых
	UpdatedAt time.Time `json:"updated_at"`
}
