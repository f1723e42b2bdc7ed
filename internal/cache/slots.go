package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Freeeeeet/guide_scheduler/internal/calendar"
	"github.com/redis/go-redis/v9"
)

// SlotCache хранит свободные слоты гида в hash-ключе slots:{guideID}:{gen}.
// Поле = дата|длительность|шаг, значение = JSON-массив времён.
// Счётчик slots:gen:{guideID} увеличивается при любой записи по гиду,
// старое поколение удаляется или доживает до TTL недоступным.
type SlotCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewSlotCache(rdb *redis.Client, ttl time.Duration) *SlotCache {
	return &SlotCache{rdb: rdb, ttl: ttl}
}

func generationKey(guideID int64) string {
	return fmt.Sprintf("slots:gen:%d", guideID)
}

func slotsKey(guideID, gen int64) string {
	return fmt.Sprintf("slots:%d:%d", guideID, gen)
}

func slotsField(date calendar.Date, durationMinutes, stepMinutes int) string {
	return fmt.Sprintf("%s|%d|%d", date, durationMinutes, stepMinutes)
}

// Generation текущее поколение; 0, пока гида ни разу не сбрасывали
func (c *SlotCache) Generation(ctx context.Context, guideID int64) (int64, error) {
	gen, err := c.rdb.Get(ctx, generationKey(guideID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get slots generation: %w", err)
	}
	return gen, nil
}

// Get возвращает слоты и true при попадании
func (c *SlotCache) Get(ctx context.Context, guideID, gen int64, date calendar.Date, durationMinutes, stepMinutes int) ([]calendar.LocalTime, bool, error) {
	raw, err := c.rdb.HGet(ctx, slotsKey(guideID, gen), slotsField(date, durationMinutes, stepMinutes)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get cached slots: %w", err)
	}

	slots := make([]calendar.LocalTime, 0)
	if err := json.Unmarshal([]byte(raw), &slots); err != nil {
		return nil, false, fmt.Errorf("decode cached slots: %w", err)
	}
	return slots, true, nil
}

// Set сохраняет слоты в поколение gen; TTL продлевается на весь ключ
func (c *SlotCache) Set(ctx context.Context, guideID, gen int64, date calendar.Date, durationMinutes, stepMinutes int, slots []calendar.LocalTime) error {
	if slots == nil {
		slots = []calendar.LocalTime{}
	}
	payload, err := json.Marshal(slots)
	if err != nil {
		return fmt.Errorf("encode slots: %w", err)
	}

	key := slotsKey(guideID, gen)
	if err := c.rdb.HSet(ctx, key, slotsField(date, durationMinutes, stepMinutes), string(payload)).Err(); err != nil {
		return fmt.Errorf("cache slots: %w", err)
	}
	if err := c.rdb.Expire(ctx, key, c.ttl).Err(); err != nil {
		return fmt.Errorf("expire cached slots: %w", err)
	}
	return nil
}

// Invalidate начинает новое поколение и удаляет предыдущее
func (c *SlotCache) Invalidate(ctx context.Context, guideID int64) error {
	gen, err := c.rdb.Incr(ctx, generationKey(guideID)).Result()
	if err != nil {
		return fmt.Errorf("invalidate slots: %w", err)
	}
	if err := c.rdb.Del(ctx, slotsKey(guideID, gen-1)).Err(); err != nil {
		return fmt.Errorf("drop stale slots: %w", err)
	}
	return nil
}

// Nop кэш без хранения, когда Redis не настроен
type Nop struct{}

func (Nop) Generation(context.Context, int64) (int64, error) {
	return 0, nil
}

func (Nop) Get(context.Context, int64, int64, calendar.Date, int, int) ([]calendar.LocalTime, bool, error) {
	return nil, false, nil
}

func (Nop) Set(context.Context, int64, int64, calendar.Date, int, int, []calendar.LocalTime) error {
	return nil
}

func (Nop) Invalidate(context.Context, int64) error {
	return nil
}
