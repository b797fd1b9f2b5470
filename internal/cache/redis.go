package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/parkspot/parkspot/config"
	"github.com/parkspot/parkspot/internal/domain"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	client   *redis.Client
	statsTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, statsTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:   redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		statsTTL: statsTTL,
	}
}

// AcquireSlotLock takes a short exclusive hold on a slot across instances.
// The store CAS is still the correctness guard; the lock only cuts down on
// doomed booking attempts when several API instances share one store.
func (c *RedisCache) AcquireSlotLock(ctx context.Context, slotID string, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, slotLockKey(slotID), "locked", ttl).Result()
}

func (c *RedisCache) ReleaseSlotLock(ctx context.Context, slotID string) error {
	return c.client.Del(ctx, slotLockKey(slotID)).Err()
}

func (c *RedisCache) GetSlots(ctx context.Context, providerID string) ([]domain.Slot, error) {
	data, err := c.client.Get(ctx, slotsKey(providerID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var slots []domain.Slot
	if err := json.Unmarshal(data, &slots); err != nil {
		return nil, err
	}
	return slots, nil
}

func (c *RedisCache) SetSlots(ctx context.Context, providerID string, slots []domain.Slot) error {
	payload, err := json.Marshal(slots)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, slotsKey(providerID), payload, c.statsTTL).Err()
}

// GetStats / SetStats cache serialized dashboard payloads keyed by report name
// and range. Staleness is bounded by the TTL; correctness never depends on it.
func (c *RedisCache) GetStats(ctx context.Context, key string, out interface{}) (bool, error) {
	data, err := c.client.Get(ctx, statsKey(key)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, err
	}
	return true, nil
}

func (c *RedisCache) SetStats(ctx context.Context, key string, value interface{}) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, statsKey(key), payload, c.statsTTL).Err()
}

func slotsKey(providerID string) string {
	if providerID == "" {
		return "cache:slots:all"
	}
	return "cache:slots:" + providerID
}

func statsKey(key string) string {
	return "cache:stats:" + key
}

func slotLockKey(slotID string) string {
	return fmt.Sprintf("lock:slot:%s", slotID)
}
