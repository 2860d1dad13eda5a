package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	dom "github.com/AntonioSTO/water-tracking-app/internal/domain"

	"github.com/redis/go-redis/v9"
)

const (
	keyLedger = "water:ledger:"
	keyStats  = "water:stats:"
)

// WaterCache caches per-user ledger and statistics reads in Redis.
type WaterCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewWaterCache returns a new WaterCache.
func NewWaterCache(rdb *redis.Client, ttl time.Duration) *WaterCache {
	return &WaterCache{rdb: rdb, ttl: ttl}
}

// GetLedger returns the cached ledger or nil if miss.
func (c *WaterCache) GetLedger(ctx context.Context, userID int64) (*dom.Ledger, error) {
	b, err := c.rdb.Get(ctx, ledgerKey(userID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var l dom.Ledger
	if err := json.Unmarshal(b, &l); err != nil {
		return nil, err
	}
	return &l, nil
}

// SetLedger stores the ledger in cache.
func (c *WaterCache) SetLedger(ctx context.Context, led dom.Ledger) error {
	b, err := json.Marshal(led)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, ledgerKey(led.UserID), b, c.ttl).Err()
}

// GetStats returns the cached statistics or nil if miss.
func (c *WaterCache) GetStats(ctx context.Context, userID int64) (*dom.Statistics, error) {
	b, err := c.rdb.Get(ctx, statsKey(userID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var s dom.Statistics
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// SetStats stores the statistics in cache.
func (c *WaterCache) SetStats(ctx context.Context, userID int64, s dom.Statistics) error {
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, statsKey(userID), b, c.ttl).Err()
}

// Invalidate removes the user's ledger and statistics entries (cache
// invalidation on write).
func (c *WaterCache) Invalidate(ctx context.Context, userID int64) error {
	return c.rdb.Del(ctx, ledgerKey(userID), statsKey(userID)).Err()
}

func ledgerKey(userID int64) string { return keyLedger + strconv.FormatInt(userID, 10) }
func statsKey(userID int64) string  { return keyStats + strconv.FormatInt(userID, 10) }
