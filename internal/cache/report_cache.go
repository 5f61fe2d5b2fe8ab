package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	reportKeyPrefix = "billing:report:"
	reportGenKey    = reportKeyPrefix + "gen"
)

// ReportCache stores computed report payloads. Keys are short names such as
// "dashboard" or "monthly:2024:03:desc"; implementations namespace them.
//
// Entries belong to a generation. Invalidate starts a new one, so a value
// computed before an invalidation and written after it is never served.
type ReportCache interface {
	// Get decodes the cached value into dst and reports whether it was
	// found. gen is the generation the lookup ran under; pass it to Set.
	Get(ctx context.Context, key string, dst any) (found bool, gen int64, err error)
	Set(ctx context.Context, gen int64, key string, value any) error
	// Invalidate drops every cached report.
	Invalidate(ctx context.Context) error
}

type redisReportCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewReportCache returns a Redis backed cache, or a no-op cache when rdb is
// nil or ttl is not positive.
func NewReportCache(rdb *redis.Client, ttl time.Duration) ReportCache {
	if rdb == nil || ttl <= 0 {
		return NopReportCache{}
	}
	return &redisReportCache{rdb: rdb, ttl: ttl}
}

// reportEntryKey is the storage key of key within generation gen.
func reportEntryKey(gen int64, key string) string {
	return fmt.Sprintf("%sg%d:%s", reportKeyPrefix, gen, key)
}

func (c *redisReportCache) generation(ctx context.Context) (int64, error) {
	gen, err := c.rdb.Get(ctx, reportGenKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("report cache generation: %w", err)
	}
	return gen, nil
}

func (c *redisReportCache) Get(ctx context.Context, key string, dst any) (bool, int64, error) {
	gen, err := c.generation(ctx)
	if err != nil {
		return false, 0, err
	}
	raw, err := c.rdb.Get(ctx, reportEntryKey(gen, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, gen, nil
	}
	if err != nil {
		return false, gen, fmt.Errorf("report cache get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, gen, fmt.Errorf("report cache decode %s: %w", key, err)
	}
	return true, gen, nil
}

func (c *redisReportCache) Set(ctx context.Context, gen int64, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("report cache encode %s: %w", key, err)
	}
	if err := c.rdb.Set(ctx, reportEntryKey(gen, key), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("report cache set %s: %w", key, err)
	}
	return nil
}

// Invalidate bumps the generation. Entries of older generations are no
// longer read and expire with their TTL.
func (c *redisReportCache) Invalidate(ctx context.Context) error {
	if err := c.rdb.Incr(ctx, reportGenKey).Err(); err != nil {
		return fmt.Errorf("report cache invalidate: %w", err)
	}
	return nil
}

// NopReportCache never stores anything.
type NopReportCache struct{}

func (NopReportCache) Get(context.Context, string, any) (bool, int64, error) { return false, 0, nil }
func (NopReportCache) Set(context.Context, int64, string, any) error         { return nil }
func (NopReportCache) Invalidate(context.Context) error                      { return nil }
