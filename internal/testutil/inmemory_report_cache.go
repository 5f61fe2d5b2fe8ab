package testutil

import (
	"context"
	"encoding/json"
	"sync"

	"gulmohar/billing/internal/cache"
)

type reportEntry struct {
	gen int64
	raw []byte
}

// InMemoryReportCache implements cache.ReportCache with the same generation
// rules as the Redis cache.
type InMemoryReportCache struct {
	mu      sync.Mutex
	gen     int64
	entries map[string]reportEntry
}

func NewInMemoryReportCache() *InMemoryReportCache {
	return &InMemoryReportCache{entries: make(map[string]reportEntry)}
}

var _ cache.ReportCache = (*InMemoryReportCache)(nil)

func (c *InMemoryReportCache) Get(_ context.Context, key string, dst any) (bool, int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || e.gen != c.gen {
		return false, c.gen, nil
	}
	return true, c.gen, json.Unmarshal(e.raw, dst)
}

func (c *InMemoryReportCache) Set(_ context.Context, gen int64, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return nil
	}
	c.entries[key] = reportEntry{gen: gen, raw: raw}
	return nil
}

func (c *InMemoryReportCache) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	return nil
}

// Generation reports how many times the cache was invalidated.
func (c *InMemoryReportCache) Generation() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}
