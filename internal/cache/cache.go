// AgriSat - Satellite Agriculture Learning Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agrisat

package cache

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/sync/singleflight"

	"github.com/tomtom215/agrisat/internal/logging"
	"github.com/tomtom215/agrisat/internal/metrics"
)

// Status values reported in Status.Status.
const (
	StatusHit    = "hit"
	StatusMiss   = "miss"
	StatusShared = "shared"
)

// Status describes how a Fetch was served. It is embedded as-is in API
// responses under "cache".
type Status struct {
	Hit        bool     `json:"hit"`
	Key        string   `json:"key"`
	Category   Category `json:"category"`
	TTLSeconds int64    `json:"ttlSeconds"`
	Status     string   `json:"status"`
}

// Degradable is implemented by values that can be stand-ins for the real
// data, such as synthetic fallbacks served while an upstream is failing.
// Fetch stores degraded values under DegradedCategory so the upstream is
// retried soon after it recovers.
type Degradable interface {
	Degraded() bool
}

// DegradedCategory bounds how long a degraded value is cached.
const DegradedCategory = CategoryRealtime

// effectiveCategory returns the category v is stored under.
func effectiveCategory(v any, category Category) Category {
	if d, ok := v.(Degradable); ok && d.Degraded() && DegradedCategory.TTL() < category.TTL() {
		return DegradedCategory
	}
	return category
}

// Stats is a snapshot of cache activity.
type Stats struct {
	Backend     string  `json:"backend"`
	Entries     int     `json:"entries"`
	Hits        uint64  `json:"hits"`
	Misses      uint64  `json:"misses"`
	Evictions   uint64  `json:"evictions"`
	Expirations uint64  `json:"expirations"`
	Loads       uint64  `json:"loads"`
	SharedLoads uint64  `json:"sharedLoads"`
	LoadErrors  uint64  `json:"loadErrors"`
	HitRate     float64 `json:"hitRate"`
}

// Cache is the JSON facade over a Store shared by every route. It maps
// categories to TTLs, keeps statistics and coalesces concurrent misses.
type Cache struct {
	store   Store
	backend string
	group   singleflight.Group

	hits       atomic.Uint64
	misses     atomic.Uint64
	loads      atomic.Uint64
	shared     atomic.Uint64
	loadErrors atomic.Uint64
}

// New wraps store. backend labels metrics and stats ("memory", "badger", "redis").
func New(store Store, backend string) *Cache {
	return &Cache{store: store, backend: backend}
}

// Store returns the underlying backend.
func (c *Cache) Store() Store {
	return c.store
}

// Get decodes the payload stored under key into dst. A false result with a
// nil error is a miss.
func (c *Cache) Get(ctx context.Context, key string, dst any) (bool, error) {
	return c.get(ctx, key, dst, "")
}

func (c *Cache) get(ctx context.Context, key string, dst any, category Category) (bool, error) {
	data, ok, err := c.store.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("cache get %s: %w", key, err)
	}
	if !ok {
		c.misses.Add(1)
		metrics.CacheMisses.WithLabelValues(c.backend, categoryLabel(category)).Inc()
		return false, nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		// A payload that no longer decodes is treated as a miss and dropped.
		_ = c.store.Delete(ctx, key)
		c.misses.Add(1)
		metrics.CacheMisses.WithLabelValues(c.backend, categoryLabel(category)).Inc()
		return false, fmt.Errorf("cache decode %s: %w", key, err)
	}
	c.hits.Add(1)
	metrics.CacheHits.WithLabelValues(c.backend, categoryLabel(category)).Inc()
	return true, nil
}

// Set stores value under key with the TTL of category, replacing any previous entry.
func (c *Cache) Set(ctx context.Context, key string, value any, category Category) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", key, err)
	}
	if err := c.store.Set(ctx, key, data, category.TTL()); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

// Delete removes key.
func (c *Cache) Delete(ctx context.Context, key string) error {
	return c.store.Delete(ctx, key)
}

// Clear removes every entry when filter is empty, otherwise the entries
// whose key contains filter.
func (c *Cache) Clear(ctx context.Context, filter string) (int, error) {
	n, err := c.store.Clear(ctx, filter)
	if err != nil {
		return n, fmt.Errorf("cache clear %q: %w", filter, err)
	}
	metrics.CacheEvictions.WithLabelValues(c.backend, "cleared").Add(float64(n))
	return n, nil
}

// Stats returns a snapshot of cache activity.
func (c *Cache) Stats(ctx context.Context) (Stats, error) {
	entries, err := c.store.Len(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("cache len: %w", err)
	}
	metrics.CacheEntries.WithLabelValues(c.backend).Set(float64(entries))

	s := Stats{
		Backend:     c.backend,
		Entries:     entries,
		Hits:        c.hits.Load(),
		Misses:      c.misses.Load(),
		Loads:       c.loads.Load(),
		SharedLoads: c.shared.Load(),
		LoadErrors:  c.loadErrors.Load(),
	}
	if r, ok := c.store.(CounterReporter); ok {
		counters := r.Counters()
		s.Evictions = counters.Evictions
		s.Expirations = counters.Expirations
	}
	if total := s.Hits + s.Misses; total > 0 {
		s.HitRate = float64(s.Hits) / float64(total)
	}
	return s, nil
}

// Fetch is cache-aside with single-flight: a hit decodes the stored value;
// on a miss exactly one load per key runs at a time and every concurrent
// caller for that key receives its result. Load errors are returned to all
// waiting callers and never cached. Loaded values that implement Degradable
// and report true are cached for the DegradedCategory TTL only.
//
// The load runs detached from the first caller's cancellation so that one
// client hanging up cannot fail the others; load is still expected to bound
// its own duration.
func Fetch[V any](ctx context.Context, c *Cache, key string, category Category, load func(context.Context) (V, error)) (V, Status, error) {
	status := Status{
		Key:        key,
		Category:   category,
		TTLSeconds: int64(category.TTL() / time.Second),
	}

	var cached V
	hit, err := c.get(ctx, key, &cached, category)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("Cache read failed, loading fresh value")
	}
	if hit {
		status.Hit = true
		status.Status = StatusHit
		status.TTLSeconds = int64(effectiveCategory(cached, category).TTL() / time.Second)
		return cached, status, nil
	}

	res, err, shared := c.group.Do(key, func() (any, error) {
		loadCtx := context.WithoutCancel(ctx)
		start := time.Now()
		c.loads.Add(1)

		v, err := load(loadCtx)
		metrics.CacheLoadDuration.WithLabelValues(string(category)).Observe(time.Since(start).Seconds())
		if err != nil {
			c.loadErrors.Add(1)
			return nil, err
		}
		if err := c.Set(loadCtx, key, v, effectiveCategory(v, category)); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("Cache write failed")
		}
		return v, nil
	})

	status.Status = StatusMiss
	if shared {
		c.shared.Add(1)
		metrics.CacheSharedLoads.Inc()
		status.Status = StatusShared
	}

	if err != nil {
		var zero V
		return zero, status, err
	}
	v, _ := res.(V)
	status.TTLSeconds = int64(effectiveCategory(v, category).TTL() / time.Second)
	return v, status, nil
}

func categoryLabel(c Category) string {
	if c == "" {
		return "none"
	}
	return string(c)
}
