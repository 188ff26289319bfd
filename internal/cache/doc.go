// AgriSat - Satellite Agriculture Learning Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agrisat

/*
Package cache provides the shared response cache used by every API route.

# Overview

The package is split in two layers:

  - Store: a byte-oriented key/value backend with per-entry TTL. Three
    implementations exist: MemoryStore (bounded LRU, default), BadgerStore
    (embedded, persistent) and RedisStore (external, prefix-namespaced).
  - Cache: a JSON facade over a Store. It maps data categories to TTLs,
    tracks hit/miss statistics, reports Prometheus metrics and coalesces
    concurrent misses on the same key with singleflight.

# Categories

Every cached payload belongs to a Category with a fixed TTL:

	realtime   5m    live indicator snapshots, cache stats
	weather    15m   forecasts
	market     30m   commodity prices
	farm       30m   farm overview and farm data
	satellite  1h    NDVI, crop health, soil analysis, earth imagery
	terrain    24h   elevation and terrain grids
	reference  24h   crop database, scenarios, leaderboard
	static     7d    educational content, modules, assessments

Unknown categories use DefaultTTL (30m).

# Expiry

An entry stored at t with TTL d is fresh while now - t < d. MemoryStore
expires lazily on read and, when full, drops expired entries near the LRU
tail before evicting the least recently used one. A supervised janitor
calls CleanupExpired periodically; correctness never depends on it.

# Usage

	c := cache.New(cache.NewMemoryStore(cfg.Cache.MaxEntries), "memory")

	key := cache.Key("farm-data", lat, lng, date)
	data, status, err := cache.Fetch(ctx, c, key, cache.CategorySatellite,
	    func(ctx context.Context) (*nasa.FarmData, error) {
	        return svc.loadFarmData(ctx, lat, lng, date)
	    })

	// Invalidate every NASA entry.
	n, err := c.Clear(ctx, "nasa")
*/
package cache
