// AgriSat - Satellite Agriculture Learning Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agrisat

package cache

import (
	"context"
	"errors"
	"time"
)

// ErrClosed is returned by stores after Close.
var ErrClosed = errors.New("cache: store closed")

// Store is a byte-oriented key/value backend with per-entry TTL.
//
// Implementations must be safe for concurrent use. Get never returns an
// entry whose TTL has elapsed.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error

	// Clear removes every key when filter is empty, otherwise only keys
	// containing filter. It returns the number of removed keys.
	Clear(ctx context.Context, filter string) (int, error)

	// CleanupExpired removes expired entries and returns how many were removed.
	CleanupExpired(ctx context.Context) (int, error)

	Len(ctx context.Context) (int, error)
	Close() error
}

// StoreCounters are eviction counters reported by stores that track them.
type StoreCounters struct {
	Evictions   uint64
	Expirations uint64
}

// CounterReporter is implemented by stores that count their own removals.
type CounterReporter interface {
	Counters() StoreCounters
}
