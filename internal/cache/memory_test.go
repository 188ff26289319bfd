// AgriSat - Satellite Agriculture Learning Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agrisat

package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
)

// fakeClock is a manually advanced clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestMemoryStore_HitReturnsIdenticalPayload(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewMemoryStore(10)

	payload := []byte(`{"ndvi":0.72,"soilMoisture":0.31}`)
	if err := s.Set(ctx, "farm-data-1", payload, time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	got, ok, err := s.Get(ctx, "farm-data-1")
	if err != nil || !ok {
		t.Fatalf("Get() = _, %v, %v; want hit", ok, err)
	}
	if string(got) != string(payload) {
		t.Errorf("Get() = %s, want %s", got, payload)
	}

	// Mutating the caller's slice must not affect the stored copy.
	payload[2] = 'X'
	got, _, _ = s.Get(ctx, "farm-data-1")
	if got[2] == 'X' {
		t.Error("stored value shares memory with caller slice")
	}

	// Nor may mutating a returned slice.
	got[3] = 'Y'
	again, _, _ := s.Get(ctx, "farm-data-1")
	if string(again) != `{"ndvi":0.72,"soilMoisture":0.31}` {
		t.Errorf("stored value changed through a returned slice: %s", again)
	}
}

func TestMemoryStore_ExpiryBoundary(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	clock := newFakeClock()
	s := NewMemoryStore(10, WithClock(clock.Now))

	const ttl = 15 * time.Minute
	if err := s.Set(ctx, "weather-1", []byte(`1`), ttl); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	clock.Advance(ttl - time.Millisecond)
	if _, ok, _ := s.Get(ctx, "weather-1"); !ok {
		t.Fatal("entry should be fresh just before its TTL")
	}

	clock.Advance(2 * time.Millisecond)
	if _, ok, _ := s.Get(ctx, "weather-1"); ok {
		t.Fatal("entry should be expired just after its TTL")
	}
	if n, _ := s.Len(ctx); n != 0 {
		t.Errorf("expired entry should be removed on read, Len() = %d", n)
	}
	if c := s.Counters(); c.Expirations != 1 {
		t.Errorf("Expirations = %d, want 1", c.Expirations)
	}
}

func TestMemoryStore_ExpiredAtExactTTL(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	clock := newFakeClock()
	s := NewMemoryStore(10, WithClock(clock.Now))

	_ = s.Set(ctx, "k", []byte(`1`), time.Minute)
	clock.Advance(time.Minute)
	if _, ok, _ := s.Get(ctx, "k"); ok {
		t.Error("entry should be expired when now - storedAt == ttl")
	}
}

func TestMemoryStore_ClearScoped(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewMemoryStore(100)

	keys := []string{"nasa-farm-data-1", "nasa-weather-2", "farm-overview-1", "market-data", "crop-nasa-ref"}
	for _, k := range keys {
		_ = s.Set(ctx, k, []byte(`{}`), time.Hour)
	}

	n, err := s.Clear(ctx, "nasa")
	if err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if n != 3 {
		t.Errorf("Clear(nasa) removed %d, want 3", n)
	}

	for _, k := range []string{"farm-overview-1", "market-data"} {
		if _, ok, _ := s.Get(ctx, k); !ok {
			t.Errorf("%q should survive Clear(nasa)", k)
		}
	}
	for _, k := range []string{"nasa-farm-data-1", "nasa-weather-2", "crop-nasa-ref"} {
		if _, ok, _ := s.Get(ctx, k); ok {
			t.Errorf("%q should be removed by Clear(nasa)", k)
		}
	}

	n, _ = s.Clear(ctx, "")
	if n != 2 {
		t.Errorf("Clear(\"\") removed %d, want 2", n)
	}
	if l, _ := s.Len(ctx); l != 0 {
		t.Errorf("Len() after full clear = %d", l)
	}
}

func TestMemoryStore_LRUEviction(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewMemoryStore(3)

	_ = s.Set(ctx, "a", []byte(`1`), time.Hour)
	_ = s.Set(ctx, "b", []byte(`2`), time.Hour)
	_ = s.Set(ctx, "c", []byte(`3`), time.Hour)

	// Touch 'a' so 'b' becomes least recently used.
	_, _, _ = s.Get(ctx, "a")
	_ = s.Set(ctx, "d", []byte(`4`), time.Hour)

	if _, ok, _ := s.Get(ctx, "b"); ok {
		t.Error("expected 'b' to be evicted")
	}
	for _, k := range []string{"a", "c", "d"} {
		if _, ok, _ := s.Get(ctx, k); !ok {
			t.Errorf("expected %q to be present", k)
		}
	}
	if n, _ := s.Len(ctx); n != 3 {
		t.Errorf("Len() = %d, want capacity 3", n)
	}
	if c := s.Counters(); c.Evictions != 1 {
		t.Errorf("Evictions = %d, want 1", c.Evictions)
	}
}

func TestMemoryStore_EvictsExpiredBeforeLRU(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	clock := newFakeClock()
	s := NewMemoryStore(3, WithClock(clock.Now))

	_ = s.Set(ctx, "old", []byte(`1`), time.Hour)
	_ = s.Set(ctx, "short", []byte(`2`), time.Minute)
	_ = s.Set(ctx, "fresh", []byte(`3`), time.Hour)
	// 'old' is now least recently used; 'short' is expired.
	clock.Advance(2 * time.Minute)
	_, _, _ = s.Get(ctx, "fresh")

	_ = s.Set(ctx, "new", []byte(`4`), time.Hour)

	if _, ok, _ := s.Get(ctx, "old"); !ok {
		t.Error("'old' should survive because an expired entry was dropped instead")
	}
	if c := s.Counters(); c.Evictions != 0 || c.Expirations != 1 {
		t.Errorf("Counters() = %+v, want 0 evictions and 1 expiration", c)
	}
}

func TestMemoryStore_CleanupExpired(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	clock := newFakeClock()
	s := NewMemoryStore(100, WithClock(clock.Now))

	for i := 0; i < 5; i++ {
		_ = s.Set(ctx, fmt.Sprintf("rt-%d", i), []byte(`1`), 5*time.Minute)
	}
	_ = s.Set(ctx, "static", []byte(`1`), 7*24*time.Hour)

	clock.Advance(6 * time.Minute)
	n, err := s.CleanupExpired(ctx)
	if err != nil {
		t.Fatalf("CleanupExpired() error = %v", err)
	}
	if n != 5 {
		t.Errorf("CleanupExpired() = %d, want 5", n)
	}
	if l, _ := s.Len(ctx); l != 1 {
		t.Errorf("Len() = %d, want 1", l)
	}
}

func TestMemoryStore_ReplaceResetsTTL(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	clock := newFakeClock()
	s := NewMemoryStore(10, WithClock(clock.Now))

	_ = s.Set(ctx, "k", []byte(`1`), time.Minute)
	clock.Advance(50 * time.Second)
	_ = s.Set(ctx, "k", []byte(`2`), time.Minute)
	clock.Advance(50 * time.Second)

	got, ok, _ := s.Get(ctx, "k")
	if !ok || string(got) != "2" {
		t.Errorf("Get() = %s, %v; want replacement value still fresh", got, ok)
	}
}

func TestMemoryStore_Closed(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewMemoryStore(10)
	_ = s.Close()

	if err := s.Set(ctx, "k", []byte(`1`), time.Minute); err != ErrClosed {
		t.Errorf("Set() after Close error = %v, want ErrClosed", err)
	}
	if _, _, err := s.Get(ctx, "k"); err != ErrClosed {
		t.Errorf("Get() after Close error = %v, want ErrClosed", err)
	}
}

func TestMemoryStore_ConcurrentAccess(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewMemoryStore(50)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				key := fmt.Sprintf("k-%d", (g*200+i)%120)
				_ = s.Set(ctx, key, []byte(`1`), time.Minute)
				_, _, _ = s.Get(ctx, key)
				if i%50 == 0 {
					_, _ = s.Clear(ctx, "k-1")
				}
			}
		}(g)
	}
	wg.Wait()

	if n, _ := s.Len(ctx); n > 50 {
		t.Errorf("Len() = %d exceeds capacity 50", n)
	}
}
