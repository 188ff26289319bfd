// AgriSat - Satellite Agriculture Learning Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agrisat

package cache

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"time"

	"github.com/tomtom215/agrisat/internal/metrics"
)

// expiredSample is how many of the least recently used entries are checked
// for expiry before an LRU eviction takes place.
const expiredSample = 8

// memoryEntry is a node in the LRU list.
type memoryEntry struct {
	key      string
	value    []byte
	storedAt time.Time
	ttl      time.Duration
	prev     *memoryEntry
	next     *memoryEntry
}

// expired reports whether now - storedAt >= ttl.
func (e *memoryEntry) expired(now time.Time) bool {
	return now.Sub(e.storedAt) >= e.ttl
}

// MemoryStore is a bounded in-process Store with LRU eviction and lazy TTL
// expiry.
//
// A hashmap gives O(1) lookup and a doubly-linked list with sentinel nodes
// keeps recency order: head.next is the most recently used entry and
// tail.prev the least recently used one.
type MemoryStore struct {
	mu sync.Mutex

	capacity int
	now      func() time.Time

	items map[string]*memoryEntry
	head  *memoryEntry
	tail  *memoryEntry

	evictions   uint64
	expirations uint64
	closed      bool
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) {
		s.now = now
	}
}

// NewMemoryStore creates a store holding at most capacity entries.
func NewMemoryStore(capacity int, opts ...MemoryOption) *MemoryStore {
	if capacity <= 0 {
		capacity = 10000
	}

	s := &MemoryStore{
		capacity: capacity,
		now:      time.Now,
		items:    make(map[string]*memoryEntry),
		head:     &memoryEntry{},
		tail:     &memoryEntry{},
	}
	s.head.next = s.tail
	s.tail.prev = s.head

	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the stored value if present and fresh. Expired entries are
// removed and reported as a miss. Hits move the entry to the front.
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, false, ErrClosed
	}

	entry, ok := s.items[key]
	if !ok {
		return nil, false, nil
	}
	if entry.expired(s.now()) {
		s.removeEntry(entry)
		s.recordExpiry(1)
		return nil, false, nil
	}

	s.moveToFront(entry)
	return bytes.Clone(entry.value), true, nil
}

// Set inserts or fully replaces an entry.
func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	// Copy so callers can't mutate cached bytes.
	buf := make([]byte, len(value))
	copy(buf, value)

	now := s.now()
	if entry, ok := s.items[key]; ok {
		entry.value = buf
		entry.storedAt = now
		entry.ttl = ttl
		s.moveToFront(entry)
		return nil
	}

	entry := &memoryEntry{key: key, value: buf, storedAt: now, ttl: ttl}
	s.addToFront(entry)
	s.items[key] = entry

	if len(s.items) > s.capacity {
		s.makeRoom(now)
	}
	return nil
}

// Delete removes a key. Missing keys are not an error.
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry, ok := s.items[key]; ok {
		s.removeEntry(entry)
	}
	return nil
}

// Clear removes all keys, or only keys containing filter.
func (s *MemoryStore) Clear(_ context.Context, filter string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if filter == "" {
		n := len(s.items)
		s.items = make(map[string]*memoryEntry)
		s.head.next = s.tail
		s.tail.prev = s.head
		return n, nil
	}

	removed := 0
	for key, entry := range s.items {
		if strings.Contains(key, filter) {
			s.removeEntry(entry)
			removed++
		}
	}
	return removed, nil
}

// CleanupExpired walks the list from oldest to newest and drops expired entries.
func (s *MemoryStore) CleanupExpired(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for entry := s.tail.prev; entry != s.head; {
		prev := entry.prev
		if entry.expired(now) {
			s.removeEntry(entry)
			removed++
		}
		entry = prev
	}
	s.recordExpiry(removed)
	return removed, nil
}

// Len returns the number of stored entries, including expired ones not yet collected.
func (s *MemoryStore) Len(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items), nil
}

// Counters implements CounterReporter.
func (s *MemoryStore) Counters() StoreCounters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return StoreCounters{Evictions: s.evictions, Expirations: s.expirations}
}

// Close drops all entries. Later calls to Get and Set return ErrClosed.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.items = make(map[string]*memoryEntry)
	s.head.next = s.tail
	s.tail.prev = s.head
	return nil
}

// Internal methods (must be called with lock held)

// makeRoom first drops expired entries among the least recently used
// ones, then evicts from the tail until the store fits its capacity.
func (s *MemoryStore) makeRoom(now time.Time) {
	checked := 0
	for entry := s.tail.prev; entry != s.head && checked < expiredSample; checked++ {
		prev := entry.prev
		if entry.expired(now) {
			s.removeEntry(entry)
			s.recordExpiry(1)
		}
		entry = prev
	}

	for len(s.items) > s.capacity {
		oldest := s.tail.prev
		if oldest == s.head {
			return
		}
		s.removeEntry(oldest)
		s.evictions++
		metrics.CacheEvictions.WithLabelValues("memory", "lru").Inc()
	}
}

func (s *MemoryStore) recordExpiry(n int) {
	if n == 0 {
		return
	}
	s.expirations += uint64(n)
	metrics.CacheEvictions.WithLabelValues("memory", "expired").Add(float64(n))
}

func (s *MemoryStore) addToFront(entry *memoryEntry) {
	entry.prev = s.head
	entry.next = s.head.next
	s.head.next.prev = entry
	s.head.next = entry
}

func (s *MemoryStore) moveToFront(entry *memoryEntry) {
	entry.prev.next = entry.next
	entry.next.prev = entry.prev
	s.addToFront(entry)
}

func (s *MemoryStore) removeEntry(entry *memoryEntry) {
	entry.prev.next = entry.next
	entry.next.prev = entry.prev
	delete(s.items, entry.key)
}

var _ Store = (*MemoryStore)(nil)
