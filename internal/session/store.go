// AgriSat - Satellite Agriculture Learning Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agrisat

package session

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Session errors.
var (
	// ErrSessionNotFound is returned when no session has the given id.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionExpired is returned when the session exists but is past its duration.
	ErrSessionExpired = errors.New("session expired")

	// ErrSessionExists is returned by Create for a duplicate id.
	ErrSessionExists = errors.New("session already exists")

	// ErrUnsupportedLanguage is returned for a language no supported locale matches.
	ErrUnsupportedLanguage = errors.New("unsupported language")

	// ErrInvalidLocation is returned for out-of-range farm coordinates.
	ErrInvalidLocation = errors.New("invalid farm location")
)

// Store persists guest sessions. Stores do not judge liveness except in
// CleanupExpired; the Manager owns the validity rule.
type Store interface {
	// Create stores a new session. Returns ErrSessionExists for a duplicate id.
	Create(ctx context.Context, s *GuestSession) error

	// Get returns a copy of the session or ErrSessionNotFound.
	Get(ctx context.Context, id string) (*GuestSession, error)

	// Update replaces an existing session or returns ErrSessionNotFound.
	Update(ctx context.Context, s *GuestSession) error

	// Delete removes a session. Returns ErrSessionNotFound if absent.
	Delete(ctx context.Context, id string) error

	// List returns copies of every stored session.
	List(ctx context.Context) ([]*GuestSession, error)

	// CleanupExpired removes sessions whose start time is at or before cutoff.
	CleanupExpired(ctx context.Context, cutoff time.Time) (int, error)

	// Count returns the number of stored sessions.
	Count(ctx context.Context) (int, error)
}

// MemoryStore is the default in-process Store. Sessions are lost on restart.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*GuestSession
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*GuestSession)}
}

// Create stores a copy of s.
func (m *MemoryStore) Create(_ context.Context, s *GuestSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[s.SessionID]; ok {
		return ErrSessionExists
	}
	m.sessions[s.SessionID] = s.Clone()
	return nil
}

// Get returns a copy of the session.
func (m *MemoryStore) Get(_ context.Context, id string) (*GuestSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s.Clone(), nil
}

// Update replaces the stored session with a copy of s.
func (m *MemoryStore) Update(_ context.Context, s *GuestSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[s.SessionID]; !ok {
		return ErrSessionNotFound
	}
	m.sessions[s.SessionID] = s.Clone()
	return nil
}

// Delete removes the session.
func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(m.sessions, id)
	return nil
}

// List returns copies of all sessions.
func (m *MemoryStore) List(_ context.Context) ([]*GuestSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*GuestSession, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s.Clone())
	}
	return out, nil
}

// CleanupExpired removes sessions started at or before cutoff.
func (m *MemoryStore) CleanupExpired(_ context.Context, cutoff time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for id, s := range m.sessions {
		if !s.SessionMeta.StartTime.After(cutoff) {
			delete(m.sessions, id)
			count++
		}
	}
	return count, nil
}

// Count returns the number of sessions.
func (m *MemoryStore) Count(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions), nil
}
