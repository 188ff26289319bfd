// AgriSat - Satellite Agriculture Learning Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agrisat

package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/agrisat/internal/logging"
)

const badgerKeyPrefix = "guest_session:"

// BadgerStore persists sessions in BadgerDB so they survive restarts.
type BadgerStore struct {
	db     *badger.DB
	ownsDB bool
}

// NewBadgerStore opens a BadgerDB at path. Close releases it.
func NewBadgerStore(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db for sessions: %w", err)
	}
	return &BadgerStore{db: db, ownsDB: true}, nil
}

// NewBadgerStoreFromDB uses an existing DB. Close leaves it open.
func NewBadgerStoreFromDB(db *badger.DB) *BadgerStore {
	return &BadgerStore{db: db}
}

func sessionKey(id string) []byte {
	return []byte(badgerKeyPrefix + id)
}

// Create stores a new session.
func (b *BadgerStore) Create(_ context.Context, s *GuestSession) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	return b.db.Update(func(txn *badger.Txn) error {
		key := sessionKey(s.SessionID)
		if _, err := txn.Get(key); err == nil {
			return ErrSessionExists
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("get session: %w", err)
		}
		if err := txn.Set(key, data); err != nil {
			return fmt.Errorf("set session: %w", err)
		}
		return nil
	})
}

// Get retrieves a session by id.
func (b *BadgerStore) Get(_ context.Context, id string) (*GuestSession, error) {
	var s GuestSession
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(sessionKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrSessionNotFound
		}
		if err != nil {
			return fmt.Errorf("get session: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &s)
		})
	})
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Update replaces an existing session.
func (b *BadgerStore) Update(_ context.Context, s *GuestSession) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	return b.db.Update(func(txn *badger.Txn) error {
		key := sessionKey(s.SessionID)
		if _, err := txn.Get(key); errors.Is(err, badger.ErrKeyNotFound) {
			return ErrSessionNotFound
		} else if err != nil {
			return fmt.Errorf("get session: %w", err)
		}
		return txn.Set(key, data)
	})
}

// Delete removes a session.
func (b *BadgerStore) Delete(_ context.Context, id string) error {
	return b.db.Update(func(txn *badger.Txn) error {
		key := sessionKey(id)
		if _, err := txn.Get(key); errors.Is(err, badger.ErrKeyNotFound) {
			return ErrSessionNotFound
		} else if err != nil {
			return fmt.Errorf("get session: %w", err)
		}
		if err := txn.Delete(key); err != nil {
			return fmt.Errorf("delete session: %w", err)
		}
		return nil
	})
}

// scan calls fn for every stored record. s is nil when the record does
// not decode.
func (b *BadgerStore) scan(fn func(key []byte, s *GuestSession)) error {
	return b.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(badgerKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			val, err := item.ValueCopy(nil)
			if err != nil {
				return fmt.Errorf("read session: %w", err)
			}
			var s GuestSession
			if err := json.Unmarshal(val, &s); err != nil {
				fn(item.KeyCopy(nil), nil)
				continue
			}
			fn(item.KeyCopy(nil), &s)
		}
		return nil
	})
}

// List returns every stored session. Undecodable entries are skipped.
func (b *BadgerStore) List(_ context.Context) ([]*GuestSession, error) {
	var out []*GuestSession
	err := b.scan(func(_ []byte, s *GuestSession) {
		if s != nil {
			out = append(out, s)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return out, nil
}

// CleanupExpired removes sessions started at or before cutoff, along with
// records that no longer decode.
func (b *BadgerStore) CleanupExpired(ctx context.Context, cutoff time.Time) (int, error) {
	var stale [][]byte
	corrupt := 0
	err := b.scan(func(key []byte, s *GuestSession) {
		switch {
		case s == nil:
			corrupt++
			stale = append(stale, key)
		case !s.SessionMeta.StartTime.After(cutoff):
			stale = append(stale, key)
		}
	})
	if err != nil {
		return 0, fmt.Errorf("scan sessions: %w", err)
	}
	if len(stale) == 0 {
		return 0, nil
	}

	wb := b.db.NewWriteBatch()
	defer wb.Cancel()
	for _, key := range stale {
		if err := wb.Delete(key); err != nil {
			return 0, fmt.Errorf("delete session: %w", err)
		}
	}
	if err := wb.Flush(); err != nil {
		return 0, fmt.Errorf("flush session cleanup: %w", err)
	}
	if corrupt > 0 {
		logging.Ctx(ctx).Warn().Int("count", corrupt).Msg("Removed undecodable guest session records")
	}
	return len(stale), nil
}

// Count returns the number of stored sessions.
func (b *BadgerStore) Count(_ context.Context) (int, error) {
	count := 0
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(badgerKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			count++
		}
		return nil
	})
	return count, err
}

// Close closes the DB when the store opened it.
func (b *BadgerStore) Close() error {
	if b.ownsDB {
		return b.db.Close()
	}
	return nil
}
