// AgriSat - Satellite Agriculture Learning Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agrisat

package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// badgerKeyPrefix namespaces cache keys so the DB can be shared with other stores.
const badgerKeyPrefix = "cache:"

// BadgerStore is a persistent Store on BadgerDB. Expiry uses badger's native
// per-entry TTL, so expired keys are invisible to reads and reclaimed on compaction.
type BadgerStore struct {
	db     *badger.DB
	ownsDB bool
}

// NewBadgerStore opens (or creates) a BadgerDB at path.
func NewBadgerStore(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil // Suppress BadgerDB logs

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db for cache: %w", err)
	}
	return &BadgerStore{db: db, ownsDB: true}, nil
}

// NewBadgerStoreFromDB wraps an existing DB. Close leaves the DB open.
func NewBadgerStoreFromDB(db *badger.DB) *BadgerStore {
	return &BadgerStore{db: db}
}

// Get returns the value for key if it has not expired.
func (s *BadgerStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(badgerKeyPrefix + key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get cache entry: %w", err)
	}
	return value, true, nil
}

// Set stores value with the given TTL.
func (s *BadgerStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(badgerKeyPrefix+key), value).WithTTL(ttl)
		return txn.SetEntry(e)
	})
	if err != nil {
		return fmt.Errorf("set cache entry: %w", err)
	}
	return nil
}

// Delete removes key.
func (s *BadgerStore) Delete(_ context.Context, key string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(badgerKeyPrefix + key))
	})
	if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("delete cache entry: %w", err)
	}
	return nil
}

// Clear deletes every cache key, or only those containing filter.
func (s *BadgerStore) Clear(ctx context.Context, filter string) (int, error) {
	keys, err := s.scanKeys(ctx, filter)
	if err != nil {
		return 0, err
	}
	if len(keys) == 0 {
		return 0, nil
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()
	for _, k := range keys {
		if err := wb.Delete(k); err != nil {
			return 0, fmt.Errorf("delete cache entry: %w", err)
		}
	}
	if err := wb.Flush(); err != nil {
		return 0, fmt.Errorf("flush cache deletes: %w", err)
	}
	return len(keys), nil
}

// CleanupExpired triggers value log GC. Expired keys are already hidden by
// badger, so the removed count is always 0.
func (s *BadgerStore) CleanupExpired(_ context.Context) (int, error) {
	if s.db.IsClosed() {
		return 0, ErrClosed
	}
	if err := s.db.RunValueLogGC(0.5); err != nil && !errors.Is(err, badger.ErrNoRewrite) {
		// In-memory DBs reject value log GC.
		if !errors.Is(err, badger.ErrGCInMemoryMode) {
			return 0, fmt.Errorf("badger value log gc: %w", err)
		}
	}
	return 0, nil
}

// Len counts live cache keys.
func (s *BadgerStore) Len(ctx context.Context) (int, error) {
	keys, err := s.scanKeys(ctx, "")
	return len(keys), err
}

// Close closes the DB when the store opened it.
func (s *BadgerStore) Close() error {
	if s.ownsDB {
		return s.db.Close()
	}
	return nil
}

func (s *BadgerStore) scanKeys(ctx context.Context, filter string) ([][]byte, error) {
	var keys [][]byte
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(badgerKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			k := it.Item().KeyCopy(nil)
			if filter == "" || strings.Contains(string(k[len(prefix):]), filter) {
				keys = append(keys, k)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan cache keys: %w", err)
	}
	return keys, nil
}

var _ Store = (*BadgerStore)(nil)
