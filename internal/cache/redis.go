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

	"github.com/redis/go-redis/v9"
)

// redisScanCount is the COUNT hint passed to SCAN.
const redisScanCount = 500

// RedisOptions configures NewRedisStore.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// RedisStore is a Store on an external Redis server. Every key is prefixed
// so several deployments can share one Redis database.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisStore connects to Redis and verifies the connection with PING.
func NewRedisStore(ctx context.Context, opts RedisOptions) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return NewRedisStoreFromClient(client, opts.Prefix), nil
}

// NewRedisStoreFromClient wraps an existing client.
func NewRedisStoreFromClient(client redis.UniversalClient, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

// Get returns the value for key. Redis drops expired keys itself.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	return val, true, nil
}

// Set stores value with a TTL.
func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.prefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Delete removes key.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Clear removes all prefixed keys, or those whose unprefixed key contains filter.
func (s *RedisStore) Clear(ctx context.Context, filter string) (int, error) {
	removed := 0
	err := s.scan(ctx, filter, func(keys []string) error {
		n, err := s.client.Del(ctx, keys...).Result()
		removed += int(n)
		return err
	})
	if err != nil {
		return removed, fmt.Errorf("redis clear: %w", err)
	}
	return removed, nil
}

// CleanupExpired is a no-op: Redis expires keys on its own.
func (s *RedisStore) CleanupExpired(_ context.Context) (int, error) {
	return 0, nil
}

// Len counts prefixed keys.
func (s *RedisStore) Len(ctx context.Context) (int, error) {
	count := 0
	err := s.scan(ctx, "", func(keys []string) error {
		count += len(keys)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("redis scan: %w", err)
	}
	return count, nil
}

// Close closes the client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Pattern returns the SCAN MATCH pattern for a substring filter.
func (s *RedisStore) Pattern(filter string) string {
	if filter == "" {
		return escapeGlob(s.prefix) + "*"
	}
	return escapeGlob(s.prefix) + "*" + escapeGlob(filter) + "*"
}

func (s *RedisStore) scan(ctx context.Context, filter string, fn func(keys []string) error) error {
	match := s.Pattern(filter)
	var cursor uint64
	for {
		keys, next, err := s.client.Scan(ctx, cursor, match, redisScanCount).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := fn(keys); err != nil {
				return err
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

var globEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)

func escapeGlob(s string) string {
	return globEscaper.Replace(s)
}

var _ Store = (*RedisStore)(nil)
