// AgriSat - Satellite Agriculture Learning Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agrisat

package config

import (
	"fmt"
	"time"
)

// Validate checks that the configuration is complete and within bounds.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateNASA(); err != nil {
		return err
	}
	if err := c.validateCache(); err != nil {
		return err
	}
	if err := c.validateSession(); err != nil {
		return err
	}
	if err := c.validateSecurity(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("HTTP_SHUTDOWN_TIMEOUT must be positive")
	}
	return nil
}

// validateNASA validates upstream settings. An empty API key is allowed:
// the service then serves synthetic data only.
func (c *Config) validateNASA() error {
	n := c.NASA
	endpoints := []struct {
		value, name string
	}{
		{n.PowerURL, "NASA_POWER_URL"},
		{n.EarthURL, "NASA_EARTH_URL"},
		{n.APODURL, "NASA_APOD_URL"},
		{n.FeedURL, "NASA_FEED_URL"},
	}
	for _, ep := range endpoints {
		if err := validateEndpointURL(ep.value, ep.name); err != nil {
			return err
		}
	}

	if n.Timeout <= 0 {
		return fmt.Errorf("NASA_TIMEOUT must be positive")
	}
	if n.Retries < 0 || n.Retries > 10 {
		return fmt.Errorf("NASA_RETRIES must be between 0 and 10")
	}
	if n.RatePerHour < 1 {
		return fmt.Errorf("NASA_RATE_PER_HOUR must be at least 1")
	}
	if n.BreakerFailureRatio <= 0 || n.BreakerFailureRatio > 1 {
		return fmt.Errorf("NASA_BREAKER_FAILURE_RATIO must be in (0, 1]")
	}
	if n.BreakerTimeout <= 0 {
		return fmt.Errorf("NASA_BREAKER_TIMEOUT must be positive")
	}
	return nil
}

var validCacheBackends = map[string]bool{
	"memory": true,
	"badger": true,
	"redis":  true,
}

func (c *Config) validateCache() error {
	if !validCacheBackends[c.Cache.Backend] {
		return fmt.Errorf("CACHE_BACKEND must be one of: memory, badger, redis")
	}
	if c.Cache.MaxEntries < 1 {
		return fmt.Errorf("CACHE_MAX_ENTRIES must be at least 1")
	}
	if c.Cache.CleanupInterval < time.Second {
		return fmt.Errorf("CACHE_CLEANUP_INTERVAL must be at least 1s")
	}
	switch c.Cache.Backend {
	case "badger":
		if c.Cache.BadgerPath == "" {
			return fmt.Errorf("CACHE_BADGER_PATH is required when CACHE_BACKEND=badger")
		}
	case "redis":
		if c.Cache.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required when CACHE_BACKEND=redis")
		}
	}
	return nil
}

func (c *Config) validateSession() error {
	if c.Session.Duration < time.Minute {
		return fmt.Errorf("SESSION_DURATION must be at least 1m")
	}
	if c.Session.SweepInterval < time.Second {
		return fmt.Errorf("SESSION_SWEEP_INTERVAL must be at least 1s")
	}
	switch c.Session.Store {
	case "memory":
	case "badger":
		if c.Session.StorePath == "" {
			return fmt.Errorf("SESSION_STORE_PATH is required when SESSION_STORE=badger")
		}
	default:
		return fmt.Errorf("SESSION_STORE must be one of: memory, badger")
	}
	return nil
}

// Rate limit constants
const (
	minRateLimitRequests = 1
	maxRateLimitRequests = 100000
	minRateLimitWindow   = time.Second
	maxRateLimitWindow   = time.Hour
)

func (c *Config) validateSecurity() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < minRateLimitRequests || c.Security.RateLimitReqs > maxRateLimitRequests {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be between %d and %d", minRateLimitRequests, maxRateLimitRequests)
	}
	if c.Security.RateLimitWindow < minRateLimitWindow || c.Security.RateLimitWindow > maxRateLimitWindow {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be between %v and %v", minRateLimitWindow, maxRateLimitWindow)
	}
	return nil
}

// HasWildcardCORS reports whether any origin is allowed.
func (c *Config) HasWildcardCORS() bool {
	for _, origin := range c.Security.CORSOrigins {
		if origin == "*" {
			return true
		}
	}
	return false
}

var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}
