// AgriSat - Satellite Agriculture Learning Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agrisat

package config

import (
	"time"
)

// Config holds all application configuration.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in defaults for every setting
//  2. Config File: Optional YAML config file (config.yaml)
//  3. Environment Variables: Override any mapped setting
//
// Example:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    logging.Fatal().Err(err).Msg("Failed to load config")
//	}
//	client := nasa.NewClient(cfg.NASA)
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	NASA     NASAConfig     `koanf:"nasa"`
	Cache    CacheConfig    `koanf:"cache"`
	Session  SessionConfig  `koanf:"session"`
	Security SecurityConfig `koanf:"security"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"` // development, staging, production
}

// NASAConfig holds settings for the outbound NASA clients.
//
// Real upstream data is only requested when EnableRealData is set AND an
// APIKey is configured. There is no built-in demo key.
type NASAConfig struct {
	APIKey         string        `koanf:"api_key"`
	EnableRealData bool          `koanf:"enable_real_data"`
	PowerURL       string        `koanf:"power_url"`
	EarthURL       string        `koanf:"earth_url"`
	APODURL        string        `koanf:"apod_url"`
	FeedURL        string        `koanf:"feed_url"`
	Timeout        time.Duration `koanf:"timeout"`
	Retries        int           `koanf:"retries"`
	RatePerHour    int           `koanf:"rate_per_hour"`

	// Circuit breaker
	BreakerMaxRequests  uint32        `koanf:"breaker_max_requests"`
	BreakerInterval     time.Duration `koanf:"breaker_interval"`
	BreakerTimeout      time.Duration `koanf:"breaker_timeout"`
	BreakerMinRequests  uint32        `koanf:"breaker_min_requests"`
	BreakerFailureRatio float64       `koanf:"breaker_failure_ratio"`
}

// RealDataEnabled reports whether upstream NASA APIs should be called.
func (n NASAConfig) RealDataEnabled() bool {
	return n.EnableRealData && n.APIKey != ""
}

// CacheConfig selects and tunes the response cache backend.
type CacheConfig struct {
	Backend         string        `koanf:"backend"` // memory, badger, redis
	MaxEntries      int           `koanf:"max_entries"`
	CleanupInterval time.Duration `koanf:"cleanup_interval"`
	BadgerPath      string        `koanf:"badger_path"`
	RedisAddr       string        `koanf:"redis_addr"`
	RedisPassword   string        `koanf:"redis_password"`
	RedisDB         int           `koanf:"redis_db"`
	RedisPrefix     string        `koanf:"redis_prefix"`
}

// SessionConfig holds guest session settings.
type SessionConfig struct {
	Duration      time.Duration `koanf:"duration"`
	SweepInterval time.Duration `koanf:"sweep_interval"`
	Store         string        `koanf:"store"` // memory, badger
	StorePath     string        `koanf:"store_path"`
}

// SecurityConfig holds CORS and rate limiting settings.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	Caller bool `koanf:"caller"`
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// Load reads configuration from defaults, an optional config file and the
// environment, then validates it.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
