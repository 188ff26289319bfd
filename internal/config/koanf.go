// AgriSat - Satellite Agriculture Learning Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agrisat

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/agrisat/config.yaml",
	"/etc/agrisat/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			Host:            "0.0.0.0",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			Environment:     "development",
		},
		NASA: NASAConfig{
			APIKey:              "", // never defaulted
			EnableRealData:      false,
			PowerURL:            "https://power.larc.nasa.gov/api/temporal/daily/point",
			EarthURL:            "https://api.nasa.gov/planetary/earth/assets",
			APODURL:             "https://api.nasa.gov/planetary/apod",
			FeedURL:             "https://earthobservatory.nasa.gov/feeds/earth-observatory.rss",
			Timeout:             10 * time.Second,
			Retries:             2,
			RatePerHour:         1000, // api.nasa.gov registered key quota
			BreakerMaxRequests:  3,
			BreakerInterval:     time.Minute,
			BreakerTimeout:      30 * time.Second,
			BreakerMinRequests:  5,
			BreakerFailureRatio: 0.6,
		},
		Cache: CacheConfig{
			Backend:         "memory",
			MaxEntries:      10000,
			CleanupInterval: 5 * time.Minute,
			BadgerPath:      "/data/cache",
			RedisAddr:       "localhost:6379",
			RedisPrefix:     "agrisat:",
		},
		Session: SessionConfig{
			Duration:      4 * time.Hour,
			SweepInterval: 30 * time.Minute,
			Store:         "memory",
			StorePath:     "/data/sessions",
		},
		Security: SecurityConfig{
			CORSOrigins:       []string{"*"},
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any mapped setting
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Environment variables (highest priority)
	// NASA_API_KEY -> nasa.api_key, HTTP_PORT -> server.port
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first config file found, or "" if none exists.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars arrive as strings while YAML already yields slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to koanf paths.
// Unmapped variables are ignored so the process environment cannot leak into config.
var envMappings = map[string]string{
	// Server
	"http_port":             "server.port",
	"http_host":             "server.host",
	"http_read_timeout":     "server.read_timeout",
	"http_write_timeout":    "server.write_timeout",
	"http_idle_timeout":     "server.idle_timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",
	"environment":           "server.environment",

	// NASA upstreams. The NEXT_PUBLIC_ name is kept so existing
	// deployments of the web front end can share one env file.
	"nasa_api_key":                      "nasa.api_key",
	"enable_real_nasa_data":             "nasa.enable_real_data",
	"next_public_enable_real_nasa_data": "nasa.enable_real_data",
	"nasa_power_url":                    "nasa.power_url",
	"nasa_earth_url":                    "nasa.earth_url",
	"nasa_apod_url":                     "nasa.apod_url",
	"nasa_feed_url":                     "nasa.feed_url",
	"nasa_timeout":                      "nasa.timeout",
	"nasa_retries":                      "nasa.retries",
	"nasa_rate_per_hour":                "nasa.rate_per_hour",
	"nasa_breaker_max_requests":         "nasa.breaker_max_requests",
	"nasa_breaker_interval":             "nasa.breaker_interval",
	"nasa_breaker_timeout":              "nasa.breaker_timeout",
	"nasa_breaker_min_requests":         "nasa.breaker_min_requests",
	"nasa_breaker_failure_ratio":        "nasa.breaker_failure_ratio",

	// Cache
	"cache_backend":          "cache.backend",
	"cache_max_entries":      "cache.max_entries",
	"cache_cleanup_interval": "cache.cleanup_interval",
	"cache_badger_path":      "cache.badger_path",
	"redis_addr":             "cache.redis_addr",
	"redis_password":         "cache.redis_password",
	"redis_db":               "cache.redis_db",
	"redis_prefix":           "cache.redis_prefix",

	// Guest sessions
	"session_duration":       "session.duration",
	"session_sweep_interval": "session.sweep_interval",
	"session_store":          "session.store",
	"session_store_path":     "session.store_path",

	// Security
	"cors_origins":        "security.cors_origins",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - NASA_API_KEY -> nasa.api_key
//   - NEXT_PUBLIC_ENABLE_REAL_NASA_DATA -> nasa.enable_real_data
//   - HTTP_PORT -> server.port
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}
