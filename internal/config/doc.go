// AgriSat - Satellite Agriculture Learning Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agrisat

/*
Package config provides centralized configuration management for AgriSat.

Configuration is layered with Koanf v2: struct defaults, then an optional
YAML file (CONFIG_PATH, ./config.yaml or /etc/agrisat/config.yaml), then
environment variables. Only explicitly mapped environment variables are read.

# Configuration Structure

  - ServerConfig: HTTP listener and timeouts
  - NASAConfig: NASA POWER, Earth, APOD and Earth Observatory feed endpoints,
    API key, retries, outbound rate and circuit breaker thresholds
  - CacheConfig: response cache backend (memory, badger, redis) and bounds
  - SessionConfig: guest session lifetime, sweep interval and store
  - SecurityConfig: CORS origins and per-IP rate limiting
  - LoggingConfig: zerolog level and format

# Environment Variables

	NASA_API_KEY                       NASA api.nasa.gov key (no default)
	ENABLE_REAL_NASA_DATA              call NASA upstreams (needs a key)
	NEXT_PUBLIC_ENABLE_REAL_NASA_DATA  same as above, front-end spelling
	HTTP_PORT, HTTP_HOST               listener
	CACHE_BACKEND, CACHE_MAX_ENTRIES   cache backend and LRU bound
	REDIS_ADDR, REDIS_PREFIX           redis cache backend
	SESSION_DURATION, SESSION_STORE    guest sessions
	CORS_ORIGINS                       comma-separated list
	LOG_LEVEL, LOG_FORMAT              logging

# Example YAML

	server:
	  port: 8080
	nasa:
	  enable_real_data: true
	  timeout: 10s
	cache:
	  backend: redis
	  redis_addr: redis:6379
	session:
	  duration: 4h
*/
package config
