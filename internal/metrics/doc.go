// AgriSat - Satellite Agriculture Learning Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agrisat

/*
Package metrics provides Prometheus instrumentation for AgriSat.

All collectors are registered on the default registry via promauto and are
exposed on GET /metrics.

# Metric Families

  - api_*: request counts, latency, in-flight requests and per-action outcomes
  - cache_*: hits and misses per backend and category, evictions by reason,
    entry gauge, single-flight shared loads and load latency
  - nasa_*: upstream request counts and latency per API, synthetic fallbacks
  - circuit_breaker_*: state gauge, request results and transitions
  - guest_sessions_*: created, expired and active sessions
  - analytics_events_published_total: analytics bus traffic
  - learning_*: module completions and assessment submissions

# Usage

	start := time.Now()
	metrics.TrackActiveRequest(true)
	defer metrics.TrackActiveRequest(false)
	// ... handle request ...
	metrics.RecordAPIRequest(r.Method, "/api/nasa-data", "200", time.Since(start))
*/
package metrics
