// AgriSat - Satellite Agriculture Learning Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agrisat

/*
Package middleware provides HTTP infrastructure middleware shared by the API
router.

Key Components:

  - RequestID: assigns X-Request-ID and X-Correlation-ID and stores both in
    the logging context so every log line for a request carries them
  - PrometheusMetrics: request count, latency and in-flight gauge, labelled
    by chi route pattern

Both are plain func(http.Handler) http.Handler and compose with chi:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Group(func(r chi.Router) {
	    r.Use(middleware.PrometheusMetrics)
	    r.Get("/api/nasa-data", h.NASAData)
	})

See Also:

  - internal/api: router and handlers
  - internal/metrics: Prometheus metric definitions
*/
package middleware
