// AgriSat - Satellite Agriculture Learning Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agrisat

/*
Package nasa aggregates agricultural indicators from NASA APIs with a
synthetic fallback.

Every action follows the same chain:

 1. the shared response cache (category TTL, single-flight loads)
 2. the real upstream, only when real data is enabled and an API key is set
 3. the bounded synthetic generator

An upstream failure never becomes an error for the caller. It is logged,
counted in agrisat_nasa_fallbacks_total, and replaced with synthetic data
flagged Fallback=true.

Upstream calls go through Client, which layers an outbound rate limiter,
a gobreaker circuit breaker, and go-retryablehttp retries under a per-call
timeout:

	client := nasa.NewClient(cfg.NASA)
	svc := nasa.NewService(client, responseCache, cfg.NASA.RealDataEnabled())
	res, status, err := svc.FarmData(ctx, nasa.Point{Lat: 41.59, Lng: -93.62}, "")
*/
package nasa
