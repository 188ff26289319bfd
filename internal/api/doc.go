// AgriSat - Satellite Agriculture Learning Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agrisat

/*
Package api provides the HTTP surface of AgriSat.

Every route under /api is dispatched on the "action" query parameter:

	GET    /api/data-hub?action=farm-overview&lat=41.59&lng=-93.62
	POST   /api/data-hub?action=update-farm-data
	GET    /api/guest-session?action=create-session&name=Ada
	POST   /api/guest-session?action=update-preferences&sessionId=guest_...
	DELETE /api/guest-session?action=end-session&sessionId=guest_...
	GET    /api/learning-hub?action=modules&level=beginner
	POST   /api/learning-hub?action=complete-module
	GET    /api/nasa-data?action=weather&lat=-0.30&lng=36.08&date=2026-04-01

plus /health/live, /health/ready and /metrics.

Response envelope:

	{
	  "success": true,
	  "data": {...},
	  "cache": {"hit": true, "key": "...", "category": "weather", "ttlSeconds": 900, "status": "hit"},
	  "fallback": true,
	  "meta": {"requestId": "...", "timestamp": "...", "durationMs": 3}
	}

Status codes:

  - 400 VALIDATION_FAILED or BAD_REQUEST: invalid parameters or body, or an
    unknown action (details list the supported actions)
  - 401 UNAUTHORIZED: missing or expired guest session
  - 404 NOT_FOUND: unknown module, assessment, scenario, farm, field or crop
  - 500 INTERNAL_ERROR: panics and unexpected errors, with details
  - 200 with "fallback": true: NASA or the feed failed and synthetic data
    was served instead

Error mapping lives in writeServiceError; handlers only return errors.
*/
package api
