// AgriSat - Satellite Agriculture Learning Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agrisat

/*
Package main is the entry point for the AgriSat server.

AgriSat serves NASA-backed farm data, guest sessions and a learning hub for
satellite agriculture over a JSON HTTP API.

# Application Architecture

	RootSupervisor ("agrisat")
	├── MaintenanceSupervisor ("maintenance-layer")
	│   ├── analytics-aggregator
	│   ├── session-sweeper
	│   ├── learner-pruner
	│   └── cache-janitor
	└── APISupervisor ("api-layer")
	    └── http-server

Component initialization order:

 1. Configuration: koanf v2 (defaults, optional config.yaml, environment)
 2. Logging: zerolog, JSON or console
 3. Cache store: memory (LRU), badger or redis
 4. Analytics bus: watermill gochannel
 5. Session store and manager: memory or badger
 6. NASA client and service, learning hub, data hub
 7. Chi router and HTTP server
 8. Supervisor tree, stopped by SIGINT or SIGTERM

# Configuration

Common environment variables:

	HTTP_PORT=8080
	LOG_LEVEL=info
	NASA_API_KEY=...                        # no default key is shipped
	ENABLE_REAL_NASA_DATA=true              # or NEXT_PUBLIC_ENABLE_REAL_NASA_DATA
	CACHE_BACKEND=memory|badger|redis
	SESSION_STORE=memory|badger

Real NASA calls are made only when enabled and a key is set; otherwise every
action serves bounded synthetic data.

# Example Usage

	export NASA_API_KEY=your-key
	export ENABLE_REAL_NASA_DATA=true
	./agrisat

	curl 'http://localhost:8080/api/nasa-data?action=weather&lat=-0.30&lng=36.08'
*/
package main
