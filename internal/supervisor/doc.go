// AgriSat - Satellite Agriculture Learning Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agrisat

/*
Package supervisor provides process supervision for AgriSat using suture v4.

# Overview

	RootSupervisor ("agrisat")
	├── MaintenanceSupervisor ("maintenance-layer")
	│   ├── session-sweeper (PeriodicService)
	│   ├── cache-janitor (PeriodicService)
	│   ├── learner-pruner (PeriodicService)
	│   └── analytics-bus (events.Service)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Crashed services are restarted with suture's backoff; failures are counted
per layer. Supervisor events are logged through sutureslog into the zerolog
backed slog handler from internal/logging.

# Usage Example

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddMaintenanceService(services.NewPeriodicService("session-sweeper", time.Minute, sweeper.Sweep))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	err = tree.Serve(ctx)

See Also:

  - internal/supervisor/services: suture.Service wrappers
*/
package supervisor
