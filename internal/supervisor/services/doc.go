// AgriSat - Satellite Agriculture Learning Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agrisat

/*
Package services provides suture.Service wrappers for AgriSat components.

  - HTTPServerService: ListenAndServe with graceful Shutdown on cancel
  - PeriodicService: a task on a fixed interval (session sweeper, cache
    janitor)

Each wrapper implements fmt.Stringer so suture logs name the service.
*/
package services
