// AgriSat - Satellite Agriculture Learning Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agrisat

// Package logging provides the zerolog-based structured logger used across AgriSat.
//
// The package keeps one global logger, configured once from main:
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//	logging.Info().Str("addr", addr).Msg("HTTP server listening")
//
// Handlers should log through the request context so that the request and
// correlation IDs set by the API middleware are attached to every line:
//
//	logging.Ctx(r.Context()).Warn().Err(err).Str("action", action).Msg("NASA upstream failed, serving fallback")
//
// Long-lived components create a component logger once:
//
//	log := logging.WithComponent("session-sweeper")
//
// NewSlogLogger bridges the global logger to log/slog for libraries that
// require it (suture's event hook via sutureslog).
//
// Configuration is read from the logging section of the config (LOG_LEVEL,
// LOG_FORMAT, LOG_CALLER).
package logging
