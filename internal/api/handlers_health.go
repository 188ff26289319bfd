// AgriSat - Satellite Agriculture Learning Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agrisat

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/agrisat/internal/logging"
)

// HealthLive handles Kubernetes-style liveness checks.
// Returns 200 OK if the process is alive, regardless of dependencies.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	})
}

// HealthReady handles Kubernetes-style readiness checks.
// Returns 200 OK only when the cache store and the session store answer;
// 503 otherwise.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	checks := map[string]string{"cache": "ok", "sessions": "ok"}
	ready := true

	if _, err := h.cache.Stats(ctx); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("Readiness check: cache store unavailable")
		checks["cache"] = err.Error()
		ready = false
	}
	if _, err := h.sessions.Stats(ctx); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("Readiness check: session store unavailable")
		checks["sessions"] = err.Error()
		ready = false
	}

	status := http.StatusOK
	if !ready {
		status = http.StatusServiceUnavailable
	}
	NewResponseWriter(w, r).Status(status, ready, map[string]interface{}{
		"ready":           ready,
		"checks":          checks,
		"realNasaData":    h.nasa.RealDataEnabled(),
		"uptime":          time.Since(h.startTime).Seconds(),
		"sessionDuration": h.sessions.Duration().String(),
	})
}
