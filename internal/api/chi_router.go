// AgriSat - Satellite Agriculture Learning Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agrisat

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/agrisat/internal/middleware"
)

// compressionLevel is the gzip level for API responses.
const compressionLevel = 5

// Router wires the handlers into a chi router.
type Router struct {
	handler *Handler
	mw      *ChiMiddleware
}

// NewRouter creates a new router. A nil mw uses DefaultChiMiddlewareConfig.
func NewRouter(handler *Handler, mw *ChiMiddleware) *Router {
	if mw == nil {
		mw = NewChiMiddleware(nil)
	}
	return &Router{handler: handler, mw: mw}
}

// SetupChi builds the HTTP routing tree.
//
// Global middleware order:
//  1. RequestID: request and correlation ids in the logging context
//  2. RealIP: client address behind proxies, used by rate limiting
//  3. Recoverer: panics become 500 INTERNAL_ERROR envelopes
//  4. CORS
func (router *Router) SetupChi() chi.Router {
	r := chi.NewRouter()
	h := router.handler

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(Recoverer)
	r.Use(router.mw.CORS())

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		NewResponseWriter(w, req).NotFound("Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		NewResponseWriter(w, req).Error(http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "Method not allowed")
	})

	r.Route("/health", func(r chi.Router) {
		r.Use(router.mw.RateLimitHealth())
		r.Get("/live", h.HealthLive)
		r.Get("/ready", h.HealthReady)
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(router.mw.RateLimit())
		r.Use(APISecurityHeaders())
		r.Use(middleware.PrometheusMetrics)
		r.Use(chimiddleware.Compress(compressionLevel))

		r.Get("/data-hub", h.DataHubGet())
		r.Post("/data-hub", h.DataHubPost())

		r.Get("/guest-session", h.GuestSessionGet())
		r.Post("/guest-session", h.GuestSessionPost())
		r.Delete("/guest-session", h.GuestSessionDelete())

		r.Get("/learning-hub", h.LearningHubGet())
		r.Post("/learning-hub", h.LearningHubPost())

		r.Get("/nasa-data", h.NASAData())
	})

	return r
}
