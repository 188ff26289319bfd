// AgriSat - Satellite Agriculture Learning Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agrisat

package api

import (
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/tomtom215/agrisat/internal/cache"
	"github.com/tomtom215/agrisat/internal/datahub"
	"github.com/tomtom215/agrisat/internal/learning"
	"github.com/tomtom215/agrisat/internal/metrics"
	"github.com/tomtom215/agrisat/internal/nasa"
	"github.com/tomtom215/agrisat/internal/session"
)

// Handler manages all HTTP request handlers and their dependencies.
//
// Each route is dispatched on the "action" query parameter. Actions return
// an actionResult or an error; errors are mapped to status codes by
// writeServiceError.
type Handler struct {
	nasa      *nasa.Service
	datahub   *datahub.Service
	sessions  *session.Manager
	learning  *learning.Hub
	cache     *cache.Cache
	startTime time.Time
}

// HandlerDeps groups the services a Handler dispatches to.
type HandlerDeps struct {
	NASA     *nasa.Service
	DataHub  *datahub.Service
	Sessions *session.Manager
	Learning *learning.Hub
	Cache    *cache.Cache
}

// NewHandler creates a new Handler.
func NewHandler(deps HandlerDeps) *Handler {
	return &Handler{
		nasa:      deps.NASA,
		datahub:   deps.DataHub,
		sessions:  deps.Sessions,
		learning:  deps.Learning,
		cache:     deps.Cache,
		startTime: time.Now(),
	}
}

// actionResult is the successful outcome of an action.
type actionResult struct {
	data     interface{}
	cache    *cache.Status
	fallback bool
	// failed reports success:false with a 200 status, used by
	// test-connection when NASA is unreachable.
	failed bool
}

func ok(data interface{}) actionResult {
	return actionResult{data: data}
}

func cached(data interface{}, status cache.Status, fallback bool) actionResult {
	if status.Key == "" {
		return actionResult{data: data, fallback: fallback}
	}
	return actionResult{data: data, cache: &status, fallback: fallback}
}

type actionFunc func(r *http.Request) (actionResult, error)

// dispatch returns a handler that runs the action named by the "action"
// query parameter. route labels the per-action metric.
func (h *Handler) dispatch(route string, actions map[string]actionFunc) http.HandlerFunc {
	supported := make([]string, 0, len(actions))
	for name := range actions {
		supported = append(supported, name)
	}
	slices.Sort(supported)

	return func(w http.ResponseWriter, r *http.Request) {
		rw := NewResponseWriter(w, r)
		action := r.URL.Query().Get("action")

		run, found := actions[action]
		if !found {
			msg := fmt.Sprintf("Unknown action %q", action)
			if action == "" {
				msg = "Missing action parameter"
			}
			rw.BadRequestWithDetails(msg, map[string]interface{}{"supportedActions": supported})
			metrics.RecordAction(route, "unknown", http.StatusBadRequest, false)
			return
		}

		res, err := run(r)
		if err != nil {
			metrics.RecordAction(route, action, writeServiceError(rw, err), false)
			return
		}

		if res.failed {
			rw.Status(http.StatusOK, false, res.data)
		} else {
			rw.SuccessWithCache(res.data, res.cache, res.fallback)
		}
		metrics.RecordAction(route, action, http.StatusOK, res.fallback)
	}
}
