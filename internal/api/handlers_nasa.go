// AgriSat - Satellite Agriculture Learning Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agrisat

package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/tomtom215/agrisat/internal/cache"
	"github.com/tomtom215/agrisat/internal/nasa"
	"github.com/tomtom215/agrisat/internal/validation"
)

const routeNASAData = "nasa-data"

// NASAData handles GET /api/nasa-data.
func (h *Handler) NASAData() http.HandlerFunc {
	return h.dispatch(routeNASAData, map[string]actionFunc{
		"test-connection": h.testConnection,
		"scenarios":       h.scenarios,
		"farm-data":       datedAction(h.nasa.FarmData),
		"weather":         datedAction(h.nasa.Weather),
		"soil-analysis":   datedAction(h.nasa.SoilAnalysis),
		"crop-health":     datedAction(h.nasa.CropHealth),
		"earth":           datedAction(h.nasa.Earth),
		"terrain":         pointAction(h.nasa.Terrain),
		"elevation":       pointAction(h.nasa.Elevation),
		"terrain-3d":      h.terrain3D,
		"cache-stats":     h.nasaCacheStats,
		"clear-cache":     h.nasaClearCache,
	})
}

// datedAction adapts a (point, date) NASA lookup to an action.
func datedAction[T any](fetch func(context.Context, nasa.Point, string) (nasa.Result[T], cache.Status, error)) actionFunc {
	return func(r *http.Request) (actionResult, error) {
		p, date, err := parsePoint(r)
		if err != nil {
			return actionResult{}, err
		}
		res, st, err := fetch(r.Context(), p, date)
		if err != nil {
			return actionResult{}, err
		}
		return cached(res, st, res.Fallback), nil
	}
}

// pointAction adapts a point-only NASA lookup to an action. A date, if
// given, is validated and ignored.
func pointAction[T any](fetch func(context.Context, nasa.Point) (nasa.Result[T], cache.Status, error)) actionFunc {
	return func(r *http.Request) (actionResult, error) {
		p, _, err := parsePoint(r)
		if err != nil {
			return actionResult{}, err
		}
		res, st, err := fetch(r.Context(), p)
		if err != nil {
			return actionResult{}, err
		}
		return cached(res, st, res.Fallback), nil
	}
}

// testConnection reports success:false when real data is enabled and NASA
// does not answer. The status code stays 200.
func (h *Handler) testConnection(r *http.Request) (actionResult, error) {
	st := h.nasa.TestConnection(r.Context())
	return actionResult{data: st, failed: st.RealDataEnabled && !st.Connected}, nil
}

func (h *Handler) scenarios(r *http.Request) (actionResult, error) {
	res, st, err := h.nasa.Scenarios(r.Context(), strings.TrimSpace(r.URL.Query().Get("scenario")))
	if err != nil {
		return actionResult{}, err
	}
	return cached(res, st, res.Fallback), nil
}

type gridQuery struct {
	Size int `query:"size" validate:"omitempty,gte=2,lte=64"`
}

func (h *Handler) terrain3D(r *http.Request) (actionResult, error) {
	p, _, err := parsePoint(r)
	if err != nil {
		return actionResult{}, err
	}
	var gq gridQuery
	if raw := strings.TrimSpace(r.URL.Query().Get("size")); raw != "" {
		if gq.Size, err = strconv.Atoi(raw); err != nil {
			return actionResult{}, fmt.Errorf("%w: size must be an integer", ErrBadRequest)
		}
	}
	if verr := validation.ValidateStruct(&gq); verr != nil {
		return actionResult{}, verr
	}
	res, st, err := h.nasa.Terrain3D(r.Context(), p, gq.Size)
	if err != nil {
		return actionResult{}, err
	}
	return cached(res, st, res.Fallback), nil
}

func (h *Handler) nasaCacheStats(r *http.Request) (actionResult, error) {
	stats, err := h.nasa.CacheStats(r.Context())
	if err != nil {
		return actionResult{}, err
	}
	return ok(stats), nil
}

func (h *Handler) nasaClearCache(r *http.Request) (actionResult, error) {
	n, err := h.nasa.ClearCache(r.Context())
	if err != nil {
		return actionResult{}, err
	}
	return ok(map[string]interface{}{"cleared": n, "filter": "nasa"}), nil
}
