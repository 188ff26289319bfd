// AgriSat - Satellite Agriculture Learning Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agrisat

package api

import (
	"net/http"
	"strings"

	"github.com/tomtom215/agrisat/internal/datahub"
)

const routeDataHub = "data-hub"

// DataHubGet handles GET /api/data-hub.
func (h *Handler) DataHubGet() http.HandlerFunc {
	return h.dispatch(routeDataHub, map[string]actionFunc{
		"farm-overview":       h.farmOverview,
		"crop-database":       h.cropDatabase,
		"farming-scenarios":   h.farmingScenarios,
		"educational-content": h.educationalContent,
		"market-data":         h.marketData,
		"nasa-live-data":      h.nasaLiveData,
		"weather-forecast":    h.weatherForecast,
		"cache-stats":         h.dataHubCacheStats,
	})
}

// DataHubPost handles POST /api/data-hub.
func (h *Handler) DataHubPost() http.HandlerFunc {
	return h.dispatch(routeDataHub, map[string]actionFunc{
		"update-farm-data": h.updateFarmData,
		"clear-cache":      h.dataHubClearCache,
	})
}

func (h *Handler) farmOverview(r *http.Request) (actionResult, error) {
	p, _, err := parsePoint(r)
	if err != nil {
		return actionResult{}, err
	}
	res, st, err := h.datahub.FarmOverview(r.Context(), p)
	if err != nil {
		return actionResult{}, err
	}
	return cached(res, st, res.Fallback), nil
}

func (h *Handler) cropDatabase(r *http.Request) (actionResult, error) {
	crops, st, err := h.datahub.CropDatabase(r.Context(), r.URL.Query().Get("crop"))
	if err != nil {
		return actionResult{}, err
	}
	return cached(crops, st, false), nil
}

func (h *Handler) farmingScenarios(r *http.Request) (actionResult, error) {
	res, st, err := h.datahub.Scenarios(r.Context(), strings.TrimSpace(r.URL.Query().Get("scenario")))
	if err != nil {
		return actionResult{}, err
	}
	return cached(res, st, res.Fallback), nil
}

func (h *Handler) educationalContent(r *http.Request) (actionResult, error) {
	content, st, err := h.datahub.EducationalContent(r.Context())
	if err != nil {
		return actionResult{}, err
	}
	return cached(content, st, content.Fallback), nil
}

func (h *Handler) marketData(r *http.Request) (actionResult, error) {
	md, st, err := h.datahub.MarketData(r.Context())
	if err != nil {
		return actionResult{}, err
	}
	return cached(md, st, false), nil
}

func (h *Handler) nasaLiveData(r *http.Request) (actionResult, error) {
	p, _, err := parsePoint(r)
	if err != nil {
		return actionResult{}, err
	}
	res, st, err := h.datahub.NASALiveData(r.Context(), p)
	if err != nil {
		return actionResult{}, err
	}
	return cached(res, st, res.Fallback), nil
}

func (h *Handler) weatherForecast(r *http.Request) (actionResult, error) {
	p, _, err := parsePoint(r)
	if err != nil {
		return actionResult{}, err
	}
	res, st, err := h.datahub.WeatherForecast(r.Context(), p)
	if err != nil {
		return actionResult{}, err
	}
	return cached(res, st, res.Fallback), nil
}

func (h *Handler) dataHubCacheStats(r *http.Request) (actionResult, error) {
	stats, err := h.datahub.CacheStats(r.Context())
	if err != nil {
		return actionResult{}, err
	}
	return ok(stats), nil
}

// updateFarmDataRequest is the body of update-farm-data.
type updateFarmDataRequest struct {
	FarmID       string                `json:"farmId" validate:"required,max=64"`
	FieldUpdates []datahub.FieldUpdate `json:"fieldUpdates" validate:"required,min=1,max=50,dive"`
}

func (h *Handler) updateFarmData(r *http.Request) (actionResult, error) {
	var req updateFarmDataRequest
	if err := decodeJSON(r, &req); err != nil {
		return actionResult{}, err
	}
	res, err := h.datahub.UpdateFarmData(r.Context(), req.FarmID, req.FieldUpdates)
	if err != nil {
		return actionResult{}, err
	}
	return ok(res), nil
}

// clearCacheRequest is the body of clear-cache. An empty category clears
// everything.
type clearCacheRequest struct {
	Category string `json:"category" validate:"max=64"`
}

func (h *Handler) dataHubClearCache(r *http.Request) (actionResult, error) {
	var req clearCacheRequest
	if err := decodeJSON(r, &req); err != nil {
		return actionResult{}, err
	}
	n, err := h.datahub.ClearCache(r.Context(), req.Category)
	if err != nil {
		return actionResult{}, err
	}
	return ok(map[string]interface{}{
		"cleared":  n,
		"category": req.Category,
	}), nil
}
