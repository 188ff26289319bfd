// AgriSat - Satellite Agriculture Learning Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agrisat

package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/tomtom215/agrisat/internal/session"
	"github.com/tomtom215/agrisat/internal/validation"
)

const routeGuestSession = "guest-session"

// defaultPopularLimit is the popular-content size when no limit is given.
const defaultPopularLimit = 10

// GuestSessionGet handles GET /api/guest-session.
func (h *Handler) GuestSessionGet() http.HandlerFunc {
	return h.dispatch(routeGuestSession, map[string]actionFunc{
		"create-session":  h.createSession,
		"get-session":     h.getSession,
		"session-stats":   h.sessionStats,
		"popular-content": h.popularContent,
	})
}

// GuestSessionPost handles POST /api/guest-session.
func (h *Handler) GuestSessionPost() http.HandlerFunc {
	return h.dispatch(routeGuestSession, map[string]actionFunc{
		"update-preferences":   h.updatePreferences,
		"update-progress":      h.updateProgress,
		"update-farm-location": h.updateFarmLocation,
		"track-interaction":    h.trackInteraction,
		"extend-session":       h.extendSession,
		"analytics-event":      h.analyticsEvent,
	})
}

// GuestSessionDelete handles DELETE /api/guest-session.
func (h *Handler) GuestSessionDelete() http.HandlerFunc {
	return h.dispatch(routeGuestSession, map[string]actionFunc{
		"end-session":      h.endSession,
		"cleanup-sessions": h.cleanupSessions,
	})
}

// sessionView is a guest session with its expiry instant.
type sessionView struct {
	*session.GuestSession
	ExpiresAt time.Time `json:"expiresAt"`
}

func (h *Handler) view(s *session.GuestSession) sessionView {
	return sessionView{GuestSession: s, ExpiresAt: s.ExpiresAt(h.sessions.Duration())}
}

type createSessionQuery struct {
	Name string `query:"name" validate:"max=60"`
}

func (h *Handler) createSession(r *http.Request) (actionResult, error) {
	q := createSessionQuery{Name: strings.TrimSpace(r.URL.Query().Get("name"))}
	if verr := validation.ValidateStruct(&q); verr != nil {
		return actionResult{}, verr
	}
	s, err := h.sessions.Create(r.Context(), q.Name)
	if err != nil {
		return actionResult{}, err
	}
	return ok(h.view(s)), nil
}

func (h *Handler) getSession(r *http.Request) (actionResult, error) {
	id, err := requireSessionID(r)
	if err != nil {
		return actionResult{}, err
	}
	s, err := h.sessions.Get(r.Context(), id)
	if err != nil {
		return actionResult{}, err
	}
	return ok(h.view(s)), nil
}

func (h *Handler) sessionStats(r *http.Request) (actionResult, error) {
	stats, err := h.sessions.Stats(r.Context())
	if err != nil {
		return actionResult{}, err
	}
	return ok(stats), nil
}

func (h *Handler) popularContent(r *http.Request) (actionResult, error) {
	limit, err := parseLimit(r, defaultPopularLimit)
	if err != nil {
		return actionResult{}, err
	}
	return ok(h.sessions.PopularContent(r.Context(), limit)), nil
}

// withSession decodes body for the caller's session and applies fn.
func withSession[T any](r *http.Request, fn func(id string, body T) (*session.GuestSession, error)) (actionResult, error) {
	id, err := requireSessionID(r)
	if err != nil {
		return actionResult{}, err
	}
	var body T
	if err := decodeJSON(r, &body); err != nil {
		return actionResult{}, err
	}
	s, err := fn(id, body)
	if err != nil {
		return actionResult{}, err
	}
	return ok(s), nil
}

func (h *Handler) updatePreferences(r *http.Request) (actionResult, error) {
	return withSession(r, func(id string, u session.PreferencesUpdate) (*session.GuestSession, error) {
		return h.sessions.UpdatePreferences(r.Context(), id, u)
	})
}

func (h *Handler) updateProgress(r *http.Request) (actionResult, error) {
	return withSession(r, func(id string, u session.ProgressUpdate) (*session.GuestSession, error) {
		return h.sessions.UpdateProgress(r.Context(), id, u)
	})
}

func (h *Handler) updateFarmLocation(r *http.Request) (actionResult, error) {
	return withSession(r, func(id string, u session.FarmUpdate) (*session.GuestSession, error) {
		return h.sessions.UpdateFarmLocation(r.Context(), id, u)
	})
}

func (h *Handler) trackInteraction(r *http.Request) (actionResult, error) {
	return withSession(r, func(id string, in session.Interaction) (*session.GuestSession, error) {
		return h.sessions.TrackInteraction(r.Context(), id, in)
	})
}

func (h *Handler) extendSession(r *http.Request) (actionResult, error) {
	id, err := requireSessionID(r)
	if err != nil {
		return actionResult{}, err
	}
	s, err := h.sessions.Extend(r.Context(), id)
	if err != nil {
		return actionResult{}, err
	}
	return ok(h.view(s)), nil
}

func (h *Handler) analyticsEvent(r *http.Request) (actionResult, error) {
	id, err := requireSessionID(r)
	if err != nil {
		return actionResult{}, err
	}
	var ev session.AnalyticsEvent
	if err := decodeJSON(r, &ev); err != nil {
		return actionResult{}, err
	}
	if err := h.sessions.RecordAnalyticsEvent(r.Context(), id, ev); err != nil {
		return actionResult{}, err
	}
	return ok(map[string]interface{}{"recorded": true, "event": ev.Event}), nil
}

func (h *Handler) endSession(r *http.Request) (actionResult, error) {
	id, err := requireSessionID(r)
	if err != nil {
		return actionResult{}, err
	}
	if err := h.sessions.End(r.Context(), id); err != nil {
		return actionResult{}, err
	}
	return ok(map[string]interface{}{"ended": true, "sessionId": id}), nil
}

func (h *Handler) cleanupSessions(r *http.Request) (actionResult, error) {
	n, err := h.sessions.Cleanup(r.Context())
	if err != nil {
		return actionResult{}, err
	}
	return ok(map[string]interface{}{"removed": n}), nil
}
