// AgriSat - Satellite Agriculture Learning Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agrisat

package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/tomtom215/agrisat/internal/learning"
	"github.com/tomtom215/agrisat/internal/validation"
)

const routeLearningHub = "learning-hub"

// defaultLeaderboardLimit is the leaderboard size when no limit is given.
const defaultLeaderboardLimit = 10

// LearningHubGet handles GET /api/learning-hub.
func (h *Handler) LearningHubGet() http.HandlerFunc {
	return h.dispatch(routeLearningHub, map[string]actionFunc{
		"modules":            h.modules,
		"module-content":     h.moduleContent,
		"assessments":        h.assessments,
		"progress":           h.progress,
		"achievement-unlock": h.achievements,
		"leaderboard":        h.leaderboard,
	})
}

// LearningHubPost handles POST /api/learning-hub.
func (h *Handler) LearningHubPost() http.HandlerFunc {
	return h.dispatch(routeLearningHub, map[string]actionFunc{
		"complete-module":   h.completeModule,
		"submit-assessment": h.submitAssessment,
	})
}

// learnerQuery validates an optional session id. Without one the caller
// is the shared demo learner; with one the session must be live.
type learnerQuery struct {
	SessionID string `query:"sessionId" validate:"omitempty,session_id"`
}

func learnerFrom(r *http.Request) (string, error) {
	lq := learnerQuery{SessionID: sessionIDFrom(r)}
	if verr := validation.ValidateStruct(&lq); verr != nil {
		return "", verr
	}
	return learning.LearnerID(lq.SessionID), nil
}

func (h *Handler) modules(r *http.Request) (actionResult, error) {
	level := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("level")))
	mods, st, err := h.learning.Modules(r.Context(), level)
	if err != nil {
		return actionResult{}, err
	}
	return cached(mods, st, false), nil
}

func (h *Handler) moduleContent(r *http.Request) (actionResult, error) {
	id := strings.TrimSpace(r.URL.Query().Get("moduleId"))
	if id == "" {
		return actionResult{}, fmt.Errorf("%w: moduleId is required", ErrBadRequest)
	}
	m, st, err := h.learning.Module(r.Context(), id)
	if err != nil {
		return actionResult{}, err
	}
	return cached(m, st, false), nil
}

func (h *Handler) assessments(r *http.Request) (actionResult, error) {
	list, err := h.learning.Assessments(strings.TrimSpace(r.URL.Query().Get("moduleId")))
	if err != nil {
		return actionResult{}, err
	}
	return ok(list), nil
}

func (h *Handler) progress(r *http.Request) (actionResult, error) {
	learner, err := learnerFrom(r)
	if err != nil {
		return actionResult{}, err
	}
	p, err := h.learning.Progress(r.Context(), learner)
	if err != nil {
		return actionResult{}, err
	}
	return ok(p), nil
}

func (h *Handler) achievements(r *http.Request) (actionResult, error) {
	learner, err := learnerFrom(r)
	if err != nil {
		return actionResult{}, err
	}
	list, err := h.learning.Achievements(r.Context(), learner)
	if err != nil {
		return actionResult{}, err
	}
	return ok(list), nil
}

func (h *Handler) leaderboard(r *http.Request) (actionResult, error) {
	learner, err := learnerFrom(r)
	if err != nil {
		return actionResult{}, err
	}
	limit, err := parseLimit(r, defaultLeaderboardLimit)
	if err != nil {
		return actionResult{}, err
	}
	rows, err := h.learning.Leaderboard(r.Context(), learner, limit)
	if err != nil {
		return actionResult{}, err
	}
	return ok(rows), nil
}

// completeModuleRequest is the body of complete-module. timeSpent is in
// minutes.
type completeModuleRequest struct {
	ModuleID  string `json:"moduleId" validate:"required,max=64"`
	Score     int    `json:"score" validate:"gte=0,lte=100"`
	TimeSpent int    `json:"timeSpent" validate:"gte=0,lte=1440"`
}

func (h *Handler) completeModule(r *http.Request) (actionResult, error) {
	learner, err := learnerFrom(r)
	if err != nil {
		return actionResult{}, err
	}
	var req completeModuleRequest
	if err := decodeJSON(r, &req); err != nil {
		return actionResult{}, err
	}
	res, err := h.learning.CompleteModule(r.Context(), learner, req.ModuleID, req.Score, req.TimeSpent)
	if err != nil {
		return actionResult{}, err
	}
	return ok(res), nil
}

// submitAssessmentRequest is the body of submit-assessment. answers holds
// the chosen option index per question, in question order.
type submitAssessmentRequest struct {
	AssessmentID string `json:"assessmentId" validate:"required,max=64"`
	Answers      []int  `json:"answers" validate:"required,min=1,max=50,dive,gte=-1,lte=10"`
}

func (h *Handler) submitAssessment(r *http.Request) (actionResult, error) {
	learner, err := learnerFrom(r)
	if err != nil {
		return actionResult{}, err
	}
	var req submitAssessmentRequest
	if err := decodeJSON(r, &req); err != nil {
		return actionResult{}, err
	}
	res, err := h.learning.SubmitAssessment(r.Context(), learner, req.AssessmentID, req.Answers)
	if err != nil {
		return actionResult{}, err
	}
	return ok(res), nil
}
