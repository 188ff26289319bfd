// AgriSat - Satellite Agriculture Learning Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agrisat

package api

import (
	"errors"
	"net/http"

	"github.com/tomtom215/agrisat/internal/datahub"
	"github.com/tomtom215/agrisat/internal/learning"
	"github.com/tomtom215/agrisat/internal/logging"
	"github.com/tomtom215/agrisat/internal/nasa"
	"github.com/tomtom215/agrisat/internal/session"
	"github.com/tomtom215/agrisat/internal/validation"
)

// ErrBadRequest marks malformed requests: undecodable bodies, missing
// parameters the validator does not cover.
var ErrBadRequest = errors.New("bad request")

// badRequestErrors map to 400 VALIDATION_FAILED.
var badRequestErrors = []error{
	nasa.ErrInvalidCoordinates,
	nasa.ErrInvalidDate,
	session.ErrUnsupportedLanguage,
	session.ErrInvalidLocation,
	learning.ErrInvalidLevel,
}

// notFoundErrors map to 404.
var notFoundErrors = []error{
	nasa.ErrScenarioNotFound,
	learning.ErrModuleNotFound,
	learning.ErrAssessmentNotFound,
	datahub.ErrFarmNotFound,
	datahub.ErrFieldNotFound,
	datahub.ErrCropNotFound,
}

// writeServiceError maps err onto the status policy and writes it. It
// returns the status code written.
func writeServiceError(rw *ResponseWriter, err error) int {
	var verr *validation.RequestValidationError
	switch {
	case errors.As(err, &verr):
		apiErr := verr.ToAPIError()
		rw.ValidationError(apiErr.Message, apiErr.Details)
		return http.StatusBadRequest

	case errors.Is(err, ErrBadRequest):
		rw.BadRequest(err.Error())
		return http.StatusBadRequest

	case errors.Is(err, session.ErrSessionNotFound):
		rw.Unauthorized("Session not found")
		return http.StatusUnauthorized

	case errors.Is(err, session.ErrSessionExpired):
		rw.Unauthorized("Session expired")
		return http.StatusUnauthorized
	}

	for _, target := range badRequestErrors {
		if errors.Is(err, target) {
			rw.ValidationError(err.Error(), nil)
			return http.StatusBadRequest
		}
	}
	for _, target := range notFoundErrors {
		if errors.Is(err, target) {
			rw.NotFound(err.Error())
			return http.StatusNotFound
		}
	}

	logging.Ctx(rw.r.Context()).Error().Err(err).Str("path", rw.r.URL.Path).Msg("Unhandled API error")
	rw.InternalError("Internal server error", err.Error())
	return http.StatusInternalServerError
}
