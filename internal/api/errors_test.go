// AgriSat - Satellite Agriculture Learning Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agrisat

package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"

	"github.com/tomtom215/agrisat/internal/datahub"
	"github.com/tomtom215/agrisat/internal/learning"
	"github.com/tomtom215/agrisat/internal/nasa"
	"github.com/tomtom215/agrisat/internal/session"
	"github.com/tomtom215/agrisat/internal/validation"
)

func TestWriteServiceError(t *testing.T) {
	t.Parallel()

	type badBody struct {
		Lat string `json:"lat" validate:"required,latitude"`
	}

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"validator error", validation.ValidateStruct(&badBody{Lat: "200"}), http.StatusBadRequest, ErrCodeValidationFailed},
		{"bad request", fmt.Errorf("%w: invalid JSON body", ErrBadRequest), http.StatusBadRequest, ErrCodeBadRequest},
		{"invalid coordinates", nasa.ErrInvalidCoordinates, http.StatusBadRequest, ErrCodeValidationFailed},
		{"invalid date", fmt.Errorf("farm data: %w", nasa.ErrInvalidDate), http.StatusBadRequest, ErrCodeValidationFailed},
		{"unsupported language", session.ErrUnsupportedLanguage, http.StatusBadRequest, ErrCodeValidationFailed},
		{"invalid level", learning.ErrInvalidLevel, http.StatusBadRequest, ErrCodeValidationFailed},
		{"session not found", session.ErrSessionNotFound, http.StatusUnauthorized, ErrCodeUnauthorized},
		{"session expired", fmt.Errorf("get: %w", session.ErrSessionExpired), http.StatusUnauthorized, ErrCodeUnauthorized},
		{"module not found", learning.ErrModuleNotFound, http.StatusNotFound, ErrCodeNotFound},
		{"assessment not found", learning.ErrAssessmentNotFound, http.StatusNotFound, ErrCodeNotFound},
		{"scenario not found", nasa.ErrScenarioNotFound, http.StatusNotFound, ErrCodeNotFound},
		{"farm not found", datahub.ErrFarmNotFound, http.StatusNotFound, ErrCodeNotFound},
		{"field not found", datahub.ErrFieldNotFound, http.StatusNotFound, ErrCodeNotFound},
		{"crop not found", datahub.ErrCropNotFound, http.StatusNotFound, ErrCodeNotFound},
		{"unexpected", errors.New("disk on fire"), http.StatusInternalServerError, ErrCodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := httptest.NewRecorder()
			rw := NewResponseWriter(rec, httptest.NewRequest(http.MethodGet, "/api/test", nil))

			if got := writeServiceError(rw, tt.err); got != tt.wantStatus {
				t.Errorf("returned status = %d, want %d", got, tt.wantStatus)
			}
			if rec.Code != tt.wantStatus {
				t.Errorf("written status = %d, want %d", rec.Code, tt.wantStatus)
			}
			var resp APIResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Success || resp.Error == nil || resp.Error.Code != tt.wantCode {
				t.Errorf("error = %+v, want code %s", resp.Error, tt.wantCode)
			}
		})
	}
}

func TestWriteServiceError_InternalDetails(t *testing.T) {
	t.Parallel()
	rec := httptest.NewRecorder()
	rw := NewResponseWriter(rec, httptest.NewRequest(http.MethodGet, "/api/test", nil))

	writeServiceError(rw, errors.New("badger: value log truncated"))

	var resp APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Error.Details != "badger: value log truncated" {
		t.Errorf("details = %v, want the error text", resp.Error.Details)
	}
}
