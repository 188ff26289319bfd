// AgriSat - Satellite Agriculture Learning Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agrisat

package validation

import (
	"strings"
	"testing"
)

func TestGetValidator_Singleton(t *testing.T) {
	v1 := GetValidator()
	v2 := GetValidator()

	if v1 == nil {
		t.Fatal("GetValidator() should not return nil")
	}
	if v1 != v2 {
		t.Error("GetValidator() should return the same singleton instance")
	}
}

type coordsRequest struct {
	Lat  float64 `json:"lat" validate:"latitude"`
	Lng  float64 `json:"lng" validate:"longitude"`
	Date string  `json:"date" validate:"omitempty,isodate"`
}

type completionRequest struct {
	SessionID string   `query:"sessionId" validate:"omitempty,session_id"`
	ModuleID  string   `json:"moduleId" validate:"required,max=64"`
	Score     int      `json:"score" validate:"gte=0,lte=100"`
	Answers   []string `json:"answers" validate:"max=3"`
}

func TestValidateStruct(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		input     interface{}
		wantField string
		wantTag   string
	}{
		{"valid coords", &coordsRequest{Lat: 40.7, Lng: -74.0, Date: "2024-06-01"}, "", ""},
		{"latitude out of range", &coordsRequest{Lat: 91, Lng: 0}, "lat", "latitude"},
		{"longitude out of range", &coordsRequest{Lat: 0, Lng: -180.5}, "lng", "longitude"},
		{"bad date", &coordsRequest{Date: "06/01/2024"}, "date", "isodate"},
		{"valid completion", &completionRequest{SessionID: "guest_1718000000000_ab12cd34", ModuleID: "ndvi-basics", Score: 80}, "", ""},
		{"bad session id", &completionRequest{SessionID: "admin", ModuleID: "m"}, "sessionId", "session_id"},
		{"missing module", &completionRequest{}, "moduleId", "required"},
		{"score above 100", &completionRequest{ModuleID: "m", Score: 101}, "score", "lte"},
		{"too many answers", &completionRequest{ModuleID: "m", Answers: []string{"a", "b", "c", "d"}}, "answers", "max"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateStruct(tt.input)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("ValidateStruct() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("ValidateStruct() expected error")
			}
			fe := err.Errors()[0]
			if fe.Field() != tt.wantField || fe.Tag() != tt.wantTag {
				t.Errorf("got field=%q tag=%q, want field=%q tag=%q", fe.Field(), fe.Tag(), tt.wantField, tt.wantTag)
			}
		})
	}
}

func TestRequestValidationError_ToAPIError(t *testing.T) {
	t.Parallel()

	single := ValidateStruct(&coordsRequest{Lat: 100})
	apiErr := single.ToAPIError()
	if apiErr.Code != ErrorCode {
		t.Errorf("Code = %q, want %q", apiErr.Code, ErrorCode)
	}
	if apiErr.Message != "lat must be a valid latitude (-90 to 90)" {
		t.Errorf("Message = %q", apiErr.Message)
	}
	if apiErr.Details["field"] != "lat" {
		t.Errorf("Details = %v", apiErr.Details)
	}

	multi := ValidateStruct(&coordsRequest{Lat: 100, Lng: 200})
	apiErr = multi.ToAPIError()
	if !strings.Contains(apiErr.Message, "lat") || !strings.Contains(apiErr.Message, "lng") {
		t.Errorf("Message = %q, want both fields", apiErr.Message)
	}
	if fields, ok := apiErr.Details["fields"].([]map[string]interface{}); !ok || len(fields) != 2 {
		t.Errorf("Details[fields] = %v", apiErr.Details["fields"])
	}
}

func TestTranslateMinMax_Messages(t *testing.T) {
	t.Parallel()

	err := ValidateStruct(&completionRequest{ModuleID: strings.Repeat("x", 65)})
	if err == nil || err.Errors()[0].Error() != "moduleId must be at most 64 characters" {
		t.Errorf("unexpected message: %v", err)
	}
	err = ValidateStruct(&completionRequest{ModuleID: "m", Answers: make([]string, 4)})
	if err == nil || err.Errors()[0].Error() != "answers must contain at most 3 items" {
		t.Errorf("unexpected message: %v", err)
	}
}
