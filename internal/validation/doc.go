// AgriSat - Satellite Agriculture Learning Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agrisat

// Package validation provides struct validation using go-playground/validator v10.
//
// A single validator instance is shared process-wide; it caches struct
// metadata and is safe for concurrent use. Errors name fields by their json
// (or query) tag and convert to the API error shape with code
// VALIDATION_FAILED:
//
//	type coordsQuery struct {
//	    Lat float64 `query:"lat" validate:"latitude"`
//	    Lng float64 `query:"lng" validate:"longitude"`
//	}
//
//	if verr := validation.ValidateStruct(&q); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    // 400 {code: VALIDATION_FAILED, message: "lat must be a valid latitude (-90 to 90)"}
//	}
package validation
