// AgriSat - Satellite Agriculture Learning Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agrisat

package nasa

import (
	"errors"
	"fmt"
)

var (
	// ErrScenarioNotFound is returned for an unknown scenario id.
	ErrScenarioNotFound = errors.New("scenario not found")

	// ErrInvalidCoordinates is returned when lat/lng are out of range.
	ErrInvalidCoordinates = errors.New("invalid coordinates")

	// ErrInvalidDate is returned when a date is not YYYY-MM-DD.
	ErrInvalidDate = errors.New("invalid date")

	// ErrRealDataDisabled is returned by the client when no API key is configured.
	ErrRealDataDisabled = errors.New("real NASA data disabled")

	// ErrNoData is returned when the upstream answered without usable values.
	ErrNoData = errors.New("upstream returned no usable data")
)

// UpstreamError is a non-success response from a NASA API.
type UpstreamError struct {
	API        string
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("nasa %s: unexpected status %d: %s", e.API, e.StatusCode, e.Body)
}
