// AgriSat - Satellite Agriculture Learning Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agrisat

package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tomtom215/agrisat/internal/nasa"
	"github.com/tomtom215/agrisat/internal/validation"
)

// maxBodyBytes bounds POST and DELETE bodies.
const maxBodyBytes = 1 << 20

// headerSessionID carries the guest session id when the query does not.
const headerSessionID = "X-Session-ID"

// decodeJSON decodes the request body into dst and validates it. An empty
// body decodes to the zero value, which validation then judges.
func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: invalid JSON body: %v", ErrBadRequest, err)
	}
	if verr := validation.ValidateStruct(dst); verr != nil {
		return verr
	}
	return nil
}

// pointQuery is the lat/lng/date triple shared by the coordinate actions.
// Coordinates stay strings so the validator reports malformed numbers and
// out-of-range values with the same message.
type pointQuery struct {
	Lat  string `query:"lat" validate:"required,latitude"`
	Lng  string `query:"lng" validate:"required,longitude"`
	Date string `query:"date" validate:"omitempty,isodate"`
}

// parsePoint reads and validates lat, lng and the optional date.
func parsePoint(r *http.Request) (nasa.Point, string, error) {
	q := r.URL.Query()
	pq := pointQuery{
		Lat:  strings.TrimSpace(q.Get("lat")),
		Lng:  strings.TrimSpace(q.Get("lng")),
		Date: strings.TrimSpace(q.Get("date")),
	}
	if verr := validation.ValidateStruct(&pq); verr != nil {
		return nasa.Point{}, "", verr
	}
	lat, err := strconv.ParseFloat(pq.Lat, 64)
	if err != nil {
		return nasa.Point{}, "", fmt.Errorf("%w: %v", nasa.ErrInvalidCoordinates, err)
	}
	lng, err := strconv.ParseFloat(pq.Lng, 64)
	if err != nil {
		return nasa.Point{}, "", fmt.Errorf("%w: %v", nasa.ErrInvalidCoordinates, err)
	}
	return nasa.Point{Lat: lat, Lng: lng}, pq.Date, nil
}

// limitQuery is the optional result limit of list actions.
type limitQuery struct {
	Limit int `query:"limit" validate:"gte=0,lte=100"`
}

// parseLimit returns the "limit" query parameter, or def when absent.
func parseLimit(r *http.Request, def int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("limit"))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: limit must be an integer", ErrBadRequest)
	}
	lq := limitQuery{Limit: n}
	if verr := validation.ValidateStruct(&lq); verr != nil {
		return 0, verr
	}
	if n == 0 {
		return def, nil
	}
	return n, nil
}

// sessionIDFrom returns the guest session id from the sessionId query
// parameter or the X-Session-ID header.
func sessionIDFrom(r *http.Request) string {
	if id := strings.TrimSpace(r.URL.Query().Get("sessionId")); id != "" {
		return id
	}
	return strings.TrimSpace(r.Header.Get(headerSessionID))
}

// sessionQuery validates a required session id.
type sessionQuery struct {
	SessionID string `query:"sessionId" validate:"required,session_id"`
}

// requireSessionID returns the caller's session id or a validation error.
func requireSessionID(r *http.Request) (string, error) {
	sq := sessionQuery{SessionID: sessionIDFrom(r)}
	if verr := validation.ValidateStruct(&sq); verr != nil {
		return "", verr
	}
	return sq.SessionID, nil
}
