// AgriSat - Satellite Agriculture Learning Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agrisat

package events

import (
	"time"

	"github.com/google/uuid"
)

// TopicGuestAnalytics is the topic for every guest analytics event.
const TopicGuestAnalytics = "guest.analytics"

// SchemaVersion is the AnalyticsEvent payload version.
const SchemaVersion = 1

// Event types.
const (
	TypePageView            = "page_view"
	TypeInteraction         = "interaction"
	TypeAnalytics           = "analytics"
	TypeSessionCreated      = "session_created"
	TypeSessionEnded        = "session_ended"
	TypeModuleCompleted     = "module_completed"
	TypeAssessmentSubmitted = "assessment_submitted"
)

// AnalyticsEvent is the payload published on TopicGuestAnalytics.
type AnalyticsEvent struct {
	SchemaVersion int            `json:"schema_version"`
	EventID       string         `json:"event_id"`
	Type          string         `json:"type"`
	SessionID     string         `json:"session_id,omitempty"`
	Content       string         `json:"content,omitempty"` // page path, module id, ...
	Properties    map[string]any `json:"properties,omitempty"`
	Timestamp     time.Time      `json:"timestamp"`
}

// NewAnalyticsEvent fills in the id, schema version and timestamp.
func NewAnalyticsEvent(eventType, sessionID, content string, at time.Time) AnalyticsEvent {
	return AnalyticsEvent{
		SchemaVersion: SchemaVersion,
		EventID:       uuid.NewString(),
		Type:          eventType,
		SessionID:     sessionID,
		Content:       content,
		Timestamp:     at.UTC(),
	}
}
