// AgriSat - Satellite Agriculture Learning Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agrisat

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIActionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_actions_total",
			Help: "Total number of dispatched API actions by route and outcome",
		},
		[]string{"route", "action", "outcome"}, // outcome: ok, fallback, client_error, server_error
	)

	// Response Cache Metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of response cache hits",
		},
		[]string{"backend", "category"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of response cache misses",
		},
		[]string{"backend", "category"},
	)

	CacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_evictions_total",
			Help: "Total number of cache entries removed by reason",
		},
		[]string{"backend", "reason"}, // reason: lru, expired, cleared
	)

	CacheEntries = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cache_entries",
			Help: "Current number of cache entries",
		},
		[]string{"backend"},
	)

	CacheSharedLoads = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cache_singleflight_shared_total",
			Help: "Total number of cache loads served by an in-flight load for the same key",
		},
	)

	CacheLoadDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cache_load_duration_seconds",
			Help:    "Duration of cache-miss loads in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"category"},
	)

	// NASA Upstream Metrics
	NASARequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nasa_upstream_requests_total",
			Help: "Total number of NASA upstream requests",
		},
		[]string{"api", "status"}, // status: success, error
	)

	NASARequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nasa_upstream_request_duration_seconds",
			Help:    "NASA upstream request duration in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"api"},
	)

	NASAFallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nasa_fallbacks_total",
			Help: "Total number of responses served from synthetic data after an upstream failure",
		},
		[]string{"action"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Current circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: success, failure, rejected
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// Guest Session Metrics
	SessionsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "guest_sessions_created_total",
			Help: "Total number of guest sessions created",
		},
	)

	SessionsExpired = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "guest_sessions_expired_total",
			Help: "Total number of guest sessions removed after expiry",
		},
	)

	SessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "guest_sessions_active",
			Help: "Current number of stored guest sessions",
		},
	)

	AnalyticsEventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analytics_events_published_total",
			Help: "Total number of analytics events published to the event bus",
		},
		[]string{"type"},
	)

	// Learning Hub Metrics
	ModuleCompletions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "learning_module_completions_total",
			Help: "Total number of module completions",
		},
		[]string{"module", "first_time"},
	)

	AssessmentSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "learning_assessment_submissions_total",
			Help: "Total number of assessment submissions",
		},
		[]string{"assessment", "passed"},
	)
)

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordAction records the outcome of a dispatched ?action= request.
func RecordAction(route, action string, status int, fallback bool) {
	outcome := "ok"
	switch {
	case status >= 500:
		outcome = "server_error"
	case status >= 400:
		outcome = "client_error"
	case fallback:
		outcome = "fallback"
	}
	APIActionsTotal.WithLabelValues(route, action, outcome).Inc()
}

// RecordNASARequest records one upstream NASA call.
func RecordNASARequest(api string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	NASARequestsTotal.WithLabelValues(api, status).Inc()
	NASARequestDuration.WithLabelValues(api).Observe(duration.Seconds())
}

// RecordNASAFallback records a synthetic fallback served for an action.
func RecordNASAFallback(action string) {
	NASAFallbacksTotal.WithLabelValues(action).Inc()
}

// RecordModuleCompletion records a module completion.
func RecordModuleCompletion(moduleID string, firstTime bool) {
	ft := "false"
	if firstTime {
		ft = "true"
	}
	ModuleCompletions.WithLabelValues(moduleID, ft).Inc()
}

// RecordAssessmentSubmission records an assessment submission.
func RecordAssessmentSubmission(assessmentID string, passed bool) {
	p := "false"
	if passed {
		p = "true"
	}
	AssessmentSubmissions.WithLabelValues(assessmentID, p).Inc()
}
