// AgriSat - Satellite Agriculture Learning Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agrisat

package api

import (
	"context"
	"errors"
	"io"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"net/url"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/agrisat/internal/cache"
	"github.com/tomtom215/agrisat/internal/datahub"
	"github.com/tomtom215/agrisat/internal/learning"
	"github.com/tomtom215/agrisat/internal/nasa"
	"github.com/tomtom215/agrisat/internal/session"
)

// testClock is a settable clock shared by the session manager and hub.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// failingUpstream simulates NASA returning 500 on every call.
type failingUpstream struct{}

var errUpstream500 = errors.New("upstream status 500")

func (failingUpstream) Ping(context.Context) (*nasa.APOD, error) { return nil, errUpstream500 }
func (failingUpstream) PowerDaily(context.Context, nasa.Point, time.Time, time.Time) (*nasa.PowerSeries, error) {
	return nil, errUpstream500
}
func (failingUpstream) EarthAssets(context.Context, nasa.Point, time.Time) (*nasa.EarthAsset, error) {
	return nil, errUpstream500
}
func (failingUpstream) BreakerState() string { return "closed" }

type testEnv struct {
	router   http.Handler
	clock    *testClock
	sessions *session.Manager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	clock := &testClock{now: time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)}

	c := cache.New(cache.NewMemoryStore(500), cache.BackendMemory)
	nasaSvc := nasa.NewService(failingUpstream{}, c, true,
		nasa.WithSynth(nasa.NewSynth(rand.NewPCG(7, 7))),
		nasa.WithClock(clock.Now),
	)
	sessions := session.NewManager(session.NewMemoryStore(), session.DefaultDuration, session.WithClock(clock.Now))
	hub := learning.NewHub(c, learning.WithSessionMirror(sessions), learning.WithClock(clock.Now))
	dh := datahub.NewService(c, nasaSvc, datahub.NewRegistry(clock.Now()), datahub.WithClock(clock.Now))

	h := NewHandler(HandlerDeps{
		NASA:     nasaSvc,
		DataHub:  dh,
		Sessions: sessions,
		Learning: hub,
		Cache:    c,
	})
	cfg := DefaultChiMiddlewareConfig()
	cfg.RateLimitDisabled = true
	return &testEnv{
		router:   NewRouter(h, NewChiMiddleware(cfg)).SetupChi(),
		clock:    clock,
		sessions: sessions,
	}
}

// envelope mirrors APIResponse with raw data for per-test decoding.
type envelope struct {
	Success  bool            `json:"success"`
	Data     json.RawMessage `json:"data"`
	Error    *APIError       `json:"error"`
	Cache    *cache.Status   `json:"cache"`
	Fallback bool            `json:"fallback"`
	Meta     *APIMeta        `json:"meta"`
}

func (e *testEnv) do(t *testing.T, method, target string, body string) (int, envelope) {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rdr)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("%s %s: decode envelope: %v (body %q)", method, target, err, rec.Body.String())
	}
	return rec.Code, env
}

func (e *testEnv) createSession(t *testing.T, name string) string {
	t.Helper()
	code, env := e.do(t, http.MethodGet, "/api/guest-session?action=create-session&name="+url.QueryEscape(name), "")
	if code != http.StatusOK {
		t.Fatalf("create-session status = %d", code)
	}
	var s session.GuestSession
	if err := json.Unmarshal(env.Data, &s); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	return s.SessionID
}

func TestDispatch_UnknownAction(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	tests := []struct {
		name   string
		target string
		want   string
	}{
		{"unknown nasa action", "/api/nasa-data?action=launch-rocket", "farm-data"},
		{"missing action", "/api/data-hub", "farm-overview"},
		{"unknown learning action", "/api/learning-hub?action=nope", "modules"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := env.do(t, http.MethodGet, tt.target, "")
			if code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", code)
			}
			if body.Success || body.Error == nil || body.Error.Code != ErrCodeBadRequest {
				t.Fatalf("error = %+v, want BAD_REQUEST", body.Error)
			}
			details, _ := body.Error.Details.(map[string]interface{})
			supported, _ := details["supportedActions"].([]interface{})
			if !slices.Contains(supported, interface{}(tt.want)) {
				t.Errorf("supportedActions = %v, want it to include %q", supported, tt.want)
			}
		})
	}
}

func TestNASAData_FallbackOnUpstreamFailure(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	code, body := env.do(t, http.MethodGet, "/api/nasa-data?action=farm-data&lat=41.5868&lng=-93.625&date=2026-03-30", "")
	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	if !body.Success || !body.Fallback {
		t.Fatalf("success=%v fallback=%v, want both true", body.Success, body.Fallback)
	}
	if body.Cache == nil || body.Cache.Hit {
		t.Fatalf("cache = %+v, want a miss", body.Cache)
	}
	var res nasa.Result[nasa.FarmData]
	if err := json.Unmarshal(body.Data, &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Source != nasa.SourceSynthetic || !res.Fallback {
		t.Errorf("source=%s fallback=%v", res.Source, res.Fallback)
	}

	_, again := env.do(t, http.MethodGet, "/api/nasa-data?action=farm-data&lat=41.5868&lng=-93.625&date=2026-03-30", "")
	if again.Cache == nil || !again.Cache.Hit {
		t.Errorf("second call cache = %+v, want hit", again.Cache)
	}
	if again.Cache != nil && again.Cache.TTLSeconds != int64(cache.DegradedCategory.TTL()/time.Second) {
		t.Errorf("fallback cached for %ds, want the degraded TTL", again.Cache.TTLSeconds)
	}
}

func TestNASAData_TestConnectionFailureIs200(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	code, body := env.do(t, http.MethodGet, "/api/nasa-data?action=test-connection", "")
	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	if body.Success {
		t.Error("success = true, want false when NASA is unreachable")
	}
}

func TestNASAData_CoordinateValidation(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	tests := []struct {
		name  string
		query string
	}{
		{"missing lat", "lng=10"},
		{"lat out of range", "lat=91&lng=10"},
		{"lng out of range", "lat=10&lng=-181"},
		{"not a number", "lat=north&lng=10"},
		{"bad date", "lat=10&lng=10&date=01-04-2026"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := env.do(t, http.MethodGet, "/api/nasa-data?action=weather&"+tt.query, "")
			if code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", code)
			}
			if body.Error == nil || body.Error.Code != ErrCodeValidationFailed {
				t.Errorf("error = %+v, want VALIDATION_FAILED", body.Error)
			}
		})
	}
}

func TestNASAData_UnknownScenario(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	code, body := env.do(t, http.MethodGet, "/api/nasa-data?action=scenarios&scenario=moon-farm", "")
	if code != http.StatusNotFound || body.Error.Code != ErrCodeNotFound {
		t.Fatalf("status = %d error = %+v, want 404 NOT_FOUND", code, body.Error)
	}
}

func TestGuestSession_Lifecycle(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	id := env.createSession(t, "Wanjiru")

	code, body := env.do(t, http.MethodPost, "/api/guest-session?action=update-preferences&sessionId="+id,
		`{"theme":"dark","language":"sw-KE"}`)
	if code != http.StatusOK {
		t.Fatalf("update-preferences status = %d (%+v)", code, body.Error)
	}
	var s session.GuestSession
	if err := json.Unmarshal(body.Data, &s); err != nil {
		t.Fatal(err)
	}
	if s.Profile.Preferences.Theme != "dark" || s.Profile.Preferences.Language != "sw" {
		t.Errorf("preferences = %+v", s.Profile.Preferences)
	}

	code, _ = env.do(t, http.MethodDelete, "/api/guest-session?action=end-session&sessionId="+id, "")
	if code != http.StatusOK {
		t.Fatalf("end-session status = %d", code)
	}
	code, body = env.do(t, http.MethodGet, "/api/guest-session?action=get-session&sessionId="+id, "")
	if code != http.StatusUnauthorized || body.Error.Code != ErrCodeUnauthorized {
		t.Errorf("after end: status = %d error = %+v, want 401", code, body.Error)
	}
}

func TestGuestSession_ExpiredReturns401(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	id := env.createSession(t, "")

	created := env.clock.Now()
	env.clock.Advance(session.DefaultDuration - time.Second)
	code, live := env.do(t, http.MethodGet, "/api/guest-session?action=get-session&sessionId="+id, "")
	if code != http.StatusOK {
		t.Fatalf("just before expiry: status = %d, want 200", code)
	}
	var view struct {
		SessionID string    `json:"sessionId"`
		ExpiresAt time.Time `json:"expiresAt"`
	}
	if err := json.Unmarshal(live.Data, &view); err != nil {
		t.Fatal(err)
	}
	if view.SessionID != id || !view.ExpiresAt.Equal(created.Add(session.DefaultDuration)) {
		t.Errorf("session view = %+v, want expiresAt %v", view, created.Add(session.DefaultDuration))
	}

	env.clock.Advance(2 * time.Second)
	code, body := env.do(t, http.MethodPost, "/api/guest-session?action=extend-session&sessionId="+id, "")
	if code != http.StatusUnauthorized {
		t.Fatalf("after expiry: status = %d, want 401", code)
	}
	if body.Error.Message != "Session expired" {
		t.Errorf("message = %q", body.Error.Message)
	}
}

func TestGuestSession_BadRequests(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	id := env.createSession(t, "")

	tests := []struct {
		name     string
		method   string
		target   string
		body     string
		wantCode string
	}{
		{"malformed session id", http.MethodGet, "/api/guest-session?action=get-session&sessionId=abc", "", ErrCodeValidationFailed},
		{"missing session id", http.MethodPost, "/api/guest-session?action=track-interaction", `{"page":"/x"}`, ErrCodeValidationFailed},
		{"invalid JSON", http.MethodPost, "/api/guest-session?action=update-progress&sessionId=" + id, `{"streak":`, ErrCodeBadRequest},
		{"unknown field", http.MethodPost, "/api/guest-session?action=update-progress&sessionId=" + id, `{"xp":9000}`, ErrCodeBadRequest},
		{"bad theme", http.MethodPost, "/api/guest-session?action=update-preferences&sessionId=" + id, `{"theme":"neon"}`, ErrCodeValidationFailed},
		{"unsupported language", http.MethodPost, "/api/guest-session?action=update-preferences&sessionId=" + id, `{"language":"tlh"}`, ErrCodeValidationFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := env.do(t, tt.method, tt.target, tt.body)
			if code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", code)
			}
			if body.Error.Code != tt.wantCode {
				t.Errorf("code = %s, want %s", body.Error.Code, tt.wantCode)
			}
		})
	}
}

func TestLearningHub_UnknownModule(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	code, body := env.do(t, http.MethodGet, "/api/learning-hub?action=module-content&moduleId=underwater-basket-weaving", "")
	if code != http.StatusNotFound || body.Error.Code != ErrCodeNotFound {
		t.Fatalf("status = %d error = %+v, want 404", code, body.Error)
	}

	code, _ = env.do(t, http.MethodPost, "/api/learning-hub?action=complete-module",
		`{"moduleId":"underwater-basket-weaving","score":90,"timeSpent":10}`)
	if code != http.StatusNotFound {
		t.Errorf("complete-module status = %d, want 404", code)
	}
}

func TestLearningHub_CompleteModuleIdempotent(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	id := env.createSession(t, "Ada")
	target := "/api/learning-hub?action=complete-module&sessionId=" + id
	payload := `{"moduleId":"satellite-basics","score":95,"timeSpent":20}`

	_, first := env.do(t, http.MethodPost, target, payload)
	_, second := env.do(t, http.MethodPost, target, payload)

	var r1, r2 learning.CompletionResult
	if err := json.Unmarshal(first.Data, &r1); err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(second.Data, &r2); err != nil {
		t.Fatal(err)
	}
	if r1.AlreadyCompleted || r1.XPAwarded != 100 {
		t.Errorf("first = %+v, want 100 XP", r1)
	}
	if !r2.AlreadyCompleted || r2.XPAwarded != 0 || r2.TotalXP != r1.TotalXP {
		t.Errorf("second = %+v, want alreadyCompleted with no XP", r2)
	}

	s, err := env.sessions.Get(context.Background(), id)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Contains(s.Progress.CompletedModules, "satellite-basics") {
		t.Errorf("session progress = %+v, want mirrored completion", s.Progress)
	}
}

func TestLearningHub_RequiresLiveSession(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	id := env.createSession(t, "Ada")
	env.clock.Advance(session.DefaultDuration + time.Second)

	payload := `{"moduleId":"satellite-basics","score":95,"timeSpent":20}`
	tests := []struct {
		name    string
		method  string
		target  string
		body    string
		message string
	}{
		{"expired complete-module", http.MethodPost, "/api/learning-hub?action=complete-module&sessionId=" + id, payload, "Session expired"},
		{"unknown complete-module", http.MethodPost, "/api/learning-hub?action=complete-module&sessionId=guest_1700000000000_deadbeef", payload, "Session not found"},
		{"expired submit-assessment", http.MethodPost, "/api/learning-hub?action=submit-assessment&sessionId=" + id, `{"assessmentId":"satellite-basics-quiz","answers":[0,0]}`, "Session expired"},
		{"expired progress", http.MethodGet, "/api/learning-hub?action=progress&sessionId=" + id, "", "Session expired"},
		{"unknown leaderboard", http.MethodGet, "/api/learning-hub?action=leaderboard&sessionId=guest_1700000000000_deadbeef", "", "Session not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := env.do(t, tt.method, tt.target, tt.body)
			if code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want 401", code)
			}
			if body.Success || body.Error == nil || body.Error.Code != ErrCodeUnauthorized || body.Error.Message != tt.message {
				t.Errorf("error = %+v, want UNAUTHORIZED %q", body.Error, tt.message)
			}
			if len(body.Data) != 0 && string(body.Data) != "null" {
				t.Errorf("data = %s, want none", body.Data)
			}
		})
	}

	// The demo learner was not credited by the rejected calls.
	_, body := env.do(t, http.MethodGet, "/api/learning-hub?action=progress", "")
	var p learning.LearnerProgress
	if err := json.Unmarshal(body.Data, &p); err != nil {
		t.Fatal(err)
	}
	if p.XP != 0 || len(p.CompletedModules) != 0 {
		t.Errorf("demo progress = %+v, want untouched", p)
	}
}

func TestLearningHub_SubmitAssessmentHalfCorrect(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	code, body := env.do(t, http.MethodPost, "/api/learning-hub?action=submit-assessment",
		`{"assessmentId":"satellite-basics-quiz","answers":[-1,-1]}`)
	if code != http.StatusOK {
		t.Fatalf("status = %d (%+v)", code, body.Error)
	}
	var res learning.AssessmentResult
	if err := json.Unmarshal(body.Data, &res); err != nil {
		t.Fatal(err)
	}
	if res.Score != 0 || res.Passed {
		t.Errorf("all-wrong submission = %+v", res)
	}
	if res.Award != 50 {
		t.Errorf("award = %d, want floor(100*0.5)", res.Award)
	}
}

func TestLearningHub_ModulesCachedAndFiltered(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	_, first := env.do(t, http.MethodGet, "/api/learning-hub?action=modules&level=beginner", "")
	_, second := env.do(t, http.MethodGet, "/api/learning-hub?action=modules&level=beginner", "")
	if first.Cache == nil || first.Cache.Hit || second.Cache == nil || !second.Cache.Hit {
		t.Fatalf("cache = %+v then %+v, want miss then hit", first.Cache, second.Cache)
	}
	if string(first.Data) != string(second.Data) {
		t.Error("cached payload differs from the original")
	}

	code, body := env.do(t, http.MethodGet, "/api/learning-hub?action=modules&level=expert", "")
	if code != http.StatusBadRequest || body.Error.Code != ErrCodeValidationFailed {
		t.Errorf("invalid level: status = %d error = %+v", code, body.Error)
	}
}

func TestDataHub_UpdateFarmData(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"updates a field", `{"farmId":"farm-001","fieldUpdates":[{"fieldId":"field-a","health":"good"}]}`, http.StatusOK},
		{"unknown farm", `{"farmId":"farm-999","fieldUpdates":[{"fieldId":"field-a","health":"good"}]}`, http.StatusNotFound},
		{"unknown field", `{"farmId":"farm-001","fieldUpdates":[{"fieldId":"field-z","health":"good"}]}`, http.StatusNotFound},
		{"no updates", `{"farmId":"farm-001","fieldUpdates":[]}`, http.StatusBadRequest},
		{"ndvi out of range", `{"farmId":"farm-001","fieldUpdates":[{"fieldId":"field-a","ndvi":1.5}]}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := env.do(t, http.MethodPost, "/api/data-hub?action=update-farm-data", tt.body)
			if code != tt.wantStatus {
				t.Errorf("status = %d, want %d (%+v)", code, tt.wantStatus, body.Error)
			}
		})
	}
}

func TestDataHub_ClearCache(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	env.do(t, http.MethodGet, "/api/data-hub?action=market-data", "")
	env.do(t, http.MethodGet, "/api/nasa-data?action=terrain&lat=1&lng=1", "")

	code, body := env.do(t, http.MethodPost, "/api/data-hub?action=clear-cache", `{"category":"nasa"}`)
	if code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	var res struct {
		Cleared int `json:"cleared"`
	}
	if err := json.Unmarshal(body.Data, &res); err != nil {
		t.Fatal(err)
	}
	if res.Cleared != 1 {
		t.Errorf("cleared = %d, want only the nasa entry", res.Cleared)
	}

	_, market := env.do(t, http.MethodGet, "/api/data-hub?action=market-data", "")
	if market.Cache == nil || !market.Cache.Hit {
		t.Error("market entry should survive a nasa clear")
	}
}

func TestRouter_MethodNotAllowedAndNotFound(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	code, body := env.do(t, http.MethodPut, "/api/data-hub?action=market-data", "")
	if code != http.StatusMethodNotAllowed || body.Error.Code != ErrCodeMethodNotAllowed {
		t.Errorf("PUT: status = %d error = %+v", code, body.Error)
	}
	code, body = env.do(t, http.MethodGet, "/api/weather-station", "")
	if code != http.StatusNotFound || body.Error.Code != ErrCodeNotFound {
		t.Errorf("unknown route: status = %d error = %+v", code, body.Error)
	}
}

func TestRouter_EchoesRequestID(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/api/data-hub?action=crop-database&crop=corn", nil)
	req.Header.Set("X-Request-ID", "req-42")
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	var body envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Meta == nil || body.Meta.RequestID != "req-42" {
		t.Errorf("meta = %+v, want requestId req-42", body.Meta)
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("missing security headers on /api routes")
	}
}

func TestHealth(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	for _, path := range []string{"/health/live", "/health/ready"} {
		code, body := env.do(t, http.MethodGet, path, "")
		if code != http.StatusOK || !body.Success {
			t.Errorf("%s: status = %d success = %v", path, code, body.Success)
		}
	}
}
