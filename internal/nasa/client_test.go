// AgriSat - Satellite Agriculture Learning Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agrisat

package nasa

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/agrisat/internal/config"
)

const powerFixture = `{
  "properties": {
    "parameter": {
      "T2M":         {"20240530": 21.4, "20240531": 22.8, "20240601": -999},
      "T2M_MAX":     {"20240530": 27.0, "20240531": 29.1, "20240601": -999},
      "T2M_MIN":     {"20240530": 15.2, "20240531": 16.0, "20240601": -999},
      "PRECTOTCORR": {"20240530": 0.0,  "20240531": 12.5, "20240601": -999},
      "RH2M":        {"20240530": 61.0, "20240531": 78.3, "20240601": -999},
      "WS2M":        {"20240530": 3.1,  "20240531": 4.4,  "20240601": -999},
      "ALLSKY_SFC_SW_DWN": {"20240530": 25.2, "20240531": 18.0, "20240601": -999},
      "GWETROOT":    {"20240530": 0.5,  "20240531": 0.55, "20240601": -999}
    }
  }
}`

func testNASAConfig(baseURL string) config.NASAConfig {
	return config.NASAConfig{
		APIKey:              "test-key",
		EnableRealData:      true,
		PowerURL:            baseURL + "/power",
		EarthURL:            baseURL + "/earth",
		APODURL:             baseURL + "/apod",
		Timeout:             2 * time.Second,
		Retries:             0,
		BreakerMaxRequests:  1,
		BreakerInterval:     time.Minute,
		BreakerTimeout:      time.Minute,
		BreakerMinRequests:  100,
		BreakerFailureRatio: 1,
	}
}

func newPowerServer(t *testing.T, status int, body string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestClient_PowerDaily(t *testing.T) {
	t.Parallel()
	var gotQuery, gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		gotKey = r.Header.Get("X-Api-Key")
		_, _ = w.Write([]byte(powerFixture))
	}))
	defer srv.Close()

	c := NewClient(testNASAConfig(srv.URL))
	start := time.Date(2024, 5, 26, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	series, err := c.PowerDaily(context.Background(), Point{Lat: 41.5868, Lng: -93.625}, start, end)
	if err != nil {
		t.Fatalf("PowerDaily() error = %v", err)
	}

	for _, want := range []string{"start=20240526", "end=20240601", "latitude=41.5868", "longitude=-93.6250", "community=AG"} {
		if !strings.Contains(gotQuery, want) {
			t.Errorf("query %q missing %q", gotQuery, want)
		}
	}
	if gotKey != "test-key" {
		t.Errorf("X-Api-Key = %q, want test-key", gotKey)
	}

	if v, ok := series.Latest("T2M"); !ok || v != 22.8 {
		t.Errorf("Latest(T2M) = %v, %v; want 22.8 skipping fill value", v, ok)
	}
	if _, ok := series.Value("T2M", "20240601"); ok {
		t.Error("fill value should not be reported")
	}
	if days := series.Days(); len(days) != 3 || days[0] != "20240530" {
		t.Errorf("Days() = %v", days)
	}
}

func TestClient_UpstreamStatusError(t *testing.T) {
	t.Parallel()
	srv, calls := newPowerServer(t, http.StatusServiceUnavailable, `{"error":"maintenance"}`)

	c := NewClient(testNASAConfig(srv.URL))
	_, err := c.PowerDaily(context.Background(), Point{}, time.Now(), time.Now())

	var upstreamErr *UpstreamError
	if !errors.As(err, &upstreamErr) {
		t.Fatalf("error = %v, want *UpstreamError", err)
	}
	if upstreamErr.StatusCode != http.StatusServiceUnavailable || upstreamErr.API != APIPower {
		t.Errorf("UpstreamError = %+v", upstreamErr)
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1 with retries disabled", calls.Load())
	}
}

func TestClient_RetriesTransientFailures(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(powerFixture))
	}))
	defer srv.Close()

	cfg := testNASAConfig(srv.URL)
	cfg.Retries = 2
	c := NewClient(cfg)
	if _, err := c.PowerDaily(context.Background(), Point{}, time.Now(), time.Now()); err != nil {
		t.Fatalf("PowerDaily() error = %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("calls = %d, want 2", calls.Load())
	}
}

func TestClient_BreakerOpensAfterFailures(t *testing.T) {
	t.Parallel()
	srv, calls := newPowerServer(t, http.StatusInternalServerError, "boom")

	cfg := testNASAConfig(srv.URL)
	cfg.BreakerMinRequests = 2
	cfg.BreakerFailureRatio = 0.5
	c := NewClient(cfg)

	for range 2 {
		_, _ = c.PowerDaily(context.Background(), Point{}, time.Now(), time.Now())
	}
	if got := c.BreakerState(); got != "open" {
		t.Fatalf("BreakerState() = %s, want open", got)
	}

	_, err := c.PowerDaily(context.Background(), Point{}, time.Now(), time.Now())
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("error = %v, want ErrOpenState", err)
	}
	if calls.Load() != 2 {
		t.Errorf("calls = %d, want 2 (third rejected by breaker)", calls.Load())
	}
}

func TestClient_RequiresAPIKey(t *testing.T) {
	t.Parallel()
	cfg := testNASAConfig("http://127.0.0.1:0")
	cfg.APIKey = ""
	c := NewClient(cfg)

	if _, err := c.Ping(context.Background()); !errors.Is(err, ErrRealDataDisabled) {
		t.Errorf("Ping() error = %v, want ErrRealDataDisabled", err)
	}
	if _, err := c.EarthAssets(context.Background(), Point{}, time.Now()); !errors.Is(err, ErrRealDataDisabled) {
		t.Errorf("EarthAssets() error = %v, want ErrRealDataDisabled", err)
	}
}

func TestClient_TimeoutHonoured(t *testing.T) {
	t.Parallel()
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	cfg := testNASAConfig(srv.URL)
	cfg.Timeout = 50 * time.Millisecond
	c := NewClient(cfg)

	_, err := c.PowerDaily(context.Background(), Point{}, time.Now(), time.Now())
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error = %v, want deadline exceeded", err)
	}
}
