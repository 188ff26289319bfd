// AgriSat - Satellite Agriculture Learning Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agrisat

package nasa

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/agrisat/internal/cache"
	"github.com/tomtom215/agrisat/internal/logging"
	"github.com/tomtom215/agrisat/internal/metrics"
)

// Terrain grid bounds.
const (
	DefaultGridSize   = 16
	MinGridSize       = 2
	MaxGridSize       = 64
	defaultResolution = 30.0
)

// Service answers NASA data actions: cache, then the real API when enabled,
// then synthetic data.
type Service struct {
	upstream Upstream
	cache    *cache.Cache
	synth    *Synth
	realData bool
	now      func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithSynth replaces the synthetic generator.
func WithSynth(s *Synth) Option {
	return func(svc *Service) { svc.synth = s }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(svc *Service) { svc.now = now }
}

// NewService creates a Service. Real data is only requested when realData is
// true and upstream is non-nil.
func NewService(upstream Upstream, c *cache.Cache, realData bool, opts ...Option) *Service {
	s := &Service{
		upstream: upstream,
		cache:    c,
		realData: realData && upstream != nil,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.synth == nil {
		s.synth = NewSynth(nil)
	}
	return s
}

// RealDataEnabled reports whether upstream calls are attempted.
func (s *Service) RealDataEnabled() bool {
	return s.realData
}

// ParseDate parses YYYY-MM-DD; empty means today in UTC.
func (s *Service) ParseDate(date string) (time.Time, error) {
	if date == "" {
		y, m, d := s.now().UTC().Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}
	t, err := time.Parse(time.DateOnly, date)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	return t, nil
}

func (s *Service) prepare(p Point, date string) (time.Time, error) {
	if err := p.Validate(); err != nil {
		return time.Time{}, err
	}
	return s.ParseDate(date)
}

// TestConnection pings NASA. It is never cached.
func (s *Service) TestConnection(ctx context.Context) ConnectionStatus {
	st := ConnectionStatus{RealDataEnabled: s.realData, Breaker: "closed"}
	if s.upstream == nil {
		st.Message = "NASA client not configured; serving synthetic data"
		return st
	}
	st.Breaker = s.upstream.BreakerState()
	if !s.realData {
		st.Message = "Real NASA data disabled; serving synthetic data"
		return st
	}
	st.APIKeyConfigured = true

	start := s.now()
	apod, err := s.upstream.Ping(ctx)
	st.LatencyMs = s.now().Sub(start).Milliseconds()
	st.Breaker = s.upstream.BreakerState()
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("action", "test-connection").Msg("NASA connectivity check failed")
		st.Message = fallbackReason(err)
		return st
	}
	st.Connected = true
	st.Message = fmt.Sprintf("Connected to NASA API (APOD %s)", apod.Date)
	return st
}

// Scenarios returns all scenarios, or the one named id.
func (s *Service) Scenarios(ctx context.Context, id string) (Result[[]Scenario], cache.Status, error) {
	res, status, err := cache.Fetch(ctx, s.cache, cache.Key("nasa-scenarios"), cache.CategoryReference,
		func(context.Context) (Result[[]Scenario], error) {
			return Result[[]Scenario]{Data: Scenarios(), Source: SourceSynthetic}, nil
		})
	if err != nil || id == "" {
		return res, status, err
	}
	for _, sc := range res.Data {
		if sc.ID == id {
			res.Data = []Scenario{sc}
			return res, status, nil
		}
	}
	return Result[[]Scenario]{}, status, fmt.Errorf("%w: %s", ErrScenarioNotFound, id)
}

// FarmData returns indicators for p on date.
func (s *Service) FarmData(ctx context.Context, p Point, date string) (Result[FarmData], cache.Status, error) {
	day, err := s.prepare(p, date)
	if err != nil {
		return Result[FarmData]{}, cache.Status{}, err
	}
	key := cache.Key("nasa-farm-data", p.Lat, p.Lng, day.Format(time.DateOnly))
	return cache.Fetch(ctx, s.cache, key, cache.CategoryFarm, func(ctx context.Context) (Result[FarmData], error) {
		return s.farmData(ctx, "farm-data", p, day), nil
	})
}

// Weather returns seven days of weather for p ending on date.
func (s *Service) Weather(ctx context.Context, p Point, date string) (Result[WeatherForecast], cache.Status, error) {
	day, err := s.prepare(p, date)
	if err != nil {
		return Result[WeatherForecast]{}, cache.Status{}, err
	}
	key := cache.Key("nasa-weather", p.Lat, p.Lng, day.Format(time.DateOnly))
	return cache.Fetch(ctx, s.cache, key, cache.CategoryWeather, func(ctx context.Context) (Result[WeatherForecast], error) {
		start := day.AddDate(0, 0, -6)
		synthetic := s.synth.Weather(p, start)
		if !s.realData {
			return Result[WeatherForecast]{Data: synthetic, Source: SourceSynthetic}, nil
		}
		series, err := s.upstream.PowerDaily(ctx, p, start, day)
		if err == nil {
			if wf, ok := weatherFromPower(p, series); ok {
				return Result[WeatherForecast]{Data: wf, Source: SourcePower}, nil
			}
			err = fmt.Errorf("nasa %s: %w", APIPower, ErrNoData)
		}
		return fallback(ctx, "weather", p, synthetic, err), nil
	})
}

// SoilAnalysis returns a soil report for p on date.
func (s *Service) SoilAnalysis(ctx context.Context, p Point, date string) (Result[SoilAnalysis], cache.Status, error) {
	day, err := s.prepare(p, date)
	if err != nil {
		return Result[SoilAnalysis]{}, cache.Status{}, err
	}
	key := cache.Key("nasa-soil-analysis", p.Lat, p.Lng, day.Format(time.DateOnly))
	return cache.Fetch(ctx, s.cache, key, cache.CategorySatellite, func(ctx context.Context) (Result[SoilAnalysis], error) {
		fd := s.farmData(ctx, "soil-analysis", p, day)
		return Result[SoilAnalysis]{
			Data:           s.synth.SoilAnalysis(p, fd.Data.Indicators),
			Source:         fd.Source,
			Fallback:       fd.Fallback,
			FallbackReason: fd.FallbackReason,
		}, nil
	})
}

// CropHealth returns crop health for p on date.
func (s *Service) CropHealth(ctx context.Context, p Point, date string) (Result[CropHealth], cache.Status, error) {
	day, err := s.prepare(p, date)
	if err != nil {
		return Result[CropHealth]{}, cache.Status{}, err
	}
	key := cache.Key("nasa-crop-health", p.Lat, p.Lng, day.Format(time.DateOnly))
	return cache.Fetch(ctx, s.cache, key, cache.CategorySatellite, func(ctx context.Context) (Result[CropHealth], error) {
		fd := s.farmData(ctx, "crop-health", p, day)
		return Result[CropHealth]{
			Data:           s.synth.CropHealth(p, fd.Data.Indicators),
			Source:         fd.Source,
			Fallback:       fd.Fallback,
			FallbackReason: fd.FallbackReason,
		}, nil
	})
}

// Earth returns Landsat imagery metadata for p near date.
func (s *Service) Earth(ctx context.Context, p Point, date string) (Result[EarthImagery], cache.Status, error) {
	day, err := s.prepare(p, date)
	if err != nil {
		return Result[EarthImagery]{}, cache.Status{}, err
	}
	dateStr := day.Format(time.DateOnly)
	key := cache.Key("nasa-earth", p.Lat, p.Lng, dateStr)
	return cache.Fetch(ctx, s.cache, key, cache.CategorySatellite, func(ctx context.Context) (Result[EarthImagery], error) {
		synthetic := s.synth.EarthImagery(p, dateStr)
		if !s.realData {
			return Result[EarthImagery]{Data: synthetic, Source: SourceSynthetic}, nil
		}
		asset, err := s.upstream.EarthAssets(ctx, p, day)
		if err != nil {
			return fallback(ctx, "earth", p, synthetic, err), nil
		}
		return Result[EarthImagery]{
			Data: EarthImagery{
				Location: p,
				Date:     asset.Date,
				ID:       asset.ID,
				Dataset:  asset.Resource.Dataset,
				URL:      asset.URL,
			},
			Source: SourceEarth,
		}, nil
	})
}

// Terrain returns a terrain description for p.
func (s *Service) Terrain(ctx context.Context, p Point) (Result[Terrain], cache.Status, error) {
	if err := p.Validate(); err != nil {
		return Result[Terrain]{}, cache.Status{}, err
	}
	key := cache.Key("nasa-terrain", p.Lat, p.Lng)
	return cache.Fetch(ctx, s.cache, key, cache.CategoryTerrain, func(context.Context) (Result[Terrain], error) {
		return Result[Terrain]{Data: s.synth.Terrain(p), Source: SourceSynthetic}, nil
	})
}

// Elevation returns the elevation at p.
func (s *Service) Elevation(ctx context.Context, p Point) (Result[Elevation], cache.Status, error) {
	if err := p.Validate(); err != nil {
		return Result[Elevation]{}, cache.Status{}, err
	}
	key := cache.Key("nasa-elevation", p.Lat, p.Lng)
	return cache.Fetch(ctx, s.cache, key, cache.CategoryTerrain, func(context.Context) (Result[Elevation], error) {
		return Result[Elevation]{Data: s.synth.Elevation(p), Source: SourceSynthetic}, nil
	})
}

// Terrain3D returns a size×size height grid around p. size is clamped to
// [MinGridSize, MaxGridSize]; zero means DefaultGridSize.
func (s *Service) Terrain3D(ctx context.Context, p Point, size int) (Result[Terrain3D], cache.Status, error) {
	if err := p.Validate(); err != nil {
		return Result[Terrain3D]{}, cache.Status{}, err
	}
	if size == 0 {
		size = DefaultGridSize
	}
	size = max(MinGridSize, min(MaxGridSize, size))
	key := cache.Key("nasa-terrain-3d", p.Lat, p.Lng, size)
	return cache.Fetch(ctx, s.cache, key, cache.CategoryTerrain, func(context.Context) (Result[Terrain3D], error) {
		return Result[Terrain3D]{Data: s.synth.Terrain3D(p, size, defaultResolution), Source: SourceSynthetic}, nil
	})
}

// CacheStats returns statistics of the shared cache.
func (s *Service) CacheStats(ctx context.Context) (cache.Stats, error) {
	return s.cache.Stats(ctx)
}

// ClearCache removes every cached NASA response.
func (s *Service) ClearCache(ctx context.Context) (int, error) {
	return s.cache.Clear(ctx, "nasa")
}

// farmData builds farm data for p, overlaying NASA POWER values when real
// data is enabled. It never fails.
func (s *Service) farmData(ctx context.Context, action string, p Point, day time.Time) Result[FarmData] {
	synthetic := s.synth.FarmData(p, day.Format(time.DateOnly), s.now())
	if !s.realData {
		return Result[FarmData]{Data: synthetic, Source: SourceSynthetic}
	}
	series, err := s.upstream.PowerDaily(ctx, p, day.AddDate(0, 0, -6), day)
	if err == nil {
		fd := synthetic
		if applyPower(&fd, series) {
			fd.Missions = []string{"NASA POWER", "MODIS"}
			return Result[FarmData]{Data: fd, Source: SourcePower}
		}
		err = fmt.Errorf("nasa %s: %w", APIPower, ErrNoData)
	}
	return fallback(ctx, action, p, synthetic, err)
}

// applyPower overlays the latest POWER values onto fd. NDVI is not part of
// POWER and keeps its synthetic value. Reports whether anything applied.
func applyPower(fd *FarmData, series *PowerSeries) bool {
	applied := false
	if v, ok := series.Latest("T2M"); ok {
		fd.Indicators.LandSurfaceTemp = round(clamp(v, MinLST, MaxLST), 1)
		applied = true
	}
	if v, ok := series.Latest("PRECTOTCORR"); ok {
		fd.Indicators.Precipitation = round(clamp(v, MinPrecipitation, MaxPrecipitation), 1)
		applied = true
	}
	// GWETROOT is a 0-1 wetness fraction; scale into the volumetric range.
	if v, ok := series.Latest("GWETROOT"); ok {
		fd.Indicators.SoilMoisture = round(clamp(v*MaxSoilMoisture, MinSoilMoisture, MaxSoilMoisture), 3)
		applied = true
	}
	if v, ok := series.Latest("RH2M"); ok {
		fd.Humidity = round(clamp(v, MinHumidity, MaxHumidity), 0)
	}
	// AG community reports MJ/m²/day.
	if v, ok := series.Latest("ALLSKY_SFC_SW_DWN"); ok {
		fd.SolarRad = round(clamp(v/3.6, 0, 9), 2)
	}
	if v, ok := series.Latest("WS2M"); ok {
		fd.WindSpeed = round(clamp(v, 0, 20), 1)
	}
	return applied
}

func weatherFromPower(p Point, series *PowerSeries) (WeatherForecast, bool) {
	wf := WeatherForecast{Location: p}
	for _, day := range series.Days() {
		tmax, okMax := series.Value("T2M_MAX", day)
		tmin, okMin := series.Value("T2M_MIN", day)
		if !okMax || !okMin {
			continue
		}
		precip, _ := series.Value("PRECTOTCORR", day)
		rh, _ := series.Value("RH2M", day)
		ws, _ := series.Value("WS2M", day)
		date, err := time.Parse("20060102", day)
		if err != nil {
			continue
		}
		precip = clamp(precip, MinPrecipitation, MaxPrecipitation)
		wf.Days = append(wf.Days, WeatherDay{
			Date:          date.Format(time.DateOnly),
			TempMax:       round(clamp(tmax, MinLST, MaxLST), 1),
			TempMin:       round(clamp(tmin, MinLST, MaxLST), 1),
			Precipitation: round(precip, 1),
			Humidity:      round(clamp(rh, MinHumidity, MaxHumidity), 0),
			WindSpeed:     round(clamp(ws, 0, 20), 1),
			Conditions:    describeWeather(precip),
		})
	}
	return wf, len(wf.Days) > 0
}

// fallback logs and counts an upstream failure and wraps synthetic data.
func fallback[T any](ctx context.Context, action string, p Point, synthetic T, err error) Result[T] {
	reason := fallbackReason(err)
	logging.Ctx(ctx).Warn().
		Err(err).
		Str("action", action).
		Float64("lat", p.Lat).
		Float64("lng", p.Lng).
		Str("reason", reason).
		Msg("NASA upstream failed, serving synthetic data")
	metrics.RecordNASAFallback(action)
	return Result[T]{Data: synthetic, Source: SourceSynthetic, Fallback: true, FallbackReason: reason}
}

func fallbackReason(err error) string {
	var upstreamErr *UpstreamError
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return "circuit breaker open"
	case errors.Is(err, context.DeadlineExceeded):
		return "upstream timeout"
	case errors.Is(err, ErrNoData):
		return "upstream returned no data"
	case errors.Is(err, ErrRealDataDisabled):
		return "API key not configured"
	case errors.As(err, &upstreamErr):
		return fmt.Sprintf("upstream status %d", upstreamErr.StatusCode)
	default:
		return "upstream unavailable"
	}
}
