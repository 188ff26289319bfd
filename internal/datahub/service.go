// AgriSat - Satellite Agriculture Learning Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agrisat

package datahub

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/tomtom215/agrisat/internal/cache"
	"github.com/tomtom215/agrisat/internal/logging"
	"github.com/tomtom215/agrisat/internal/metrics"
	"github.com/tomtom215/agrisat/internal/nasa"
)

// farmKeyFilter matches every cache key derived from farm state.
const farmKeyFilter = "farm-"

const headlineLimit = 5

// Alert is a condition worth a farmer's attention.
type Alert struct {
	Severity string `json:"severity"`
	Metric   string `json:"metric"`
	Message  string `json:"message"`
}

// NearestFarm is the closest registry farm to a point.
type NearestFarm struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	DistanceKm float64 `json:"distanceKm"`
}

// Overview is the farm-overview payload.
type Overview struct {
	Location        nasa.Point      `json:"location"`
	Indicators      nasa.Indicators `json:"indicators"`
	Alerts          []Alert         `json:"alerts"`
	Recommendations []string        `json:"recommendations"`
	NearestFarm     *NearestFarm    `json:"nearestFarm,omitempty"`
	Farms           []Farm          `json:"farms"`
	GeneratedAt     time.Time       `json:"generatedAt"`
}

// Lesson is a short static lesson.
type Lesson struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Summary string `json:"summary"`
	Topic   string `json:"topic"`
	Minutes int    `json:"minutes"`
	Link    string `json:"link"`
}

// EducationalContent is the educational-content payload.
type EducationalContent struct {
	Lessons        []Lesson   `json:"lessons"`
	Headlines      []Headline `json:"headlines"`
	HeadlineSource string     `json:"headlineSource"`
	Fallback       bool       `json:"fallback"`
	FallbackReason string     `json:"fallbackReason,omitempty"`
}

// Degraded reports whether the static headlines replaced the feed.
func (c EducationalContent) Degraded() bool { return c.Fallback }

var lessons = []Lesson{
	{ID: "what-is-ndvi", Title: "What NDVI Tells You", Topic: "vegetation", Minutes: 5,
		Summary: "Green leaves reflect near infrared and absorb red light. NDVI turns that contrast into a 0 to 1 health score.",
		Link:    "https://earthobservatory.nasa.gov/features/MeasuringVegetation"},
	{ID: "smap-soil-moisture", Title: "Soil Moisture from Space", Topic: "water", Minutes: 6,
		Summary: "SMAP maps the water in the top 5 cm of soil every two to three days.",
		Link:    "https://smap.jpl.nasa.gov/"},
	{ID: "gpm-rainfall", Title: "Tracking Rainfall with GPM", Topic: "water", Minutes: 4,
		Summary: "The Global Precipitation Measurement constellation estimates rain and snow every 30 minutes.",
		Link:    "https://gpm.nasa.gov/"},
	{ID: "power-agroclimate", Title: "Agroclimatology with NASA POWER", Topic: "climate", Minutes: 5,
		Summary: "POWER publishes daily temperature, humidity, radiation and wind for any point on Earth.",
		Link:    "https://power.larc.nasa.gov/"},
}

var staticHeadlines = []Headline{
	{Title: "Satellites Track a Flash Drought Across the Corn Belt", Source: SourceStatic,
		Summary: "Rapid drying of soils showed up in soil moisture data weeks before visible crop stress.",
		Link:    "https://earthobservatory.nasa.gov/"},
	{Title: "Green-Up Arrives Early in East Africa", Source: SourceStatic,
		Summary: "Above-average long rains pushed vegetation indices well above the seasonal norm.",
		Link:    "https://earthobservatory.nasa.gov/"},
	{Title: "Monsoon Floods Reshape the Mekong Delta", Source: SourceStatic,
		Summary: "Radar and optical imagery show inundated rice paddies along the lower Mekong.",
		Link:    "https://earthobservatory.nasa.gov/"},
}

// Service implements the data-hub actions.
type Service struct {
	cache     *cache.Cache
	nasa      *nasa.Service
	farms     *Registry
	headlines HeadlineSource
	now       func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithHeadlineSource sets where educational headlines come from. Without
// one the static headlines are served.
func WithHeadlineSource(h HeadlineSource) Option {
	return func(s *Service) { s.headlines = h }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a data hub service.
func NewService(c *cache.Cache, n *nasa.Service, farms *Registry, opts ...Option) *Service {
	s := &Service{cache: c, nasa: n, farms: farms, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FarmOverview combines NASA indicators for p with the registry farms.
func (s *Service) FarmOverview(ctx context.Context, p nasa.Point) (nasa.Result[Overview], cache.Status, error) {
	if err := p.Validate(); err != nil {
		return nasa.Result[Overview]{}, cache.Status{}, err
	}
	key := cache.Key("farm-overview", p.Lat, p.Lng)
	return cache.Fetch(ctx, s.cache, key, cache.CategoryFarm, func(ctx context.Context) (nasa.Result[Overview], error) {
		fd, _, err := s.nasa.FarmData(ctx, p, "")
		if err != nil {
			return nasa.Result[Overview]{}, fmt.Errorf("farm data: %w", err)
		}
		ind := fd.Data.Indicators
		farms := s.farms.List()
		ov := Overview{
			Location:        p,
			Indicators:      ind,
			Alerts:          alertsFor(ind),
			Recommendations: recommendationsFor(ind),
			NearestFarm:     nearest(p, farms),
			Farms:           farms,
			GeneratedAt:     s.now().UTC(),
		}
		return nasa.Result[Overview]{Data: ov, Source: fd.Source, Fallback: fd.Fallback, FallbackReason: fd.FallbackReason}, nil
	})
}

// CropDatabase returns crops matching filter.
func (s *Service) CropDatabase(ctx context.Context, filter string) ([]Crop, cache.Status, error) {
	if _, err := FindCrops(filter); err != nil {
		return nil, cache.Status{}, err
	}
	key := cache.Key("crop-database", strings.ToLower(strings.TrimSpace(filter)))
	return cache.Fetch(ctx, s.cache, key, cache.CategoryReference, func(context.Context) ([]Crop, error) {
		return FindCrops(filter)
	})
}

// Scenarios returns farming scenarios, or the one named id.
func (s *Service) Scenarios(ctx context.Context, id string) (nasa.Result[[]nasa.Scenario], cache.Status, error) {
	return s.nasa.Scenarios(ctx, id)
}

// EducationalContent returns lessons and headlines. Feed failures fall back
// to static headlines.
func (s *Service) EducationalContent(ctx context.Context) (EducationalContent, cache.Status, error) {
	return cache.Fetch(ctx, s.cache, cache.Key("educational-content"), cache.CategoryReference,
		func(ctx context.Context) (EducationalContent, error) {
			out := EducationalContent{
				Lessons:        lessons,
				Headlines:      staticHeadlines,
				HeadlineSource: SourceStatic,
			}
			if s.headlines == nil {
				return out, nil
			}
			items, err := s.headlines.Headlines(ctx, headlineLimit)
			if err == nil && len(items) == 0 {
				err = nasa.ErrNoData
			}
			if err != nil {
				logging.Ctx(ctx).Warn().Err(err).Msg("Earth Observatory feed unavailable, serving static headlines")
				metrics.RecordNASAFallback("educational-content")
				out.Fallback = true
				out.FallbackReason = "feed unavailable"
				return out, nil
			}
			out.Headlines = items
			out.HeadlineSource = SourceEarthObservatory
			return out, nil
		})
}

// MarketData returns today's synthetic commodity prices.
func (s *Service) MarketData(ctx context.Context) (MarketData, cache.Status, error) {
	today := s.now().UTC()
	key := cache.Key("market-data", today.Format(time.DateOnly))
	return cache.Fetch(ctx, s.cache, key, cache.CategoryMarket, func(context.Context) (MarketData, error) {
		return Market(today), nil
	})
}

// NASALiveData returns today's NASA indicators for p.
func (s *Service) NASALiveData(ctx context.Context, p nasa.Point) (nasa.Result[nasa.FarmData], cache.Status, error) {
	return s.nasa.FarmData(ctx, p, "")
}

// WeatherForecast returns the seven-day weather for p.
func (s *Service) WeatherForecast(ctx context.Context, p nasa.Point) (nasa.Result[nasa.WeatherForecast], cache.Status, error) {
	return s.nasa.Weather(ctx, p, "")
}

// CacheStats reports shared cache statistics.
func (s *Service) CacheStats(ctx context.Context) (cache.Stats, error) {
	return s.cache.Stats(ctx)
}

// ClearCache removes keys containing category, or every key when empty.
func (s *Service) ClearCache(ctx context.Context, category string) (int, error) {
	n, err := s.cache.Clear(ctx, strings.TrimSpace(category))
	if err != nil {
		return 0, fmt.Errorf("clear cache: %w", err)
	}
	return n, nil
}

// FarmUpdateResult is returned by UpdateFarmData.
type FarmUpdateResult struct {
	Farm               Farm `json:"farm"`
	UpdatedFields      int  `json:"updatedFields"`
	InvalidatedEntries int  `json:"invalidatedEntries"`
}

// UpdateFarmData merges field updates into a farm and invalidates every
// farm-derived cache entry.
func (s *Service) UpdateFarmData(ctx context.Context, farmID string, updates []FieldUpdate) (FarmUpdateResult, error) {
	farm, err := s.farms.UpdateFields(farmID, updates, s.now().UTC())
	if err != nil {
		return FarmUpdateResult{}, err
	}
	n, err := s.cache.Clear(ctx, farmKeyFilter)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("farm_id", farmID).Msg("Failed to invalidate farm cache entries")
	}
	logging.Ctx(ctx).Info().
		Str("farm_id", farmID).
		Int("fields", len(updates)).
		Int("invalidated", n).
		Msg("Farm data updated")
	return FarmUpdateResult{Farm: farm, UpdatedFields: len(updates), InvalidatedEntries: n}, nil
}

func alertsFor(ind nasa.Indicators) []Alert {
	alerts := []Alert{}
	if ind.NDVI < 0.3 {
		alerts = append(alerts, Alert{Severity: "high", Metric: "ndvi", Message: "Low vegetation vigor detected"})
	}
	if ind.SoilMoisture < 0.15 {
		alerts = append(alerts, Alert{Severity: "high", Metric: "soilMoisture", Message: "Soil moisture below crop stress threshold"})
	}
	if ind.LandSurfaceTemp > 35 {
		alerts = append(alerts, Alert{Severity: "medium", Metric: "landSurfaceTemp", Message: "Heat stress risk from high surface temperature"})
	}
	if ind.Precipitation > 30 {
		alerts = append(alerts, Alert{Severity: "medium", Metric: "precipitation", Message: "Heavy rainfall may cause waterlogging"})
	}
	return alerts
}

func recommendationsFor(ind nasa.Indicators) []string {
	var recs []string
	switch {
	case ind.SoilMoisture < 0.15:
		recs = append(recs, "Schedule irrigation within the next 48 hours")
	case ind.SoilMoisture > 0.45:
		recs = append(recs, "Delay irrigation and check field drainage")
	default:
		recs = append(recs, "Soil moisture is adequate, keep the current irrigation plan")
	}
	if ind.NDVI < 0.4 {
		recs = append(recs, "Scout low-NDVI zones for pests, nutrient deficiency or water stress")
	}
	if ind.Evapotranspiration > 6 {
		recs = append(recs, "High crop water demand, irrigate early morning to cut losses")
	}
	return recs
}

const earthRadiusKm = 6371.0

func nearest(p nasa.Point, farms []Farm) *NearestFarm {
	var best *NearestFarm
	for _, f := range farms {
		d := haversineKm(p, nasa.Point{Lat: f.Lat, Lng: f.Lng})
		if best == nil || d < best.DistanceKm {
			best = &NearestFarm{ID: f.ID, Name: f.Name, DistanceKm: math.Round(d*10) / 10}
		}
	}
	return best
}

func haversineKm(a, b nasa.Point) float64 {
	rad := math.Pi / 180
	dLat := (b.Lat - a.Lat) * rad
	dLng := (b.Lng - a.Lng) * rad
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(a.Lat*rad)*math.Cos(b.Lat*rad)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}
