// AgriSat - Satellite Agriculture Learning Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agrisat

package nasa

import (
	"fmt"
	"time"
)

// Source identifies where a payload came from.
type Source string

const (
	SourcePower     Source = "nasa-power"
	SourceEarth     Source = "nasa-earth"
	SourceAPOD      Source = "nasa-apod"
	SourceSynthetic Source = "synthetic"
)

// Result wraps a payload with its provenance.
type Result[T any] struct {
	Data           T      `json:"data"`
	Source         Source `json:"source"`
	Fallback       bool   `json:"fallback"`
	FallbackReason string `json:"fallbackReason,omitempty"`
}

// Degraded reports whether the result is a fallback stand-in.
func (r Result[T]) Degraded() bool { return r.Fallback }

// Point is a WGS84 coordinate.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Validate reports ErrInvalidCoordinates for out-of-range values.
func (p Point) Validate() error {
	if p.Lat < -90 || p.Lat > 90 || p.Lng < -180 || p.Lng > 180 {
		return fmt.Errorf("%w: lat=%v lng=%v", ErrInvalidCoordinates, p.Lat, p.Lng)
	}
	return nil
}

// Indicators are the core satellite-derived values for a point.
type Indicators struct {
	NDVI               float64 `json:"ndvi"`               // [0,1]
	SoilMoisture       float64 `json:"soilMoisture"`       // m³/m³, [0,0.6]
	Precipitation      float64 `json:"precipitation"`      // mm/day, [0,50]
	LandSurfaceTemp    float64 `json:"landSurfaceTemp"`    // °C, [-10,50]
	Evapotranspiration float64 `json:"evapotranspiration"` // mm/day, [0,15]
}

// FarmData is the farm-data action payload.
type FarmData struct {
	Location   Point      `json:"location"`
	Date       string     `json:"date"`
	Indicators Indicators `json:"indicators"`
	Humidity   float64    `json:"humidity"`
	SolarRad   float64    `json:"solarRadiation"` // kWh/m²/day
	WindSpeed  float64    `json:"windSpeed"`      // m/s
	Missions   []string   `json:"missions"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// WeatherDay is one day of a forecast.
type WeatherDay struct {
	Date          string  `json:"date"`
	TempMax       float64 `json:"tempMax"`
	TempMin       float64 `json:"tempMin"`
	Precipitation float64 `json:"precipitation"`
	Humidity      float64 `json:"humidity"`
	WindSpeed     float64 `json:"windSpeed"`
	Conditions    string  `json:"conditions"`
}

// WeatherForecast covers seven days.
type WeatherForecast struct {
	Location Point        `json:"location"`
	Days     []WeatherDay `json:"days"`
}

// SoilAnalysis is the soil-analysis payload.
type SoilAnalysis struct {
	Location        Point    `json:"location"`
	Moisture        float64  `json:"moisture"`
	Temperature     float64  `json:"temperature"`
	PH              float64  `json:"ph"`
	OrganicMatter   float64  `json:"organicMatter"` // percent
	Nitrogen        float64  `json:"nitrogen"`      // mg/kg
	Phosphorus      float64  `json:"phosphorus"`    // mg/kg
	Potassium       float64  `json:"potassium"`     // mg/kg
	MoistureStatus  string   `json:"moistureStatus"`
	Recommendations []string `json:"recommendations"`
}

// CropHealth is the crop-health payload.
type CropHealth struct {
	Location     Point    `json:"location"`
	NDVI         float64  `json:"ndvi"`
	HealthScore  int      `json:"healthScore"` // 0-100
	Status       string   `json:"status"`
	WaterStress  bool     `json:"waterStress"`
	HeatStress   bool     `json:"heatStress"`
	GrowthStage  string   `json:"growthStage"`
	Alerts       []string `json:"alerts"`
	Observations int      `json:"observations"`
}

// Terrain describes the land at a point.
type Terrain struct {
	Location  Point   `json:"location"`
	Elevation float64 `json:"elevation"` // meters
	Slope     float64 `json:"slope"`     // degrees
	Aspect    string  `json:"aspect"`
	SoilType  string  `json:"soilType"`
	Drainage  string  `json:"drainage"`
	LandCover string  `json:"landCover"`
}

// Elevation is the elevation payload.
type Elevation struct {
	Location Point   `json:"location"`
	Meters   float64 `json:"meters"`
	Dataset  string  `json:"dataset"`
}

// Terrain3D is a square grid of heights centered on a point.
type Terrain3D struct {
	Center     Point       `json:"center"`
	Size       int         `json:"size"`
	Resolution float64     `json:"resolution"` // meters between samples
	MinHeight  float64     `json:"minHeight"`
	MaxHeight  float64     `json:"maxHeight"`
	Heights    [][]float64 `json:"heights"`
}

// EarthImagery is the earth payload.
type EarthImagery struct {
	Location Point  `json:"location"`
	Date     string `json:"date"`
	ID       string `json:"id,omitempty"`
	Dataset  string `json:"dataset"`
	URL      string `json:"url,omitempty"`
}

// ConnectionStatus is the test-connection payload.
type ConnectionStatus struct {
	Connected        bool   `json:"connected"`
	RealDataEnabled  bool   `json:"realDataEnabled"`
	APIKeyConfigured bool   `json:"apiKeyConfigured"`
	Breaker          string `json:"breaker"`
	LatencyMs        int64  `json:"latencyMs"`
	Message          string `json:"message"`
}
