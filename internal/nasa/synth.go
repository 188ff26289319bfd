// AgriSat - Satellite Agriculture Learning Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agrisat

package nasa

import (
	"math"
	"math/rand/v2"
	"sync"
	"time"
)

// Documented ranges for synthetic values.
const (
	MinNDVI, MaxNDVI                   = 0.0, 1.0
	MinSoilMoisture, MaxSoilMoisture   = 0.0, 0.6
	MinPrecipitation, MaxPrecipitation = 0.0, 50.0
	MinLST, MaxLST                     = -10.0, 50.0
	MinET, MaxET                       = 0.0, 15.0
	MinElevation, MaxElevation         = 0.0, 4500.0
	MinHumidity, MaxHumidity           = 5.0, 100.0
)

// Synth generates plausible but non-physical values. The coordinate term
// sin(lat)·cos(lng) keeps nearby points similar; jitter comes from the
// random source and every value is clamped into its range.
type Synth struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewSynth returns a generator drawing jitter from src. A nil src uses a
// time-seeded PCG.
func NewSynth(src rand.Source) *Synth {
	if src == nil {
		seed := uint64(time.Now().UnixNano())
		src = rand.NewPCG(seed, seed>>32|1)
	}
	return &Synth{rnd: rand.New(src)}
}

// base returns sin(lat)·cos(lng) in [-1,1], angles in degrees.
func base(p Point) float64 {
	return math.Sin(p.Lat*math.Pi/180) * math.Cos(p.Lng*math.Pi/180)
}

// jitter returns a value in [-spread, spread].
func (s *Synth) jitter(spread float64) float64 {
	s.mu.Lock()
	f := s.rnd.Float64()
	s.mu.Unlock()
	return (f*2 - 1) * spread
}

func (s *Synth) pick(options []string) string {
	s.mu.Lock()
	i := s.rnd.IntN(len(options))
	s.mu.Unlock()
	return options[i]
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// Indicators returns synthetic indicators for p.
func (s *Synth) Indicators(p Point) Indicators {
	b := base(p)
	ndvi := clamp(0.55+0.25*b+s.jitter(0.1), MinNDVI, MaxNDVI)
	lst := clamp(30-0.3*math.Abs(p.Lat)+5*b+s.jitter(3), MinLST, MaxLST)
	return Indicators{
		NDVI:               round(ndvi, 3),
		SoilMoisture:       round(clamp(0.28+0.12*b+s.jitter(0.05), MinSoilMoisture, MaxSoilMoisture), 3),
		Precipitation:      round(clamp(4+3*b+s.jitter(3), MinPrecipitation, MaxPrecipitation), 1),
		LandSurfaceTemp:    round(lst, 1),
		Evapotranspiration: round(clamp(1.5+4*ndvi+0.05*lst+s.jitter(0.5), MinET, MaxET), 1),
	}
}

// FarmData returns a synthetic farm-data payload.
func (s *Synth) FarmData(p Point, date string, now time.Time) FarmData {
	return FarmData{
		Location:   p,
		Date:       date,
		Indicators: s.Indicators(p),
		Humidity:   round(clamp(60+15*base(p)+s.jitter(10), MinHumidity, MaxHumidity), 0),
		SolarRad:   round(clamp(5+1.5*math.Cos(p.Lat*math.Pi/180)+s.jitter(0.8), 0, 9), 2),
		WindSpeed:  round(clamp(3+s.jitter(2), 0, 20), 1),
		Missions:   []string{"MODIS", "SMAP", "GPM"},
		UpdatedAt:  now.UTC(),
	}
}

var conditions = []string{"sunny", "partly-cloudy", "cloudy", "light-rain", "rain"}

// Weather returns a seven-day synthetic forecast starting at start.
func (s *Synth) Weather(p Point, start time.Time) WeatherForecast {
	b := base(p)
	days := make([]WeatherDay, 7)
	for i := range days {
		tmax := clamp(28-0.3*math.Abs(p.Lat)+4*b+s.jitter(3), MinLST, MaxLST)
		precip := clamp(3+2*b+s.jitter(4), MinPrecipitation, MaxPrecipitation)
		days[i] = WeatherDay{
			Date:          start.AddDate(0, 0, i).Format(time.DateOnly),
			TempMax:       round(tmax, 1),
			TempMin:       round(clamp(tmax-8-s.jitter(2), MinLST, MaxLST), 1),
			Precipitation: round(precip, 1),
			Humidity:      round(clamp(55+20*b+s.jitter(10), MinHumidity, MaxHumidity), 0),
			WindSpeed:     round(clamp(3+s.jitter(2), 0, 20), 1),
			Conditions:    describeWeather(precip),
		}
	}
	return WeatherForecast{Location: p, Days: days}
}

func describeWeather(precip float64) string {
	switch {
	case precip >= 10:
		return conditions[4]
	case precip >= 3:
		return conditions[3]
	case precip >= 1:
		return conditions[2]
	case precip > 0.2:
		return conditions[1]
	default:
		return conditions[0]
	}
}

// SoilAnalysis derives a soil report from indicators.
func (s *Synth) SoilAnalysis(p Point, ind Indicators) SoilAnalysis {
	b := base(p)
	sa := SoilAnalysis{
		Location:      p,
		Moisture:      ind.SoilMoisture,
		Temperature:   round(clamp(ind.LandSurfaceTemp-3+s.jitter(1), MinLST, MaxLST), 1),
		PH:            round(clamp(6.5+0.8*b+s.jitter(0.4), 4.5, 8.5), 1),
		OrganicMatter: round(clamp(3+1.5*b+s.jitter(0.8), 0.5, 8), 1),
		Nitrogen:      round(clamp(40+15*b+s.jitter(10), 5, 120), 0),
		Phosphorus:    round(clamp(25+8*b+s.jitter(6), 5, 80), 0),
		Potassium:     round(clamp(180+40*b+s.jitter(30), 50, 400), 0),
	}
	switch {
	case sa.Moisture < 0.15:
		sa.MoistureStatus = "dry"
		sa.Recommendations = append(sa.Recommendations, "Schedule irrigation within 48 hours")
	case sa.Moisture > 0.45:
		sa.MoistureStatus = "saturated"
		sa.Recommendations = append(sa.Recommendations, "Delay field operations until soil drains")
	default:
		sa.MoistureStatus = "adequate"
	}
	if sa.PH < 5.8 {
		sa.Recommendations = append(sa.Recommendations, "Apply lime to raise pH")
	}
	if sa.Nitrogen < 30 {
		sa.Recommendations = append(sa.Recommendations, "Consider a split nitrogen application")
	}
	if len(sa.Recommendations) == 0 {
		sa.Recommendations = []string{"Maintain current management"}
	}
	return sa
}

var growthStages = []string{"emergence", "vegetative", "flowering", "grain-fill", "maturity"}

// CropHealth derives crop health from indicators.
func (s *Synth) CropHealth(p Point, ind Indicators) CropHealth {
	ch := CropHealth{
		Location:     p,
		NDVI:         ind.NDVI,
		HealthScore:  int(math.Round(clamp(ind.NDVI*100+s.jitter(5), 0, 100))),
		WaterStress:  ind.SoilMoisture < 0.15,
		HeatStress:   ind.LandSurfaceTemp > 35,
		GrowthStage:  s.pick(growthStages),
		Alerts:       []string{},
		Observations: 8 + int(math.Round(math.Abs(s.jitter(4)))),
	}
	switch {
	case ch.HealthScore >= 70:
		ch.Status = "excellent"
	case ch.HealthScore >= 50:
		ch.Status = "good"
	case ch.HealthScore >= 30:
		ch.Status = "fair"
	default:
		ch.Status = "poor"
	}
	if ch.WaterStress {
		ch.Alerts = append(ch.Alerts, "Low root-zone soil moisture")
	}
	if ch.HeatStress {
		ch.Alerts = append(ch.Alerts, "Canopy temperature above 35°C")
	}
	return ch
}

func (s *Synth) elevation(p Point) float64 {
	return clamp(400+350*(base(p)+1)+s.jitter(50), MinElevation, MaxElevation)
}

var (
	aspects   = []string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}
	soilTypes = []string{"loam", "silt loam", "clay loam", "sandy loam", "clay"}
)

// Terrain returns a synthetic terrain description.
func (s *Synth) Terrain(p Point) Terrain {
	elev := s.elevation(p)
	slope := clamp(2+3*math.Abs(base(p))+s.jitter(1.5), 0, 45)
	t := Terrain{
		Location:  p,
		Elevation: round(elev, 0),
		Slope:     round(slope, 1),
		Aspect:    s.pick(aspects),
		SoilType:  s.pick(soilTypes),
		LandCover: "cropland",
	}
	switch {
	case slope > 8:
		t.Drainage = "excessive"
	case slope > 3:
		t.Drainage = "well-drained"
	default:
		t.Drainage = "moderate"
	}
	return t
}

// Elevation returns a synthetic elevation.
func (s *Synth) Elevation(p Point) Elevation {
	return Elevation{Location: p, Meters: round(s.elevation(p), 0), Dataset: string(SourceSynthetic)}
}

// Terrain3D returns a size×size height grid spaced resolution meters apart.
func (s *Synth) Terrain3D(p Point, size int, resolution float64) Terrain3D {
	center := s.elevation(p)
	grid := Terrain3D{
		Center:     p,
		Size:       size,
		Resolution: resolution,
		MinHeight:  math.Inf(1),
		MaxHeight:  math.Inf(-1),
		Heights:    make([][]float64, size),
	}
	for i := range size {
		row := make([]float64, size)
		for j := range size {
			u := float64(i) / float64(size) * math.Pi
			v := float64(j) / float64(size) * math.Pi
			h := clamp(center+60*math.Sin(u)*math.Cos(v)+s.jitter(5), MinElevation, MaxElevation)
			h = round(h, 1)
			row[j] = h
			grid.MinHeight = math.Min(grid.MinHeight, h)
			grid.MaxHeight = math.Max(grid.MaxHeight, h)
		}
		grid.Heights[i] = row
	}
	if size == 0 {
		grid.MinHeight, grid.MaxHeight = 0, 0
	}
	return grid
}

// EarthImagery returns a placeholder imagery record.
func (s *Synth) EarthImagery(p Point, date string) EarthImagery {
	return EarthImagery{Location: p, Date: date, Dataset: string(SourceSynthetic)}
}
