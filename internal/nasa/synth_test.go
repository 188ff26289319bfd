// AgriSat - Satellite Agriculture Learning Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agrisat

package nasa

import (
	"math"
	"math/rand/v2"
	"testing"
	"time"
)

func inRange(t *testing.T, name string, v, lo, hi float64) {
	t.Helper()
	if v < lo || v > hi || math.IsNaN(v) {
		t.Errorf("%s = %v, want within [%v, %v]", name, v, lo, hi)
	}
}

func TestSynth_ValuesStayInRange(t *testing.T) {
	t.Parallel()
	s := NewSynth(rand.NewPCG(1, 2))
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	for lat := -90.0; lat <= 90; lat += 15 {
		for lng := -180.0; lng <= 180; lng += 30 {
			p := Point{Lat: lat, Lng: lng}
			for range 5 {
				ind := s.Indicators(p)
				inRange(t, "ndvi", ind.NDVI, MinNDVI, MaxNDVI)
				inRange(t, "soilMoisture", ind.SoilMoisture, MinSoilMoisture, MaxSoilMoisture)
				inRange(t, "precipitation", ind.Precipitation, MinPrecipitation, MaxPrecipitation)
				inRange(t, "lst", ind.LandSurfaceTemp, MinLST, MaxLST)
				inRange(t, "et", ind.Evapotranspiration, MinET, MaxET)

				fd := s.FarmData(p, "2024-06-01", start)
				inRange(t, "humidity", fd.Humidity, MinHumidity, MaxHumidity)

				ch := s.CropHealth(p, ind)
				inRange(t, "healthScore", float64(ch.HealthScore), 0, 100)

				inRange(t, "elevation", s.Elevation(p).Meters, MinElevation, MaxElevation)

				for _, d := range s.Weather(p, start).Days {
					inRange(t, "tempMax", d.TempMax, MinLST, MaxLST)
					inRange(t, "tempMin", d.TempMin, MinLST, MaxLST)
					inRange(t, "dayPrecip", d.Precipitation, MinPrecipitation, MaxPrecipitation)
				}
			}
		}
	}
}

func TestSynth_DeterministicWithSeededSource(t *testing.T) {
	t.Parallel()
	p := Point{Lat: 41.5868, Lng: -93.625}

	a := NewSynth(rand.NewPCG(42, 7)).Indicators(p)
	b := NewSynth(rand.NewPCG(42, 7)).Indicators(p)
	if a != b {
		t.Errorf("same seed produced %+v and %+v", a, b)
	}
}

func TestSynth_WeatherSevenConsecutiveDays(t *testing.T) {
	t.Parallel()
	s := NewSynth(rand.NewPCG(3, 4))
	wf := s.Weather(Point{Lat: 10, Lng: 20}, time.Date(2024, 2, 26, 0, 0, 0, 0, time.UTC))

	if len(wf.Days) != 7 {
		t.Fatalf("len(Days) = %d, want 7", len(wf.Days))
	}
	want := []string{"2024-02-26", "2024-02-27", "2024-02-28", "2024-02-29", "2024-03-01", "2024-03-02", "2024-03-03"}
	for i, d := range wf.Days {
		if d.Date != want[i] {
			t.Errorf("Days[%d].Date = %s, want %s", i, d.Date, want[i])
		}
	}
}

func TestSynth_Terrain3DGrid(t *testing.T) {
	t.Parallel()
	s := NewSynth(rand.NewPCG(5, 6))
	grid := s.Terrain3D(Point{Lat: 36.7, Lng: -119.8}, 8, 30)

	if grid.Size != 8 || len(grid.Heights) != 8 {
		t.Fatalf("grid size = %d rows = %d, want 8", grid.Size, len(grid.Heights))
	}
	for i, row := range grid.Heights {
		if len(row) != 8 {
			t.Fatalf("row %d has %d cells", i, len(row))
		}
		for _, h := range row {
			if h < grid.MinHeight || h > grid.MaxHeight {
				t.Errorf("height %v outside [%v, %v]", h, grid.MinHeight, grid.MaxHeight)
			}
		}
	}
}

func TestBase_CoordinateTerm(t *testing.T) {
	t.Parallel()
	tests := []struct {
		p    Point
		want float64
	}{
		{Point{Lat: 0, Lng: 0}, 0},
		{Point{Lat: 90, Lng: 0}, 1},
		{Point{Lat: 90, Lng: 180}, -1},
		{Point{Lat: 30, Lng: 60}, 0.25},
	}
	for _, tt := range tests {
		if got := base(tt.p); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("base(%+v) = %v, want %v", tt.p, got, tt.want)
		}
	}
}

func TestPoint_Validate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		p       Point
		wantErr bool
	}{
		{"origin", Point{}, false},
		{"corners", Point{Lat: -90, Lng: 180}, false},
		{"lat too high", Point{Lat: 90.01}, true},
		{"lng too low", Point{Lng: -180.5}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if err := tt.p.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
