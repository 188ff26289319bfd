// AgriSat - Satellite Agriculture Learning Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agrisat

package datahub

import (
	"errors"
	"fmt"
	"strings"
)

// ErrCropNotFound is returned when a crop filter matches nothing.
var ErrCropNotFound = errors.New("crop not found")

// Crop is a crop database entry.
type Crop struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	ScientificName string     `json:"scientificName"`
	Season         string     `json:"season"`
	GrowingDays    int        `json:"growingDays"`
	WaterNeedMM    [2]int     `json:"waterNeedMm"`
	OptimalTempC   [2]float64 `json:"optimalTempC"`
	PeakNDVI       float64    `json:"peakNdvi"`
	SoilPH         [2]float64 `json:"soilPh"`
	Regions        []string   `json:"regions"`
	SatelliteTips  []string   `json:"satelliteTips"`
}

var crops = []Crop{
	{
		ID: "corn", Name: "Corn (Maize)", ScientificName: "Zea mays", Season: "summer", GrowingDays: 120,
		WaterNeedMM: [2]int{500, 800}, OptimalTempC: [2]float64{18, 32}, PeakNDVI: 0.85, SoilPH: [2]float64{5.8, 7.0},
		Regions:       []string{"US Corn Belt", "Mato Grosso", "Rift Valley"},
		SatelliteTips: []string{"NDVI peaks near silking", "Watch LST above 35°C during pollination"},
	},
	{
		ID: "wheat", Name: "Wheat", ScientificName: "Triticum aestivum", Season: "winter/spring", GrowingDays: 110,
		WaterNeedMM: [2]int{450, 650}, OptimalTempC: [2]float64{12, 25}, PeakNDVI: 0.8, SoilPH: [2]float64{6.0, 7.5},
		Regions:       []string{"Punjab", "Great Plains", "Black Sea"},
		SatelliteTips: []string{"Terminal heat shows as LST spikes during grain fill"},
	},
	{
		ID: "rice", Name: "Rice", ScientificName: "Oryza sativa", Season: "monsoon", GrowingDays: 130,
		WaterNeedMM: [2]int{900, 2000}, OptimalTempC: [2]float64{20, 35}, PeakNDVI: 0.8, SoilPH: [2]float64{5.0, 6.5},
		Regions:       []string{"Mekong Delta", "Punjab", "Java"},
		SatelliteTips: []string{"Flooded paddies read low NDVI before transplanting", "Radar sees through monsoon cloud"},
	},
	{
		ID: "soybean", Name: "Soybean", ScientificName: "Glycine max", Season: "summer", GrowingDays: 100,
		WaterNeedMM: [2]int{450, 700}, OptimalTempC: [2]float64{20, 30}, PeakNDVI: 0.82, SoilPH: [2]float64{6.0, 7.0},
		Regions:       []string{"Mato Grosso", "US Midwest", "Pampas"},
		SatelliteTips: []string{"Pod fill is the most drought-sensitive stage"},
	},
	{
		ID: "almonds", Name: "Almonds", ScientificName: "Prunus dulcis", Season: "perennial", GrowingDays: 210,
		WaterNeedMM: [2]int{1000, 1300}, OptimalTempC: [2]float64{15, 30}, PeakNDVI: 0.7, SoilPH: [2]float64{6.0, 8.0},
		Regions:       []string{"Central Valley"},
		SatelliteTips: []string{"Evapotranspiration maps drive orchard irrigation scheduling"},
	},
	{
		ID: "beans", Name: "Common Bean", ScientificName: "Phaseolus vulgaris", Season: "short rains", GrowingDays: 85,
		WaterNeedMM: [2]int{300, 500}, OptimalTempC: [2]float64{16, 28}, PeakNDVI: 0.7, SoilPH: [2]float64{6.0, 7.5},
		Regions:       []string{"East Africa", "Central America"},
		SatelliteTips: []string{"Small plots need 10 m or finer imagery"},
	},
}

// FindCrops filters the crop database. An empty filter returns every crop;
// otherwise the filter matches an id exactly or a name case-insensitively.
func FindCrops(filter string) ([]Crop, error) {
	filter = strings.TrimSpace(filter)
	if filter == "" {
		return append([]Crop(nil), crops...), nil
	}
	var out []Crop
	for _, c := range crops {
		if c.ID == strings.ToLower(filter) || strings.Contains(strings.ToLower(c.Name), strings.ToLower(filter)) {
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrCropNotFound, filter)
	}
	return out, nil
}
