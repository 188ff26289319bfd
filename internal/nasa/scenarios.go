// AgriSat - Satellite Agriculture Learning Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agrisat

package nasa

import "fmt"

// Scenario is a named farming situation used by lessons and the data hub.
type Scenario struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Region      string     `json:"region"`
	Location    Point      `json:"location"`
	Crop        string     `json:"crop"`
	Challenge   string     `json:"challenge"`
	Difficulty  string     `json:"difficulty"`
	Conditions  Indicators `json:"conditions"`
	Objectives  []string   `json:"objectives"`
}

var scenarios = []Scenario{
	{
		ID:          "iowa-corn-drought",
		Name:        "Midwest Flash Drought",
		Description: "A corn field in central Iowa enters a flash drought during pollination.",
		Region:      "Iowa, USA",
		Location:    Point{Lat: 41.5868, Lng: -93.625},
		Crop:        "corn",
		Challenge:   "drought",
		Difficulty:  "beginner",
		Conditions:  Indicators{NDVI: 0.52, SoilMoisture: 0.12, Precipitation: 0.4, LandSurfaceTemp: 34.5, Evapotranspiration: 6.8},
		Objectives: []string{
			"Read a falling soil moisture trend",
			"Decide when irrigation pays off",
		},
	},
	{
		ID:          "kenya-maize-rains",
		Name:        "Long Rains Planting Window",
		Description: "A smallholder maize farm near Nakuru waits for the long rains to start.",
		Region:      "Nakuru, Kenya",
		Location:    Point{Lat: -0.3031, Lng: 36.08},
		Crop:        "maize",
		Challenge:   "planting-timing",
		Difficulty:  "beginner",
		Conditions:  Indicators{NDVI: 0.38, SoilMoisture: 0.18, Precipitation: 3.2, LandSurfaceTemp: 24.1, Evapotranspiration: 4.1},
		Objectives: []string{
			"Use precipitation anomalies to time planting",
			"Compare NDVI before and after emergence",
		},
	},
	{
		ID:          "punjab-wheat-heat",
		Name:        "Terminal Heat Stress",
		Description: "Wheat in Punjab faces an early heat wave during grain filling.",
		Region:      "Punjab, India",
		Location:    Point{Lat: 30.9, Lng: 75.85},
		Crop:        "wheat",
		Challenge:   "heat-stress",
		Difficulty:  "intermediate",
		Conditions:  Indicators{NDVI: 0.61, SoilMoisture: 0.22, Precipitation: 0.1, LandSurfaceTemp: 38.2, Evapotranspiration: 7.4},
		Objectives: []string{
			"Spot heat stress in land surface temperature",
			"Plan irrigation to cool the canopy",
		},
	},
	{
		ID:          "mato-grosso-soy",
		Name:        "Soybean Expansion",
		Description: "A large soybean operation in Mato Grosso monitors a second-season crop.",
		Region:      "Mato Grosso, Brazil",
		Location:    Point{Lat: -12.6819, Lng: -56.9211},
		Crop:        "soybean",
		Challenge:   "crop-monitoring",
		Difficulty:  "intermediate",
		Conditions:  Indicators{NDVI: 0.74, SoilMoisture: 0.31, Precipitation: 8.6, LandSurfaceTemp: 29.3, Evapotranspiration: 5.2},
		Objectives: []string{
			"Track canopy development with NDVI time series",
			"Identify fields that lag behind",
		},
	},
	{
		ID:          "central-valley-almonds",
		Name:        "Groundwater Limits",
		Description: "An almond orchard in California's Central Valley must cut water use by a fifth.",
		Region:      "California, USA",
		Location:    Point{Lat: 36.7378, Lng: -119.7871},
		Crop:        "almonds",
		Challenge:   "water-allocation",
		Difficulty:  "advanced",
		Conditions:  Indicators{NDVI: 0.58, SoilMoisture: 0.16, Precipitation: 0, LandSurfaceTemp: 33.8, Evapotranspiration: 7.9},
		Objectives: []string{
			"Estimate crop water demand from evapotranspiration",
			"Prioritise blocks for deficit irrigation",
		},
	},
	{
		ID:          "mekong-rice-flood",
		Name:        "Delta Flooding",
		Description: "Rice paddies in the Mekong Delta after an unusually high flood season.",
		Region:      "Can Tho, Vietnam",
		Location:    Point{Lat: 10.0452, Lng: 105.7469},
		Crop:        "rice",
		Challenge:   "flooding",
		Difficulty:  "advanced",
		Conditions:  Indicators{NDVI: 0.44, SoilMoisture: 0.55, Precipitation: 22.5, LandSurfaceTemp: 27.6, Evapotranspiration: 3.6},
		Objectives: []string{
			"Read saturated soil moisture signals",
			"Plan replanting after water recedes",
		},
	},
}

// Scenarios returns every scenario. The returned slice is a copy.
func Scenarios() []Scenario {
	out := make([]Scenario, len(scenarios))
	copy(out, scenarios)
	return out
}

// FindScenario returns the scenario with the given id.
func FindScenario(id string) (Scenario, error) {
	for _, s := range scenarios {
		if s.ID == id {
			return s, nil
		}
	}
	return Scenario{}, fmt.Errorf("%w: %s", ErrScenarioNotFound, id)
}
