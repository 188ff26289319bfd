// AgriSat - Satellite Agriculture Learning Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agrisat

package learning

// Module levels.
const (
	LevelBeginner     = "beginner"
	LevelIntermediate = "intermediate"
	LevelAdvanced     = "advanced"
)

// Section is one block of module content.
type Section struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Kind  string `json:"kind"`
}

// Module is a unit of the curriculum.
type Module struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Level         string    `json:"level"`
	Duration      int       `json:"duration"`
	XPReward      int       `json:"xpReward"`
	Topics        []string  `json:"topics"`
	Prerequisites []string  `json:"prerequisites"`
	Sections      []Section `json:"sections,omitempty"`
}

// Summary drops the content sections.
func (m Module) Summary() Module {
	m.Sections = nil
	return m
}

// Question is an assessment question. The answer key never leaves the server.
type Question struct {
	ID          string   `json:"id"`
	Prompt      string   `json:"prompt"`
	Options     []string `json:"options"`
	answer      int
	explanation string
}

// Assessment belongs to a module.
type Assessment struct {
	ID        string     `json:"id"`
	ModuleID  string     `json:"moduleId"`
	Title     string     `json:"title"`
	XPReward  int        `json:"xpReward"`
	PassScore int        `json:"passScore"`
	Questions []Question `json:"questions"`
}

// PassScore is the score at or above which an assessment earns its full reward.
const PassScore = 70

func q(id, prompt string, answer int, explanation string, options ...string) Question {
	return Question{ID: id, Prompt: prompt, Options: options, answer: answer, explanation: explanation}
}

var modules = []Module{
	{
		ID:          "satellite-basics",
		Title:       "Reading the Farm from Orbit",
		Description: "How Earth observation satellites measure crops, soil and weather.",
		Level:       LevelBeginner,
		Duration:    20,
		XPReward:    100,
		Topics:      []string{"remote sensing", "spectral bands", "revisit time"},
		Sections: []Section{
			{Title: "Why satellites", Kind: "text", Body: "A single pass covers thousands of fields. Repeated passes turn images into a season-long record."},
			{Title: "Spectral bands", Kind: "text", Body: "Sensors record reflected light in separate bands. Healthy leaves reflect strongly in near infrared and absorb red."},
			{Title: "Missions", Kind: "list", Body: "Landsat 8/9, Sentinel-2, MODIS, SMAP, GPM"},
		},
	},
	{
		ID:            "ndvi-vegetation-health",
		Title:         "NDVI and Vegetation Health",
		Description:   "Compute and interpret the Normalized Difference Vegetation Index.",
		Level:         LevelBeginner,
		Duration:      25,
		XPReward:      150,
		Topics:        []string{"NDVI", "crop vigor", "time series"},
		Prerequisites: []string{"satellite-basics"},
		Sections: []Section{
			{Title: "The formula", Kind: "formula", Body: "NDVI = (NIR - Red) / (NIR + Red)"},
			{Title: "Reading values", Kind: "text", Body: "Bare soil sits near 0.1. Dense healthy canopy reaches 0.8 or more."},
			{Title: "Seasonal curves", Kind: "text", Body: "Compare this season's curve with past years to spot stress early."},
		},
	},
	{
		ID:            "soil-moisture-smap",
		Title:         "Soil Moisture with SMAP",
		Description:   "Use microwave soil moisture retrievals to plan irrigation.",
		Level:         LevelIntermediate,
		Duration:      30,
		XPReward:      200,
		Topics:        []string{"SMAP", "root zone", "irrigation"},
		Prerequisites: []string{"satellite-basics"},
		Sections: []Section{
			{Title: "Measuring water from space", Kind: "text", Body: "SMAP's L-band radiometer senses the top 5 cm of soil through light vegetation."},
			{Title: "Units", Kind: "text", Body: "Volumetric water content in m3/m3. Most cropland ranges from 0.05 to 0.45."},
		},
	},
	{
		ID:            "precipitation-irrigation",
		Title:         "Rainfall, Evapotranspiration and Irrigation",
		Description:   "Balance GPM rainfall against crop water demand.",
		Level:         LevelIntermediate,
		Duration:      30,
		XPReward:      200,
		Topics:        []string{"GPM", "evapotranspiration", "water balance"},
		Prerequisites: []string{"soil-moisture-smap"},
		Sections: []Section{
			{Title: "Water balance", Kind: "formula", Body: "Irrigation need = crop ET - effective rainfall - soil water change"},
			{Title: "Timing", Kind: "text", Body: "Irrigating before flowering protects yield more than late-season water."},
		},
	},
	{
		ID:            "drought-early-warning",
		Title:         "Drought Early Warning",
		Description:   "Combine NDVI, soil moisture and land surface temperature to anticipate drought.",
		Level:         LevelAdvanced,
		Duration:      40,
		XPReward:      300,
		Topics:        []string{"LST", "anomalies", "decision making"},
		Prerequisites: []string{"ndvi-vegetation-health", "soil-moisture-smap"},
		Sections: []Section{
			{Title: "Anomalies", Kind: "text", Body: "Compare current values with a multi-year baseline for the same week."},
			{Title: "Heat stress", Kind: "text", Body: "Land surface temperature rising while NDVI falls is a classic stress signal."},
			{Title: "Acting on signals", Kind: "text", Body: "Adjust planting dates, switch varieties or insure before losses appear."},
		},
	},
}

var assessments = []Assessment{
	{
		ID: "satellite-basics-quiz", ModuleID: "satellite-basics", Title: "Satellite Basics Check", XPReward: 100,
		Questions: []Question{
			q("sb-1", "Which band do healthy leaves reflect most strongly?", 2, "Chlorophyll absorbs red; leaf structure reflects near infrared.",
				"Blue", "Red", "Near infrared", "Thermal"),
			q("sb-2", "What does a satellite's revisit time describe?", 0, "Revisit time is how often the same spot is imaged.",
				"How often it images the same place", "How long one image takes", "Its orbital altitude", "The sensor's lifetime"),
		},
	},
	{
		ID: "ndvi-quiz", ModuleID: "ndvi-vegetation-health", Title: "NDVI Interpretation", XPReward: 150,
		Questions: []Question{
			q("ndvi-1", "NIR is 0.5 and Red is 0.1. What is NDVI?", 1, "(0.5-0.1)/(0.5+0.1) = 0.67",
				"0.40", "0.67", "0.83", "5.0"),
			q("ndvi-2", "An NDVI near 0.1 most likely shows", 3, "Bare soil and rock sit close to zero.",
				"Dense forest", "Healthy maize", "Flooded rice", "Bare soil"),
			q("ndvi-3", "NDVI dropping mid-season while neighbours stay green suggests", 0, "A local drop points to field-level stress.",
				"Field-level stress", "Cloud cover everywhere", "Harvest of the whole region", "Sensor calibration"),
		},
	},
	{
		ID: "soil-moisture-quiz", ModuleID: "soil-moisture-smap", Title: "Soil Moisture Essentials", XPReward: 200,
		Questions: []Question{
			q("sm-1", "Which depth does SMAP's radiometer sense directly?", 1, "The L-band signal comes from roughly the top 5 cm.",
				"Top 1 mm", "Top 5 cm", "Top 1 m", "Water table"),
			q("sm-2", "A reading of 0.08 m3/m3 in loam usually means", 2, "Values under 0.1 are dry for most loams.",
				"Saturated soil", "Field capacity", "Dry soil", "Frozen soil"),
		},
	},
	{
		ID: "irrigation-quiz", ModuleID: "precipitation-irrigation", Title: "Water Balance", XPReward: 200,
		Questions: []Question{
			q("ir-1", "Crop ET is 6 mm/day and effective rain is 2 mm/day. Daily irrigation need?", 1, "6 - 2 = 4 mm/day with no soil water change.",
				"2 mm", "4 mm", "6 mm", "8 mm"),
			q("ir-2", "Which mission measures global precipitation?", 0, "GPM is the Global Precipitation Measurement mission.",
				"GPM", "SMAP", "Landsat", "GRACE"),
		},
	},
	{
		ID: "drought-quiz", ModuleID: "drought-early-warning", Title: "Reading Drought Signals", XPReward: 300,
		Questions: []Question{
			q("dr-1", "Which combination is the strongest drought signal?", 2, "Hot canopy plus falling vigor plus dry soil.",
				"High NDVI, wet soil", "Low LST, high rain", "Rising LST, falling NDVI, dry soil", "Cloudy week"),
			q("dr-2", "An anomaly compares the current value with", 0, "Anomalies are departures from a baseline.",
				"A multi-year baseline", "Yesterday's value", "The global average", "The sensor maximum"),
		},
	},
}

// Achievement ids.
const (
	AchievementFirstModule  = "first-harvest"
	AchievementThreeModules = "growing-season"
	AchievementAllModules   = "master-farmer"
	AchievementPerfectScore = "perfect-score"
	AchievementXP1000       = "satellite-sage"
)

// Achievement is an unlockable badge.
type Achievement struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	XPBonus     int    `json:"xpBonus"`
	rule        func(p *LearnerProgress) bool
}

// achievements are evaluated in order; the XP rule comes last so earlier
// bonuses count towards it.
var achievements = []Achievement{
	{
		ID: AchievementFirstModule, Name: "First Harvest", Description: "Complete your first module.", XPBonus: 50,
		rule: func(p *LearnerProgress) bool { return len(p.CompletedModules) >= 1 },
	},
	{
		ID: AchievementThreeModules, Name: "Growing Season", Description: "Complete three modules.", XPBonus: 100,
		rule: func(p *LearnerProgress) bool { return len(p.CompletedModules) >= 3 },
	},
	{
		ID: AchievementAllModules, Name: "Master Farmer", Description: "Complete every module.", XPBonus: 250,
		rule: func(p *LearnerProgress) bool { return len(p.CompletedModules) >= len(modules) },
	},
	{
		ID: AchievementPerfectScore, Name: "Perfect Score", Description: "Score 100 on an assessment.", XPBonus: 100,
		rule: func(p *LearnerProgress) bool {
			for _, r := range p.Assessments {
				if r.BestScore == 100 {
					return true
				}
			}
			return false
		},
	},
	{
		ID: AchievementXP1000, Name: "Satellite Sage", Description: "Earn 1000 XP.",
		rule: func(p *LearnerProgress) bool { return p.XP >= 1000 },
	},
}

func findModule(id string) (Module, bool) {
	for _, m := range modules {
		if m.ID == id {
			return m, true
		}
	}
	return Module{}, false
}

func findAssessment(id string) (Assessment, bool) {
	for _, a := range assessments {
		if a.ID == id {
			return a, true
		}
	}
	return Assessment{}, false
}
