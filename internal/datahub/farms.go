// AgriSat - Satellite Agriculture Learning Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agrisat

package datahub

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"
)

var (
	// ErrFarmNotFound is returned for an unknown farm id.
	ErrFarmNotFound = errors.New("farm not found")

	// ErrFieldNotFound is returned for an unknown field id within a farm.
	ErrFieldNotFound = errors.New("field not found")
)

// Field is one parcel of a farm.
type Field struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Crop         string    `json:"crop"`
	Area         float64   `json:"area"`
	PlantingDate string    `json:"plantingDate"`
	GrowthStage  string    `json:"growthStage"`
	Health       string    `json:"health"`
	SoilMoisture float64   `json:"soilMoisture"`
	NDVI         float64   `json:"ndvi"`
	Irrigation   string    `json:"irrigation"`
	LastUpdated  time.Time `json:"lastUpdated"`
}

// Farm is a demo farm.
type Farm struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Owner     string  `json:"owner"`
	Region    string  `json:"region"`
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	TotalArea float64 `json:"totalArea"`
	Fields    []Field `json:"fields"`
}

func (f Farm) clone() Farm {
	f.Fields = slices.Clone(f.Fields)
	return f
}

// FieldUpdate is a partial change to one field. Nil fields are kept.
type FieldUpdate struct {
	FieldID      string   `json:"fieldId" validate:"required,max=64"`
	Crop         *string  `json:"crop,omitempty" validate:"omitempty,max=40"`
	GrowthStage  *string  `json:"growthStage,omitempty" validate:"omitempty,max=40"`
	Health       *string  `json:"health,omitempty" validate:"omitempty,oneof=excellent good fair poor"`
	SoilMoisture *float64 `json:"soilMoisture,omitempty" validate:"omitempty,gte=0,lte=0.6"`
	NDVI         *float64 `json:"ndvi,omitempty" validate:"omitempty,gte=0,lte=1"`
	Irrigation   *string  `json:"irrigation,omitempty" validate:"omitempty,max=40"`
}

// Registry holds the demo farms.
type Registry struct {
	mu    sync.RWMutex
	farms map[string]*Farm
	order []string
}

// NewRegistry returns a registry seeded with the demo farms.
func NewRegistry(now time.Time) *Registry {
	r := &Registry{farms: make(map[string]*Farm)}
	for _, f := range seedFarms(now) {
		f := f
		r.farms[f.ID] = &f
		r.order = append(r.order, f.ID)
	}
	return r
}

// List returns copies of every farm in seed order.
func (r *Registry) List() []Farm {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Farm, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.farms[id].clone())
	}
	return out
}

// UpdateFields applies updates atomically: if any field id is unknown
// nothing changes.
func (r *Registry) UpdateFields(farmID string, updates []FieldUpdate, now time.Time) (Farm, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, ok := r.farms[farmID]
	if !ok {
		return Farm{}, fmt.Errorf("%w: %q", ErrFarmNotFound, farmID)
	}
	idx := make([]int, len(updates))
	for i, u := range updates {
		j := slices.IndexFunc(f.Fields, func(fl Field) bool { return fl.ID == u.FieldID })
		if j < 0 {
			return Farm{}, fmt.Errorf("%w: %q in farm %q", ErrFieldNotFound, u.FieldID, farmID)
		}
		idx[i] = j
	}

	for i, u := range updates {
		fl := &f.Fields[idx[i]]
		if u.Crop != nil {
			fl.Crop = *u.Crop
		}
		if u.GrowthStage != nil {
			fl.GrowthStage = *u.GrowthStage
		}
		if u.Health != nil {
			fl.Health = *u.Health
		}
		if u.SoilMoisture != nil {
			fl.SoilMoisture = *u.SoilMoisture
		}
		if u.NDVI != nil {
			fl.NDVI = *u.NDVI
		}
		if u.Irrigation != nil {
			fl.Irrigation = *u.Irrigation
		}
		fl.LastUpdated = now
	}
	return f.clone(), nil
}

func seedFarms(now time.Time) []Farm {
	return []Farm{
		{
			ID: "farm-001", Name: "Prairie View Farm", Owner: "Demo Farmer", Region: "Story County, Iowa",
			Lat: 42.0308, Lng: -93.6319, TotalArea: 160,
			Fields: []Field{
				{ID: "field-a", Name: "North Field", Crop: "corn", Area: 80, PlantingDate: "2026-04-28", GrowthStage: "V8",
					Health: "good", SoilMoisture: 0.28, NDVI: 0.72, Irrigation: "rainfed", LastUpdated: now},
				{ID: "field-b", Name: "South Field", Crop: "soybean", Area: 60, PlantingDate: "2026-05-12", GrowthStage: "V4",
					Health: "fair", SoilMoisture: 0.19, NDVI: 0.58, Irrigation: "rainfed", LastUpdated: now},
				{ID: "field-c", Name: "Creek Pasture", Crop: "alfalfa", Area: 20, PlantingDate: "2025-09-01", GrowthStage: "regrowth",
					Health: "excellent", SoilMoisture: 0.33, NDVI: 0.81, Irrigation: "rainfed", LastUpdated: now},
			},
		},
		{
			ID: "farm-002", Name: "Rift Valley Smallholding", Owner: "Demo Farmer", Region: "Nakuru, Kenya",
			Lat: -0.3031, Lng: 36.08, TotalArea: 4.5,
			Fields: []Field{
				{ID: "field-a", Name: "Maize Plot", Crop: "maize", Area: 3, PlantingDate: "2026-03-20", GrowthStage: "tasseling",
					Health: "fair", SoilMoisture: 0.16, NDVI: 0.55, Irrigation: "drip", LastUpdated: now},
				{ID: "field-b", Name: "Bean Plot", Crop: "beans", Area: 1.5, PlantingDate: "2026-04-02", GrowthStage: "flowering",
					Health: "good", SoilMoisture: 0.22, NDVI: 0.63, Irrigation: "drip", LastUpdated: now},
			},
		},
	}
}
