// AgriSat - Satellite Agriculture Learning Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agrisat

package cache

import "time"

// Category groups cached payloads by how quickly the underlying data changes.
type Category string

const (
	CategoryRealtime  Category = "realtime"
	CategoryWeather   Category = "weather"
	CategoryMarket    Category = "market"
	CategoryFarm      Category = "farm"
	CategorySatellite Category = "satellite"
	CategoryTerrain   Category = "terrain"
	CategoryReference Category = "reference"
	CategoryStatic    Category = "static"
)

// DefaultTTL applies to categories missing from the table.
const DefaultTTL = 30 * time.Minute

var categoryTTLs = map[Category]time.Duration{
	CategoryRealtime:  5 * time.Minute,
	CategoryWeather:   15 * time.Minute,
	CategoryMarket:    30 * time.Minute,
	CategoryFarm:      30 * time.Minute,
	CategorySatellite: time.Hour,
	CategoryTerrain:   24 * time.Hour,
	CategoryReference: 24 * time.Hour,
	CategoryStatic:    7 * 24 * time.Hour,
}

// TTL returns the time-to-live for entries of this category.
func (c Category) TTL() time.Duration {
	if ttl, ok := categoryTTLs[c]; ok {
		return ttl
	}
	return DefaultTTL
}

// Categories returns every known category.
func Categories() []Category {
	return []Category{
		CategoryRealtime, CategoryWeather, CategoryMarket, CategoryFarm,
		CategorySatellite, CategoryTerrain, CategoryReference, CategoryStatic,
	}
}
