// AgriSat - Satellite Agriculture Learning Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agrisat

package session

import (
	"slices"
	"time"
)

// GuestSession is an anonymous learner's state.
type GuestSession struct {
	SessionID   string      `json:"sessionId"`
	Profile     Profile     `json:"profile"`
	Progress    Progress    `json:"progress"`
	FarmData    FarmData    `json:"farmData"`
	SessionMeta SessionMeta `json:"sessionMeta"`
}

// Profile holds display name, level and preferences.
type Profile struct {
	Name        string      `json:"name"`
	Level       int         `json:"level"`
	XP          int         `json:"xp"`
	Preferences Preferences `json:"preferences"`
}

// Preferences are user-selected display settings.
type Preferences struct {
	Theme         string        `json:"theme"`
	Units         string        `json:"units"`
	Language      string        `json:"language"`
	Notifications Notifications `json:"notifications"`
}

// Notifications toggles.
type Notifications struct {
	Email        bool `json:"email"`
	Push         bool `json:"push"`
	Achievements bool `json:"achievements"`
}

// Progress tracks learning activity.
type Progress struct {
	CompletedModules []string            `json:"completedModules"`
	CurrentModule    string              `json:"currentModule,omitempty"`
	Achievements     []AchievementRecord `json:"achievements"`
	Streak           int                 `json:"streak"`
	TotalStudyTime   int                 `json:"totalStudyTime"` // minutes
}

// AchievementRecord is an unlocked achievement.
type AchievementRecord struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	UnlockedAt time.Time `json:"unlockedAt"`
}

// FarmData is the learner's chosen farm.
type FarmData struct {
	Location        *Location `json:"location,omitempty"`
	PreferredCrops  []string  `json:"preferredCrops"`
	ExperienceLevel string    `json:"experienceLevel"`
}

// Location is a named point.
type Location struct {
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
	Name string  `json:"name,omitempty"`
}

// SessionMeta holds lifecycle and activity data.
type SessionMeta struct {
	StartTime    time.Time  `json:"startTime"`
	LastActivity time.Time  `json:"lastActivity"`
	PageViews    []PageView `json:"pageViews"`
	Interactions int        `json:"interactions"`
	Extensions   int        `json:"extensions"`
}

// PageView is one entry of the page-view log.
type PageView struct {
	Page      string    `json:"page"`
	Timestamp time.Time `json:"timestamp"`
}

// IsValid reports whether the session is live at now: now - startTime < d.
func (s *GuestSession) IsValid(now time.Time, d time.Duration) bool {
	return now.Sub(s.SessionMeta.StartTime) < d
}

// ExpiresAt returns the first instant at which the session is invalid.
func (s *GuestSession) ExpiresAt(d time.Duration) time.Time {
	return s.SessionMeta.StartTime.Add(d)
}

// Clone returns a deep copy.
func (s *GuestSession) Clone() *GuestSession {
	c := *s
	c.Progress.CompletedModules = slices.Clone(s.Progress.CompletedModules)
	c.Progress.Achievements = slices.Clone(s.Progress.Achievements)
	c.FarmData.PreferredCrops = slices.Clone(s.FarmData.PreferredCrops)
	if s.FarmData.Location != nil {
		loc := *s.FarmData.Location
		c.FarmData.Location = &loc
	}
	c.SessionMeta.PageViews = slices.Clone(s.SessionMeta.PageViews)
	return &c
}

// HasCompleted reports whether moduleID is in the completed list.
func (p *Progress) HasCompleted(moduleID string) bool {
	return slices.Contains(p.CompletedModules, moduleID)
}

// HasAchievement reports whether id is unlocked.
func (p *Progress) HasAchievement(id string) bool {
	return slices.ContainsFunc(p.Achievements, func(a AchievementRecord) bool { return a.ID == id })
}

// LevelForXP is the level shown for an XP total.
func LevelForXP(xp int) int {
	return 1 + xp/XPPerLevel
}

// XPPerLevel is the XP needed for each level.
const XPPerLevel = 500

// Stats summarises the session store.
type Stats struct {
	Active              int            `json:"active"`
	Expired             int            `json:"expired"`
	Total               int            `json:"total"`
	AveragePageViews    float64        `json:"averagePageViews"`
	AverageInteractions float64        `json:"averageInteractions"`
	AverageXP           float64        `json:"averageXp"`
	TotalExtensions     int            `json:"totalExtensions"`
	Languages           map[string]int `json:"languages"`
	SessionDurationMin  int            `json:"sessionDurationMinutes"`
}
