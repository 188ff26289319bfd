// AgriSat - Satellite Agriculture Learning Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agrisat

package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/language"

	"github.com/tomtom215/agrisat/internal/events"
	"github.com/tomtom215/agrisat/internal/logging"
	"github.com/tomtom215/agrisat/internal/metrics"
)

// Defaults for new sessions.
const (
	DefaultName     = "Guest Farmer"
	DefaultTheme    = "light"
	DefaultUnits    = "metric"
	DefaultLanguage = "en"
	DefaultDuration = 4 * time.Hour

	// maxPageViews bounds the page-view log; older entries are dropped.
	maxPageViews = 100
)

// SupportedLanguages are the locales the front end ships.
var SupportedLanguages = []language.Tag{
	language.English,
	language.Spanish,
	language.French,
	language.Portuguese,
	language.Hindi,
	language.Swahili,
}

// Publisher receives analytics events.
type Publisher interface {
	Publish(ctx context.Context, ev events.AnalyticsEvent) error
}

// PopularSource ranks content.
type PopularSource interface {
	Top(limit int) []events.ContentCount
}

// Manager owns guest session lifecycle and enforces the validity rule on
// every read and mutation.
type Manager struct {
	store     Store
	duration  time.Duration
	now       func() time.Time
	publisher Publisher
	popular   PopularSource
	matcher   language.Matcher

	// mu serialises read-modify-write cycles.
	mu sync.Mutex
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithPublisher sets the analytics publisher.
func WithPublisher(p Publisher) Option {
	return func(m *Manager) { m.publisher = p }
}

// WithPopularSource sets the popular-content source.
func WithPopularSource(p PopularSource) Option {
	return func(m *Manager) { m.popular = p }
}

// NewManager creates a Manager. A non-positive duration uses DefaultDuration.
func NewManager(store Store, duration time.Duration, opts ...Option) *Manager {
	if duration <= 0 {
		duration = DefaultDuration
	}
	m := &Manager{
		store:    store,
		duration: duration,
		now:      time.Now,
		matcher:  language.NewMatcher(SupportedLanguages),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Duration returns the session validity window.
func (m *Manager) Duration() time.Duration {
	return m.duration
}

// newSessionID returns guest_{unixMillis}_{random8}.
func newSessionID(now time.Time) string {
	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("guest_%d_%s", now.UnixMilli(), random)
}

// Create starts a new session. An empty name uses DefaultName.
func (m *Manager) Create(ctx context.Context, name string) (*GuestSession, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultName
	}
	now := m.now()
	s := &GuestSession{
		SessionID: newSessionID(now),
		Profile: Profile{
			Name:  name,
			Level: 1,
			Preferences: Preferences{
				Theme:         DefaultTheme,
				Units:         DefaultUnits,
				Language:      DefaultLanguage,
				Notifications: Notifications{Achievements: true},
			},
		},
		Progress: Progress{
			CompletedModules: []string{},
			Achievements:     []AchievementRecord{},
		},
		FarmData: FarmData{
			PreferredCrops:  []string{},
			ExperienceLevel: "beginner",
		},
		SessionMeta: SessionMeta{
			StartTime:    now,
			LastActivity: now,
			PageViews:    []PageView{},
		},
	}
	if err := m.store.Create(ctx, s); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	metrics.SessionsCreated.Inc()
	logging.Ctx(ctx).Info().
		Str("session_id", logging.SanitizeSessionID(s.SessionID)).
		Msg("Guest session created")
	m.publish(ctx, events.NewAnalyticsEvent(events.TypeSessionCreated, s.SessionID, "", now))
	return s, nil
}

// Get returns a live session.
func (m *Manager) Get(ctx context.Context, id string) (*GuestSession, error) {
	s, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.IsValid(m.now(), m.duration) {
		return nil, ErrSessionExpired
	}
	return s, nil
}

// mutate loads a live session, applies fn, stamps LastActivity and saves.
func (m *Manager) mutate(ctx context.Context, id string, fn func(s *GuestSession, now time.Time) error) (*GuestSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	now := m.now()
	if err := fn(s, now); err != nil {
		return nil, err
	}
	s.SessionMeta.LastActivity = now
	if err := m.store.Update(ctx, s); err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}
	return s, nil
}

// PreferencesUpdate is a partial preferences change. Nil fields are kept.
type PreferencesUpdate struct {
	Theme         *string              `json:"theme,omitempty" validate:"omitempty,oneof=light dark auto"`
	Units         *string              `json:"units,omitempty" validate:"omitempty,oneof=metric imperial"`
	Language      *string              `json:"language,omitempty" validate:"omitempty,max=35"`
	Notifications *NotificationsUpdate `json:"notifications,omitempty"`
}

// NotificationsUpdate is a partial notifications change.
type NotificationsUpdate struct {
	Email        *bool `json:"email,omitempty"`
	Push         *bool `json:"push,omitempty"`
	Achievements *bool `json:"achievements,omitempty"`
}

// NormalizeLanguage maps a BCP 47 tag onto a supported locale, e.g.
// "es-MX" -> "es". Returns ErrUnsupportedLanguage when nothing matches.
func (m *Manager) NormalizeLanguage(raw string) (string, error) {
	tag, err := language.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedLanguage, raw)
	}
	_, idx, conf := m.matcher.Match(tag)
	if conf == language.No {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedLanguage, raw)
	}
	return SupportedLanguages[idx].String(), nil
}

// UpdatePreferences merges u into the session preferences.
func (m *Manager) UpdatePreferences(ctx context.Context, id string, u PreferencesUpdate) (*GuestSession, error) {
	var lang string
	if u.Language != nil {
		var err error
		if lang, err = m.NormalizeLanguage(*u.Language); err != nil {
			return nil, err
		}
	}
	return m.mutate(ctx, id, func(s *GuestSession, _ time.Time) error {
		p := &s.Profile.Preferences
		if u.Theme != nil {
			p.Theme = *u.Theme
		}
		if u.Units != nil {
			p.Units = *u.Units
		}
		if u.Language != nil {
			p.Language = lang
		}
		if n := u.Notifications; n != nil {
			if n.Email != nil {
				p.Notifications.Email = *n.Email
			}
			if n.Push != nil {
				p.Notifications.Push = *n.Push
			}
			if n.Achievements != nil {
				p.Notifications.Achievements = *n.Achievements
			}
		}
		return nil
	})
}

// ProgressUpdate is a partial progress change. Lists are merged, never
// replaced; StudyTime is added to the total.
type ProgressUpdate struct {
	CompletedModules []string `json:"completedModules,omitempty" validate:"max=100,dive,max=64"`
	CurrentModule    *string  `json:"currentModule,omitempty" validate:"omitempty,max=64"`
	Streak           *int     `json:"streak,omitempty" validate:"omitempty,gte=0,lte=3650"`
	StudyTime        int      `json:"studyTime,omitempty" validate:"gte=0,lte=1440"`
}

// UpdateProgress merges u into the session progress.
func (m *Manager) UpdateProgress(ctx context.Context, id string, u ProgressUpdate) (*GuestSession, error) {
	return m.mutate(ctx, id, func(s *GuestSession, _ time.Time) error {
		for _, mod := range u.CompletedModules {
			if mod != "" && !s.Progress.HasCompleted(mod) {
				s.Progress.CompletedModules = append(s.Progress.CompletedModules, mod)
			}
		}
		if u.CurrentModule != nil {
			s.Progress.CurrentModule = *u.CurrentModule
		}
		if u.Streak != nil {
			s.Progress.Streak = *u.Streak
		}
		s.Progress.TotalStudyTime += u.StudyTime
		return nil
	})
}

// FarmUpdate is a partial farm change.
type FarmUpdate struct {
	Location        *Location `json:"location,omitempty"`
	PreferredCrops  []string  `json:"preferredCrops,omitempty" validate:"max=20,dive,max=40"`
	ExperienceLevel *string   `json:"experienceLevel,omitempty" validate:"omitempty,oneof=beginner intermediate advanced"`
}

// UpdateFarmLocation merges u into the session farm data.
func (m *Manager) UpdateFarmLocation(ctx context.Context, id string, u FarmUpdate) (*GuestSession, error) {
	if loc := u.Location; loc != nil {
		if loc.Lat < -90 || loc.Lat > 90 || loc.Lng < -180 || loc.Lng > 180 {
			return nil, fmt.Errorf("%w: lat=%v lng=%v", ErrInvalidLocation, loc.Lat, loc.Lng)
		}
	}
	return m.mutate(ctx, id, func(s *GuestSession, _ time.Time) error {
		if u.Location != nil {
			loc := *u.Location
			s.FarmData.Location = &loc
		}
		if u.PreferredCrops != nil {
			s.FarmData.PreferredCrops = append([]string(nil), u.PreferredCrops...)
		}
		if u.ExperienceLevel != nil {
			s.FarmData.ExperienceLevel = *u.ExperienceLevel
		}
		return nil
	})
}

// Interaction is a tracked client action. A non-empty Page is logged as a
// page view.
type Interaction struct {
	Type     string            `json:"type" validate:"omitempty,max=40"`
	Page     string            `json:"page,omitempty" validate:"omitempty,max=200"`
	Target   string            `json:"target,omitempty" validate:"omitempty,max=200"`
	Metadata map[string]string `json:"metadata,omitempty" validate:"max=20"`
}

// TrackInteraction records a page view and/or interaction and publishes it.
func (m *Manager) TrackInteraction(ctx context.Context, id string, in Interaction) (*GuestSession, error) {
	var at time.Time
	s, err := m.mutate(ctx, id, func(s *GuestSession, now time.Time) error {
		at = now
		if in.Page != "" {
			s.SessionMeta.PageViews = append(s.SessionMeta.PageViews, PageView{Page: in.Page, Timestamp: now})
			if n := len(s.SessionMeta.PageViews); n > maxPageViews {
				s.SessionMeta.PageViews = append([]PageView(nil), s.SessionMeta.PageViews[n-maxPageViews:]...)
			}
		}
		if in.Type != "" || in.Target != "" || in.Page == "" {
			s.SessionMeta.Interactions++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	evType, content := events.TypeInteraction, in.Target
	if in.Page != "" {
		evType, content = events.TypePageView, in.Page
	}
	ev := events.NewAnalyticsEvent(evType, id, content, at)
	if in.Type != "" || len(in.Metadata) > 0 {
		ev.Properties = map[string]any{"interaction": in.Type}
		for k, v := range in.Metadata {
			ev.Properties[k] = v
		}
	}
	m.publish(ctx, ev)
	return s, nil
}

// Extend restarts the validity window from now.
func (m *Manager) Extend(ctx context.Context, id string) (*GuestSession, error) {
	return m.mutate(ctx, id, func(s *GuestSession, now time.Time) error {
		s.SessionMeta.StartTime = now
		s.SessionMeta.Extensions++
		return nil
	})
}

// AnalyticsEvent is a client-reported event.
type AnalyticsEvent struct {
	Event      string         `json:"event" validate:"required,max=80"`
	Content    string         `json:"content,omitempty" validate:"omitempty,max=200"`
	Properties map[string]any `json:"properties,omitempty" validate:"max=50"`
}

// RecordAnalyticsEvent validates the session and publishes ev.
func (m *Manager) RecordAnalyticsEvent(ctx context.Context, id string, ev AnalyticsEvent) error {
	var at time.Time
	if _, err := m.mutate(ctx, id, func(_ *GuestSession, now time.Time) error {
		at = now
		return nil
	}); err != nil {
		return err
	}
	out := events.NewAnalyticsEvent(events.TypeAnalytics, id, ev.Content, at)
	out.Properties = map[string]any{"event": ev.Event}
	for k, v := range ev.Properties {
		out.Properties[k] = v
	}
	m.publish(ctx, out)
	return nil
}

// RecordModuleCompletion mirrors a learning-hub completion into the
// profile. XP and study time are added only the first time moduleID is
// completed.
func (m *Manager) RecordModuleCompletion(ctx context.Context, id, moduleID string, xp, minutes int) (*GuestSession, error) {
	return m.mutate(ctx, id, func(s *GuestSession, _ time.Time) error {
		if s.Progress.HasCompleted(moduleID) {
			return nil
		}
		s.Progress.CompletedModules = append(s.Progress.CompletedModules, moduleID)
		s.Progress.TotalStudyTime += minutes
		s.Profile.XP += xp
		s.Profile.Level = LevelForXP(s.Profile.XP)
		if s.Progress.CurrentModule == moduleID {
			s.Progress.CurrentModule = ""
		}
		return nil
	})
}

// AwardXP adds xp to the profile.
func (m *Manager) AwardXP(ctx context.Context, id string, xp int) (*GuestSession, error) {
	return m.mutate(ctx, id, func(s *GuestSession, _ time.Time) error {
		s.Profile.XP += xp
		s.Profile.Level = LevelForXP(s.Profile.XP)
		return nil
	})
}

// UnlockAchievement records an achievement once.
func (m *Manager) UnlockAchievement(ctx context.Context, id string, rec AchievementRecord) (*GuestSession, error) {
	return m.mutate(ctx, id, func(s *GuestSession, now time.Time) error {
		if s.Progress.HasAchievement(rec.ID) {
			return nil
		}
		if rec.UnlockedAt.IsZero() {
			rec.UnlockedAt = now
		}
		s.Progress.Achievements = append(s.Progress.Achievements, rec)
		return nil
	})
}

// End deletes the session. Ending an expired session succeeds.
func (m *Manager) End(ctx context.Context, id string) error {
	if err := m.store.Delete(ctx, id); err != nil {
		return err
	}
	logging.Ctx(ctx).Info().
		Str("session_id", logging.SanitizeSessionID(id)).
		Msg("Guest session ended")
	m.publish(ctx, events.NewAnalyticsEvent(events.TypeSessionEnded, id, "", m.now()))
	return nil
}

// Cleanup removes every expired session.
func (m *Manager) Cleanup(ctx context.Context) (int, error) {
	cutoff := m.now().Add(-m.duration)
	n, err := m.store.CleanupExpired(ctx, cutoff)
	if err != nil {
		return n, fmt.Errorf("cleanup sessions: %w", err)
	}
	metrics.SessionsExpired.Add(float64(n))
	if count, err := m.store.Count(ctx); err == nil {
		metrics.SessionsActive.Set(float64(count))
	}
	return n, nil
}

// Stats summarises stored sessions.
func (m *Manager) Stats(ctx context.Context) (Stats, error) {
	sessions, err := m.store.List(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("list sessions: %w", err)
	}
	now := m.now()
	st := Stats{
		Total:              len(sessions),
		Languages:          make(map[string]int),
		SessionDurationMin: int(m.duration / time.Minute),
	}
	var views, interactions, xp int
	for _, s := range sessions {
		if !s.IsValid(now, m.duration) {
			st.Expired++
			continue
		}
		st.Active++
		views += len(s.SessionMeta.PageViews)
		interactions += s.SessionMeta.Interactions
		xp += s.Profile.XP
		st.TotalExtensions += s.SessionMeta.Extensions
		st.Languages[s.Profile.Preferences.Language]++
	}
	if st.Active > 0 {
		n := float64(st.Active)
		st.AveragePageViews = float64(views) / n
		st.AverageInteractions = float64(interactions) / n
		st.AverageXP = float64(xp) / n
	}
	metrics.SessionsActive.Set(float64(st.Active))
	return st, nil
}

// PopularContent returns the most viewed content, at most limit rows.
func (m *Manager) PopularContent(_ context.Context, limit int) []events.ContentCount {
	if m.popular == nil {
		return []events.ContentCount{}
	}
	return m.popular.Top(limit)
}

func (m *Manager) publish(ctx context.Context, ev events.AnalyticsEvent) {
	if m.publisher == nil {
		return
	}
	if err := m.publisher.Publish(ctx, ev); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("type", ev.Type).Msg("Failed to publish analytics event")
	}
}

// IsSessionError reports whether err means the caller has no live session.
func IsSessionError(err error) bool {
	return errors.Is(err, ErrSessionNotFound) || errors.Is(err, ErrSessionExpired)
}
