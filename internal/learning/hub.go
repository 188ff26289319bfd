// AgriSat - Satellite Agriculture Learning Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agrisat

package learning

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/tomtom215/agrisat/internal/cache"
	"github.com/tomtom215/agrisat/internal/events"
	"github.com/tomtom215/agrisat/internal/logging"
	"github.com/tomtom215/agrisat/internal/metrics"
	"github.com/tomtom215/agrisat/internal/session"
)

// DemoLearner is used when a request carries no session id.
const DemoLearner = "demo"

var (
	// ErrModuleNotFound is returned for an unknown module id.
	ErrModuleNotFound = errors.New("module not found")

	// ErrAssessmentNotFound is returned for an unknown assessment id.
	ErrAssessmentNotFound = errors.New("assessment not found")

	// ErrInvalidLevel is returned for a level filter outside the known levels.
	ErrInvalidLevel = errors.New("invalid module level")
)

// SessionMirror checks guest session liveness and receives learning
// progress for live sessions. *session.Manager implements it.
type SessionMirror interface {
	Get(ctx context.Context, id string) (*session.GuestSession, error)
	RecordModuleCompletion(ctx context.Context, id, moduleID string, xp, minutes int) (*session.GuestSession, error)
	AwardXP(ctx context.Context, id string, xp int) (*session.GuestSession, error)
	UnlockAchievement(ctx context.Context, id string, rec session.AchievementRecord) (*session.GuestSession, error)
}

// Publisher receives analytics events.
type Publisher interface {
	Publish(ctx context.Context, ev events.AnalyticsEvent) error
}

// CompletedModule records one completion.
type CompletedModule struct {
	ModuleID    string    `json:"moduleId"`
	Score       int       `json:"score"`
	TimeSpent   int       `json:"timeSpent"`
	XPAwarded   int       `json:"xpAwarded"`
	CompletedAt time.Time `json:"completedAt"`
}

// AssessmentRecord tracks attempts at one assessment.
type AssessmentRecord struct {
	Attempts  int       `json:"attempts"`
	LastScore int       `json:"lastScore"`
	BestScore int       `json:"bestScore"`
	BestAward int       `json:"bestAward"`
	LastTaken time.Time `json:"lastTaken"`
}

// UnlockedAchievement is an achievement a learner holds.
type UnlockedAchievement struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	XPBonus    int       `json:"xpBonus"`
	UnlockedAt time.Time `json:"unlockedAt"`
}

// LearnerProgress is the per-learner learning state.
type LearnerProgress struct {
	LearnerID        string                      `json:"learnerId"`
	Name             string                      `json:"name"`
	XP               int                         `json:"xp"`
	Level            int                         `json:"level"`
	CompletedModules []CompletedModule           `json:"completedModules"`
	Assessments      map[string]AssessmentRecord `json:"assessments"`
	Achievements     []UnlockedAchievement       `json:"achievements"`
	StudyTime        int                         `json:"studyTime"`
	NextModule       string                      `json:"nextModule,omitempty"`
	PercentComplete  int                         `json:"percentComplete"`
}

func newLearnerProgress(id string) *LearnerProgress {
	name := "Guest Farmer"
	if id == DemoLearner {
		name = "Demo Farmer"
	}
	return &LearnerProgress{
		LearnerID:        id,
		Name:             name,
		Level:            1,
		CompletedModules: []CompletedModule{},
		Assessments:      map[string]AssessmentRecord{},
		Achievements:     []UnlockedAchievement{},
	}
}

func (p *LearnerProgress) hasCompleted(moduleID string) bool {
	return slices.ContainsFunc(p.CompletedModules, func(c CompletedModule) bool { return c.ModuleID == moduleID })
}

func (p *LearnerProgress) hasAchievement(id string) bool {
	return slices.ContainsFunc(p.Achievements, func(a UnlockedAchievement) bool { return a.ID == id })
}

func (p *LearnerProgress) clone() LearnerProgress {
	c := *p
	c.CompletedModules = slices.Clone(p.CompletedModules)
	c.Achievements = slices.Clone(p.Achievements)
	c.Assessments = make(map[string]AssessmentRecord, len(p.Assessments))
	for k, v := range p.Assessments {
		c.Assessments[k] = v
	}
	c.NextModule = ""
	for _, m := range modules {
		if !p.hasCompleted(m.ID) {
			c.NextModule = m.ID
			break
		}
	}
	c.PercentComplete = len(p.CompletedModules) * 100 / len(modules)
	return c
}

// Hub is the learning hub.
type Hub struct {
	cache     *cache.Cache
	mirror    SessionMirror
	publisher Publisher
	now       func() time.Time

	mu       sync.Mutex
	learners map[string]*LearnerProgress
}

// Option configures a Hub.
type Option func(*Hub)

// WithSessionMirror mirrors progress into live guest sessions.
func WithSessionMirror(m SessionMirror) Option {
	return func(h *Hub) { h.mirror = m }
}

// WithPublisher publishes completions and submissions.
func WithPublisher(p Publisher) Option {
	return func(h *Hub) { h.publisher = p }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(h *Hub) { h.now = now }
}

// NewHub creates a Hub. The catalog is served through c.
func NewHub(c *cache.Cache, opts ...Option) *Hub {
	h := &Hub{
		cache:    c,
		now:      time.Now,
		learners: make(map[string]*LearnerProgress),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// LearnerID returns the learner for a session id, "demo" when empty.
func LearnerID(sessionID string) string {
	if sessionID == "" {
		return DemoLearner
	}
	return sessionID
}

// Modules lists module summaries, optionally filtered by level.
func (h *Hub) Modules(ctx context.Context, level string) ([]Module, cache.Status, error) {
	switch level {
	case "", LevelBeginner, LevelIntermediate, LevelAdvanced:
	default:
		return nil, cache.Status{}, fmt.Errorf("%w: %q", ErrInvalidLevel, level)
	}
	return cache.Fetch(ctx, h.cache, cache.Key("learning-modules", level), cache.CategoryStatic,
		func(context.Context) ([]Module, error) {
			out := make([]Module, 0, len(modules))
			for _, m := range modules {
				if level == "" || m.Level == level {
					out = append(out, m.Summary())
				}
			}
			return out, nil
		})
}

// Module returns a module with its content.
func (h *Hub) Module(ctx context.Context, id string) (Module, cache.Status, error) {
	if _, ok := findModule(id); !ok {
		return Module{}, cache.Status{}, fmt.Errorf("%w: %q", ErrModuleNotFound, id)
	}
	return cache.Fetch(ctx, h.cache, cache.Key("learning-module", id), cache.CategoryStatic,
		func(context.Context) (Module, error) {
			m, _ := findModule(id)
			return m, nil
		})
}

// Assessments lists assessments without answer keys. An empty moduleID
// lists all of them.
func (h *Hub) Assessments(moduleID string) ([]Assessment, error) {
	if moduleID != "" {
		if _, ok := findModule(moduleID); !ok {
			return nil, fmt.Errorf("%w: %q", ErrModuleNotFound, moduleID)
		}
	}
	out := []Assessment{}
	for _, a := range assessments {
		if moduleID == "" || a.ModuleID == moduleID {
			a.PassScore = PassScore
			a.Questions = slices.Clone(a.Questions)
			out = append(out, a)
		}
	}
	return out, nil
}

// Progress returns a snapshot of a learner's progress.
func (h *Hub) Progress(ctx context.Context, learner string) (LearnerProgress, error) {
	id, name, err := h.resolve(ctx, learner)
	if err != nil {
		return LearnerProgress{}, err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.peekLocked(id, name).clone(), nil
}

// AchievementStatus is an achievement with the learner's unlock state.
type AchievementStatus struct {
	Achievement
	Unlocked   bool       `json:"unlocked"`
	UnlockedAt *time.Time `json:"unlockedAt,omitempty"`
}

// Achievements lists every achievement and whether the learner holds it.
func (h *Hub) Achievements(ctx context.Context, learner string) ([]AchievementStatus, error) {
	id, name, err := h.resolve(ctx, learner)
	if err != nil {
		return nil, err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	p := h.peekLocked(id, name)

	out := make([]AchievementStatus, 0, len(achievements))
	for _, a := range achievements {
		st := AchievementStatus{Achievement: a}
		for _, u := range p.Achievements {
			if u.ID == a.ID {
				at := u.UnlockedAt
				st.Unlocked, st.UnlockedAt = true, &at
			}
		}
		out = append(out, st)
	}
	return out, nil
}

// CompletionResult is returned by CompleteModule.
type CompletionResult struct {
	ModuleID         string                `json:"moduleId"`
	AlreadyCompleted bool                  `json:"alreadyCompleted"`
	XPAwarded        int                   `json:"xpAwarded"`
	TotalXP          int                   `json:"totalXp"`
	Level            int                   `json:"level"`
	LevelUp          bool                  `json:"levelUp"`
	NewAchievements  []UnlockedAchievement `json:"newAchievements"`
}

// CompleteModule records a completion. XP is awarded on the first call only.
func (h *Hub) CompleteModule(ctx context.Context, learner, moduleID string, score, timeSpent int) (CompletionResult, error) {
	learner, name, err := h.resolve(ctx, learner)
	if err != nil {
		return CompletionResult{}, err
	}
	mod, ok := findModule(moduleID)
	if !ok {
		return CompletionResult{}, fmt.Errorf("%w: %q", ErrModuleNotFound, moduleID)
	}

	h.mu.Lock()
	p := h.learnerLocked(learner, name)
	res := CompletionResult{ModuleID: moduleID, NewAchievements: []UnlockedAchievement{}}
	if p.hasCompleted(moduleID) {
		res.AlreadyCompleted = true
		res.TotalXP, res.Level = p.XP, p.Level
		h.mu.Unlock()
		metrics.RecordModuleCompletion(moduleID, false)
		return res, nil
	}

	now := h.now()
	before := p.Level
	p.CompletedModules = append(p.CompletedModules, CompletedModule{
		ModuleID:    moduleID,
		Score:       score,
		TimeSpent:   timeSpent,
		XPAwarded:   mod.XPReward,
		CompletedAt: now,
	})
	p.StudyTime += timeSpent
	h.addXPLocked(p, mod.XPReward)
	res.NewAchievements = h.unlockLocked(p, now)
	res.XPAwarded = mod.XPReward
	res.TotalXP, res.Level, res.LevelUp = p.XP, p.Level, p.Level > before
	h.mu.Unlock()

	metrics.RecordModuleCompletion(moduleID, true)
	logging.Ctx(ctx).Info().
		Str("learner", logging.SanitizeSessionID(learner)).
		Str("module_id", moduleID).
		Int("xp", mod.XPReward).
		Msg("Module completed")

	if h.mirror != nil && learner != DemoLearner {
		h.mirrorCall(ctx, func() (*session.GuestSession, error) {
			return h.mirror.RecordModuleCompletion(ctx, learner, moduleID, mod.XPReward, timeSpent)
		})
		h.mirrorAchievements(ctx, learner, res.NewAchievements)
	}

	ev := events.NewAnalyticsEvent(events.TypeModuleCompleted, sessionIDFor(learner), moduleID, now)
	ev.Properties = map[string]any{"score": score, "timeSpent": timeSpent, "xp": mod.XPReward}
	h.publish(ctx, ev)
	return res, nil
}

// QuestionResult is per-question feedback.
type QuestionResult struct {
	QuestionID  string `json:"questionId"`
	Correct     bool   `json:"correct"`
	Explanation string `json:"explanation"`
}

// AssessmentResult is returned by SubmitAssessment.
type AssessmentResult struct {
	AssessmentID    string                `json:"assessmentId"`
	Score           int                   `json:"score"`
	Correct         int                   `json:"correct"`
	Total           int                   `json:"total"`
	Passed          bool                  `json:"passed"`
	Award           int                   `json:"award"`
	XPAwarded       int                   `json:"xpAwarded"`
	BestScore       int                   `json:"bestScore"`
	TotalXP         int                   `json:"totalXp"`
	Level           int                   `json:"level"`
	Feedback        []QuestionResult      `json:"feedback"`
	NewAchievements []UnlockedAchievement `json:"newAchievements"`
}

// Score returns round(correct/total*100).
func Score(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(correct) / float64(total) * 100))
}

// Award returns the XP an assessment score earns: the full reward at
// PassScore or above, floor(reward*0.5) below it.
func Award(score, reward int) int {
	if score >= PassScore {
		return reward
	}
	return int(math.Floor(float64(reward) * 0.5))
}

// SubmitAssessment grades answers, given as option indexes in question
// order. Missing answers count as wrong.
func (h *Hub) SubmitAssessment(ctx context.Context, learner, assessmentID string, answers []int) (AssessmentResult, error) {
	learner, name, err := h.resolve(ctx, learner)
	if err != nil {
		return AssessmentResult{}, err
	}
	a, ok := findAssessment(assessmentID)
	if !ok {
		return AssessmentResult{}, fmt.Errorf("%w: %q", ErrAssessmentNotFound, assessmentID)
	}

	res := AssessmentResult{
		AssessmentID:    assessmentID,
		Total:           len(a.Questions),
		Feedback:        make([]QuestionResult, 0, len(a.Questions)),
		NewAchievements: []UnlockedAchievement{},
	}
	for i, question := range a.Questions {
		correct := i < len(answers) && answers[i] == question.answer
		if correct {
			res.Correct++
		}
		res.Feedback = append(res.Feedback, QuestionResult{QuestionID: question.ID, Correct: correct, Explanation: question.explanation})
	}
	res.Score = Score(res.Correct, res.Total)
	res.Passed = res.Score >= PassScore
	res.Award = Award(res.Score, a.XPReward)

	now := h.now()
	h.mu.Lock()
	p := h.learnerLocked(learner, name)
	rec := p.Assessments[assessmentID]
	rec.Attempts++
	rec.LastScore = res.Score
	rec.LastTaken = now
	rec.BestScore = max(rec.BestScore, res.Score)
	if res.Award > rec.BestAward {
		res.XPAwarded = res.Award - rec.BestAward
		rec.BestAward = res.Award
	}
	p.Assessments[assessmentID] = rec
	h.addXPLocked(p, res.XPAwarded)
	res.NewAchievements = h.unlockLocked(p, now)
	res.BestScore, res.TotalXP, res.Level = rec.BestScore, p.XP, p.Level
	h.mu.Unlock()

	metrics.RecordAssessmentSubmission(assessmentID, res.Passed)

	if h.mirror != nil && learner != DemoLearner {
		if res.XPAwarded > 0 {
			h.mirrorCall(ctx, func() (*session.GuestSession, error) {
				return h.mirror.AwardXP(ctx, learner, res.XPAwarded)
			})
		}
		h.mirrorAchievements(ctx, learner, res.NewAchievements)
	}

	ev := events.NewAnalyticsEvent(events.TypeAssessmentSubmitted, sessionIDFor(learner), assessmentID, now)
	ev.Properties = map[string]any{"score": res.Score, "passed": res.Passed}
	h.publish(ctx, ev)
	return res, nil
}

// LeaderboardEntry is one leaderboard row.
type LeaderboardEntry struct {
	Rank   int    `json:"rank"`
	Name   string `json:"name"`
	XP     int    `json:"xp"`
	Level  int    `json:"level"`
	IsYou  bool   `json:"isYou"`
	Badges int    `json:"badges"`
}

// Peer learners give a fresh leaderboard some company.
var peers = []LeaderboardEntry{
	{Name: "Amina (Nakuru)", XP: 1850, Badges: 4},
	{Name: "Rajesh (Ludhiana)", XP: 1420, Badges: 3},
	{Name: "Maria (Sorriso)", XP: 1100, Badges: 3},
	{Name: "Tuan (Can Tho)", XP: 760, Badges: 2},
	{Name: "Ellen (Ames)", XP: 430, Badges: 1},
}

// Leaderboard ranks learners and peers by XP. The caller's row is marked
// and always included, even outside the top limit.
func (h *Hub) Leaderboard(ctx context.Context, learner string, limit int) ([]LeaderboardEntry, error) {
	me, name, err := h.resolve(ctx, learner)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 10
	}
	h.mu.Lock()
	rows := make([]LeaderboardEntry, 0, len(peers)+len(h.learners)+1)
	for _, p := range peers {
		p.Level = session.LevelForXP(p.XP)
		rows = append(rows, p)
	}
	if _, ok := h.learners[me]; !ok {
		p := h.peekLocked(me, name)
		rows = append(rows, LeaderboardEntry{Name: p.Name, Level: p.Level, IsYou: true})
	}
	for id, p := range h.learners {
		rows = append(rows, LeaderboardEntry{
			Name:   p.Name,
			XP:     p.XP,
			Level:  p.Level,
			IsYou:  id == me,
			Badges: len(p.Achievements),
		})
	}
	h.mu.Unlock()

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].XP != rows[j].XP {
			return rows[i].XP > rows[j].XP
		}
		return rows[i].IsYou && !rows[j].IsYou
	})
	out := make([]LeaderboardEntry, 0, limit+1)
	for i := range rows {
		rows[i].Rank = i + 1
		if i < limit || rows[i].IsYou {
			out = append(out, rows[i])
		}
	}
	return out, nil
}

// Prune drops hub progress for learners whose guest session is no longer
// live. It returns the number of learners removed.
func (h *Hub) Prune(ctx context.Context) (int, error) {
	if h.mirror == nil {
		return 0, nil
	}
	h.mu.Lock()
	ids := make([]string, 0, len(h.learners))
	for id := range h.learners {
		if id != DemoLearner {
			ids = append(ids, id)
		}
	}
	h.mu.Unlock()

	var gone []string
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		_, err := h.mirror.Get(ctx, id)
		switch {
		case err == nil:
		case session.IsSessionError(err):
			gone = append(gone, id)
		default:
			return 0, fmt.Errorf("check learner session: %w", err)
		}
	}

	h.mu.Lock()
	for _, id := range gone {
		delete(h.learners, id)
	}
	h.mu.Unlock()
	if len(gone) > 0 {
		logging.Ctx(ctx).Info().Int("count", len(gone)).Msg("Pruned learners without a live session")
	}
	return len(gone), nil
}

// resolve maps a session id to a learner. An empty id is the demo learner.
// Any other id must belong to a live guest session when a SessionMirror is
// configured; the session's display name is returned with it.
func (h *Hub) resolve(ctx context.Context, sessionID string) (id, name string, err error) {
	id = LearnerID(sessionID)
	if id == DemoLearner || h.mirror == nil {
		return id, "", nil
	}
	s, err := h.mirror.Get(ctx, id)
	if err != nil {
		return "", "", err
	}
	return id, s.Profile.Name, nil
}

// learnerLocked returns the learner's progress, creating it on first use.
func (h *Hub) learnerLocked(id, name string) *LearnerProgress {
	p, ok := h.learners[id]
	if !ok {
		p = newLearnerProgress(id)
		h.learners[id] = p
	}
	if name != "" {
		p.Name = name
	}
	return p
}

// peekLocked is learnerLocked for read paths: unknown learners get a
// zero-value snapshot that is not stored.
func (h *Hub) peekLocked(id, name string) *LearnerProgress {
	p, ok := h.learners[id]
	if !ok {
		p = newLearnerProgress(id)
	}
	if name != "" {
		c := *p
		c.Name = name
		return &c
	}
	return p
}

func (h *Hub) addXPLocked(p *LearnerProgress, xp int) {
	p.XP += xp
	p.Level = session.LevelForXP(p.XP)
}

// unlockLocked evaluates achievement rules and applies their bonuses.
func (h *Hub) unlockLocked(p *LearnerProgress, now time.Time) []UnlockedAchievement {
	unlocked := []UnlockedAchievement{}
	for _, a := range achievements {
		if p.hasAchievement(a.ID) || !a.rule(p) {
			continue
		}
		u := UnlockedAchievement{ID: a.ID, Name: a.Name, XPBonus: a.XPBonus, UnlockedAt: now}
		p.Achievements = append(p.Achievements, u)
		h.addXPLocked(p, a.XPBonus)
		unlocked = append(unlocked, u)
	}
	return unlocked
}

func (h *Hub) mirrorAchievements(ctx context.Context, learner string, unlocked []UnlockedAchievement) {
	for _, u := range unlocked {
		if u.XPBonus > 0 {
			h.mirrorCall(ctx, func() (*session.GuestSession, error) {
				return h.mirror.AwardXP(ctx, learner, u.XPBonus)
			})
		}
		h.mirrorCall(ctx, func() (*session.GuestSession, error) {
			return h.mirror.UnlockAchievement(ctx, learner, session.AchievementRecord{ID: u.ID, Name: u.Name, UnlockedAt: u.UnlockedAt})
		})
	}
}

// mirrorCall applies fn and adopts the session's display name. A session
// that lapsed since resolve keeps hub-only progress until Prune.
func (h *Hub) mirrorCall(ctx context.Context, fn func() (*session.GuestSession, error)) {
	s, err := fn()
	if err != nil {
		if session.IsSessionError(err) {
			logging.Ctx(ctx).Debug().Err(err).Msg("No live guest session to mirror progress into")
			return
		}
		logging.Ctx(ctx).Warn().Err(err).Msg("Failed to mirror learning progress into guest session")
		return
	}
	h.mu.Lock()
	if p, ok := h.learners[s.SessionID]; ok {
		p.Name = s.Profile.Name
	}
	h.mu.Unlock()
}

func (h *Hub) publish(ctx context.Context, ev events.AnalyticsEvent) {
	if h.publisher == nil {
		return
	}
	if err := h.publisher.Publish(ctx, ev); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("type", ev.Type).Msg("Failed to publish analytics event")
	}
}

func sessionIDFor(learner string) string {
	if learner == DemoLearner {
		return ""
	}
	return learner
}
