// AgriSat - Satellite Agriculture Learning Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agrisat

package learning

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/agrisat/internal/cache"
	"github.com/tomtom215/agrisat/internal/session"
)

func newTestHub(t *testing.T, opts ...Option) *Hub {
	t.Helper()
	c := cache.New(cache.NewMemoryStore(100), cache.BackendMemory)
	clock := func() time.Time { return time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC) }
	return NewHub(c, append([]Option{WithClock(clock)}, opts...)...)
}

func progressOf(t *testing.T, h *Hub, learner string) LearnerProgress {
	t.Helper()
	p, err := h.Progress(context.Background(), learner)
	if err != nil {
		t.Fatalf("Progress(%q): %v", learner, err)
	}
	return p
}

func answerKey(t *testing.T, id string) []int {
	t.Helper()
	a, ok := findAssessment(id)
	if !ok {
		t.Fatalf("assessment %q missing", id)
	}
	key := make([]int, len(a.Questions))
	for i, q := range a.Questions {
		key[i] = q.answer
	}
	return key
}

func TestScoreAndAward(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name           string
		correct, total int
		reward         int
		wantScore      int
		wantAward      int
	}{
		{"half correct", 1, 2, 100, 50, 50},
		{"half correct odd reward", 1, 2, 151, 50, 75},
		{"two of three", 2, 3, 150, 67, 75},
		{"pass threshold", 7, 10, 200, 70, 200},
		{"perfect", 3, 3, 150, 100, 150},
		{"none", 0, 4, 300, 0, 150},
		{"empty", 0, 0, 100, 0, 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			score := Score(tt.correct, tt.total)
			if score != tt.wantScore {
				t.Errorf("Score(%d, %d) = %d, want %d", tt.correct, tt.total, score, tt.wantScore)
			}
			if got := Award(score, tt.reward); got != tt.wantAward {
				t.Errorf("Award(%d, %d) = %d, want %d", score, tt.reward, got, tt.wantAward)
			}
		})
	}
}

func TestHub_SubmitAssessmentHalfCorrect(t *testing.T) {
	t.Parallel()
	h := newTestHub(t)
	ctx := context.Background()

	key := answerKey(t, "satellite-basics-quiz")
	answers := []int{key[0], (key[1] + 1) % 4}

	res, err := h.SubmitAssessment(ctx, "", "satellite-basics-quiz", answers)
	if err != nil {
		t.Fatalf("SubmitAssessment: %v", err)
	}
	if res.Score != 50 || res.Passed {
		t.Errorf("score=%d passed=%v, want 50/false", res.Score, res.Passed)
	}
	if res.XPAwarded != 50 || res.TotalXP != 50 {
		t.Errorf("xpAwarded=%d totalXp=%d, want 50/50", res.XPAwarded, res.TotalXP)
	}
	if !res.Feedback[0].Correct || res.Feedback[1].Correct {
		t.Errorf("feedback = %+v", res.Feedback)
	}
}

func TestHub_SubmitAssessmentBestAward(t *testing.T) {
	t.Parallel()
	h := newTestHub(t)
	ctx := context.Background()
	key := answerKey(t, "satellite-basics-quiz")

	first, _ := h.SubmitAssessment(ctx, "guest_1_aaaaaaaa", "satellite-basics-quiz", []int{key[0]})
	if first.XPAwarded != 50 {
		t.Fatalf("first XPAwarded = %d, want 50", first.XPAwarded)
	}
	retry, _ := h.SubmitAssessment(ctx, "guest_1_aaaaaaaa", "satellite-basics-quiz", []int{key[0]})
	if retry.XPAwarded != 0 {
		t.Errorf("repeat XPAwarded = %d, want 0", retry.XPAwarded)
	}
	perfect, _ := h.SubmitAssessment(ctx, "guest_1_aaaaaaaa", "satellite-basics-quiz", key)
	if perfect.XPAwarded != 50 {
		t.Errorf("improved XPAwarded = %d, want 50", perfect.XPAwarded)
	}
	if len(perfect.NewAchievements) != 1 || perfect.NewAchievements[0].ID != AchievementPerfectScore {
		t.Errorf("NewAchievements = %+v", perfect.NewAchievements)
	}
	// 100 from the quiz plus the perfect score bonus.
	if perfect.TotalXP != 200 {
		t.Errorf("TotalXP = %d, want 200", perfect.TotalXP)
	}

	p := progressOf(t, h, "guest_1_aaaaaaaa")
	rec := p.Assessments["satellite-basics-quiz"]
	if rec.Attempts != 3 || rec.BestScore != 100 || rec.BestAward != 100 {
		t.Errorf("record = %+v", rec)
	}

	if _, err := h.SubmitAssessment(ctx, "", "missing", nil); !errors.Is(err, ErrAssessmentNotFound) {
		t.Errorf("unknown assessment: err = %v, want ErrAssessmentNotFound", err)
	}
}

func TestHub_CompleteModuleIdempotent(t *testing.T) {
	t.Parallel()
	h := newTestHub(t)
	ctx := context.Background()

	first, err := h.CompleteModule(ctx, "", "satellite-basics", 90, 20)
	if err != nil {
		t.Fatalf("CompleteModule: %v", err)
	}
	if first.AlreadyCompleted || first.XPAwarded != 100 {
		t.Errorf("first = %+v", first)
	}
	xpAfterFirst := progressOf(t, h, DemoLearner).XP

	second, err := h.CompleteModule(ctx, "", "satellite-basics", 100, 15)
	if err != nil {
		t.Fatalf("CompleteModule: %v", err)
	}
	if !second.AlreadyCompleted || second.XPAwarded != 0 {
		t.Errorf("second = %+v", second)
	}
	p := progressOf(t, h, DemoLearner)
	if p.XP != xpAfterFirst {
		t.Errorf("XP after repeat = %d, want %d", p.XP, xpAfterFirst)
	}
	// Module reward plus the first-module bonus.
	if p.XP != 150 || p.StudyTime != 20 || len(p.CompletedModules) != 1 {
		t.Errorf("progress = %+v", p)
	}
	if p.NextModule != "ndvi-vegetation-health" || p.PercentComplete != 20 {
		t.Errorf("next=%q percent=%d", p.NextModule, p.PercentComplete)
	}

	if _, err := h.CompleteModule(ctx, "", "basket-weaving", 0, 0); !errors.Is(err, ErrModuleNotFound) {
		t.Errorf("unknown module: err = %v, want ErrModuleNotFound", err)
	}
}

func TestHub_AllModulesAchievements(t *testing.T) {
	t.Parallel()
	h := newTestHub(t)
	ctx := context.Background()

	for _, m := range modules {
		if _, err := h.CompleteModule(ctx, "guest_2_bbbbbbbb", m.ID, 100, m.Duration); err != nil {
			t.Fatalf("CompleteModule(%s): %v", m.ID, err)
		}
	}
	statuses, err := h.Achievements(ctx, "guest_2_bbbbbbbb")
	if err != nil {
		t.Fatalf("Achievements: %v", err)
	}
	unlocked := map[string]bool{}
	for _, st := range statuses {
		unlocked[st.ID] = st.Unlocked
	}
	for _, id := range []string{AchievementFirstModule, AchievementThreeModules, AchievementAllModules, AchievementXP1000} {
		if !unlocked[id] {
			t.Errorf("achievement %s locked, want unlocked", id)
		}
	}
	if unlocked[AchievementPerfectScore] {
		t.Error("perfect-score unlocked without an assessment")
	}
	// 950 module XP plus 50 + 100 + 250 in bonuses.
	if p := progressOf(t, h, "guest_2_bbbbbbbb"); p.XP != 1350 || p.Level != 3 {
		t.Errorf("xp=%d level=%d, want 1350/3", p.XP, p.Level)
	}
}

func TestHub_ModulesAndAssessments(t *testing.T) {
	t.Parallel()
	h := newTestHub(t)
	ctx := context.Background()

	all, status, err := h.Modules(ctx, "")
	if err != nil {
		t.Fatalf("Modules: %v", err)
	}
	if len(all) != len(modules) || status.Hit {
		t.Errorf("len=%d hit=%v", len(all), status.Hit)
	}
	if all[0].Sections != nil {
		t.Error("module list includes content sections")
	}
	if _, status, _ = h.Modules(ctx, ""); !status.Hit {
		t.Error("second Modules call missed the cache")
	}

	beginner, _, _ := h.Modules(ctx, LevelBeginner)
	for _, m := range beginner {
		if m.Level != LevelBeginner {
			t.Errorf("module %s level %s in beginner list", m.ID, m.Level)
		}
	}
	if _, _, err := h.Modules(ctx, "expert"); !errors.Is(err, ErrInvalidLevel) {
		t.Errorf("bad level: err = %v, want ErrInvalidLevel", err)
	}

	m, _, err := h.Module(ctx, "ndvi-vegetation-health")
	if err != nil || len(m.Sections) == 0 {
		t.Errorf("Module = %+v, %v", m, err)
	}
	if _, _, err := h.Module(ctx, "missing"); !errors.Is(err, ErrModuleNotFound) {
		t.Errorf("unknown module: err = %v", err)
	}

	list, err := h.Assessments("ndvi-vegetation-health")
	if err != nil || len(list) != 1 || list[0].PassScore != PassScore {
		t.Errorf("Assessments = %+v, %v", list, err)
	}
	if all, _ := h.Assessments(""); len(all) != len(assessments) {
		t.Errorf("all assessments = %d, want %d", len(all), len(assessments))
	}
}

func TestHub_Leaderboard(t *testing.T) {
	t.Parallel()
	h := newTestHub(t)
	ctx := context.Background()
	_, _ = h.CompleteModule(ctx, "guest_3_cccccccc", "satellite-basics", 100, 10)

	rows, err := h.Leaderboard(ctx, "guest_3_cccccccc", 3)
	if err != nil {
		t.Fatalf("Leaderboard: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("rows = %d, want top 3 plus caller", len(rows))
	}
	last := rows[len(rows)-1]
	if !last.IsYou || last.XP != 150 {
		t.Errorf("caller row = %+v", last)
	}
	for i := 1; i < len(rows); i++ {
		if rows[i].Rank <= rows[i-1].Rank {
			t.Errorf("ranks not increasing: %+v", rows)
		}
	}
}

func TestHub_MirrorsIntoGuestSession(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	mgr := session.NewManager(session.NewMemoryStore(), time.Hour)
	h := newTestHub(t, WithSessionMirror(mgr))

	s, err := mgr.Create(ctx, "Wanjiru")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := h.CompleteModule(ctx, s.SessionID, "satellite-basics", 80, 20); err != nil {
		t.Fatalf("CompleteModule: %v", err)
	}
	if _, err := h.CompleteModule(ctx, s.SessionID, "satellite-basics", 80, 20); err != nil {
		t.Fatalf("CompleteModule: %v", err)
	}

	got, err := mgr.Get(ctx, s.SessionID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Profile.XP != 150 || len(got.Progress.CompletedModules) != 1 || got.Progress.TotalStudyTime != 20 {
		t.Errorf("session = %+v / %+v", got.Profile, got.Progress)
	}
	if len(got.Progress.Achievements) != 1 || got.Progress.Achievements[0].ID != AchievementFirstModule {
		t.Errorf("achievements = %+v", got.Progress.Achievements)
	}
	if p := progressOf(t, h, s.SessionID); p.Name != "Wanjiru" {
		t.Errorf("learner name = %q, want Wanjiru", p.Name)
	}
}

// settableClock is shared by a session manager and a hub.
type settableClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *settableClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *settableClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newMirroredHub(t *testing.T) (*Hub, *session.Manager, *settableClock) {
	t.Helper()
	clock := &settableClock{now: time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)}
	mgr := session.NewManager(session.NewMemoryStore(), time.Hour, session.WithClock(clock.Now))
	c := cache.New(cache.NewMemoryStore(100), cache.BackendMemory)
	return NewHub(c, WithSessionMirror(mgr), WithClock(clock.Now)), mgr, clock
}

func TestHub_RequiresLiveSession(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h, mgr, clock := newMirroredHub(t)

	s, err := mgr.Create(ctx, "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	ended, err := mgr.Create(ctx, "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mgr.End(ctx, ended.SessionID); err != nil {
		t.Fatalf("End: %v", err)
	}

	if _, err := h.CompleteModule(ctx, "guest_1700000000000_deadbeef", "satellite-basics", 80, 20); !errors.Is(err, session.ErrSessionNotFound) {
		t.Errorf("unknown session: err = %v, want ErrSessionNotFound", err)
	}
	if _, err := h.SubmitAssessment(ctx, ended.SessionID, "satellite-basics-quiz", []int{0, 0}); !errors.Is(err, session.ErrSessionNotFound) {
		t.Errorf("ended session: err = %v, want ErrSessionNotFound", err)
	}

	clock.Advance(time.Hour + time.Second)
	if _, err := h.CompleteModule(ctx, s.SessionID, "satellite-basics", 80, 20); !errors.Is(err, session.ErrSessionExpired) {
		t.Errorf("expired session: err = %v, want ErrSessionExpired", err)
	}
	if _, err := h.Progress(ctx, s.SessionID); !errors.Is(err, session.ErrSessionExpired) {
		t.Errorf("expired progress: err = %v, want ErrSessionExpired", err)
	}
	if _, err := h.Leaderboard(ctx, s.SessionID, 5); !errors.Is(err, session.ErrSessionExpired) {
		t.Errorf("expired leaderboard: err = %v, want ErrSessionExpired", err)
	}

	h.mu.Lock()
	n := len(h.learners)
	h.mu.Unlock()
	if n != 0 {
		t.Errorf("learners = %d, want none recorded for dead sessions", n)
	}

	// The demo learner needs no session.
	if _, err := h.CompleteModule(ctx, "", "satellite-basics", 80, 20); err != nil {
		t.Errorf("demo learner: %v", err)
	}
}

func TestHub_ReadsDoNotCreateLearners(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h, mgr, _ := newMirroredHub(t)

	s, err := mgr.Create(ctx, "Kofi")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	p := progressOf(t, h, s.SessionID)
	if p.XP != 0 || p.Name != "Kofi" {
		t.Errorf("fresh progress = %+v", p)
	}
	if _, err := h.Achievements(ctx, s.SessionID); err != nil {
		t.Fatalf("Achievements: %v", err)
	}
	rows, err := h.Leaderboard(ctx, s.SessionID, 3)
	if err != nil {
		t.Fatalf("Leaderboard: %v", err)
	}
	last := rows[len(rows)-1]
	if !last.IsYou || last.Name != "Kofi" || last.XP != 0 {
		t.Errorf("caller row = %+v", last)
	}

	h.mu.Lock()
	n := len(h.learners)
	h.mu.Unlock()
	if n != 0 {
		t.Errorf("learners = %d after reads, want 0", n)
	}
}

func TestHub_Prune(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h, mgr, clock := newMirroredHub(t)

	old, _ := mgr.Create(ctx, "")
	if _, err := h.CompleteModule(ctx, old.SessionID, "satellite-basics", 80, 20); err != nil {
		t.Fatalf("CompleteModule: %v", err)
	}
	clock.Advance(45 * time.Minute)
	fresh, _ := mgr.Create(ctx, "")
	if _, err := h.CompleteModule(ctx, fresh.SessionID, "satellite-basics", 80, 20); err != nil {
		t.Fatalf("CompleteModule: %v", err)
	}
	if _, err := h.CompleteModule(ctx, "", "satellite-basics", 80, 20); err != nil {
		t.Fatalf("CompleteModule demo: %v", err)
	}

	clock.Advance(30 * time.Minute)
	n, err := h.Prune(ctx)
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if n != 1 {
		t.Errorf("pruned = %d, want 1", n)
	}
	h.mu.Lock()
	_, oldKept := h.learners[old.SessionID]
	_, freshKept := h.learners[fresh.SessionID]
	_, demoKept := h.learners[DemoLearner]
	h.mu.Unlock()
	if oldKept || !freshKept || !demoKept {
		t.Errorf("kept old=%v fresh=%v demo=%v, want false/true/true", oldKept, freshKept, demoKept)
	}
}
