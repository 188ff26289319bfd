// AgriSat - Satellite Agriculture Learning Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agrisat

/*
Package learning implements the learning hub: the module catalog,
assessments, XP and levels, achievements and the leaderboard.

Learners are identified by their guest session id, or by the shared "demo"
learner when none is supplied. A supplied id must belong to a live guest
session; otherwise the session error is returned. Progress is kept per
learner in memory and mirrored into the guest session (completions, XP and
unlocked achievements). Prune drops progress for sessions that have ended
or expired.

# Scoring

An assessment score is round(correct/total*100). A score of 70 or more
earns the full reward, anything lower earns floor(reward*0.5). XP for an
assessment is awarded up to the best award the learner has achieved, so a
retake that improves on a failed attempt earns only the difference.

Completing a module is idempotent. The first completion awards the
module's XP; later calls report alreadyCompleted and award nothing.
*/
package learning
