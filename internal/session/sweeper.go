// AgriSat - Satellite Agriculture Learning Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agrisat

package session

import (
	"context"

	"github.com/tomtom215/agrisat/internal/logging"
)

// Sweeper removes expired sessions. It is driven by a periodic supervised
// service; each Sweep is one pass.
type Sweeper struct {
	manager *Manager
}

// NewSweeper creates a Sweeper for m.
func NewSweeper(m *Manager) *Sweeper {
	return &Sweeper{manager: m}
}

// Sweep runs one cleanup pass.
func (s *Sweeper) Sweep(ctx context.Context) error {
	n, err := s.manager.Cleanup(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		logging.Ctx(ctx).Info().Int("removed", n).Msg("Expired guest sessions swept")
	}
	return nil
}
