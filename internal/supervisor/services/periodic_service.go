// AgriSat - Satellite Agriculture Learning Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agrisat

package services

import (
	"context"
	"time"

	"github.com/tomtom215/agrisat/internal/logging"
)

// Task is one run of a periodic job.
type Task func(ctx context.Context) error

// PeriodicService runs a task on a fixed interval under suture.
//
// A failed run is logged and the loop continues; only context
// cancellation ends Serve. Runs never overlap.
//
//	sweeper := session.NewSweeper(manager)
//	tree.AddMaintenanceService(services.NewPeriodicService("session-sweeper", time.Minute, sweeper.Sweep))
type PeriodicService struct {
	name     string
	interval time.Duration
	task     Task
}

// DefaultInterval is used for non-positive intervals.
const DefaultInterval = time.Minute

// NewPeriodicService creates a periodic service.
func NewPeriodicService(name string, interval time.Duration, task Task) *PeriodicService {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &PeriodicService{name: name, interval: interval, task: task}
}

// Serve implements suture.Service.
func (p *PeriodicService) Serve(ctx context.Context) error {
	logger := logging.WithComponent(p.name)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			start := time.Now()
			if err := p.task(ctx); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				logger.Warn().Err(err).Msg("Periodic task failed")
				continue
			}
			logger.Debug().Dur("took", time.Since(start)).Msg("Periodic task completed")
		}
	}
}

// String implements fmt.Stringer for suture's log messages.
func (p *PeriodicService) String() string {
	return p.name
}
