// AgriSat - Satellite Agriculture Learning Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agrisat

package session

import (
	"fmt"

	"github.com/tomtom215/agrisat/internal/config"
)

// Store backends.
const (
	StoreMemory = "memory"
	StoreBadger = "badger"
)

// NewStore builds the configured backend. Badger stores implement io.Closer.
func NewStore(cfg config.SessionConfig) (Store, error) {
	switch cfg.Store {
	case "", StoreMemory:
		return NewMemoryStore(), nil
	case StoreBadger:
		return NewBadgerStore(cfg.StorePath)
	default:
		return nil, fmt.Errorf("unknown session store %q", cfg.Store)
	}
}
