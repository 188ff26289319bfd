// AgriSat - Satellite Agriculture Learning Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agrisat

// Package datahub backs the data-hub route: farm overviews built on NASA
// indicators, the demo farm registry, the crop database, synthetic market
// prices and educational content with Earth Observatory headlines.
package datahub
