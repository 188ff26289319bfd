// AgriSat - Satellite Agriculture Learning Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agrisat

/*
Package session manages anonymous guest sessions.

A guest session is valid while now - startTime is less than the configured
duration (4h by default). Every read and every mutation goes through the
Manager, which re-checks validity first, so an expired session is reported
as expired even before the sweeper has removed it.

Sessions are kept in a Store. MemoryStore is the default and loses all
sessions on restart; BadgerStore persists them to disk.

Extending a session restarts the validity window from the current time.
*/
package session
