// AgriSat - Satellite Agriculture Learning Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agrisat

/*
Package events carries guest analytics through an in-process Watermill
gochannel pub/sub.

Session interactions, explicit analytics events and learning completions are
published on TopicGuestAnalytics. The Aggregator subscribes to that topic and
keeps the popular-content counters served by the guest-session
popular-content action.

Publishing never blocks on subscribers and a publish failure is logged by
the caller, not surfaced to the client.
*/
package events
