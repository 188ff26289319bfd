// AgriSat - Satellite Agriculture Learning Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agrisat

package events

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"

	"github.com/tomtom215/agrisat/internal/logging"
)

// ContentCount is one row of the popular-content ranking.
type ContentCount struct {
	Content string `json:"content"`
	Views   int    `json:"views"`
}

// AggregatorStats summarises consumed events.
type AggregatorStats struct {
	Received    int64          `json:"received"`
	ParseErrors int64          `json:"parseErrors"`
	ByType      map[string]int `json:"byType"`
	LastEvent   time.Time      `json:"lastEvent,omitempty"`
}

// Aggregator counts content popularity from analytics events.
type Aggregator struct {
	mu        sync.RWMutex
	content   map[string]int
	byType    map[string]int
	lastEvent time.Time

	received    atomic.Int64
	parseErrors atomic.Int64
}

// NewAggregator returns an empty aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{
		content: make(map[string]int),
		byType:  make(map[string]int),
	}
}

// counted reports whether events of this type rank content.
func counted(eventType string) bool {
	switch eventType {
	case TypePageView, TypeInteraction, TypeModuleCompleted, TypeAnalytics:
		return true
	}
	return false
}

// Record applies one event.
func (a *Aggregator) Record(ev AnalyticsEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.byType[ev.Type]++
	if ev.Content != "" && counted(ev.Type) {
		a.content[ev.Content]++
	}
	if ev.Timestamp.After(a.lastEvent) {
		a.lastEvent = ev.Timestamp
	}
}

// Top returns up to limit items by descending views, ties by name.
func (a *Aggregator) Top(limit int) []ContentCount {
	a.mu.RLock()
	out := make([]ContentCount, 0, len(a.content))
	for c, n := range a.content {
		out = append(out, ContentCount{Content: c, Views: n})
	}
	a.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Views != out[j].Views {
			return out[i].Views > out[j].Views
		}
		return out[i].Content < out[j].Content
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Stats returns consumption counters.
func (a *Aggregator) Stats() AggregatorStats {
	a.mu.RLock()
	defer a.mu.RUnlock()
	byType := make(map[string]int, len(a.byType))
	for k, v := range a.byType {
		byType[k] = v
	}
	return AggregatorStats{
		Received:    a.received.Load(),
		ParseErrors: a.parseErrors.Load(),
		ByType:      byType,
		LastEvent:   a.lastEvent,
	}
}

// Consume processes messages until ctx is done or the channel closes.
// Buffered messages are drained on shutdown.
func (a *Aggregator) Consume(ctx context.Context, messages <-chan *message.Message) {
	for {
		select {
		case <-ctx.Done():
			a.drain(messages)
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			a.process(msg)
		}
	}
}

func (a *Aggregator) drain(messages <-chan *message.Message) {
	deadline := time.After(100 * time.Millisecond)
	for {
		select {
		case <-deadline:
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			a.process(msg)
		default:
			return
		}
	}
}

func (a *Aggregator) process(msg *message.Message) {
	a.received.Add(1)
	var ev AnalyticsEvent
	if err := json.Unmarshal(msg.Payload, &ev); err != nil {
		a.parseErrors.Add(1)
		logging.Warn().Str("message_uuid", msg.UUID).Err(err).Msg("Failed to parse analytics event")
		msg.Ack() // malformed payloads are never redelivered
		return
	}
	a.Record(ev)
	msg.Ack()
}

// Service subscribes the aggregator to the bus. It implements
// suture.Service.
type Service struct {
	bus        *Bus
	aggregator *Aggregator
}

// NewService wires aggregator to bus.
func NewService(bus *Bus, aggregator *Aggregator) *Service {
	return &Service{bus: bus, aggregator: aggregator}
}

// Serve consumes TopicGuestAnalytics until ctx is cancelled.
func (s *Service) Serve(ctx context.Context) error {
	messages, err := s.bus.Subscribe(ctx, TopicGuestAnalytics)
	if err != nil {
		return err
	}
	logging.Info().Str("topic", TopicGuestAnalytics).Msg("Analytics aggregator subscribed")
	s.aggregator.Consume(ctx, messages)
	return ctx.Err()
}

func (s *Service) String() string {
	return "analytics-aggregator"
}
