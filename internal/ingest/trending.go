// ScribeStream - Real-Time Content Engagement Analytics
// Copyright 2026 ScribeStream Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/scribestream/scribestream

package ingest

import (
	"context"
	"time"

	"github.com/scribestream/scribestream/internal/analytics"
	"github.com/scribestream/scribestream/internal/logging"
)

// DefaultTrendingInterval is how often trending rankings are pushed to
// live-stream clients when no interval is configured.
const DefaultTrendingInterval = 30 * time.Second

// TrendingBroadcaster periodically recomputes the trending ranking and
// pushes it to the live stream. It runs as a supervised service.
type TrendingBroadcaster struct {
	store       *analytics.Store
	broadcaster Broadcaster
	interval    time.Duration
	limit       int
}

// NewTrendingBroadcaster wires a store to a broadcaster. Non-positive
// interval and limit fall back to defaults.
func NewTrendingBroadcaster(store *analytics.Store, b Broadcaster, interval time.Duration, limit int) *TrendingBroadcaster {
	if interval <= 0 {
		interval = DefaultTrendingInterval
	}
	if limit <= 0 {
		limit = analytics.DefaultTrendingLimit
	}
	if b == nil {
		b = noopBroadcaster{}
	}
	return &TrendingBroadcaster{
		store:       store,
		broadcaster: b,
		interval:    interval,
		limit:       limit,
	}
}

// RunWithContext broadcasts trending updates until the context is
// canceled, then returns ctx.Err() for the supervisor.
func (t *TrendingBroadcaster) RunWithContext(ctx context.Context) error {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	logging.Info().Dur("interval", t.interval).Int("limit", t.limit).Msg("Trending broadcaster started")

	for {
		select {
		case <-ctx.Done():
			logging.Info().Str("component", "trending-broadcaster").Msg("Trending broadcaster stopped")
			return ctx.Err()
		case <-ticker.C:
			entries := t.store.TrendingContent(t.limit)
			if len(entries) == 0 {
				continue
			}
			t.broadcaster.Broadcast("trending_update", entries)
		}
	}
}
