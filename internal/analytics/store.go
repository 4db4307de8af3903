// ScribeStream - Real-Time Content Engagement Analytics
// Copyright 2026 ScribeStream Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/scribestream/scribestream

package analytics

import (
	"errors"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/scribestream/scribestream/internal/metrics"
)

// Store errors.
var (
	ErrUnknownMetricType = errors.New("unknown metric type")
	ErrNonPositiveValue  = errors.New("metric value must be positive")
	ErrEmptyContentID    = errors.New("content id must not be empty")
)

const (
	// DefaultHistoryCap bounds per-content history by entry count.
	DefaultHistoryCap = 500
	// DefaultHistoryMaxAge bounds per-content history by entry age.
	DefaultHistoryMaxAge = 24 * time.Hour
	// DefaultFreshnessWindow is how recently a content item must have seen
	// an event to be considered live.
	DefaultFreshnessWindow = 5 * time.Minute

	shardCount = 32
)

// Config tunes the store's retention and liveness behavior.
// Zero values fall back to the defaults above.
type Config struct {
	HistoryCap      int
	HistoryMaxAge   time.Duration
	FreshnessWindow time.Duration
}

// contentState is the mutable per-content aggregate. Guarded by the owning
// shard's mutex.
type contentState struct {
	views    int64
	likes    int64
	comments int64
	shares   int64
	clicks   int64

	history     *history
	lastUpdated time.Time
}

func (st *contentState) add(kind MetricType, v int64) {
	switch kind {
	case MetricView:
		st.views += v
	case MetricLike:
		st.likes += v
	case MetricComment:
		st.comments += v
	case MetricShare:
		st.shares += v
	case MetricClick:
		st.clicks += v
	}
}

func (st *contentState) counter(kind MetricType) int64 {
	switch kind {
	case MetricView:
		return st.views
	case MetricLike:
		return st.likes
	case MetricComment:
		return st.comments
	case MetricShare:
		return st.shares
	case MetricClick:
		return st.clicks
	default:
		return 0
	}
}

type shard struct {
	mu       sync.RWMutex
	contents map[string]*contentState
}

// Store holds live rolling analytics for all tracked content, sharded by
// content id so writes for unrelated content never contend. All methods are
// safe for concurrent use.
type Store struct {
	shards [shardCount]*shard
	cfg    Config

	// now is the clock used for liveness and window queries. Overridden in
	// tests to pin time.
	now func() time.Time
}

// NewStore creates a Store with the given configuration.
func NewStore(cfg Config) *Store {
	if cfg.HistoryCap <= 0 {
		cfg.HistoryCap = DefaultHistoryCap
	}
	if cfg.HistoryMaxAge <= 0 {
		cfg.HistoryMaxAge = DefaultHistoryMaxAge
	}
	if cfg.FreshnessWindow <= 0 {
		cfg.FreshnessWindow = DefaultFreshnessWindow
	}

	s := &Store{cfg: cfg, now: time.Now}
	for i := range s.shards {
		s.shards[i] = &shard{contents: make(map[string]*contentState)}
	}
	return s
}

// FreshnessWindow returns the configured liveness window.
func (s *Store) FreshnessWindow() time.Duration {
	return s.cfg.FreshnessWindow
}

func (s *Store) shardFor(contentID string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(contentID))
	return s.shards[h.Sum32()%shardCount]
}

// RecordMetric applies one engagement event: it creates the content's rolling
// state on first sight, increments the cumulative counter for the event's
// kind, appends the event to the bounded history, and advances the content's
// last-activity time. A zero Timestamp is stamped with the current time.
func (s *Store) RecordMetric(m Metric) error {
	if m.ContentID == "" {
		return ErrEmptyContentID
	}
	if !m.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownMetricType, m.Type)
	}
	if m.Value <= 0 {
		return fmt.Errorf("%w: %d", ErrNonPositiveValue, m.Value)
	}

	if m.Timestamp.IsZero() {
		m.Timestamp = s.now()
	}

	sh := s.shardFor(m.ContentID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	st, ok := sh.contents[m.ContentID]
	if !ok {
		st = &contentState{history: newHistory(s.cfg.HistoryCap)}
		sh.contents[m.ContentID] = st
		metrics.StoreTrackedContents.Inc()
	}

	st.add(m.Type, m.Value)
	metrics.RecordHistoryEviction("capacity", st.history.push(m))
	metrics.RecordHistoryEviction("age", st.history.expire(s.now().Add(-s.cfg.HistoryMaxAge)))

	if m.Timestamp.After(st.lastUpdated) {
		st.lastUpdated = m.Timestamp
	}
	return nil
}

// GetLiveAnalytics returns the current rolling state for a content item.
// The second return value is false when the content has never been seen.
func (s *Store) GetLiveAnalytics(contentID string) (LiveAnalytics, bool) {
	sh := s.shardFor(contentID)
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	st, ok := sh.contents[contentID]
	if !ok {
		return LiveAnalytics{}, false
	}
	return s.liveLocked(contentID, st, s.now()), true
}

// liveLocked builds a LiveAnalytics snapshot. Caller holds the shard lock.
func (s *Store) liveLocked(contentID string, st *contentState, now time.Time) LiveAnalytics {
	return LiveAnalytics{
		ContentID:       contentID,
		Views:           st.views,
		Likes:           st.likes,
		Comments:        st.comments,
		Shares:          st.shares,
		Clicks:          st.clicks,
		EngagementScore: engagementScore(st.views, st.likes, st.comments),
		IsLive:          now.Sub(st.lastUpdated) < s.cfg.FreshnessWindow,
		LastUpdated:     st.lastUpdated,
	}
}

// GetRecentMetrics returns the events recorded for a content item within the
// given window, oldest first. Unknown content yields an empty slice, not an
// error. Producer timestamps are authoritative for window membership.
func (s *Store) GetRecentMetrics(contentID string, window time.Duration) []Metric {
	sh := s.shardFor(contentID)
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	st, ok := sh.contents[contentID]
	if !ok {
		return []Metric{}
	}
	return st.history.since(s.now().Add(-window))
}

// GetRealTimeEngagement sums interaction events (likes, comments, shares)
// within the lookback window. A non-positive lookback falls back to the
// freshness window.
func (s *Store) GetRealTimeEngagement(contentID string, lookback time.Duration) EngagementSummary {
	if lookback <= 0 {
		lookback = s.cfg.FreshnessWindow
	}

	sum := EngagementSummary{
		ContentID:     contentID,
		WindowMinutes: int(lookback / time.Minute),
	}

	sh := s.shardFor(contentID)
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	st, ok := sh.contents[contentID]
	if !ok {
		return sum
	}

	cutoff := s.now().Add(-lookback)
	for _, m := range st.history.since(cutoff) {
		switch m.Type {
		case MetricLike:
			sum.Likes += m.Value
		case MetricComment:
			sum.Comments += m.Value
		case MetricShare:
			sum.Shares += m.Value
		}
	}
	sum.Total = sum.Likes + sum.Comments + sum.Shares
	return sum
}

// CounterValueAt reconstructs the cumulative counter for one kind as it stood
// at a past instant, by subtracting retained history newer than that instant
// from the current counter. It reports false when the history no longer
// reaches back far enough, so callers never act on a partial reconstruction.
func (s *Store) CounterValueAt(contentID string, kind MetricType, at time.Time) (int64, bool) {
	sh := s.shardFor(contentID)
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	st, ok := sh.contents[contentID]
	if !ok {
		return 0, false
	}

	h := st.history
	if h.evicted && (h.len() == 0 || h.oldest().Timestamp.After(at)) {
		return 0, false
	}

	v := st.counter(kind)
	for i := 0; i < h.len(); i++ {
		m := h.at(i)
		if m.Type == kind && m.Timestamp.After(at) {
			v -= m.Value
		}
	}
	return v, true
}

// Snapshot returns live analytics for every tracked content item. Each shard
// is read under its own lock; the result may be slightly stale across shards,
// which is acceptable for ranking and digest reads.
func (s *Store) Snapshot() []LiveAnalytics {
	now := s.now()
	out := make([]LiveAnalytics, 0, 64)

	for _, sh := range s.shards {
		sh.mu.RLock()
		for id, st := range sh.contents {
			out = append(out, s.liveLocked(id, st, now))
		}
		sh.mu.RUnlock()
	}
	return out
}
