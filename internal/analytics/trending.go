// ScribeStream - Real-Time Content Engagement Analytics
// Copyright 2026 ScribeStream Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/scribestream/scribestream

package analytics

import (
	"sort"
	"time"

	"github.com/scribestream/scribestream/internal/metrics"
)

// Trend score weights. Views carry the most weight; likes and comments split
// the remainder evenly. The weighted sum is normalized by the window length
// in minutes so the score reads as activity per minute.
const (
	trendWeightViews    = 0.4
	trendWeightLikes    = 0.3
	trendWeightComments = 0.3

	// DefaultTrendingLimit is the number of entries returned when the caller
	// does not name a limit.
	DefaultTrendingLimit = 10
)

// TrendingContent ranks all tracked content by recent engagement and returns
// the top entries, highest score first. Only activity inside the freshness
// window counts; content with a zero score is omitted entirely. Ties are
// broken by most recent activity, then by content id for a stable order.
//
// The ranking is recomputed from shard state on every call. Each shard is
// read under its own lock, so the result may lag concurrent writes by a
// moment, which is acceptable for a discovery surface.
func (s *Store) TrendingContent(limit int) []TrendEntry {
	return s.trending(nil, limit)
}

// TrendingContentAmong ranks only the named content ids. It backs
// owner-scoped trending queries: the caller passes the ids a user owns and
// gets the same ranking restricted to that set. A nil set ranks everything.
func (s *Store) TrendingContentAmong(allowed map[string]struct{}, limit int) []TrendEntry {
	return s.trending(allowed, limit)
}

func (s *Store) trending(allowed map[string]struct{}, limit int) []TrendEntry {
	if limit <= 0 {
		limit = DefaultTrendingLimit
	}

	start := time.Now()
	defer func() { metrics.RecordTrendingCompute(time.Since(start)) }()

	now := s.now()
	window := s.cfg.FreshnessWindow
	windowMinutes := window.Minutes()
	if windowMinutes < 1 {
		windowMinutes = 1
	}
	cutoff := now.Add(-window)

	entries := make([]TrendEntry, 0, 64)
	for _, sh := range s.shards {
		sh.mu.RLock()
		for id, st := range sh.contents {
			if allowed != nil {
				if _, ok := allowed[id]; !ok {
					continue
				}
			}
			e := trendEntry(id, st, cutoff, windowMinutes)
			if e.Score > 0 {
				entries = append(entries, e)
			}
		}
		sh.mu.RUnlock()
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		if !entries[i].LastActivity.Equal(entries[j].LastActivity) {
			return entries[i].LastActivity.After(entries[j].LastActivity)
		}
		return entries[i].ContentID < entries[j].ContentID
	})

	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}

// trendEntry computes one content item's windowed counts and score.
// Caller holds the shard lock.
func trendEntry(contentID string, st *contentState, cutoff time.Time, windowMinutes float64) TrendEntry {
	var views, likes, comments int64
	for _, m := range st.history.since(cutoff) {
		switch m.Type {
		case MetricView:
			views += m.Value
		case MetricLike:
			likes += m.Value
		case MetricComment:
			comments += m.Value
		}
	}

	score := (trendWeightViews*float64(views) +
		trendWeightLikes*float64(likes) +
		trendWeightComments*float64(comments)) / windowMinutes

	return TrendEntry{
		ContentID:    contentID,
		Score:        score,
		Views:        views,
		Likes:        likes,
		Comments:     comments,
		LastActivity: st.lastUpdated,
	}
}
