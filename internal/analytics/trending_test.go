// ScribeStream - Real-Time Content Engagement Analytics
// Copyright 2026 ScribeStream Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/scribestream/scribestream

package analytics

import (
	"math"
	"testing"
	"time"
)

func seedContent(t *testing.T, s *Store, id string, views, likes, comments int64) {
	t.Helper()
	if views > 0 {
		record(t, s, id, MetricView, views)
	}
	if likes > 0 {
		record(t, s, id, MetricLike, likes)
	}
	if comments > 0 {
		record(t, s, id, MetricComment, comments)
	}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestTrendingContent_WeightsAndOrder(t *testing.T) {
	s, _ := newTestStore(Config{FreshnessWindow: 5 * time.Minute})

	seedContent(t, s, "post-a", 1000, 50, 10)
	seedContent(t, s, "post-b", 200, 80, 40)
	seedContent(t, s, "post-c", 10, 5, 1)

	got := s.TrendingContent(10)
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}

	// Weighted sums normalized by the 5 minute window:
	//  a: (0.4*1000 + 0.3*50 + 0.3*10) / 5 = 83.6
	//  b: (0.4*200  + 0.3*80 + 0.3*40) / 5 = 23.2
	//  c: (0.4*10   + 0.3*5  + 0.3*1)  / 5 = 1.16
	wantOrder := []string{"post-a", "post-b", "post-c"}
	wantScore := []float64{83.6, 23.2, 1.16}

	for i, e := range got {
		if e.ContentID != wantOrder[i] {
			t.Errorf("rank %d = %s, want %s", i, e.ContentID, wantOrder[i])
		}
		if !almostEqual(e.Score, wantScore[i]) {
			t.Errorf("%s score = %v, want %v", e.ContentID, e.Score, wantScore[i])
		}
	}

	if got[0].Views != 1000 || got[0].Likes != 50 || got[0].Comments != 10 {
		t.Errorf("windowed counts = %+v", got[0])
	}
}

func TestTrendingContent_WindowExcludesOldActivity(t *testing.T) {
	s, clk := newTestStore(Config{FreshnessWindow: 5 * time.Minute})

	seedContent(t, s, "stale", 5000, 100, 100)
	clk.Advance(10 * time.Minute)
	seedContent(t, s, "fresh", 10, 0, 0)

	got := s.TrendingContent(10)
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1 (stale content has zero windowed score)", len(got))
	}
	if got[0].ContentID != "fresh" {
		t.Errorf("top = %s, want fresh", got[0].ContentID)
	}
}

func TestTrendingContent_SharesAndClicksDoNotScore(t *testing.T) {
	s, _ := newTestStore(Config{})

	record(t, s, "post-1", MetricShare, 100)
	record(t, s, "post-1", MetricClick, 100)

	if got := s.TrendingContent(10); len(got) != 0 {
		t.Errorf("share/click only content ranked: %+v", got)
	}
}

func TestTrendingContent_Limit(t *testing.T) {
	s, _ := newTestStore(Config{})

	for _, id := range []string{"a", "b", "c", "d", "e"} {
		record(t, s, id, MetricView, 10)
	}

	if got := s.TrendingContent(2); len(got) != 2 {
		t.Errorf("len = %d, want 2", len(got))
	}
	if got := s.TrendingContent(0); len(got) != 5 {
		t.Errorf("default limit applied too aggressively: len = %d, want 5", len(got))
	}
}

func TestTrendingContent_TieBreakByRecency(t *testing.T) {
	s, clk := newTestStore(Config{FreshnessWindow: 10 * time.Minute})

	record(t, s, "older", MetricView, 10)
	clk.Advance(time.Minute)
	record(t, s, "newer", MetricView, 10)

	got := s.TrendingContent(10)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].ContentID != "newer" {
		t.Errorf("equal scores must rank most recent first, got %s", got[0].ContentID)
	}
}

func TestTrendingContent_Empty(t *testing.T) {
	s, _ := newTestStore(Config{})

	got := s.TrendingContent(10)
	if len(got) != 0 {
		t.Errorf("len = %d, want 0", len(got))
	}
}

func TestTrendingContentAmong(t *testing.T) {
	s, _ := newTestStore(Config{})

	record(t, s, "mine", MetricView, 10)
	record(t, s, "theirs", MetricView, 100)

	allowed := map[string]struct{}{"mine": {}}
	got := s.TrendingContentAmong(allowed, 10)
	if len(got) != 1 || got[0].ContentID != "mine" {
		t.Fatalf("scoped trending = %+v", got)
	}

	if got := s.TrendingContentAmong(nil, 10); len(got) != 2 {
		t.Errorf("nil set must rank everything, len = %d", len(got))
	}
}
