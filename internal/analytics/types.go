// ScribeStream - Real-Time Content Engagement Analytics
// Copyright 2026 ScribeStream Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/scribestream/scribestream

package analytics

import (
	"fmt"
	"time"
)

// MetricType identifies the kind of engagement event being recorded.
type MetricType string

// Supported metric types.
const (
	MetricView    MetricType = "view"
	MetricLike    MetricType = "like"
	MetricComment MetricType = "comment"
	MetricShare   MetricType = "share"
	MetricClick   MetricType = "click"
)

// ParseMetricType converts a string to a MetricType, rejecting unknown kinds.
func ParseMetricType(s string) (MetricType, error) {
	switch MetricType(s) {
	case MetricView, MetricLike, MetricComment, MetricShare, MetricClick:
		return MetricType(s), nil
	default:
		return "", fmt.Errorf("unknown metric type %q", s)
	}
}

// Valid reports whether t is one of the supported metric types.
func (t MetricType) Valid() bool {
	_, err := ParseMetricType(string(t))
	return err == nil
}

// Metric is a single engagement event. Metrics are immutable once recorded.
// Timestamp is assigned at ingest when the producer leaves it zero.
type Metric struct {
	ID        string            `json:"id"`
	ContentID string            `json:"content_id"`
	Platform  string            `json:"platform,omitempty"`
	Type      MetricType        `json:"metric_type"`
	Value     int64             `json:"value"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// LiveAnalytics is the current rolling state for one content item.
// IsLive reflects whether the content saw any event within the freshness
// window as of the moment the snapshot was taken.
//
// EngagementScore is (likes + 2*comments) / views * 100, zero when the
// content has no views yet.
type LiveAnalytics struct {
	ContentID       string    `json:"content_id"`
	Views           int64     `json:"views"`
	Likes           int64     `json:"likes"`
	Comments        int64     `json:"comments"`
	Shares          int64     `json:"shares"`
	Clicks          int64     `json:"clicks"`
	EngagementScore float64   `json:"engagement_score"`
	IsLive          bool      `json:"is_live"`
	LastUpdated     time.Time `json:"last_updated"`
}

// Total returns the sum of all counters.
func (a LiveAnalytics) Total() int64 {
	return a.Views + a.Likes + a.Comments + a.Shares + a.Clicks
}

// EngagementSummary aggregates interaction events (likes, comments, shares)
// observed within a recent lookback window.
type EngagementSummary struct {
	ContentID     string `json:"content_id"`
	Likes         int64  `json:"likes"`
	Comments      int64  `json:"comments"`
	Shares        int64  `json:"shares"`
	Total         int64  `json:"total"`
	WindowMinutes int    `json:"window_minutes"`
}

// TrendEntry is one ranked item in the trending list.
type TrendEntry struct {
	ContentID    string    `json:"content_id"`
	Score        float64   `json:"score"`
	Views        int64     `json:"views"`
	Likes        int64     `json:"likes"`
	Comments     int64     `json:"comments"`
	LastActivity time.Time `json:"last_activity"`
}

// engagementScore computes (likes + 2*comments) / views * 100.
func engagementScore(views, likes, comments int64) float64 {
	if views == 0 {
		return 0
	}
	return float64(likes+2*comments) / float64(views) * 100
}
