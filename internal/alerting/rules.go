// ScribeStream - Real-Time Content Engagement Analytics
// Copyright 2026 ScribeStream Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/scribestream/scribestream

package alerting

import (
	"fmt"
	"sync"
	"time"

	"github.com/scribestream/scribestream/internal/analytics"
)

// Rule defaults.
const (
	DefaultViewSpikeGrowthPercent = 50.0
	DefaultViewSpikeLookback      = 10 * time.Minute

	DefaultSurgeMinEvents = 25
	DefaultSurgeLookback  = 10 * time.Minute
)

// ViewSpikeRule fires when a content item's cumulative view counter grew by
// at least GrowthPercent within the lookback window. The condition is never
// considered met when the retained history does not reach back far enough to
// reconstruct the baseline, so sparse or freshly-tracked content cannot
// produce spurious spikes.
type ViewSpikeRule struct {
	mu            sync.RWMutex
	enabled       bool
	growthPercent float64
	lookback      time.Duration
}

// ViewSpikeConfig configures the view spike rule. Zero values fall back to
// the defaults.
type ViewSpikeConfig struct {
	Enabled       bool
	GrowthPercent float64
	Lookback      time.Duration
}

// NewViewSpikeRule creates a view spike rule.
func NewViewSpikeRule(cfg ViewSpikeConfig) *ViewSpikeRule {
	if cfg.GrowthPercent <= 0 {
		cfg.GrowthPercent = DefaultViewSpikeGrowthPercent
	}
	if cfg.Lookback <= 0 {
		cfg.Lookback = DefaultViewSpikeLookback
	}
	return &ViewSpikeRule{
		enabled:       cfg.Enabled,
		growthPercent: cfg.GrowthPercent,
		lookback:      cfg.Lookback,
	}
}

// Name returns the rule identifier.
func (r *ViewSpikeRule) Name() string { return "view_spike" }

// Enabled returns whether the rule is evaluated.
func (r *ViewSpikeRule) Enabled() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.enabled
}

// SetEnabled enables or disables the rule.
func (r *ViewSpikeRule) SetEnabled(enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.enabled = enabled
}

// Check compares the current view counter against its value one lookback ago.
func (r *ViewSpikeRule) Check(src MetricSource, contentID string, now time.Time) (Finding, bool) {
	r.mu.RLock()
	growthPercent := r.growthPercent
	lookback := r.lookback
	r.mu.RUnlock()

	baseline, ok := src.CounterValueAt(contentID, analytics.MetricView, now.Add(-lookback))
	if !ok || baseline <= 0 {
		return Finding{}, false
	}

	current, ok := src.CounterValueAt(contentID, analytics.MetricView, now)
	if !ok || current <= baseline {
		return Finding{}, false
	}

	growth := float64(current-baseline) / float64(baseline) * 100
	if growth < growthPercent {
		return Finding{}, false
	}

	severity := SeverityWarning
	if growth >= 2*growthPercent {
		severity = SeverityCritical
	}

	return Finding{
		Severity: severity,
		Title:    "View spike detected",
		Message: fmt.Sprintf("views grew %.0f%% in the last %s (%d to %d)",
			growth, lookback, baseline, current),
	}, true
}

// EngagementSurgeRule fires when interaction activity (likes, comments,
// shares) within the lookback window reaches MinEvents.
type EngagementSurgeRule struct {
	mu        sync.RWMutex
	enabled   bool
	minEvents int64
	lookback  time.Duration
}

// EngagementSurgeConfig configures the engagement surge rule. Zero values
// fall back to the defaults.
type EngagementSurgeConfig struct {
	Enabled   bool
	MinEvents int64
	Lookback  time.Duration
}

// NewEngagementSurgeRule creates an engagement surge rule.
func NewEngagementSurgeRule(cfg EngagementSurgeConfig) *EngagementSurgeRule {
	if cfg.MinEvents <= 0 {
		cfg.MinEvents = DefaultSurgeMinEvents
	}
	if cfg.Lookback <= 0 {
		cfg.Lookback = DefaultSurgeLookback
	}
	return &EngagementSurgeRule{
		enabled:   cfg.Enabled,
		minEvents: cfg.MinEvents,
		lookback:  cfg.Lookback,
	}
}

// Name returns the rule identifier.
func (r *EngagementSurgeRule) Name() string { return "engagement_surge" }

// Enabled returns whether the rule is evaluated.
func (r *EngagementSurgeRule) Enabled() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.enabled
}

// SetEnabled enables or disables the rule.
func (r *EngagementSurgeRule) SetEnabled(enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.enabled = enabled
}

// Check sums windowed interaction events against the threshold.
func (r *EngagementSurgeRule) Check(src MetricSource, contentID string, now time.Time) (Finding, bool) {
	r.mu.RLock()
	minEvents := r.minEvents
	lookback := r.lookback
	r.mu.RUnlock()

	sum := src.GetRealTimeEngagement(contentID, lookback)
	if sum.Total < minEvents {
		return Finding{}, false
	}

	severity := SeverityWarning
	if sum.Total >= 2*minEvents {
		severity = SeverityCritical
	}

	return Finding{
		Severity: severity,
		Title:    "Engagement surge detected",
		Message: fmt.Sprintf("%d interactions in the last %s (%d likes, %d comments, %d shares)",
			sum.Total, lookback, sum.Likes, sum.Comments, sum.Shares),
	}, true
}
