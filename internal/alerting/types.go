// ScribeStream - Real-Time Content Engagement Analytics
// Copyright 2026 ScribeStream Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/scribestream/scribestream

package alerting

import (
	"context"
	"time"

	"github.com/scribestream/scribestream/internal/analytics"
)

// Severity indicates how urgent an alert is.
type Severity string

// Severity levels.
const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Alert is a fired rule instance addressed to one user. Alerts are owned by
// the user they were created for; acknowledgement is monotonic.
type Alert struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	ContentID    string    `json:"content_id"`
	Rule         string    `json:"rule"`
	Severity     Severity  `json:"severity"`
	Title        string    `json:"title"`
	Message      string    `json:"message"`
	Triggered    time.Time `json:"triggered"`
	Acknowledged bool      `json:"acknowledged"`
}

// Finding is the outcome of a rule condition that held.
type Finding struct {
	Severity Severity
	Title    string
	Message  string
}

// MetricSource is the read surface rules evaluate against. *analytics.Store
// satisfies it.
type MetricSource interface {
	CounterValueAt(contentID string, kind analytics.MetricType, at time.Time) (int64, bool)
	GetRealTimeEngagement(contentID string, lookback time.Duration) analytics.EngagementSummary
}

// Rule is a single alert condition evaluated against one content item.
// Implementations must be safe for concurrent use.
type Rule interface {
	// Name returns the stable rule identifier used in alerts and metrics.
	Name() string

	// Enabled returns whether this rule should be evaluated.
	Enabled() bool

	// SetEnabled enables or disables the rule at runtime.
	SetEnabled(enabled bool)

	// Check evaluates the condition for the content as of now. The second
	// return value is false when the condition did not hold or the data is
	// insufficient to decide.
	Check(src MetricSource, contentID string, now time.Time) (Finding, bool)
}

// Notifier delivers fired alerts to an external channel.
type Notifier interface {
	// Name returns the notifier name for logging and metrics.
	Name() string

	// Send delivers the alert. Send must respect ctx cancellation.
	Send(ctx context.Context, alert Alert) error
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc struct {
	NotifierName string
	Fn           func(ctx context.Context, alert Alert) error
}

// Name returns the notifier name.
func (n NotifierFunc) Name() string { return n.NotifierName }

// Send invokes the wrapped function.
func (n NotifierFunc) Send(ctx context.Context, alert Alert) error { return n.Fn(ctx, alert) }
