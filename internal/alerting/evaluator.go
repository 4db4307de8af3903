// ScribeStream - Real-Time Content Engagement Analytics
// Copyright 2026 ScribeStream Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/scribestream/scribestream

package alerting

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/scribestream/scribestream/internal/logging"
	"github.com/scribestream/scribestream/internal/metrics"
	"github.com/scribestream/scribestream/internal/subscription"
)

// Evaluator defaults.
const (
	// DefaultCooldown is how long a (user, content, rule) triple stays
	// silenced after firing.
	DefaultCooldown = 15 * time.Minute

	// DefaultMaxAlertsPerUser bounds each user's retained alert list.
	DefaultMaxAlertsPerUser = 100

	// notifyTimeout bounds one notifier delivery attempt.
	notifyTimeout = 10 * time.Second
)

// phase is the lifecycle position of one (user, content, rule) triple.
type phase int

const (
	phaseIdle phase = iota
	phaseTriggered
	phaseCooling
)

type stateKey struct {
	userID    string
	contentID string
	rule      string
}

type ruleState struct {
	phase   phase
	firedAt time.Time
}

// Config tunes the evaluator. Zero values fall back to the defaults.
type Config struct {
	Cooldown         time.Duration
	MaxAlertsPerUser int
}

// Evaluator runs alert rules against content on every recorded event, scoped
// to the users subscribed to that content. Each (user, content, rule) triple
// moves through an explicit idle, triggered, cooling lifecycle; a firing
// enters cooldown and the condition holding during cooldown is suppressed
// rather than re-fired. Cooldown lapse is observed lazily on the next
// evaluation, there is no background sweep.
type Evaluator struct {
	src  MetricSource
	subs *subscription.Registry
	cfg  Config

	mu     sync.Mutex
	rules  []Rule
	states map[stateKey]*ruleState
	alerts map[string][]Alert

	notifyMu  sync.RWMutex
	notifiers []Notifier

	// now is the evaluation clock, overridden in tests.
	now func() time.Time
}

// NewEvaluator creates an Evaluator reading from src and resolving alert
// recipients through subs.
func NewEvaluator(src MetricSource, subs *subscription.Registry, cfg Config) *Evaluator {
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = DefaultCooldown
	}
	if cfg.MaxAlertsPerUser <= 0 {
		cfg.MaxAlertsPerUser = DefaultMaxAlertsPerUser
	}

	return &Evaluator{
		src:    src,
		subs:   subs,
		cfg:    cfg,
		states: make(map[stateKey]*ruleState),
		alerts: make(map[string][]Alert),
		now:    time.Now,
	}
}

// RegisterRule adds a rule to the evaluation set.
func (e *Evaluator) RegisterRule(r Rule) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rules = append(e.rules, r)
}

// RegisterNotifier adds a delivery channel for fired alerts.
func (e *Evaluator) RegisterNotifier(n Notifier) {
	e.notifyMu.Lock()
	defer e.notifyMu.Unlock()
	e.notifiers = append(e.notifiers, n)
	logging.Info().Str("notifier", n.Name()).Msg("Alert notifier registered")
}

// Evaluate runs every enabled rule for the content and fires alerts for each
// subscribed user whose (user, content, rule) triple is not cooling down.
// It returns the alerts fired by this call.
func (e *Evaluator) Evaluate(contentID string) []Alert {
	subscribers := e.subs.Subscribers(contentID)
	if len(subscribers) == 0 {
		return nil
	}

	now := e.now()

	e.mu.Lock()
	rules := make([]Rule, len(e.rules))
	copy(rules, e.rules)
	e.mu.Unlock()

	var fired []Alert
	for _, rule := range rules {
		if !rule.Enabled() {
			continue
		}

		// The condition is content-scoped, check it once per rule.
		finding, held := rule.Check(e.src, contentID, now)

		for _, userID := range subscribers {
			if a, ok := e.advance(userID, contentID, rule.Name(), finding, held, now); ok {
				fired = append(fired, a)
			}
		}
	}

	for _, a := range fired {
		e.notify(a)
	}
	return fired
}

// advance moves one (user, content, rule) triple through its lifecycle and
// returns the alert if the rule fired for this user.
func (e *Evaluator) advance(userID, contentID, ruleName string, finding Finding, held bool, now time.Time) (Alert, bool) {
	key := stateKey{userID: userID, contentID: contentID, rule: ruleName}

	e.mu.Lock()
	defer e.mu.Unlock()

	st, ok := e.states[key]
	if !ok {
		st = &ruleState{phase: phaseIdle}
		e.states[key] = st
	}

	// Cooldown lapse is observed here, on the next evaluation.
	if st.phase != phaseIdle && now.Sub(st.firedAt) >= e.cfg.Cooldown {
		st.phase = phaseIdle
	}

	if !held {
		return Alert{}, false
	}

	if st.phase != phaseIdle {
		metrics.RecordAlertSuppressed(ruleName)
		return Alert{}, false
	}

	// The triggered phase is momentary: firing immediately starts cooldown.
	st.phase = phaseCooling
	st.firedAt = now

	alert := Alert{
		ID:        uuid.NewString(),
		UserID:    userID,
		ContentID: contentID,
		Rule:      ruleName,
		Severity:  finding.Severity,
		Title:     finding.Title,
		Message:   finding.Message,
		Triggered: now,
	}

	list := append(e.alerts[userID], alert)
	if len(list) > e.cfg.MaxAlertsPerUser {
		list = list[len(list)-e.cfg.MaxAlertsPerUser:]
	}
	e.alerts[userID] = list

	metrics.RecordAlertFired(ruleName, string(finding.Severity))
	logging.Info().
		Str("user_id", userID).
		Str("content_id", contentID).
		Str("rule", ruleName).
		Str("severity", string(finding.Severity)).
		Msg("Alert fired")

	return alert, true
}

// notify hands the alert to every registered notifier, each on its own
// goroutine so a slow channel never stalls ingestion.
func (e *Evaluator) notify(alert Alert) {
	e.notifyMu.RLock()
	notifiers := make([]Notifier, len(e.notifiers))
	copy(notifiers, e.notifiers)
	e.notifyMu.RUnlock()

	for _, n := range notifiers {
		go func(n Notifier) {
			ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
			defer cancel()

			if err := n.Send(ctx, alert); err != nil {
				logging.Warn().
					Err(err).
					Str("notifier", n.Name()).
					Str("alert_id", alert.ID).
					Msg("Alert notification failed")
			}
		}(n)
	}
}

// Alerts returns the user's retained alerts, most recent first. With
// unackedOnly set, acknowledged alerts are filtered out.
func (e *Evaluator) Alerts(userID string, unackedOnly bool) []Alert {
	e.mu.Lock()
	defer e.mu.Unlock()

	list := e.alerts[userID]
	out := make([]Alert, 0, len(list))
	for i := len(list) - 1; i >= 0; i-- {
		if unackedOnly && list[i].Acknowledged {
			continue
		}
		out = append(out, list[i])
	}
	return out
}

// UnacknowledgedCount returns how many of the user's retained alerts are
// still unacknowledged.
func (e *Evaluator) UnacknowledgedCount(userID string) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	count := 0
	for _, a := range e.alerts[userID] {
		if !a.Acknowledged {
			count++
		}
	}
	return count
}

// Acknowledge marks the user's alert as acknowledged. It reports false when
// the alert does not exist or belongs to another user. Acknowledgement is
// monotonic; acknowledging twice succeeds without effect.
func (e *Evaluator) Acknowledge(userID, alertID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	list := e.alerts[userID]
	for i := range list {
		if list[i].ID != alertID {
			continue
		}
		if !list[i].Acknowledged {
			list[i].Acknowledged = true
			metrics.AlertsAcknowledged.Inc()
		}
		return true
	}
	return false
}
