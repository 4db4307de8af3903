// ScribeStream - Real-Time Content Engagement Analytics
// Copyright 2026 ScribeStream Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/scribestream/scribestream

package ingest

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/scribestream/scribestream/internal/alerting"
	"github.com/scribestream/scribestream/internal/analytics"
	"github.com/scribestream/scribestream/internal/models"
	"github.com/scribestream/scribestream/internal/subscription"
	"github.com/scribestream/scribestream/internal/validation"
)

type captureBroadcaster struct {
	mu     sync.Mutex
	events []string
	last   interface{}
}

func (b *captureBroadcaster) Broadcast(eventType string, payload interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, eventType)
	b.last = payload
}

func (b *captureBroadcaster) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.events)
}

func newTestService() (*Service, *analytics.Store, *captureBroadcaster) {
	store := analytics.NewStore(analytics.Config{})
	subs := subscription.NewRegistry()
	evaluator := alerting.NewEvaluator(store, subs, alerting.Config{})
	bc := &captureBroadcaster{}
	return NewService(store, evaluator, bc), store, bc
}

func int64Ptr(v int64) *int64 { return &v }

func TestRecord_AcceptsAndStores(t *testing.T) {
	svc, store, bc := newTestService()

	m, err := svc.Record(context.Background(), models.RecordEventRequest{
		ContentID:  "post-1",
		Platform:   "medium",
		MetricType: "view",
		Value:      int64Ptr(3),
	})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}

	if m.ID == "" {
		t.Error("metric must be assigned an id")
	}
	if m.Type != analytics.MetricView || m.Value != 3 {
		t.Errorf("metric = %+v", m)
	}

	live, ok := store.GetLiveAnalytics("post-1")
	if !ok || live.Views != 3 {
		t.Errorf("stored views = %d/%v, want 3/true", live.Views, ok)
	}

	if bc.count() != 1 {
		t.Errorf("broadcasts = %d, want 1", bc.count())
	}
	bc.mu.Lock()
	if bc.events[0] != "metric_update" {
		t.Errorf("event type = %s, want metric_update", bc.events[0])
	}
	if _, ok := bc.last.(analytics.LiveAnalytics); !ok {
		t.Errorf("payload type = %T, want analytics.LiveAnalytics", bc.last)
	}
	bc.mu.Unlock()
}

func TestRecord_ValueDefaultsToOne(t *testing.T) {
	svc, store, _ := newTestService()

	if _, err := svc.Record(context.Background(), models.RecordEventRequest{
		ContentID:  "post-1",
		MetricType: "like",
	}); err != nil {
		t.Fatalf("Record: %v", err)
	}

	live, _ := store.GetLiveAnalytics("post-1")
	if live.Likes != 1 {
		t.Errorf("Likes = %d, want 1", live.Likes)
	}
}

func TestRecord_ValidationErrors(t *testing.T) {
	svc, store, bc := newTestService()

	tests := []struct {
		name string
		req  models.RecordEventRequest
	}{
		{name: "missing content id", req: models.RecordEventRequest{MetricType: "view"}},
		{name: "unknown metric type", req: models.RecordEventRequest{ContentID: "post-1", MetricType: "impression"}},
		{name: "zero value", req: models.RecordEventRequest{ContentID: "post-1", MetricType: "view", Value: int64Ptr(0)}},
		{name: "negative value", req: models.RecordEventRequest{ContentID: "post-1", MetricType: "view", Value: int64Ptr(-2)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Record(context.Background(), tt.req)
			if err == nil {
				t.Fatal("expected validation error")
			}
			var vErr *validation.RequestValidationError
			if ok := errors.As(err, &vErr); !ok {
				t.Errorf("error type = %T, want *validation.RequestValidationError", err)
			}
		})
	}

	if _, ok := store.GetLiveAnalytics("post-1"); ok {
		t.Error("rejected events must not create content state")
	}
	if bc.count() != 0 {
		t.Errorf("broadcasts = %d, want 0", bc.count())
	}
}

func TestApply_EvaluatesAlertRules(t *testing.T) {
	store := analytics.NewStore(analytics.Config{})
	subs := subscription.NewRegistry()
	evaluator := alerting.NewEvaluator(store, subs, alerting.Config{})
	evaluator.RegisterRule(alerting.NewEngagementSurgeRule(alerting.EngagementSurgeConfig{
		Enabled:   true,
		MinEvents: 2,
	}))
	svc := NewService(store, evaluator, nil)

	if err := subs.Subscribe("alice", "post-1"); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := svc.Apply(context.Background(), analytics.Metric{
			ContentID: "post-1",
			Type:      analytics.MetricLike,
			Value:     1,
		}); err != nil {
			t.Fatalf("Apply: %v", err)
		}
	}

	alerts := evaluator.Alerts("alice", false)
	if len(alerts) != 1 {
		t.Fatalf("alerts = %d, want 1 surge alert", len(alerts))
	}
	if alerts[0].Rule != "engagement_surge" {
		t.Errorf("rule = %s, want engagement_surge", alerts[0].Rule)
	}
}

func TestApply_RejectsMalformedMetric(t *testing.T) {
	svc, _, _ := newTestService()

	err := svc.Apply(context.Background(), analytics.Metric{
		ContentID: "post-1",
		Type:      "bogus",
		Value:     1,
	})
	if err == nil {
		t.Fatal("expected error for unknown metric type")
	}
}
