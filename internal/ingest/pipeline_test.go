// ScribeStream - Real-Time Content Engagement Analytics
// Copyright 2026 ScribeStream Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/scribestream/scribestream

package ingest

import (
	"context"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/scribestream/scribestream/internal/analytics"
	"github.com/scribestream/scribestream/internal/metrics"
)

func TestSerializer(t *testing.T) {
	s := NewSerializer()

	m := analytics.Metric{
		ID:        "ev-1",
		ContentID: "post-1",
		Platform:  "medium",
		Type:      analytics.MetricComment,
		Value:     2,
		Timestamp: time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC),
	}

	data, err := s.Marshal(m)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	got, err := s.Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.ID != m.ID || got.ContentID != m.ContentID || got.Type != m.Type || got.Value != m.Value {
		t.Errorf("round trip = %+v, want %+v", got, m)
	}

	if _, err := s.Marshal(analytics.Metric{Type: analytics.MetricView, Value: 1}); err == nil {
		t.Error("Marshal accepted a metric without content id")
	}
	if _, err := s.Marshal(analytics.Metric{ContentID: "post-1", Type: "bogus", Value: 1}); err == nil {
		t.Error("Marshal accepted an unknown metric type")
	}
	if _, err := s.Unmarshal([]byte("{not json")); err == nil {
		t.Error("Unmarshal accepted malformed bytes")
	}
}

func TestPipeline_PublishDeliversToStore(t *testing.T) {
	svc, store, _ := newTestService()

	p, err := NewPipeline(DefaultPipelineConfig(), svc)
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	select {
	case <-p.Running():
	case <-time.After(5 * time.Second):
		t.Fatal("pipeline never started")
	}

	if err := p.Publish(analytics.Metric{
		ContentID: "post-1",
		Type:      analytics.MetricView,
		Value:     1,
	}); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		if live, ok := store.GetLiveAnalytics("post-1"); ok && live.Views == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("published event never reached the store")
		}
		time.Sleep(10 * time.Millisecond)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("pipeline did not stop on context cancel")
	}
	if err := p.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestPipeline_UndecodableMessagePoisonedOnce(t *testing.T) {
	svc, store, _ := newTestService()

	cfg := DefaultPipelineConfig()
	cfg.RetryMaxRetries = 2
	cfg.RetryInitialInterval = time.Millisecond
	cfg.RetryMaxInterval = 5 * time.Millisecond

	p, err := NewPipeline(cfg, svc)
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	select {
	case <-p.Running():
	case <-time.After(5 * time.Second):
		t.Fatal("pipeline never started")
	}

	before := testutil.ToFloat64(metrics.PipelineMessagesPoisoned)

	msg := message.NewMessage(watermill.NewUUID(), []byte("{not json"))
	if err := p.pubsub.Publish(p.config.Topic, msg); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for testutil.ToFloat64(metrics.PipelineMessagesPoisoned) == before {
		if time.Now().After(deadline) {
			t.Fatal("undecodable message never reached the poison topic")
		}
		time.Sleep(10 * time.Millisecond)
	}

	// Give any stray retries time to land, then check the count is exact.
	time.Sleep(100 * time.Millisecond)
	if got := testutil.ToFloat64(metrics.PipelineMessagesPoisoned) - before; got != 1 {
		t.Errorf("poisoned count = %v, want 1", got)
	}
	if snapshot := store.Snapshot(); len(snapshot) != 0 {
		t.Errorf("undecodable message mutated the store: %v", snapshot)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("pipeline did not stop on context cancel")
	}
	if err := p.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestPipeline_PublishRejectsMalformed(t *testing.T) {
	svc, _, _ := newTestService()

	p, err := NewPipeline(DefaultPipelineConfig(), svc)
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}
	defer p.Close()

	if err := p.Publish(analytics.Metric{Type: analytics.MetricView, Value: 1}); err == nil {
		t.Error("Publish accepted a metric without content id")
	}
}
