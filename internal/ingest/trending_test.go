// ScribeStream - Real-Time Content Engagement Analytics
// Copyright 2026 ScribeStream Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/scribestream/scribestream

package ingest

import (
	"context"
	"testing"
	"time"

	"github.com/scribestream/scribestream/internal/analytics"
)

type chanBroadcaster struct {
	messages chan broadcastCall
}

type broadcastCall struct {
	eventType string
	payload   interface{}
}

func (b *chanBroadcaster) Broadcast(eventType string, payload interface{}) {
	select {
	case b.messages <- broadcastCall{eventType, payload}:
	default:
	}
}

func TestTrendingBroadcasterPushesRankings(t *testing.T) {
	store := analytics.NewStore(analytics.Config{})
	m := analytics.Metric{ContentID: "post-1", Type: analytics.MetricView, Value: 10}
	if err := store.RecordMetric(m); err != nil {
		t.Fatalf("RecordMetric: %v", err)
	}

	sink := &chanBroadcaster{messages: make(chan broadcastCall, 4)}
	tb := NewTrendingBroadcaster(store, sink, 10*time.Millisecond, 5)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- tb.RunWithContext(ctx) }()

	select {
	case call := <-sink.messages:
		if call.eventType != "trending_update" {
			t.Errorf("event type = %q", call.eventType)
		}
		entries, ok := call.payload.([]analytics.TrendEntry)
		if !ok {
			t.Fatalf("payload type = %T", call.payload)
		}
		if len(entries) != 1 || entries[0].ContentID != "post-1" {
			t.Errorf("entries = %+v", entries)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no trending broadcast")
	}

	cancel()
	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("RunWithContext err = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("broadcaster did not stop")
	}
}

func TestTrendingBroadcasterSkipsEmptyRankings(t *testing.T) {
	store := analytics.NewStore(analytics.Config{})
	sink := &chanBroadcaster{messages: make(chan broadcastCall, 4)}
	tb := NewTrendingBroadcaster(store, sink, 5*time.Millisecond, 5)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_ = tb.RunWithContext(ctx)

	select {
	case call := <-sink.messages:
		t.Errorf("unexpected broadcast: %+v", call)
	default:
	}
}
