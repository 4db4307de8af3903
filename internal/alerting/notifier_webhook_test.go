// ScribeStream - Real-Time Content Engagement Analytics
// Copyright 2026 ScribeStream Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/scribestream/scribestream

package alerting

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/scribestream/scribestream/internal/testinfra"
)

func testAlert() Alert {
	return Alert{
		ID:        "a-1",
		UserID:    "alice",
		ContentID: "post-1",
		Rule:      "view_spike",
		Severity:  SeverityWarning,
		Title:     "View spike on post-1",
		Message:   "views grew 120.0% in the last 10m",
		Triggered: time.Now(),
	}
}

func TestWebhookNotifierDeliversPayload(t *testing.T) {
	receiver := testinfra.NewMockWebhookServer(t)

	n := NewWebhookNotifier(WebhookConfig{
		Enabled:    true,
		WebhookURL: receiver.URL(),
		Headers:    map[string]string{"X-Auth-Token": "secret"},
	})

	if err := n.Send(context.Background(), testAlert()); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if !receiver.WaitForCaptures(1, time.Second) {
		t.Fatal("webhook request was not delivered")
	}

	captures := receiver.Captures()
	got := captures[0]
	if got.Method != http.MethodPost {
		t.Errorf("method = %s, want POST", got.Method)
	}
	if ct := got.Headers.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
	if auth := got.Headers.Get("X-Auth-Token"); auth != "secret" {
		t.Errorf("X-Auth-Token = %q, want secret", auth)
	}

	var payload WebhookPayload
	if err := json.Unmarshal(got.Body, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload.EventType != "engagement_alert" {
		t.Errorf("event_type = %q, want engagement_alert", payload.EventType)
	}
	if payload.Source != "scribestream" {
		t.Errorf("source = %q, want scribestream", payload.Source)
	}
	if payload.Alert.ContentID != "post-1" || payload.Alert.Rule != "view_spike" {
		t.Errorf("unexpected alert in payload: %+v", payload.Alert)
	}
}

func TestWebhookNotifierDisabledSkipsDelivery(t *testing.T) {
	receiver := testinfra.NewMockWebhookServer(t)

	n := NewWebhookNotifier(WebhookConfig{
		Enabled:    false,
		WebhookURL: receiver.URL(),
	})

	if err := n.Send(context.Background(), testAlert()); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if len(receiver.Captures()) != 0 {
		t.Error("disabled notifier delivered a webhook")
	}

	if n.Enabled() {
		t.Error("Enabled() = true for disabled notifier")
	}
	n.SetEnabled(true)
	if !n.Enabled() {
		t.Error("Enabled() = false after SetEnabled(true)")
	}
}

func TestWebhookNotifierServerErrorPropagates(t *testing.T) {
	receiver := testinfra.NewMockWebhookServer(t)
	receiver.ResponseStatus = http.StatusBadGateway

	n := NewWebhookNotifier(WebhookConfig{
		Enabled:    true,
		WebhookURL: receiver.URL(),
	})

	if err := n.Send(context.Background(), testAlert()); err == nil {
		t.Fatal("Send() returned nil for 502 response")
	}
}

func TestWebhookNotifierBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	receiver := testinfra.NewMockWebhookServer(t)
	receiver.ResponseStatus = http.StatusInternalServerError

	n := NewWebhookNotifier(WebhookConfig{
		Enabled:    true,
		WebhookURL: receiver.URL(),
		// High rate so limiter waits do not slow the loop.
		RatePerMinute: 6000,
	})

	for i := 0; i < 5; i++ {
		if err := n.Send(context.Background(), testAlert()); err == nil {
			t.Fatalf("Send() %d returned nil for failing endpoint", i)
		}
	}

	before := len(receiver.Captures())
	if err := n.Send(context.Background(), testAlert()); err == nil {
		t.Fatal("Send() returned nil with breaker open")
	}
	if after := len(receiver.Captures()); after != before {
		t.Errorf("breaker open but request still reached endpoint: %d -> %d captures", before, after)
	}
}
