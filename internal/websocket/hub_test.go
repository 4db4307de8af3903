// ScribeStream - Real-Time Content Engagement Analytics
// Copyright 2026 ScribeStream Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/scribestream/scribestream

package websocket

import (
	"context"
	"testing"
	"time"

	"github.com/scribestream/scribestream/internal/alerting"
	"github.com/scribestream/scribestream/internal/ingest"
)

// Compile-time checks that the hub satisfies its collaborator contracts.
var (
	_ ingest.Broadcaster = (*Hub)(nil)
	_ alerting.Notifier  = (*Hub)(nil)
)

func runHub(t *testing.T) (*Hub, context.CancelFunc) {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- hub.RunWithContext(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Error("hub did not stop")
		}
	})
	return hub, cancel
}

func waitForClientCount(t *testing.T, hub *Hub, want int) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for hub.ClientCount() != want {
		select {
		case <-deadline:
			t.Fatalf("client count = %d, want %d", hub.ClientCount(), want)
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestHubRegisterAndBroadcast(t *testing.T) {
	hub, _ := runHub(t)

	a := NewClient(hub, nil, "alice")
	b := NewClient(hub, nil, "bob")
	hub.Register <- a
	hub.Register <- b
	waitForClientCount(t, hub, 2)

	hub.Broadcast(MessageTypeMetricUpdate, map[string]int{"views": 1})

	for _, c := range []*Client{a, b} {
		select {
		case msg := <-c.send:
			if msg.Type != MessageTypeMetricUpdate {
				t.Errorf("message type = %q, want %q", msg.Type, MessageTypeMetricUpdate)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("client %s received no message", c.UserID())
		}
	}
}

func TestHubUnregisterClosesSendChannel(t *testing.T) {
	hub, _ := runHub(t)

	c := NewClient(hub, nil, "alice")
	hub.Register <- c
	waitForClientCount(t, hub, 1)

	hub.Unregister <- c
	waitForClientCount(t, hub, 0)

	select {
	case _, ok := <-c.send:
		if ok {
			t.Error("expected closed send channel")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("send channel not closed")
	}
}

func TestHubShutdownClosesAllClients(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- hub.RunWithContext(ctx) }()

	c := NewClient(hub, nil, "alice")
	hub.Register <- c
	waitForClientCount(t, hub, 1)

	cancel()
	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("RunWithContext err = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("hub did not stop")
	}

	if _, ok := <-c.send; ok {
		t.Error("client send channel still open after shutdown")
	}
	if hub.ClientCount() != 0 {
		t.Errorf("client count = %d after shutdown", hub.ClientCount())
	}
}

func TestLifecycleSendsDoNotBlockAfterShutdown(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- hub.RunWithContext(ctx) }()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("hub did not stop")
	}

	select {
	case <-hub.Done():
	default:
		t.Fatal("Done() not closed after shutdown")
	}

	// The client teardown path races connection drops against hub shutdown;
	// with the run loop gone the send must fall through to Done.
	c := NewClient(hub, nil, "alice")
	finished := make(chan struct{})
	go func() {
		select {
		case hub.Unregister <- c:
		case <-hub.Done():
		}
		close(finished)
	}()
	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("unregister blocked against a stopped hub")
	}
}

func TestHubRestartResetsDone(t *testing.T) {
	hub := NewHub()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- hub.RunWithContext(ctx) }()
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("hub did not stop")
	}

	// Second run, as a supervisor restart would do.
	ctx, cancel = context.WithCancel(context.Background())
	go func() { done <- hub.RunWithContext(ctx) }()
	defer func() {
		cancel()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Error("restarted hub did not stop")
		}
	}()

	c := NewClient(hub, nil, "alice")
	hub.Register <- c
	waitForClientCount(t, hub, 1)

	select {
	case <-hub.Done():
		t.Error("Done() closed while the restarted hub is running")
	default:
	}
}

func TestBroadcastToClientsDropsSlowConsumer(t *testing.T) {
	hub := NewHub()
	fast := NewClient(hub, nil, "fast")
	slow := NewClient(hub, nil, "slow")
	// Leave the slow client no buffer headroom.
	slow.send = make(chan Message)
	hub.clients[fast] = true
	hub.clients[slow] = true

	hub.broadcastToClients(Message{Type: MessageTypeTrendingUpdate})

	if hub.ClientCount() != 1 {
		t.Fatalf("client count = %d, want 1 after slow consumer dropped", hub.ClientCount())
	}
	select {
	case msg := <-fast.send:
		if msg.Type != MessageTypeTrendingUpdate {
			t.Errorf("message type = %q", msg.Type)
		}
	default:
		t.Error("fast client received nothing")
	}
	if _, ok := <-slow.send; ok {
		t.Error("slow client send channel not closed")
	}
}

func TestBroadcastNonBlockingWhenChannelFull(t *testing.T) {
	hub := NewHub()
	for i := 0; i < cap(hub.broadcast); i++ {
		hub.broadcast <- Message{Type: MessageTypeMetricUpdate}
	}

	done := make(chan struct{})
	go func() {
		hub.Broadcast(MessageTypeMetricUpdate, nil)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Broadcast blocked on full channel")
	}
}

func TestHubSendDeliversAlert(t *testing.T) {
	hub, _ := runHub(t)

	c := NewClient(hub, nil, "alice")
	hub.Register <- c
	waitForClientCount(t, hub, 1)

	alert := alerting.Alert{ID: "a-1", UserID: "alice", ContentID: "post-1", Rule: "view_spike"}
	if err := hub.Send(context.Background(), alert); err != nil {
		t.Fatalf("Send: %v", err)
	}

	select {
	case msg := <-c.send:
		if msg.Type != MessageTypeAlert {
			t.Errorf("message type = %q, want %q", msg.Type, MessageTypeAlert)
		}
		got, ok := msg.Data.(alerting.Alert)
		if !ok {
			t.Fatalf("data type = %T, want alerting.Alert", msg.Data)
		}
		if got.ID != "a-1" {
			t.Errorf("alert id = %q", got.ID)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no alert message received")
	}
}

func TestMarshalMessage(t *testing.T) {
	data, err := MarshalMessage(Message{Type: MessageTypePong})
	if err != nil {
		t.Fatalf("MarshalMessage: %v", err)
	}
	if string(data) != `{"type":"pong","data":null}` {
		t.Errorf("payload = %s", data)
	}
}
