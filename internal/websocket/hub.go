// ScribeStream - Real-Time Content Engagement Analytics
// Copyright 2026 ScribeStream Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/scribestream/scribestream

package websocket

import (
	"context"
	"sort"
	"sync"

	"github.com/goccy/go-json"

	"github.com/scribestream/scribestream/internal/alerting"
	"github.com/scribestream/scribestream/internal/logging"
	"github.com/scribestream/scribestream/internal/metrics"
)

// Message types sent to connected clients.
const (
	MessageTypeMetricUpdate   = "metric_update"
	MessageTypeAlert          = "alert"
	MessageTypeTrendingUpdate = "trending_update"
	MessageTypePing           = "ping"
	MessageTypePong           = "pong"
)

// Message is the envelope for everything sent over the live stream.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Hub maintains the set of active clients and fans broadcast messages out
// to them. It is designed to run as a supervised service via RunWithContext.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan Message
	Register   chan *Client
	Unregister chan *Client
	mu         sync.RWMutex
	done       chan struct{}
}

// NewHub creates a hub with a buffered broadcast channel. Broadcasts are
// dropped, not blocked on, when the channel is full.
func NewHub() *Hub {
	return &Hub{
		broadcast:  make(chan Message, 256),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		done:       make(chan struct{}),
	}
}

// Done returns a channel that closes when the hub's run loop has stopped.
// Client goroutines select on it so lifecycle sends never block against a
// stopped hub.
func (h *Hub) Done() <-chan struct{} {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.done
}

// RunWithContext runs the hub until the context is canceled, then closes
// all clients and returns ctx.Err() so a supervisor can restart it cleanly.
//
// Selection is priority ordered (shutdown, then lifecycle, then broadcast)
// so that client state is consistent before messages are delivered; Go's
// select picks randomly between ready channels otherwise.
func (h *Hub) RunWithContext(ctx context.Context) error {
	// A supervisor may restart the hub after a failure; each run gets a
	// fresh done channel.
	h.mu.Lock()
	select {
	case <-h.done:
		h.done = make(chan struct{})
	default:
	}
	h.mu.Unlock()

	for {
		select {
		case <-ctx.Done():
			h.shutdown(ctx)
			return ctx.Err()
		default:
		}

		select {
		case client := <-h.Register:
			h.addClient(client)
			continue
		case client := <-h.Unregister:
			h.removeClient(client)
			continue
		default:
		}

		select {
		case <-ctx.Done():
			h.shutdown(ctx)
			return ctx.Err()
		case client := <-h.Register:
			h.addClient(client)
		case client := <-h.Unregister:
			h.removeClient(client)
		case message := <-h.broadcast:
			h.broadcastToClients(message)
		}
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	total := len(h.clients)
	h.mu.Unlock()

	metrics.WSActiveConnections.Inc()
	logging.Info().Str("user_id", client.userID).Int("total_clients", total).Msg("WebSocket client connected")
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
		metrics.WSActiveConnections.Dec()
	}
	total := len(h.clients)
	h.mu.Unlock()

	logging.Info().Str("user_id", client.userID).Int("total_clients", total).Msg("WebSocket client disconnected")
}

// broadcastToClients delivers a message to every connected client in id
// order. Sorted iteration keeps delivery order reproducible across runs,
// which matters for tests and for debugging interleaved streams.
func (h *Hub) broadcastToClients(message Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	sort.Slice(clients, func(i, j int) bool {
		return clients[i].id < clients[j].id
	})

	var toRemove []*Client
	for _, client := range clients {
		select {
		case client.send <- message:
			metrics.WSMessagesSent.WithLabelValues(message.Type).Inc()
		default:
			// Slow consumer: its buffer is full, disconnect it.
			toRemove = append(toRemove, client)
		}
	}

	for _, client := range toRemove {
		close(client.send)
		delete(h.clients, client)
		metrics.WSActiveConnections.Dec()
		metrics.WSMessagesDropped.Inc()
		logging.Warn().Str("user_id", client.userID).Msg("Dropping slow WebSocket client")
	}
}

func (h *Hub) shutdown(ctx context.Context) {
	h.mu.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	sort.Slice(clients, func(i, j int) bool {
		return clients[i].id < clients[j].id
	})
	for _, client := range clients {
		close(client.send)
		delete(h.clients, client)
		metrics.WSActiveConnections.Dec()
	}
	close(h.done)
	h.mu.Unlock()

	reason := "context_canceled"
	if ctx.Err() == context.DeadlineExceeded {
		reason = "context_deadline"
	}
	logging.Info().
		Str("component", "websocket-hub").
		Str("reason", reason).
		Int("clients_closed", len(clients)).
		Msg("WebSocket hub stopped")
}

// Broadcast queues a typed message for delivery to all clients. It never
// blocks: when the broadcast buffer is full the message is dropped with a
// warning. Satisfies the ingest broadcaster contract.
func (h *Hub) Broadcast(eventType string, payload interface{}) {
	message := Message{Type: eventType, Data: payload}
	select {
	case h.broadcast <- message:
	default:
		metrics.WSMessagesDropped.Inc()
		logging.Warn().Str("message_type", eventType).Msg("Broadcast channel full, dropping message")
	}
}

// Name implements alerting.Notifier.
func (h *Hub) Name() string { return "websocket" }

// Send implements alerting.Notifier by pushing the alert onto the live
// stream, so subscribed browsers see it without polling.
func (h *Hub) Send(_ context.Context, alert alerting.Alert) error {
	h.Broadcast(MessageTypeAlert, alert)
	return nil
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// MarshalMessage converts a message to JSON.
func MarshalMessage(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}
