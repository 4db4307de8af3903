// ScribeStream - Real-Time Content Engagement Analytics
// Copyright 2026 ScribeStream Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/scribestream/scribestream

package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/scribestream/scribestream/internal/alerting"
	"github.com/scribestream/scribestream/internal/analytics"
	"github.com/scribestream/scribestream/internal/auth"
	"github.com/scribestream/scribestream/internal/config"
	"github.com/scribestream/scribestream/internal/ingest"
	"github.com/scribestream/scribestream/internal/logging"
	"github.com/scribestream/scribestream/internal/subscription"
	ws "github.com/scribestream/scribestream/internal/websocket"
)

// Handler carries the dependencies for all API endpoints.
//
// Handler methods are split across files:
//   - handlers.go: struct, constructor, websocket origin checks (this file)
//   - handlers_helpers.go: shared response and parameter helpers
//   - handlers_health.go: health and readiness endpoints
//   - handlers_events.go: event ingestion
//   - handlers_analytics.go: live, recent-metrics, engagement, trending, overview
//   - handlers_subscriptions.go: watch-set management
//   - handlers_alerts.go: alert listing and acknowledgment
//   - handlers_websocket.go: live stream upgrade
type Handler struct {
	store      *analytics.Store
	registry   *subscription.Registry
	evaluator  *alerting.Evaluator
	ingest     *ingest.Service
	authorizer auth.Authorizer
	wsHub      *ws.Hub
	config     *config.Config
	startTime  time.Time
	ready      func() bool
}

// NewHandler creates the API handler. The websocket hub may be nil when the
// live stream is disabled.
func NewHandler(store *analytics.Store, registry *subscription.Registry, evaluator *alerting.Evaluator, svc *ingest.Service, authorizer auth.Authorizer, wsHub *ws.Hub, cfg *config.Config) *Handler {
	return &Handler{
		store:      store,
		registry:   registry,
		evaluator:  evaluator,
		ingest:     svc,
		authorizer: authorizer,
		wsHub:      wsHub,
		config:     cfg,
		startTime:  time.Now(),
	}
}

// getUpgrader builds a WebSocket upgrader with origin checking and a
// handshake timeout against slow-client attacks.
func (h *Handler) getUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		CheckOrigin:      h.checkWebSocketOrigin,
		HandshakeTimeout: 10 * time.Second,
	}
}

// checkWebSocketOrigin validates connection origins. Browser WebSockets
// always carry an Origin header; requests without one come from non-browser
// clients and are allowed only in open (wildcard) configurations.
func (h *Handler) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")

	allowed := h.config.WebSocket.AllowedOrigins
	if len(allowed) == 0 {
		allowed = h.config.Security.CORSOrigins
	}

	if origin == "" {
		for _, a := range allowed {
			if a == "*" {
				return true
			}
		}
		logging.Warn().Msg("WebSocket connection rejected: missing Origin header")
		return false
	}

	for _, a := range allowed {
		if a == "*" || a == origin {
			return true
		}
	}

	logging.Warn().Str("origin", sanitizeLogValue(origin)).Msg("WebSocket connection rejected from unauthorized origin")
	return false
}
