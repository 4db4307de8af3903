// ScribeStream - Real-Time Content Engagement Analytics
// Copyright 2026 ScribeStream Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/scribestream/scribestream

package api

import (
	"net/http"

	"github.com/scribestream/scribestream/internal/auth"
	"github.com/scribestream/scribestream/internal/logging"
	ws "github.com/scribestream/scribestream/internal/websocket"
)

// WebSocket handles GET /api/v1/ws: upgrades the connection and attaches
// the client to the hub for the live stream.
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	if h.wsHub == nil {
		respondError(w, http.StatusNotFound, codeNotFound, "live stream is disabled", nil)
		return
	}

	upgrader := h.getUpgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		logging.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	client := ws.NewClient(h.wsHub, conn, auth.UserFromContext(r.Context()))
	select {
	case h.wsHub.Register <- client:
	case <-h.wsHub.Done():
		// Hub is shutting down, drop the fresh connection.
		_ = conn.Close()
		return
	}
	client.Start()
}
