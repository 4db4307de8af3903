// ScribeStream - Real-Time Content Engagement Analytics
// Copyright 2026 ScribeStream Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/scribestream/scribestream

package api

import (
	"net/http"
	"time"
)

// SetReadyCheck installs the readiness probe callback, typically wired to
// the ingest pipeline during startup. A nil callback means always ready.
func (h *Handler) SetReadyCheck(fn func() bool) {
	h.ready = fn
}

// healthStatus is the payload for the full health endpoint.
type healthStatus struct {
	Status          string  `json:"status"`
	UptimeSeconds   float64 `json:"uptime_seconds"`
	TrackedContents int     `json:"tracked_contents"`
	ConnectedWS     int     `json:"connected_websockets"`
}

// Health reports overall service health with basic engine statistics.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	wsClients := 0
	if h.wsHub != nil {
		wsClients = h.wsHub.ClientCount()
	}

	respondData(w, http.StatusOK, healthStatus{
		Status:          "healthy",
		UptimeSeconds:   time.Since(h.startTime).Seconds(),
		TrackedContents: len(h.store.Snapshot()),
		ConnectedWS:     wsClients,
	}, start)
}

// HealthLive is the liveness probe: the process is up and serving.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondData(w, http.StatusOK, map[string]string{"status": "alive"}, time.Now())
}

// HealthReady is the readiness probe. It fails while the ingest pipeline
// is not yet consuming.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	if h.ready != nil && !h.ready() {
		respondError(w, http.StatusServiceUnavailable, "NOT_READY", "ingest pipeline is not running", nil)
		return
	}
	respondData(w, http.StatusOK, map[string]string{"status": "ready"}, time.Now())
}
