// ScribeStream - Real-Time Content Engagement Analytics
// Copyright 2026 ScribeStream Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/scribestream/scribestream

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/scribestream/scribestream/internal/alerting"
	"github.com/scribestream/scribestream/internal/auth"
	"github.com/scribestream/scribestream/internal/models"
)

// Alerts handles GET /api/v1/alerts?unacknowledged=. Alerts are returned
// newest first, together with the unacknowledged count.
func (h *Handler) Alerts(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	userID := auth.UserFromContext(r.Context())
	unackedOnly := getBoolParam(r, "unacknowledged", false)

	alerts := h.evaluator.Alerts(userID, unackedOnly)
	if alerts == nil {
		alerts = []alerting.Alert{}
	}

	respondData(w, http.StatusOK, struct {
		Alerts         []alerting.Alert `json:"alerts"`
		Count          int              `json:"count"`
		Unacknowledged int              `json:"unacknowledged"`
	}{alerts, len(alerts), h.evaluator.UnacknowledgedCount(userID)}, start)
}

// AcknowledgeAlert handles POST /api/v1/alerts/{id}/ack. Only the alert's
// owner can acknowledge it; acknowledging twice is a no-op success.
func (h *Handler) AcknowledgeAlert(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	userID := auth.UserFromContext(r.Context())
	alertID := chi.URLParam(r, "id")

	if !h.evaluator.Acknowledge(userID, alertID) {
		respondError(w, http.StatusNotFound, codeNotFound, "alert not found", nil)
		return
	}

	respondData(w, http.StatusOK, models.AckResponse{
		AlertID:      alertID,
		Acknowledged: true,
	}, start)
}
