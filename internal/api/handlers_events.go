// ScribeStream - Real-Time Content Engagement Analytics
// Copyright 2026 ScribeStream Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/scribestream/scribestream

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/scribestream/scribestream/internal/models"
	"github.com/scribestream/scribestream/internal/validation"
)

// RecordEvent handles POST /api/v1/events: one engagement event in, stored,
// evaluated for alerts, and broadcast to the live stream.
func (h *Handler) RecordEvent(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.RecordEventRequest
	if err := decodeJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, codeValidation, "request body is not valid JSON", err)
		return
	}

	metric, err := h.ingest.Record(r.Context(), req)
	if err != nil {
		var verr *validation.RequestValidationError
		if errors.As(err, &verr) {
			respondValidationError(w, verr)
			return
		}
		respondError(w, http.StatusInternalServerError, codeIngest, "failed to record event", err)
		return
	}

	respondData(w, http.StatusAccepted, metric, start)
}
