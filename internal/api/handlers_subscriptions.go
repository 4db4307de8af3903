// ScribeStream - Real-Time Content Engagement Analytics
// Copyright 2026 ScribeStream Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/scribestream/scribestream

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/scribestream/scribestream/internal/auth"
	"github.com/scribestream/scribestream/internal/models"
	"github.com/scribestream/scribestream/internal/subscription"
	"github.com/scribestream/scribestream/internal/validation"
)

// UpdateSubscriptions handles POST /api/v1/subscriptions. The body names
// content ids and an action (subscribe or unsubscribe). Ids the caller does
// not own are rejected; the owned subset is applied. When nothing in the
// batch is owned the request is a 404.
func (h *Handler) UpdateSubscriptions(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.SubscriptionRequest
	if err := decodeJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, codeValidation, "request body is not valid JSON", err)
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		respondValidationError(w, verr)
		return
	}

	userID := auth.UserFromContext(r.Context())

	accepted, rejected, err := h.filterOwned(r, userID, req.ContentIDs)
	if err != nil {
		respondError(w, http.StatusInternalServerError, codeInternal, "failed to resolve owned content", err)
		return
	}
	if len(accepted) == 0 {
		respondError(w, http.StatusNotFound, codeNotFound, "none of the requested content ids are owned by the caller", nil)
		return
	}

	switch req.Action {
	case "subscribe":
		if err := h.registry.Subscribe(userID, accepted...); err != nil {
			if errors.Is(err, subscription.ErrWatchSetFull) {
				respondError(w, http.StatusConflict, codeValidation, "watch set limit exceeded", nil)
				return
			}
			respondError(w, http.StatusInternalServerError, codeInternal, "failed to update subscriptions", err)
			return
		}
	case "unsubscribe":
		h.registry.Unsubscribe(userID, accepted...)
	}

	respondData(w, http.StatusOK, models.SubscriptionResponse{
		Subscribed: h.registry.Watched(userID),
		Rejected:   rejected,
	}, start)
}

// ClearSubscriptions handles DELETE /api/v1/subscriptions: the caller's
// entire watch set is removed.
func (h *Handler) ClearSubscriptions(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	userID := auth.UserFromContext(r.Context())
	h.registry.Unsubscribe(userID)

	respondData(w, http.StatusOK, models.SubscriptionResponse{
		Subscribed: []string{},
		Rejected:   []string{},
	}, start)
}

// filterOwned splits content ids into the subset the user owns and the
// rejected remainder. Open mode accepts everything.
func (h *Handler) filterOwned(r *http.Request, userID string, ids []string) (accepted, rejected []string, err error) {
	owned, restricted, err := h.authorizer.OwnedContent(r.Context(), userID)
	if err != nil {
		return nil, nil, err
	}
	if !restricted {
		return ids, []string{}, nil
	}

	ownedSet := make(map[string]struct{}, len(owned))
	for _, id := range owned {
		ownedSet[id] = struct{}{}
	}

	accepted = make([]string, 0, len(ids))
	rejected = make([]string, 0)
	for _, id := range ids {
		if _, ok := ownedSet[id]; ok {
			accepted = append(accepted, id)
		} else {
			rejected = append(rejected, id)
		}
	}
	return accepted, rejected, nil
}
