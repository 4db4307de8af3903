// ScribeStream - Real-Time Content Engagement Analytics
// Copyright 2026 ScribeStream Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/scribestream/scribestream

package api

import (
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/scribestream/scribestream/internal/analytics"
	"github.com/scribestream/scribestream/internal/auth"
)

// maxRecentMetrics caps the recent-metrics response to the latest entries.
const maxRecentMetrics = 50

// ContentLive handles GET /api/v1/contents/{id}/live. Unknown content
// returns an empty snapshot, not an error: absence of data is a valid
// answer for a read.
func (h *Handler) ContentLive(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	contentID := chi.URLParam(r, "id")

	live, ok := h.store.GetLiveAnalytics(contentID)
	if !ok {
		live = analytics.LiveAnalytics{ContentID: contentID}
	}
	respondData(w, http.StatusOK, live, start)
}

// ContentMetrics handles GET /api/v1/contents/{id}/metrics?window_seconds=.
// The response carries the latest entries inside the window, capped at 50.
func (h *Handler) ContentMetrics(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	contentID := chi.URLParam(r, "id")

	window := h.store.FreshnessWindow()
	if secs := getIntParam(r, "window_seconds", 0); secs > 0 {
		window = time.Duration(secs) * time.Second
	}

	entries := h.store.GetRecentMetrics(contentID, window)
	if len(entries) > maxRecentMetrics {
		entries = entries[len(entries)-maxRecentMetrics:]
	}

	respondData(w, http.StatusOK, struct {
		ContentID string             `json:"content_id"`
		Metrics   []analytics.Metric `json:"metrics"`
		Count     int                `json:"count"`
	}{contentID, entries, len(entries)}, start)
}

// ContentEngagement handles GET /api/v1/contents/{id}/engagement
// ?lookback_minutes=. Without a lookback the freshness window applies.
func (h *Handler) ContentEngagement(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	contentID := chi.URLParam(r, "id")

	var lookback time.Duration
	if mins := getIntParam(r, "lookback_minutes", 0); mins > 0 {
		lookback = time.Duration(mins) * time.Minute
	}

	respondData(w, http.StatusOK, h.store.GetRealTimeEngagement(contentID, lookback), start)
}

// Trending handles GET /api/v1/trending?limit=. The ranking is scoped to
// the caller's owned content when ownership is restricted.
func (h *Handler) Trending(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	limit := getIntParam(r, "limit", 0)

	userID := auth.UserFromContext(r.Context())
	owned, restricted, err := h.authorizer.OwnedContent(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, codeInternal, "failed to resolve owned content", err)
		return
	}

	var entries []analytics.TrendEntry
	if restricted {
		allowed := make(map[string]struct{}, len(owned))
		for _, id := range owned {
			allowed[id] = struct{}{}
		}
		entries = h.store.TrendingContentAmong(allowed, limit)
	} else {
		entries = h.store.TrendingContent(limit)
	}

	respondData(w, http.StatusOK, struct {
		Trending []analytics.TrendEntry `json:"trending"`
		Count    int                    `json:"count"`
	}{entries, len(entries)}, start)
}

// Overview handles GET /api/v1/overview: a digest of the caller's owned
// content that is currently live, busiest first.
func (h *Handler) Overview(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	userID := auth.UserFromContext(r.Context())
	owned, restricted, err := h.authorizer.OwnedContent(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, codeInternal, "failed to resolve owned content", err)
		return
	}

	var active []analytics.LiveAnalytics
	if restricted {
		for _, id := range owned {
			if live, ok := h.store.GetLiveAnalytics(id); ok && live.IsLive {
				active = append(active, live)
			}
		}
	} else {
		for _, live := range h.store.Snapshot() {
			if live.IsLive {
				active = append(active, live)
			}
		}
	}

	sort.Slice(active, func(i, j int) bool {
		ti, tj := active[i].Total(), active[j].Total()
		if ti != tj {
			return ti > tj
		}
		return active[i].ContentID < active[j].ContentID
	})

	respondData(w, http.StatusOK, struct {
		Contents []analytics.LiveAnalytics `json:"contents"`
		Count    int                       `json:"count"`
	}{active, len(active)}, start)
}
