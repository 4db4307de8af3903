// ScribeStream - Real-Time Content Engagement Analytics
// Copyright 2026 ScribeStream Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/scribestream/scribestream

// Package subscription tracks which users are watching which content for
// alerting purposes. Watch sets live in memory only; interest is a
// live-session concern and is re-declared on reconnect.
package subscription

import (
	"errors"
	"sort"
	"sync"
)

// MaxWatchSet is the largest number of content items one user may watch.
const MaxWatchSet = 10

// ErrWatchSetFull is returned when a subscribe request would push a user's
// watch set past MaxWatchSet. The request is rejected whole; no partial
// subscription is applied.
var ErrWatchSetFull = errors.New("watch set is full")

// Registry is an in-memory map of user watch sets with a reverse index from
// content to watchers. Safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	byUser    map[string]map[string]struct{}
	byContent map[string]map[string]struct{}
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		byUser:    make(map[string]map[string]struct{}),
		byContent: make(map[string]map[string]struct{}),
	}
}

// Subscribe adds the given content ids to the user's watch set. Already
// watched ids are ignored, so the call is idempotent. If the resulting set
// would exceed MaxWatchSet the whole request fails with ErrWatchSetFull and
// nothing is applied.
func (r *Registry) Subscribe(userID string, contentIDs ...string) error {
	if len(contentIDs) == 0 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	watched := r.byUser[userID]

	added := 0
	for _, id := range contentIDs {
		if _, ok := watched[id]; !ok {
			added++
		}
	}
	if len(watched)+added > MaxWatchSet {
		return ErrWatchSetFull
	}

	if watched == nil {
		watched = make(map[string]struct{}, len(contentIDs))
		r.byUser[userID] = watched
	}
	for _, id := range contentIDs {
		if _, ok := watched[id]; ok {
			continue
		}
		watched[id] = struct{}{}

		watchers := r.byContent[id]
		if watchers == nil {
			watchers = make(map[string]struct{})
			r.byContent[id] = watchers
		}
		watchers[userID] = struct{}{}
	}
	return nil
}

// Unsubscribe removes the given content ids from the user's watch set.
// With no ids, the entire watch set is cleared. Removing an unwatched id is
// a no-op.
func (r *Registry) Unsubscribe(userID string, contentIDs ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	watched, ok := r.byUser[userID]
	if !ok {
		return
	}

	if len(contentIDs) == 0 {
		contentIDs = make([]string, 0, len(watched))
		for id := range watched {
			contentIDs = append(contentIDs, id)
		}
	}

	for _, id := range contentIDs {
		if _, ok := watched[id]; !ok {
			continue
		}
		delete(watched, id)

		if watchers := r.byContent[id]; watchers != nil {
			delete(watchers, userID)
			if len(watchers) == 0 {
				delete(r.byContent, id)
			}
		}
	}

	if len(watched) == 0 {
		delete(r.byUser, userID)
	}
}

// IsSubscribed reports whether the user currently watches the content.
func (r *Registry) IsSubscribed(userID, contentID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.byUser[userID][contentID]
	return ok
}

// Subscribers returns the users watching the given content, sorted for a
// deterministic evaluation order.
func (r *Registry) Subscribers(contentID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	watchers := r.byContent[contentID]
	out := make([]string, 0, len(watchers))
	for u := range watchers {
		out = append(out, u)
	}
	sort.Strings(out)
	return out
}

// Watched returns the content ids in the user's watch set, sorted.
func (r *Registry) Watched(userID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	watched := r.byUser[userID]
	out := make([]string, 0, len(watched))
	for id := range watched {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
