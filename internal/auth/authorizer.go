// ScribeStream - Real-Time Content Engagement Analytics
// Copyright 2026 ScribeStream Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/scribestream/scribestream

package auth

import (
	"context"
	"sort"
)

// Authorizer answers content-ownership questions for a user. Trending,
// overview, and subscription requests are scoped through it. Implementations
// backed by an external catalog can be plugged in; a static config-backed
// one ships for standalone deployments.
type Authorizer interface {
	// Owns reports whether the user may subscribe to and query the content.
	Owns(ctx context.Context, userID, contentID string) (bool, error)

	// OwnedContent lists the user's content ids. restricted is false when
	// ownership is open and the caller may see all content; the id list is
	// meaningless in that case.
	OwnedContent(ctx context.Context, userID string) (ids []string, restricted bool, err error)
}

// StaticAuthorizer resolves ownership from a fixed user-to-content map.
// A user absent from the map owns nothing. When the map is empty the
// authorizer is open: every user owns everything, which is the standalone
// single-author mode.
type StaticAuthorizer struct {
	owned map[string]map[string]struct{}
}

// NewStaticAuthorizer builds an authorizer from a user-to-content-ids map.
func NewStaticAuthorizer(owned map[string][]string) *StaticAuthorizer {
	m := make(map[string]map[string]struct{}, len(owned))
	for user, ids := range owned {
		set := make(map[string]struct{}, len(ids))
		for _, id := range ids {
			set[id] = struct{}{}
		}
		m[user] = set
	}
	return &StaticAuthorizer{owned: m}
}

// Owns implements Authorizer.
func (a *StaticAuthorizer) Owns(_ context.Context, userID, contentID string) (bool, error) {
	if len(a.owned) == 0 {
		return true, nil
	}
	_, ok := a.owned[userID][contentID]
	return ok, nil
}

// OwnedContent implements Authorizer.
func (a *StaticAuthorizer) OwnedContent(_ context.Context, userID string) ([]string, bool, error) {
	if len(a.owned) == 0 {
		return nil, false, nil
	}

	set := a.owned[userID]
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, true, nil
}
