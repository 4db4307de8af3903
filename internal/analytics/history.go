// ScribeStream - Real-Time Content Engagement Analytics
// Copyright 2026 ScribeStream Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/scribestream/scribestream

package analytics

import "time"

// history is a bounded ring buffer of metrics for one content item.
// Entries are kept in arrival order. The buffer is bounded both by entry
// count and by entry age; the oldest entries are evicted first. Callers
// must hold the owning shard's lock.
type history struct {
	entries []Metric
	head    int // index of the oldest entry
	size    int
	evicted bool // at least one entry was ever dropped
}

func newHistory(capacity int) *history {
	return &history{entries: make([]Metric, capacity)}
}

// push appends m, evicting the oldest entry when the buffer is full.
// Returns the number of entries evicted (0 or 1).
func (h *history) push(m Metric) int {
	if h.size == len(h.entries) {
		h.entries[h.head] = m
		h.head = (h.head + 1) % len(h.entries)
		h.evicted = true
		return 1
	}

	h.entries[(h.head+h.size)%len(h.entries)] = m
	h.size++
	return 0
}

// expire drops entries recorded before cutoff and returns how many were
// dropped. Arrival order makes a prefix scan sufficient even when producer
// timestamps are slightly out of order within the retention period.
func (h *history) expire(cutoff time.Time) int {
	dropped := 0
	for h.size > 0 && h.entries[h.head].Timestamp.Before(cutoff) {
		h.entries[h.head] = Metric{}
		h.head = (h.head + 1) % len(h.entries)
		h.size--
		dropped++
	}
	if dropped > 0 {
		h.evicted = true
	}
	return dropped
}

// at returns the i-th entry in arrival order, 0 being the oldest.
func (h *history) at(i int) Metric {
	return h.entries[(h.head+i)%len(h.entries)]
}

// len returns the number of retained entries.
func (h *history) len() int {
	return h.size
}

// oldest returns the oldest retained entry. Only valid when len() > 0.
func (h *history) oldest() Metric {
	return h.entries[h.head]
}

// since collects entries with Timestamp at or after the cutoff, oldest first.
func (h *history) since(cutoff time.Time) []Metric {
	out := make([]Metric, 0, h.size)
	for i := 0; i < h.size; i++ {
		m := h.at(i)
		if !m.Timestamp.Before(cutoff) {
			out = append(out, m)
		}
	}
	return out
}
