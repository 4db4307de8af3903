// ScribeStream - Real-Time Content Engagement Analytics
// Copyright 2026 ScribeStream Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/scribestream/scribestream

// Package analytics implements the in-memory metric store at the heart of
// ScribeStream: per-content rolling counters, a bounded event history, and
// the trending ranker.
//
// State is sharded by content id so ingestion for unrelated content proceeds
// in parallel. Histories are bounded by both entry count and age, with the
// oldest entries evicted first. All exported methods are safe for concurrent
// use; reads stay fast while ingestion continues.
package analytics
