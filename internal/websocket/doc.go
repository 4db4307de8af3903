// ScribeStream - Real-Time Content Engagement Analytics
// Copyright 2026 ScribeStream Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/scribestream/scribestream

// Package websocket implements the live engagement stream.
//
// A single Hub fans metric updates, fired alerts, and trending refreshes
// out to connected browser clients. The hub runs as a supervised service:
// RunWithContext drains and closes every client on shutdown so the
// supervisor can restart it without orphaned connections.
//
// Messages are typed envelopes (metric_update, alert, trending_update) and
// delivery is best effort: slow consumers are disconnected rather than
// allowed to stall the broadcast loop.
package websocket
