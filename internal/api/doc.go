// ScribeStream - Real-Time Content Engagement Analytics
// Copyright 2026 ScribeStream Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/scribestream/scribestream

// Package api provides the HTTP surface: chi routing, tiered rate limits,
// CORS, bearer-token identity, and envelope JSON responses.
//
// Every response uses the models.APIResponse envelope. Reads for unknown
// content return empty data rather than errors; only malformed requests
// and ownership violations produce error envelopes.
package api
