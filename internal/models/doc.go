// ScribeStream - Real-Time Content Engagement Analytics
// Copyright 2026 ScribeStream Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/scribestream/scribestream

// Package models defines the shared HTTP request and response types used by
// the API layer: the standard response envelope, structured error payloads,
// and validated request bodies for ingestion and subscription management.
package models
