// ScribeStream - Real-Time Content Engagement Analytics
// Copyright 2026 ScribeStream Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/scribestream/scribestream

// Package testinfra provides shared test infrastructure, currently a mock
// webhook receiver for exercising outbound alert deliveries.
package testinfra
