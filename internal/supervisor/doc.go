// ScribeStream - Real-Time Content Engagement Analytics
// Copyright 2026 ScribeStream Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/scribestream/scribestream

// Package supervisor builds the suture/v4 supervision tree. Supervision
// events are logged through sutureslog, bridged to the service's zerolog
// logger by the logging package's slog adapter.
package supervisor
