// ScribeStream - Real-Time Content Engagement Analytics
// Copyright 2026 ScribeStream Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/scribestream/scribestream

// Package config loads the service configuration with koanf, layering
// built-in defaults, an optional YAML file, and SCRIBE_* environment
// variables. Environment overrides are mapped through an explicit table,
// so only known variables can affect the configuration.
//
// Ownership mappings (security.owned_content) are YAML-only: maps do not
// translate to flat environment variables.
package config
