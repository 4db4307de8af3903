// ScribeStream - Real-Time Content Engagement Analytics
// Copyright 2026 ScribeStream Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/scribestream/scribestream

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where a config file is searched, in
// order. The first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/scribestream/config.yaml",
	"/etc/scribestream/config.yml",
}

// ConfigPathEnvVar overrides the config file search path.
const ConfigPathEnvVar = "SCRIBE_CONFIG_PATH"

// envPrefix namespaces all environment overrides.
const envPrefix = "SCRIBE_"

// Default returns the built-in defaults. They are layered first, then
// overridden by the config file and environment variables.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        8460,
			Timeout:     30 * time.Second,
			Environment: "development",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Engine: EngineConfig{
			HistoryCap:       500,
			HistoryMaxAge:    24 * time.Hour,
			FreshnessWindow:  5 * time.Minute,
			TrendingLimit:    10,
			TrendingInterval: 30 * time.Second,
		},
		Alerting: AlertingConfig{
			Cooldown:         15 * time.Minute,
			MaxAlertsPerUser: 100,
			ViewSpike: ViewSpikeConfig{
				Enabled:       true,
				GrowthPercent: 50.0,
				Lookback:      10 * time.Minute,
			},
			EngagementSurge: EngagementSurgeConfig{
				Enabled:   true,
				MinEvents: 25,
				Lookback:  10 * time.Minute,
			},
			Webhook: WebhookConfig{
				Enabled:       false,
				URL:           "",
				RatePerMinute: 60,
			},
		},
		NATS: NATSConfig{
			Enabled:       false,
			URL:           "nats://127.0.0.1:4222",
			Subject:       "engagement.events",
			QueueGroup:    "scribestream",
			MaxReconnects: -1,
			ReconnectWait: 2 * time.Second,
			AckWait:       30 * time.Second,
		},
		Security: SecurityConfig{
			JWTSecret:           "",
			SessionTimeout:      24 * time.Hour,
			RateLimitDisabled:   false,
			IngestRatePerMinute: 300,
			ReadRatePerMinute:   1000,
			CORSOrigins:         []string{"*"},
			OwnedContent:        nil,
		},
		WebSocket: WebSocketConfig{
			Enabled:        true,
			AllowedOrigins: nil,
		},
	}
}

// Load builds the configuration from layered sources, highest last:
//
//	1. Built-in defaults
//	2. Optional YAML config file
//	3. SCRIBE_* environment variables
//
// The result is validated before it is returned.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first existing config file path, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths lists config paths whose env values arrive as
// comma-separated strings but unmarshal into slices.
var sliceConfigPaths = []string{
	"security.cors_origins",
	"websocket.allowed_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}
		// Already a slice from YAML.
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}
		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envTransformFunc maps SCRIBE_* environment variable names to config
// paths. Unknown variables are dropped so unrelated environment state
// cannot pollute the configuration.
//
// Examples:
//
//	SCRIBE_HTTP_PORT       -> server.port
//	SCRIBE_LOG_LEVEL       -> logging.level
//	SCRIBE_JWT_SECRET      -> security.jwt_secret
//	SCRIBE_NATS_ENABLED    -> nats.enabled
func envTransformFunc(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, envPrefix))

	envMappings := map[string]string{
		// Server
		"http_host":    "server.host",
		"http_port":    "server.port",
		"http_timeout": "server.timeout",
		"environment":  "server.environment",

		// Logging
		"log_level":  "logging.level",
		"log_format": "logging.format",
		"log_caller": "logging.caller",

		// Engine
		"history_cap":       "engine.history_cap",
		"history_max_age":   "engine.history_max_age",
		"freshness_window":  "engine.freshness_window",
		"trending_limit":    "engine.trending_limit",
		"trending_interval": "engine.trending_interval",

		// Alerting
		"alert_cooldown":          "alerting.cooldown",
		"alert_max_per_user":      "alerting.max_alerts_per_user",
		"view_spike_enabled":      "alerting.view_spike.enabled",
		"view_spike_growth":       "alerting.view_spike.growth_percent",
		"view_spike_lookback":     "alerting.view_spike.lookback",
		"surge_enabled":           "alerting.engagement_surge.enabled",
		"surge_min_events":        "alerting.engagement_surge.min_events",
		"surge_lookback":          "alerting.engagement_surge.lookback",
		"webhook_enabled":         "alerting.webhook.enabled",
		"webhook_url":             "alerting.webhook.url",
		"webhook_rate_per_minute": "alerting.webhook.rate_per_minute",

		// NATS
		"nats_enabled":        "nats.enabled",
		"nats_url":            "nats.url",
		"nats_subject":        "nats.subject",
		"nats_queue_group":    "nats.queue_group",
		"nats_max_reconnects": "nats.max_reconnects",
		"nats_reconnect_wait": "nats.reconnect_wait",
		"nats_ack_wait":       "nats.ack_wait",

		// Security
		"jwt_secret":             "security.jwt_secret",
		"session_timeout":        "security.session_timeout",
		"disable_rate_limit":     "security.rate_limit_disabled",
		"ingest_rate_per_minute": "security.ingest_rate_per_minute",
		"read_rate_per_minute":   "security.read_rate_per_minute",
		"cors_origins":           "security.cors_origins",

		// WebSocket
		"ws_enabled":         "websocket.enabled",
		"ws_allowed_origins": "websocket.allowed_origins",
	}

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}
	return ""
}
