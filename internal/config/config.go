// ScribeStream - Real-Time Content Engagement Analytics
// Copyright 2026 ScribeStream Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/scribestream/scribestream

package config

import (
	"fmt"
	"time"
)

// Config is the root configuration for the service.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Logging   LoggingConfig   `koanf:"logging"`
	Engine    EngineConfig    `koanf:"engine"`
	Alerting  AlertingConfig  `koanf:"alerting"`
	NATS      NATSConfig      `koanf:"nats"`
	Security  SecurityConfig  `koanf:"security"`
	WebSocket WebSocketConfig `koanf:"websocket"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Host        string        `koanf:"host"`
	Port        int           `koanf:"port"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"`
}

// Addr returns the host:port listen address.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// EngineConfig tunes the in-memory metric store and trending computation.
type EngineConfig struct {
	HistoryCap       int           `koanf:"history_cap"`
	HistoryMaxAge    time.Duration `koanf:"history_max_age"`
	FreshnessWindow  time.Duration `koanf:"freshness_window"`
	TrendingLimit    int           `koanf:"trending_limit"`
	TrendingInterval time.Duration `koanf:"trending_interval"`
}

// AlertingConfig tunes the alert evaluator and its rules.
type AlertingConfig struct {
	Cooldown         time.Duration         `koanf:"cooldown"`
	MaxAlertsPerUser int                   `koanf:"max_alerts_per_user"`
	ViewSpike        ViewSpikeConfig       `koanf:"view_spike"`
	EngagementSurge  EngagementSurgeConfig `koanf:"engagement_surge"`
	Webhook          WebhookConfig         `koanf:"webhook"`
}

// ViewSpikeConfig tunes the view-spike rule.
type ViewSpikeConfig struct {
	Enabled       bool          `koanf:"enabled"`
	GrowthPercent float64       `koanf:"growth_percent"`
	Lookback      time.Duration `koanf:"lookback"`
}

// EngagementSurgeConfig tunes the engagement-surge rule.
type EngagementSurgeConfig struct {
	Enabled   bool          `koanf:"enabled"`
	MinEvents int64         `koanf:"min_events"`
	Lookback  time.Duration `koanf:"lookback"`
}

// WebhookConfig configures outbound alert delivery.
type WebhookConfig struct {
	Enabled       bool              `koanf:"enabled"`
	URL           string            `koanf:"url"`
	Headers       map[string]string `koanf:"headers"`
	RatePerMinute int               `koanf:"rate_per_minute"`
}

// NATSConfig configures the optional JetStream event source.
type NATSConfig struct {
	Enabled       bool          `koanf:"enabled"`
	URL           string        `koanf:"url"`
	Subject       string        `koanf:"subject"`
	QueueGroup    string        `koanf:"queue_group"`
	MaxReconnects int           `koanf:"max_reconnects"`
	ReconnectWait time.Duration `koanf:"reconnect_wait"`
	AckWait       time.Duration `koanf:"ack_wait"`
}

// SecurityConfig controls authentication, rate limiting, and ownership.
//
// An empty JWTSecret disables token authentication entirely: requests are
// identified by the X-User-ID header, falling back to "anonymous". This is
// the standalone single-author mode. OwnedContent maps user ids to the
// content ids they own; an empty map means everyone owns everything.
type SecurityConfig struct {
	JWTSecret           string              `koanf:"jwt_secret"`
	SessionTimeout      time.Duration       `koanf:"session_timeout"`
	RateLimitDisabled   bool                `koanf:"rate_limit_disabled"`
	IngestRatePerMinute int                 `koanf:"ingest_rate_per_minute"`
	ReadRatePerMinute   int                 `koanf:"read_rate_per_minute"`
	CORSOrigins         []string            `koanf:"cors_origins"`
	OwnedContent        map[string][]string `koanf:"owned_content"`
}

// WebSocketConfig controls the live stream endpoint.
type WebSocketConfig struct {
	Enabled        bool     `koanf:"enabled"`
	AllowedOrigins []string `koanf:"allowed_origins"`
}

// Validate checks the configuration for values that cannot work. It is
// called after every load so misconfiguration fails at startup, not later.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be 1-65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("server.timeout must be positive, got %v", c.Server.Timeout)
	}

	switch c.Logging.Level {
	case "trace", "debug", "info", "warn", "error", "fatal":
	default:
		return fmt.Errorf("logging.level %q is not a valid level", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}

	if c.Engine.HistoryCap < 1 {
		return fmt.Errorf("engine.history_cap must be positive, got %d", c.Engine.HistoryCap)
	}
	if c.Engine.HistoryMaxAge <= 0 {
		return fmt.Errorf("engine.history_max_age must be positive, got %v", c.Engine.HistoryMaxAge)
	}
	if c.Engine.FreshnessWindow <= 0 {
		return fmt.Errorf("engine.freshness_window must be positive, got %v", c.Engine.FreshnessWindow)
	}
	if c.Engine.TrendingLimit < 1 {
		return fmt.Errorf("engine.trending_limit must be positive, got %d", c.Engine.TrendingLimit)
	}
	if c.Engine.TrendingInterval <= 0 {
		return fmt.Errorf("engine.trending_interval must be positive, got %v", c.Engine.TrendingInterval)
	}

	if c.Alerting.Cooldown <= 0 {
		return fmt.Errorf("alerting.cooldown must be positive, got %v", c.Alerting.Cooldown)
	}
	if c.Alerting.MaxAlertsPerUser < 1 {
		return fmt.Errorf("alerting.max_alerts_per_user must be positive, got %d", c.Alerting.MaxAlertsPerUser)
	}
	if c.Alerting.ViewSpike.GrowthPercent <= 0 {
		return fmt.Errorf("alerting.view_spike.growth_percent must be positive, got %v", c.Alerting.ViewSpike.GrowthPercent)
	}
	if c.Alerting.EngagementSurge.MinEvents < 1 {
		return fmt.Errorf("alerting.engagement_surge.min_events must be positive, got %d", c.Alerting.EngagementSurge.MinEvents)
	}
	if c.Alerting.Webhook.Enabled && c.Alerting.Webhook.URL == "" {
		return fmt.Errorf("alerting.webhook.url is required when the webhook notifier is enabled")
	}

	if c.NATS.Enabled && c.NATS.URL == "" {
		return fmt.Errorf("nats.url is required when nats is enabled")
	}

	if c.Security.JWTSecret != "" && len(c.Security.JWTSecret) < 32 {
		return fmt.Errorf("security.jwt_secret must be at least 32 characters")
	}
	if c.Security.SessionTimeout <= 0 {
		return fmt.Errorf("security.session_timeout must be positive, got %v", c.Security.SessionTimeout)
	}
	if !c.Security.RateLimitDisabled {
		if c.Security.IngestRatePerMinute < 1 {
			return fmt.Errorf("security.ingest_rate_per_minute must be positive, got %d", c.Security.IngestRatePerMinute)
		}
		if c.Security.ReadRatePerMinute < 1 {
			return fmt.Errorf("security.read_rate_per_minute must be positive, got %d", c.Security.ReadRatePerMinute)
		}
	}

	return nil
}

// AuthEnabled reports whether bearer-token authentication is configured.
func (c *Config) AuthEnabled() bool {
	return c.Security.JWTSecret != ""
}
