// ScribeStream - Real-Time Content Engagement Analytics
// Copyright 2026 ScribeStream Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/scribestream/scribestream

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultsAreValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Server.Port != 8460 {
		t.Errorf("default port = %d", cfg.Server.Port)
	}
	if cfg.Engine.HistoryCap != 500 {
		t.Errorf("history cap = %d", cfg.Engine.HistoryCap)
	}
	if cfg.Alerting.Cooldown != 15*time.Minute {
		t.Errorf("cooldown = %v", cfg.Alerting.Cooldown)
	}
	if cfg.AuthEnabled() {
		t.Error("auth should be disabled by default")
	}
}

func TestLoadDefaultsWithoutFileOrEnv(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "missing.yaml"))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr() != "0.0.0.0:8460" {
		t.Errorf("addr = %q", cfg.Server.Addr())
	}
	if cfg.NATS.Enabled {
		t.Error("nats should be disabled by default")
	}
}

func TestLoadYAMLFile(t *testing.T) {
	yamlContent := `
server:
  port: 9000
engine:
  freshness_window: 2m
security:
  jwt_secret: "file-secret-that-is-long-enough-0123"
  owned_content:
    alice:
      - post-1
      - post-2
alerting:
  webhook:
    enabled: true
    url: https://hooks.example.com/engagement
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(yamlContent), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Engine.FreshnessWindow != 2*time.Minute {
		t.Errorf("freshness window = %v, want 2m", cfg.Engine.FreshnessWindow)
	}
	if !cfg.AuthEnabled() {
		t.Error("auth should be enabled with a jwt secret")
	}
	if got := cfg.Security.OwnedContent["alice"]; len(got) != 2 {
		t.Errorf("owned content = %v", got)
	}
	if !cfg.Alerting.Webhook.Enabled || cfg.Alerting.Webhook.URL == "" {
		t.Errorf("webhook config = %+v", cfg.Alerting.Webhook)
	}
	// Defaults survive underneath the file layer.
	if cfg.Engine.HistoryCap != 500 {
		t.Errorf("history cap = %d, want default 500", cfg.Engine.HistoryCap)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 9000\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("SCRIBE_HTTP_PORT", "9100")
	t.Setenv("SCRIBE_LOG_LEVEL", "debug")
	t.Setenv("SCRIBE_NATS_ENABLED", "true")
	t.Setenv("SCRIBE_NATS_URL", "nats://broker:4222")
	t.Setenv("SCRIBE_CORS_ORIGINS", "https://a.example.com, https://b.example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9100 {
		t.Errorf("port = %d, want env override 9100", cfg.Server.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("level = %q", cfg.Logging.Level)
	}
	if !cfg.NATS.Enabled || cfg.NATS.URL != "nats://broker:4222" {
		t.Errorf("nats config = %+v", cfg.NATS)
	}
	want := []string{"https://a.example.com", "https://b.example.com"}
	if len(cfg.Security.CORSOrigins) != 2 || cfg.Security.CORSOrigins[0] != want[0] || cfg.Security.CORSOrigins[1] != want[1] {
		t.Errorf("cors origins = %v, want %v", cfg.Security.CORSOrigins, want)
	}
}

func TestUnknownEnvVarsIgnored(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("SCRIBE_NOT_A_SETTING", "whatever")

	if _, err := Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"zero port", func(c *Config) { c.Server.Port = 0 }, true},
		{"port too high", func(c *Config) { c.Server.Port = 70000 }, true},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, true},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, true},
		{"zero history cap", func(c *Config) { c.Engine.HistoryCap = 0 }, true},
		{"zero freshness window", func(c *Config) { c.Engine.FreshnessWindow = 0 }, true},
		{"zero cooldown", func(c *Config) { c.Alerting.Cooldown = 0 }, true},
		{"zero alert cap", func(c *Config) { c.Alerting.MaxAlertsPerUser = 0 }, true},
		{"webhook enabled without url", func(c *Config) { c.Alerting.Webhook.Enabled = true }, true},
		{"nats enabled without url", func(c *Config) { c.NATS.Enabled = true; c.NATS.URL = "" }, true},
		{"short jwt secret", func(c *Config) { c.Security.JWTSecret = "short" }, true},
		{"long jwt secret", func(c *Config) { c.Security.JWTSecret = "a-perfectly-fine-32-char-secret!" }, false},
		{"zero ingest rate", func(c *Config) { c.Security.IngestRatePerMinute = 0 }, true},
		{"zero ingest rate with limiter disabled", func(c *Config) {
			c.Security.RateLimitDisabled = true
			c.Security.IngestRatePerMinute = 0
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
