// ScribeStream - Real-Time Content Engagement Analytics
// Copyright 2026 ScribeStream Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/scribestream/scribestream

// Package main is the entry point for the ScribeStream server application.
//
// ScribeStream is a multi-tenant real-time engagement analytics engine for
// published content. It ingests view, like, comment, and share events,
// maintains in-memory per-content aggregates with bounded history, ranks
// trending content, and fires alerts to subscribed users over WebSocket
// and webhooks.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: Load settings from environment variables and config files (Koanf v2)
//  2. Metric Store: Sharded in-memory aggregates with bounded per-content history
//  3. Subscription Registry and Alert Evaluator: Rules, cooldowns, per-user alert caps
//  4. WebSocket Hub: Real-time metric, trending, and alert fan-out to clients
//  5. Ingestion: Synchronous service plus Watermill pipeline (NATS JetStream optional)
//  6. Authentication: JWT bearer tokens, or open mode with X-User-ID identity
//  7. HTTP Server: REST API behind chi with CORS, rate limiting, and Prometheus metrics
//  8. Supervisor Tree: suture restarts failed services with exponential backoff
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest priority wins):
//   - Environment variables (SCRIBE_ prefix)
//   - Config file (config.yaml, or SCRIBE_CONFIG_PATH)
//   - Built-in defaults
//
// # Signal Handling
//
// The server handles graceful shutdown on SIGINT and SIGTERM:
//   - Stops accepting new connections
//   - Waits for in-flight requests to complete (10s timeout)
//   - Closes WebSocket clients and the ingestion pipeline
//
// # Example Usage
//
// Development, no authentication (identity via X-User-ID header):
//
//	./scribestream
//
// Production with JWT and NATS ingestion:
//
//	export SCRIBE_JWT_SECRET=$(openssl rand -base64 32)
//	export SCRIBE_NATS_ENABLED=true
//	export SCRIBE_NATS_URL=nats://nats:4222
//	./scribestream
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/scribestream/scribestream/internal/alerting"
	"github.com/scribestream/scribestream/internal/analytics"
	"github.com/scribestream/scribestream/internal/api"
	"github.com/scribestream/scribestream/internal/auth"
	"github.com/scribestream/scribestream/internal/config"
	"github.com/scribestream/scribestream/internal/ingest"
	"github.com/scribestream/scribestream/internal/logging"
	"github.com/scribestream/scribestream/internal/subscription"
	"github.com/scribestream/scribestream/internal/supervisor"
	ws "github.com/scribestream/scribestream/internal/websocket"
)

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().Msg("Starting ScribeStream with supervisor tree")
	logging.Info().
		Str("addr", cfg.Server.Addr()).
		Bool("auth_enabled", cfg.AuthEnabled()).
		Bool("nats_enabled", cfg.NATS.Enabled).
		Bool("websocket_enabled", cfg.WebSocket.Enabled).
		Msg("Configuration loaded")

	// Metric store and subscription registry back everything else.
	store := analytics.NewStore(analytics.Config{
		HistoryCap:      cfg.Engine.HistoryCap,
		HistoryMaxAge:   cfg.Engine.HistoryMaxAge,
		FreshnessWindow: cfg.Engine.FreshnessWindow,
	})
	registry := subscription.NewRegistry()

	evaluator := alerting.NewEvaluator(store, registry, alerting.Config{
		Cooldown:         cfg.Alerting.Cooldown,
		MaxAlertsPerUser: cfg.Alerting.MaxAlertsPerUser,
	})
	if cfg.Alerting.ViewSpike.Enabled {
		evaluator.RegisterRule(alerting.NewViewSpikeRule(alerting.ViewSpikeConfig{
			Enabled:       true,
			GrowthPercent: cfg.Alerting.ViewSpike.GrowthPercent,
			Lookback:      cfg.Alerting.ViewSpike.Lookback,
		}))
	}
	if cfg.Alerting.EngagementSurge.Enabled {
		evaluator.RegisterRule(alerting.NewEngagementSurgeRule(alerting.EngagementSurgeConfig{
			Enabled:   true,
			MinEvents: cfg.Alerting.EngagementSurge.MinEvents,
			Lookback:  cfg.Alerting.EngagementSurge.Lookback,
		}))
	}
	if cfg.Alerting.Webhook.Enabled {
		evaluator.RegisterNotifier(alerting.NewWebhookNotifier(alerting.WebhookConfig{
			Enabled:       true,
			WebhookURL:    cfg.Alerting.Webhook.URL,
			Headers:       cfg.Alerting.Webhook.Headers,
			RatePerMinute: cfg.Alerting.Webhook.RatePerMinute,
		}))
		logging.Info().Str("url", cfg.Alerting.Webhook.URL).Msg("Webhook alert notifier enabled")
	}

	// WebSocket hub fans metric updates, trending snapshots, and alerts out
	// to connected clients. It doubles as an alert notifier.
	var hub *ws.Hub
	var broadcaster ingest.Broadcaster
	if cfg.WebSocket.Enabled {
		hub = ws.NewHub()
		broadcaster = hub
		evaluator.RegisterNotifier(hub)
	}

	svc := ingest.NewService(store, evaluator, broadcaster)

	pipelineCfg := ingest.DefaultPipelineConfig()
	pipelineCfg.NATS = ingest.NATSConfig{
		Enabled:        cfg.NATS.Enabled,
		URL:            cfg.NATS.URL,
		Subject:        cfg.NATS.Subject,
		QueueGroup:     cfg.NATS.QueueGroup,
		MaxReconnects:  cfg.NATS.MaxReconnects,
		ReconnectWait:  cfg.NATS.ReconnectWait,
		AckWaitTimeout: cfg.NATS.AckWait,
	}
	pipeline, err := ingest.NewPipeline(pipelineCfg, svc)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create ingestion pipeline")
	}
	if cfg.NATS.Enabled {
		logging.Info().Str("url", cfg.NATS.URL).Str("subject", cfg.NATS.Subject).Msg("NATS ingestion enabled")
	}

	trending := ingest.NewTrendingBroadcaster(store, broadcaster, cfg.Engine.TrendingInterval, cfg.Engine.TrendingLimit)

	var jwtManager *auth.JWTManager
	if cfg.AuthEnabled() {
		jwtManager, err = auth.NewJWTManager(cfg.Security.JWTSecret, cfg.Security.SessionTimeout)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to initialize JWT manager")
		}
		logging.Info().Msg("JWT authentication enabled")
	} else {
		logging.Warn().Msg("Authentication disabled, identity is taken from the X-User-ID header")
	}
	authorizer := auth.NewStaticAuthorizer(cfg.Security.OwnedContent)

	handler := api.NewHandler(store, registry, evaluator, svc, authorizer, hub, cfg)
	handler.SetReadyCheck(func() bool {
		select {
		case <-pipeline.Running():
			return true
		default:
			return false
		}
	})

	mw := api.NewChiMiddleware(&api.ChiMiddlewareConfig{
		CORSAllowedOrigins:  cfg.Security.CORSOrigins,
		RateLimitDisabled:   cfg.Security.RateLimitDisabled,
		IngestRatePerMinute: cfg.Security.IngestRatePerMinute,
		ReadRatePerMinute:   cfg.Security.ReadRatePerMinute,
	})
	router := api.NewRouter(handler, mw, jwtManager)
	server := api.NewServer(cfg.Server.Addr(), router.Setup(), cfg.Server.Timeout)

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if hub != nil {
		tree.AddMessagingService(supervisor.NewService("websocket-hub", hub))
	}
	tree.AddMessagingService(supervisor.NewServiceFunc("ingest-pipeline", func(ctx context.Context) error {
		defer func() {
			if err := pipeline.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing ingestion pipeline")
			}
		}()
		if err := pipeline.Run(ctx); err != nil {
			return err
		}
		return ctx.Err()
	}))
	tree.AddMessagingService(supervisor.NewService("trending-broadcaster", trending))
	tree.AddAPIService(supervisor.NewService("http-server", server))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logging.Info().Str("addr", cfg.Server.Addr()).Msg("ScribeStream listening")

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor tree exited with error")
		os.Exit(1)
	}

	logging.Info().Msg("ScribeStream stopped")
}
