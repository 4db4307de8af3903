// ScribeStream - Real-Time Content Engagement Analytics
// Copyright 2026 ScribeStream Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/scribestream/scribestream

package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	natsgo "github.com/nats-io/nats.go"

	"github.com/scribestream/scribestream/internal/analytics"
	"github.com/scribestream/scribestream/internal/metrics"
)

// Pipeline topics.
const (
	DefaultTopic       = "engagement.events"
	DefaultPoisonTopic = "engagement.poison"
)

// NATSConfig configures the optional NATS JetStream event source.
type NATSConfig struct {
	Enabled        bool
	URL            string
	Subject        string
	QueueGroup     string
	MaxReconnects  int
	ReconnectWait  time.Duration
	AckWaitTimeout time.Duration
}

// PipelineConfig holds configuration for the event pipeline.
type PipelineConfig struct {
	Topic       string
	PoisonTopic string

	// CloseTimeout is how long to wait for handlers to finish when closing.
	CloseTimeout time.Duration

	// Retry configuration
	RetryMaxRetries      int
	RetryInitialInterval time.Duration
	RetryMaxInterval     time.Duration
	RetryMultiplier      float64

	NATS NATSConfig
}

// DefaultPipelineConfig returns production defaults for the pipeline.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Topic:                DefaultTopic,
		PoisonTopic:          DefaultPoisonTopic,
		CloseTimeout:         30 * time.Second,
		RetryMaxRetries:      5,
		RetryInitialInterval: time.Second,
		RetryMaxInterval:     time.Minute,
		RetryMultiplier:      2.0,
		NATS: NATSConfig{
			Subject:        "engagement.events",
			QueueGroup:     "scribestream",
			MaxReconnects:  -1,
			ReconnectWait:  2 * time.Second,
			AckWaitTimeout: 30 * time.Second,
		},
	}
}

// Pipeline is the asynchronous ingestion path. An in-process gochannel
// Pub/Sub is always attached so local producers and tests can publish
// without a broker; a NATS JetStream subscriber is attached when enabled.
// Undecodable and repeatedly failing messages are routed to the poison
// topic after retries are exhausted.
type Pipeline struct {
	router     *message.Router
	pubsub     *gochannel.GoChannel
	natsSub    message.Subscriber
	serializer *Serializer
	service    *Service
	config     PipelineConfig
	logger     watermill.LoggerAdapter
}

// NewPipeline creates the event pipeline feeding svc.
func NewPipeline(cfg PipelineConfig, svc *Service) (*Pipeline, error) {
	if cfg.Topic == "" {
		cfg.Topic = DefaultTopic
	}
	if cfg.PoisonTopic == "" {
		cfg.PoisonTopic = DefaultPoisonTopic
	}
	if cfg.CloseTimeout <= 0 {
		cfg.CloseTimeout = 30 * time.Second
	}

	logger := newWatermillLogger()

	router, err := message.NewRouter(message.RouterConfig{CloseTimeout: cfg.CloseTimeout}, logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill router: %w", err)
	}

	pubsub := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: 256,
	}, logger)

	p := &Pipeline{
		router:     router,
		pubsub:     pubsub,
		serializer: NewSerializer(),
		service:    svc,
		config:     cfg,
		logger:     logger,
	}

	// Middleware order: recover panics first, retry transient failures,
	// then hand what is left to the poison topic.
	router.AddMiddleware(middleware.Recoverer)

	retryMiddleware := middleware.Retry{
		MaxRetries:      cfg.RetryMaxRetries,
		InitialInterval: cfg.RetryInitialInterval,
		MaxInterval:     cfg.RetryMaxInterval,
		Multiplier:      cfg.RetryMultiplier,
		Logger:          logger,
	}
	router.AddMiddleware(retryMiddleware.Middleware)

	poisonQueue, err := middleware.PoisonQueue(pubsub, cfg.PoisonTopic)
	if err != nil {
		return nil, fmt.Errorf("create poison queue middleware: %w", err)
	}
	router.AddMiddleware(poisonQueue)

	router.AddConsumerHandler(
		"ingest-local",
		cfg.Topic,
		pubsub,
		p.handleMessage("gochannel"),
	)

	router.AddConsumerHandler(
		"ingest-poison",
		cfg.PoisonTopic,
		pubsub,
		p.handlePoisoned,
	)

	if cfg.NATS.Enabled {
		sub, err := newNATSSubscriber(cfg.NATS, logger)
		if err != nil {
			return nil, fmt.Errorf("create nats subscriber: %w", err)
		}
		p.natsSub = sub

		router.AddConsumerHandler(
			"ingest-nats",
			cfg.NATS.Subject,
			sub,
			p.handleMessage("nats"),
		)
	}

	return p, nil
}

// newNATSSubscriber creates a durable JetStream subscriber with queue-group
// load balancing across instances.
func newNATSSubscriber(cfg NATSConfig, logger watermill.LoggerAdapter) (message.Subscriber, error) {
	natsOpts := []natsgo.Option{
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(cfg.MaxReconnects),
		natsgo.ReconnectWait(cfg.ReconnectWait),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				logger.Error("NATS disconnected", err, nil)
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logger.Info("NATS reconnected", watermill.LogFields{"url": nc.ConnectedUrl()})
		}),
	}

	return wmNats.NewSubscriber(wmNats.SubscriberConfig{
		URL:              cfg.URL,
		QueueGroupPrefix: cfg.QueueGroup,
		AckWaitTimeout:   cfg.AckWaitTimeout,
		NatsOptions:      natsOpts,
		Unmarshaler:      &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			AutoProvision: true,
			SubscribeOptions: []natsgo.SubOpt{
				natsgo.DeliverNew(),
				natsgo.AckWait(cfg.AckWaitTimeout),
			},
			DurablePrefix: "scribestream-ingest",
		},
	}, logger)
}

// handleMessage decodes and applies one pipeline message. Returning an error
// nacks the message into the retry/poison machinery.
func (p *Pipeline) handleMessage(source string) message.NoPublishHandlerFunc {
	return func(msg *message.Message) error {
		m, err := p.serializer.Unmarshal(msg.Payload)
		if err != nil {
			return err
		}

		if err := p.service.Apply(msg.Context(), m); err != nil {
			return err
		}

		metrics.PipelineMessagesConsumed.WithLabelValues(source).Inc()
		return nil
	}
}

// handlePoisoned observes messages that exhausted the retry machinery. Each
// poisoned message is counted exactly once, here, not per delivery attempt.
func (p *Pipeline) handlePoisoned(msg *message.Message) error {
	metrics.PipelineMessagesPoisoned.Inc()
	p.logger.Error("Message routed to poison topic", nil, watermill.LogFields{
		"message_uuid": msg.UUID,
		"reason":       msg.Metadata.Get(middleware.ReasonForPoisonedKey),
	})
	return nil
}

// Publish serializes a metric onto the local topic. It is the producer-side
// entry point for in-process asynchronous ingestion.
func (p *Pipeline) Publish(m analytics.Metric) error {
	data, err := p.serializer.Marshal(m)
	if err != nil {
		return err
	}

	msg := message.NewMessage(watermill.NewUUID(), data)
	return p.pubsub.Publish(p.config.Topic, msg)
}

// Run starts the pipeline and blocks until the context is canceled.
func (p *Pipeline) Run(ctx context.Context) error {
	return p.router.Run(ctx)
}

// Running returns a channel that closes once the router is running.
func (p *Pipeline) Running() <-chan struct{} {
	return p.router.Running()
}

// Close gracefully stops the pipeline, waiting up to CloseTimeout for
// in-flight messages.
func (p *Pipeline) Close() error {
	var firstErr error
	if err := p.router.Close(); err != nil {
		firstErr = err
	}
	if p.natsSub != nil {
		if err := p.natsSub.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
