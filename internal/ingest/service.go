// ScribeStream - Real-Time Content Engagement Analytics
// Copyright 2026 ScribeStream Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/scribestream/scribestream

package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/scribestream/scribestream/internal/alerting"
	"github.com/scribestream/scribestream/internal/analytics"
	"github.com/scribestream/scribestream/internal/logging"
	"github.com/scribestream/scribestream/internal/metrics"
	"github.com/scribestream/scribestream/internal/models"
	"github.com/scribestream/scribestream/internal/validation"
)

// Broadcaster pushes live updates to connected clients. The WebSocket hub
// satisfies it.
type Broadcaster interface {
	Broadcast(eventType string, payload interface{})
}

// noopBroadcaster is used when no hub is attached (tests, pipeline-only mode).
type noopBroadcaster struct{}

func (noopBroadcaster) Broadcast(string, interface{}) {}

// Service is the single write path into the engine. Every accepted event is
// stored, triggers alert evaluation for the content's subscribers, and is
// broadcast to live listeners. Duplicate deliveries are not deduplicated;
// producers retrying a send will count twice.
type Service struct {
	store       *analytics.Store
	evaluator   *alerting.Evaluator
	broadcaster Broadcaster
}

// NewService creates the ingestion service. broadcaster may be nil.
func NewService(store *analytics.Store, evaluator *alerting.Evaluator, broadcaster Broadcaster) *Service {
	if broadcaster == nil {
		broadcaster = noopBroadcaster{}
	}
	return &Service{
		store:       store,
		evaluator:   evaluator,
		broadcaster: broadcaster,
	}
}

// Record validates and ingests one event from the HTTP API. The returned
// error is a *validation.RequestValidationError when the request is
// malformed.
func (s *Service) Record(ctx context.Context, req models.RecordEventRequest) (analytics.Metric, error) {
	if err := validation.ValidateStruct(&req); err != nil {
		metrics.RecordEventRejected("validation")
		return analytics.Metric{}, err
	}

	value := int64(1)
	if req.Value != nil {
		value = *req.Value
	}

	kind, err := analytics.ParseMetricType(req.MetricType)
	if err != nil {
		metrics.RecordEventRejected("metric_type")
		return analytics.Metric{}, err
	}

	m := analytics.Metric{
		ID:        uuid.NewString(),
		ContentID: req.ContentID,
		Platform:  req.Platform,
		Type:      kind,
		Value:     value,
		Metadata:  req.Metadata,
	}

	if err := s.Apply(ctx, m); err != nil {
		return analytics.Metric{}, err
	}
	return m, nil
}

// Apply ingests one already-shaped metric: it stores it, evaluates alert
// rules for the content, and broadcasts the refreshed live snapshot. The
// pipeline and Record both funnel through here.
func (s *Service) Apply(_ context.Context, m analytics.Metric) error {
	start := time.Now()

	if m.ID == "" {
		m.ID = uuid.NewString()
	}

	if err := s.store.RecordMetric(m); err != nil {
		metrics.RecordEventRejected("store")
		return fmt.Errorf("record metric: %w", err)
	}

	s.evaluator.Evaluate(m.ContentID)

	if live, ok := s.store.GetLiveAnalytics(m.ContentID); ok {
		s.broadcaster.Broadcast("metric_update", live)
	}

	metrics.RecordEventIngested(string(m.Type), m.Platform, time.Since(start))
	logging.Debug().
		Str("content_id", m.ContentID).
		Str("metric_type", string(m.Type)).
		Int64("value", m.Value).
		Msg("Event ingested")
	return nil
}
