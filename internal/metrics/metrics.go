// ScribeStream - Real-Time Content Engagement Analytics
// Copyright 2026 ScribeStream Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/scribestream/scribestream

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus Metrics Integration for Production Observability
// This package provides instrumentation for:
// - Event ingestion throughput and validation failures
// - Metric store size and history evictions
// - Trending computation latency
// - Alert evaluation and delivery
// - API endpoint latency and throughput
// - WebSocket connections

var (
	// Ingestion Metrics
	EventsIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_events_total",
			Help: "Total number of engagement events recorded",
		},
		[]string{"metric_type", "platform"},
	)

	EventsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_events_rejected_total",
			Help: "Total number of engagement events rejected at validation",
		},
		[]string{"reason"}, // "metric_type", "content_id", "value", "decode"
	)

	IngestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ingest_record_duration_seconds",
			Help:    "End to end duration of recording one event (store + evaluate + broadcast)",
			Buckets: []float64{0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05},
		},
	)

	PipelineMessagesConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_messages_consumed_total",
			Help: "Total number of messages consumed from the event pipeline",
		},
		[]string{"source"}, // "gochannel", "nats"
	)

	PipelineMessagesPoisoned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pipeline_messages_poisoned_total",
			Help: "Total number of undecodable or repeatedly failing messages routed to the poison topic",
		},
	)

	// Metric Store Metrics
	StoreTrackedContents = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "store_tracked_contents",
			Help: "Current number of content items with live analytics state",
		},
	)

	StoreHistoryEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_history_evictions_total",
			Help: "Total number of history entries evicted",
		},
		[]string{"reason"}, // "capacity", "age"
	)

	// Trending Metrics
	TrendingComputeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "trending_compute_duration_seconds",
			Help:    "Duration of a full trending recomputation in seconds",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		},
	)

	// Alerting Metrics
	AlertsFired = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alerts_fired_total",
			Help: "Total number of alerts fired",
		},
		[]string{"rule", "severity"},
	)

	AlertsSuppressed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alerts_suppressed_total",
			Help: "Total number of alert firings suppressed by an active cooldown",
		},
		[]string{"rule"},
	)

	AlertsAcknowledged = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "alerts_acknowledged_total",
			Help: "Total number of alerts acknowledged",
		},
	)

	NotifierDeliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifier_deliveries_total",
			Help: "Total number of alert notifier delivery attempts",
		},
		[]string{"notifier", "outcome"}, // outcome: "ok", "error", "breaker_open", "rate_limited"
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"method", "endpoint"},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// WebSocket Metrics
	WSActiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_active_connections",
			Help: "Current number of active WebSocket connections",
		},
	)

	WSMessagesSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "websocket_messages_sent_total",
			Help: "Total number of WebSocket messages broadcast to clients",
		},
		[]string{"type"}, // "metric_update", "alert", "trending_update"
	)

	WSMessagesDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_dropped_total",
			Help: "Total number of WebSocket messages dropped due to full client buffers",
		},
	)
)

// RecordEventIngested increments the ingestion counter for one accepted event.
func RecordEventIngested(metricType, platform string, duration time.Duration) {
	if platform == "" {
		platform = "unknown"
	}
	EventsIngested.WithLabelValues(metricType, platform).Inc()
	IngestDuration.Observe(duration.Seconds())
}

// RecordEventRejected increments the rejection counter with a reason label.
func RecordEventRejected(reason string) {
	EventsRejected.WithLabelValues(reason).Inc()
}

// RecordAPIRequest records metrics for an API request.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordAlertFired records a fired alert by rule and severity.
func RecordAlertFired(rule, severity string) {
	AlertsFired.WithLabelValues(rule, severity).Inc()
}

// RecordAlertSuppressed records an alert firing suppressed by cooldown.
func RecordAlertSuppressed(rule string) {
	AlertsSuppressed.WithLabelValues(rule).Inc()
}

// RecordNotifierDelivery records the outcome of one notifier delivery attempt.
func RecordNotifierDelivery(notifier, outcome string) {
	NotifierDeliveries.WithLabelValues(notifier, outcome).Inc()
}

// RecordTrendingCompute observes the duration of one trending recomputation.
func RecordTrendingCompute(duration time.Duration) {
	TrendingComputeDuration.Observe(duration.Seconds())
}

// RecordHistoryEviction records history entries evicted for the given reason.
func RecordHistoryEviction(reason string, count int) {
	if count <= 0 {
		return
	}
	StoreHistoryEvictions.WithLabelValues(reason).Add(float64(count))
}
