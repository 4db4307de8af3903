// ScribeStream - Real-Time Content Engagement Analytics
// Copyright 2026 ScribeStream Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/scribestream/scribestream

package alerting

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/scribestream/scribestream/internal/logging"
	"github.com/scribestream/scribestream/internal/metrics"
)

// WebhookNotifier sends alerts to a webhook endpoint. Deliveries run behind
// a circuit breaker so a dead endpoint stops consuming goroutines, and a
// token bucket limiter so alert storms do not flood the receiver.
type WebhookNotifier struct {
	mu         sync.RWMutex
	webhookURL string
	headers    map[string]string
	enabled    bool

	client  *http.Client
	breaker *gobreaker.CircuitBreaker[*http.Response]
	limiter *rate.Limiter
}

// WebhookConfig configures the webhook notifier.
type WebhookConfig struct {
	WebhookURL string            `json:"webhook_url"`
	Headers    map[string]string `json:"headers,omitempty"` // Custom headers (e.g., auth)
	Enabled    bool              `json:"enabled"`

	// RatePerMinute caps outbound deliveries. Zero means 60 per minute.
	RatePerMinute int `json:"rate_per_minute"`
}

// WebhookPayload is the JSON payload sent to the webhook endpoint.
type WebhookPayload struct {
	Alert     Alert     `json:"alert"`
	EventType string    `json:"event_type"` // engagement_alert
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"` // scribestream
}

// NewWebhookNotifier creates a webhook notifier.
// Circuit breaker configuration:
// - Max 3 requests in half-open state
// - 1 minute measurement window
// - 2 minute timeout before attempting recovery
// - Opens after 5 consecutive failures
func NewWebhookNotifier(config WebhookConfig) *WebhookNotifier {
	perMinute := config.RatePerMinute
	if perMinute <= 0 {
		perMinute = 60
	}

	headers := make(map[string]string)
	for k, v := range config.Headers {
		headers[k] = v
	}

	breaker := gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:        "alert-webhook",
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("[CIRCUIT BREAKER] State transition")
		},
	})

	return &WebhookNotifier{
		webhookURL: config.WebhookURL,
		headers:    headers,
		enabled:    config.Enabled,
		breaker:    breaker,
		limiter:    rate.NewLimiter(rate.Limit(float64(perMinute)/60.0), perMinute),
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Name returns the notifier name.
func (n *WebhookNotifier) Name() string {
	return "webhook"
}

// Enabled returns whether this notifier is enabled.
func (n *WebhookNotifier) Enabled() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.enabled && n.webhookURL != ""
}

// SetEnabled enables or disables the notifier.
func (n *WebhookNotifier) SetEnabled(enabled bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.enabled = enabled
}

// Send delivers an alert to the webhook endpoint.
func (n *WebhookNotifier) Send(ctx context.Context, alert Alert) error {
	n.mu.RLock()
	enabled := n.enabled
	webhookURL := n.webhookURL
	headers := make(map[string]string, len(n.headers))
	for k, v := range n.headers {
		headers[k] = v
	}
	n.mu.RUnlock()

	if !enabled || webhookURL == "" {
		return nil
	}

	if err := n.limiter.Wait(ctx); err != nil {
		metrics.RecordNotifierDelivery(n.Name(), "rate_limited")
		return fmt.Errorf("webhook rate limit wait: %w", err)
	}

	payload := WebhookPayload{
		Alert:     alert,
		EventType: "engagement_alert",
		Timestamp: time.Now(),
		Source:    "scribestream",
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	_, err = n.breaker.Execute(func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("failed to create webhook request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		for key, value := range headers {
			req.Header.Set(key, value)
		}

		resp, err := n.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to send webhook: %w", err)
		}
		resp.Body.Close()

		if resp.StatusCode >= 400 {
			return nil, fmt.Errorf("webhook returned status %d", resp.StatusCode)
		}
		return resp, nil
	})

	switch {
	case err == nil:
		metrics.RecordNotifierDelivery(n.Name(), "ok")
		return nil
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.RecordNotifierDelivery(n.Name(), "breaker_open")
		return err
	default:
		metrics.RecordNotifierDelivery(n.Name(), "error")
		return err
	}
}
