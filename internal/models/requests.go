// ScribeStream - Real-Time Content Engagement Analytics
// Copyright 2026 ScribeStream Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/scribestream/scribestream

package models

// RecordEventRequest is the body of POST /api/v1/events.
// Value defaults to 1 when omitted. Timestamp is assigned server-side.
//
// Example:
//
//	{
//	  "content_id": "post-42",
//	  "platform": "medium",
//	  "metric_type": "view",
//	  "value": 1,
//	  "metadata": {"referrer": "newsletter"}
//	}
type RecordEventRequest struct {
	ContentID  string            `json:"content_id" validate:"required,max=128"`
	Platform   string            `json:"platform" validate:"omitempty,max=64"`
	MetricType string            `json:"metric_type" validate:"required,oneof=view like comment share click"`
	Value      *int64            `json:"value" validate:"omitempty,gt=0"`
	Metadata   map[string]string `json:"metadata" validate:"omitempty,max=16"`
}

// SubscriptionRequest is the body of POST /api/v1/subscriptions.
// Action selects between adding and removing the listed content ids from the
// caller's watch set. Between 1 and 10 content ids may be named per request.
type SubscriptionRequest struct {
	ContentIDs []string `json:"content_ids" validate:"required,min=1,max=10,dive,required,max=128"`
	Action     string   `json:"action" validate:"required,oneof=subscribe unsubscribe"`
}

// SubscriptionResponse reports the outcome of a subscription change.
// Rejected lists requested content ids the caller does not own.
type SubscriptionResponse struct {
	Subscribed []string `json:"subscribed"`
	Rejected   []string `json:"rejected,omitempty"`
}

// AckResponse reports the outcome of an alert acknowledgement.
type AckResponse struct {
	AlertID      string `json:"alert_id"`
	Acknowledged bool   `json:"acknowledged"`
}
