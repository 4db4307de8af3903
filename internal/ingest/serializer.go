// ScribeStream - Real-Time Content Engagement Analytics
// Copyright 2026 ScribeStream Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/scribestream/scribestream

package ingest

import (
	"fmt"

	"github.com/goccy/go-json"

	"github.com/scribestream/scribestream/internal/analytics"
)

// Serializer handles event encoding/decoding for pipeline messages.
type Serializer struct{}

// NewSerializer creates a new serializer.
func NewSerializer() *Serializer {
	return &Serializer{}
}

// Marshal converts a metric to JSON bytes, rejecting malformed metrics
// before they reach the wire.
func (s *Serializer) Marshal(m analytics.Metric) ([]byte, error) {
	if m.ContentID == "" {
		return nil, fmt.Errorf("validate metric: %w", analytics.ErrEmptyContentID)
	}
	if !m.Type.Valid() {
		return nil, fmt.Errorf("validate metric: %w: %q", analytics.ErrUnknownMetricType, m.Type)
	}
	if m.Value <= 0 {
		return nil, fmt.Errorf("validate metric: %w: %d", analytics.ErrNonPositiveValue, m.Value)
	}

	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal metric: %w", err)
	}
	return data, nil
}

// Unmarshal converts JSON bytes to a metric.
func (s *Serializer) Unmarshal(data []byte) (analytics.Metric, error) {
	var m analytics.Metric
	if err := json.Unmarshal(data, &m); err != nil {
		return analytics.Metric{}, fmt.Errorf("unmarshal metric: %w", err)
	}
	return m, nil
}
