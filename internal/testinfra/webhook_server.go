// ScribeStream - Real-Time Content Engagement Analytics
// Copyright 2026 ScribeStream Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/scribestream/scribestream

package testinfra

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

// WebhookCapture is one request received by the mock webhook server.
type WebhookCapture struct {
	Method  string
	Path    string
	Headers http.Header
	Body    []byte
}

// MockWebhookServer is an httptest-backed receiver for webhook deliveries.
// It records every incoming request for later assertions.
type MockWebhookServer struct {
	Server   *httptest.Server
	mu       sync.Mutex
	captures []WebhookCapture

	// ResponseStatus is the HTTP status code to return. Default 200.
	ResponseStatus int

	// ResponseFunc overrides the default response when set.
	ResponseFunc func(w http.ResponseWriter, r *http.Request)
}

// NewMockWebhookServer starts a mock webhook receiver. The server is shut
// down when the test finishes.
func NewMockWebhookServer(t *testing.T) *MockWebhookServer {
	t.Helper()

	mws := &MockWebhookServer{
		ResponseStatus: http.StatusOK,
	}

	mws.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body []byte
		if r.Body != nil {
			body, _ = io.ReadAll(r.Body)
			r.Body.Close()
		}

		mws.mu.Lock()
		mws.captures = append(mws.captures, WebhookCapture{
			Method:  r.Method,
			Path:    r.URL.Path,
			Headers: r.Header.Clone(),
			Body:    body,
		})
		mws.mu.Unlock()

		if mws.ResponseFunc != nil {
			mws.ResponseFunc(w, r)
			return
		}
		w.WriteHeader(mws.ResponseStatus)
	}))
	t.Cleanup(mws.Server.Close)

	return mws
}

// URL returns the server URL.
func (m *MockWebhookServer) URL() string {
	return m.Server.URL
}

// Captures returns a copy of all captured requests.
func (m *MockWebhookServer) Captures() []WebhookCapture {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]WebhookCapture, len(m.captures))
	copy(result, m.captures)
	return result
}

// WaitForCaptures blocks until at least n requests have been captured or the
// timeout elapses. Returns whether the count was reached.
func (m *MockWebhookServer) WaitForCaptures(n int, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		m.mu.Lock()
		count := len(m.captures)
		m.mu.Unlock()
		if count >= n {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return false
}
