// ScribeStream - Real-Time Content Engagement Analytics
// Copyright 2026 ScribeStream Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/scribestream/scribestream

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/scribestream/scribestream/internal/metrics"
)

// ChiMiddlewareConfig holds configuration for the middleware factories.
type ChiMiddlewareConfig struct {
	CORSAllowedOrigins []string

	RateLimitDisabled   bool
	IngestRatePerMinute int
	ReadRatePerMinute   int
}

// DefaultChiMiddlewareConfig returns the default middleware configuration:
// open CORS, ingest at 300/min, reads at 1000/min.
func DefaultChiMiddlewareConfig() *ChiMiddlewareConfig {
	return &ChiMiddlewareConfig{
		CORSAllowedOrigins:  []string{"*"},
		IngestRatePerMinute: 300,
		ReadRatePerMinute:   1000,
	}
}

// ChiMiddleware provides chi-compatible middleware built from the
// production-hardened go-chi ecosystem packages.
type ChiMiddleware struct {
	config *ChiMiddlewareConfig
	cors   func(http.Handler) http.Handler
}

// NewChiMiddleware builds the middleware factory.
func NewChiMiddleware(config *ChiMiddlewareConfig) *ChiMiddleware {
	if config == nil {
		config = DefaultChiMiddlewareConfig()
	}

	corsHandler := cors.Handler(cors.Options{
		AllowedOrigins: config.CORSAllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization", "X-User-ID"},
		MaxAge:         86400,
	})

	return &ChiMiddleware{
		config: config,
		cors:   corsHandler,
	}
}

// CORS returns the global CORS middleware. It must be global so OPTIONS
// preflight requests are answered on every route.
func (m *ChiMiddleware) CORS() func(http.Handler) http.Handler {
	return m.cors
}

// RateLimitIngest limits event writes per client IP.
func (m *ChiMiddleware) RateLimitIngest() func(http.Handler) http.Handler {
	return m.rateLimit(m.config.IngestRatePerMinute, "ingest")
}

// RateLimitRead limits read endpoints per client IP. The budget is
// permissive: a dashboard polls several endpoints at once.
func (m *ChiMiddleware) RateLimitRead() func(http.Handler) http.Handler {
	return m.rateLimit(m.config.ReadRatePerMinute, "read")
}

func (m *ChiMiddleware) rateLimit(perMinute int, tier string) func(http.Handler) http.Handler {
	if m.config.RateLimitDisabled {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	return httprate.Limit(
		perMinute,
		time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			metrics.APIRateLimitHits.WithLabelValues(tier).Inc()
			respondError(w, http.StatusTooManyRequests, codeRateLimited, "rate limit exceeded, slow down", nil)
		}),
	)
}

// PrometheusMetrics records request counts and latency per route pattern.
// The chi route pattern is used as the endpoint label so path parameters
// do not explode label cardinality.
func PrometheusMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapper := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(wrapper, r)

		endpoint := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				endpoint = pattern
			}
		}

		status := wrapper.Status()
		if status == 0 {
			status = http.StatusOK
		}
		metrics.RecordAPIRequest(
			r.Method,
			endpoint,
			strconv.Itoa(status),
			time.Since(start),
		)
	})
}
