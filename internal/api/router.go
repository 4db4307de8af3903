// ScribeStream - Real-Time Content Engagement Analytics
// Copyright 2026 ScribeStream Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/scribestream/scribestream

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/scribestream/scribestream/internal/auth"
)

// Router assembles the HTTP surface: handlers, middleware, and auth.
type Router struct {
	handler    *Handler
	middleware *ChiMiddleware
	jwtManager *auth.JWTManager
}

// NewRouter creates a router. A nil jwtManager disables token auth;
// identity then comes from the X-User-ID header.
func NewRouter(handler *Handler, mw *ChiMiddleware, jwtManager *auth.JWTManager) *Router {
	if mw == nil {
		mw = NewChiMiddleware(nil)
	}
	return &Router{
		handler:    handler,
		middleware: mw,
		jwtManager: jwtManager,
	}
}

// Setup wires all routes and returns the root handler.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to every route in order.
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.middleware.CORS())

	// Prometheus scrape endpoint, outside the API envelope.
	r.Handle("/metrics", promhttp.Handler())

	// Health endpoints are unauthenticated so orchestrators can probe them.
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.middleware.RateLimitRead())
		r.Get("/", router.handler.Health)
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})

	// Data endpoints carry auth, metrics, and tiered rate limits.
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(PrometheusMetrics)
		r.Use(auth.Middleware(router.jwtManager))

		// Writes get the stricter ingest budget.
		r.With(router.middleware.RateLimitIngest()).Post("/events", router.handler.RecordEvent)

		// Reads share the permissive budget.
		r.Group(func(r chi.Router) {
			r.Use(router.middleware.RateLimitRead())

			r.Get("/contents/{id}/live", router.handler.ContentLive)
			r.Get("/contents/{id}/metrics", router.handler.ContentMetrics)
			r.Get("/contents/{id}/engagement", router.handler.ContentEngagement)
			r.Get("/trending", router.handler.Trending)
			r.Get("/overview", router.handler.Overview)

			r.Post("/subscriptions", router.handler.UpdateSubscriptions)
			r.Delete("/subscriptions", router.handler.ClearSubscriptions)

			r.Get("/alerts", router.handler.Alerts)
			r.Post("/alerts/{id}/ack", router.handler.AcknowledgeAlert)

			r.Get("/ws", router.handler.WebSocket)
		})
	})

	return r
}
