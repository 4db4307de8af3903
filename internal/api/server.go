// ScribeStream - Real-Time Content Engagement Analytics
// Copyright 2026 ScribeStream Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/scribestream/scribestream

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/scribestream/scribestream/internal/logging"
)

// shutdownGrace is how long in-flight requests get to finish on shutdown.
const shutdownGrace = 10 * time.Second

// Server runs the HTTP listener as a supervised service.
type Server struct {
	srv *http.Server
}

// NewServer builds the HTTP server around the router's handler.
func NewServer(addr string, handler http.Handler, timeout time.Duration) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadTimeout:       timeout,
			WriteTimeout:      timeout,
			ReadHeaderTimeout: 10 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
	}
}

// RunWithContext serves until the context is canceled, then shuts down
// gracefully and returns ctx.Err() so a supervisor treats it as a clean
// stop.
func (s *Server) RunWithContext(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", s.srv.Addr).Msg("HTTP server listening")
		errCh <- s.srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			logging.Error().Err(err).Msg("HTTP server shutdown failed")
		} else {
			logging.Info().Str("component", "http-server").Msg("HTTP server stopped")
		}
		return ctx.Err()
	}
}
