// ScribeStream - Real-Time Content Engagement Analytics
// Copyright 2026 ScribeStream Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/scribestream/scribestream

package supervisor

import (
	"context"
)

// ContextRunner is anything that runs until its context is canceled and
// then returns ctx.Err(). The websocket hub, ingest pipeline wrapper,
// trending broadcaster, and HTTP server all satisfy it.
type ContextRunner interface {
	RunWithContext(ctx context.Context) error
}

// Service adapts a ContextRunner to suture.Service with a stable name for
// supervision logs.
type Service struct {
	runner ContextRunner
	name   string
}

// NewService wraps a runner as a named supervised service.
func NewService(name string, runner ContextRunner) *Service {
	return &Service{runner: runner, name: name}
}

// Serve implements suture.Service.
func (s *Service) Serve(ctx context.Context) error {
	return s.runner.RunWithContext(ctx)
}

// String implements fmt.Stringer; suture uses it in event logs.
func (s *Service) String() string {
	return s.name
}

// runnerFunc lets plain functions act as ContextRunners.
type runnerFunc func(ctx context.Context) error

func (f runnerFunc) RunWithContext(ctx context.Context) error { return f(ctx) }

// NewServiceFunc wraps a bare run function as a named supervised service.
func NewServiceFunc(name string, run func(ctx context.Context) error) *Service {
	return NewService(name, runnerFunc(run))
}
