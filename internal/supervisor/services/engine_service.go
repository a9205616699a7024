// Dockvault - Docker Volume Backup Control Panel
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dockvault

package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/tomtom215/dockvault/internal/logging"
)

// Engine is the part of *backup.Engine the lifecycle service drives
type Engine interface {
	EnsureRepository(ctx context.Context)
	Wait(ctx context.Context) error
	Close()
}

// EngineService ties the backup engine to the supervisor tree.
//
// On its first start it makes sure the restic repository exists. On shutdown
// it waits up to drainTimeout for a dashboard-started backup or restore to
// finish before stopping the engine's pending status reset.
type EngineService struct {
	engine       Engine
	drainTimeout time.Duration
	initOnce     sync.Once
	name         string
}

// NewEngineService creates the engine lifecycle service
func NewEngineService(engine Engine, drainTimeout time.Duration) *EngineService {
	if drainTimeout <= 0 {
		drainTimeout = 5 * time.Second
	}
	return &EngineService{
		engine:       engine,
		drainTimeout: drainTimeout,
		name:         "backup-engine",
	}
}

// Serve implements suture.Service.
// Repository initialization runs once, even if the service is restarted.
func (s *EngineService) Serve(ctx context.Context) error {
	s.initOnce.Do(func() {
		s.engine.EnsureRepository(ctx)
	})

	<-ctx.Done()

	drainCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.drainTimeout)
	defer cancel()
	if err := s.engine.Wait(drainCtx); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			logging.Warn().
				Str("component", s.name).
				Dur("drain_timeout", s.drainTimeout).
				Msg("shutting down with a backup or restore still running")
		}
	}
	s.engine.Close()
	return ctx.Err()
}

// String implements fmt.Stringer for suture logging
func (s *EngineService) String() string {
	return s.name
}
