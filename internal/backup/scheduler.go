// Dockvault - Docker Volume Backup Control Panel
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dockvault

/*
scheduler.go - Daily Backup Scheduling

The scheduler runs one backup per day at the configured hour using the volumes
selected in the settings store. It is a suture service: Serve blocks until the
supervisor cancels its context.

Timer Logic:
  - The next run is the next occurrence of PreferredHour:00 strictly after now
  - A ticker re-checks every CheckInterval, so wall-clock jumps (suspend,
    NTP corrections) delay a run by at most one interval
  - Settings are read at fire time; toggling schedule_enabled or changing the
    selection takes effect without a restart

Skip Conditions (mirroring the one-shot cron command):
  - schedule_enabled is false
  - no volumes are selected
  - RESTIC_PASSWORD is not configured
*/

//nolint:staticcheck // File documentation, not package doc
package backup

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/tomtom215/dockvault/internal/logging"
	"github.com/tomtom215/dockvault/internal/metrics"
)

// Reasons a scheduled backup is skipped
var (
	ErrScheduleDisabled = errors.New("scheduled backups are disabled")
	ErrNothingSelected  = errors.New("no volumes selected for backup")
	ErrPasswordMissing  = errors.New("RESTIC_PASSWORD not set")
)

// ScheduleSource provides the user-editable schedule settings
type ScheduleSource interface {
	ScheduleEnabled() bool
	SelectedVolumes() []string
}

// Scheduler triggers the daily backup
type Scheduler struct {
	engine *Engine
	source ScheduleSource
	cfg    ScheduleConfig
	now    func() time.Time

	mu      sync.RWMutex
	nextRun time.Time
	lastRun *time.Time
}

// NewScheduler creates a scheduler for engine driven by source
func NewScheduler(engine *Engine, source ScheduleSource, cfg ScheduleConfig) *Scheduler {
	return &Scheduler{
		engine: engine,
		source: source,
		cfg:    cfg,
		now:    time.Now,
	}
}

// Serve implements suture.Service
func (s *Scheduler) Serve(ctx context.Context) error {
	log := logging.WithComponent("scheduler")

	next := NextRunAfter(s.now(), s.cfg.PreferredHour)
	s.setNextRun(next)
	log.Info().Time("next_run", next).Msg("Backup scheduler started")

	ticker := time.NewTicker(s.cfg.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Backup scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			now := s.now()
			if now.Before(next) {
				continue
			}

			if err := s.RunScheduled(ctx); err != nil {
				log.Info().Err(err).Msg("Scheduled backup skipped")
			}

			next = NextRunAfter(s.now(), s.cfg.PreferredHour)
			s.setNextRun(next)
			log.Info().Time("next_run", next).Msg("Next scheduled backup")
		}
	}
}

// String implements fmt.Stringer for suture logging
func (s *Scheduler) String() string {
	return "backup-scheduler"
}

// RunScheduled performs one scheduled backup if the settings allow it and
// blocks until the run is over. The returned error only describes why the run
// was skipped; the run's own outcome is reported through the engine status.
func (s *Scheduler) RunScheduled(ctx context.Context) error {
	if err := s.Runnable(); err != nil {
		metrics.RecordScheduledRun("skipped")
		return err
	}
	volumes := s.source.SelectedVolumes()

	started := s.now()
	s.mu.Lock()
	s.lastRun = &started
	s.mu.Unlock()

	metrics.RecordScheduledRun("started")
	log := logging.WithComponent("scheduler")
	log.Info().
		Strs("volumes", volumes).
		Msg("Starting scheduled backup of " + strings.Join(volumes, ", "))

	s.engine.RunBackup(ctx, volumes)
	return nil
}

// Runnable reports why a scheduled backup would be skipped, or nil
func (s *Scheduler) Runnable() error {
	if !s.source.ScheduleEnabled() {
		return ErrScheduleDisabled
	}
	if len(s.source.SelectedVolumes()) == 0 {
		return ErrNothingSelected
	}
	if !s.engine.Environment().HasPassword() {
		return ErrPasswordMissing
	}
	return nil
}

// NextRun returns the time of the next scheduled backup, or zero before Serve
func (s *Scheduler) NextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nextRun
}

// LastRun returns when the scheduler last started a backup
func (s *Scheduler) LastRun() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.lastRun == nil {
		return nil
	}
	t := *s.lastRun
	return &t
}

func (s *Scheduler) setNextRun(t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextRun = t
}

// NextRunAfter returns the next occurrence of hour:00 strictly after now,
// in now's location.
func NextRunAfter(now time.Time, hour int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = time.Date(now.Year(), now.Month(), now.Day()+1, hour, 0, 0, 0, now.Location())
	}
	return next
}
