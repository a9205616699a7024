// Dockvault - Docker Volume Backup Control Panel
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dockvault

/*
status.go - Engine Status State

The status state is the single record of what the engine is doing. It is read
by every HTTP handler and websocket tick while the active run mutates it, so
all access goes through one mutex with short critical sections. Nothing in
this file performs I/O while holding the lock.

Lifecycle:

	idle ──admit──▶ running ──exit 0──▶ success ──reset──▶ idle
	                   │
	                   └──failure──▶ error (kept until the next run)

Admission is the only concurrency control: a second start while running is
rejected without touching the state.
*/

//nolint:staticcheck // File documentation, not package doc
package backup

import (
	"sync"
	"time"
)

// estimateThreshold is the progress above which a completion estimate is reported
const estimateThreshold = 5

// statusState holds the mutable engine status
type statusState struct {
	mu        sync.Mutex
	status    OperationStatus
	operation OperationKind
	progress  int
	message   string
	startTime *time.Time
}

func newStatusState() *statusState {
	return &statusState{status: StatusIdle}
}

// admit transitions to running unless an operation is already in flight.
// Returns false when the caller must back off.
func (s *statusState) admit(op OperationKind, message string, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status == StatusRunning {
		return false
	}

	s.status = StatusRunning
	s.operation = op
	s.progress = 0
	s.message = message
	started := now
	s.startTime = &started
	return true
}

// setProgress updates progress and message of the running operation
func (s *statusState) setProgress(progress int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress = progress
	s.message = message
}

// apply merges an interpreter update into the running operation.
// The update is computed from the progress read in the same critical section.
func (s *statusState) apply(interp ProgressInterpreter, line string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	update := interp.Interpret(line, s.progress)
	if update.Progress > s.progress {
		s.progress = update.Progress
	}
	if update.Message != "" {
		s.message = update.Message
	}
	return s.progress, update.Matched
}

// succeed marks the running operation as completed
func (s *statusState) succeed(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = StatusSuccess
	s.progress = 100
	s.message = message
}

// fail marks the running operation as failed; progress is left as reached
func (s *statusState) fail(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = StatusError
	s.message = message
}

// reset clears a finished operation. A running operation is never touched:
// a timer from an earlier run may fire after a new run was admitted.
func (s *statusState) reset() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status == StatusRunning {
		return false
	}

	s.operation = OperationNone
	s.progress = 0
	s.startTime = nil
	if s.status == StatusSuccess {
		s.status = StatusIdle
		s.message = ""
	}
	return true
}

// isRunning reports whether an operation is in flight
func (s *statusState) isRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status == StatusRunning
}

// snapshot copies the state and derives the completion estimate
func (s *statusState) snapshot(now time.Time) StatusSnapshot {
	s.mu.Lock()
	snap := StatusSnapshot{
		Status:    s.status,
		Operation: s.operation,
		Progress:  s.progress,
		Message:   s.message,
	}
	if s.startTime != nil {
		started := *s.startTime
		snap.StartTime = &started
	}
	s.mu.Unlock()

	if snap.Status == StatusRunning && snap.StartTime != nil && snap.Progress > estimateThreshold {
		eta := estimateCompletion(*snap.StartTime, snap.Progress, now)
		snap.EstimatedCompletion = &eta
	}
	return snap
}

// estimateCompletion extrapolates linearly from elapsed time and progress:
// remaining = elapsed*(100/progress) - elapsed
func estimateCompletion(start time.Time, progress int, now time.Time) time.Time {
	elapsed := now.Sub(start)
	total := time.Duration(float64(elapsed) * (100 / float64(progress)))
	return now.Add(total - elapsed)
}
