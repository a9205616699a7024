// Dockvault - Docker Volume Backup Control Panel
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dockvault

/*
engine.go - Backup/Restore Orchestration Engine

The Engine owns the status state and the log buffer for the lifetime of the
process. One instance is built in main and injected into the API, the
scheduler and the one-shot cron command.

Run Lifecycle:
 1. Admission: a start while another run is in flight is rejected with a
    WARNING log entry and leaves the status untouched
 2. Preparation: volume paths are resolved or the target directory created
 3. Execution: restic runs with combined output streamed line by line; each
    line is logged and fed to the operation's ProgressInterpreter
 4. Completion: exit code 0 becomes success, anything else becomes error
 5. Reset: ResetDelay later, a finished run is cleared (success becomes idle,
    error stays error)

RunBackup and RunRestore block until the run is over and never return an
error; failures surface only through GetStatus and GetRecentLogs. Callers that
want fire-and-forget behaviour use StartBackup and StartRestore.

Known limitation: a started run cannot be cancelled and restic is given no
deadline. A hung restic keeps the engine in the running state.
*/

//nolint:staticcheck // File documentation, not package doc
package backup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/tomtom215/dockvault/internal/logging"
	"github.com/tomtom215/dockvault/internal/metrics"
)

// LastBackupRecorder persists the time of the last successful backup
type LastBackupRecorder interface {
	SetLastBackup(t time.Time) error
}

// Engine orchestrates restic backup and restore runs
type Engine struct {
	cfg      Config
	env      *Environment
	runner   Runner
	recorder LastBackupRecorder

	state *statusState
	logs  *LogBuffer
	now   func() time.Time

	// Deferred reset of a finished run
	resetMu    sync.Mutex
	resetTimer *time.Timer

	// Guards `restic snapshots --json` against an unreachable remote
	breaker *gobreaker.CircuitBreaker[[]byte]

	// In-flight runs started through StartBackup/StartRestore
	runs sync.WaitGroup

	// Callbacks
	callbackMu     sync.RWMutex
	onStatusChange func(StatusSnapshot)
	onLog          func(LogEntry)
}

// NewEngine creates an engine. A nil runner selects ExecRunner; a nil
// recorder disables last-backup persistence.
func NewEngine(cfg Config, runner Runner, recorder LastBackupRecorder) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid engine configuration: %w", err)
	}
	if runner == nil {
		runner = NewExecRunner()
	}

	e := &Engine{
		cfg:      cfg,
		env:      NewEnvironment(cfg),
		runner:   runner,
		recorder: recorder,
		state:    newStatusState(),
		logs:     NewLogBuffer(cfg.LogCapacity),
		now:      time.Now,
	}
	e.breaker = newSnapshotBreaker()
	return e, nil
}

// SetOnStatusChange registers a callback invoked after every status mutation.
// The callback runs on the mutating goroutine and must not block.
func (e *Engine) SetOnStatusChange(fn func(StatusSnapshot)) {
	e.callbackMu.Lock()
	defer e.callbackMu.Unlock()
	e.onStatusChange = fn
}

// SetOnLog registers a callback invoked for every appended log entry.
// The callback runs on the logging goroutine and must not block.
func (e *Engine) SetOnLog(fn func(LogEntry)) {
	e.callbackMu.Lock()
	defer e.callbackMu.Unlock()
	e.onLog = fn
}

// Environment returns the resolved restic environment
func (e *Engine) Environment() *Environment {
	return e.env
}

// Config returns the engine configuration
func (e *Engine) Config() Config {
	return e.cfg
}

// GetStatus returns a consistent copy of the current status
func (e *Engine) GetStatus() StatusSnapshot {
	return e.state.snapshot(e.now())
}

// IsRunning reports whether a backup or restore is in flight
func (e *Engine) IsRunning() bool {
	return e.state.isRunning()
}

// GetRecentLogs returns up to limit of the newest log entries, oldest first
func (e *Engine) GetRecentLogs(limit int) []LogEntry {
	return e.logs.Recent(limit)
}

// RunBackup backs up the named volumes and blocks until the run is over
func (e *Engine) RunBackup(ctx context.Context, volumes []string) {
	if !e.admit(OperationBackup, "Preparing backup...", "Backup already running") {
		return
	}
	e.runBackup(ctx, volumes)
}

// StartBackup admits a backup and runs it on a new goroutine.
// Returns ErrAdmissionRejected when another operation is running.
func (e *Engine) StartBackup(ctx context.Context, volumes []string) error {
	if !e.admit(OperationBackup, "Preparing backup...", "Backup already running") {
		return ErrAdmissionRejected
	}
	volumes = append([]string(nil), volumes...)
	e.runs.Add(1)
	go func() {
		defer e.runs.Done()
		e.runBackup(ctx, volumes)
	}()
	return nil
}

// RunRestore restores a snapshot into targetPath and blocks until the run is over
func (e *Engine) RunRestore(ctx context.Context, snapshotID, targetPath string) {
	if !e.admit(OperationRestore, "Preparing restore...", "Operation already running") {
		return
	}
	e.runRestore(ctx, snapshotID, targetPath)
}

// StartRestore admits a restore and runs it on a new goroutine.
// Returns ErrAdmissionRejected when another operation is running.
func (e *Engine) StartRestore(ctx context.Context, snapshotID, targetPath string) error {
	if !e.admit(OperationRestore, "Preparing restore...", "Operation already running") {
		return ErrAdmissionRejected
	}
	e.runs.Add(1)
	go func() {
		defer e.runs.Done()
		e.runRestore(ctx, snapshotID, targetPath)
	}()
	return nil
}

// Wait blocks until runs started with StartBackup/StartRestore have finished
// or ctx is done.
func (e *Engine) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		e.runs.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops a pending status reset
func (e *Engine) Close() {
	e.stopReset()
}

// admit performs admission control for a new run
func (e *Engine) admit(op OperationKind, message, rejected string) bool {
	if !e.state.admit(op, message, e.now()) {
		e.log(LevelWarning, rejected)
		metrics.RecordAdmissionRejected(string(op))
		return false
	}
	// A reset left over from the previous run would be a no-op anyway
	e.stopReset()
	metrics.RecordOperationStart()
	e.notifyStatus()
	return true
}

func (e *Engine) runBackup(ctx context.Context, volumes []string) {
	ctx = logging.ContextWithRunID(context.WithoutCancel(ctx), logging.GenerateRunID())
	start := e.now()

	err := e.executeBackup(ctx, volumes, start)
	e.finish(ctx, OperationBackup, start, err, "Backup completed successfully")

	if err == nil {
		e.recordLastBackup(ctx)
	}
}

func (e *Engine) executeBackup(ctx context.Context, volumes []string, start time.Time) error {
	e.log(LevelInfo, "Starting backup for volumes: "+strings.Join(volumes, ", "))

	paths := make([]string, 0, len(volumes))
	for _, volume := range volumes {
		if !ValidVolumeName(volume) {
			e.log(LevelWarning, "Invalid volume name: "+volume)
			continue
		}
		path := filepath.Join(e.cfg.VolumesDir, volume)
		if _, err := os.Stat(path); err != nil {
			e.log(LevelWarning, "Volume path not found: "+path)
			continue
		}
		paths = append(paths, path)
	}
	if len(paths) == 0 {
		return ErrNoValidPaths
	}

	e.state.setProgress(25, "Running backup...")
	metrics.RecordProgress(25)
	e.notifyStatus()

	args := make([]string, 0, len(paths)+5)
	args = append(args, "backup")
	args = append(args, paths...)
	args = append(args, "--tag", SourceTag, "--tag", DateTag(start))

	return e.stream(ctx, OperationBackup, Command{
		Name: e.cfg.Restic.Binary,
		Args: args,
		Env:  e.env.Vars(),
	})
}

func (e *Engine) runRestore(ctx context.Context, snapshotID, targetPath string) {
	ctx = logging.ContextWithRunID(context.WithoutCancel(ctx), logging.GenerateRunID())
	start := e.now()

	err := e.executeRestore(ctx, snapshotID, targetPath)
	e.finish(ctx, OperationRestore, start, err, "Restore completed successfully to "+targetPath)
}

func (e *Engine) executeRestore(ctx context.Context, snapshotID, targetPath string) error {
	e.log(LevelInfo, fmt.Sprintf("Starting restore of snapshot %s to %s", snapshotID, targetPath))

	if err := os.MkdirAll(targetPath, 0o755); err != nil { //nolint:gosec // restored files must stay readable by other containers
		return fmt.Errorf("failed to create restore target %s: %w", targetPath, err)
	}

	e.state.setProgress(25, "Running restore...")
	metrics.RecordProgress(25)
	e.notifyStatus()

	return e.stream(ctx, OperationRestore, Command{
		Name: e.cfg.Restic.Binary,
		Args: []string{"restore", snapshotID, "--target", targetPath},
		Env:  e.env.Vars(),
	})
}

// stream runs cmd and folds its output into the log and the status
func (e *Engine) stream(ctx context.Context, op OperationKind, cmd Command) error {
	e.log(LevelInfo, "Running command: "+cmd.String())
	logging.Ctx(ctx).Debug().Strs("env", logging.RedactEnv(e.env.Overrides())).Msg("restic environment")

	interp := interpreterFor(op)
	var lastLine string

	exitCode, err := e.runner.Stream(ctx, cmd, func(raw string) {
		line := strings.TrimSpace(raw)
		if line == "" {
			return
		}
		lastLine = line
		e.log(LevelInfo, "Restic: "+line)
		metrics.RecordOutputLine(string(op))

		progress, matched := e.state.apply(interp, line)
		if matched {
			metrics.RecordProgress(progress)
			e.notifyStatus()
		}
	})
	if err != nil {
		return err
	}
	if exitCode != 0 {
		return &ProcessError{Operation: op, ExitCode: exitCode, LastLine: lastLine}
	}
	return nil
}

// finish converts the run outcome into status and log updates and arms the reset
func (e *Engine) finish(ctx context.Context, op OperationKind, start time.Time, err error, successMsg string) {
	duration := e.now().Sub(start)
	metrics.RecordOperationEnd(string(op), duration, err)

	if err == nil {
		e.state.succeed(successMsg)
		e.log(LevelInfo, successMsg)
		logging.Ctx(ctx).Info().Str("operation", string(op)).Dur("duration", duration).Msg("Run finished")
	} else {
		e.state.fail(err.Error())
		e.log(LevelError, fmt.Sprintf("%s failed: %v", capitalize(string(op)), err))
		logging.Ctx(ctx).Error().Err(err).Str("operation", string(op)).Dur("duration", duration).Msg("Run failed")
	}
	e.notifyStatus()
	e.scheduleReset()
}

func (e *Engine) recordLastBackup(ctx context.Context) {
	completed := e.now()
	metrics.RecordLastBackup(completed)
	if e.recorder == nil {
		return
	}
	if err := e.recorder.SetLastBackup(completed); err != nil {
		e.log(LevelError, fmt.Sprintf("Failed to update last backup time: %v", fmt.Errorf("%w: %w", ErrCollateral, err)))
		logging.Ctx(ctx).Error().Err(err).Msg("Failed to persist last backup time")
	}
}

// scheduleReset arms the deferred reset, replacing any pending one
func (e *Engine) scheduleReset() {
	e.resetMu.Lock()
	defer e.resetMu.Unlock()

	if e.resetTimer != nil {
		e.resetTimer.Stop()
	}
	e.resetTimer = time.AfterFunc(e.cfg.ResetDelay, func() {
		if e.state.reset() {
			e.notifyStatus()
		}
	})
}

func (e *Engine) stopReset() {
	e.resetMu.Lock()
	defer e.resetMu.Unlock()

	if e.resetTimer != nil {
		e.resetTimer.Stop()
		e.resetTimer = nil
	}
}

// log appends an entry to the buffer and mirrors it to the process logger
func (e *Engine) log(level LogLevel, message string) {
	entry := LogEntry{
		Timestamp: e.now().Format(time.RFC3339Nano),
		Level:     level,
		Message:   message,
	}
	e.logs.Append(entry)

	switch level {
	case LevelError:
		logging.Error().Str("component", "engine").Msg(message)
	case LevelWarning:
		logging.Warn().Str("component", "engine").Msg(message)
	default:
		logging.Info().Str("component", "engine").Msg(message)
	}

	e.callbackMu.RLock()
	fn := e.onLog
	e.callbackMu.RUnlock()
	if fn != nil {
		fn(entry)
	}
}

func (e *Engine) notifyStatus() {
	e.callbackMu.RLock()
	fn := e.onStatusChange
	e.callbackMu.RUnlock()
	if fn != nil {
		fn(e.GetStatus())
	}
}

// ValidVolumeName reports whether name is a single path element that cannot
// escape the volumes root
func ValidVolumeName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`)
}
