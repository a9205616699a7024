// Dockvault - Docker Volume Backup Control Panel
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dockvault

// Package backup implements the backup and restore orchestration engine that
// drives restic against an rclone remote.
//
// # Overview
//
// The engine launches restic as a subprocess, streams its combined output line
// by line, derives a progress estimate from that output and exposes a
// consistent status snapshot to any number of concurrent readers. At most one
// backup or restore runs at a time.
//
// # Architecture
//
//	Engine              - Owns the status state and the log buffer; runs operations
//	Environment         - Resolves RESTIC_REPOSITORY, RESTIC_PASSWORD, RCLONE_CONFIG
//	Runner              - Executes restic (ExecRunner in production)
//	ProgressInterpreter - Turns output lines into progress (one per operation)
//	LogBuffer           - Bounded, insertion-ordered log history (1000 entries)
//	Scheduler           - Daily backup at a preferred hour (suture service)
//
// # Status Lifecycle
//
//	idle -> running -> success -> (ResetDelay) -> idle
//	             \---> error   -> (ResetDelay) -> error, progress cleared
//
// A start request while running is rejected and logged at WARNING level; it
// never queues and never changes the status of the run in flight.
//
// # Progress Estimation
//
// restic's human-readable output carries no total, so progress is a heuristic:
//
//	Backup:  "processed ... N files"   +clamp(N/100, 1, 5), capped at 85
//	         "backed up" / "snapshot"  +10, capped at 95
//	         "uploading"               message only
//	Restore: "restored ... N files"    +clamp(N/50, 1, 5), capped at 90
//	         "downloading"             message only
//
// Preparation sets progress to 25 before restic starts and success sets 100.
// Progress never decreases within a run.
//
// # Usage
//
//	engine, err := backup.NewEngine(cfg, nil, settingsStore)
//	if err != nil {
//		return err
//	}
//	engine.EnsureRepository(ctx)
//
//	if err := engine.StartBackup(ctx, []string{"postgres_data"}); errors.Is(err, backup.ErrAdmissionRejected) {
//		// another operation is running
//	}
//
//	status := engine.GetStatus()
//	logs := engine.GetRecentLogs(50)
//
// # Thread Safety
//
// All exported Engine methods are safe for concurrent use. Status and log
// reads never block on a running restic process.
package backup
