// Dockvault - Docker Volume Backup Control Panel
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dockvault

package backup

import (
	"time"
)

// OperationStatus represents the lifecycle phase of the engine
type OperationStatus string

const (
	// StatusIdle indicates no operation is running and no result is displayed
	StatusIdle OperationStatus = "idle"

	// StatusRunning indicates a backup or restore is in flight
	StatusRunning OperationStatus = "running"

	// StatusSuccess indicates the last operation finished successfully
	StatusSuccess OperationStatus = "success"

	// StatusError indicates the last operation failed
	StatusError OperationStatus = "error"
)

// OperationKind identifies which operation the engine is executing
type OperationKind string

const (
	// OperationNone is reported when no operation is tracked
	OperationNone OperationKind = ""

	// OperationBackup is a restic backup of selected volumes
	OperationBackup OperationKind = "backup"

	// OperationRestore is a restic restore of a snapshot into a target directory
	OperationRestore OperationKind = "restore"
)

// StatusSnapshot is a point-in-time copy of the engine status.
// It never aliases engine state and can be handed to any number of readers.
type StatusSnapshot struct {
	// Current lifecycle phase
	Status OperationStatus `json:"status"`

	// Operation being tracked (empty when none)
	Operation OperationKind `json:"operation,omitempty"`

	// Heuristic completion percentage (0-100)
	Progress int `json:"progress"`

	// Human readable progress or failure message
	Message string `json:"message"`

	// When the tracked operation started
	StartTime *time.Time `json:"start_time,omitempty"`

	// Estimated completion, only reported once progress is above 5%
	EstimatedCompletion *time.Time `json:"estimated_completion,omitempty"`
}

// LogLevel is the severity of an engine log entry
type LogLevel string

const (
	LevelInfo    LogLevel = "INFO"
	LevelWarning LogLevel = "WARNING"
	LevelError   LogLevel = "ERROR"
)

// LogEntry is a single immutable engine log record
type LogEntry struct {
	// ISO-8601 timestamp of when the entry was recorded
	Timestamp string `json:"timestamp"`

	// Severity of the entry
	Level LogLevel `json:"level"`

	// Log message
	Message string `json:"message"`
}

// Snapshot is the display projection of a restic snapshot
type Snapshot struct {
	ID       string   `json:"id"`
	Time     string   `json:"time"`
	Hostname string   `json:"hostname"`
	Paths    []string `json:"paths"`
	Tags     []string `json:"tags"`
}

// Volume tag values attached to every backup snapshot
const (
	// SourceTag marks snapshots created by this engine
	SourceTag = "docker-volumes"

	// dateTagLayout formats the per-day tag (backup-2006-01-02)
	dateTagLayout = "2006-01-02"
)

// DateTag returns the per-day tag attached to a backup started at t
func DateTag(t time.Time) string {
	return "backup-" + t.Format(dateTagLayout)
}
