// Dockvault - Docker Volume Backup Control Panel
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dockvault

package models

import (
	"time"

	"github.com/tomtom215/dockvault/internal/backup"
	"github.com/tomtom215/dockvault/internal/settings"
	"github.com/tomtom215/dockvault/internal/volumes"
)

// DashboardResponse aggregates everything the main page shows
type DashboardResponse struct {
	Volumes    []volumes.Volume      `json:"volumes"`
	Status     backup.StatusSnapshot `json:"status"`
	Settings   settings.Settings     `json:"settings"`
	LastBackup *time.Time            `json:"last_backup,omitempty"`

	// Next scheduled run; omitted when the scheduler is disabled
	NextBackup *time.Time `json:"next_backup,omitempty"`
}

// LogsResponse wraps recent engine log entries, oldest first
type LogsResponse struct {
	Logs  []backup.LogEntry `json:"logs"`
	Count int               `json:"count"`
}

// SnapshotsResponse wraps the repository snapshot listing
type SnapshotsResponse struct {
	Snapshots []backup.Snapshot `json:"snapshots"`
	Count     int               `json:"count"`
}

// EnvironmentInfo reports which environment settings are in effect.
// Secrets are reported by presence only.
type EnvironmentInfo struct {
	ResticPasswordSet bool   `json:"restic_password_set"`
	ResticRepository  string `json:"restic_repository"`
	RcloneRemote      string `json:"rclone_remote"`
	RcloneFolder      string `json:"rclone_folder"`
	Timezone          string `json:"timezone"`
	VolumesDir        string `json:"volumes_dir"`
	RestoreTarget     string `json:"restore_target"`
	AuthEnabled       bool   `json:"auth_enabled"`
	SchedulerEnabled  bool   `json:"scheduler_enabled"`
	BackupHour        int    `json:"backup_hour"`
}

// ConfigResponse combines persisted settings and environment info
type ConfigResponse struct {
	Settings    settings.Settings `json:"settings"`
	Environment EnvironmentInfo   `json:"environment"`
}

// HealthResponse is returned by the health endpoints
type HealthResponse struct {
	Status  string            `json:"status"`
	Version string            `json:"version,omitempty"`
	Uptime  string            `json:"uptime,omitempty"`
	Checks  map[string]string `json:"checks,omitempty"`
}
