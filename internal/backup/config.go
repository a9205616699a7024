// Dockvault - Docker Volume Backup Control Panel
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dockvault

package backup

import (
	"fmt"
	"path/filepath"
	"time"
)

// Config holds all engine configuration.
// It is populated from the application config (see internal/config).
type Config struct {
	// Restic settings
	Restic ResticConfig

	// Rclone remote used as the restic backend
	Rclone RcloneConfig

	// Root directory that holds one subdirectory per Docker volume
	VolumesDir string

	// Maximum number of retained log entries
	LogCapacity int

	// Delay between the end of a run and the status reset
	ResetDelay time.Duration

	// Timeout for `restic snapshots --json`
	SnapshotTimeout time.Duration

	// Timeouts for repository probing and initialization
	RepoCheckTimeout time.Duration
	RepoInitTimeout  time.Duration

	// Scheduled backup settings
	Schedule ScheduleConfig
}

// ResticConfig configures the restic binary
type ResticConfig struct {
	// Binary name or absolute path
	Binary string

	// Repository password (RESTIC_PASSWORD)
	Password string
}

// RcloneConfig configures the rclone remote backing the repository
type RcloneConfig struct {
	// Remote name as defined in the rclone config file
	Remote string

	// Folder on the remote that holds the repository
	Folder string

	// Path to rclone.conf (RCLONE_CONFIG)
	ConfigPath string
}

// ScheduleConfig defines the daily backup schedule
type ScheduleConfig struct {
	// Enable the in-process scheduler
	Enabled bool

	// Hour of day (0-23) at which the daily backup runs
	PreferredHour int

	// How often the scheduler re-reads settings while waiting
	CheckInterval time.Duration
}

// DefaultConfig returns the configuration used when nothing is overridden
func DefaultConfig() Config {
	return Config{
		Restic: ResticConfig{
			Binary: "restic",
		},
		Rclone: RcloneConfig{
			Remote:     "onedrive",
			Folder:     "backup",
			ConfigPath: "/data/rclone.conf",
		},
		VolumesDir:       "/volumes",
		LogCapacity:      DefaultLogCapacity,
		ResetDelay:       5 * time.Second,
		SnapshotTimeout:  60 * time.Second,
		RepoCheckTimeout: 30 * time.Second,
		RepoInitTimeout:  60 * time.Second,
		Schedule: ScheduleConfig{
			Enabled:       true,
			PreferredHour: 2,
			CheckInterval: time.Minute,
		},
	}
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	if c.Restic.Binary == "" {
		return fmt.Errorf("restic binary is required")
	}
	if c.Rclone.Remote == "" {
		return fmt.Errorf("rclone remote is required")
	}
	if c.Rclone.Folder == "" {
		return fmt.Errorf("rclone folder is required")
	}
	if c.VolumesDir == "" {
		return fmt.Errorf("volumes directory is required")
	}
	if !filepath.IsAbs(c.VolumesDir) {
		return fmt.Errorf("volumes directory must be an absolute path, got: %s", c.VolumesDir)
	}
	if c.LogCapacity < 1 {
		return fmt.Errorf("log capacity must be at least 1, got: %d", c.LogCapacity)
	}
	if c.ResetDelay < 0 {
		return fmt.Errorf("reset delay must not be negative, got: %s", c.ResetDelay)
	}
	if c.SnapshotTimeout <= 0 {
		return fmt.Errorf("snapshot timeout must be positive, got: %s", c.SnapshotTimeout)
	}
	if c.RepoCheckTimeout <= 0 || c.RepoInitTimeout <= 0 {
		return fmt.Errorf("repository timeouts must be positive")
	}
	if c.Schedule.Enabled {
		if c.Schedule.PreferredHour < 0 || c.Schedule.PreferredHour > 23 {
			return fmt.Errorf("schedule preferred hour must be between 0 and 23, got: %d", c.Schedule.PreferredHour)
		}
		if c.Schedule.CheckInterval < time.Second {
			return fmt.Errorf("schedule check interval must be at least 1s, got: %s", c.Schedule.CheckInterval)
		}
	}
	return nil
}
