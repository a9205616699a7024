// Dockvault - Docker Volume Backup Control Panel
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dockvault

package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/tomtom215/dockvault/internal/backup"
	"github.com/tomtom215/dockvault/internal/logging"
)

// Config holds all application configuration loaded from defaults, an
// optional YAML file and environment variables.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in defaults matching the container image layout
//  2. Config File: Optional YAML config file (config.yaml)
//  3. Environment Variables: Override any setting via environment variables
//
// Configuration Categories:
//
//  1. Backup tooling:
//     - Restic: binary and repository password
//     - Rclone: remote and folder backing the repository, rclone.conf path
//
//  2. Runtime:
//     - Paths: data directory, volumes root, settings file, restore target
//     - Engine: log retention, status reset delay, restic timeouts
//     - Schedule: in-process daily backup
//
//  3. Serving:
//     - Server: HTTP listener and timeouts
//     - Security: basic auth, CORS and rate limiting
//     - Logging: level, format, caller
//
// Example:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal("Failed to load config:", err)
//	}
//	engine, err := backup.NewEngine(cfg.BackupConfig(), nil, store)
//
// Thread Safety:
// Config is immutable after Load() and safe for concurrent read access.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Security SecurityConfig `koanf:"security"`
	Restic   ResticConfig   `koanf:"restic"`
	Rclone   RcloneConfig   `koanf:"rclone"`
	Paths    PathsConfig    `koanf:"paths"`
	Engine   EngineConfig   `koanf:"engine"`
	Schedule ScheduleConfig `koanf:"schedule"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig configures the HTTP listener
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// Timezone is reported on the config page only; scheduling uses the
	// process local time, which the container derives from TZ.
	Timezone string `koanf:"timezone"`
}

// Addr returns the listen address
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// SecurityConfig configures access control for the HTTP API
type SecurityConfig struct {
	// Basic auth is enforced only when both are set.
	// AuthPassword may be plain text or a bcrypt hash ($2a$, $2b$, $2y$).
	AuthUser     string `koanf:"auth_user"`
	AuthPassword string `koanf:"auth_password"`

	CORSOrigins []string `koanf:"cors_origins"`

	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`

	// StartRateLimitReqs limits backup/restore start requests per window
	StartRateLimitReqs int `koanf:"start_rate_limit_reqs"`
}

// AuthEnabled reports whether basic auth is configured
func (s SecurityConfig) AuthEnabled() bool {
	return s.AuthUser != "" && s.AuthPassword != ""
}

// ResticConfig configures the restic binary
type ResticConfig struct {
	Binary   string `koanf:"binary"`
	Password string `koanf:"password"`
}

// RcloneConfig configures the rclone remote used as restic backend
type RcloneConfig struct {
	Remote     string `koanf:"remote"`
	Folder     string `koanf:"folder"`
	ConfigPath string `koanf:"config_path"`
}

// PathsConfig holds filesystem locations
type PathsConfig struct {
	DataDir       string `koanf:"data_dir"`
	VolumesDir    string `koanf:"volumes_dir"`
	SettingsFile  string `koanf:"settings_file"`
	RestoreTarget string `koanf:"restore_target"`

	// How long measured volume sizes are reused before walking the volume again
	SizeCacheTTL time.Duration `koanf:"size_cache_ttl"`
}

// EngineConfig tunes the backup engine
type EngineConfig struct {
	LogCapacity      int           `koanf:"log_capacity"`
	ResetDelay       time.Duration `koanf:"reset_delay"`
	SnapshotTimeout  time.Duration `koanf:"snapshot_timeout"`
	RepoCheckTimeout time.Duration `koanf:"repo_check_timeout"`
	RepoInitTimeout  time.Duration `koanf:"repo_init_timeout"`
}

// ScheduleConfig configures the in-process daily backup.
// Whether a scheduled run actually happens is decided by the
// schedule_enabled setting at fire time.
type ScheduleConfig struct {
	Enabled       bool          `koanf:"enabled"`
	PreferredHour int           `koanf:"preferred_hour"`
	CheckInterval time.Duration `koanf:"check_interval"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	// Default: json
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	// Default: false
	Caller bool `koanf:"caller"`
}

// BackupConfig maps the application configuration onto the engine configuration
func (c *Config) BackupConfig() backup.Config {
	return backup.Config{
		Restic: backup.ResticConfig{
			Binary:   c.Restic.Binary,
			Password: c.Restic.Password,
		},
		Rclone: backup.RcloneConfig{
			Remote:     c.Rclone.Remote,
			Folder:     c.Rclone.Folder,
			ConfigPath: c.Rclone.ConfigPath,
		},
		VolumesDir:       c.Paths.VolumesDir,
		LogCapacity:      c.Engine.LogCapacity,
		ResetDelay:       c.Engine.ResetDelay,
		SnapshotTimeout:  c.Engine.SnapshotTimeout,
		RepoCheckTimeout: c.Engine.RepoCheckTimeout,
		RepoInitTimeout:  c.Engine.RepoInitTimeout,
		Schedule: backup.ScheduleConfig{
			Enabled:       c.Schedule.Enabled,
			PreferredHour: c.Schedule.PreferredHour,
			CheckInterval: c.Schedule.CheckInterval,
		},
	}
}

// LoggingSettings maps the logging section onto logging.Config
func (c *Config) LoggingSettings() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = c.Logging.Level
	cfg.Format = c.Logging.Format
	cfg.Caller = c.Logging.Caller
	return cfg
}

// SettingsPath returns the settings file, resolved against the data directory
// when relative.
func (c *Config) SettingsPath() string {
	if filepath.IsAbs(c.Paths.SettingsFile) {
		return c.Paths.SettingsFile
	}
	return filepath.Join(c.Paths.DataDir, c.Paths.SettingsFile)
}
