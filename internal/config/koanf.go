// Dockvault - Docker Volume Backup Control Panel
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dockvault

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/dockvault/config.yaml",
	"/etc/dockvault/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            5000,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     120 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			Timezone:        "UTC",
		},
		Security: SecurityConfig{
			AuthUser:           "",
			AuthPassword:       "",
			CORSOrigins:        []string{"*"},
			RateLimitReqs:      100,
			RateLimitWindow:    time.Minute,
			RateLimitDisabled:  false,
			StartRateLimitReqs: 10,
		},
		Restic: ResticConfig{
			Binary:   "restic",
			Password: "",
		},
		Rclone: RcloneConfig{
			Remote:     "onedrive",
			Folder:     "backup",
			ConfigPath: "/data/rclone.conf",
		},
		Paths: PathsConfig{
			DataDir:       "/data",
			VolumesDir:    "/volumes",
			SettingsFile:  "/data/config.json",
			RestoreTarget: "/data/restore",
			SizeCacheTTL:  5 * time.Minute,
		},
		Engine: EngineConfig{
			LogCapacity:      1000,
			ResetDelay:       5 * time.Second,
			SnapshotTimeout:  60 * time.Second,
			RepoCheckTimeout: 30 * time.Second,
			RepoInitTimeout:  60 * time.Second,
		},
		Schedule: ScheduleConfig{
			Enabled:       true,
			PreferredHour: 2,
			CheckInterval: time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Load loads and validates the application configuration
func Load() (*Config, error) {
	return LoadWithKoanf()
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any setting
//
// Precedence is ENV > File > Defaults.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	// RESTIC_PASSWORD -> restic.password, RCLONE_REMOTE -> rclone.remote
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Post-process slice fields from comma-separated strings
	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars come in as strings, but the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		// Already a slice (defaults or YAML)
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}

		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps environment variable names (lower case) to koanf paths.
// The restic/rclone names are the ones the container image has always used.
var envMappings = map[string]string{
	// Server
	"http_host":             "server.host",
	"http_port":             "server.port",
	"http_read_timeout":     "server.read_timeout",
	"http_write_timeout":    "server.write_timeout",
	"http_idle_timeout":     "server.idle_timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",
	"tz":                    "server.timezone",

	// Security
	"auth_user":                 "security.auth_user",
	"auth_password":             "security.auth_password",
	"cors_origins":              "security.cors_origins",
	"rate_limit_requests":       "security.rate_limit_reqs",
	"rate_limit_window":         "security.rate_limit_window",
	"disable_rate_limit":        "security.rate_limit_disabled",
	"start_rate_limit_requests": "security.start_rate_limit_reqs",

	// Restic
	"restic_binary":   "restic.binary",
	"restic_password": "restic.password",

	// Rclone
	"rclone_remote": "rclone.remote",
	"rclone_folder": "rclone.folder",
	"rclone_config": "rclone.config_path",

	// Paths
	"data_dir":              "paths.data_dir",
	"volumes_dir":           "paths.volumes_dir",
	"settings_file":         "paths.settings_file",
	"restore_target":        "paths.restore_target",
	"volume_size_cache_ttl": "paths.size_cache_ttl",

	// Engine
	"log_capacity":       "engine.log_capacity",
	"status_reset_delay": "engine.reset_delay",
	"snapshot_timeout":   "engine.snapshot_timeout",
	"repo_check_timeout": "engine.repo_check_timeout",
	"repo_init_timeout":  "engine.repo_init_timeout",

	// Schedule
	"scheduler_enabled":       "schedule.enabled",
	"backup_hour":             "schedule.preferred_hour",
	"schedule_check_interval": "schedule.check_interval",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc transforms environment variable names to koanf config paths.
// Unmapped keys return an empty string and are skipped, which keeps unrelated
// environment variables (RESTIC_REPOSITORY included) out of the config.
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}
