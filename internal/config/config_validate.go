// Dockvault - Docker Volume Backup Control Panel
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dockvault

package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/tomtom215/dockvault/internal/logging"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateSecurity(); err != nil {
		return err
	}

	if err := c.validatePaths(); err != nil {
		return err
	}

	if err := c.validateBackup(); err != nil {
		return err
	}

	return c.validateLogging()
}

// validateServer validates the HTTP listener settings
func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("HTTP read and write timeouts must be positive")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("HTTP_SHUTDOWN_TIMEOUT must be positive")
	}
	return nil
}

// validateSecurity validates basic auth and rate limiting settings
func (c *Config) validateSecurity() error {
	userSet := c.Security.AuthUser != ""
	passSet := c.Security.AuthPassword != ""
	if userSet != passSet {
		return fmt.Errorf("AUTH_USER and AUTH_PASSWORD must be set together")
	}

	if !c.Security.RateLimitDisabled {
		if c.Security.RateLimitReqs < 1 {
			return fmt.Errorf("RATE_LIMIT_REQUESTS must be at least 1, got %d", c.Security.RateLimitReqs)
		}
		if c.Security.RateLimitWindow <= 0 {
			return fmt.Errorf("RATE_LIMIT_WINDOW must be positive")
		}
		if c.Security.StartRateLimitReqs < 1 {
			return fmt.Errorf("START_RATE_LIMIT_REQUESTS must be at least 1, got %d", c.Security.StartRateLimitReqs)
		}
	}
	return nil
}

// validatePaths requires absolute paths for everything the engine touches
func (c *Config) validatePaths() error {
	paths := map[string]string{
		"DATA_DIR":       c.Paths.DataDir,
		"VOLUMES_DIR":    c.Paths.VolumesDir,
		"RESTORE_TARGET": c.Paths.RestoreTarget,
	}
	for name, path := range paths {
		if path == "" {
			return fmt.Errorf("%s is required", name)
		}
		if !filepath.IsAbs(path) {
			return fmt.Errorf("%s must be an absolute path, got: %s", name, path)
		}
	}
	if strings.TrimSpace(c.Paths.SettingsFile) == "" {
		return fmt.Errorf("SETTINGS_FILE is required")
	}
	if c.Paths.SizeCacheTTL < 0 {
		return fmt.Errorf("VOLUME_SIZE_CACHE_TTL must not be negative, got: %s", c.Paths.SizeCacheTTL)
	}
	return nil
}

// validateBackup delegates engine settings to the engine's own validation
func (c *Config) validateBackup() error {
	cfg := c.BackupConfig()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("backup configuration invalid: %w", err)
	}
	return nil
}

// validateLogging validates the log level and format
func (c *Config) validateLogging() error {
	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("LOG_LEVEL %q is not a valid level", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
		return nil
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
}
