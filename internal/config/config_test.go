// Dockvault - Docker Volume Backup Control Panel
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dockvault

package config

import (
	"strings"
	"testing"
	"time"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(c *Config)
		wantErr string
	}{
		{name: "defaults", modify: func(c *Config) {}},
		{name: "port zero", modify: func(c *Config) { c.Server.Port = 0 }, wantErr: "HTTP_PORT"},
		{name: "zero read timeout", modify: func(c *Config) { c.Server.ReadTimeout = 0 }, wantErr: "timeouts"},
		{name: "password without user", modify: func(c *Config) { c.Security.AuthPassword = "x" }, wantErr: "AUTH_USER"},
		{
			name: "both credentials",
			modify: func(c *Config) {
				c.Security.AuthUser = "admin"
				c.Security.AuthPassword = "x"
			},
		},
		{name: "zero rate limit", modify: func(c *Config) { c.Security.RateLimitReqs = 0 }, wantErr: "RATE_LIMIT_REQUESTS"},
		{
			name: "rate limit disabled skips limits",
			modify: func(c *Config) {
				c.Security.RateLimitDisabled = true
				c.Security.RateLimitReqs = 0
			},
		},
		{name: "empty data dir", modify: func(c *Config) { c.Paths.DataDir = "" }, wantErr: "DATA_DIR"},
		{name: "relative restore target", modify: func(c *Config) { c.Paths.RestoreTarget = "restore" }, wantErr: "RESTORE_TARGET"},
		{name: "negative size cache ttl", modify: func(c *Config) { c.Paths.SizeCacheTTL = -time.Second }, wantErr: "VOLUME_SIZE_CACHE_TTL"},
		{name: "empty settings file", modify: func(c *Config) { c.Paths.SettingsFile = " " }, wantErr: "SETTINGS_FILE"},
		{name: "empty remote", modify: func(c *Config) { c.Rclone.Remote = "" }, wantErr: "backup configuration invalid"},
		{name: "negative reset delay", modify: func(c *Config) { c.Engine.ResetDelay = -time.Second }, wantErr: "reset delay"},
		{name: "invalid level", modify: func(c *Config) { c.Logging.Level = "chatty" }, wantErr: "LOG_LEVEL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_BackupConfig(t *testing.T) {
	cfg := defaultConfig()
	cfg.Restic.Password = "pw"
	cfg.Engine.ResetDelay = 3 * time.Second

	got := cfg.BackupConfig()
	if got.Restic.Binary != "restic" || got.Restic.Password != "pw" {
		t.Errorf("Restic = %+v", got.Restic)
	}
	if got.VolumesDir != "/volumes" || got.ResetDelay != 3*time.Second {
		t.Errorf("BackupConfig() = %+v", got)
	}
	if got.Schedule.PreferredHour != 2 || !got.Schedule.Enabled {
		t.Errorf("Schedule = %+v", got.Schedule)
	}
}

func TestConfig_SettingsPath(t *testing.T) {
	cfg := defaultConfig()
	if got := cfg.SettingsPath(); got != "/data/config.json" {
		t.Errorf("SettingsPath() = %q", got)
	}

	cfg.Paths.SettingsFile = "settings.json"
	if got := cfg.SettingsPath(); got != "/data/settings.json" {
		t.Errorf("SettingsPath() = %q, want resolved against data dir", got)
	}
}

func TestConfig_LoggingSettings(t *testing.T) {
	cfg := defaultConfig()
	cfg.Logging.Format = "console"
	cfg.Logging.Caller = true

	got := cfg.LoggingSettings()
	if got.Format != "console" || !got.Caller || got.Level != "info" {
		t.Errorf("LoggingSettings() = %+v", got)
	}
	if !got.Timestamp || got.Output == nil {
		t.Error("LoggingSettings() should keep logging defaults for timestamp and output")
	}
}
