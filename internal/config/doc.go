// Dockvault - Docker Volume Backup Control Panel
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dockvault

/*
Package config provides centralized configuration management for Dockvault.

Configuration is layered with Koanf v2: built-in defaults, then an optional
YAML file, then environment variables. The result is validated once at
startup and treated as immutable afterwards.

# Configuration Sources

  - Defaults: defaultConfig(), matching the container image layout
  - YAML file: CONFIG_PATH, else config.yaml / /etc/dockvault/config.yaml
  - Environment: explicit name mapping (unmapped variables are ignored)

# Environment Variables

Backup tooling:
  - RESTIC_PASSWORD: Repository password (backups are skipped when unset)
  - RESTIC_BINARY: restic executable (default: restic)
  - RCLONE_REMOTE: rclone remote name (default: onedrive)
  - RCLONE_FOLDER: Folder on the remote (default: backup)
  - RCLONE_CONFIG: rclone.conf path (default: /data/rclone.conf)

Paths:
  - DATA_DIR: Data directory (default: /data)
  - VOLUMES_DIR: Mounted Docker volumes root (default: /volumes)
  - SETTINGS_FILE: Persisted UI settings (default: /data/config.json)
  - RESTORE_TARGET: Default restore destination (default: /data/restore)
  - VOLUME_SIZE_CACHE_TTL: How long measured volume sizes are reused (default: 5m)

Engine:
  - LOG_CAPACITY: Retained engine log entries (default: 1000)
  - STATUS_RESET_DELAY: Delay before a finished run is cleared (default: 5s)
  - SNAPSHOT_TIMEOUT: Timeout for listing snapshots (default: 60s)
  - REPO_CHECK_TIMEOUT, REPO_INIT_TIMEOUT: Repository probe/init (30s/60s)

Schedule:
  - SCHEDULER_ENABLED: Run the in-process daily scheduler (default: true)
  - BACKUP_HOUR: Hour of day for the daily backup (default: 2)
  - SCHEDULE_CHECK_INTERVAL: Scheduler tick (default: 1m)

HTTP Server:
  - HTTP_HOST, HTTP_PORT: Listen address (default: 0.0.0.0:5000)
  - HTTP_READ_TIMEOUT, HTTP_WRITE_TIMEOUT, HTTP_IDLE_TIMEOUT
  - HTTP_SHUTDOWN_TIMEOUT: Graceful shutdown budget (default: 10s)
  - TZ: Reported time zone

Security:
  - AUTH_USER, AUTH_PASSWORD: Basic auth, enabled when both are set
  - CORS_ORIGINS: Comma-separated allowed origins (default: *)
  - RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW, DISABLE_RATE_LIMIT
  - START_RATE_LIMIT_REQUESTS: Limit for backup/restore start endpoints

Logging:
  - LOG_LEVEL: trace, debug, info, warn, error (default: info)
  - LOG_FORMAT: json or console (default: json)
  - LOG_CALLER: Include caller information (default: false)

# Usage

	cfg, err := config.Load()
	if err != nil {
	    log.Fatalf("configuration error: %v", err)
	}
	logging.Init(cfg.LoggingSettings())
	engine, err := backup.NewEngine(cfg.BackupConfig(), nil, store)

# Thread Safety

Config is read-only after Load() and safe for concurrent access.
*/
package config
