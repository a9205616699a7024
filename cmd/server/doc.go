// Dockvault - Docker Volume Backup Control Panel
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dockvault

/*
Package main is the entry point for the Dockvault server.

Dockvault backs up Docker volumes mounted under one directory to a restic
repository on an rclone remote, and restores snapshots from it. The server
exposes a JSON API, a websocket status stream and Prometheus metrics.

# Application Architecture

	RootSupervisor ("dockvault")
	├── EngineSupervisor ("engine-layer")
	│   ├── Engine service (repository init, drain on shutdown)
	│   └── Backup scheduler (optional, schedule.enabled)
	├── MessagingSupervisor ("messaging-layer")
	│   └── WebSocket Hub
	└── APISupervisor ("api-layer")
	    └── HTTP Server

Component initialization order:

 1. Configuration: Koanf v2 with environment variables and an optional config file
 2. Settings store: persisted volume selection and schedule toggle
 3. Backup engine: restic/rclone orchestration
 4. Volume discovery: directory listing with cached sizes
 5. WebSocket hub and API handler, wired to engine callbacks
 6. Supervisor tree

# Configuration

The most common environment variables:

	RESTIC_PASSWORD   repository password (required for backups)
	RCLONE_REMOTE     rclone remote name (default onedrive)
	RCLONE_FOLDER     folder on the remote (default backup)
	RCLONE_CONFIG     path to rclone.conf (default /data/rclone.conf)
	VOLUMES_DIR       directory holding the volumes (default /volumes)
	AUTH_USER         basic auth user, with AUTH_PASSWORD
	AUTH_PASSWORD     plain text or bcrypt hash
	BACKUP_HOUR       hour of the daily backup (default 2)
	TZ                timezone for the daily backup

# Signal Handling

SIGINT and SIGTERM cancel the supervisor tree. The HTTP server stops accepting
connections, websocket clients are closed, and a running backup or restore is
given shutdown_timeout to finish.
*/
package main
