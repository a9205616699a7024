// Dockvault - Docker Volume Backup Control Panel
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dockvault

/*
Package services provides suture.Service wrappers for Dockvault components.

Each wrapper translates a component's lifecycle into suture's context-aware
Serve pattern and implements fmt.Stringer so suture can name it in logs.

# Available Services

HTTP Server (HTTPServerService):
  - Wraps *http.Server with graceful shutdown
  - A failed bind is returned as an error so the supervisor retries

Backup Engine (EngineService):
  - Ensures the restic repository exists on first start
  - On shutdown waits a bounded time for a running backup or restore,
    then stops the engine's pending status reset

The websocket hub and the backup scheduler implement suture.Service
themselves and need no wrapper.

# Error Handling

	nil         -> Service stopped cleanly, will not restart
	error       -> Service crashed, supervisor will restart
	ctx.Err()   -> Shutdown requested, normal termination
*/
package services
