// Dockvault - Docker Volume Backup Control Panel
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dockvault

/*
Package api provides the HTTP JSON API for Dockvault.

The API is a thin layer over the backup engine, the settings store and volume
discovery. Starting a backup or restore returns immediately; progress is read
from /status or pushed over the websocket stream.

Key Components:

  - Router: chi routes and the middleware stack
  - Handler: request handlers, split by area across handlers_*.go
  - ChiMiddleware: go-chi/cors and go-chi/httprate factories
  - Response helpers: the {status, data, metadata, error} envelope

Endpoints (all under /api/v1):

	GET  /health/live        liveness, never authenticated
	GET  /health/ready       volumes dir and restic binary present
	GET  /dashboard          volumes, status, settings, last and next backup
	GET  /volumes            discovered volumes with sizes
	POST /volumes/select     {"volumes": [...]}
	POST /backup/start       202, 400 when nothing selected, 409 when busy
	POST /restore/start      {"snapshot_id": "...", "target_path": "..."}
	GET  /status             current engine status
	GET  /logs?limit=50      recent log entries (1-1000)
	GET  /snapshots          restic snapshots, empty on repository error
	GET  /config             settings and environment flags
	POST /config/update      partial settings update
	GET  /ws                 websocket status and log stream

/metrics serves Prometheus metrics outside the API prefix.

Middleware Stack:

Global: request ID, real IP, panic recovery, CORS. The /api/v1 group adds a
per-IP rate limit, security headers, request metrics and basic auth (when
AUTH_USER and AUTH_PASSWORD are both set). Everything except /ws is gzip
compressed, and the two start endpoints share a stricter rate limit.

Usage Example:

	handler := api.NewHandler(engine, store, discoverer, cfg, hub)
	engine.SetOnStatusChange(handler.OnStatusChange)
	engine.SetOnLog(handler.OnLog)

	router := api.NewRouter(handler, cfg.Security, authManager)
	srv := &http.Server{Addr: cfg.Server.Addr(), Handler: router.SetupChi()}
*/
package api
