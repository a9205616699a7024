// Dockvault - Docker Volume Backup Control Panel
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dockvault

package api

import (
	"net/http"
	"net/url"

	"github.com/tomtom215/dockvault/internal/logging"
	ws "github.com/tomtom215/dockvault/internal/websocket"
)

// WebSocket upgrades the connection and streams status and log messages
//
// @Summary Live status stream
// @Description Upgrades to a websocket that receives the current status on connect, then every status change and log entry
// @Tags Realtime
// @Success 101 "Switching Protocols"
// @Failure 503 {object} models.APIResponse
// @Router /ws [get]
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	if h.wsHub == nil {
		logging.Warn().Msg("WebSocket connection rejected: hub not initialized")
		respondError(w, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "WebSocket service unavailable", nil)
		return
	}

	upgrader := h.getUpgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Error().Err(err).Msg("WebSocket upgrade error")
		return
	}

	client := ws.NewClient(h.wsHub, conn)
	if !h.wsHub.Attach(client) {
		// Hub is shutting down
		_ = conn.Close()
		return
	}
	client.Start()
}

// checkWebSocketOrigin accepts same-origin requests and origins listed in
// the CORS configuration
func (h *Handler) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")

	// Browsers always send Origin on websocket handshakes
	if origin == "" {
		logging.Warn().Msg("WebSocket connection rejected: missing Origin header")
		return false
	}

	if u, err := url.Parse(origin); err == nil && u.Host == r.Host {
		return true
	}

	if h.config == nil {
		return true
	}

	for _, allowedOrigin := range h.config.Security.CORSOrigins {
		if allowedOrigin == "*" || allowedOrigin == origin {
			return true
		}
	}

	logging.Warn().Str("origin", sanitizeLogValue(origin)).Msg("WebSocket connection rejected from unauthorized origin")
	return false
}
