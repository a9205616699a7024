// Dockvault - Docker Volume Backup Control Panel
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dockvault

package api

import (
	"github.com/tomtom215/dockvault/internal/auth"
	"github.com/tomtom215/dockvault/internal/config"
	"github.com/tomtom215/dockvault/internal/logging"
)

// Router handles HTTP routing
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
	authManager   *auth.BasicAuthManager // nil disables basic auth
	secLog        *logging.SecurityLogger
}

// NewRouter creates a new router.
// authManager may be nil, in which case the API is served without auth.
func NewRouter(handler *Handler, security config.SecurityConfig, authManager *auth.BasicAuthManager) *Router {
	chiMw := NewChiMiddlewareFromSecurity(
		security.CORSOrigins,
		security.RateLimitReqs,
		security.StartRateLimitReqs,
		security.RateLimitWindow,
		security.RateLimitDisabled,
	)

	if authManager == nil {
		logging.Warn().Msg("Basic auth disabled: set AUTH_USER and AUTH_PASSWORD to protect the API")
	}

	return &Router{
		handler:       handler,
		chiMiddleware: chiMw,
		authManager:   authManager,
		secLog:        handler.secLog,
	}
}
