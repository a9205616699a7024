// Dockvault - Docker Volume Backup Control Panel
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dockvault

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/dockvault/internal/auth"
	"github.com/tomtom215/dockvault/internal/middleware"
)

// chiMiddleware adapts http.HandlerFunc middleware to Chi's func(http.Handler) http.Handler.
// Used for RequestID, PrometheusMetrics and Compression.
func chiMiddleware(mw func(http.HandlerFunc) http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return mw(next.ServeHTTP)
	}
}

// SetupChi configures all HTTP routes using Chi router.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	// ========================
	// Global Middleware Stack
	// ========================
	r.Use(chiMiddleware(middleware.RequestID)) // X-Request-ID header and logging context
	r.Use(chimiddleware.RealIP)                // Extract real IP from X-Forwarded-For
	r.Use(chimiddleware.Recoverer)             // Recover from panics
	r.Use(router.chiMiddleware.CORS())         // CORS must be global to handle OPTIONS preflight

	// ========================
	// Prometheus
	// ========================
	r.Handle("/metrics", promhttp.Handler())

	// ========================
	// Health Endpoints
	// ========================
	// Unauthenticated so container probes work without credentials
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(APISecurityHeaders())
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})

	// ========================
	// Core API Endpoints
	// ========================
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(APISecurityHeaders())
		r.Use(chiMiddleware(middleware.PrometheusMetrics))
		r.Use(auth.Middleware(router.authManager, router.secLog))

		// Websocket upgrade must not go through the gzip writer
		r.Get("/ws", router.handler.WebSocket)

		r.Group(func(r chi.Router) {
			r.Use(chiMiddleware(middleware.Compression))

			r.Get("/dashboard", router.handler.Dashboard)
			r.Get("/volumes", router.handler.Volumes)
			r.Post("/volumes/select", router.handler.SelectVolumes)
			r.Get("/status", router.handler.Status)
			r.Get("/logs", router.handler.Logs)
			r.Get("/snapshots", router.handler.Snapshots)
			r.Get("/config", router.handler.Config)
			r.Post("/config/update", router.handler.UpdateConfig)

			// Each start launches restic; backup and restore share one budget
			startLimit := router.chiMiddleware.RateLimitStart()
			r.With(startLimit).Post("/backup/start", router.handler.StartBackup)
			r.With(startLimit).Post("/restore/start", router.handler.StartRestore)
		})
	})

	return r
}
