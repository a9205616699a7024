// Dockvault - Docker Volume Backup Control Panel
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dockvault

/*
Package middleware provides HTTP middleware for the control panel API.

Key Components:

  - RequestID: per-request ID in the X-Request-ID header and logging context
  - PrometheusMetrics: request count, latency and in-flight gauge labelled by
    chi route pattern
  - Compression: gzip for JSON responses when the client accepts it

All three use the http.HandlerFunc signature and are adapted to chi's
r.Use() by the API router. Authentication lives in internal/auth; CORS and
rate limiting come from go-chi/cors and go-chi/httprate.

Middleware Stack:

	r.Use(chiMiddleware(middleware.RequestID))
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors)
	r.Route("/api/v1", func(r chi.Router) {
	    r.Use(rateLimit)
	    r.Use(chiMiddleware(middleware.PrometheusMetrics))
	    r.Use(auth.Middleware(manager, secLog))
	    ...
	})

Thread Safety:

All middleware is stateless apart from the sync.Pool of gzip writers and is
safe for concurrent use.
*/
package middleware
