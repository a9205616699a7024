// Dockvault - Docker Volume Backup Control Panel
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dockvault

package auth

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/tomtom215/dockvault/internal/logging"
	"github.com/tomtom215/dockvault/internal/metrics"
)

type contextKey string

const usernameKey contextKey = "auth_username"

// Middleware returns a chi middleware enforcing Basic Auth.
// A nil manager disables authentication.
func Middleware(manager *BasicAuthManager, secLog *logging.SecurityLogger) func(http.Handler) http.Handler {
	if secLog == nil {
		secLog = logging.NewSecurityLogger()
	}

	return func(next http.Handler) http.Handler {
		if manager == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			username, err := manager.ValidateCredentials(r.Header.Get("Authorization"))
			if err != nil {
				// Browsers probe without credentials first; only log real failures
				if !errors.Is(err, ErrNoCredentials) {
					metrics.APIAuthFailures.Inc()
					secLog.LogAuthFailure(username, ClientIP(r), r.URL.Path, err.Error())
				}
				w.Header().Set("WWW-Authenticate", manager.GetWWWAuthenticateHeader())
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), usernameKey, username)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UsernameFromContext returns the authenticated username, or "" when
// authentication is disabled
func UsernameFromContext(ctx context.Context) string {
	if username, ok := ctx.Value(usernameKey).(string); ok {
		return username
	}
	return ""
}

// ClientIP returns the host part of the request's remote address.
// Behind a proxy, chi's RealIP middleware must run first.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
