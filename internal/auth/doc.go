// Dockvault - Docker Volume Backup Control Panel
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dockvault

// Package auth provides optional HTTP Basic Authentication for the control panel.
//
// Authentication is enabled when both AUTH_USER and AUTH_PASSWORD are set.
// AUTH_PASSWORD may be a bcrypt hash (generated with `htpasswd -nbB`) or a
// plain text password. Comparisons run in constant time.
//
// Failed attempts are counted in api_auth_failures_total and written to the
// security log with the username masked.
package auth
