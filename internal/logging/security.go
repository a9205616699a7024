// Dockvault - Docker Volume Backup Control Panel
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dockvault

package logging

import (
	"strings"

	"github.com/rs/zerolog"
)

// SecurityLogger writes audit events for the control panel with
// sensitive values masked.
type SecurityLogger struct {
	logger zerolog.Logger
}

// NewSecurityLogger creates a security logger on the global logger.
func NewSecurityLogger() *SecurityLogger {
	return &SecurityLogger{logger: WithComponent("security")}
}

// NewSecurityLoggerWithLogger creates a security logger with a custom zerolog logger.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewSecurityLoggerWithLogger(logger zerolog.Logger) *SecurityLogger {
	return &SecurityLogger{logger: logger.With().Str("component", "security").Logger()}
}

// LogAuthFailure records a rejected basic auth attempt.
func (l *SecurityLogger) LogAuthFailure(username, ip, path, reason string) {
	l.logger.Warn().
		Str("event", "auth_failure").
		Str("username", SanitizeUsername(username)).
		Str("ip", ip).
		Str("path", path).
		Str("reason", reason).
		Msg("Authentication failed")
}

// LogOperationTriggered records who started a backup or restore.
func (l *SecurityLogger) LogOperationTriggered(operation, username, ip string) {
	l.logger.Info().
		Str("event", "operation_triggered").
		Str("operation", operation).
		Str("username", SanitizeUsername(username)).
		Str("ip", ip).
		Msg("Operation triggered")
}

// LogSettingsChanged records a settings update with the changed keys.
func (l *SecurityLogger) LogSettingsChanged(username, ip string, keys []string) {
	l.logger.Info().
		Str("event", "settings_changed").
		Str("username", SanitizeUsername(username)).
		Str("ip", ip).
		Strs("keys", keys).
		Msg("Settings changed")
}

// SanitizeUsername masks a username, keeping the first 2 characters.
// Example: "admin" -> "ad***"
func SanitizeUsername(username string) string {
	if username == "" {
		return ""
	}
	if len(username) <= 2 {
		return "***"
	}
	return username[:2] + "***"
}

// sensitiveEnvMarkers identify environment variables whose values are secrets.
var sensitiveEnvMarkers = []string{"PASSWORD", "SECRET", "TOKEN", "KEY", "PASS"}

// RedactEnv returns a copy of KEY=VALUE pairs with secret values replaced.
func RedactEnv(env []string) []string {
	out := make([]string, len(env))
	for i, kv := range env {
		key, _, found := strings.Cut(kv, "=")
		if found && isSensitiveKey(key) {
			out[i] = key + "=***"
			continue
		}
		out[i] = kv
	}
	return out
}

func isSensitiveKey(key string) bool {
	upper := strings.ToUpper(key)
	for _, marker := range sensitiveEnvMarkers {
		if strings.Contains(upper, marker) {
			return true
		}
	}
	return false
}
