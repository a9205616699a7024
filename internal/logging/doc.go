// Dockvault - Docker Volume Backup Control Panel
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dockvault

// Package logging provides centralized zerolog-based structured logging for Dockvault.
//
// # Overview
//
// The package provides:
//   - A global zerolog logger configured once from main
//   - JSON output for production, console output for development
//   - Run and request ID propagation through context.Context
//   - An slog adapter so sutureslog writes into the same stream
//   - A security logger that masks usernames and secret environment values
//
// # Quick Start
//
//	logging.Init(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	})
//
//	logging.Info().Str("volume", "postgres_data").Msg("Volume selected")
//	logging.Error().Err(err).Msg("Snapshot listing failed")
//
//	ctx = logging.ContextWithRunID(ctx, logging.GenerateRunID())
//	logging.Ctx(ctx).Info().Msg("Backup started")
//
// # Configuration
//
// Environment Variables (through internal/config):
//
//	LOG_LEVEL   - trace, debug, info, warn, error (default: info)
//	LOG_FORMAT  - json, console (default: json)
//	LOG_CALLER  - include caller file:line (default: false)
//
// # Engine Log Mirroring
//
// The backup engine keeps its own bounded history of user-facing log entries
// (served by /api/v1/logs). Every entry appended there is mirrored to this
// logger at the matching level, so container logs and the UI tell the same story.
//
// # Best Practices
//
// Always terminate log chains with .Msg() or .Send():
//
//	logging.Info().Str("key", "value").Msg("message")  // Correct
//	logging.Info().Str("key", "value")                 // WRONG - log not emitted
package logging
