// Dockvault - Docker Volume Backup Control Panel
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dockvault

// Package cache provides a small generic TTL cache.
//
// It backs volume size reporting: walking a large Docker volume is expensive
// and the dashboard polls, so measured sizes are kept for a few minutes and
// dropped after each successful backup.
//
// Thread Safety: all methods are safe for concurrent use.
package cache
