// Dockvault - Docker Volume Backup Control Panel
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dockvault

// Package settings persists the user-editable settings (volume selection,
// schedule toggle, last backup time) in a small JSON file.
//
// Store implements backup.LastBackupRecorder and backup.ScheduleSource, so the
// same instance is handed to the engine, the scheduler and the HTTP API.
package settings
