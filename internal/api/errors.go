// Dockvault - Docker Volume Backup Control Panel
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dockvault

package api

// Error codes returned in the API error envelope
const (
	ErrCodeValidation      = "VALIDATION_ERROR"
	ErrCodeInvalidJSON     = "INVALID_JSON"
	ErrCodeInvalidParam    = "INVALID_PARAMETER"
	ErrCodeNoVolumes       = "NO_VOLUMES_SELECTED"
	ErrCodeOperationActive = "OPERATION_RUNNING"
	ErrCodeRateLimited     = "RATE_LIMIT_EXCEEDED"
	ErrCodeInternal        = "INTERNAL_ERROR"
	ErrCodeNotReady        = "NOT_READY"
)
