// Dockvault - Docker Volume Backup Control Panel
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dockvault

package models

import (
	"time"
)

// APIResponse is the envelope used by every JSON endpoint.
//
// Status field values:
//   - "success": Request completed successfully, see Data field
//   - "error": Request failed, see Error field for details
//
// Example successful response:
//
//	{
//	  "status": "success",
//	  "data": {"message": "Backup started"},
//	  "metadata": {"timestamp": "2026-03-14T02:00:00Z"}
//	}
//
// Example error response:
//
//	{
//	  "status": "error",
//	  "data": null,
//	  "error": {"code": "NO_VOLUMES_SELECTED", "message": "No volumes selected for backup"},
//	  "metadata": {"timestamp": "2026-03-14T02:00:00Z"}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata contains response metadata
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
	Cached      bool      `json:"cached,omitempty"`
}

// APIError carries a machine-readable code and a human-readable message.
//
// Error codes:
//   - VALIDATION_ERROR: Invalid request body or parameters
//   - INVALID_JSON: Request body is not valid JSON
//   - NO_VOLUMES_SELECTED: Backup requested with an empty selection
//   - OPERATION_RUNNING: Another backup or restore is in flight
//   - INTERNAL_ERROR: Settings or filesystem failure
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// MessageResponse is the payload of endpoints that only acknowledge an action
type MessageResponse struct {
	Message string `json:"message"`
}
