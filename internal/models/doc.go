// Dockvault - Docker Volume Backup Control Panel
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dockvault

/*
Package models defines the request and response types of the HTTP API.

Every JSON endpoint answers with the APIResponse envelope. Request types carry
validate tags checked by internal/validation, so handlers decode, validate and
act without repeating field checks.

Model Categories:

  - Envelope: APIResponse, Metadata, APIError, MessageResponse
  - Requests: SelectVolumesRequest, RestoreRequest, ConfigUpdateRequest, LogsQuery
  - Responses: DashboardResponse, LogsResponse, SnapshotsResponse,
    ConfigResponse, HealthResponse
*/
package models
