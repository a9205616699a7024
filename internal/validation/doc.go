// Dockvault - Docker Volume Backup Control Panel
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dockvault

/*
Package validation provides request validation using go-playground/validator v10.

A thread-safe singleton validator caches struct metadata and carries the
custom rules used by the API request types. Field errors are reported under
their JSON names.

Custom Validators:

  - volumename: a single path element (no "/", "\", "." or "..")
  - snapshotid: restic short or full hex ID, or "latest"
  - abspath: a clean absolute filesystem path

Example:

	type RestoreRequest struct {
	    SnapshotID string `json:"snapshot_id" validate:"required,snapshotid"`
	    TargetPath string `json:"target_path" validate:"omitempty,abspath"`
	}

	if err := validation.ValidateStruct(&req); err != nil {
	    apiErr := err.ToAPIError()
	    respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message)
	    return
	}

Errors are converted to the VALIDATION_ERROR code of the API error envelope.
A single failing field yields its message directly; multiple failures are
joined as "field: message; field: message" with per-field details.
*/
package validation
