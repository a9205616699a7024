// Dockvault - Docker Volume Backup Control Panel
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dockvault

package models

// SelectVolumesRequest replaces the saved volume selection
type SelectVolumesRequest struct {
	Volumes []string `json:"volumes" validate:"max=500,dive,volumename"`
}

// RestoreRequest starts a restore of one snapshot
type RestoreRequest struct {
	SnapshotID string `json:"snapshot_id" validate:"required,snapshotid"`

	// Defaults to the configured restore target when empty
	TargetPath string `json:"target_path" validate:"omitempty,abspath"`
}

// ConfigUpdateRequest is a partial settings update; absent fields are kept
type ConfigUpdateRequest struct {
	SelectedVolumes *[]string `json:"selected_volumes,omitempty" validate:"omitempty,max=500,dive,volumename"`
	ScheduleEnabled *bool     `json:"schedule_enabled,omitempty"`
}

// LogsQuery holds the query parameters of the logs endpoint
type LogsQuery struct {
	Limit int `json:"limit" validate:"min=1,max=1000"`
}
