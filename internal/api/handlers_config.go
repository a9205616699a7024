// Dockvault - Docker Volume Backup Control Panel
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dockvault

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/dockvault/internal/auth"
	"github.com/tomtom215/dockvault/internal/models"
	"github.com/tomtom215/dockvault/internal/settings"
)

// Config returns the persisted settings and the environment the engine runs with
//
// @Summary Get configuration
// @Description Returns settings plus environment presence flags. The restic password is reported only as set or unset.
// @Tags Config
// @Produce json
// @Success 200 {object} models.APIResponse{data=models.ConfigResponse}
// @Router /config [get]
func (h *Handler) Config(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, time.Now(), models.ConfigResponse{
		Settings:    h.settings.Get(),
		Environment: h.environmentInfo(),
	})
}

// UpdateConfig applies a partial settings change
//
// @Summary Update configuration
// @Description Updates selected_volumes and/or schedule_enabled. Omitted fields are left unchanged.
// @Tags Config
// @Accept json
// @Produce json
// @Param request body models.ConfigUpdateRequest true "Settings change"
// @Success 200 {object} models.APIResponse{data=models.MessageResponse}
// @Failure 400 {object} models.APIResponse
// @Router /config/update [post]
func (h *Handler) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	var req models.ConfigUpdateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return
	}

	update := settings.Update{
		SelectedVolumes: req.SelectedVolumes,
		ScheduleEnabled: req.ScheduleEnabled,
	}
	if _, err := h.settings.Update(update); err != nil {
		respondError(w, http.StatusInternalServerError, ErrCodeInternal, "Failed to save settings", err)
		return
	}
	if keys := update.Keys(); len(keys) > 0 {
		h.secLog.LogSettingsChanged(auth.UsernameFromContext(r.Context()), auth.ClientIP(r), keys)
	}

	respondMessage(w, http.StatusOK, "Configuration updated")
}

func (h *Handler) environmentInfo() models.EnvironmentInfo {
	env := h.engine.Environment()
	info := models.EnvironmentInfo{
		ResticPasswordSet: env.HasPassword(),
		ResticRepository:  env.Repository,
		Timezone:          "UTC",
	}

	if h.config != nil {
		info.RcloneRemote = h.config.Rclone.Remote
		info.RcloneFolder = h.config.Rclone.Folder
		info.VolumesDir = h.config.Paths.VolumesDir
		info.RestoreTarget = h.config.Paths.RestoreTarget
		info.AuthEnabled = h.config.Security.AuthEnabled()
		info.SchedulerEnabled = h.config.Schedule.Enabled
		info.BackupHour = h.config.Schedule.PreferredHour
		if h.config.Server.Timezone != "" {
			info.Timezone = h.config.Server.Timezone
		}
	}
	return info
}
