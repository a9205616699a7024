// Dockvault - Docker Volume Backup Control Panel
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dockvault

package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/tomtom215/dockvault/internal/auth"
	"github.com/tomtom215/dockvault/internal/backup"
	"github.com/tomtom215/dockvault/internal/logging"
	"github.com/tomtom215/dockvault/internal/models"
	"github.com/tomtom215/dockvault/internal/volumes"
)

// Log listing limits
const (
	defaultLogLimit = 50
	maxLogLimit     = 1000
)

// Dashboard returns everything the main page renders
//
// @Summary Dashboard overview
// @Description Returns discovered volumes, engine status, settings, last backup and the next scheduled backup
// @Tags Backup
// @Produce json
// @Success 200 {object} models.APIResponse{data=models.DashboardResponse}
// @Router /dashboard [get]
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	current := h.settings.Get()

	resp := models.DashboardResponse{
		Volumes:    h.listVolumes(r.Context(), current.SelectedVolumes),
		Status:     h.engine.GetStatus(),
		Settings:   current,
		LastBackup: current.LastBackup,
	}
	if current.ScheduleEnabled {
		next := h.nextBackup(time.Now())
		resp.NextBackup = &next
	}

	respondSuccess(w, start, resp)
}

// Volumes lists the backup candidates
//
// @Summary List volumes
// @Description Lists every directory under the volumes root with its size and selection flag
// @Tags Backup
// @Produce json
// @Success 200 {object} models.APIResponse{data=[]volumes.Volume}
// @Router /volumes [get]
func (h *Handler) Volumes(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	current := h.settings.Get()
	respondSuccess(w, start, h.listVolumes(r.Context(), current.SelectedVolumes))
}

// SelectVolumes replaces the set of volumes included in backups
//
// @Summary Select volumes
// @Description Persists the volumes included in manual and scheduled backups
// @Tags Backup
// @Accept json
// @Produce json
// @Param request body models.SelectVolumesRequest true "Selected volumes"
// @Success 200 {object} models.APIResponse{data=models.MessageResponse}
// @Failure 400 {object} models.APIResponse
// @Router /volumes/select [post]
func (h *Handler) SelectVolumes(w http.ResponseWriter, r *http.Request) {
	var req models.SelectVolumesRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return
	}

	if _, err := h.settings.SelectVolumes(req.Volumes); err != nil {
		respondError(w, http.StatusInternalServerError, ErrCodeInternal, "Failed to save settings", err)
		return
	}
	h.secLog.LogSettingsChanged(auth.UsernameFromContext(r.Context()), auth.ClientIP(r), []string{"selected_volumes"})

	respondMessage(w, http.StatusOK, "Volume selection updated")
}

// StartBackup starts a backup of the selected volumes in the background
//
// @Summary Start backup
// @Description Starts a restic backup of the selected volumes. Progress is reported by /status and the websocket stream.
// @Tags Backup
// @Produce json
// @Success 202 {object} models.APIResponse{data=models.MessageResponse}
// @Failure 400 {object} models.APIResponse "No volumes selected"
// @Failure 409 {object} models.APIResponse "Another operation is running"
// @Router /backup/start [post]
func (h *Handler) StartBackup(w http.ResponseWriter, r *http.Request) {
	selected := h.settings.Get().SelectedVolumes
	if len(selected) == 0 {
		respondError(w, http.StatusBadRequest, ErrCodeNoVolumes, "No volumes selected for backup", nil)
		return
	}

	if err := h.engine.StartBackup(r.Context(), selected); err != nil {
		h.respondStartError(w, err)
		return
	}
	h.secLog.LogOperationTriggered(string(backup.OperationBackup), auth.UsernameFromContext(r.Context()), auth.ClientIP(r))

	respondMessage(w, http.StatusAccepted, "Backup started")
}

// StartRestore restores a snapshot in the background
//
// @Summary Start restore
// @Description Restores a restic snapshot into target_path, which defaults to the configured restore directory
// @Tags Backup
// @Accept json
// @Produce json
// @Param request body models.RestoreRequest true "Snapshot and target"
// @Success 202 {object} models.APIResponse{data=models.MessageResponse}
// @Failure 400 {object} models.APIResponse
// @Failure 409 {object} models.APIResponse "Another operation is running"
// @Router /restore/start [post]
func (h *Handler) StartRestore(w http.ResponseWriter, r *http.Request) {
	var req models.RestoreRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	req.SnapshotID = strings.TrimSpace(req.SnapshotID)
	if req.SnapshotID == "" {
		respondError(w, http.StatusBadRequest, ErrCodeValidation, "Snapshot ID required", nil)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return
	}

	target := req.TargetPath
	if target == "" && h.config != nil {
		target = h.config.Paths.RestoreTarget
	}

	if err := h.engine.StartRestore(r.Context(), req.SnapshotID, target); err != nil {
		h.respondStartError(w, err)
		return
	}
	h.secLog.LogOperationTriggered(string(backup.OperationRestore), auth.UsernameFromContext(r.Context()), auth.ClientIP(r))

	respondMessage(w, http.StatusAccepted, "Restore started")
}

// Status returns the current engine status
//
// @Summary Engine status
// @Tags Backup
// @Produce json
// @Success 200 {object} models.APIResponse{data=backup.StatusSnapshot}
// @Router /status [get]
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, time.Now(), h.engine.GetStatus())
}

// Logs returns the most recent engine log entries, oldest first
//
// @Summary Recent logs
// @Tags Backup
// @Produce json
// @Param limit query int false "Number of entries (1-1000)" default(50)
// @Success 200 {object} models.APIResponse{data=models.LogsResponse}
// @Failure 400 {object} models.APIResponse
// @Router /logs [get]
func (h *Handler) Logs(w http.ResponseWriter, r *http.Request) {
	limit, ok := getIntParam(r, "limit", defaultLogLimit)
	if !ok {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidParam, "limit must be an integer", nil)
		return
	}

	query := models.LogsQuery{Limit: limit}
	if apiErr := validateRequest(&query); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return
	}

	entries := h.engine.GetRecentLogs(query.Limit)
	if entries == nil {
		entries = []backup.LogEntry{}
	}
	respondSuccess(w, time.Now(), models.LogsResponse{Logs: entries, Count: len(entries)})
}

// Snapshots lists the snapshots in the repository
//
// @Summary List snapshots
// @Description Lists restic snapshots. A repository error yields an empty list and an ERROR log entry.
// @Tags Backup
// @Produce json
// @Success 200 {object} models.APIResponse{data=models.SnapshotsResponse}
// @Router /snapshots [get]
func (h *Handler) Snapshots(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	snaps := h.engine.ListSnapshots(r.Context())
	if snaps == nil {
		snaps = []backup.Snapshot{}
	}
	respondSuccess(w, start, models.SnapshotsResponse{Snapshots: snaps, Count: len(snaps)})
}

// respondStartError maps an engine start error to an HTTP response
func (h *Handler) respondStartError(w http.ResponseWriter, err error) {
	if errors.Is(err, backup.ErrAdmissionRejected) {
		respondError(w, http.StatusConflict, ErrCodeOperationActive, "Another operation is already running", nil)
		return
	}
	respondError(w, http.StatusInternalServerError, ErrCodeInternal, "Failed to start operation", err)
}

// listVolumes discovers volumes, returning an empty list when the volumes
// root cannot be read
func (h *Handler) listVolumes(ctx context.Context, selected []string) []volumes.Volume {
	vols, err := h.volumes.Discover(ctx, selected)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("Volume discovery failed")
		return []volumes.Volume{}
	}
	if vols == nil {
		return []volumes.Volume{}
	}
	return vols
}

// nextBackup reports the scheduler's next run, falling back to the next
// occurrence of the preferred hour before the scheduler has started
func (h *Handler) nextBackup(now time.Time) time.Time {
	if h.scheduler != nil {
		if next := h.scheduler.NextRun(); !next.IsZero() {
			return next
		}
	}
	hour := backup.DefaultConfig().Schedule.PreferredHour
	if h.config != nil {
		hour = h.config.Schedule.PreferredHour
	}
	return backup.NextRunAfter(now, hour)
}
