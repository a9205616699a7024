// Dockvault - Docker Volume Backup Control Panel
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dockvault

package api

import (
	"net/http"
	"os"
	"os/exec"
	"time"

	"github.com/tomtom215/dockvault/internal/models"
)

// Check results reported by the readiness probe
const (
	checkOK      = "ok"
	checkMissing = "missing"
)

// lookPath is replaced in tests
var lookPath = exec.LookPath

// HealthLive handles liveness probes
//
// @Summary Liveness probe
// @Description Returns 200 while the process is serving HTTP
// @Tags Health
// @Produce json
// @Success 200 {object} models.APIResponse{data=models.HealthResponse}
// @Router /health/live [get]
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: models.HealthResponse{
			Status: "alive",
			Uptime: time.Since(h.startTime).Round(time.Second).String(),
		},
		Metadata: models.Metadata{Timestamp: time.Now()},
	})
}

// HealthReady handles readiness probes
//
// @Summary Readiness probe
// @Description Reports whether the volumes directory is mounted and the restic binary is installed
// @Tags Health
// @Produce json
// @Success 200 {object} models.APIResponse{data=models.HealthResponse}
// @Failure 503 {object} models.APIResponse{data=models.HealthResponse}
// @Router /health/ready [get]
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string, 2)
	ready := true

	if h.config != nil {
		if info, err := os.Stat(h.config.Paths.VolumesDir); err != nil || !info.IsDir() {
			checks["volumes_dir"] = checkMissing
			ready = false
		} else {
			checks["volumes_dir"] = checkOK
		}

		if _, err := lookPath(h.config.Restic.Binary); err != nil {
			checks["restic"] = checkMissing
			ready = false
		} else {
			checks["restic"] = checkOK
		}
	}

	status := "ready"
	code := http.StatusOK
	if !ready {
		status = "not_ready"
		code = http.StatusServiceUnavailable
	}

	respondJSON(w, code, &models.APIResponse{
		Status: "success",
		Data: models.HealthResponse{
			Status:  status,
			Version: h.version,
			Uptime:  time.Since(h.startTime).Round(time.Second).String(),
			Checks:  checks,
		},
		Metadata: models.Metadata{Timestamp: time.Now()},
	})
}
