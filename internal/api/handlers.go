// Dockvault - Docker Volume Backup Control Panel
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dockvault

package api

import (
	"context"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/dockvault/internal/backup"
	"github.com/tomtom215/dockvault/internal/config"
	"github.com/tomtom215/dockvault/internal/logging"
	"github.com/tomtom215/dockvault/internal/settings"
	"github.com/tomtom215/dockvault/internal/volumes"
	ws "github.com/tomtom215/dockvault/internal/websocket"
)

// BackupEngine is the part of *backup.Engine the handlers use
type BackupEngine interface {
	GetStatus() backup.StatusSnapshot
	GetRecentLogs(limit int) []backup.LogEntry
	StartBackup(ctx context.Context, volumes []string) error
	StartRestore(ctx context.Context, snapshotID, targetPath string) error
	ListSnapshots(ctx context.Context) []backup.Snapshot
	Environment() *backup.Environment
}

// SettingsStore is the part of *settings.Store the handlers use
type SettingsStore interface {
	Get() settings.Settings
	SelectVolumes(volumes []string) (settings.Settings, error)
	Update(u settings.Update) (settings.Settings, error)
}

// VolumeLister lists backup candidates; satisfied by *volumes.Discoverer
type VolumeLister interface {
	Discover(ctx context.Context, selected []string) ([]volumes.Volume, error)
	Invalidate()
}

// NextRunner reports the next scheduled backup; satisfied by *backup.Scheduler
type NextRunner interface {
	NextRun() time.Time
}

// Handler contains dependencies for API handlers
//
// Handler methods are split across multiple files:
//   - handlers.go: Handler struct, constructor, engine callbacks (this file)
//   - handlers_helpers.go: JSON encoding, decoding and validation helpers
//   - handlers_health.go: Liveness and readiness probes
//   - handlers_backup.go: Dashboard, volumes, backup, restore, status, logs, snapshots
//   - handlers_config.go: Settings and environment
//   - handlers_websocket.go: Live status stream
type Handler struct {
	engine    BackupEngine
	settings  SettingsStore
	volumes   VolumeLister
	scheduler NextRunner // nil when the in-process scheduler is disabled
	config    *config.Config
	wsHub     *ws.Hub
	secLog    *logging.SecurityLogger
	startTime time.Time
	version   string
}

// NewHandler creates a new API handler.
//
// When wsHub is non-nil, newly connected websocket clients are greeted with
// the current engine status.
func NewHandler(engine BackupEngine, store SettingsStore, lister VolumeLister, cfg *config.Config, wsHub *ws.Hub) *Handler {
	h := &Handler{
		engine:    engine,
		settings:  store,
		volumes:   lister,
		config:    cfg,
		wsHub:     wsHub,
		secLog:    logging.NewSecurityLogger(),
		startTime: time.Now(),
		version:   "dev",
	}

	if wsHub != nil {
		wsHub.SetOnConnect(func() []ws.Message {
			return []ws.Message{{Type: ws.MessageTypeStatus, Data: h.engine.GetStatus()}}
		})
	}
	return h
}

// SetScheduler attaches the in-process scheduler so the dashboard reports its
// next run
func (h *Handler) SetScheduler(s NextRunner) {
	h.scheduler = s
}

// SetVersion sets the version reported by the readiness probe
func (h *Handler) SetVersion(v string) {
	h.version = v
}

// SetSecurityLogger replaces the security audit logger
func (h *Handler) SetSecurityLogger(l *logging.SecurityLogger) {
	h.secLog = l
}

// OnStatusChange is registered with engine.SetOnStatusChange.
//
// It pushes the status to websocket clients and, when a backup finishes
// successfully, drops cached volume sizes so the next listing re-measures.
// It runs on the engine's goroutine and never blocks.
func (h *Handler) OnStatusChange(status backup.StatusSnapshot) {
	if h.wsHub != nil {
		h.wsHub.BroadcastStatus(status)
	}
	if status.Operation == backup.OperationBackup && status.Status == backup.StatusSuccess && h.volumes != nil {
		h.volumes.Invalidate()
	}
}

// OnLog is registered with engine.SetOnLog
func (h *Handler) OnLog(entry backup.LogEntry) {
	if h.wsHub != nil {
		h.wsHub.BroadcastLog(entry)
	}
}

// getUpgrader creates a WebSocket upgrader with origin checking and a
// handshake timeout
func (h *Handler) getUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		CheckOrigin:      h.checkWebSocketOrigin,
		HandshakeTimeout: 10 * time.Second,
	}
}
