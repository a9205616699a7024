// Dockvault - Docker Volume Backup Control Panel
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dockvault

// Package main runs one scheduled backup and exits.
//
// It is meant for an external scheduler (cron, a Kubernetes CronJob or a
// systemd timer) when the server's in-process scheduler is disabled. It reads
// the same configuration and settings file as the server, and initializes the
// repository before the first backup when the remote has none yet.
//
// Exit codes:
//
//	0  backup succeeded, or was skipped (disabled, nothing selected, no password)
//	1  configuration or settings could not be loaded, or the backup failed
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomtom215/dockvault/internal/backup"
	"github.com/tomtom215/dockvault/internal/config"
	"github.com/tomtom215/dockvault/internal/logging"
	"github.com/tomtom215/dockvault/internal/settings"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		logging.Error().Err(err).Msg("Failed to load configuration")
		return 1
	}
	logging.Init(cfg.LoggingSettings())

	store := settings.NewStore(cfg.SettingsPath())
	if err := store.Load(); err != nil {
		logging.Error().Err(err).Str("path", store.Path()).Msg("Error loading settings")
		return 1
	}

	engine, err := backup.NewEngine(cfg.BackupConfig(), backup.NewExecRunner(), store)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to create backup engine")
		return 1
	}
	defer engine.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler := backup.NewScheduler(engine, store, cfg.BackupConfig().Schedule)
	if err := scheduler.Runnable(); err != nil {
		logging.Info().Msg(err.Error())
		return 0
	}

	// A fresh remote has no repository yet
	engine.EnsureRepository(ctx)

	if err := scheduler.RunScheduled(ctx); err != nil {
		if errors.Is(err, backup.ErrScheduleDisabled) ||
			errors.Is(err, backup.ErrNothingSelected) ||
			errors.Is(err, backup.ErrPasswordMissing) {
			logging.Info().Msg(err.Error())
			return 0
		}
		logging.Error().Err(err).Msg("Scheduled backup failed")
		return 1
	}

	return reportResult(engine.GetStatus())
}

// reportResult logs the final status and returns the process exit code
func reportResult(status backup.StatusSnapshot) int {
	if status.Status == backup.StatusError {
		logging.Error().Str("status_message", status.Message).Msg("Backup completed with errors")
		return 1
	}

	logging.Info().Str("status_message", status.Message).Msg("Backup completed")
	return 0
}
