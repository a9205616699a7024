// Dockvault - Docker Volume Backup Control Panel
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dockvault

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/dockvault/internal/api"
	"github.com/tomtom215/dockvault/internal/auth"
	"github.com/tomtom215/dockvault/internal/backup"
	"github.com/tomtom215/dockvault/internal/config"
	"github.com/tomtom215/dockvault/internal/logging"
	"github.com/tomtom215/dockvault/internal/settings"
	"github.com/tomtom215/dockvault/internal/supervisor"
	"github.com/tomtom215/dockvault/internal/supervisor/services"
	"github.com/tomtom215/dockvault/internal/volumes"
	ws "github.com/tomtom215/dockvault/internal/websocket"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(cfg.LoggingSettings())

	logging.Info().
		Str("version", version).
		Str("volumes_dir", cfg.Paths.VolumesDir).
		Str("repository", backup.RepositoryURL(cfg.Rclone.Remote, cfg.Rclone.Folder)).
		Bool("auth_enabled", cfg.Security.AuthEnabled()).
		Bool("scheduler_enabled", cfg.Schedule.Enabled).
		Msg("Starting Dockvault with supervisor tree")

	// Settings are read before anything can write them
	store := settings.NewStore(cfg.SettingsPath())
	if err := store.Load(); err != nil {
		logging.Warn().Err(err).Str("path", store.Path()).Msg("Failed to load settings, using defaults")
	}

	engine, err := backup.NewEngine(cfg.BackupConfig(), backup.NewExecRunner(), store)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create backup engine")
	}
	if !engine.Environment().HasPassword() {
		logging.Warn().Msg("RESTIC_PASSWORD not set: backups and restores will fail")
	}

	discoverer := volumes.NewDiscoverer(cfg.Paths.VolumesDir, cfg.Paths.SizeCacheTTL)
	defer discoverer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Bridges zerolog to slog for sutureslog
	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger("supervisor"), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  cfg.Server.ShutdownTimeout + 5*time.Second,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	// === HTTP LAYER ===

	wsHub := ws.NewHub()

	handler := api.NewHandler(engine, store, discoverer, cfg, wsHub)
	handler.SetVersion(version)
	engine.SetOnStatusChange(handler.OnStatusChange)
	engine.SetOnLog(handler.OnLog)

	var authManager *auth.BasicAuthManager
	if cfg.Security.AuthEnabled() {
		authManager, err = auth.NewBasicAuthManager(cfg.Security.AuthUser, cfg.Security.AuthPassword)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to initialize Basic Auth manager")
		}
	}

	router := api.NewRouter(handler, cfg.Security, authManager)

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.SetupChi(),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	// === ADD SERVICES TO SUPERVISOR TREE ===

	tree.AddEngineService(services.NewEngineService(engine, cfg.Server.ShutdownTimeout))
	if cfg.Schedule.Enabled {
		scheduler := backup.NewScheduler(engine, store, cfg.BackupConfig().Schedule)
		handler.SetScheduler(scheduler)
		tree.AddEngineService(scheduler)
		logging.Info().Int("hour", cfg.Schedule.PreferredHour).Msg("Backup scheduler added to supervisor tree")
	}

	tree.AddMessagingService(wsHub)
	tree.AddAPIService(services.NewHTTPServerService(server, server.Addr, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	// === START SUPERVISOR TREE ===

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	// Report any services that failed to stop within timeout
	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Application stopped gracefully")
}
