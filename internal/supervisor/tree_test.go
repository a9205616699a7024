// Dockvault - Docker Volume Backup Control Panel
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dockvault

package supervisor

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/tomtom215/dockvault/internal/logging"
)

func TestMain(m *testing.M) {
	logging.Init(logging.Config{Level: "disabled"})
	os.Exit(m.Run())
}

func newTestTree(t *testing.T, cfg TreeConfig) *SupervisorTree {
	t.Helper()
	tree, err := NewSupervisorTree(logging.NewSlogLogger("supervisor"), cfg)
	if err != nil {
		t.Fatalf("failed to create tree: %v", err)
	}
	return tree
}

func waitForStart(t *testing.T, svc *MockService, want int32) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for svc.StartCount() < want {
		if time.Now().After(deadline) {
			t.Fatalf("%s started %d times, want at least %d", svc.String(), svc.StartCount(), want)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestDefaultTreeConfig(t *testing.T) {
	config := DefaultTreeConfig()

	if config.FailureThreshold != 5.0 {
		t.Errorf("FailureThreshold = %f, want 5.0", config.FailureThreshold)
	}
	if config.FailureDecay != 30.0 {
		t.Errorf("FailureDecay = %f, want 30.0", config.FailureDecay)
	}
	if config.FailureBackoff != 15*time.Second {
		t.Errorf("FailureBackoff = %v, want 15s", config.FailureBackoff)
	}
	if config.ShutdownTimeout != 10*time.Second {
		t.Errorf("ShutdownTimeout = %v, want 10s", config.ShutdownTimeout)
	}
}

func TestNewSupervisorTree_AppliesDefaults(t *testing.T) {
	tree := newTestTree(t, TreeConfig{})

	if tree.Root() == nil {
		t.Fatal("root supervisor should not be nil")
	}
	if tree.config != DefaultTreeConfig() {
		t.Errorf("config = %+v, want defaults", tree.config)
	}
}

func TestSupervisorTree_StartsEveryLayer(t *testing.T) {
	tree := newTestTree(t, TreeConfig{ShutdownTimeout: time.Second})

	engineSvc := NewMockService("backup-engine")
	hubSvc := NewMockService("websocket-hub")
	apiSvc := NewMockService("http-server")
	tree.AddEngineService(engineSvc)
	tree.AddMessagingService(hubSvc)
	tree.AddAPIService(apiSvc)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	for _, svc := range []*MockService{engineSvc, hubSvc, apiSvc} {
		waitForStart(t, svc, 1)
	}

	cancel()
	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			t.Errorf("unexpected error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("tree did not shut down in time")
	}

	for _, svc := range []*MockService{engineSvc, hubSvc, apiSvc} {
		if svc.StopCount() < 1 {
			t.Errorf("%s was not stopped", svc.String())
		}
	}

	report, err := tree.UnstoppedServiceReport()
	if err != nil {
		t.Fatalf("UnstoppedServiceReport() error = %v", err)
	}
	if len(report) != 0 {
		t.Errorf("unstopped services: %v", report)
	}
}

func TestSupervisorTree_RestartsFailingServiceInIsolation(t *testing.T) {
	tree := newTestTree(t, TreeConfig{
		FailureThreshold: 10,
		FailureBackoff:   10 * time.Millisecond,
		ShutdownTimeout:  time.Second,
	})

	failing := NewMockService("websocket-hub")
	failing.SetFailCount(2)
	stable := NewMockService("http-server")
	tree.AddMessagingService(failing)
	tree.AddAPIService(stable)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := tree.ServeBackground(ctx)

	waitForStart(t, failing, 3)
	waitForStart(t, stable, 1)

	// A crash in the messaging layer must not restart the API layer
	if stable.StartCount() != 1 {
		t.Errorf("stable service started %d times, want 1", stable.StartCount())
	}

	cancel()
	<-errCh
}
