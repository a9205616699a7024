// Dockvault - Docker Volume Backup Control Panel
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dockvault

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/dockvault/internal/backup"
	"github.com/tomtom215/dockvault/internal/logging"
	"github.com/tomtom215/dockvault/internal/settings"
)

// fakeRestic records each subcommand and behaves like restic against a
// remote that has no repository until "init" runs.
const fakeRestic = `#!/bin/sh
dir=$(dirname "$0")
echo "$1" >> "$dir/calls"
case "$1" in
snapshots)
	[ -f "$dir/initialized" ] || { echo "Fatal: repository does not exist" >&2; exit 1; }
	;;
init)
	touch "$dir/initialized"
	echo "created restic repository"
	;;
backup)
	[ -f "$dir/initialized" ] || { echo "Fatal: repository does not exist"; exit 1; }
	[ -f "$dir/fail" ] && { echo "Fatal: unable to save snapshot"; exit 1; }
	echo "Files: 3 new, 0 changed, 0 unmodified"
	echo "snapshot 1a2b3c4d saved"
	;;
esac
exit 0
`

type cronEnv struct {
	binDir       string
	settingsPath string
}

// newCronEnv points the configuration at temp dirs and a scripted restic
func newCronEnv(t *testing.T, settingsJSON string) *cronEnv {
	t.Helper()

	binDir := t.TempDir()
	resticPath := filepath.Join(binDir, "restic")
	if err := os.WriteFile(resticPath, []byte(fakeRestic), 0o755); err != nil { //nolint:gosec // test executable
		t.Fatalf("write restic script: %v", err)
	}

	dataDir := t.TempDir()
	volumesDir := t.TempDir()
	if err := os.Mkdir(filepath.Join(volumesDir, "app_data"), 0o755); err != nil {
		t.Fatalf("create volume: %v", err)
	}
	settingsPath := filepath.Join(dataDir, "config.json")
	if settingsJSON != "" {
		if err := os.WriteFile(settingsPath, []byte(settingsJSON), 0o600); err != nil {
			t.Fatalf("write settings: %v", err)
		}
	}

	t.Setenv("RESTIC_BINARY", resticPath)
	t.Setenv("RESTIC_PASSWORD", "secret")
	t.Setenv("DATA_DIR", dataDir)
	t.Setenv("VOLUMES_DIR", volumesDir)
	t.Setenv("SETTINGS_FILE", settingsPath)
	t.Setenv("RESTORE_TARGET", filepath.Join(dataDir, "restore"))
	t.Setenv("LOG_LEVEL", "disabled")

	return &cronEnv{binDir: binDir, settingsPath: settingsPath}
}

func (e *cronEnv) calls(t *testing.T) []string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(e.binDir, "calls"))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		t.Fatalf("read calls: %v", err)
	}
	return strings.Fields(string(data))
}

const selectedSettings = `{"selected_volumes": ["app_data"], "schedule_enabled": true}`

func TestRun_InitializesFreshRepository(t *testing.T) {
	env := newCronEnv(t, selectedSettings)

	if code := run(); code != 0 {
		t.Fatalf("run() = %d, want 0", code)
	}

	want := []string{"snapshots", "init", "backup"}
	if got := env.calls(t); !reflect.DeepEqual(got, want) {
		t.Errorf("restic subcommands = %v, want %v", got, want)
	}

	store := settings.NewStore(env.settingsPath)
	if err := store.Load(); err != nil {
		t.Fatalf("reload settings: %v", err)
	}
	if store.LastBackup() == nil {
		t.Error("last backup not recorded")
	}
}

func TestRun_ExistingRepository(t *testing.T) {
	env := newCronEnv(t, selectedSettings)
	if err := os.WriteFile(filepath.Join(env.binDir, "initialized"), nil, 0o600); err != nil {
		t.Fatal(err)
	}

	if code := run(); code != 0 {
		t.Fatalf("run() = %d, want 0", code)
	}

	want := []string{"snapshots", "backup"}
	if got := env.calls(t); !reflect.DeepEqual(got, want) {
		t.Errorf("restic subcommands = %v, want %v", got, want)
	}
}

func TestRun_BackupFailure(t *testing.T) {
	env := newCronEnv(t, selectedSettings)
	for _, name := range []string{"initialized", "fail"} {
		if err := os.WriteFile(filepath.Join(env.binDir, name), nil, 0o600); err != nil {
			t.Fatal(err)
		}
	}

	if code := run(); code != 1 {
		t.Errorf("run() = %d, want 1", code)
	}
}

func TestRun_Skips(t *testing.T) {
	tests := []struct {
		name     string
		settings string
		password string
	}{
		{name: "schedule disabled", settings: `{"selected_volumes": ["app_data"], "schedule_enabled": false}`, password: "secret"},
		{name: "nothing selected", settings: `{"selected_volumes": [], "schedule_enabled": true}`, password: "secret"},
		{name: "password missing", settings: selectedSettings, password: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newCronEnv(t, tt.settings)
			t.Setenv("RESTIC_PASSWORD", tt.password)

			if code := run(); code != 0 {
				t.Errorf("run() = %d, want 0", code)
			}
			if got := env.calls(t); len(got) != 0 {
				t.Errorf("restic invoked for a skipped run: %v", got)
			}
		})
	}
}

func TestRun_CorruptSettings(t *testing.T) {
	env := newCronEnv(t, `{"selected_volumes": [`)

	if code := run(); code != 1 {
		t.Errorf("run() = %d, want 1", code)
	}
	if got := env.calls(t); len(got) != 0 {
		t.Errorf("restic invoked with unreadable settings: %v", got)
	}
}

func TestReportResult(t *testing.T) {
	var buf bytes.Buffer
	original := logging.Logger()
	originalLevel := zerolog.GlobalLevel()
	defer func() {
		logging.SetLogger(original)
		zerolog.SetGlobalLevel(originalLevel)
	}()
	logging.SetLogger(logging.NewTestLogger(&buf))
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	tests := []struct {
		name     string
		status   backup.StatusSnapshot
		wantCode int
	}{
		{
			name:     "success",
			status:   backup.StatusSnapshot{Status: backup.StatusSuccess, Message: "Backup completed successfully"},
			wantCode: 0,
		},
		{
			name:     "error",
			status:   backup.StatusSnapshot{Status: backup.StatusError, Message: "Backup failed with return code 1"},
			wantCode: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()

			if code := reportResult(tt.status); code != tt.wantCode {
				t.Errorf("reportResult() = %d, want %d", code, tt.wantCode)
			}
			line := buf.String()
			if n := strings.Count(line, `"message":`); n != 1 {
				t.Errorf("message key appears %d times: %s", n, line)
			}
			if !strings.Contains(line, `"status_message":"`+tt.status.Message+`"`) {
				t.Errorf("status_message missing: %s", line)
			}
		})
	}
}
