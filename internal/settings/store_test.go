// Dockvault - Docker Volume Backup Control Panel
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dockvault

package settings

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/tomtom215/dockvault/internal/backup"
	"github.com/tomtom215/dockvault/internal/logging"
)

func TestMain(m *testing.M) {
	logging.Init(logging.Config{Level: "disabled"})
	os.Exit(m.Run())
}

// Compile-time interface checks
var (
	_ backup.LastBackupRecorder = (*Store)(nil)
	_ backup.ScheduleSource     = (*Store)(nil)
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "data", "config.json"))
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestStore_MissingFileUsesDefaults(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	if err := store.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	got := store.Get()
	if !got.ScheduleEnabled {
		t.Error("ScheduleEnabled should default to true")
	}
	if got.SelectedVolumes == nil || len(got.SelectedVolumes) != 0 {
		t.Errorf("SelectedVolumes = %v, want empty slice", got.SelectedVolumes)
	}
	if got.LastBackup != nil {
		t.Errorf("LastBackup = %v, want nil", got.LastBackup)
	}
}

func TestStore_LoadExistingFile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		content     string
		wantVolumes []string
		wantEnabled bool
		wantLast    bool
	}{
		{
			name:        "full file",
			content:     `{"selected_volumes":["a","b"],"schedule_enabled":false,"last_backup":"2026-03-14T02:03:11Z"}`,
			wantVolumes: []string{"a", "b"},
			wantEnabled: false,
			wantLast:    true,
		},
		{
			name:        "schedule flag absent defaults to true",
			content:     `{"selected_volumes":["a"]}`,
			wantVolumes: []string{"a"},
			wantEnabled: true,
		},
		{
			name:        "legacy timestamp without zone",
			content:     `{"last_backup":"2025-11-02T02:00:41.123456","updated_at":"2025-11-01T10:00:00"}`,
			wantVolumes: []string{},
			wantEnabled: true,
			wantLast:    true,
		},
		{
			name:        "unparseable timestamp is dropped",
			content:     `{"last_backup":"yesterday"}`,
			wantVolumes: []string{},
			wantEnabled: true,
			wantLast:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			store := newTestStore(t)
			writeFile(t, store.Path(), tt.content)

			if err := store.Load(); err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			got := store.Get()
			if !slices.Equal(got.SelectedVolumes, tt.wantVolumes) {
				t.Errorf("SelectedVolumes = %v, want %v", got.SelectedVolumes, tt.wantVolumes)
			}
			if got.ScheduleEnabled != tt.wantEnabled {
				t.Errorf("ScheduleEnabled = %v, want %v", got.ScheduleEnabled, tt.wantEnabled)
			}
			if (got.LastBackup != nil) != tt.wantLast {
				t.Errorf("LastBackup = %v, want set=%v", got.LastBackup, tt.wantLast)
			}
		})
	}
}

func TestStore_CorruptFile(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	writeFile(t, store.Path(), "{not json")

	if err := store.Load(); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("Load() error = %v, want ErrCorrupt", err)
	}
	if got := store.Get(); !got.ScheduleEnabled {
		t.Error("corrupt file should leave defaults in place")
	}

	// A write replaces the corrupt file
	if _, err := store.SelectVolumes([]string{"a"}); err != nil {
		t.Fatalf("SelectVolumes() error = %v", err)
	}
	if err := store.Load(); err != nil {
		t.Errorf("Load() after rewrite error = %v", err)
	}
}

func TestStore_SelectVolumes(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	fixed := time.Date(2026, 3, 13, 18, 20, 0, 0, time.UTC)
	store.now = func() time.Time { return fixed }

	got, err := store.SelectVolumes([]string{"postgres_data", "", "nextcloud", "postgres_data"})
	if err != nil {
		t.Fatalf("SelectVolumes() error = %v", err)
	}
	want := []string{"postgres_data", "nextcloud"}
	if !slices.Equal(got.SelectedVolumes, want) {
		t.Errorf("SelectedVolumes = %v, want %v", got.SelectedVolumes, want)
	}
	if got.UpdatedAt == nil || !got.UpdatedAt.Equal(fixed) {
		t.Errorf("UpdatedAt = %v, want %v", got.UpdatedAt, fixed)
	}

	// Persisted to disk in the documented format
	data, err := os.ReadFile(store.Path())
	if err != nil {
		t.Fatalf("settings file not written: %v", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("settings file is not JSON: %v", err)
	}
	if raw["schedule_enabled"] != true {
		t.Errorf("schedule_enabled = %v, want true", raw["schedule_enabled"])
	}
	if raw["updated_at"] != "2026-03-13T18:20:00Z" {
		t.Errorf("updated_at = %v", raw["updated_at"])
	}

	if !slices.Equal(store.SelectedVolumes(), want) {
		t.Errorf("SelectedVolumes() = %v", store.SelectedVolumes())
	}
}

func TestStore_UpdatePartial(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	if _, err := store.SelectVolumes([]string{"a"}); err != nil {
		t.Fatal(err)
	}

	disabled := false
	got, err := store.Update(Update{ScheduleEnabled: &disabled})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if got.ScheduleEnabled {
		t.Error("ScheduleEnabled should be false")
	}
	if !slices.Equal(got.SelectedVolumes, []string{"a"}) {
		t.Errorf("selection lost on partial update: %v", got.SelectedVolumes)
	}
	if store.ScheduleEnabled() {
		t.Error("ScheduleEnabled() should read the persisted value")
	}
}

func TestStore_SetLastBackupKeepsSelection(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	if _, err := store.SelectVolumes([]string{"a", "b"}); err != nil {
		t.Fatal(err)
	}

	completed := time.Date(2026, 3, 14, 2, 3, 11, 0, time.UTC)
	if err := store.SetLastBackup(completed); err != nil {
		t.Fatalf("SetLastBackup() error = %v", err)
	}

	last := store.LastBackup()
	if last == nil || !last.Equal(completed) {
		t.Errorf("LastBackup() = %v, want %v", last, completed)
	}
	if !slices.Equal(store.SelectedVolumes(), []string{"a", "b"}) {
		t.Errorf("selection changed: %v", store.SelectedVolumes())
	}
}

func TestStore_SeesExternalWrites(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.json")
	web := NewStore(path)
	cron := NewStore(path)

	if _, err := web.SelectVolumes([]string{"a"}); err != nil {
		t.Fatal(err)
	}
	// The cron process records a backup
	if err := cron.SetLastBackup(time.Now()); err != nil {
		t.Fatal(err)
	}
	if web.LastBackup() == nil {
		t.Error("web store did not observe last_backup written by another store")
	}

	// And the web process' next write keeps it
	disabled := false
	if _, err := web.Update(Update{ScheduleEnabled: &disabled}); err != nil {
		t.Fatal(err)
	}
	if cron.LastBackup() == nil {
		t.Error("last_backup lost after a concurrent settings update")
	}
}

func TestStore_WriteFailure(t *testing.T) {
	t.Parallel()

	blocker := filepath.Join(t.TempDir(), "file")
	writeFile(t, blocker, "x")
	store := NewStore(filepath.Join(blocker, "config.json"))

	if err := store.SetLastBackup(time.Now()); err == nil {
		t.Error("SetLastBackup() should fail when the directory cannot be created")
	}
}

func TestStore_NoTempFilesLeft(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	for i := 0; i < 5; i++ {
		if _, err := store.SelectVolumes([]string{"v"}); err != nil {
			t.Fatal(err)
		}
	}

	entries, err := os.ReadDir(filepath.Dir(store.Path()))
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.Contains(e.Name(), ".tmp.") {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
}

func TestStore_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = store.SelectVolumes([]string{"a", "b"})
		}()
		go func() {
			defer wg.Done()
			_ = store.SetLastBackup(time.Now())
			_ = store.Get()
		}()
	}
	wg.Wait()

	got := store.Get()
	if !slices.Equal(got.SelectedVolumes, []string{"a", "b"}) || got.LastBackup == nil {
		t.Errorf("final settings = %+v", got)
	}
}

func TestStore_GetReturnsCopy(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	if _, err := store.SelectVolumes([]string{"a"}); err != nil {
		t.Fatal(err)
	}

	got := store.Get()
	got.SelectedVolumes[0] = "mutated"

	if store.SelectedVolumes()[0] != "a" {
		t.Error("Get() result aliases store state")
	}
}

func TestUpdate_Keys(t *testing.T) {
	t.Parallel()

	enabled := true
	volumes := []string{"a"}
	tests := []struct {
		update Update
		want   []string
	}{
		{update: Update{}, want: nil},
		{update: Update{ScheduleEnabled: &enabled}, want: []string{"schedule_enabled"}},
		{update: Update{SelectedVolumes: &volumes, ScheduleEnabled: &enabled}, want: []string{"selected_volumes", "schedule_enabled"}},
	}
	for _, tt := range tests {
		if got := tt.update.Keys(); !slices.Equal(got, tt.want) {
			t.Errorf("Keys() = %v, want %v", got, tt.want)
		}
	}
}
