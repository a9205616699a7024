// Dockvault - Docker Volume Backup Control Panel
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dockvault

/*
store.go - Persisted User Settings

The settings file (default /data/config.json) is shared between the web
process and the one-shot cron command, so the store never trusts its cached
copy for a mutation: every write re-reads the file, applies the change and
replaces the file atomically (temp file + rename in the same directory).

File format:

	{
	  "selected_volumes": ["postgres_data", "nextcloud"],
	  "schedule_enabled": true,
	  "last_backup": "2026-03-14T02:03:11.52Z",
	  "updated_at": "2026-03-13T18:20:00Z"
	}

A missing file yields the defaults (nothing selected, schedule enabled).
Timestamps written by older releases without a zone offset are read as local
time.
*/

//nolint:staticcheck // File documentation, not package doc
package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/tomtom215/dockvault/internal/logging"
)

// legacyTimeLayout matches timestamps written without a zone offset
const legacyTimeLayout = "2006-01-02T15:04:05.999999"

// ErrCorrupt indicates the settings file exists but cannot be parsed
var ErrCorrupt = errors.New("settings file is corrupt")

// Settings is the user-editable configuration
type Settings struct {
	// Volumes included in manual and scheduled backups
	SelectedVolumes []string `json:"selected_volumes"`

	// Whether the daily scheduled backup runs
	ScheduleEnabled bool `json:"schedule_enabled"`

	// Completion time of the last successful backup
	LastBackup *time.Time `json:"last_backup,omitempty"`

	// Last time the settings were changed through the UI
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// Update is a partial settings change; nil fields are left untouched
type Update struct {
	SelectedVolumes *[]string `json:"selected_volumes,omitempty"`
	ScheduleEnabled *bool     `json:"schedule_enabled,omitempty"`
}

// Keys returns the names of the fields set in the update
func (u Update) Keys() []string {
	var keys []string
	if u.SelectedVolumes != nil {
		keys = append(keys, "selected_volumes")
	}
	if u.ScheduleEnabled != nil {
		keys = append(keys, "schedule_enabled")
	}
	return keys
}

// fileSettings is the on-disk representation
type fileSettings struct {
	SelectedVolumes []string `json:"selected_volumes"`
	ScheduleEnabled *bool    `json:"schedule_enabled,omitempty"`
	LastBackup      string   `json:"last_backup,omitempty"`
	UpdatedAt       string   `json:"updated_at,omitempty"`
}

// Defaults returns the settings used when no file exists
func Defaults() Settings {
	return Settings{
		SelectedVolumes: []string{},
		ScheduleEnabled: true,
	}
}

// Store reads and writes the settings file
type Store struct {
	path string
	now  func() time.Time

	mu      sync.Mutex
	current Settings
}

// NewStore creates a store for the file at path. Nothing is read until Load.
func NewStore(path string) *Store {
	return &Store{
		path:    path,
		now:     time.Now,
		current: Defaults(),
	}
}

// Path returns the settings file location
func (s *Store) Path() string {
	return s.path
}

// Load reads the settings file. A missing file is not an error.
// On a corrupt file the defaults are kept and ErrCorrupt is returned.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshLocked()
}

// Get returns a copy of the current settings, re-read from disk.
// Read failures are logged and the last good copy is returned.
func (s *Store) Get() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.refreshLocked(); err != nil {
		logging.Error().Err(err).Str("path", s.path).Msg("Error loading config")
	}
	return s.current.clone()
}

// SelectVolumes replaces the volume selection
func (s *Store) SelectVolumes(volumes []string) (Settings, error) {
	selected := dedupe(volumes)
	return s.Update(Update{SelectedVolumes: &selected})
}

// Update applies a partial change and persists it
func (s *Store) Update(u Update) (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := s.mutateLocked(func(cur *Settings) {
		if u.SelectedVolumes != nil {
			cur.SelectedVolumes = dedupe(*u.SelectedVolumes)
		}
		if u.ScheduleEnabled != nil {
			cur.ScheduleEnabled = *u.ScheduleEnabled
		}
		now := s.now()
		cur.UpdatedAt = &now
	})
	if err != nil {
		return Settings{}, err
	}
	return next.clone(), nil
}

// LastBackup returns the completion time of the last successful backup
func (s *Store) LastBackup() *time.Time {
	return s.Get().LastBackup
}

// SetLastBackup records a successful backup completion time.
// It implements backup.LastBackupRecorder.
func (s *Store) SetLastBackup(t time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.mutateLocked(func(cur *Settings) {
		completed := t
		cur.LastBackup = &completed
	})
	return err
}

// ScheduleEnabled implements backup.ScheduleSource
func (s *Store) ScheduleEnabled() bool {
	return s.Get().ScheduleEnabled
}

// SelectedVolumes implements backup.ScheduleSource
func (s *Store) SelectedVolumes() []string {
	return s.Get().SelectedVolumes
}

// mutateLocked re-reads the file, applies fn and writes the result.
// A corrupt file is overwritten from the defaults rather than blocking writes.
func (s *Store) mutateLocked(fn func(cur *Settings)) (Settings, error) {
	if err := s.refreshLocked(); err != nil && !errors.Is(err, ErrCorrupt) {
		return Settings{}, err
	}

	next := s.current.clone()
	fn(&next)

	if err := s.writeLocked(next); err != nil {
		return Settings{}, err
	}
	s.current = next
	return next, nil
}

// refreshLocked replaces the cached settings with the file contents
func (s *Store) refreshLocked() error {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		s.current = Defaults()
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read settings %s: %w", s.path, err)
	}

	loaded, err := decode(data)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrCorrupt, s.path, err)
	}
	s.current = loaded
	return nil
}

// writeLocked writes the settings via a temp file in the target directory
func (s *Store) writeLocked(st Settings) error {
	data, err := encode(st)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil { //nolint:gosec // data dir is shared with the restic container
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp.*")
	if err != nil {
		return fmt.Errorf("failed to create temp settings file: %w", err)
	}
	tmpPath := tmp.Name()

	writeErr := func() error {
		if _, err := tmp.Write(data); err != nil {
			return err
		}
		if err := tmp.Chmod(0o644); err != nil {
			return err
		}
		return tmp.Sync()
	}()
	closeErr := tmp.Close()
	if writeErr != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write settings: %w", writeErr)
	}
	if closeErr != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write settings: %w", closeErr)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to replace settings file: %w", err)
	}
	return nil
}

func decode(data []byte) (Settings, error) {
	var raw fileSettings
	if err := json.Unmarshal(data, &raw); err != nil {
		return Settings{}, err
	}

	st := Defaults()
	if raw.SelectedVolumes != nil {
		st.SelectedVolumes = raw.SelectedVolumes
	}
	if raw.ScheduleEnabled != nil {
		st.ScheduleEnabled = *raw.ScheduleEnabled
	}
	st.LastBackup = parseTimestamp(raw.LastBackup)
	st.UpdatedAt = parseTimestamp(raw.UpdatedAt)
	return st, nil
}

func encode(st Settings) ([]byte, error) {
	enabled := st.ScheduleEnabled
	raw := fileSettings{
		SelectedVolumes: st.SelectedVolumes,
		ScheduleEnabled: &enabled,
		LastBackup:      formatTimestamp(st.LastBackup),
		UpdatedAt:       formatTimestamp(st.UpdatedAt),
	}
	if raw.SelectedVolumes == nil {
		raw.SelectedVolumes = []string{}
	}
	return json.MarshalIndent(raw, "", "  ")
}

// parseTimestamp accepts RFC 3339 and zone-less timestamps; anything else is dropped
func parseTimestamp(value string) *time.Time {
	if value == "" {
		return nil
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return &t
	}
	if t, err := time.ParseInLocation(legacyTimeLayout, value, time.Local); err == nil {
		return &t
	}
	logging.Warn().Str("value", value).Msg("Ignoring unparseable settings timestamp")
	return nil
}

func formatTimestamp(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339Nano)
}

// dedupe drops empty names and repeats, keeping first-seen order
func dedupe(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

func (st Settings) clone() Settings {
	out := st
	out.SelectedVolumes = append([]string{}, st.SelectedVolumes...)
	if st.LastBackup != nil {
		t := *st.LastBackup
		out.LastBackup = &t
	}
	if st.UpdatedAt != nil {
		t := *st.UpdatedAt
		out.UpdatedAt = &t
	}
	return out
}
