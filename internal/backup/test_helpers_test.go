// Dockvault - Docker Volume Backup Control Panel
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dockvault

package backup

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/dockvault/internal/logging"
)

func TestMain(m *testing.M) {
	// Engine log entries are mirrored to zerolog; keep test output readable
	logging.Init(logging.Config{Level: "disabled"})
	os.Exit(m.Run())
}

// scriptedRun describes the behaviour of one fake restic invocation
type scriptedRun struct {
	lines    []string
	exitCode int
	err      error

	// When set, the run signals started and blocks until release is closed
	started chan struct{}
	release chan struct{}
}

// fakeOutput is a canned response for Runner.Output keyed by subcommand
type fakeOutput struct {
	stdout []byte
	err    error
}

// MockRunner is a scripted Runner
type MockRunner struct {
	mu      sync.Mutex
	runs    []scriptedRun
	outputs map[string]fakeOutput
	streams []Command
	execs   []Command
}

func newMockRunner(runs ...scriptedRun) *MockRunner {
	return &MockRunner{runs: runs, outputs: make(map[string]fakeOutput)}
}

func (m *MockRunner) setOutput(subcommand string, stdout string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outputs[subcommand] = fakeOutput{stdout: []byte(stdout), err: err}
}

// Stream plays the next scripted run; the last script repeats
func (m *MockRunner) Stream(_ context.Context, cmd Command, onLine func(string)) (int, error) {
	m.mu.Lock()
	m.streams = append(m.streams, cmd)
	var run scriptedRun
	if len(m.runs) > 0 {
		run = m.runs[0]
		if len(m.runs) > 1 {
			m.runs = m.runs[1:]
		}
	}
	m.mu.Unlock()

	for _, line := range run.lines {
		onLine(line)
	}
	if run.started != nil {
		close(run.started)
	}
	if run.release != nil {
		<-run.release
	}
	return run.exitCode, run.err
}

// Output returns the canned response for the command's subcommand
func (m *MockRunner) Output(_ context.Context, cmd Command) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.execs = append(m.execs, cmd)

	key := ""
	if len(cmd.Args) > 0 {
		key = cmd.Args[0]
	}
	out, ok := m.outputs[key]
	if !ok {
		return nil, errors.New("unexpected command: " + cmd.String())
	}
	return out.stdout, out.err
}

func (m *MockRunner) streamCalls() []Command {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Command(nil), m.streams...)
}

func (m *MockRunner) outputCalls() []Command {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Command(nil), m.execs...)
}

// MockRecorder records SetLastBackup calls
type MockRecorder struct {
	mu    sync.Mutex
	times []time.Time
	err   error
}

func (m *MockRecorder) SetLastBackup(t time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.times = append(m.times, t)
	return nil
}

func (m *MockRecorder) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.times)
}

// newTestConfig returns a valid config rooted in a temp directory.
// The reset delay is long enough that it never fires during a test unless
// the test shortens it.
func newTestConfig(t *testing.T) Config {
	t.Helper()

	cfg := DefaultConfig()
	cfg.VolumesDir = t.TempDir()
	cfg.Restic.Password = "test-password"
	cfg.ResetDelay = time.Hour
	return cfg
}

// newTestEngine creates an engine with a mock runner and recorder
func newTestEngine(t *testing.T, cfg Config, runner Runner, recorder LastBackupRecorder) *Engine {
	t.Helper()

	engine, err := NewEngine(cfg, runner, recorder)
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	engine.env.base = func() []string { return []string{"PATH=/usr/bin"} }
	t.Cleanup(engine.Close)
	return engine
}

// makeVolumes creates volume directories under the configured root
func makeVolumes(t *testing.T, cfg Config, names ...string) {
	t.Helper()
	for _, name := range names {
		if err := os.MkdirAll(filepath.Join(cfg.VolumesDir, name), 0o755); err != nil {
			t.Fatalf("failed to create volume %s: %v", name, err)
		}
	}
}

// waitFor polls cond until it holds or the timeout expires
func waitFor(t *testing.T, timeout time.Duration, what string, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

// logsAtLevel filters log entries by level
func logsAtLevel(entries []LogEntry, level LogLevel) []LogEntry {
	var out []LogEntry
	for _, e := range entries {
		if e.Level == level {
			out = append(out, e)
		}
	}
	return out
}

// hasLog reports whether any entry at level contains substr
func hasLog(entries []LogEntry, level LogLevel, substr string) bool {
	for _, e := range entries {
		if e.Level == level && strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}
