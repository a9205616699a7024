// Dockvault - Docker Volume Backup Control Panel
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dockvault

/*
runner.go - External Process Runner

Every restic invocation goes through the Runner interface so the engine can be
exercised with scripted output in tests. ExecRunner is the production
implementation backed by os/exec.

Stream merges stdout and stderr into a single pipe. Both file descriptors of
the child point at the same write end, so lines keep the order in which the
tool wrote them. The caller's goroutine owns the read end exclusively and sees
one callback per line.
*/

//nolint:staticcheck // File documentation, not package doc
package backup

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// maxLineSize bounds a single line of tool output
const maxLineSize = 1024 * 1024

// Command describes one external tool invocation
type Command struct {
	// Binary name or path
	Name string

	// Arguments, not including the binary
	Args []string

	// Full environment for the child process
	Env []string
}

// String renders the command for logging
func (c Command) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// Runner executes external tools
type Runner interface {
	// Stream runs cmd and calls onLine for every line of combined output.
	// A non-zero exit is reported through exitCode, not err; err is set when
	// the process cannot be started or its output cannot be read.
	Stream(ctx context.Context, cmd Command, onLine func(line string)) (exitCode int, err error)

	// Output runs cmd to completion and returns its stdout.
	// A non-zero exit yields an error that includes stderr.
	Output(ctx context.Context, cmd Command) ([]byte, error)
}

// ExecRunner runs commands with os/exec
type ExecRunner struct{}

// NewExecRunner creates the production runner
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

// Stream implements Runner
func (r *ExecRunner) Stream(ctx context.Context, c Command, onLine func(line string)) (int, error) {
	pr, pw, err := os.Pipe()
	if err != nil {
		return -1, fmt.Errorf("failed to create output pipe: %w", err)
	}
	defer pr.Close()

	cmd := exec.CommandContext(ctx, c.Name, c.Args...) //nolint:gosec // binary and args come from configuration
	cmd.Env = c.Env
	cmd.Stdout = pw
	cmd.Stderr = pw

	if err := cmd.Start(); err != nil {
		pw.Close()
		return -1, fmt.Errorf("failed to start %s: %w", c.Name, err)
	}
	// The child holds its own copy of the write end; EOF arrives when it exits.
	pw.Close()

	scanner := bufio.NewScanner(pr)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	for scanner.Scan() {
		if onLine != nil {
			onLine(scanner.Text())
		}
	}
	scanErr := scanner.Err()
	if scanErr != nil {
		// Keep the child from blocking on a full pipe
		_, _ = io.Copy(io.Discard, pr)
	}

	waitErr := cmd.Wait()
	if scanErr != nil {
		return exitCodeOf(waitErr), fmt.Errorf("%w: %w", ErrStreaming, scanErr)
	}
	if waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			return exitErr.ExitCode(), nil
		}
		return -1, fmt.Errorf("failed to wait for %s: %w", c.Name, waitErr)
	}
	return 0, nil
}

// Output implements Runner
func (r *ExecRunner) Output(ctx context.Context, c Command) ([]byte, error) {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...) //nolint:gosec // binary and args come from configuration
	cmd.Env = c.Env

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return stdout.Bytes(), fmt.Errorf("%s: %w", c, err)
		}
		return stdout.Bytes(), fmt.Errorf("%s: %w: %s", c, err, msg)
	}
	return stdout.Bytes(), nil
}

func exitCodeOf(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
