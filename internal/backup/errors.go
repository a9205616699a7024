// Dockvault - Docker Volume Backup Control Panel
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dockvault

package backup

import (
	"errors"
	"fmt"
)

// Engine errors. None of these reach the caller of RunBackup or RunRestore;
// they are converted into status and log updates at the run boundary.
var (
	// ErrAdmissionRejected indicates an operation is already running
	ErrAdmissionRejected = errors.New("operation already running")

	// ErrNoValidPaths indicates none of the selected volumes exist
	ErrNoValidPaths = errors.New("no valid volume paths found for backup")

	// ErrProcessFailure indicates restic exited with a non-zero code
	ErrProcessFailure = errors.New("external process failed")

	// ErrStreaming indicates the output stream could not be read
	ErrStreaming = errors.New("failed to read process output")

	// ErrCollateral indicates a side effect failed after a successful run
	ErrCollateral = errors.New("post-run side effect failed")
)

// ProcessError describes a non-zero exit of an external tool
type ProcessError struct {
	// Operation that launched the process
	Operation OperationKind

	// Exit code reported by the process
	ExitCode int

	// Last non-empty line of combined output, if any
	LastLine string
}

// Error implements error
func (e *ProcessError) Error() string {
	msg := fmt.Sprintf("%s failed with return code %d", capitalize(string(e.Operation)), e.ExitCode)
	if e.LastLine != "" {
		msg += ": " + e.LastLine
	}
	return msg
}

// Unwrap allows errors.Is(err, ErrProcessFailure)
func (e *ProcessError) Unwrap() error {
	return ErrProcessFailure
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	if c := s[0]; c >= 'a' && c <= 'z' {
		return string(c-'a'+'A') + s[1:]
	}
	return s
}
