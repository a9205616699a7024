// Dockvault - Docker Volume Backup Control Panel
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dockvault

package backup

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// fileCountPattern extracts "<n> files" from restic output
var fileCountPattern = regexp.MustCompile(`(\d+)\s+files`)

// ProgressUpdate is the result of interpreting one output line
type ProgressUpdate struct {
	// New progress, never below the current progress
	Progress int

	// New status message, empty when unchanged
	Message string

	// Matched reports whether the line matched any pattern
	Matched bool
}

// ProgressInterpreter turns tool output lines into progress estimates.
// Implementations must be pure and never return a progress lower than current.
type ProgressInterpreter interface {
	Interpret(line string, current int) ProgressUpdate
}

// BackupInterpreter understands `restic backup` output
type BackupInterpreter struct{}

// Interpret implements ProgressInterpreter
func (BackupInterpreter) Interpret(line string, current int) ProgressUpdate {
	lower := strings.ToLower(line)

	switch {
	case strings.Contains(lower, "processed"):
		files, ok := parseFileCount(line)
		if !ok {
			return ProgressUpdate{Progress: current}
		}
		return ProgressUpdate{
			Progress: advance(current, clamp(files/100, 1, 5), 85),
			Message:  fmt.Sprintf("Processing files... (%d files)", files),
			Matched:  true,
		}
	case strings.Contains(lower, "backed up"), strings.Contains(lower, "snapshot"):
		return ProgressUpdate{
			Progress: advance(current, 10, 95),
			Message:  "Finalizing backup...",
			Matched:  true,
		}
	case strings.Contains(lower, "uploading"):
		return ProgressUpdate{
			Progress: current,
			Message:  "Uploading to remote storage...",
			Matched:  true,
		}
	}
	return ProgressUpdate{Progress: current}
}

// RestoreInterpreter understands `restic restore` output
type RestoreInterpreter struct{}

// Interpret implements ProgressInterpreter
func (RestoreInterpreter) Interpret(line string, current int) ProgressUpdate {
	lower := strings.ToLower(line)

	switch {
	case strings.Contains(lower, "restored"):
		files, ok := parseFileCount(line)
		if !ok {
			return ProgressUpdate{Progress: current}
		}
		return ProgressUpdate{
			Progress: advance(current, clamp(files/50, 1, 5), 90),
			Message:  fmt.Sprintf("Restoring files... (%d files)", files),
			Matched:  true,
		}
	case strings.Contains(lower, "downloading"):
		return ProgressUpdate{
			Progress: current,
			Message:  "Downloading from remote storage...",
			Matched:  true,
		}
	}
	return ProgressUpdate{Progress: current}
}

// interpreterFor returns the interpreter for an operation kind
func interpreterFor(op OperationKind) ProgressInterpreter {
	if op == OperationRestore {
		return RestoreInterpreter{}
	}
	return BackupInterpreter{}
}

func parseFileCount(line string) (int, bool) {
	match := fileCountPattern.FindStringSubmatch(line)
	if match == nil {
		return 0, false
	}
	n, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// advance adds increment to current, capped at limit, without ever going backwards
func advance(current, increment, limit int) int {
	next := current + increment
	if next > limit {
		next = limit
	}
	if next < current {
		return current
	}
	return next
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
