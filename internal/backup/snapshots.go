// Dockvault - Docker Volume Backup Control Panel
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dockvault

package backup

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/tomtom215/dockvault/internal/logging"
	"github.com/tomtom215/dockvault/internal/metrics"
)

const (
	// snapshotBreakerName labels the snapshot listing circuit breaker in metrics
	snapshotBreakerName = "restic-snapshots"

	// unknownField replaces absent scalar fields in the snapshot projection
	unknownField = "Unknown"

	// snapshotTimeLayout is the display format for snapshot times
	snapshotTimeLayout = "2006-01-02 15:04:05"
)

// resticSnapshot is one element of `restic snapshots --json`
type resticSnapshot struct {
	ID       string   `json:"id"`
	ShortID  string   `json:"short_id"`
	Time     string   `json:"time"`
	Hostname string   `json:"hostname"`
	Paths    []string `json:"paths"`
	Tags     []string `json:"tags"`
}

// newSnapshotBreaker opens after 3 consecutive listing failures and probes
// the remote again after a minute.
func newSnapshotBreaker() *gobreaker.CircuitBreaker[[]byte] {
	metrics.CircuitBreakerState.WithLabelValues(snapshotBreakerName).Set(0)

	return gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        snapshotBreakerName,
		MaxRequests: 1,
		Interval:    5 * time.Minute,
		Timeout:     time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("Circuit breaker state transition")
			metrics.RecordCircuitBreakerTransition(name, from.String(), to.String(), stateToFloat(to))
		},
	})
}

func stateToFloat(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

// ListSnapshots returns all snapshots in the repository, in restic's order.
// Failures are logged to the engine log and yield an empty slice.
func (e *Engine) ListSnapshots(ctx context.Context) []Snapshot {
	start := time.Now()
	snapshots, err := e.listSnapshots(ctx)
	metrics.RecordSnapshotList(time.Since(start), err)

	if err != nil {
		e.log(LevelError, fmt.Sprintf("Failed to list snapshots: %v", err))
		return []Snapshot{}
	}
	return snapshots
}

func (e *Engine) listSnapshots(ctx context.Context) ([]Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.SnapshotTimeout)
	defer cancel()

	out, err := e.breaker.Execute(func() ([]byte, error) {
		return e.runner.Output(ctx, Command{
			Name: e.cfg.Restic.Binary,
			Args: []string{"snapshots", "--json"},
			Env:  e.env.Vars(),
		})
	})
	if err != nil {
		result := "failure"
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			result = "rejected"
		}
		metrics.CircuitBreakerRequests.WithLabelValues(snapshotBreakerName, result).Inc()
		return nil, err
	}
	metrics.CircuitBreakerRequests.WithLabelValues(snapshotBreakerName, "success").Inc()

	return parseSnapshots(out)
}

// parseSnapshots maps `restic snapshots --json` output to the display projection
func parseSnapshots(data []byte) ([]Snapshot, error) {
	var raw []resticSnapshot
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot list: %w", err)
	}

	snapshots := make([]Snapshot, 0, len(raw))
	for _, r := range raw {
		s := Snapshot{
			ID:       firstNonEmpty(r.ShortID, r.ID, unknownField),
			Time:     formatSnapshotTime(r.Time),
			Hostname: firstNonEmpty(r.Hostname, unknownField),
			Paths:    r.Paths,
			Tags:     r.Tags,
		}
		if s.Paths == nil {
			s.Paths = []string{}
		}
		if s.Tags == nil {
			s.Tags = []string{}
		}
		snapshots = append(snapshots, s)
	}
	return snapshots, nil
}

// formatSnapshotTime renders restic's RFC 3339 timestamps for display and
// passes anything else through unchanged.
func formatSnapshotTime(value string) string {
	if value == "" {
		return unknownField
	}
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return value
	}
	return t.Format(snapshotTimeLayout)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// EnsureRepository initializes the restic repository when it does not exist.
// It is skipped when no password is configured; failures are logged only.
func (e *Engine) EnsureRepository(ctx context.Context) {
	log := logging.WithComponent("repository")

	if !e.env.HasPassword() {
		log.Warn().Msg("RESTIC_PASSWORD not set")
		return
	}

	checkCtx, cancel := context.WithTimeout(ctx, e.cfg.RepoCheckTimeout)
	_, err := e.runner.Output(checkCtx, Command{
		Name: e.cfg.Restic.Binary,
		Args: []string{"snapshots"},
		Env:  e.env.Vars(),
	})
	cancel()
	if err == nil {
		log.Debug().Str("repository", e.env.Repository).Msg("Repository reachable")
		return
	}

	log.Info().Str("repository", e.env.Repository).Msg("Initializing restic repository")
	initCtx, cancel := context.WithTimeout(ctx, e.cfg.RepoInitTimeout)
	defer cancel()
	if _, err := e.runner.Output(initCtx, Command{
		Name: e.cfg.Restic.Binary,
		Args: []string{"init"},
		Env:  e.env.Vars(),
	}); err != nil {
		log.Error().Err(err).Msg("Failed to initialize repository")
		return
	}
	log.Info().Msg("Repository initialized successfully")
}
