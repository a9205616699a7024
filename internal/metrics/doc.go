// Dockvault - Docker Volume Backup Control Panel
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dockvault

/*
Package metrics provides Prometheus metrics collection and export.

All collectors are registered with the default registry through promauto and
are exposed at the /metrics endpoint in Prometheus text format:

	curl http://localhost:5000/metrics

# Available Metrics

Operation Metrics:
  - dockvault_operations_total: Finished runs (counter)
    Labels: operation, outcome
  - dockvault_operation_duration_seconds: Run duration (histogram)
    Labels: operation
  - dockvault_operation_progress: Progress of the running operation (gauge)
  - dockvault_operation_running: 1 while a run is in flight (gauge)
  - dockvault_admission_rejections_total: Starts rejected while running (counter)
  - dockvault_output_lines_total: restic output lines processed (counter)
  - dockvault_last_backup_success_timestamp_seconds: Last successful backup (gauge)

Repository Metrics:
  - dockvault_snapshot_list_duration_seconds (histogram)
  - dockvault_snapshot_list_failures_total (counter)
  - circuit_breaker_state, circuit_breaker_requests_total,
    circuit_breaker_state_transitions_total

API Metrics:
  - api_requests_total, api_request_duration_seconds, api_active_requests
  - api_rate_limit_hits_total, api_auth_failures_total

WebSocket Metrics:
  - websocket_connections, websocket_messages_sent_total, websocket_errors_total

# Usage

	start := time.Now()
	err := run()
	metrics.RecordOperationEnd("backup", time.Since(start), err)
*/
package metrics
