// Dockvault - Docker Volume Backup Control Panel
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dockvault

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for:
// - Backup and restore runs
// - Snapshot listing against the remote repository
// - API endpoint latency and throughput
// - WebSocket connections
// - Circuit breaker state

var (
	// Operation Metrics
	OperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dockvault_operations_total",
			Help: "Total number of finished backup and restore runs",
		},
		[]string{"operation", "outcome"}, // outcome: "success", "error"
	)

	OperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dockvault_operation_duration_seconds",
			Help:    "Duration of backup and restore runs in seconds",
			Buckets: []float64{1, 5, 15, 30, 60, 300, 900, 1800, 3600, 7200, 14400},
		},
		[]string{"operation"},
	)

	OperationProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "dockvault_operation_progress",
			Help: "Estimated progress of the running operation (0-100)",
		},
	)

	OperationRunning = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "dockvault_operation_running",
			Help: "Whether a backup or restore is currently running (0 or 1)",
		},
	)

	AdmissionRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dockvault_admission_rejections_total",
			Help: "Total number of runs rejected because another operation was running",
		},
		[]string{"operation"},
	)

	OutputLines = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dockvault_output_lines_total",
			Help: "Total number of restic output lines processed",
		},
		[]string{"operation"},
	)

	LastBackupSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "dockvault_last_backup_success_timestamp_seconds",
			Help: "Unix timestamp of the last successful backup",
		},
	)

	// Snapshot Listing Metrics
	SnapshotListDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dockvault_snapshot_list_duration_seconds",
			Help:    "Duration of restic snapshot listing in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	SnapshotListFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dockvault_snapshot_list_failures_total",
			Help: "Total number of failed snapshot listings",
		},
	)

	// Volume Metrics
	VolumesDiscovered = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "dockvault_volumes_discovered",
			Help: "Number of volumes found under the volumes root at the last scan",
		},
	)

	VolumeSizeBytes = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "dockvault_volume_size_bytes",
			Help: "Measured size of a volume in bytes",
		},
		[]string{"volume"},
	)

	VolumeScanDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dockvault_volume_scan_duration_seconds",
			Help:    "Duration of volume discovery scans in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60},
		},
	)

	// Scheduler Metrics
	ScheduledRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dockvault_scheduled_runs_total",
			Help: "Total number of scheduler decisions",
		},
		[]string{"result"}, // result: "started", "skipped"
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	APIAuthFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "api_auth_failures_total",
			Help: "Total number of rejected basic auth attempts",
		},
	)

	// WebSocket Metrics
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections",
			Help: "Current number of active WebSocket connections",
		},
	)

	WSMessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_sent_total",
			Help: "Total number of WebSocket messages sent",
		},
	)

	WSErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "websocket_errors_total",
			Help: "Total number of WebSocket errors",
		},
		[]string{"error_type"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)
)

// RecordOperationStart marks a run as admitted
func RecordOperationStart() {
	OperationRunning.Set(1)
	OperationProgress.Set(0)
}

// RecordOperationEnd records the outcome and duration of a finished run
func RecordOperationEnd(operation string, duration time.Duration, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	OperationsTotal.WithLabelValues(operation, outcome).Inc()
	OperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
	OperationRunning.Set(0)
	if err == nil {
		OperationProgress.Set(100)
	}
}

// RecordProgress updates the progress gauge
func RecordProgress(progress int) {
	OperationProgress.Set(float64(progress))
}

// RecordAdmissionRejected counts a rejected start
func RecordAdmissionRejected(operation string) {
	AdmissionRejections.WithLabelValues(operation).Inc()
}

// RecordOutputLine counts one processed line of tool output
func RecordOutputLine(operation string) {
	OutputLines.WithLabelValues(operation).Inc()
}

// RecordLastBackup stores the time of the last successful backup
func RecordLastBackup(t time.Time) {
	LastBackupSuccess.Set(float64(t.Unix()))
}

// RecordSnapshotList records a snapshot listing attempt
func RecordSnapshotList(duration time.Duration, err error) {
	SnapshotListDuration.Observe(duration.Seconds())
	if err != nil {
		SnapshotListFailures.Inc()
	}
}

// RecordVolumeScan records the outcome of a volume discovery scan
func RecordVolumeScan(count int, duration time.Duration) {
	VolumesDiscovered.Set(float64(count))
	VolumeScanDuration.Observe(duration.Seconds())
}

// RecordVolumeSize records the measured size of a volume
func RecordVolumeSize(volume string, bytes int64) {
	VolumeSizeBytes.WithLabelValues(volume).Set(float64(bytes))
}

// RecordScheduledRun records a scheduler decision ("started" or "skipped")
func RecordScheduledRun(result string) {
	ScheduledRuns.WithLabelValues(result).Inc()
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordCircuitBreakerTransition records a circuit breaker state change
func RecordCircuitBreakerTransition(name, from, to string, state float64) {
	CircuitBreakerTransitions.WithLabelValues(name, from, to).Inc()
	CircuitBreakerState.WithLabelValues(name).Set(state)
}
