package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BackupsStarted counts backup executions by kind.
	BackupsStarted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backup_jobs_started_total",
			Help: "Total number of backup job executions started",
		},
		[]string{"kind"},
	)

	// BackupsCompleted counts backup executions that reached completed.
	BackupsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backup_jobs_completed_total",
			Help: "Total number of backup jobs completed successfully",
		},
		[]string{"kind"},
	)

	// BackupsFailed counts backup executions that ended failed.
	BackupsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backup_jobs_failed_total",
			Help: "Total number of backup jobs that failed",
		},
		[]string{"kind"},
	)

	// BackupDuration observes end-to-end backup execution time.
	BackupDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "backup_job_duration_seconds",
			Help:    "Backup job execution duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 14),
		},
		[]string{"kind"},
	)

	// RestoresStarted counts restore attempts by kind.
	RestoresStarted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "restore_operations_started_total",
			Help: "Total number of restore operations started",
		},
		[]string{"kind"},
	)

	// RestoresFailed counts restore attempts that ended failed.
	RestoresFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "restore_operations_failed_total",
			Help: "Total number of restore operations that failed",
		},
		[]string{"kind"},
	)
)
