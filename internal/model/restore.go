package model

import "time"

// RestoreOperation is one restore attempt against a completed backup job.
// It carries its own Pending -> Running -> Completed/Failed state machine so
// that a restore in progress never overloads the backup job's status.
type RestoreOperation struct {
	ID            string     `json:"id"`
	BackupJobID   string     `json:"backup_job_id"`
	Status        string     `json:"status"`
	RestorePath   string     `json:"restore_path"`
	Overwrite     bool       `json:"overwrite"`
	BytesRestored int64      `json:"bytes_restored"`
	Message       *string    `json:"message,omitempty"`
	StartedAt     *time.Time `json:"started_at,omitempty"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// RestoreRequest is the caller-supplied input to a restore. Not persisted
// by itself; its fields are copied onto the RestoreOperation.
type RestoreRequest struct {
	RestorePath string `json:"restore_path"`
	Overwrite   bool   `json:"overwrite"`
}

// RestoreResult reports the outcome of a restore attempt back to the caller.
type RestoreResult struct {
	Success       bool   `json:"success"`
	Message       string `json:"message,omitempty"`
	BytesRestored int64  `json:"bytes_restored"`
}
