package model

import "time"

// BackupLogEntry is an append-only, timestamped log line scoped to a backup
// job. Entries are never mutated and are removed only when the owning job is
// deleted. A job's log interleaves its backup run and any later restores.
type BackupLogEntry struct {
	ID          string    `json:"id"`
	BackupJobID string    `json:"backup_job_id"`
	Level       string    `json:"level"`
	Message     string    `json:"message"`
	Details     *string   `json:"details,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
