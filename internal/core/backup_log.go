package core

import (
	"context"
	"fmt"
	"time"

	"github.com/superpanel/superpanel/internal/model"
	"github.com/superpanel/superpanel/internal/platform"
)

// BackupLogService manages the append-only per-job log.
type BackupLogService struct {
	db DB
}

func NewBackupLogService(db DB) *BackupLogService {
	return &BackupLogService{db: db}
}

func (s *BackupLogService) Append(ctx context.Context, jobID, level, message string, details *string) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO backup_log_entries (id, backup_job_id, level, message, details, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		platform.NewID(), jobID, level, message, details, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("insert backup log entry: %w", err)
	}
	return nil
}

// ListFor returns a job's log entries newest first. Entry ids are random, so
// ordering keys on created_at with id as the tiebreaker; the cursor is the id
// of the last entry of the previous page.
func (s *BackupLogService) ListFor(ctx context.Context, jobID string, limit int, cursor string) ([]model.BackupLogEntry, bool, error) {
	query := `SELECT id, backup_job_id, level, message, details, created_at
		 FROM backup_log_entries WHERE backup_job_id = $1`
	args := []any{jobID}
	argIdx := 2

	if cursor != "" {
		query += fmt.Sprintf(
			` AND (created_at, id) < (SELECT created_at, id FROM backup_log_entries WHERE id = $%d)`, argIdx)
		args = append(args, cursor)
		argIdx++
	}

	query += ` ORDER BY created_at DESC, id DESC`
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit+1)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, false, fmt.Errorf("list backup log entries: %w", err)
	}
	defer rows.Close()

	var entries []model.BackupLogEntry
	for rows.Next() {
		var e model.BackupLogEntry
		if err := rows.Scan(&e.ID, &e.BackupJobID, &e.Level, &e.Message, &e.Details, &e.CreatedAt); err != nil {
			return nil, false, fmt.Errorf("scan backup log entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("iterate backup log entries: %w", err)
	}

	hasMore := len(entries) > limit
	if hasMore {
		entries = entries[:limit]
	}
	return entries, hasMore, nil
}
