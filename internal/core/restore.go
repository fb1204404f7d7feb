package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	temporalclient "go.temporal.io/sdk/client"

	"github.com/superpanel/superpanel/internal/model"
	"github.com/superpanel/superpanel/internal/platform"
)

type RestoreService struct {
	db DB
	tc temporalclient.Client
}

func NewRestoreService(db DB, tc temporalclient.Client) *RestoreService {
	return &RestoreService{db: db, tc: tc}
}

// Restore runs a restore of a completed backup job and waits for its outcome.
// Each attempt is persisted as its own operation record; the backup job's
// status is never touched. A failed restore is a normal outcome and comes
// back as an unsuccessful result, not an error.
func (s *RestoreService) Restore(ctx context.Context, backupJobID string, req model.RestoreRequest) (*model.RestoreResult, error) {
	var status string
	err := s.db.QueryRow(ctx, `SELECT status FROM backup_jobs WHERE id = $1`, backupJobID).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("backup job %s: %w", backupJobID, ErrNotFound)
		}
		return nil, fmt.Errorf("get backup job %s: %w", backupJobID, err)
	}
	if status != model.StatusCompleted {
		return nil, fmt.Errorf("backup job %s is %s, only completed jobs can be restored: %w", backupJobID, status, ErrInvalidState)
	}

	op := &model.RestoreOperation{
		ID:          platform.NewID(),
		BackupJobID: backupJobID,
		Status:      model.StatusPending,
		RestorePath: req.RestorePath,
		Overwrite:   req.Overwrite,
		CreatedAt:   time.Now(),
	}
	_, err = s.db.Exec(ctx,
		`INSERT INTO restore_operations (id, backup_job_id, status, restore_path, overwrite, bytes_restored, message, started_at, completed_at, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		op.ID, op.BackupJobID, op.Status, op.RestorePath, op.Overwrite, op.BytesRestored,
		op.Message, op.StartedAt, op.CompletedAt, op.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert restore operation: %w", err)
	}

	run, err := s.tc.ExecuteWorkflow(ctx, temporalclient.StartWorkflowOptions{
		ID:        workflowID("restore", op.ID),
		TaskQueue: taskQueue,
	}, "RestoreBackupWorkflow", op.ID)
	if err != nil {
		return nil, fmt.Errorf("start RestoreBackupWorkflow: %w", err)
	}

	var result model.RestoreResult
	if err := run.Get(ctx, &result); err != nil {
		return nil, fmt.Errorf("await RestoreBackupWorkflow: %w", err)
	}
	return &result, nil
}

// GetOperation fetches one restore attempt by ID.
func (s *RestoreService) GetOperation(ctx context.Context, id string) (*model.RestoreOperation, error) {
	var op model.RestoreOperation
	err := s.db.QueryRow(ctx,
		`SELECT id, backup_job_id, status, restore_path, overwrite, bytes_restored, message, started_at, completed_at, created_at
		 FROM restore_operations WHERE id = $1`, id,
	).Scan(&op.ID, &op.BackupJobID, &op.Status, &op.RestorePath, &op.Overwrite, &op.BytesRestored,
		&op.Message, &op.StartedAt, &op.CompletedAt, &op.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("restore operation %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get restore operation %s: %w", id, err)
	}
	return &op, nil
}

// ListForJob returns a job's restore attempts newest first.
func (s *RestoreService) ListForJob(ctx context.Context, backupJobID string) ([]model.RestoreOperation, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, backup_job_id, status, restore_path, overwrite, bytes_restored, message, started_at, completed_at, created_at
		 FROM restore_operations WHERE backup_job_id = $1 ORDER BY created_at DESC`, backupJobID)
	if err != nil {
		return nil, fmt.Errorf("list restore operations: %w", err)
	}
	defer rows.Close()

	var ops []model.RestoreOperation
	for rows.Next() {
		var op model.RestoreOperation
		if err := rows.Scan(&op.ID, &op.BackupJobID, &op.Status, &op.RestorePath, &op.Overwrite,
			&op.BytesRestored, &op.Message, &op.StartedAt, &op.CompletedAt, &op.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan restore operation: %w", err)
		}
		ops = append(ops, op)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate restore operations: %w", err)
	}
	return ops, nil
}
