package activity

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/superpanel/superpanel/internal/model"
	"github.com/superpanel/superpanel/internal/platform"
)

// DB defines the database operations used by activity structs.
// *pgxpool.Pool satisfies this interface.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store contains activities that read from and update the job database.
type Store struct {
	db DB
}

// NewStore creates a new Store activity struct.
func NewStore(db DB) *Store {
	return &Store{db: db}
}

// GetBackupJob retrieves a backup job by its ID.
func (a *Store) GetBackupJob(ctx context.Context, id string) (*model.BackupJob, error) {
	var j model.BackupJob
	err := a.db.QueryRow(ctx,
		`SELECT id, name, description, kind, status, server_id, database_id, domain_id, source_path,
		 file_path, file_size_in_bytes, is_compressed, is_encrypted, retention_days, expires_at,
		 error_message, created_by, started_at, completed_at, created_at, updated_at
		 FROM backup_jobs WHERE id = $1`, id,
	).Scan(&j.ID, &j.Name, &j.Description, &j.Kind, &j.Status, &j.ServerID, &j.DatabaseID,
		&j.DomainID, &j.SourcePath, &j.FilePath, &j.FileSizeInBytes, &j.IsCompressed, &j.IsEncrypted,
		&j.RetentionDays, &j.ExpiresAt, &j.ErrorMessage, &j.CreatedBy, &j.StartedAt, &j.CompletedAt,
		&j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("get backup job by id: %w", err)
	}
	return &j, nil
}

// MarkBackupJobRunning transitions a job to running and stamps its start time.
func (a *Store) MarkBackupJobRunning(ctx context.Context, id string) error {
	_, err := a.db.Exec(ctx,
		`UPDATE backup_jobs SET status = $1, started_at = now(), updated_at = now() WHERE id = $2`,
		model.StatusRunning, id)
	return err
}

// CompleteBackupJobParams holds the parameters for CompleteBackupJob.
type CompleteBackupJobParams struct {
	ID        string
	FilePath  string
	SizeBytes int64
}

// CompleteBackupJob records a job's published artifact and marks it completed.
func (a *Store) CompleteBackupJob(ctx context.Context, params CompleteBackupJobParams) error {
	_, err := a.db.Exec(ctx,
		`UPDATE backup_jobs SET status = $1, file_path = $2, file_size_in_bytes = $3,
		 error_message = NULL, completed_at = now(), updated_at = now() WHERE id = $4`,
		model.StatusCompleted, params.FilePath, params.SizeBytes, params.ID)
	return err
}

// FailBackupJobParams holds the parameters for FailBackupJob.
type FailBackupJobParams struct {
	ID      string
	Message string
}

// FailBackupJob marks a job failed with the final error message.
func (a *Store) FailBackupJob(ctx context.Context, params FailBackupJobParams) error {
	_, err := a.db.Exec(ctx,
		`UPDATE backup_jobs SET status = $1, error_message = $2, completed_at = now(), updated_at = now() WHERE id = $3`,
		model.StatusFailed, params.Message, params.ID)
	return err
}

// AppendBackupLogParams holds the parameters for AppendBackupLog.
type AppendBackupLogParams struct {
	BackupJobID string
	Level       string
	Message     string
	Details     *string
}

// AppendBackupLog appends one entry to a job's log.
func (a *Store) AppendBackupLog(ctx context.Context, params AppendBackupLogParams) error {
	_, err := a.db.Exec(ctx,
		`INSERT INTO backup_log_entries (id, backup_job_id, level, message, details, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		platform.NewID(), params.BackupJobID, params.Level, params.Message, params.Details, time.Now())
	return err
}

// GetRestoreOperation retrieves a restore operation by its ID.
func (a *Store) GetRestoreOperation(ctx context.Context, id string) (*model.RestoreOperation, error) {
	var op model.RestoreOperation
	err := a.db.QueryRow(ctx,
		`SELECT id, backup_job_id, status, restore_path, overwrite, bytes_restored, message, started_at, completed_at, created_at
		 FROM restore_operations WHERE id = $1`, id,
	).Scan(&op.ID, &op.BackupJobID, &op.Status, &op.RestorePath, &op.Overwrite, &op.BytesRestored,
		&op.Message, &op.StartedAt, &op.CompletedAt, &op.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("get restore operation by id: %w", err)
	}
	return &op, nil
}

// MarkRestoreRunning transitions a restore operation to running.
func (a *Store) MarkRestoreRunning(ctx context.Context, id string) error {
	_, err := a.db.Exec(ctx,
		`UPDATE restore_operations SET status = $1, started_at = now() WHERE id = $2`,
		model.StatusRunning, id)
	return err
}

// CompleteRestoreParams holds the parameters for CompleteRestore.
type CompleteRestoreParams struct {
	ID            string
	BytesRestored int64
	Message       string
}

// CompleteRestore marks a restore operation completed.
func (a *Store) CompleteRestore(ctx context.Context, params CompleteRestoreParams) error {
	_, err := a.db.Exec(ctx,
		`UPDATE restore_operations SET status = $1, bytes_restored = $2, message = $3, completed_at = now() WHERE id = $4`,
		model.StatusCompleted, params.BytesRestored, params.Message, params.ID)
	return err
}

// FailRestoreParams holds the parameters for FailRestore.
type FailRestoreParams struct {
	ID      string
	Message string
}

// FailRestore marks a restore operation failed.
func (a *Store) FailRestore(ctx context.Context, params FailRestoreParams) error {
	_, err := a.db.Exec(ctx,
		`UPDATE restore_operations SET status = $1, message = $2, completed_at = now() WHERE id = $3`,
		model.StatusFailed, params.Message, params.ID)
	return err
}

// ExpiredBackupJob identifies a job whose retention window has lapsed.
type ExpiredBackupJob struct {
	ID       string
	FilePath string
}

// GetExpiredBackupJobs lists terminal jobs past their expiry time.
func (a *Store) GetExpiredBackupJobs(ctx context.Context) ([]ExpiredBackupJob, error) {
	rows, err := a.db.Query(ctx,
		`SELECT id, file_path FROM backup_jobs
		 WHERE expires_at < now() AND status IN ($1, $2)`,
		model.StatusCompleted, model.StatusFailed)
	if err != nil {
		return nil, fmt.Errorf("list expired backup jobs: %w", err)
	}
	defer rows.Close()

	var expired []ExpiredBackupJob
	for rows.Next() {
		var e ExpiredBackupJob
		if err := rows.Scan(&e.ID, &e.FilePath); err != nil {
			return nil, fmt.Errorf("scan expired backup job: %w", err)
		}
		expired = append(expired, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expired backup jobs: %w", err)
	}
	return expired, nil
}

// DeleteBackupJob removes a job record. Log entries cascade.
func (a *Store) DeleteBackupJob(ctx context.Context, id string) error {
	_, err := a.db.Exec(ctx, `DELETE FROM backup_jobs WHERE id = $1`, id)
	return err
}

// FailStaleBackupJobsParams holds the parameters for FailStaleBackupJobs.
type FailStaleBackupJobsParams struct {
	MaxHours int
}

// FailStaleBackupJobs fails running jobs whose worker died without reporting.
// Returns the number of jobs failed.
func (a *Store) FailStaleBackupJobs(ctx context.Context, params FailStaleBackupJobsParams) (int64, error) {
	tag, err := a.db.Exec(ctx,
		`UPDATE backup_jobs SET status = $1, error_message = $2, completed_at = now(), updated_at = now()
		 WHERE status = $3 AND started_at < now() - make_interval(hours => $4)`,
		model.StatusFailed, "backup exceeded maximum runtime", model.StatusRunning, params.MaxHours)
	if err != nil {
		return 0, fmt.Errorf("fail stale backup jobs: %w", err)
	}
	return tag.RowsAffected(), nil
}
