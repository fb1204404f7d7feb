package core

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	temporalclient "go.temporal.io/sdk/client"

	"github.com/superpanel/superpanel/internal/model"
)

const backupJobColumns = `id, name, description, kind, status, server_id, database_id, domain_id, source_path,
	file_path, file_size_in_bytes, is_compressed, is_encrypted, retention_days, expires_at,
	error_message, created_by, started_at, completed_at, created_at, updated_at`

func scanBackupJob(row pgx.Row) (*model.BackupJob, error) {
	var j model.BackupJob
	err := row.Scan(&j.ID, &j.Name, &j.Description, &j.Kind, &j.Status, &j.ServerID, &j.DatabaseID,
		&j.DomainID, &j.SourcePath, &j.FilePath, &j.FileSizeInBytes, &j.IsCompressed, &j.IsEncrypted,
		&j.RetentionDays, &j.ExpiresAt, &j.ErrorMessage, &j.CreatedBy, &j.StartedAt, &j.CompletedAt,
		&j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &j, nil
}

type BackupJobService struct {
	db DB
	tc temporalclient.Client
}

func NewBackupJobService(db DB, tc temporalclient.Client) *BackupJobService {
	return &BackupJobService{db: db, tc: tc}
}

// Create persists a pending job and fires its workflow. The job record is the
// source of truth for progress; the caller polls it rather than the workflow.
func (s *BackupJobService) Create(ctx context.Context, job *model.BackupJob) error {
	job.Status = model.StatusPending
	job.ExpiresAt = model.ComputeExpiry(job.CreatedAt, job.RetentionDays)

	_, err := s.db.Exec(ctx,
		`INSERT INTO backup_jobs (id, name, description, kind, status, server_id, database_id, domain_id, source_path,
		 file_path, file_size_in_bytes, is_compressed, is_encrypted, retention_days, expires_at,
		 error_message, created_by, started_at, completed_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)`,
		job.ID, job.Name, job.Description, job.Kind, job.Status, job.ServerID, job.DatabaseID,
		job.DomainID, job.SourcePath, job.FilePath, job.FileSizeInBytes, job.IsCompressed,
		job.IsEncrypted, job.RetentionDays, job.ExpiresAt, job.ErrorMessage, job.CreatedBy,
		job.StartedAt, job.CompletedAt, job.CreatedAt, job.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert backup job: %w", err)
	}

	if err := startWorkflow(ctx, s.tc, "CreateBackupJobWorkflow", workflowID("backup-job", job.ID), job.ID); err != nil {
		return fmt.Errorf("start CreateBackupJobWorkflow: %w", err)
	}
	return nil
}

func (s *BackupJobService) GetByID(ctx context.Context, id string) (*model.BackupJob, error) {
	job, err := scanBackupJob(s.db.QueryRow(ctx,
		`SELECT `+backupJobColumns+` FROM backup_jobs WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("backup job %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get backup job %s: %w", id, err)
	}
	return job, nil
}

// ListFilter narrows List to jobs referencing a given source. Empty fields
// are ignored; set fields combine with AND.
type ListFilter struct {
	ServerID   string
	DatabaseID string
	DomainID   string
	Kind       string
	Status     string
}

func (s *BackupJobService) List(ctx context.Context, filter ListFilter, limit int, cursor string) ([]model.BackupJob, bool, error) {
	query := `SELECT ` + backupJobColumns + ` FROM backup_jobs WHERE 1=1`
	var args []any
	argIdx := 1

	addFilter := func(column, value string) {
		if value == "" {
			return
		}
		query += fmt.Sprintf(` AND %s = $%d`, column, argIdx)
		args = append(args, value)
		argIdx++
	}
	addFilter("server_id", filter.ServerID)
	addFilter("database_id", filter.DatabaseID)
	addFilter("domain_id", filter.DomainID)
	addFilter("kind", filter.Kind)
	addFilter("status", filter.Status)

	if cursor != "" {
		query += fmt.Sprintf(` AND id > $%d`, argIdx)
		args = append(args, cursor)
		argIdx++
	}

	query += ` ORDER BY id`
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit+1)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, false, fmt.Errorf("list backup jobs: %w", err)
	}
	defer rows.Close()

	var jobs []model.BackupJob
	for rows.Next() {
		job, err := scanBackupJob(rows)
		if err != nil {
			return nil, false, fmt.Errorf("scan backup job: %w", err)
		}
		jobs = append(jobs, *job)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("iterate backup jobs: %w", err)
	}

	hasMore := len(jobs) > limit
	if hasMore {
		jobs = jobs[:limit]
	}
	return jobs, hasMore, nil
}

// Delete removes a job record and, best effort, its artifact file. Once the
// row is gone the delete has succeeded: an artifact that cannot be removed is
// logged as a warning, never surfaced as an error. Jobs in the running state
// are refused with ErrInvalidState, which callers see as a conflict.
func (s *BackupJobService) Delete(ctx context.Context, id string) error {
	var status, filePath string
	err := s.db.QueryRow(ctx, `SELECT status, file_path FROM backup_jobs WHERE id = $1`, id).Scan(&status, &filePath)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("backup job %s: %w", id, ErrNotFound)
		}
		return fmt.Errorf("get backup job %s: %w", id, err)
	}
	if status == model.StatusRunning {
		return fmt.Errorf("backup job %s is running: %w", id, ErrInvalidState)
	}

	// Log entries go with the job via ON DELETE CASCADE.
	_, err = s.db.Exec(ctx, `DELETE FROM backup_jobs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete backup job %s: %w", id, err)
	}

	if filePath != "" {
		if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
			zerolog.Ctx(ctx).Warn().Err(err).
				Str("backup_job_id", id).
				Str("file_path", filePath).
				Msg("backup job deleted but artifact removal failed")
		}
	}
	return nil
}
