package activity

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/superpanel/superpanel/internal/backup"
	"github.com/superpanel/superpanel/internal/metrics"
	"github.com/superpanel/superpanel/internal/model"
)

// Executor contains activities that run the backup engine on this worker.
// Heavy lifting happens here; workflows only sequence these calls.
type Executor struct {
	logger zerolog.Logger
	store  *Store
	engine *backup.Engine
}

// NewExecutor creates a new Executor activity struct.
func NewExecutor(logger zerolog.Logger, store *Store, engine *backup.Engine) *Executor {
	return &Executor{
		logger: logger.With().Str("component", "executor-activity").Logger(),
		store:  store,
		engine: engine,
	}
}

// BackupRunResult reports a published artifact back to the workflow.
type BackupRunResult struct {
	FilePath  string
	SizeBytes int64
}

// ExecuteBackupJob runs a backup job end to end and returns the artifact.
func (a *Executor) ExecuteBackupJob(ctx context.Context, jobID string) (*BackupRunResult, error) {
	job, err := a.store.GetBackupJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	a.logger.Info().Str("backup_job_id", job.ID).Str("kind", job.Kind).Msg("ExecuteBackupJob")

	metrics.BackupsStarted.WithLabelValues(job.Kind).Inc()
	start := time.Now()

	result, err := a.engine.Run(ctx, job)
	if err != nil {
		metrics.BackupsFailed.WithLabelValues(job.Kind).Inc()
		return nil, err
	}

	metrics.BackupsCompleted.WithLabelValues(job.Kind).Inc()
	metrics.BackupDuration.WithLabelValues(job.Kind).Observe(time.Since(start).Seconds())
	return &BackupRunResult{FilePath: result.FilePath, SizeBytes: result.SizeBytes}, nil
}

// RestoreOutcome reports how much a restore wrote or replayed.
type RestoreOutcome struct {
	BytesRestored int64
}

// ExecuteRestore runs a restore operation's artifact back into its target.
func (a *Executor) ExecuteRestore(ctx context.Context, operationID string) (*RestoreOutcome, error) {
	op, err := a.store.GetRestoreOperation(ctx, operationID)
	if err != nil {
		return nil, err
	}
	job, err := a.store.GetBackupJob(ctx, op.BackupJobID)
	if err != nil {
		return nil, err
	}
	a.logger.Info().Str("restore_operation_id", op.ID).Str("backup_job_id", job.ID).Msg("ExecuteRestore")

	metrics.RestoresStarted.WithLabelValues(job.Kind).Inc()

	n, err := a.engine.Restore(ctx, job, model.RestoreRequest{
		RestorePath: op.RestorePath,
		Overwrite:   op.Overwrite,
	})
	if err != nil {
		metrics.RestoresFailed.WithLabelValues(job.Kind).Inc()
		return nil, err
	}
	return &RestoreOutcome{BytesRestored: n}, nil
}

// DeleteBackupArtifact removes an artifact file from the backup root. Missing
// files are fine; retention may race a manual delete.
func (a *Executor) DeleteBackupArtifact(ctx context.Context, filePath string) error {
	if filePath == "" {
		return nil
	}
	a.logger.Info().Str("file_path", filePath).Msg("DeleteBackupArtifact")
	if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove artifact %s: %w", filePath, err)
	}
	return nil
}
