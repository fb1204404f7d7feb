package backup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/superpanel/superpanel/internal/model"
)

// Restore runs a backup job's artifact back through the pipeline in reverse:
// optional decryption, unpack, then the kind's restorer. It returns the number
// of bytes written or replayed. The staging directory is removed before
// Restore returns regardless of outcome.
func (e *Engine) Restore(ctx context.Context, job *model.BackupJob, req model.RestoreRequest) (int64, error) {
	strategy, err := StrategyFor(job.Kind)
	if err != nil {
		return 0, err
	}
	if job.FilePath == "" {
		return 0, fmt.Errorf("job has no artifact to restore from")
	}
	if job.IsEncrypted && e.Secret == "" {
		return 0, fmt.Errorf("artifact is encrypted but no encryption secret is configured")
	}

	if err := os.MkdirAll(e.Staging, 0o755); err != nil {
		return 0, fmt.Errorf("create staging root: %w", err)
	}
	staging, err := os.MkdirTemp(e.Staging, "restore-"+job.ID+"-")
	if err != nil {
		return 0, fmt.Errorf("create staging dir: %w", err)
	}
	defer os.RemoveAll(staging)

	log := e.Logger.With().Str("backup_job_id", job.ID).Str("kind", job.Kind).Logger()
	log.Info().Str("file_path", job.FilePath).Msg("restore started")
	e.Env.Info(ctx, job.ID, "restore started")

	archive := job.FilePath
	if job.IsEncrypted {
		decrypted := filepath.Join(staging, "artifact.tar")
		if err := DecryptFile(archive, decrypted, e.Secret); err != nil {
			return 0, fmt.Errorf("decrypt artifact: %w", err)
		}
		archive = decrypted
		e.Env.Info(ctx, job.ID, "artifact decrypted")
	}

	workspace := filepath.Join(staging, "workspace")
	if err := Unpack(ctx, archive, workspace, job.IsCompressed); err != nil {
		return 0, fmt.Errorf("unpack artifact: %w", err)
	}

	n, err := strategy.Restore(ctx, e.Env, job, workspace, req)
	if err != nil {
		return n, fmt.Errorf("restore payload: %w", err)
	}

	log.Info().Int64("bytes_restored", n).Msg("restore completed")
	e.Env.Info(ctx, job.ID, fmt.Sprintf("restore completed: %d bytes", n))
	return n, nil
}
