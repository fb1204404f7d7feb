package backup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/natefinch/atomic"
	"github.com/rs/zerolog"

	"github.com/superpanel/superpanel/internal/model"
)

// Engine runs backup jobs end to end: strategy produce, pack, optional
// compression and encryption, then atomic publication into the artifact root.
// One Engine serves all kinds and is safe for concurrent jobs; every job works
// in its own staging directory.
type Engine struct {
	Root    string
	Staging string
	Secret  string
	Env     *Env
	Logger  zerolog.Logger
}

// Result describes the published artifact of a completed run.
type Result struct {
	FilePath  string
	SizeBytes int64
}

// NewEngine wires an engine over an artifact root. Staging lives under the
// root so the final publish is a same-filesystem rename.
func NewEngine(root, secret string, catalog Catalog, recorder Recorder, logger zerolog.Logger) *Engine {
	return &Engine{
		Root:    root,
		Staging: filepath.Join(root, ".staging"),
		Secret:  secret,
		Env:     &Env{Catalog: catalog, Recorder: recorder},
		Logger:  logger,
	}
}

// Run executes a backup job and returns the published artifact. Whatever
// happens, the job's staging directory is removed before Run returns; on
// success the only thing left behind is the artifact file in Root.
func (e *Engine) Run(ctx context.Context, job *model.BackupJob) (*Result, error) {
	strategy, err := StrategyFor(job.Kind)
	if err != nil {
		return nil, err
	}
	if job.IsEncrypted && e.Secret == "" {
		return nil, fmt.Errorf("job requests encryption but no encryption secret is configured")
	}

	if err := os.MkdirAll(e.Staging, 0o755); err != nil {
		return nil, fmt.Errorf("create staging root: %w", err)
	}
	staging, err := os.MkdirTemp(e.Staging, "job-"+job.ID+"-")
	if err != nil {
		return nil, fmt.Errorf("create staging dir: %w", err)
	}
	defer os.RemoveAll(staging)

	log := e.Logger.With().Str("backup_job_id", job.ID).Str("kind", job.Kind).Logger()
	log.Info().Msg("backup run started")
	e.Env.Info(ctx, job.ID, fmt.Sprintf("%s backup started", job.Kind))

	workspace := filepath.Join(staging, "workspace")
	if err := os.MkdirAll(workspace, 0o755); err != nil {
		return nil, fmt.Errorf("create workspace: %w", err)
	}

	if err := strategy.Produce(ctx, e.Env, job, workspace); err != nil {
		return nil, fmt.Errorf("produce payload: %w", err)
	}

	name := ArtifactFileName(job.Kind, job.ID, time.Now(), job.IsCompressed, job.IsEncrypted)
	archive := filepath.Join(staging, "artifact.tar")
	if err := Pack(ctx, workspace, archive, job.IsCompressed); err != nil {
		return nil, fmt.Errorf("pack workspace: %w", err)
	}
	// The payload tree is no longer needed once packed; drop it early so a
	// large job does not hold double its size in staging.
	if err := os.RemoveAll(workspace); err != nil {
		return nil, fmt.Errorf("remove workspace: %w", err)
	}
	e.Env.Info(ctx, job.ID, "payload packed")

	if job.IsEncrypted {
		encrypted := archive + encSuffix
		if err := EncryptFile(archive, encrypted, e.Secret); err != nil {
			return nil, fmt.Errorf("encrypt artifact: %w", err)
		}
		if err := os.Remove(archive); err != nil {
			return nil, fmt.Errorf("remove plaintext artifact: %w", err)
		}
		archive = encrypted
		e.Env.Info(ctx, job.ID, "artifact encrypted")
	}

	final := filepath.Join(e.Root, name)
	if err := atomic.ReplaceFile(archive, final); err != nil {
		return nil, fmt.Errorf("publish artifact: %w", err)
	}
	info, err := os.Stat(final)
	if err != nil {
		return nil, fmt.Errorf("stat artifact: %w", err)
	}

	log.Info().Str("file_path", final).Int64("size_bytes", info.Size()).Msg("backup run completed")
	e.Env.Info(ctx, job.ID, fmt.Sprintf("artifact published: %s (%d bytes)", name, info.Size()))
	return &Result{FilePath: final, SizeBytes: info.Size()}, nil
}
