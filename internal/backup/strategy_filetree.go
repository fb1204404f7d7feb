package backup

import (
	"context"
	"fmt"
	"os"

	"github.com/superpanel/superpanel/internal/model"
)

func produceFileTree(ctx context.Context, env *Env, job *model.BackupJob, workspace string) error {
	if job.SourcePath == nil || *job.SourcePath == "" {
		return fmt.Errorf("file tree backup requires a source path")
	}
	n, err := copyTree(ctx, *job.SourcePath, workspace)
	if err != nil {
		return err
	}
	env.Info(ctx, job.ID, fmt.Sprintf("copied %d bytes from %s", n, *job.SourcePath))
	return nil
}

// produceWebsite captures a domain's file tree. The source path defaults to
// the domain's storage directory when the request does not name one.
func produceWebsite(ctx context.Context, env *Env, job *model.BackupJob, workspace string) error {
	src := ""
	if job.SourcePath != nil {
		src = *job.SourcePath
	}
	if src == "" {
		if job.DomainID == nil {
			return fmt.Errorf("website backup requires a domain reference or source path")
		}
		domain, err := env.Catalog.DomainByID(ctx, *job.DomainID)
		if err != nil {
			return fmt.Errorf("resolve domain %s: %w", *job.DomainID, err)
		}
		src = domain.StoragePath
		env.Info(ctx, job.ID, fmt.Sprintf("backing up website %s", domain.Name))
	}

	n, err := copyTree(ctx, src, workspace)
	if err != nil {
		return err
	}
	env.Info(ctx, job.ID, fmt.Sprintf("copied %d bytes from %s", n, src))
	return nil
}

// restoreFileTree copies the extracted workspace into the requested
// destination. Serves both the file tree and website kinds.
func restoreFileTree(ctx context.Context, env *Env, job *model.BackupJob, workspace string, req model.RestoreRequest) (int64, error) {
	if req.RestorePath == "" {
		return 0, fmt.Errorf("restore requires a destination path")
	}
	if !req.Overwrite {
		if entries, err := os.ReadDir(req.RestorePath); err == nil && len(entries) > 0 {
			return 0, fmt.Errorf("restore path %s is not empty and overwrite was not requested", req.RestorePath)
		}
	}

	n, err := copyTree(ctx, workspace, req.RestorePath)
	if err != nil {
		return n, err
	}
	env.Info(ctx, job.ID, fmt.Sprintf("restored %d bytes to %s", n, req.RestorePath))
	return n, nil
}
