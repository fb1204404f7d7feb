package backup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/superpanel/superpanel/internal/model"
)

func produceDatabase(ctx context.Context, env *Env, job *model.BackupJob, workspace string) error {
	if job.DatabaseID == nil {
		return fmt.Errorf("database backup requires a database reference")
	}
	db, err := env.Catalog.DatabaseByID(ctx, *job.DatabaseID)
	if err != nil {
		return fmt.Errorf("resolve database %s: %w", *job.DatabaseID, err)
	}

	path := filepath.Join(workspace, db.Name+".sql")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	if err := env.Catalog.DumpDatabase(ctx, db.Name, f); err != nil {
		f.Close()
		return fmt.Errorf("dump database %s: %w", db.Name, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close export file: %w", err)
	}

	env.Info(ctx, job.ID, fmt.Sprintf("database %s exported", db.Name))
	return nil
}

func restoreDatabase(ctx context.Context, env *Env, job *model.BackupJob, workspace string, _ model.RestoreRequest) (int64, error) {
	if job.DatabaseID == nil {
		return 0, fmt.Errorf("database restore requires a database reference")
	}
	db, err := env.Catalog.DatabaseByID(ctx, *job.DatabaseID)
	if err != nil {
		return 0, fmt.Errorf("resolve database %s: %w", *job.DatabaseID, err)
	}

	exports, err := filepath.Glob(filepath.Join(workspace, "*.sql"))
	if err != nil {
		return 0, err
	}
	if len(exports) != 1 {
		return 0, fmt.Errorf("expected one database export in artifact, found %d", len(exports))
	}

	f, err := os.Open(exports[0])
	if err != nil {
		return 0, fmt.Errorf("open export file: %w", err)
	}
	defer f.Close()

	cr := &countingReader{r: f}
	if err := env.Catalog.RestoreDatabase(ctx, db.Name, cr); err != nil {
		return cr.n, fmt.Errorf("replay export into %s: %w", db.Name, err)
	}

	env.Info(ctx, job.ID, fmt.Sprintf("database %s restored", db.Name))
	return cr.n, nil
}
