package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/superpanel/superpanel/internal/model"
)

// dumpConcurrency bounds how many database exports run at once during a
// full-server backup.
const dumpConcurrency = 4

// serverManifest records what a full-server artifact contains, so a restore
// can be checked against what was captured.
type serverManifest struct {
	ServerID   string   `json:"server_id"`
	ServerName string   `json:"server_name"`
	Databases  []string `json:"databases"`
	Domains    []string `json:"domains"`
}

func produceFullServer(ctx context.Context, env *Env, job *model.BackupJob, workspace string) error {
	if job.ServerID == nil {
		return fmt.Errorf("full server backup requires a server reference")
	}
	server, err := env.Catalog.ServerByID(ctx, *job.ServerID)
	if err != nil {
		return fmt.Errorf("resolve server %s: %w", *job.ServerID, err)
	}

	databases, err := env.Catalog.DatabasesByServer(ctx, server.ID)
	if err != nil {
		return fmt.Errorf("list databases for server %s: %w", server.Name, err)
	}
	domains, err := env.Catalog.DomainsByServer(ctx, server.ID)
	if err != nil {
		return fmt.Errorf("list domains for server %s: %w", server.Name, err)
	}
	env.Info(ctx, job.ID, fmt.Sprintf("server %s: %d databases, %d domains", server.Name, len(databases), len(domains)))

	dbDir := filepath.Join(workspace, "databases")
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return fmt.Errorf("create databases dir: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(dumpConcurrency)
	for _, db := range databases {
		g.Go(func() error {
			f, err := os.Create(filepath.Join(dbDir, db.Name+".sql"))
			if err != nil {
				return fmt.Errorf("create export for %s: %w", db.Name, err)
			}
			if err := env.Catalog.DumpDatabase(gctx, db.Name, f); err != nil {
				f.Close()
				return fmt.Errorf("dump database %s: %w", db.Name, err)
			}
			return f.Close()
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	domainNames := make([]string, 0, len(domains))
	for _, domain := range domains {
		if _, err := copyTree(ctx, domain.StoragePath, filepath.Join(workspace, "domains", domain.Name)); err != nil {
			return fmt.Errorf("copy domain %s: %w", domain.Name, err)
		}
		domainNames = append(domainNames, domain.Name)
	}

	dbNames := make([]string, 0, len(databases))
	for _, db := range databases {
		dbNames = append(dbNames, db.Name)
	}
	manifest, err := json.MarshalIndent(serverManifest{
		ServerID:   server.ID,
		ServerName: server.Name,
		Databases:  dbNames,
		Domains:    domainNames,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(workspace, "server.json"), manifest, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	env.Info(ctx, job.ID, fmt.Sprintf("server %s captured", server.Name))
	return nil
}

// restoreFullServer replays every exported database against the live server
// and copies each captured domain tree under {restorePath}/domains/{name}.
func restoreFullServer(ctx context.Context, env *Env, job *model.BackupJob, workspace string, req model.RestoreRequest) (int64, error) {
	var total int64

	exports, err := filepath.Glob(filepath.Join(workspace, "databases", "*.sql"))
	if err != nil {
		return 0, err
	}
	for _, export := range exports {
		name := strings.TrimSuffix(filepath.Base(export), ".sql")
		f, err := os.Open(export)
		if err != nil {
			return total, fmt.Errorf("open export for %s: %w", name, err)
		}
		cr := &countingReader{r: f}
		err = env.Catalog.RestoreDatabase(ctx, name, cr)
		f.Close()
		total += cr.n
		if err != nil {
			return total, fmt.Errorf("replay export into %s: %w", name, err)
		}
		env.Info(ctx, job.ID, fmt.Sprintf("database %s restored", name))
	}

	domainsDir := filepath.Join(workspace, "domains")
	if entries, err := os.ReadDir(domainsDir); err == nil {
		if req.RestorePath == "" {
			return total, fmt.Errorf("restore requires a destination path for domain trees")
		}
		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			n, err := copyTree(ctx, filepath.Join(domainsDir, entry.Name()), filepath.Join(req.RestorePath, "domains", entry.Name()))
			total += n
			if err != nil {
				return total, fmt.Errorf("restore domain %s: %w", entry.Name(), err)
			}
			env.Info(ctx, job.ID, fmt.Sprintf("domain %s restored", entry.Name()))
		}
	}

	return total, nil
}
