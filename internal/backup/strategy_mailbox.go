package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/superpanel/superpanel/internal/model"
)

// mailboxExportFile is the per-domain mail account metadata export.
const mailboxExportFile = "accounts.json"

func produceMailbox(ctx context.Context, env *Env, job *model.BackupJob, workspace string) error {
	if job.DomainID == nil {
		return fmt.Errorf("mailbox backup requires a domain reference")
	}
	domain, err := env.Catalog.DomainByID(ctx, *job.DomainID)
	if err != nil {
		return fmt.Errorf("resolve domain %s: %w", *job.DomainID, err)
	}

	accounts, err := env.Catalog.MailAccountsByDomain(ctx, domain.ID)
	if err != nil {
		return fmt.Errorf("list mail accounts for %s: %w", domain.Name, err)
	}

	data, err := json.MarshalIndent(accounts, "", "  ")
	if err != nil {
		return fmt.Errorf("encode mail accounts: %w", err)
	}
	if err := os.WriteFile(filepath.Join(workspace, mailboxExportFile), data, 0o644); err != nil {
		return fmt.Errorf("write mail account export: %w", err)
	}

	env.Info(ctx, job.ID, fmt.Sprintf("exported %d mail accounts for %s", len(accounts), domain.Name))
	return nil
}

func restoreMailbox(ctx context.Context, env *Env, job *model.BackupJob, workspace string, _ model.RestoreRequest) (int64, error) {
	if job.DomainID == nil {
		return 0, fmt.Errorf("mailbox restore requires a domain reference")
	}

	data, err := os.ReadFile(filepath.Join(workspace, mailboxExportFile))
	if err != nil {
		return 0, fmt.Errorf("read mail account export: %w", err)
	}

	var accounts []model.MailAccount
	if err := json.Unmarshal(data, &accounts); err != nil {
		return 0, fmt.Errorf("decode mail account export: %w", err)
	}

	if err := env.Catalog.RestoreMailAccounts(ctx, *job.DomainID, accounts); err != nil {
		return 0, fmt.Errorf("replay mail accounts: %w", err)
	}

	env.Info(ctx, job.ID, fmt.Sprintf("restored %d mail accounts", len(accounts)))
	return int64(len(data)), nil
}
