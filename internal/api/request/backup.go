package request

import (
	"fmt"

	"github.com/superpanel/superpanel/internal/model"
)

// CreateBackupJob is the body for POST /backups.
type CreateBackupJob struct {
	Name        string `json:"name" validate:"required,max=128"`
	Description string `json:"description" validate:"omitempty,max=1024"`
	Kind        string `json:"kind" validate:"required,oneof=database file_tree website full_server mailbox"`

	ServerID   *string `json:"server_id"`
	DatabaseID *string `json:"database_id"`
	DomainID   *string `json:"domain_id"`
	SourcePath *string `json:"source_path"`

	Compress      bool `json:"compress"`
	Encrypt       bool `json:"encrypt"`
	RetentionDays *int `json:"retention_days" validate:"omitempty,min=1,max=3650"`
}

// ValidateSource checks that the reference the kind reads from is present.
// Extra references are harmless and ignored.
func (r *CreateBackupJob) ValidateSource() error {
	switch r.Kind {
	case model.BackupKindDatabase:
		if r.DatabaseID == nil || *r.DatabaseID == "" {
			return fmt.Errorf("database backups require database_id")
		}
	case model.BackupKindFileTree:
		if r.SourcePath == nil || *r.SourcePath == "" {
			return fmt.Errorf("file_tree backups require source_path")
		}
	case model.BackupKindWebsite, model.BackupKindMailbox:
		if r.DomainID == nil || *r.DomainID == "" {
			return fmt.Errorf("%s backups require domain_id", r.Kind)
		}
	case model.BackupKindFullServer:
		if r.ServerID == nil || *r.ServerID == "" {
			return fmt.Errorf("full_server backups require server_id")
		}
	}
	return nil
}

// RestoreBackup is the body for POST /backups/{id}/restore.
type RestoreBackup struct {
	RestorePath string `json:"restore_path" validate:"required,max=4096"`
	Overwrite   bool   `json:"overwrite"`
}
