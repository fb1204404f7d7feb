package model

import "time"

// Backup kind constants. Each kind selects one producer/restorer pair from
// the strategy registry.
const (
	BackupKindDatabase   = "database"
	BackupKindFileTree   = "file_tree"
	BackupKindFullServer = "full_server"
	BackupKindWebsite    = "website"
	BackupKindMailbox    = "mailbox"
)

// BackupKinds lists every registered backup kind.
var BackupKinds = []string{
	BackupKindDatabase,
	BackupKindFileTree,
	BackupKindFullServer,
	BackupKindWebsite,
	BackupKindMailbox,
}

// BackupJob is the persisted record of one backup request and its outcome.
//
// FilePath and FileSizeInBytes are meaningful only once Status is completed;
// the file at FilePath then exists on disk with exactly that size. Only the
// source references relevant to Kind are set; the rest stay nil. The engine
// never guarantees a consistent snapshot of a live, mutating source.
type BackupJob struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Kind        string `json:"kind"`
	Status      string `json:"status"`

	ServerID   *string `json:"server_id,omitempty"`
	DatabaseID *string `json:"database_id,omitempty"`
	DomainID   *string `json:"domain_id,omitempty"`
	SourcePath *string `json:"source_path,omitempty"`

	FilePath        string `json:"file_path,omitempty"`
	FileSizeInBytes int64  `json:"file_size_in_bytes"`
	IsCompressed    bool   `json:"is_compressed"`
	IsEncrypted     bool   `json:"is_encrypted"`

	RetentionDays int        `json:"retention_days"`
	ExpiresAt     time.Time  `json:"expires_at"`
	ErrorMessage  *string    `json:"error_message,omitempty"`
	CreatedBy     string     `json:"created_by"`
	StartedAt     *time.Time `json:"started_at,omitempty"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// ComputeExpiry returns createdAt shifted by the retention window.
func ComputeExpiry(createdAt time.Time, retentionDays int) time.Time {
	return createdAt.Add(time.Duration(retentionDays) * 24 * time.Hour)
}
