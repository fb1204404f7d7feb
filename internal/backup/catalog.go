package backup

import (
	"context"
	"io"

	"github.com/superpanel/superpanel/internal/model"
)

// Catalog is the engine's read-only view of the records owned by the wider
// panel, plus the replay operations restores need. Lookups are used to
// validate source references and derive names; the engine never creates,
// updates, or deletes catalog records.
type Catalog interface {
	ServerByID(ctx context.Context, id string) (*model.Server, error)
	DatabaseByID(ctx context.Context, id string) (*model.Database, error)
	DomainByID(ctx context.Context, id string) (*model.Domain, error)

	DatabasesByServer(ctx context.Context, serverID string) ([]model.Database, error)
	DomainsByServer(ctx context.Context, serverID string) ([]model.Domain, error)
	MailAccountsByDomain(ctx context.Context, domainID string) ([]model.MailAccount, error)

	// DumpDatabase streams a schema/data export of the named database into w.
	DumpDatabase(ctx context.Context, name string, w io.Writer) error
	// RestoreDatabase replays an export previously written by DumpDatabase
	// against the named live database.
	RestoreDatabase(ctx context.Context, name string, r io.Reader) error
	// RestoreMailAccounts replays exported mail account metadata against the
	// mail service backing the given domain.
	RestoreMailAccounts(ctx context.Context, domainID string, accounts []model.MailAccount) error
}

// Recorder appends entries to a job's append-only log. Implementations must
// tolerate being called from concurrent jobs.
type Recorder interface {
	Append(ctx context.Context, jobID, level, message string, details *string) error
}

// Env bundles the collaborators strategies may use.
type Env struct {
	Catalog  Catalog
	Recorder Recorder
}

// Info appends an info-level entry to the job log, ignoring recorder errors:
// the log is an observability channel, not a correctness dependency.
func (e *Env) Info(ctx context.Context, jobID, message string) {
	_ = e.Recorder.Append(ctx, jobID, model.LogLevelInfo, message, nil)
}

// Warn appends a warning-level entry to the job log.
func (e *Env) Warn(ctx context.Context, jobID, message string) {
	_ = e.Recorder.Append(ctx, jobID, model.LogLevelWarning, message, nil)
}
