package backup

import (
	"context"
	"fmt"

	"github.com/superpanel/superpanel/internal/model"
)

// Strategy is one kind's producer/restorer pair. The producer writes the
// backup payload for a job into an empty workspace directory; the restorer
// consumes an extracted workspace and reports how many bytes it wrote or
// replayed. Defining both halves together keeps them from drifting apart.
type Strategy struct {
	Produce func(ctx context.Context, env *Env, job *model.BackupJob, workspace string) error
	Restore func(ctx context.Context, env *Env, job *model.BackupJob, workspace string, req model.RestoreRequest) (int64, error)
}

// registry maps each backup kind to its strategy. Adding a kind means adding
// one entry here; neither orchestrator branches on kind anywhere else.
var registry = map[string]Strategy{
	model.BackupKindDatabase: {
		Produce: produceDatabase,
		Restore: restoreDatabase,
	},
	model.BackupKindFileTree: {
		Produce: produceFileTree,
		Restore: restoreFileTree,
	},
	model.BackupKindWebsite: {
		Produce: produceWebsite,
		Restore: restoreFileTree,
	},
	model.BackupKindFullServer: {
		Produce: produceFullServer,
		Restore: restoreFullServer,
	},
	model.BackupKindMailbox: {
		Produce: produceMailbox,
		Restore: restoreMailbox,
	},
}

// StrategyFor looks up the strategy registered for a kind.
func StrategyFor(kind string) (Strategy, error) {
	s, ok := registry[kind]
	if !ok {
		return Strategy{}, fmt.Errorf("unsupported backup kind: %s", kind)
	}
	return s, nil
}
