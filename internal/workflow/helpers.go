package workflow

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/superpanel/superpanel/internal/activity"
	"github.com/superpanel/superpanel/internal/model"
)

// dbActivityCtx configures options for quick database activities.
func dbActivityCtx(ctx workflow.Context) workflow.Context {
	return workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts:    3,
			InitialInterval:    1 * time.Second,
			MaximumInterval:    10 * time.Second,
			BackoffCoefficient: 2.0,
		},
	})
}

// engineActivityCtx configures options for engine runs. These move real data
// and can take hours; they are not retried automatically because a failed run
// marks its job failed and a rerun is an operator decision.
func engineActivityCtx(ctx workflow.Context) workflow.Context {
	return workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 6 * time.Hour,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 1,
		},
	})
}

// setBackupJobFailed marks a job failed and appends the error to its log.
// Callers typically ignore the returned error since the primary error is
// more important.
func setBackupJobFailed(ctx workflow.Context, id string, err error) error {
	_ = workflow.ExecuteActivity(ctx, "AppendBackupLog", activity.AppendBackupLogParams{
		BackupJobID: id,
		Level:       model.LogLevelError,
		Message:     err.Error(),
	}).Get(ctx, nil)
	return workflow.ExecuteActivity(ctx, "FailBackupJob", activity.FailBackupJobParams{
		ID:      id,
		Message: err.Error(),
	}).Get(ctx, nil)
}
