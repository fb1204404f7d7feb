package workflow

import (
	"go.temporal.io/sdk/workflow"

	"github.com/superpanel/superpanel/internal/activity"
	"github.com/superpanel/superpanel/internal/model"
)

// CreateBackupJobWorkflow drives one backup job from pending to a terminal
// status. The engine activity does the heavy lifting; this workflow owns the
// status transitions so a crash anywhere still converges on completed/failed.
func CreateBackupJobWorkflow(ctx workflow.Context, jobID string) error {
	dbCtx := dbActivityCtx(ctx)

	err := workflow.ExecuteActivity(dbCtx, "MarkBackupJobRunning", jobID).Get(ctx, nil)
	if err != nil {
		return err
	}

	var result activity.BackupRunResult
	err = workflow.ExecuteActivity(engineActivityCtx(ctx), "ExecuteBackupJob", jobID).Get(ctx, &result)
	if err != nil {
		_ = setBackupJobFailed(dbCtx, jobID, err)
		return err
	}

	err = workflow.ExecuteActivity(dbCtx, "CompleteBackupJob", activity.CompleteBackupJobParams{
		ID:        jobID,
		FilePath:  result.FilePath,
		SizeBytes: result.SizeBytes,
	}).Get(ctx, nil)
	if err != nil {
		_ = setBackupJobFailed(dbCtx, jobID, err)
		return err
	}

	return nil
}

// RestoreBackupWorkflow drives one restore operation and reports its outcome.
// A restore that fails in the engine is a normal result for the caller, so
// the workflow itself succeeds and returns Success=false.
func RestoreBackupWorkflow(ctx workflow.Context, operationID string) (*model.RestoreResult, error) {
	dbCtx := dbActivityCtx(ctx)

	err := workflow.ExecuteActivity(dbCtx, "MarkRestoreRunning", operationID).Get(ctx, nil)
	if err != nil {
		return nil, err
	}

	var outcome activity.RestoreOutcome
	err = workflow.ExecuteActivity(engineActivityCtx(ctx), "ExecuteRestore", operationID).Get(ctx, &outcome)
	if err != nil {
		// The failure lands in the backup job's log as well; the job id has
		// to be looked up since the workflow only receives the operation id.
		var op model.RestoreOperation
		if opErr := workflow.ExecuteActivity(dbCtx, "GetRestoreOperation", operationID).Get(ctx, &op); opErr == nil {
			_ = workflow.ExecuteActivity(dbCtx, "AppendBackupLog", activity.AppendBackupLogParams{
				BackupJobID: op.BackupJobID,
				Level:       model.LogLevelError,
				Message:     err.Error(),
			}).Get(ctx, nil)
		}
		_ = workflow.ExecuteActivity(dbCtx, "FailRestore", activity.FailRestoreParams{
			ID:      operationID,
			Message: err.Error(),
		}).Get(ctx, nil)
		return &model.RestoreResult{Success: false, Message: err.Error()}, nil
	}

	err = workflow.ExecuteActivity(dbCtx, "CompleteRestore", activity.CompleteRestoreParams{
		ID:            operationID,
		BytesRestored: outcome.BytesRestored,
		Message:       "restore completed",
	}).Get(ctx, nil)
	if err != nil {
		return nil, err
	}

	return &model.RestoreResult{
		Success:       true,
		Message:       "restore completed",
		BytesRestored: outcome.BytesRestored,
	}, nil
}
