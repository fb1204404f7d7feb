package workflow

import (
	"go.temporal.io/sdk/workflow"

	"github.com/superpanel/superpanel/internal/activity"
)

// CleanupExpiredBackupsWorkflow removes jobs whose retention window lapsed,
// artifact first, record second. Runs on a cron schedule.
func CleanupExpiredBackupsWorkflow(ctx workflow.Context) error {
	ctx = dbActivityCtx(ctx)
	logger := workflow.GetLogger(ctx)

	var expired []activity.ExpiredBackupJob
	err := workflow.ExecuteActivity(ctx, "GetExpiredBackupJobs").Get(ctx, &expired)
	if err != nil {
		return err
	}
	logger.Info("found expired backup jobs to clean up", "count", len(expired))

	for _, job := range expired {
		err := workflow.ExecuteActivity(ctx, "DeleteBackupArtifact", job.FilePath).Get(ctx, nil)
		if err != nil {
			logger.Error("failed to delete expired artifact", "backupJobID", job.ID, "error", err)
			// Keep the record so the next sweep retries the file.
			continue
		}
		err = workflow.ExecuteActivity(ctx, "DeleteBackupJob", job.ID).Get(ctx, nil)
		if err != nil {
			logger.Error("failed to delete expired backup job", "backupJobID", job.ID, "error", err)
		}
	}

	return nil
}

// FailStaleBackupJobsWorkflow fails running jobs that exceeded the maximum
// runtime, usually because a worker died mid-backup. Runs on a cron schedule.
func FailStaleBackupJobsWorkflow(ctx workflow.Context, maxHours int) error {
	ctx = dbActivityCtx(ctx)

	var failed int64
	err := workflow.ExecuteActivity(ctx, "FailStaleBackupJobs", activity.FailStaleBackupJobsParams{
		MaxHours: maxHours,
	}).Get(ctx, &failed)
	if err != nil {
		return err
	}

	if failed > 0 {
		workflow.GetLogger(ctx).Info("failed stale backup jobs", "count", failed, "maxHours", maxHours)
	}
	return nil
}
