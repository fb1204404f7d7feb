package core

import (
	temporalclient "go.temporal.io/sdk/client"
)

type Services struct {
	BackupJob *BackupJobService
	BackupLog *BackupLogService
	Restore   *RestoreService
}

func NewServices(db DB, tc temporalclient.Client) *Services {
	return &Services{
		BackupJob: NewBackupJobService(db, tc),
		BackupLog: NewBackupLogService(db),
		Restore:   NewRestoreService(db, tc),
	}
}
