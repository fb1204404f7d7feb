package model

// Backup job status constants. A job progresses Pending -> Running and then
// reaches exactly one terminal status. Cancelled is declared for API
// compatibility with the wider panel but no engine transition produces it.
const (
	StatusPending   = "pending"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusCancelled = "cancelled"
)

// Backup log entry levels.
const (
	LogLevelInfo    = "info"
	LogLevelWarning = "warning"
	LogLevelError   = "error"
)

// IsTerminalStatus reports whether a job or restore operation in the given
// status may never transition again.
func IsTerminalStatus(status string) bool {
	return status == StatusCompleted || status == StatusFailed || status == StatusCancelled
}
