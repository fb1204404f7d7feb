package backup

import (
	"fmt"
	"time"
)

// timestampLayout is the artifact timestamp format (yyyyMMdd_HHmmss).
const timestampLayout = "20060102_150405"

// encSuffix marks an encrypted artifact.
const encSuffix = ".enc"

// ArtifactFileName returns the canonical artifact file name for a job:
// {kind}_{jobID}_{timestamp}{.tar|.tar.gz}[.enc]. The workspace is always
// packed into a single tar container so that the artifact is one file
// regardless of which pipeline stages are enabled.
func ArtifactFileName(kind, jobID string, ts time.Time, compressed, encrypted bool) string {
	ext := ".tar"
	if compressed {
		ext = ".tar.gz"
	}
	if encrypted {
		ext += encSuffix
	}
	return fmt.Sprintf("%s_%s_%s%s", kind, jobID, ts.UTC().Format(timestampLayout), ext)
}
