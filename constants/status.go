package constants

// JobStatus is the canonical status for extraction job rows.
type JobStatus string

// Stable values (store these exact strings in DB).
const (
	JobStatusQueued  JobStatus = "QUEUED"  // accepted, waiting for a worker
	JobStatusRunning JobStatus = "RUNNING" // in progress
	JobStatusDone    JobStatus = "DONE"    // terminal success
	JobStatusFailed  JobStatus = "FAILED"  // terminal failure
)

// Valid reports whether s is one of the stable status values.
func (s JobStatus) Valid() bool {
	switch s {
	case JobStatusQueued, JobStatusRunning, JobStatusDone, JobStatusFailed:
		return true
	}
	return false
}

// Terminal reports whether the status admits no further transitions.
func (s JobStatus) Terminal() bool {
	return s == JobStatusDone || s == JobStatusFailed
}
