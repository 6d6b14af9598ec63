package domain

import "strings"

// JobStatus is the normalized lifecycle state of an asynchronous match job.
type JobStatus string

const (
	StatusQueued    JobStatus = "queued"
	StatusRunning   JobStatus = "running"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
	StatusCanceled  JobStatus = "canceled"
	StatusUnknown   JobStatus = "unknown"
)

// Classification is the UI-facing interpretation of a raw job status.
type Classification struct {
	Status   JobStatus
	Label    string
	Progress int
	// Polling reports whether the job may still change and should be polled again.
	Polling bool
}

// Classify maps a raw server status string to its Classification. It is total:
// any unrecognized or empty input yields StatusUnknown. Matching is
// case-insensitive, and the "cancelled" spelling variant normalizes the same
// as "canceled".
func Classify(raw string) Classification {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "queued":
		return Classification{Status: StatusQueued, Label: "Queued", Progress: 28, Polling: true}
	case "running":
		return Classification{Status: StatusRunning, Label: "Matching", Progress: 72, Polling: true}
	case "completed":
		return Classification{Status: StatusCompleted, Label: "Completed", Progress: 100}
	case "failed":
		return Classification{Status: StatusFailed, Label: "Failed", Progress: 100}
	case "canceled", "cancelled":
		return Classification{Status: StatusCanceled, Label: "Canceled", Progress: 100}
	default:
		return Classification{Status: StatusUnknown, Label: "Not Started", Progress: 0}
	}
}

// Terminal reports whether no further status change can occur. Polling must
// stop permanently once a terminal status is observed.
func (s JobStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCanceled
}

// StillPolling reports whether the job is pending and another poll is due.
func (s JobStatus) StillPolling() bool {
	return s == StatusQueued || s == StatusRunning
}
