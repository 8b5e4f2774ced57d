package domain

import (
	"time"
)

// JobID is a unique identifier for a download job.
type JobID string

// String returns the string representation of the JobID.
func (id JobID) String() string {
	return string(id)
}

// JobState represents the current state of a download job.
type JobState string

const (
	JobStatePending   JobState = "pending"
	JobStateRunning   JobState = "running"
	JobStateCompleted JobState = "completed"
	JobStateFailed    JobState = "failed"
)

// Default job messages.
const (
	MessageQueued    = "Download queued"
	MessageRunning   = "Downloading"
	MessageCompleted = "Download completed successfully"
)

// Valid reports whether s is one of the four lifecycle states.
func (s JobState) Valid() bool {
	switch s {
	case JobStatePending, JobStateRunning, JobStateCompleted, JobStateFailed:
		return true
	}
	return false
}

// IsTerminal reports whether no further transitions are possible from s.
func (s JobState) IsTerminal() bool {
	return s == JobStateCompleted || s == JobStateFailed
}

// CanTransitionTo reports whether moving from s to next follows
// pending -> running -> {completed|failed}. A pending job may fail directly
// when it never reaches a worker.
func (s JobState) CanTransitionTo(next JobState) bool {
	switch s {
	case JobStatePending:
		return next == JobStateRunning || next == JobStateFailed
	case JobStateRunning:
		return next == JobStateCompleted || next == JobStateFailed
	}
	return false
}

// Job represents one tracked asynchronous download.
type Job struct {
	ID        JobID
	State     JobState
	Message   string
	URL       string
	FormatID  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewJob creates a pending job for the given URL and format.
func NewJob(id JobID, url, formatID string) *Job {
	now := time.Now()
	return &Job{
		ID:        id,
		State:     JobStatePending,
		Message:   MessageQueued,
		URL:       url,
		FormatID:  formatID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Transition moves the job to next with the given message.
func (j *Job) Transition(next JobState, message string) error {
	if !j.State.CanTransitionTo(next) {
		return ErrInvalidTransition
	}
	j.State = next
	j.Message = message
	j.UpdatedAt = time.Now()
	return nil
}

// Clone returns a copy that shares no mutable state with j.
func (j *Job) Clone() *Job {
	c := *j
	return &c
}

// DownloadRequest describes one download handed to the metadata source.
type DownloadRequest struct {
	URL      string
	FormatID string
	// OutputDir and BaseName determine the file path; the source picks the extension.
	OutputDir string
	BaseName  string
}
