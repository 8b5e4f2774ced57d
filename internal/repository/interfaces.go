package repository

import (
	"context"
	"time"

	"github.com/iconidentify/tubegrab/internal/domain"
)

// JobRepository is the registry of download jobs.
// Every method is atomic with respect to the others; returned jobs are
// snapshots that callers may keep without further locking.
type JobRepository interface {
	// Create registers a new pending job and returns it.
	Create(ctx context.Context, url, formatID string) (*domain.Job, error)

	// Transition moves a job to a new state following the job lifecycle.
	Transition(ctx context.Context, id domain.JobID, to domain.JobState, message string) (*domain.Job, error)

	// Get retrieves a job by ID.
	Get(ctx context.Context, id domain.JobID) (*domain.Job, error)

	// List returns jobs newest first, optionally filtered by state.
	List(ctx context.Context, state *domain.JobState, limit, offset int) ([]*domain.Job, error)

	// Stats returns job counts per state.
	Stats(ctx context.Context) (*QueueStats, error)

	// EvictBefore deletes terminal jobs last updated before cutoff.
	EvictBefore(ctx context.Context, cutoff time.Time) (int, error)
}

// QueueStats contains job counts per state.
type QueueStats struct {
	Pending   int
	Running   int
	Completed int
	Failed    int
}

// Total returns the number of jobs across all states.
func (s *QueueStats) Total() int {
	return s.Pending + s.Running + s.Completed + s.Failed
}

// Count returns the number of jobs in state.
func (s *QueueStats) Count(state domain.JobState) int {
	switch state {
	case domain.JobStatePending:
		return s.Pending
	case domain.JobStateRunning:
		return s.Running
	case domain.JobStateCompleted:
		return s.Completed
	case domain.JobStateFailed:
		return s.Failed
	}
	return 0
}

func (s *QueueStats) add(state domain.JobState, n int) {
	switch state {
	case domain.JobStatePending:
		s.Pending += n
	case domain.JobStateRunning:
		s.Running += n
	case domain.JobStateCompleted:
		s.Completed += n
	case domain.JobStateFailed:
		s.Failed += n
	}
}
