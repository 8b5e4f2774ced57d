package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iconidentify/tubegrab/internal/domain"
)

// InMemoryJobRepository implements JobRepository using in-memory storage.
type InMemoryJobRepository struct {
	mu   sync.RWMutex
	jobs map[domain.JobID]*domain.Job
	now  func() time.Time
}

// NewInMemoryJobRepository creates a new in-memory job repository.
func NewInMemoryJobRepository() *InMemoryJobRepository {
	return &InMemoryJobRepository{
		jobs: make(map[domain.JobID]*domain.Job),
		now:  time.Now,
	}
}

// Create registers a new pending job under a fresh UUID.
func (r *InMemoryJobRepository) Create(ctx context.Context, url, formatID string) (*domain.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := domain.JobID(uuid.New().String())
	for {
		if _, taken := r.jobs[id]; !taken {
			break
		}
		id = domain.JobID(uuid.New().String())
	}

	job := domain.NewJob(id, url, formatID)
	job.CreatedAt = r.now()
	job.UpdatedAt = job.CreatedAt
	r.jobs[id] = job

	return job.Clone(), nil
}

// Transition moves a job to a new state.
func (r *InMemoryJobRepository) Transition(ctx context.Context, id domain.JobID, to domain.JobState, message string) (*domain.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[id]
	if !ok {
		return nil, domain.ErrJobNotFound
	}
	if err := job.Transition(to, message); err != nil {
		return nil, err
	}
	job.UpdatedAt = r.now()

	return job.Clone(), nil
}

// Get retrieves a job by ID.
func (r *InMemoryJobRepository) Get(ctx context.Context, id domain.JobID) (*domain.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	job, ok := r.jobs[id]
	if !ok {
		return nil, domain.ErrJobNotFound
	}

	return job.Clone(), nil
}

// List returns jobs newest first, optionally filtered by state.
func (r *InMemoryJobRepository) List(ctx context.Context, state *domain.JobState, limit, offset int) ([]*domain.Job, error) {
	r.mu.RLock()
	result := make([]*domain.Job, 0, len(r.jobs))
	for _, job := range r.jobs {
		if state != nil && job.State != *state {
			continue
		}
		result = append(result, job.Clone())
	}
	r.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	return paginate(result, limit, offset), nil
}

// Stats returns job counts per state.
func (r *InMemoryJobRepository) Stats(ctx context.Context) (*QueueStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := &QueueStats{}
	for _, job := range r.jobs {
		stats.add(job.State, 1)
	}

	return stats, nil
}

// EvictBefore deletes terminal jobs last updated before cutoff.
func (r *InMemoryJobRepository) EvictBefore(ctx context.Context, cutoff time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	evicted := 0
	for id, job := range r.jobs {
		if job.State.IsTerminal() && job.UpdatedAt.Before(cutoff) {
			delete(r.jobs, id)
			evicted++
		}
	}

	return evicted, nil
}

// Clear removes all jobs (useful for testing).
func (r *InMemoryJobRepository) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.jobs = make(map[domain.JobID]*domain.Job)
}

func paginate(jobs []*domain.Job, limit, offset int) []*domain.Job {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(jobs) {
		return []*domain.Job{}
	}
	jobs = jobs[offset:]
	if limit > 0 && limit < len(jobs) {
		jobs = jobs[:limit]
	}
	return jobs
}
