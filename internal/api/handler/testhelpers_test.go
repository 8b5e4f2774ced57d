package handler

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/iconidentify/tubegrab/internal/domain"
	"github.com/iconidentify/tubegrab/internal/repository"
)

// testLogger returns a silent logger for tests.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mockJobRepository is a test implementation of repository.JobRepository.
type mockJobRepository struct {
	stats    *repository.QueueStats
	statsErr error
}

func newMockJobRepository() *mockJobRepository {
	return &mockJobRepository{stats: &repository.QueueStats{}}
}

func (m *mockJobRepository) Create(ctx context.Context, url, formatID string) (*domain.Job, error) {
	return domain.NewJob("job-1", url, formatID), nil
}

func (m *mockJobRepository) Transition(ctx context.Context, id domain.JobID, to domain.JobState, message string) (*domain.Job, error) {
	return nil, domain.ErrJobNotFound
}

func (m *mockJobRepository) Get(ctx context.Context, id domain.JobID) (*domain.Job, error) {
	return nil, domain.ErrJobNotFound
}

func (m *mockJobRepository) List(ctx context.Context, state *domain.JobState, limit, offset int) ([]*domain.Job, error) {
	return nil, nil
}

func (m *mockJobRepository) Stats(ctx context.Context) (*repository.QueueStats, error) {
	if m.statsErr != nil {
		return nil, m.statsErr
	}
	return m.stats, nil
}

func (m *mockJobRepository) EvictBefore(ctx context.Context, cutoff time.Time) (int, error) {
	return 0, nil
}

type mockQueue int

func (q mockQueue) QueueDepth() int { return int(q) }

// mockVideoService is a test implementation of VideoInfoService.
type mockVideoService struct {
	info   *domain.VideoInfo
	err    error
	gotURL string
}

func (m *mockVideoService) Info(ctx context.Context, url string) (*domain.VideoInfo, error) {
	m.gotURL = url
	if m.err != nil {
		return nil, m.err
	}
	return m.info, nil
}

// mockDownloadManager is a test implementation of DownloadManager.
type mockDownloadManager struct {
	jobs      map[domain.JobID]*domain.Job
	submitErr error
	listErr   error

	gotState  *domain.JobState
	gotLimit  int
	gotOffset int
}

func newMockDownloadManager() *mockDownloadManager {
	return &mockDownloadManager{jobs: make(map[domain.JobID]*domain.Job)}
}

func (m *mockDownloadManager) Submit(ctx context.Context, url, formatID string) (*domain.Job, error) {
	if m.submitErr != nil {
		return nil, m.submitErr
	}
	job := domain.NewJob("job-1", url, formatID)
	m.jobs[job.ID] = job
	return job, nil
}

func (m *mockDownloadManager) Status(ctx context.Context, id domain.JobID) (*domain.Job, error) {
	job, ok := m.jobs[id]
	if !ok {
		return nil, domain.ErrJobNotFound
	}
	return job, nil
}

func (m *mockDownloadManager) List(ctx context.Context, state *domain.JobState, limit, offset int) ([]*domain.Job, int, error) {
	m.gotState, m.gotLimit, m.gotOffset = state, limit, offset
	if m.listErr != nil {
		return nil, 0, m.listErr
	}
	jobs := make([]*domain.Job, 0, len(m.jobs))
	for _, j := range m.jobs {
		if state == nil || j.State == *state {
			jobs = append(jobs, j)
		}
	}
	return jobs, len(jobs), nil
}
