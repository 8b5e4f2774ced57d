package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iconidentify/tubegrab/internal/domain"
	"github.com/iconidentify/tubegrab/internal/repository"
)

// mockSubmitter records submitted job ids.
type mockSubmitter struct {
	mu  sync.Mutex
	ids []domain.JobID
	err error
}

func (m *mockSubmitter) Submit(ctx context.Context, id domain.JobID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.ids = append(m.ids, id)
	return nil
}

func TestDownloadService_Submit(t *testing.T) {
	repo := repository.NewInMemoryJobRepository()
	pool := &mockSubmitter{}
	svc := NewDownloadService(repo, pool, testLogger())

	job, err := svc.Submit(context.Background(), "https://youtu.be/abc123", " 22 ")
	require.NoError(t, err)

	assert.Equal(t, domain.JobStatePending, job.State)
	assert.Equal(t, domain.MessageQueued, job.Message)
	assert.Equal(t, "22", job.FormatID)
	assert.Equal(t, []domain.JobID{job.ID}, pool.ids)

	stored, err := svc.Status(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, job.ID, stored.ID)
}

func TestDownloadService_Submit_Validation(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		formatID string
		want     error
	}{
		{"bad url", "https://example.com/video", "22", domain.ErrInvalidURL},
		{"empty url", "", "22", domain.ErrInvalidURL},
		{"empty format", "https://youtu.be/abc123", "  ", domain.ErrInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := repository.NewInMemoryJobRepository()
			pool := &mockSubmitter{}
			svc := NewDownloadService(repo, pool, testLogger())

			_, err := svc.Submit(context.Background(), tt.url, tt.formatID)

			assert.ErrorIs(t, err, tt.want)
			stats, _ := repo.Stats(context.Background())
			assert.Zero(t, stats.Total(), "no job may be created for a rejected request")
			assert.Empty(t, pool.ids)
		})
	}
}

func TestDownloadService_Submit_PoolStopped(t *testing.T) {
	repo := repository.NewInMemoryJobRepository()
	svc := NewDownloadService(repo, &mockSubmitter{err: domain.ErrPoolStopped}, testLogger())

	_, err := svc.Submit(context.Background(), "https://youtu.be/abc123", "22")
	require.ErrorIs(t, err, domain.ErrPoolStopped)

	jobs, _ := repo.List(context.Background(), nil, 0, 0)
	require.Len(t, jobs, 1)
	assert.Equal(t, domain.JobStateFailed, jobs[0].State)
	assert.Contains(t, jobs[0].Message, "worker pool stopped")
}

func TestDownloadService_Status_NotFound(t *testing.T) {
	svc := NewDownloadService(repository.NewInMemoryJobRepository(), &mockSubmitter{}, testLogger())

	_, err := svc.Status(context.Background(), "missing")

	assert.True(t, errors.Is(err, domain.ErrJobNotFound))
}

func TestDownloadService_List(t *testing.T) {
	repo := repository.NewInMemoryJobRepository()
	svc := NewDownloadService(repo, &mockSubmitter{}, testLogger())
	ctx := context.Background()

	var ids []domain.JobID
	for i := 0; i < 3; i++ {
		job, err := svc.Submit(ctx, "https://youtu.be/abc123", "22")
		require.NoError(t, err)
		ids = append(ids, job.ID)
	}
	_, err := repo.Transition(ctx, ids[0], domain.JobStateRunning, domain.MessageRunning)
	require.NoError(t, err)

	jobs, total, err := svc.List(ctx, nil, 2, 0)
	require.NoError(t, err)
	assert.Len(t, jobs, 2)
	assert.Equal(t, 3, total)

	pending := domain.JobStatePending
	jobs, total, err = svc.List(ctx, &pending, 0, 0)
	require.NoError(t, err)
	assert.Len(t, jobs, 2)
	assert.Equal(t, 2, total)
}
