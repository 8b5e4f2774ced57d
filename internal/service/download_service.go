package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/iconidentify/tubegrab/internal/domain"
	"github.com/iconidentify/tubegrab/internal/metrics"
	"github.com/iconidentify/tubegrab/internal/repository"
)

// Submitter hands pending jobs to the executor.
type Submitter interface {
	Submit(ctx context.Context, id domain.JobID) error
}

// DownloadService creates and tracks download jobs.
type DownloadService struct {
	jobRepo repository.JobRepository
	pool    Submitter
	logger  *slog.Logger
}

// NewDownloadService creates a new download service.
func NewDownloadService(jobRepo repository.JobRepository, pool Submitter, logger *slog.Logger) *DownloadService {
	return &DownloadService{
		jobRepo: jobRepo,
		pool:    pool,
		logger:  logger,
	}
}

// Submit registers a pending job and queues it. It returns without waiting
// for the download to start.
func (s *DownloadService) Submit(ctx context.Context, url, formatID string) (*domain.Job, error) {
	if _, err := domain.ExtractVideoID(url); err != nil {
		return nil, err
	}
	formatID = strings.TrimSpace(formatID)
	if formatID == "" {
		return nil, domain.ErrInvalidFormat
	}

	job, err := s.jobRepo.Create(ctx, url, formatID)
	if err != nil {
		return nil, err
	}
	metrics.IncJobsCreated()

	if err := s.pool.Submit(ctx, job.ID); err != nil {
		// The job never reached a worker; record that instead of leaving it pending.
		if _, terr := s.jobRepo.Transition(context.Background(), job.ID, domain.JobStateFailed, "Download failed: "+err.Error()); terr != nil {
			s.logger.Error("failed to mark unsubmitted job", "job_id", job.ID, "error", terr)
		}
		metrics.RecordJobFinished(string(domain.JobStateFailed), 0)
		return nil, err
	}

	s.logger.Info("download queued", "job_id", job.ID, "url", url, "format_id", formatID)
	return job, nil
}

// Status returns a snapshot of one job.
func (s *DownloadService) Status(ctx context.Context, id domain.JobID) (*domain.Job, error) {
	return s.jobRepo.Get(ctx, id)
}

// List returns a page of jobs newest first and the number of jobs matching state.
func (s *DownloadService) List(ctx context.Context, state *domain.JobState, limit, offset int) ([]*domain.Job, int, error) {
	jobs, err := s.jobRepo.List(ctx, state, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	stats, err := s.jobRepo.Stats(ctx)
	if err != nil {
		return nil, 0, err
	}

	total := stats.Total()
	if state != nil {
		total = stats.Count(*state)
	}
	return jobs, total, nil
}
