package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"

	"github.com/iconidentify/tubegrab/internal/domain"
	"github.com/iconidentify/tubegrab/internal/downloader"
	"github.com/iconidentify/tubegrab/internal/format"
	"github.com/iconidentify/tubegrab/internal/metrics"
)

// VideoConfig holds metadata fetch limits.
type VideoConfig struct {
	FetchConcurrency int
	// FetchTimeout bounds one source fetch; zero disables the bound.
	FetchTimeout time.Duration
}

// VideoService resolves video URLs into normalized metadata and download options.
type VideoService struct {
	source       downloader.Source
	sem          *semaphore.Weighted
	group        singleflight.Group
	fetchTimeout time.Duration
	logger       *slog.Logger
}

// NewVideoService creates a new video service.
func NewVideoService(source downloader.Source, cfg VideoConfig, logger *slog.Logger) *VideoService {
	if cfg.FetchConcurrency <= 0 {
		cfg.FetchConcurrency = 4
	}
	return &VideoService{
		source:       source,
		sem:          semaphore.NewWeighted(int64(cfg.FetchConcurrency)),
		fetchTimeout: cfg.FetchTimeout,
		logger:       logger,
	}
}

// Info validates url, fetches its metadata and builds the option list.
func (s *VideoService) Info(ctx context.Context, url string) (*domain.VideoInfo, error) {
	videoID, err := domain.ExtractVideoID(url)
	if err != nil {
		return nil, err
	}

	raw, err := s.fetch(ctx, url)
	if err != nil {
		s.logger.Warn("metadata fetch failed", "video_id", videoID, "error", err)
		return nil, err
	}

	return &domain.VideoInfo{
		Video:   Normalize(raw),
		Options: format.Select(raw.Formats, raw.Duration),
	}, nil
}

// fetch runs the source call off the request goroutine. Concurrent requests
// for the same URL share one call, and at most FetchConcurrency calls run at once.
func (s *VideoService) fetch(ctx context.Context, url string) (*domain.RawMetadata, error) {
	start := time.Now()

	ch := s.group.DoChan(url, func() (any, error) {
		// The shared call must outlive any single waiting request.
		var (
			fctx   context.Context
			cancel context.CancelFunc
		)
		if s.fetchTimeout > 0 {
			fctx, cancel = context.WithTimeout(context.WithoutCancel(ctx), s.fetchTimeout)
		} else {
			fctx, cancel = context.WithCancel(context.WithoutCancel(ctx))
		}
		defer cancel()

		if err := s.sem.Acquire(fctx, 1); err != nil {
			return nil, err
		}
		defer s.sem.Release(1)

		return s.source.Fetch(fctx, url)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		outcome := "success"
		switch {
		case res.Err != nil && errors.Is(res.Err, context.DeadlineExceeded):
			outcome = "timeout"
		case res.Err != nil:
			outcome = "error"
		case res.Shared:
			outcome = "shared"
		}
		metrics.RecordMetadataFetch(outcome, time.Since(start))

		if res.Err != nil {
			return nil, s.translate(res.Err)
		}
		raw, ok := res.Val.(*domain.RawMetadata)
		if !ok || raw == nil {
			return nil, fmt.Errorf("%w: source returned no metadata", domain.ErrExtraction)
		}
		return raw, nil
	}
}

// translate folds source failures into the domain error taxonomy.
func (s *VideoService) translate(err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidURL), errors.Is(err, domain.ErrExtraction):
		return err
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: timed out after %s", domain.ErrExtraction, s.fetchTimeout)
	}
	return fmt.Errorf("%w: %w", domain.ErrExtraction, err)
}
