package downloader

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/iconidentify/tubegrab/internal/domain"
)

// RetryConfig holds retry configuration.
type RetryConfig struct {
	MaxAttempts   int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

// DefaultRetryConfig returns sensible defaults for retry configuration.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:   3,
		InitialDelay:  2 * time.Second,
		MaxDelay:      30 * time.Second,
		BackoffFactor: 2.0,
	}
}

// Retry executes fn with exponential backoff until it succeeds, attempts
// run out, or shouldRetry rejects the error.
func Retry[T any](ctx context.Context, cfg RetryConfig, fn func() (T, error), shouldRetry func(error) bool) (T, error) {
	var zero T
	var lastErr error

	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	delay := cfg.InitialDelay

	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if shouldRetry != nil && !shouldRetry(err) {
			break
		}
		if attempt == cfg.MaxAttempts-1 {
			break
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}

		delay = time.Duration(float64(delay) * cfg.BackoffFactor)
		if cfg.MaxDelay > 0 && delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}
	}

	return zero, lastErr
}

// IsRetryable reports whether a source error may succeed on a later attempt.
// Bad URLs, unavailable videos and cancellation are permanent.
func IsRetryable(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return false
	case errors.Is(err, domain.ErrInvalidURL), errors.Is(err, domain.ErrInvalidFormat):
		return false
	case errors.Is(err, ErrUnavailable):
		return false
	}
	return true
}

// RetryingSource retries metadata fetches of another Source.
// Downloads are passed through unchanged since a partial download is
// already cleaned up and restarting it belongs to the caller.
type RetryingSource struct {
	next   Source
	cfg    RetryConfig
	logger *slog.Logger
}

// NewRetryingSource wraps next with fetch retries.
func NewRetryingSource(next Source, cfg RetryConfig, logger *slog.Logger) *RetryingSource {
	return &RetryingSource{next: next, cfg: cfg, logger: logger}
}

// Fetch calls the wrapped source, retrying transient failures.
func (s *RetryingSource) Fetch(ctx context.Context, url string) (*domain.RawMetadata, error) {
	attempt := 0
	return Retry(ctx, s.cfg, func() (*domain.RawMetadata, error) {
		attempt++
		meta, err := s.next.Fetch(ctx, url)
		if err != nil && IsRetryable(err) && attempt < s.cfg.MaxAttempts {
			s.logger.Warn("metadata fetch failed, retrying",
				"url", url,
				"attempt", attempt,
				"error", err,
			)
		}
		return meta, err
	}, IsRetryable)
}

// Download delegates to the wrapped source.
func (s *RetryingSource) Download(ctx context.Context, req domain.DownloadRequest) (string, error) {
	return s.next.Download(ctx, req)
}
