package repository

import (
	"context"
	"log/slog"
	"time"
)

// StartJanitor periodically evicts terminal jobs older than retention.
// It returns immediately and stops when ctx is cancelled. A non-positive
// interval or retention disables eviction, keeping jobs for the process lifetime.
func StartJanitor(ctx context.Context, repo JobRepository, interval, retention time.Duration, logger *slog.Logger) {
	if interval <= 0 || retention <= 0 {
		logger.Info("job eviction disabled")
		return
	}

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				Sweep(ctx, repo, retention, logger)
			}
		}
	}()
}

// Sweep runs a single eviction pass.
func Sweep(ctx context.Context, repo JobRepository, retention time.Duration, logger *slog.Logger) int {
	n, err := repo.EvictBefore(ctx, time.Now().Add(-retention))
	if err != nil {
		logger.Error("job eviction failed", "error", err)
		return 0
	}
	if n > 0 {
		logger.Info("evicted finished jobs", "count", n, "retention", retention)
	}
	return n
}
