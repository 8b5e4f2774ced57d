package downloader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/iconidentify/tubegrab/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fastRetry(attempts int) RetryConfig {
	return RetryConfig{
		MaxAttempts:   attempts,
		InitialDelay:  time.Millisecond,
		MaxDelay:      5 * time.Millisecond,
		BackoffFactor: 2,
	}
}

func TestRetry_SucceedsAfterFailures(t *testing.T) {
	calls := 0
	got, err := Retry(context.Background(), fastRetry(3), func() (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("transient")
		}
		return "ok", nil
	}, nil)

	if err != nil {
		t.Fatalf("Retry failed: %v", err)
	}
	if got != "ok" {
		t.Errorf("result = %q, want %q", got, "ok")
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestRetry_ReturnsLastError(t *testing.T) {
	calls := 0
	_, err := Retry(context.Background(), fastRetry(2), func() (int, error) {
		calls++
		return 0, fmt.Errorf("attempt %d", calls)
	}, nil)

	if err == nil || err.Error() != "attempt 2" {
		t.Errorf("err = %v, want attempt 2", err)
	}
}

func TestRetry_StopsOnPermanentError(t *testing.T) {
	calls := 0
	_, err := Retry(context.Background(), fastRetry(5), func() (int, error) {
		calls++
		return 0, domain.ErrInvalidURL
	}, IsRetryable)

	if !errors.Is(err, domain.ErrInvalidURL) {
		t.Errorf("err = %v, want ErrInvalidURL", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestRetry_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := fastRetry(3)
	cfg.InitialDelay = time.Hour

	_, err := Retry(ctx, cfg, func() (int, error) {
		cancel()
		return 0, errors.New("transient")
	}, nil)

	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestRetry_ZeroAttemptsRunsOnce(t *testing.T) {
	calls := 0
	Retry(context.Background(), RetryConfig{}, func() (int, error) {
		calls++
		return 0, errors.New("x")
	}, nil)

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error", nil, false},
		{"generic error", io.EOF, true},
		{"extraction failure", fmt.Errorf("%w: timeout", domain.ErrExtraction), true},
		{"invalid url", domain.NewSourceError("fetch", "u", domain.ErrInvalidURL), false},
		{"invalid format", domain.ErrInvalidFormat, false},
		{"unavailable", fmt.Errorf("%w: %w", domain.ErrExtraction, ErrUnavailable), false},
		{"canceled", context.Canceled, false},
		{"deadline", fmt.Errorf("wrapped: %w", context.DeadlineExceeded), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

type flakySource struct {
	mu        sync.Mutex
	failures  int
	err       error
	fetches   int
	downloads int
}

func (s *flakySource) Fetch(ctx context.Context, url string) (*domain.RawMetadata, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetches++
	if s.fetches <= s.failures {
		return nil, s.err
	}
	return &domain.RawMetadata{ID: "abc"}, nil
}

func (s *flakySource) Download(ctx context.Context, req domain.DownloadRequest) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.downloads++
	return "", s.err
}

func TestRetryingSource_Fetch(t *testing.T) {
	inner := &flakySource{failures: 2, err: fmt.Errorf("%w: reset", domain.ErrExtraction)}
	src := NewRetryingSource(inner, fastRetry(3), testLogger())

	meta, err := src.Fetch(context.Background(), "https://youtu.be/abc")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if meta.ID != "abc" {
		t.Errorf("ID = %q, want abc", meta.ID)
	}
	if inner.fetches != 3 {
		t.Errorf("fetches = %d, want 3", inner.fetches)
	}
}

func TestRetryingSource_FetchPermanent(t *testing.T) {
	inner := &flakySource{failures: 5, err: fmt.Errorf("%w: %w", domain.ErrExtraction, ErrUnavailable)}
	src := NewRetryingSource(inner, fastRetry(3), testLogger())

	if _, err := src.Fetch(context.Background(), "u"); !errors.Is(err, ErrUnavailable) {
		t.Errorf("err = %v, want ErrUnavailable", err)
	}
	if inner.fetches != 1 {
		t.Errorf("fetches = %d, want 1", inner.fetches)
	}
}

func TestRetryingSource_DownloadNotRetried(t *testing.T) {
	inner := &flakySource{err: domain.ErrDownloadFailed}
	src := NewRetryingSource(inner, fastRetry(3), testLogger())

	if _, err := src.Download(context.Background(), domain.DownloadRequest{}); !errors.Is(err, domain.ErrDownloadFailed) {
		t.Errorf("err = %v, want ErrDownloadFailed", err)
	}
	if inner.downloads != 1 {
		t.Errorf("downloads = %d, want 1", inner.downloads)
	}
}
