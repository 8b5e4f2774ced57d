package downloader

import (
	"context"
	"errors"

	"github.com/iconidentify/tubegrab/internal/domain"
)

// Source resolves video URLs into raw metadata and downloads chosen formats.
// Implementations must be safe for concurrent use.
type Source interface {
	// Fetch returns the raw metadata and format list for a video URL.
	Fetch(ctx context.Context, url string) (*domain.RawMetadata, error)

	// Download writes the requested format into req.OutputDir and returns
	// the path of the finished file.
	Download(ctx context.Context, req domain.DownloadRequest) (string, error)
}

// ErrUnavailable marks videos that exist but cannot be fetched, such as
// private or age-restricted ones.
var ErrUnavailable = errors.New("video unavailable")
