package domain

import "errors"

// Domain errors.
var (
	// ErrInvalidURL is returned when no recognized video URL shape matches.
	ErrInvalidURL = errors.New("invalid YouTube URL")

	// ErrExtraction is returned when the metadata source cannot resolve a video.
	ErrExtraction = errors.New("failed to extract video info")

	// ErrJobNotFound is returned when a job cannot be found.
	ErrJobNotFound = errors.New("download not found")

	// ErrDownloadFailed is returned when the metadata source fails to download a format.
	ErrDownloadFailed = errors.New("download failed")

	// ErrInvalidTransition is returned when a job state change violates the lifecycle.
	ErrInvalidTransition = errors.New("invalid job state transition")

	// ErrInvalidFormat is returned when the requested format id is unknown to the source.
	ErrInvalidFormat = errors.New("requested format not available")

	// ErrPoolStopped is returned when work is submitted to a stopped worker pool.
	ErrPoolStopped = errors.New("worker pool stopped")
)

// SourceError wraps a metadata source failure with the operation and URL involved.
type SourceError struct {
	Op  string
	URL string
	Err error
}

func (e *SourceError) Error() string {
	if e.URL != "" {
		return e.Op + " [" + e.URL + "]: " + e.Err.Error()
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// NewSourceError creates a new SourceError.
func NewSourceError(op, url string, err error) *SourceError {
	return &SourceError{
		Op:  op,
		URL: url,
		Err: err,
	}
}
