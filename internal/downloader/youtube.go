package downloader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/renameio/v2"
	"github.com/kkdai/youtube/v2"

	"github.com/iconidentify/tubegrab/internal/domain"
)

// YouTubeSource implements Source with the native kkdai/youtube client.
type YouTubeSource struct {
	client *youtube.Client
	logger *slog.Logger
}

// NewYouTubeSource creates a source using httpClient for all requests.
// A nil httpClient uses a client with a header timeout but no overall
// timeout, since streams can run for a long time.
func NewYouTubeSource(httpClient *http.Client, logger *slog.Logger) *YouTubeSource {
	if httpClient == nil {
		httpClient = &http.Client{
			Transport: &http.Transport{
				Proxy:                 http.ProxyFromEnvironment,
				ResponseHeaderTimeout: 30 * time.Second,
			},
		}
	}
	return &YouTubeSource{
		client: &youtube.Client{HTTPClient: httpClient},
		logger: logger,
	}
}

// Fetch resolves url into raw metadata.
func (s *YouTubeSource) Fetch(ctx context.Context, url string) (*domain.RawMetadata, error) {
	video, err := s.client.GetVideoContext(ctx, url)
	if err != nil {
		return nil, domain.NewSourceError("fetch", url, classifyYouTubeError(err))
	}
	return metadataFromVideo(video), nil
}

// Download streams the requested itag into <OutputDir>/<BaseName>.<ext>.
// The file only appears once it is complete.
func (s *YouTubeSource) Download(ctx context.Context, req domain.DownloadRequest) (string, error) {
	itag, err := strconv.Atoi(req.FormatID)
	if err != nil {
		return "", domain.NewSourceError("download", req.URL, fmt.Errorf("%w: %q", domain.ErrInvalidFormat, req.FormatID))
	}

	video, err := s.client.GetVideoContext(ctx, req.URL)
	if err != nil {
		return "", domain.NewSourceError("download", req.URL, classifyYouTubeError(err))
	}

	formats := video.Formats.Itag(itag)
	if len(formats) == 0 {
		return "", domain.NewSourceError("download", req.URL, fmt.Errorf("%w: itag %d", domain.ErrInvalidFormat, itag))
	}
	format := formats[0]

	if err := os.MkdirAll(req.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	path := filepath.Join(req.OutputDir, req.BaseName+"."+extensionForMime(format.MimeType))

	stream, size, err := s.client.GetStreamContext(ctx, video, &format)
	if err != nil {
		return "", domain.NewSourceError("download", req.URL, fmt.Errorf("%w: open stream: %w", domain.ErrDownloadFailed, err))
	}
	defer stream.Close()

	pending, err := renameio.NewPendingFile(path)
	if err != nil {
		return "", fmt.Errorf("create pending file: %w", err)
	}
	defer pending.Cleanup()

	written, err := io.Copy(pending, stream)
	if err != nil {
		return "", domain.NewSourceError("download", req.URL, fmt.Errorf("%w: %w", domain.ErrDownloadFailed, err))
	}
	if size > 0 && written != size {
		return "", domain.NewSourceError("download", req.URL,
			fmt.Errorf("%w: short read %d of %d bytes", domain.ErrDownloadFailed, written, size))
	}

	if err := pending.CloseAtomicallyReplace(); err != nil {
		return "", fmt.Errorf("commit download: %w", err)
	}

	s.logger.Debug("stream saved",
		"video_id", video.ID,
		"itag", itag,
		"bytes", written,
		"path", path,
	)
	return path, nil
}

func classifyYouTubeError(err error) error {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case errors.Is(err, youtube.ErrInvalidCharactersInVideoID),
		errors.Is(err, youtube.ErrVideoIDMinLength):
		return fmt.Errorf("%w: %w", domain.ErrInvalidURL, err)
	case errors.Is(err, youtube.ErrLoginRequired),
		errors.Is(err, youtube.ErrVideoPrivate),
		errors.Is(err, youtube.ErrNotPlayableInEmbed):
		return fmt.Errorf("%w: %w: %w", domain.ErrExtraction, ErrUnavailable, err)
	}

	var statusErr *youtube.ErrPlayabiltyStatus
	if errors.As(err, &statusErr) {
		return fmt.Errorf("%w: %w: %w", domain.ErrExtraction, ErrUnavailable, err)
	}

	return fmt.Errorf("%w: %w", domain.ErrExtraction, err)
}

func metadataFromVideo(video *youtube.Video) *domain.RawMetadata {
	meta := &domain.RawMetadata{
		ID:          video.ID,
		Title:       video.Title,
		Duration:    int(video.Duration / time.Second),
		ViewCount:   int64(video.Views),
		Description: video.Description,
		Uploader:    video.Author,
		Formats:     make([]domain.RawFormat, 0, len(video.Formats)),
	}
	if !video.PublishDate.IsZero() {
		meta.UploadDate = video.PublishDate.Format("20060102")
	}
	if video.ChannelID != "" {
		meta.UploaderURL = "https://www.youtube.com/channel/" + video.ChannelID
	}
	// Thumbnails are listed smallest first.
	if n := len(video.Thumbnails); n > 0 {
		meta.Thumbnail = video.Thumbnails[n-1].URL
	}

	for _, f := range video.Formats {
		meta.Formats = append(meta.Formats, rawFormatFromYouTube(f))
	}
	return meta
}

func rawFormatFromYouTube(f youtube.Format) domain.RawFormat {
	mimeType := strings.ToLower(f.MimeType)
	raw := domain.RawFormat{
		FormatID: strconv.Itoa(f.ItagNo),
		HasVideo: strings.HasPrefix(mimeType, "video/"),
		HasAudio: strings.HasPrefix(mimeType, "audio/") || f.AudioChannels > 0,
		Height:   f.Height,
		FileSize: f.ContentLength,
	}

	bitrate := f.AverageBitrate
	if bitrate <= 0 {
		bitrate = f.Bitrate
	}
	if raw.HasAudio && !raw.HasVideo && bitrate > 0 {
		raw.AudioBitrate = float64(bitrate) / 1000
	}

	if raw.FileSize == 0 && bitrate > 0 {
		if ms, err := strconv.ParseInt(f.ApproxDurationMs, 10, 64); err == nil && ms > 0 {
			raw.FileSizeApprox = int64(bitrate) * ms / 8000
		}
	}
	return raw
}

func extensionForMime(mimeType string) string {
	media, _, err := mime.ParseMediaType(mimeType)
	if err != nil {
		return "bin"
	}
	switch media {
	case "video/mp4":
		return "mp4"
	case "audio/mp4":
		return "m4a"
	case "video/webm", "audio/webm":
		return "webm"
	case "video/3gpp":
		return "3gp"
	}
	if _, sub, ok := strings.Cut(media, "/"); ok && sub != "" {
		return sub
	}
	return "bin"
}
