package downloader

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/lrstanley/go-ytdlp"

	"github.com/iconidentify/tubegrab/internal/domain"
)

// YTDLPSource implements Source by driving the yt-dlp executable.
type YTDLPSource struct {
	executable string
	logger     *slog.Logger
}

// NewYTDLPSource creates a source that runs the given yt-dlp executable.
// An empty executable resolves "yt-dlp" from PATH.
func NewYTDLPSource(executable string, logger *slog.Logger) *YTDLPSource {
	if executable == "" {
		executable = "yt-dlp"
	}
	return &YTDLPSource{executable: executable, logger: logger}
}

func (s *YTDLPSource) command() *ytdlp.Command {
	return ytdlp.New().
		SetExecutable(s.executable).
		NoWarnings().
		NoPlaylist()
}

// Fetch runs yt-dlp in simulate mode and decodes its info JSON.
func (s *YTDLPSource) Fetch(ctx context.Context, url string) (*domain.RawMetadata, error) {
	result, err := s.command().
		SkipDownload().
		DumpSingleJSON().
		Run(ctx, url)
	if err != nil {
		return nil, domain.NewSourceError("fetch", url, classifyYTDLPError(err, result))
	}

	meta, err := parseYTDLPInfo([]byte(result.Stdout))
	if err != nil {
		return nil, domain.NewSourceError("fetch", url, fmt.Errorf("%w: %w", domain.ErrExtraction, err))
	}
	return meta, nil
}

// Download has yt-dlp write the format to <OutputDir>/<BaseName>.<ext>.
// yt-dlp writes to a .part file and renames on completion.
func (s *YTDLPSource) Download(ctx context.Context, req domain.DownloadRequest) (string, error) {
	if req.FormatID == "" {
		return "", domain.NewSourceError("download", req.URL, domain.ErrInvalidFormat)
	}
	if err := os.MkdirAll(req.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	template := filepath.Join(req.OutputDir, req.BaseName+".%(ext)s")
	result, err := s.command().
		Format(req.FormatID).
		Output(template).
		ForceOverwrites().
		NoProgress().
		Run(ctx, req.URL)
	if err != nil {
		return "", domain.NewSourceError("download", req.URL,
			fmt.Errorf("%w: %w", domain.ErrDownloadFailed, classifyYTDLPError(err, result)))
	}

	path, err := findOutput(req.OutputDir, req.BaseName)
	if err != nil {
		return "", domain.NewSourceError("download", req.URL, fmt.Errorf("%w: %w", domain.ErrDownloadFailed, err))
	}
	s.logger.Debug("yt-dlp download finished", "path", path)
	return path, nil
}

func classifyYTDLPError(err error, result *ytdlp.Result) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var stderr string
	if result != nil {
		stderr = result.Stderr
	}
	lower := strings.ToLower(stderr)
	switch {
	case strings.Contains(lower, "unsupported url"), strings.Contains(lower, "is not a valid url"):
		return fmt.Errorf("%w: %s", domain.ErrInvalidURL, firstLine(stderr))
	case strings.Contains(lower, "requested format is not available"):
		return fmt.Errorf("%w: %s", domain.ErrInvalidFormat, firstLine(stderr))
	case strings.Contains(lower, "private video"),
		strings.Contains(lower, "sign in to confirm"),
		strings.Contains(lower, "video unavailable"):
		return fmt.Errorf("%w: %w: %s", domain.ErrExtraction, ErrUnavailable, firstLine(stderr))
	}
	if stderr != "" {
		return fmt.Errorf("%w: %s", domain.ErrExtraction, firstLine(stderr))
	}
	return fmt.Errorf("%w: %w", domain.ErrExtraction, err)
}

func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return s
}

func findOutput(dir, base string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, base+".*"))
	if err != nil {
		return "", err
	}
	for _, m := range matches {
		if !strings.HasSuffix(m, ".part") && !strings.HasSuffix(m, ".ytdl") {
			return m, nil
		}
	}
	return "", fmt.Errorf("no output file for %s", base)
}

type ytdlpInfo struct {
	ID                   string        `json:"id"`
	Title                string        `json:"title"`
	Thumbnail            string        `json:"thumbnail"`
	Duration             float64       `json:"duration"`
	ViewCount            int64         `json:"view_count"`
	LikeCount            int64         `json:"like_count"`
	UploadDate           string        `json:"upload_date"`
	Description          string        `json:"description"`
	Uploader             string        `json:"uploader"`
	UploaderURL          string        `json:"uploader_url"`
	UploaderAvatar       string        `json:"uploader_avatar"`
	ChannelDescription   string        `json:"channel_description"`
	ChannelFollowerCount int64         `json:"channel_follower_count"`
	ChannelIsVerified    bool          `json:"channel_is_verified"`
	Formats              []ytdlpFormat `json:"formats"`
}

type ytdlpFormat struct {
	FormatID       string  `json:"format_id"`
	VCodec         string  `json:"vcodec"`
	ACodec         string  `json:"acodec"`
	Height         float64 `json:"height"`
	ABR            float64 `json:"abr"`
	Filesize       float64 `json:"filesize"`
	FilesizeApprox float64 `json:"filesize_approx"`
}

// parseYTDLPInfo maps yt-dlp's info JSON onto RawMetadata. A codec of
// "none" marks a missing stream; an absent codec field does not.
func parseYTDLPInfo(data []byte) (*domain.RawMetadata, error) {
	var info ytdlpInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("decode yt-dlp output: %w", err)
	}

	meta := &domain.RawMetadata{
		ID:                   info.ID,
		Title:                info.Title,
		Thumbnail:            info.Thumbnail,
		Duration:             int(info.Duration),
		ViewCount:            info.ViewCount,
		LikeCount:            info.LikeCount,
		UploadDate:           info.UploadDate,
		Description:          info.Description,
		Uploader:             info.Uploader,
		UploaderURL:          info.UploaderURL,
		UploaderAvatar:       info.UploaderAvatar,
		ChannelDescription:   info.ChannelDescription,
		ChannelFollowerCount: info.ChannelFollowerCount,
		ChannelVerified:      info.ChannelIsVerified,
		Formats:              make([]domain.RawFormat, 0, len(info.Formats)),
	}
	for _, f := range info.Formats {
		meta.Formats = append(meta.Formats, domain.RawFormat{
			FormatID:       f.FormatID,
			HasVideo:       f.VCodec != "none",
			HasAudio:       f.ACodec != "none",
			Height:         int(f.Height),
			AudioBitrate:   f.ABR,
			FileSize:       int64(f.Filesize),
			FileSizeApprox: int64(f.FilesizeApprox),
		})
	}
	return meta, nil
}
