// Package format reduces a raw list of media formats to a small ranked set of
// download options.
package format

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/iconidentify/tubegrab/internal/domain"
)

// VideoTiers are the offered video heights, best first.
var VideoTiers = []string{"1080", "720", "480", "360", "240"}

// AudioTier is a target audio bitrate and its label.
type AudioTier struct {
	Kbps  int
	Label string
}

// AudioTiers are the offered audio bitrates in output order.
var AudioTiers = []AudioTier{
	{Kbps: 320, Label: "320kbps"},
	{Kbps: 128, Label: "128kbps"},
}

const (
	// RecommendedTier is the video tier flagged as recommended.
	RecommendedTier = "1080"

	// AudioTolerance is the maximum distance in kbps for an audio tier match (exclusive).
	AudioTolerance = 50

	// DefaultVideoSizeMB is reported for video formats without any size information.
	DefaultVideoSizeMB = 100

	// DefaultDuration is assumed when the source reports no duration.
	DefaultDuration = 180

	bytesPerMB = 1024 * 1024
)

// Select maps formats to download options: video tiers in descending order
// followed by audio tiers. durationSeconds feeds audio size estimation.
func Select(formats []domain.RawFormat, durationSeconds int) []domain.DownloadOption {
	var combined, audioOnly []domain.RawFormat
	for _, f := range formats {
		switch {
		case f.HasVideo && f.HasAudio:
			combined = append(combined, f)
		case !f.HasVideo && f.HasAudio:
			audioOnly = append(audioOnly, f)
		}
	}

	options := make([]domain.DownloadOption, 0, len(VideoTiers)+len(AudioTiers))
	options = append(options, selectVideo(combined)...)
	options = append(options, selectAudio(audioOnly, durationSeconds)...)
	return options
}

func selectVideo(combined []domain.RawFormat) []domain.DownloadOption {
	var options []domain.DownloadOption
	for _, tier := range VideoTiers {
		for _, f := range combined {
			if !matchesTier(f.Height, tier) {
				continue
			}

			quality := tier + "p"
			if f.Height > 0 {
				quality = strconv.Itoa(f.Height) + "p"
			}

			sizeMB := DefaultVideoSizeMB
			if bytes := reportedSize(f); bytes > 0 {
				sizeMB = roundMB(float64(bytes) / bytesPerMB)
			}

			options = append(options, newOption(domain.OptionTypeVideo, quality, sizeMB, f.FormatID, tier == RecommendedTier))
			break
		}
	}
	return options
}

func selectAudio(audioOnly []domain.RawFormat, durationSeconds int) []domain.DownloadOption {
	if len(audioOnly) == 0 {
		return nil
	}
	if durationSeconds <= 0 {
		durationSeconds = DefaultDuration
	}

	options := make([]domain.DownloadOption, 0, len(AudioTiers))
	for _, tier := range AudioTiers {
		best := audioOnly[0]
		for _, f := range audioOnly {
			if math.Abs(f.AudioBitrate-float64(tier.Kbps)) < AudioTolerance {
				best = f
				break
			}
		}

		var sizeMB int
		if bytes := reportedSize(best); bytes > 0 {
			sizeMB = roundMB(float64(bytes) / bytesPerMB)
		} else {
			kbps := best.AudioBitrate
			if kbps <= 0 {
				kbps = float64(tier.Kbps)
			}
			sizeMB = EstimateAudioMB(kbps, durationSeconds)
		}

		options = append(options, newOption(domain.OptionTypeAudio, tier.Label, sizeMB, best.FormatID, false))
	}
	return options
}

// EstimateAudioMB converts a bitrate in kbps over durationSeconds to whole megabytes.
func EstimateAudioMB(kbps float64, durationSeconds int) int {
	return roundMB(kbps * float64(durationSeconds) / 8000)
}

// matchesTier compares the leading digits of height with tier, so 1080 matches
// "1080" and 240 matches "240" but 0 matches nothing.
func matchesTier(height int, tier string) bool {
	if height <= 0 {
		return false
	}
	return strings.HasPrefix(strconv.Itoa(height), tier)
}

func reportedSize(f domain.RawFormat) int64 {
	if f.FileSize > 0 {
		return f.FileSize
	}
	return f.FileSizeApprox
}

func roundMB(mb float64) int {
	return int(math.Round(mb))
}

func newOption(t domain.OptionType, quality string, sizeMB int, formatID string, recommended bool) domain.DownloadOption {
	return domain.DownloadOption{
		Type:        t,
		Quality:     quality,
		Size:        fmt.Sprintf("%d MB", sizeMB),
		SizeMB:      sizeMB,
		FormatID:    formatID,
		Recommended: recommended,
	}
}
