package service

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/dustin/go-humanize"

	"github.com/iconidentify/tubegrab/internal/domain"
)

// Fallbacks and limits applied by Normalize.
const (
	UnknownTitle   = "Unknown Title"
	UnknownChannel = "Unknown Channel"
	UnknownDate    = "Unknown"

	MaxDescriptionLen = 500
	MaxBioLen         = 200
	ellipsis          = "..."
)

// Normalize maps raw source metadata into the presentation record.
// Missing or malformed fields degrade to defaults; it never fails.
func Normalize(raw *domain.RawMetadata) domain.VideoMetadata {
	if raw == nil {
		raw = &domain.RawMetadata{}
	}

	return domain.VideoMetadata{
		ID:          raw.ID,
		Title:       orDefault(raw.Title, UnknownTitle),
		Thumbnail:   raw.Thumbnail,
		Duration:    FormatDuration(raw.Duration),
		Views:       FormatCount(raw.ViewCount),
		Likes:       FormatCount(raw.LikeCount),
		UploadDate:  FormatUploadDate(raw.UploadDate),
		Description: Truncate(raw.Description, MaxDescriptionLen),
		Channel: domain.ChannelSummary{
			Name:        orDefault(raw.Uploader, UnknownChannel),
			Avatar:      raw.UploaderAvatar,
			Subscribers: FormatCount(raw.ChannelFollowerCount),
			Verified:    raw.ChannelVerified,
			Bio:         Truncate(raw.ChannelDescription, MaxBioLen),
			SocialLinks: domain.SocialLinks{
				YouTube: raw.UploaderURL,
			},
		},
	}
}

// FormatDuration renders seconds as m:ss. Non-positive values give "0:00".
func FormatDuration(seconds int) string {
	if seconds <= 0 {
		return "0:00"
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// FormatCount groups thousands with commas. Negative counts are treated as missing.
func FormatCount(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.Comma(n)
}

// FormatUploadDate turns YYYYMMDD into YYYY-MM-DD. Other non-empty input is
// returned unchanged.
func FormatUploadDate(raw string) string {
	if raw == "" {
		return UnknownDate
	}
	t, err := time.Parse("20060102", raw)
	if err != nil {
		return raw
	}
	return t.Format("2006-01-02")
}

// Truncate cuts s to max characters and appends "..." when it had to cut.
func Truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max]) + ellipsis
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
