package domain

// VideoID is the canonical identifier extracted from a video URL.
type VideoID string

// String returns the string representation of the VideoID.
func (id VideoID) String() string {
	return string(id)
}

// RawFormat is one media stream as reported by the metadata source.
// Zero values mean the source did not report the field.
type RawFormat struct {
	FormatID       string
	HasVideo       bool
	HasAudio       bool
	Height         int
	AudioBitrate   float64 // kbps
	FileSize       int64   // bytes
	FileSizeApprox int64   // bytes
}

// RawMetadata is the unprocessed record returned by the metadata source.
type RawMetadata struct {
	ID                   string
	Title                string
	Thumbnail            string
	Duration             int // seconds
	ViewCount            int64
	LikeCount            int64
	UploadDate           string // YYYYMMDD
	Description          string
	Uploader             string
	UploaderAvatar       string
	UploaderURL          string
	ChannelFollowerCount int64
	ChannelVerified      bool
	ChannelDescription   string
	Formats              []RawFormat
}

// OptionType distinguishes video and audio download options.
type OptionType string

const (
	OptionTypeVideo OptionType = "VIDEO"
	OptionTypeAudio OptionType = "AUDIO"
)

// DownloadOption is a user-facing download choice.
type DownloadOption struct {
	Type        OptionType `json:"type"`
	Quality     string     `json:"quality"`
	Size        string     `json:"size"`
	SizeMB      int        `json:"size_mb"`
	FormatID    string     `json:"format_id"`
	Recommended bool       `json:"recommended"`
}

// SocialLinks holds channel links shown next to the channel summary.
type SocialLinks struct {
	YouTube string `json:"youtube"`
	Twitter string `json:"twitter"`
	Website string `json:"website"`
}

// ChannelSummary describes the uploading channel.
type ChannelSummary struct {
	Name        string      `json:"name"`
	Avatar      string      `json:"avatar"`
	Subscribers string      `json:"subscribers"`
	Verified    bool        `json:"verified"`
	Bio         string      `json:"bio"`
	SocialLinks SocialLinks `json:"social_links"`
}

// VideoMetadata is the API-facing view of a video.
type VideoMetadata struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Thumbnail   string         `json:"thumbnail"`
	Duration    string         `json:"duration"`
	Views       string         `json:"views"`
	Likes       string         `json:"likes"`
	UploadDate  string         `json:"upload_date"`
	Description string         `json:"description"`
	Channel     ChannelSummary `json:"channel"`
}

// VideoInfo pairs normalized metadata with its ranked download options.
type VideoInfo struct {
	Video   VideoMetadata    `json:"video_data"`
	Options []DownloadOption `json:"download_options"`
}
