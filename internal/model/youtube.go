package model

// VideoMetadata represents YouTube video information resolved for one video.
// Duration is authoritative when it came from the Data API; when it was
// estimated from caption timing the UnifiedVideoResult carries
// HasEstimatedDuration=true.
type VideoMetadata struct {
	VideoID      string `json:"videoId"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Duration     int    `json:"duration"` // duration in seconds
	PublishedAt  string `json:"publishedAt"`
	ChannelTitle string `json:"channelTitle"`
	ThumbnailURL string `json:"thumbnailUrl"`
}

// CaptionSegment is a single timed span of caption text.
type CaptionSegment struct {
	Text     string  `json:"text"`
	Offset   int64   `json:"offset"`   // milliseconds from video start
	Duration float64 `json:"duration"` // span length in seconds
}

// UnifiedRequest is the input to the unified video processor.
type UnifiedRequest struct {
	YouTubeURL string `json:"youtubeUrl"`
	Lang       string `json:"lang,omitempty"` // defaults to "en"
	UserID     string `json:"userId,omitempty"`
}

// UnifiedVideoResult is the outcome of one processing request. It is
// constructed once by the unifier and never mutated after return.
type UnifiedVideoResult struct {
	Success              bool             `json:"success"`
	VideoID              string           `json:"videoId,omitempty"`
	Metadata             *VideoMetadata   `json:"metadata,omitempty"`
	Captions             []CaptionSegment `json:"captions,omitempty"`
	Transcript           string           `json:"transcript,omitempty"`
	Warning              string           `json:"warning,omitempty"`
	HasEstimatedDuration bool             `json:"hasEstimatedDuration,omitempty"`
	Error                string           `json:"error,omitempty"`
	ProcessingTime       int64            `json:"processingTime,omitempty"` // wall-clock milliseconds
}
