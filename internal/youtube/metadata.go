package youtube

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	ytapi "google.golang.org/api/youtube/v3"

	apperrors "github.com/showscribe/showscribe/internal/errors"
	"github.com/showscribe/showscribe/internal/model"
	"github.com/showscribe/showscribe/internal/retry"
)

// Upstream failure messages surfaced to callers and, for partial
// degradation, to end users.
const (
	msgTimeout  = "Request timeout - YouTube API did not respond in time"
	msgQuota    = "YouTube API quota exceeded or API key invalid"
	msgNotFound = "Video not found or private"
	msgNetwork  = "Network error - Unable to reach YouTube API"
)

// MetadataFetcher retrieves video metadata from the YouTube Data API.
type MetadataFetcher interface {
	FetchMetadata(ctx context.Context, videoID string) (*model.VideoMetadata, error)
}

// metadataFetcher implements MetadataFetcher over the generated Data API v3
// client.
type metadataFetcher struct {
	service  *ytapi.Service
	timeout  time.Duration
	retryCfg retry.Config
	logger   *zap.Logger
}

// NewMetadataFetcher creates a MetadataFetcher backed by the YouTube Data
// API v3 with the default timeout and retry policy.
func NewMetadataFetcher(apiKey string, logger *zap.Logger) (MetadataFetcher, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("api key required")
	}

	service, err := ytapi.NewService(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create youtube service: %w", err)
	}

	return NewMetadataFetcherWithService(service, logger), nil
}

// NewMetadataFetcherWithService creates a MetadataFetcher over an existing
// Data API service (for testing, combine option.WithEndpoint and
// option.WithHTTPClient to point the service at a fake server).
func NewMetadataFetcherWithService(service *ytapi.Service, logger *zap.Logger) MetadataFetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &metadataFetcher{
		service:  service,
		timeout:  8 * time.Second,
		retryCfg: retry.DefaultConfig(),
		logger:   logger,
	}
}

// FetchMetadata calls videos.list and returns normalized metadata or a
// typed failure. 429 and 5xx responses are retried with backoff; 403, 404,
// and other 4xx are permanent for this request.
func (f *metadataFetcher) FetchMetadata(ctx context.Context, videoID string) (*model.VideoMetadata, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	var video *ytapi.Video
	err := retry.Do(ctx, f.retryCfg, isRetryableAPIError, func(ctx context.Context) error {
		resp, err := f.service.Videos.List([]string{"snippet", "contentDetails"}).
			Id(videoID).
			Context(ctx).
			Do()
		if err != nil {
			return err
		}

		if len(resp.Items) > 0 {
			video = resp.Items[0]
		}
		return nil
	})
	if err != nil {
		return nil, f.classifyFailure(videoID, err)
	}

	if video == nil {
		return nil, apperrors.New(apperrors.CodeNotFound, msgNotFound)
	}

	metadata := &model.VideoMetadata{VideoID: videoID}
	if video.Snippet != nil {
		metadata.Title = video.Snippet.Title
		metadata.Description = video.Snippet.Description
		metadata.PublishedAt = video.Snippet.PublishedAt
		metadata.ChannelTitle = video.Snippet.ChannelTitle
		metadata.ThumbnailURL = pickThumbnail(video.Snippet.Thumbnails)
	}
	if video.ContentDetails != nil {
		metadata.Duration = ParseDuration(video.ContentDetails.Duration)
	}

	return metadata, nil
}

// isRetryableAPIError retries 429 and 5xx only. A request that produced no
// HTTP response surfaces as the typed network failure at once, and the
// timeout budget spans the whole call, so a timed-out call is never
// re-attempted.
func isRetryableAPIError(err error) bool {
	if !retry.IsRetryable(err) {
		return false
	}

	var apiErr *googleapi.Error
	if stderrors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= 500
	}

	return false
}

// classifyFailure maps a retry-loop error onto the fetcher's error taxonomy.
func (f *metadataFetcher) classifyFailure(videoID string, err error) error {
	var apiErr *googleapi.Error
	switch {
	case stderrors.As(err, &apiErr):
		switch {
		case apiErr.Code == http.StatusForbidden:
			return apperrors.New(apperrors.CodeQuota, msgQuota)
		case apiErr.Code == http.StatusNotFound:
			return apperrors.New(apperrors.CodeNotFound, msgNotFound)
		default:
			f.logger.Warn("YouTube API request failed",
				zap.String("video_id", videoID),
				zap.Int("status", apiErr.Code))
			return apperrors.Wrap(err, apperrors.CodeUpstream,
				fmt.Sprintf("YouTube API error: %d %s", apiErr.Code, http.StatusText(apiErr.Code)))
		}
	case stderrors.Is(err, context.DeadlineExceeded):
		return apperrors.Wrap(err, apperrors.CodeTimeout, msgTimeout)
	default:
		f.logger.Warn("YouTube API unreachable", zap.String("video_id", videoID), zap.Error(err))
		return apperrors.Wrap(err, apperrors.CodeNetwork, msgNetwork)
	}
}

// pickThumbnail returns the highest-quality thumbnail URL present.
func pickThumbnail(thumbnails *ytapi.ThumbnailDetails) string {
	if thumbnails == nil {
		return ""
	}
	for _, t := range []*ytapi.Thumbnail{thumbnails.High, thumbnails.Medium, thumbnails.Default} {
		if t != nil && t.Url != "" {
			return t.Url
		}
	}
	return ""
}
