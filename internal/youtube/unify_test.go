package youtube

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/showscribe/showscribe/internal/errors"
	"github.com/showscribe/showscribe/internal/model"
)

// mockMetadataFetcher is a mock implementation of MetadataFetcher for testing
type mockMetadataFetcher struct {
	mock.Mock
}

func (m *mockMetadataFetcher) FetchMetadata(ctx context.Context, videoID string) (*model.VideoMetadata, error) {
	args := m.Called(ctx, videoID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.VideoMetadata), args.Error(1)
}

// mockCaptionExtractor is a mock implementation of CaptionExtractor for testing
type mockCaptionExtractor struct {
	mock.Mock
}

func (m *mockCaptionExtractor) ExtractCaptions(ctx context.Context, videoID, lang string) ([]model.CaptionSegment, error) {
	args := m.Called(ctx, videoID, lang)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CaptionSegment), args.Error(1)
}

func testMetadata() *model.VideoMetadata {
	return &model.VideoMetadata{
		VideoID:      "dQw4w9WgXcQ",
		Title:        "Never Gonna Give You Up",
		Description:  "Official video",
		Duration:     253,
		PublishedAt:  "2009-10-25T06:57:33Z",
		ChannelTitle: "Rick Astley",
		ThumbnailURL: "https://i.ytimg.com/vi/dQw4w9WgXcQ/hqdefault.jpg",
	}
}

func testSegments() []model.CaptionSegment {
	return []model.CaptionSegment{
		{Text: "seg1", Offset: 0, Duration: 2},
		{Text: "seg2", Offset: 2000, Duration: 2},
	}
}

func TestUnifier_EmptyURL(t *testing.T) {
	unifier := NewUnifier(new(mockMetadataFetcher), new(mockCaptionExtractor), nil)

	result := unifier.Process(context.Background(), model.UnifiedRequest{})

	assert.False(t, result.Success)
	assert.Equal(t, "YouTube URL is required", result.Error)
	assert.Empty(t, result.VideoID)
}

func TestUnifier_InvalidURL(t *testing.T) {
	metadata := new(mockMetadataFetcher)
	captions := new(mockCaptionExtractor)
	unifier := NewUnifier(metadata, captions, nil)

	result := unifier.Process(context.Background(), model.UnifiedRequest{
		YouTubeURL: "https://example.com/not-a-video",
	})

	assert.False(t, result.Success)
	assert.Equal(t, "Invalid YouTube URL", result.Error)
	metadata.AssertNotCalled(t, "FetchMetadata", mock.Anything, mock.Anything)
	captions.AssertNotCalled(t, "ExtractCaptions", mock.Anything, mock.Anything, mock.Anything)
}

func TestUnifier_BothSourcesSucceed(t *testing.T) {
	metadata := new(mockMetadataFetcher)
	metadata.On("FetchMetadata", mock.Anything, "dQw4w9WgXcQ").Return(testMetadata(), nil)

	captions := new(mockCaptionExtractor)
	captions.On("ExtractCaptions", mock.Anything, "dQw4w9WgXcQ", "en").Return(testSegments(), nil)

	unifier := NewUnifier(metadata, captions, nil)
	result := unifier.Process(context.Background(), model.UnifiedRequest{
		YouTubeURL: "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
	})

	require.True(t, result.Success)
	assert.Equal(t, "dQw4w9WgXcQ", result.VideoID)
	assert.Equal(t, 253, result.Metadata.Duration)
	assert.Equal(t, "seg1 seg2", result.Transcript)
	assert.False(t, result.HasEstimatedDuration)
	assert.Empty(t, result.Warning)
	assert.Empty(t, result.Error)
	assert.Len(t, result.Captions, 2)
}

func TestUnifier_MetadataFailsCaptionsSucceed(t *testing.T) {
	tests := []struct {
		name          string
		metaErr       error
		wantInWarning string
	}{
		{
			name:          "quota failure",
			metaErr:       apperrors.New(apperrors.CodeQuota, "YouTube API quota exceeded or API key invalid"),
			wantInWarning: "quota exceeded",
		},
		{
			name:          "timeout failure",
			metaErr:       apperrors.New(apperrors.CodeTimeout, "Request timeout - YouTube API did not respond in time"),
			wantInWarning: "timed out",
		},
		{
			name:          "network failure",
			metaErr:       apperrors.New(apperrors.CodeNetwork, "Network error - Unable to reach YouTube API"),
			wantInWarning: "Could not reach",
		},
		{
			name:          "other failure",
			metaErr:       apperrors.New(apperrors.CodeUpstream, "YouTube API error: 502 Bad Gateway"),
			wantInWarning: "metadata unavailable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			metadata := new(mockMetadataFetcher)
			metadata.On("FetchMetadata", mock.Anything, "dQw4w9WgXcQ").Return(nil, tt.metaErr)

			captions := new(mockCaptionExtractor)
			captions.On("ExtractCaptions", mock.Anything, "dQw4w9WgXcQ", "en").Return(testSegments(), nil)

			unifier := NewUnifier(metadata, captions, nil)
			result := unifier.Process(context.Background(), model.UnifiedRequest{
				YouTubeURL: "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
			})

			require.True(t, result.Success)
			assert.True(t, result.HasEstimatedDuration)
			assert.Equal(t, "YouTube Video dQw4w9WgXcQ", result.Metadata.Title)
			// last segment ends at 4000ms, plus 5000ms buffer -> 9s
			assert.Equal(t, 9, result.Metadata.Duration)
			assert.Equal(t, "seg1 seg2", result.Transcript)
			assert.Contains(t, result.Warning, tt.wantInWarning)
			assert.Contains(t, result.Warning, "Duration may be estimated from captions.")
		})
	}
}

func TestUnifier_CaptionsFailMetadataSucceeds(t *testing.T) {
	metadata := new(mockMetadataFetcher)
	metadata.On("FetchMetadata", mock.Anything, "dQw4w9WgXcQ").Return(testMetadata(), nil)

	captions := new(mockCaptionExtractor)
	captions.On("ExtractCaptions", mock.Anything, "dQw4w9WgXcQ", "en").
		Return(nil, apperrors.New(apperrors.CodeNotFound, "No captions available for this video"))

	unifier := NewUnifier(metadata, captions, nil)
	result := unifier.Process(context.Background(), model.UnifiedRequest{
		YouTubeURL: "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
	})

	require.True(t, result.Success)
	assert.Equal(t, 253, result.Metadata.Duration)
	assert.False(t, result.HasEstimatedDuration)
	assert.Empty(t, result.Transcript)
	assert.Empty(t, result.Captions)
	assert.Empty(t, result.Warning)
}

func TestUnifier_BothSourcesFail(t *testing.T) {
	metadata := new(mockMetadataFetcher)
	metadata.On("FetchMetadata", mock.Anything, "dQw4w9WgXcQ").
		Return(nil, apperrors.New(apperrors.CodeQuota, "YouTube API quota exceeded or API key invalid"))

	captions := new(mockCaptionExtractor)
	captions.On("ExtractCaptions", mock.Anything, "dQw4w9WgXcQ", "en").
		Return(nil, apperrors.New(apperrors.CodeNotFound, "No captions available for this video"))

	unifier := NewUnifier(metadata, captions, nil)
	result := unifier.Process(context.Background(), model.UnifiedRequest{
		YouTubeURL: "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
	})

	assert.False(t, result.Success)
	assert.Equal(t, "Failed to process video: YouTube API quota exceeded or API key invalid", result.Error)
	assert.Nil(t, result.Metadata)
}

func TestUnifier_TranscriptOrderedByOffset(t *testing.T) {
	metadata := new(mockMetadataFetcher)
	metadata.On("FetchMetadata", mock.Anything, "dQw4w9WgXcQ").Return(testMetadata(), nil)

	captions := new(mockCaptionExtractor)
	captions.On("ExtractCaptions", mock.Anything, "dQw4w9WgXcQ", "en").
		Return([]model.CaptionSegment{
			{Text: "third", Offset: 4000, Duration: 1},
			{Text: "first", Offset: 0, Duration: 1},
			{Text: "second", Offset: 2000, Duration: 1},
		}, nil)

	unifier := NewUnifier(metadata, captions, nil)
	result := unifier.Process(context.Background(), model.UnifiedRequest{
		YouTubeURL: "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
	})

	require.True(t, result.Success)
	assert.Equal(t, "first second third", result.Transcript)
}

func TestUnifier_URLVariantsResolveSameVideo(t *testing.T) {
	urls := []string{
		"https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		"https://youtu.be/dQw4w9WgXcQ",
		"https://m.youtube.com/watch?v=dQw4w9WgXcQ&feature=share",
		"https://www.youtube.com/embed/dQw4w9WgXcQ",
	}

	for _, url := range urls {
		t.Run(url, func(t *testing.T) {
			metadata := new(mockMetadataFetcher)
			metadata.On("FetchMetadata", mock.Anything, "dQw4w9WgXcQ").Return(testMetadata(), nil)

			captions := new(mockCaptionExtractor)
			captions.On("ExtractCaptions", mock.Anything, "dQw4w9WgXcQ", "en").Return(testSegments(), nil)

			unifier := NewUnifier(metadata, captions, nil)
			result := unifier.Process(context.Background(), model.UnifiedRequest{YouTubeURL: url})

			require.True(t, result.Success)
			assert.Equal(t, "dQw4w9WgXcQ", result.VideoID)
		})
	}
}

func TestUnifier_RepeatedCallsAreStructurallyIdentical(t *testing.T) {
	metadata := new(mockMetadataFetcher)
	metadata.On("FetchMetadata", mock.Anything, "dQw4w9WgXcQ").Return(testMetadata(), nil)

	captions := new(mockCaptionExtractor)
	captions.On("ExtractCaptions", mock.Anything, "dQw4w9WgXcQ", "en").Return(testSegments(), nil)

	unifier := NewUnifier(metadata, captions, nil)
	req := model.UnifiedRequest{YouTubeURL: "https://www.youtube.com/watch?v=dQw4w9WgXcQ"}

	first := unifier.Process(context.Background(), req)
	second := unifier.Process(context.Background(), req)

	// ProcessingTime varies; everything else must match
	first.ProcessingTime = 0
	second.ProcessingTime = 0
	assert.Equal(t, first, second)
}

func TestUnifier_LangPassedThrough(t *testing.T) {
	metadata := new(mockMetadataFetcher)
	metadata.On("FetchMetadata", mock.Anything, "dQw4w9WgXcQ").Return(testMetadata(), nil)

	captions := new(mockCaptionExtractor)
	captions.On("ExtractCaptions", mock.Anything, "dQw4w9WgXcQ", "ja").Return(testSegments(), nil)

	unifier := NewUnifier(metadata, captions, nil)
	result := unifier.Process(context.Background(), model.UnifiedRequest{
		YouTubeURL: "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		Lang:       "ja",
	})

	require.True(t, result.Success)
	captions.AssertExpectations(t)
}
