package youtube

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/showscribe/showscribe/internal/errors"
	"github.com/showscribe/showscribe/internal/model"
)

// Unifier reconciles the metadata API and the caption source into a single
// response per video request.
type Unifier interface {
	Process(ctx context.Context, req model.UnifiedRequest) *model.UnifiedVideoResult
}

type unifier struct {
	metadata MetadataFetcher
	captions CaptionExtractor
	logger   *zap.Logger
}

// NewUnifier creates a Unifier over the given fetchers.
func NewUnifier(metadata MetadataFetcher, captions CaptionExtractor, logger *zap.Logger) Unifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &unifier{
		metadata: metadata,
		captions: captions,
		logger:   logger,
	}
}

// metadataOutcome and captionOutcome wrap each branch's result so a failure
// travels as a value through the join instead of aborting the other branch.
type metadataOutcome struct {
	metadata *model.VideoMetadata
	err      error
}

type captionOutcome struct {
	segments []model.CaptionSegment
	err      error
}

// Process validates the URL, fires the metadata and caption fetches
// concurrently, and merges the outcomes under the precedence policy:
// authoritative metadata duration when available, caption-estimated
// duration with a warning otherwise, and a combined error only when both
// sources fail. It never returns an error; every path yields a result.
func (u *unifier) Process(ctx context.Context, req model.UnifiedRequest) *model.UnifiedVideoResult {
	start := time.Now()

	if req.YouTubeURL == "" {
		return &model.UnifiedVideoResult{
			Success:        false,
			Error:          "YouTube URL is required",
			ProcessingTime: time.Since(start).Milliseconds(),
		}
	}

	videoID := ExtractVideoID(req.YouTubeURL)
	if videoID == "" {
		return &model.UnifiedVideoResult{
			Success:        false,
			Error:          "Invalid YouTube URL",
			ProcessingTime: time.Since(start).Milliseconds(),
		}
	}

	lang := req.Lang
	if lang == "" {
		lang = "en"
	}

	// Fan out both fetches; the merge is a join, not a race. One branch
	// failing must not cancel the other.
	metaCh := make(chan metadataOutcome, 1)
	capCh := make(chan captionOutcome, 1)

	go func() {
		metadata, err := u.metadata.FetchMetadata(ctx, videoID)
		metaCh <- metadataOutcome{metadata: metadata, err: err}
	}()

	go func() {
		segments, err := u.captions.ExtractCaptions(ctx, videoID, lang)
		capCh <- captionOutcome{segments: segments, err: err}
	}()

	meta := <-metaCh
	caps := <-capCh

	result := u.merge(videoID, meta, caps)
	result.ProcessingTime = time.Since(start).Milliseconds()

	u.logger.Info("processed video",
		zap.String("video_id", videoID),
		zap.String("user_id", req.UserID),
		zap.Bool("success", result.Success),
		zap.Bool("estimated_duration", result.HasEstimatedDuration),
		zap.Int64("processing_ms", result.ProcessingTime))

	return result
}

func (u *unifier) merge(videoID string, meta metadataOutcome, caps captionOutcome) *model.UnifiedVideoResult {
	switch {
	case meta.err == nil && caps.err == nil:
		segments := sortedByOffset(caps.segments)
		return &model.UnifiedVideoResult{
			Success:    true,
			VideoID:    videoID,
			Metadata:   meta.metadata,
			Captions:   segments,
			Transcript: joinTranscript(segments),
		}

	case meta.err != nil && caps.err == nil:
		segments := sortedByOffset(caps.segments)
		return &model.UnifiedVideoResult{
			Success: true,
			VideoID: videoID,
			Metadata: &model.VideoMetadata{
				VideoID:  videoID,
				Title:    fmt.Sprintf("YouTube Video %s", videoID),
				Duration: EstimateDuration(segments),
			},
			Captions:             segments,
			Transcript:           joinTranscript(segments),
			HasEstimatedDuration: true,
			Warning:              degradationWarning(meta.err),
		}

	case meta.err == nil:
		// Captions failed: proceed with authoritative metadata, no transcript.
		return &model.UnifiedVideoResult{
			Success:  true,
			VideoID:  videoID,
			Metadata: meta.metadata,
		}

	default:
		return &model.UnifiedVideoResult{
			Success: false,
			VideoID: videoID,
			Error:   fmt.Sprintf("Failed to process video: %s", apperrors.MessageOf(meta.err)),
		}
	}
}

// degradationWarning builds the user-visible notice for a metadata failure
// when caption data still let the request proceed.
func degradationWarning(metaErr error) string {
	var prefix string
	switch apperrors.CodeOf(metaErr) {
	case apperrors.CodeQuota:
		prefix = "YouTube API quota exceeded - showing caption data only."
	case apperrors.CodeTimeout:
		prefix = "YouTube API timed out - showing caption data only."
	case apperrors.CodeNetwork:
		prefix = "Could not reach YouTube API - showing caption data only."
	default:
		prefix = "Video metadata unavailable - showing caption data only."
	}
	return prefix + " Duration may be estimated from captions."
}

// sortedByOffset returns a copy of segments ordered by ascending offset.
// The caption source usually returns them in order already, but the merge
// must not depend on that.
func sortedByOffset(segments []model.CaptionSegment) []model.CaptionSegment {
	sorted := make([]model.CaptionSegment, len(segments))
	copy(sorted, segments)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Offset < sorted[j].Offset
	})
	return sorted
}

// joinTranscript concatenates caption text in offset order with single
// spaces.
func joinTranscript(sorted []model.CaptionSegment) string {
	texts := make([]string, 0, len(sorted))
	for _, seg := range sorted {
		texts = append(texts, seg.Text)
	}
	return strings.Join(texts, " ")
}
