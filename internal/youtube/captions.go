package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/showscribe/showscribe/internal/errors"
	"github.com/showscribe/showscribe/internal/model"
)

// AutoLang requests whatever caption track the source can supply, falling
// back to auto-generated (ASR) tracks.
const AutoLang = "auto"

const msgNoCaptions = "No captions available for this video"

const defaultTimedtextBaseURL = "https://www.youtube.com/api/timedtext"

// Doer is the minimal HTTP client surface used by the caption source, so
// tests can substitute a fake transport.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// RawCaptionEntry is a caption span as returned by the underlying source,
// with start and duration both in seconds.
type RawCaptionEntry struct {
	Text     string  `json:"text"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
}

// CaptionSource is the underlying caption/subtitle provider.
type CaptionSource interface {
	FetchTranscript(ctx context.Context, videoID, lang string) ([]RawCaptionEntry, error)
}

// CaptionExtractor retrieves and normalizes caption segments for a video.
type CaptionExtractor interface {
	ExtractCaptions(ctx context.Context, videoID, lang string) ([]model.CaptionSegment, error)
}

type captionExtractor struct {
	source CaptionSource
	logger *zap.Logger
}

// NewCaptionExtractor creates a CaptionExtractor backed by the public
// timedtext endpoint.
func NewCaptionExtractor(logger *zap.Logger) CaptionExtractor {
	return NewCaptionExtractorWithSource(NewTimedtextSource(), logger)
}

// NewCaptionExtractorWithSource creates a CaptionExtractor with a custom
// source (for testing).
func NewCaptionExtractorWithSource(source CaptionSource, logger *zap.Logger) CaptionExtractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &captionExtractor{source: source, logger: logger}
}

// ExtractCaptions fetches captions in the requested language, retrying once
// with "auto" when the requested language yields nothing. Malformed entries
// (missing text) are dropped without failing the extraction; start times
// are normalized from seconds to millisecond offsets.
func (e *captionExtractor) ExtractCaptions(ctx context.Context, videoID, lang string) ([]model.CaptionSegment, error) {
	if lang == "" {
		lang = "en"
	}

	segments, err := e.fetchAndNormalize(ctx, videoID, lang)
	if (err != nil || len(segments) == 0) && lang != AutoLang {
		e.logger.Debug("caption fetch fell back to auto language",
			zap.String("video_id", videoID),
			zap.String("requested_lang", lang))
		segments, err = e.fetchAndNormalize(ctx, videoID, AutoLang)
	}
	if err != nil {
		return nil, err
	}
	if len(segments) == 0 {
		return nil, apperrors.New(apperrors.CodeNotFound, msgNoCaptions)
	}

	return segments, nil
}

func (e *captionExtractor) fetchAndNormalize(ctx context.Context, videoID, lang string) ([]model.CaptionSegment, error) {
	entries, err := e.source.FetchTranscript(ctx, videoID, lang)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeExternal, msgNoCaptions)
	}

	segments := make([]model.CaptionSegment, 0, len(entries))
	for _, entry := range entries {
		if entry.Text == "" {
			continue
		}
		segments = append(segments, model.CaptionSegment{
			Text:     entry.Text,
			Offset:   int64(math.Round(entry.Start * 1000)),
			Duration: entry.Duration,
		})
	}

	return segments, nil
}

// timedtextSource fetches captions from YouTube's timedtext API.
type timedtextSource struct {
	client  Doer
	baseURL string
	timeout time.Duration
}

// NewTimedtextSource creates a CaptionSource backed by the timedtext API.
func NewTimedtextSource() CaptionSource {
	return NewTimedtextSourceWithClient(&http.Client{}, defaultTimedtextBaseURL)
}

// NewTimedtextSourceWithClient creates a timedtext source with a custom
// HTTP client and base URL (for testing).
func NewTimedtextSourceWithClient(client Doer, baseURL string) CaptionSource {
	return &timedtextSource{
		client:  client,
		baseURL: baseURL,
		timeout: 10 * time.Second,
	}
}

// timedtextResponse is the raw timedtext JSON shape.
type timedtextResponse struct {
	Events []struct {
		TStartMs    int64 `json:"tStartMs"`
		DDurationMs int64 `json:"dDurationMs"`
		Segs        []struct {
			UTF8 string `json:"utf8"`
		} `json:"segs,omitempty"`
	} `json:"events"`
}

// FetchTranscript queries the timedtext endpoint for one video and
// language. The "auto" sentinel requests the auto-generated (ASR) track.
func (s *timedtextSource) FetchTranscript(ctx context.Context, videoID, lang string) ([]RawCaptionEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	params := url.Values{}
	params.Set("v", videoID)
	params.Set("fmt", "json3")
	if lang == AutoLang {
		params.Set("lang", "en")
		params.Set("kind", "asr")
	} else {
		params.Set("lang", lang)
	}

	requestURL := fmt.Sprintf("%s?%s", s.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("timedtext request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("timedtext API returned status %d", resp.StatusCode)
	}

	var ttResp timedtextResponse
	if err := json.NewDecoder(resp.Body).Decode(&ttResp); err != nil {
		return nil, fmt.Errorf("parse timedtext response: %w", err)
	}

	var entries []RawCaptionEntry
	for _, event := range ttResp.Events {
		if len(event.Segs) == 0 {
			continue
		}

		var text strings.Builder
		for _, seg := range event.Segs {
			text.WriteString(seg.UTF8)
		}

		entries = append(entries, RawCaptionEntry{
			Text:     strings.TrimSpace(text.String()),
			Start:    float64(event.TStartMs) / 1000.0,
			Duration: float64(event.DDurationMs) / 1000.0,
		})
	}

	return entries, nil
}
