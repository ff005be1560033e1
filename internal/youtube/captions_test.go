package youtube

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/showscribe/showscribe/internal/model"
)

// mockCaptionSource is a mock implementation of CaptionSource for testing
type mockCaptionSource struct {
	mock.Mock
}

func (m *mockCaptionSource) FetchTranscript(ctx context.Context, videoID, lang string) ([]RawCaptionEntry, error) {
	args := m.Called(ctx, videoID, lang)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]RawCaptionEntry), args.Error(1)
}

func TestCaptionExtractor_Success(t *testing.T) {
	source := new(mockCaptionSource)
	source.On("FetchTranscript", mock.Anything, "dQw4w9WgXcQ", "en").
		Return([]RawCaptionEntry{
			{Text: "never gonna", Start: 0.5, Duration: 2},
			{Text: "give you up", Start: 2.5, Duration: 2},
		}, nil)

	extractor := NewCaptionExtractorWithSource(source, nil)
	segments, err := extractor.ExtractCaptions(context.Background(), "dQw4w9WgXcQ", "en")

	require.NoError(t, err)
	require.Len(t, segments, 2)
	assert.Equal(t, model.CaptionSegment{Text: "never gonna", Offset: 500, Duration: 2}, segments[0])
	assert.Equal(t, model.CaptionSegment{Text: "give you up", Offset: 2500, Duration: 2}, segments[1])
	source.AssertExpectations(t)
}

func TestCaptionExtractor_FallsBackToAuto(t *testing.T) {
	source := new(mockCaptionSource)
	source.On("FetchTranscript", mock.Anything, "dQw4w9WgXcQ", "ja").
		Return(nil, errors.New("language unavailable"))
	source.On("FetchTranscript", mock.Anything, "dQw4w9WgXcQ", AutoLang).
		Return([]RawCaptionEntry{{Text: "hello", Start: 0, Duration: 1}}, nil)

	extractor := NewCaptionExtractorWithSource(source, nil)
	segments, err := extractor.ExtractCaptions(context.Background(), "dQw4w9WgXcQ", "ja")

	require.NoError(t, err)
	require.Len(t, segments, 1)
	assert.Equal(t, "hello", segments[0].Text)
	source.AssertExpectations(t)
}

func TestCaptionExtractor_EmptyResultFallsBackToAuto(t *testing.T) {
	source := new(mockCaptionSource)
	source.On("FetchTranscript", mock.Anything, "dQw4w9WgXcQ", "en").
		Return([]RawCaptionEntry{}, nil)
	source.On("FetchTranscript", mock.Anything, "dQw4w9WgXcQ", AutoLang).
		Return([]RawCaptionEntry{{Text: "auto caption", Start: 1, Duration: 1}}, nil)

	extractor := NewCaptionExtractorWithSource(source, nil)
	segments, err := extractor.ExtractCaptions(context.Background(), "dQw4w9WgXcQ", "en")

	require.NoError(t, err)
	require.Len(t, segments, 1)
	assert.Equal(t, "auto caption", segments[0].Text)
}

func TestCaptionExtractor_AutoNotRetried(t *testing.T) {
	source := new(mockCaptionSource)
	source.On("FetchTranscript", mock.Anything, "dQw4w9WgXcQ", AutoLang).
		Return(nil, errors.New("no captions")).Once()

	extractor := NewCaptionExtractorWithSource(source, nil)
	_, err := extractor.ExtractCaptions(context.Background(), "dQw4w9WgXcQ", AutoLang)

	require.Error(t, err)
	source.AssertExpectations(t)
}

func TestCaptionExtractor_NoCaptionsAvailable(t *testing.T) {
	source := new(mockCaptionSource)
	source.On("FetchTranscript", mock.Anything, "dQw4w9WgXcQ", mock.Anything).
		Return([]RawCaptionEntry{}, nil)

	extractor := NewCaptionExtractorWithSource(source, nil)
	segments, err := extractor.ExtractCaptions(context.Background(), "dQw4w9WgXcQ", "en")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "No captions available for this video")
	assert.Empty(t, segments)
}

func TestCaptionExtractor_DiscardsMalformedEntries(t *testing.T) {
	source := new(mockCaptionSource)
	source.On("FetchTranscript", mock.Anything, "dQw4w9WgXcQ", "en").
		Return([]RawCaptionEntry{
			{Text: "kept", Start: 0, Duration: 1},
			{Text: "", Start: 1, Duration: 1}, // missing text, dropped
			{Text: "also kept", Start: 2, Duration: 1},
		}, nil)

	extractor := NewCaptionExtractorWithSource(source, nil)
	segments, err := extractor.ExtractCaptions(context.Background(), "dQw4w9WgXcQ", "en")

	require.NoError(t, err)
	require.Len(t, segments, 2)
	assert.Equal(t, "kept", segments[0].Text)
	assert.Equal(t, "also kept", segments[1].Text)
}

func TestCaptionExtractor_PreservesUnicodeAndLargeLists(t *testing.T) {
	entries := make([]RawCaptionEntry, 0, 10001)
	for i := 0; i < 10000; i++ {
		entries = append(entries, RawCaptionEntry{
			Text:     fmt.Sprintf("segment %d", i),
			Start:    float64(i),
			Duration: 1,
		})
	}
	entries = append(entries, RawCaptionEntry{Text: "日本語 🎬 emoji", Start: 10000, Duration: 1})

	source := new(mockCaptionSource)
	source.On("FetchTranscript", mock.Anything, "dQw4w9WgXcQ", "en").Return(entries, nil)

	extractor := NewCaptionExtractorWithSource(source, nil)
	segments, err := extractor.ExtractCaptions(context.Background(), "dQw4w9WgXcQ", "en")

	require.NoError(t, err)
	require.Len(t, segments, 10001)
	assert.Equal(t, "日本語 🎬 emoji", segments[10000].Text)
	assert.Equal(t, int64(10000000), segments[10000].Offset)
}

func TestTimedtextSource_ParsesJSON3(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "dQw4w9WgXcQ", r.URL.Query().Get("v"))
		assert.Equal(t, "en", r.URL.Query().Get("lang"))
		fmt.Fprint(w, `{
			"events": [
				{"tStartMs": 0, "dDurationMs": 2000, "segs": [{"utf8": "never "}, {"utf8": "gonna"}]},
				{"tStartMs": 2000, "dDurationMs": 1500},
				{"tStartMs": 3500, "dDurationMs": 2000, "segs": [{"utf8": "give you up"}]}
			]
		}`)
	}))
	defer server.Close()

	source := NewTimedtextSourceWithClient(server.Client(), server.URL)
	entries, err := source.FetchTranscript(context.Background(), "dQw4w9WgXcQ", "en")

	require.NoError(t, err)
	require.Len(t, entries, 2, "events without segs are skipped")
	assert.Equal(t, RawCaptionEntry{Text: "never gonna", Start: 0, Duration: 2}, entries[0])
	assert.Equal(t, RawCaptionEntry{Text: "give you up", Start: 3.5, Duration: 2}, entries[1])
}

func TestTimedtextSource_AutoRequestsASRTrack(t *testing.T) {
	var query string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.RawQuery
		fmt.Fprint(w, `{"events": [{"tStartMs": 0, "dDurationMs": 1000, "segs": [{"utf8": "hi"}]}]}`)
	}))
	defer server.Close()

	source := NewTimedtextSourceWithClient(server.Client(), server.URL)
	_, err := source.FetchTranscript(context.Background(), "dQw4w9WgXcQ", AutoLang)

	require.NoError(t, err)
	assert.True(t, strings.Contains(query, "kind=asr"), "auto language requests the ASR track, got %q", query)
}

func TestTimedtextSource_NonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	source := NewTimedtextSourceWithClient(server.Client(), server.URL)
	_, err := source.FetchTranscript(context.Background(), "dQw4w9WgXcQ", "en")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}
