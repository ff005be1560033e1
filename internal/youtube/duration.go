package youtube

import (
	"math"
	"regexp"
	"strconv"

	"github.com/showscribe/showscribe/internal/model"
)

// isoDurationPattern matches the PT[nH][nM][nS] duration format returned by
// the YouTube Data API contentDetails.duration field.
var isoDurationPattern = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?$`)

// captionEndBufferMs is added to the last caption end time when estimating
// duration. Caption tracks typically stop slightly before the actual video
// end (outros, fade-to-black).
const captionEndBufferMs = 5000

// ParseDuration converts an ISO-8601-like duration string (e.g. "PT4M13S")
// into whole seconds. Missing components default to zero. Malformed input
// returns 0 rather than an error so a metadata hiccup never fails a request.
func ParseDuration(raw string) int {
	matches := isoDurationPattern.FindStringSubmatch(raw)
	if matches == nil {
		return 0
	}

	hours := atoiOrZero(matches[1])
	minutes := atoiOrZero(matches[2])
	seconds := atoiOrZero(matches[3])

	return hours*3600 + minutes*60 + seconds
}

// EstimateDuration derives an approximate total duration in whole seconds
// from caption timing. It scans for the latest segment end time without
// assuming input order, adds the safety buffer, and rounds up. An empty
// sequence yields 0.
func EstimateDuration(segments []model.CaptionSegment) int {
	if len(segments) == 0 {
		return 0
	}

	var maxEndMs float64
	for _, seg := range segments {
		endMs := float64(seg.Offset) + seg.Duration*1000
		if endMs > maxEndMs {
			maxEndMs = endMs
		}
	}

	return int(math.Ceil((maxEndMs + captionEndBufferMs) / 1000.0))
}

func atoiOrZero(s string) int {
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
