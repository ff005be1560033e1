package youtube

import "regexp"

// videoIDPatterns cover the URL variants users paste: standard watch links,
// short youtu.be links, embeds, shorts, and the mobile subdomain. All must
// resolve to the same 11-character video ID.
var videoIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:youtube\.com|m\.youtube\.com)/watch\?(?:.*&)?v=([A-Za-z0-9_-]{11})`),
	regexp.MustCompile(`youtu\.be/([A-Za-z0-9_-]{11})`),
	regexp.MustCompile(`youtube\.com/embed/([A-Za-z0-9_-]{11})`),
	regexp.MustCompile(`youtube\.com/shorts/([A-Za-z0-9_-]{11})`),
}

// ExtractVideoID pulls the 11-character video identifier out of a YouTube
// URL. Returns an empty string when no pattern matches.
func ExtractVideoID(rawURL string) string {
	for _, pattern := range videoIDPatterns {
		if matches := pattern.FindStringSubmatch(rawURL); matches != nil {
			return matches[1]
		}
	}
	return ""
}
