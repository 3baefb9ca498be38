package youtube

import (
	"regexp"
)

// Recognized YouTube URL forms. The capture group is the 11-character video id.
var urlPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^https?://(?:www\.|m\.)?youtube\.com/watch\?(?:.*&)?v=([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`^https?://youtu\.be/([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`^https?://(?:www\.)?youtube\.com/embed/([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`^https?://(?:www\.)?youtube\.com/shorts/([a-zA-Z0-9_-]{11})`),
}

// ValidateURL reports whether url is a recognized YouTube video URL.
func ValidateURL(url string) bool {
	_, ok := ExtractVideoID(url)
	return ok
}

// ExtractVideoID returns the 11-character video id embedded in url.
func ExtractVideoID(url string) (string, bool) {
	for _, p := range urlPatterns {
		if m := p.FindStringSubmatch(url); m != nil {
			return m[1], true
		}
	}
	return "", false
}
