package validator

import (
	"regexp"
	"strings"
)

var youTubeURLPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:https?://)?(?:www\.)?youtube\.com/watch\?v=([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`(?:https?://)?(?:www\.)?youtube\.com/embed/([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`(?:https?://)?(?:www\.)?youtu\.be/([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`(?:https?://)?(?:www\.)?youtube\.com/v/([a-zA-Z0-9_-]{11})`),
}

// ExtractYouTubeVideoID returns the 11 character video id found in url, or ""
// when url matches none of the supported link shapes.
func ExtractYouTubeVideoID(url string) string {
	url = strings.TrimSpace(url)
	if url == "" {
		return ""
	}
	for _, pattern := range youTubeURLPatterns {
		if m := pattern.FindStringSubmatch(url); m != nil {
			return m[1]
		}
	}
	return ""
}
