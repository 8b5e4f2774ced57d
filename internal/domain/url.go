package domain

import "regexp"

// videoURLPatterns are tried in order; the first capture group is the video id.
var videoURLPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/|youtube\.com/embed/)([^&\n?#]+)`),
	regexp.MustCompile(`youtube\.com/.*v=([^&\n?#]+)`),
}

// ExtractVideoID returns the video identifier embedded in url.
// Recognized shapes are watch?v=, youtu.be short links and embed/ paths.
func ExtractVideoID(url string) (VideoID, error) {
	for _, re := range videoURLPatterns {
		if m := re.FindStringSubmatch(url); len(m) > 1 {
			return VideoID(m[1]), nil
		}
	}
	return "", ErrInvalidURL
}
