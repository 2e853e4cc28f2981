package youtube

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/kkdai/youtube/v2"

	"github.com/clipfetch/clipfetch"
)

// A ContentSummary is the response-shaped projection of one resolved video. It is
// built fresh per request and never outlives it; the format URLs inside are signed
// and short-lived.
type ContentSummary struct {
	VideoID   string       `json:"videoId"`
	Title     string       `json:"title"`
	Channel   string       `json:"channel"`
	Duration  int          `json:"duration"`
	ViewCount int          `json:"viewCount"`
	Formats   FormatGroups `json:"formats"`
	Thumbnail string       `json:"thumbnail"`
}

// A VideoClient is the subset of the extraction library the resolver depends on.
type VideoClient interface {
	GetVideoContext(ctx context.Context, url string) (*youtube.Video, error)
	GetStreamContext(ctx context.Context, video *youtube.Video, format *youtube.Format) (io.ReadCloser, int64, error)
}

// WatchURL returns the canonical watch URL for a video ID.
func WatchURL(videoID string) string {
	return fmt.Sprintf("https://www.youtube.com/watch?v=%s", videoID)
}

// ExtractVideoID derives the canonical video ID from a YouTube URL.
//
// Allowed URL formats:
//
//	http(s?)://(www|m|music).youtube.com/(watch|details)?v={VIDEO_ID}
//	http(s?)://(www|m).youtube.com/(v|shorts|live)/{VIDEO_ID}
//	http(s?)://youtu.be/{VIDEO_ID}
func ExtractVideoID(rawURL string) (string, error) {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", clipfetch.ErrInvalidURL, err)
	}
	var id string
	switch parsedURL.Hostname() {
	case "www.youtube.com", "m.youtube.com", "music.youtube.com", "youtube.com":
		if seg, ok := pathSegmentAfter(parsedURL.Path, "v", "shorts", "live"); ok {
			id = seg
		} else if parsedURL.Path == "/watch" || parsedURL.Path == "/details" {
			id = parsedURL.Query().Get("v")
		}
	case "youtu.be":
		id = strings.Trim(parsedURL.Path, "/")
	default:
		return "", fmt.Errorf("%w: unrecognised hostname", clipfetch.ErrInvalidURL)
	}
	if id == "" {
		return "", fmt.Errorf("%w: could not extract video ID", clipfetch.ErrInvalidURL)
	}
	return id, nil
}

func pathSegmentAfter(path string, prefixes ...string) (string, bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) < 2 {
		return "", false
	}
	for _, p := range prefixes {
		if parts[0] == p && parts[1] != "" {
			return parts[1], true
		}
	}
	return "", false
}
