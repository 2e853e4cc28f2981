// Package instagram resolves Instagram posts, reels and IGTV URLs into
// downloadable media through an ordered chain of access strategies.
package instagram

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/clipfetch/clipfetch"
)

const (
	MediaTypeVideo = "video"
	MediaTypeImage = "image"
)

// An Owner identifies the account that published a post.
type Owner struct {
	ID         string `json:"id,omitempty"`
	Username   string `json:"username,omitempty"`
	FullName   string `json:"fullName,omitempty"`
	ProfilePic string `json:"profilePic,omitempty"`
	IsVerified bool   `json:"isVerified,omitempty"`
}

// Stats carries the engagement counters available from whichever strategy won.
type Stats struct {
	Likes    int64 `json:"likes"`
	Comments int64 `json:"comments"`
	Views    int64 `json:"views,omitempty"`
}

// A MediaItem is one downloadable asset within a post. DownloadLink is the
// relative gateway URL, filled in at the HTTP boundary.
type MediaItem struct {
	ID           string `json:"id"`
	Type         string `json:"type"`
	URL          string `json:"url"`
	Thumbnail    string `json:"thumbnail,omitempty"`
	DownloadURL  string `json:"downloadUrl,omitempty"`
	DownloadLink string `json:"downloadLink,omitempty"`
}

// A PostSummary is the normalized projection of one resolved post. Like every
// other value in the pipeline it is request-scoped: asset URLs are signed and
// expire, so nothing here may be cached.
type PostSummary struct {
	ID        string      `json:"id"`
	Shortcode string      `json:"shortcode"`
	URL       string      `json:"url"`
	Caption   string      `json:"caption,omitempty"`
	Owner     Owner       `json:"owner"`
	Stats     Stats       `json:"stats"`
	Timestamp int64       `json:"timestamp,omitempty"`
	Media     []MediaItem `json:"media"`
}

// PostURL returns the canonical public page for a shortcode.
func PostURL(shortcode string) string {
	return fmt.Sprintf("https://www.instagram.com/p/%s/", shortcode)
}

// ReelURL returns the reel-form page for a shortcode, used as a referer by the
// direct API strategy.
func ReelURL(shortcode string) string {
	return fmt.Sprintf("https://www.instagram.com/reel/%s/", shortcode)
}

// ExtractShortcode derives the canonical shortcode from a post, reel or IGTV
// URL. Pure parsing; malformed input yields ErrInvalidURL, never a panic.
func ExtractShortcode(rawURL string) (string, error) {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", clipfetch.ErrInvalidURL, err)
	}
	host := strings.TrimPrefix(parsedURL.Hostname(), "www.")
	switch host {
	case "instagram.com", "m.instagram.com":
	default:
		return "", fmt.Errorf("%w: unrecognised hostname", clipfetch.ErrInvalidURL)
	}
	parts := strings.Split(strings.Trim(parsedURL.Path, "/"), "/")
	if len(parts) >= 2 && parts[1] != "" {
		switch parts[0] {
		case "p", "reel", "reels", "tv":
			return parts[1], nil
		}
	}
	return "", fmt.Errorf("%w: could not extract shortcode", clipfetch.ErrInvalidURL)
}
