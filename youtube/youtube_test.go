package youtube

import (
	"testing"

	assert_ "github.com/stretchr/testify/assert"

	"github.com/clipfetch/clipfetch"
)

func TestExtractVideoID(t *testing.T) {
	assert := assert_.New(t)

	// Every supported form of the same video yields the same ID.
	for _, rawURL := range []string{
		"https://www.youtube.com/watch?v=abc123",
		"http://m.youtube.com/watch?v=abc123",
		"https://www.youtube.com/details?v=abc123",
		"https://www.youtube.com/v/abc123",
		"https://www.youtube.com/shorts/abc123",
		"https://www.youtube.com/live/abc123",
		"https://youtu.be/abc123",
		"https://music.youtube.com/watch?v=abc123&si=xyz",
	} {
		id, err := ExtractVideoID(rawURL)
		assert.NoError(err, rawURL)
		assert.Equal("abc123", id, rawURL)
	}
}

func TestExtractVideoIDInvalid(t *testing.T) {
	assert := assert_.New(t)

	for _, rawURL := range []string{
		"https://vimeo.com/12345",
		"https://www.youtube.com/watch",
		"https://www.youtube.com/playlist?list=PL123",
		"https://youtu.be/",
		"not a url at all ://",
		"",
	} {
		_, err := ExtractVideoID(rawURL)
		assert.ErrorIs(err, clipfetch.ErrInvalidURL, rawURL)
	}
}

func TestWatchURLRoundTrip(t *testing.T) {
	assert := assert_.New(t)

	id, err := ExtractVideoID(WatchURL("dQw4w9WgXcQ"))
	assert.NoError(err)
	assert.Equal("dQw4w9WgXcQ", id)
}
