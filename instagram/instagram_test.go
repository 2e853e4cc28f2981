package instagram

import (
	"testing"

	assert_ "github.com/stretchr/testify/assert"

	"github.com/clipfetch/clipfetch"
)

func TestExtractShortcode(t *testing.T) {
	assert := assert_.New(t)

	for _, rawURL := range []string{
		"https://www.instagram.com/p/XYZ987/",
		"https://instagram.com/reel/XYZ987/",
		"https://www.instagram.com/reels/XYZ987",
		"https://www.instagram.com/tv/XYZ987/?igsh=abc",
		"https://m.instagram.com/p/XYZ987/",
	} {
		shortcode, err := ExtractShortcode(rawURL)
		assert.NoError(err, rawURL)
		assert.Equal("XYZ987", shortcode, rawURL)
	}
}

func TestExtractShortcodeInvalid(t *testing.T) {
	assert := assert_.New(t)

	for _, rawURL := range []string{
		"https://www.instagram.com/someuser/",
		"https://www.instagram.com/p/",
		"https://www.instagram.com/stories/someuser/123/",
		"https://www.youtube.com/p/XYZ987/",
		"not a url ://",
		"",
	} {
		_, err := ExtractShortcode(rawURL)
		assert.ErrorIs(err, clipfetch.ErrInvalidURL, rawURL)
	}
}
