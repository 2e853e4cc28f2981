package util

import (
	"testing"

	assert_ "github.com/stretchr/testify/assert"
)

func TestFilenameFromURLString(t *testing.T) {
	assert := assert_.New(t)

	name, err := FilenameFromURLString("https://cdn.example.com/media/12345/clip.mp4?sig=abc")
	assert.NoError(err)
	assert.Equal("clip.mp4", name)

	_, err = FilenameFromURLString("https://cdn.example.com/")
	assert.ErrorIs(err, ErrNoFilename)

	_, err = FilenameFromURLString("https://cdn.example.com/media/..")
	assert.ErrorIs(err, ErrNoFilename)
}

func TestSanitizeFilename(t *testing.T) {
	assert := assert_.New(t)

	assert.Equal("a_b.mp4", SanitizeFilename(`a/b.mp4`))
	assert.Equal("a_b_.jpg", SanitizeFilename(`a"b\.jpg`))
	assert.Equal("clip.mp4", SanitizeFilename("clip.mp4\n"))
	assert.Equal("download", SanitizeFilename("..."))
	assert.Equal("download", SanitizeFilename(""))
}
