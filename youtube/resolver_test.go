package youtube

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/kkdai/youtube/v2"
	assert_ "github.com/stretchr/testify/assert"

	"github.com/clipfetch/clipfetch"
)

type fakeClient struct {
	video     *youtube.Video
	videoErr  error
	stream    string
	streamErr error
}

func (c *fakeClient) GetVideoContext(ctx context.Context, url string) (*youtube.Video, error) {
	if c.videoErr != nil {
		return nil, c.videoErr
	}
	return c.video, nil
}

func (c *fakeClient) GetStreamContext(ctx context.Context, video *youtube.Video, format *youtube.Format) (io.ReadCloser, int64, error) {
	if c.streamErr != nil {
		return nil, 0, c.streamErr
	}
	return io.NopCloser(strings.NewReader(c.stream)), int64(len(c.stream)), nil
}

func testVideo() *youtube.Video {
	return &youtube.Video{
		ID:       "abc123",
		Title:    "A test video",
		Author:   "Test Channel",
		Duration: 95 * time.Second,
		Views:    4242,
		Thumbnails: youtube.Thumbnails{
			{URL: "https://i.ytimg.com/small.jpg", Width: 120, Height: 90},
			{URL: "https://i.ytimg.com/large.jpg", Width: 1280, Height: 720},
		},
		Formats: youtube.FormatList{
			{
				ItagNo:        22,
				MimeType:      `video/mp4; codecs="avc1.64001F, mp4a.40.2"`,
				QualityLabel:  "720p",
				Width:         1280,
				Height:        720,
				AudioChannels: 2,
				URL:           "https://example.com/720",
			},
			{
				ItagNo:       137,
				MimeType:     `video/mp4; codecs="avc1.640028"`,
				QualityLabel: "1080p",
				Width:        1920,
				Height:       1080,
				URL:          "https://example.com/1080",
			},
			{
				ItagNo:        140,
				MimeType:      `audio/mp4; codecs="mp4a.40.2"`,
				Quality:       "tiny",
				AudioChannels: 2,
				URL:           "https://example.com/audio",
			},
		},
	}
}

func TestResolveGroupsFormats(t *testing.T) {
	assert := assert_.New(t)
	r := NewResolver(&fakeClient{video: testVideo()})

	summary, err := r.Resolve(context.Background(), "https://www.youtube.com/watch?v=abc123")
	assert.NoError(err)
	assert.Equal("abc123", summary.VideoID)
	assert.Equal("A test video", summary.Title)
	assert.Equal("Test Channel", summary.Channel)
	assert.Equal(95, summary.Duration)
	assert.Equal(4242, summary.ViewCount)
	assert.Equal("https://i.ytimg.com/large.jpg", summary.Thumbnail)

	assert.Len(summary.Formats.Combined, 1)
	assert.Equal("720p", summary.Formats.Combined[0].Quality)
	assert.Len(summary.Formats.VideoOnly, 1)
	assert.Equal("1080p", summary.Formats.VideoOnly[0].Quality)
	assert.Len(summary.Formats.AudioOnly, 1)
}

func TestResolveInvalidURL(t *testing.T) {
	assert := assert_.New(t)
	r := NewResolver(&fakeClient{video: testVideo()})

	_, err := r.Resolve(context.Background(), "https://example.com/watch?v=abc123")
	assert.ErrorIs(err, clipfetch.ErrInvalidURL)
}

func TestResolveClientFailure(t *testing.T) {
	assert := assert_.New(t)
	r := NewResolver(&fakeClient{videoErr: errors.New("boom")})

	_, err := r.Resolve(context.Background(), "https://youtu.be/abc123")
	assert.ErrorIs(err, clipfetch.ErrResolutionFailed)
}

func TestOpenDownload(t *testing.T) {
	assert := assert_.New(t)
	r := NewResolver(&fakeClient{video: testVideo(), stream: "payload"})

	dl, err := r.OpenDownload(context.Background(), "https://youtu.be/abc123", "22")
	assert.NoError(err)
	defer dl.Body.Close()

	assert.Equal("abc123_22.mp4", dl.Filename)
	assert.Equal("video/mp4", dl.ContentType)
	assert.Equal(int64(len("payload")), dl.Length)
	body, err := io.ReadAll(dl.Body)
	assert.NoError(err)
	assert.Equal("payload", string(body))
}

func TestOpenDownloadUnknownItag(t *testing.T) {
	assert := assert_.New(t)
	r := NewResolver(&fakeClient{video: testVideo()})

	_, err := r.OpenDownload(context.Background(), "https://youtu.be/abc123", "999")
	assert.ErrorIs(err, clipfetch.ErrFormatNotFound)

	_, err = r.OpenDownload(context.Background(), "https://youtu.be/abc123", "not-a-number")
	assert.ErrorIs(err, clipfetch.ErrFormatNotFound)
}

func TestOpenDownloadStreamFailure(t *testing.T) {
	assert := assert_.New(t)
	r := NewResolver(&fakeClient{video: testVideo(), streamErr: errors.New("403")})

	_, err := r.OpenDownload(context.Background(), "https://youtu.be/abc123", "22")
	assert.ErrorIs(err, clipfetch.ErrUpstreamUnavailable)
}
