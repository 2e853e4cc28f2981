package youtube

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/kkdai/youtube/v2"
	"go.uber.org/zap"

	"github.com/clipfetch/clipfetch"
)

// Resolver turns a raw YouTube URL into a ContentSummary or an open download
// stream. A single extraction strategy is authoritative here; failure of the
// underlying client call surfaces directly as resolution failure.
type Resolver struct {
	client VideoClient
}

// NewResolver wraps the given client; nil means the library's default client.
func NewResolver(client VideoClient) *Resolver {
	if client == nil {
		client = &youtube.Client{}
	}
	return &Resolver{client: client}
}

// Resolve classifies the URL and fetches full metadata plus the normalized,
// deduplicated format buckets. Nothing is cached between calls.
func (r *Resolver) Resolve(ctx context.Context, rawURL string) (*ContentSummary, error) {
	videoID, err := ExtractVideoID(rawURL)
	if err != nil {
		return nil, err
	}
	video, err := r.client.GetVideoContext(ctx, WatchURL(videoID))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", clipfetch.ErrResolutionFailed, err)
	}
	clipfetch.Logger(ctx).Debug("resolved video",
		zap.String("video_id", video.ID),
		zap.Int("formats", len(video.Formats)))
	return &ContentSummary{
		VideoID:   video.ID,
		Title:     video.Title,
		Channel:   video.Author,
		Duration:  int(video.Duration.Seconds()),
		ViewCount: video.Views,
		Formats:   Normalize(video.Formats, video.Duration),
		Thumbnail: bestThumbnailURL(video.Thumbnails),
	}, nil
}

// A Download is an open upstream stream plus the framing the response needs.
// Callers own Body and must close it.
type Download struct {
	Filename    string
	ContentType string
	Length      int64
	Body        io.ReadCloser
}

// OpenDownload re-resolves the video and opens a stream for the requested itag.
// The stream is tied to ctx, so a caller disconnect aborts the upstream fetch.
func (r *Resolver) OpenDownload(ctx context.Context, rawURL, itag string) (*Download, error) {
	videoID, err := ExtractVideoID(rawURL)
	if err != nil {
		return nil, err
	}
	itagNo, err := strconv.Atoi(itag)
	if err != nil {
		return nil, fmt.Errorf("%w: itag %q", clipfetch.ErrFormatNotFound, itag)
	}
	video, err := r.client.GetVideoContext(ctx, WatchURL(videoID))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", clipfetch.ErrResolutionFailed, err)
	}
	matches := video.Formats.Itag(itagNo)
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w: itag %q", clipfetch.ErrFormatNotFound, itag)
	}
	format := &matches[0]
	stream, size, err := r.client.GetStreamContext(ctx, video, format)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", clipfetch.ErrUpstreamUnavailable, err)
	}
	ext := containerExt(format.MimeType)
	if ext == "" {
		ext = "mp4"
	}
	return &Download{
		Filename:    fmt.Sprintf("%s_%s.%s", video.ID, itag, ext),
		ContentType: downloadContentType(format, ext),
		Length:      size,
		Body:        stream,
	}, nil
}

func downloadContentType(f *youtube.Format, ext string) string {
	if f.MimeType != "" {
		return strings.TrimSpace(strings.SplitN(f.MimeType, ";", 2)[0])
	}
	if hasAudio(f) && !hasVideo(f) {
		return "audio/" + ext
	}
	return "video/" + ext
}

func bestThumbnailURL(thumbnails youtube.Thumbnails) string {
	bestURL := ""
	var bestArea uint
	for _, thumb := range thumbnails {
		area := thumb.Width * thumb.Height
		if area >= bestArea {
			bestArea = area
			bestURL = thumb.URL
		}
	}
	return bestURL
}
