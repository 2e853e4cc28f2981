package youtube

import (
	"strconv"
	"strings"
	"time"

	"github.com/kkdai/youtube/v2"
)

const (
	TypeCombined  = "combined"
	TypeVideoOnly = "video-only"
	TypeAudioOnly = "audio-only"
)

// A Format is the uniform projection of one retrievable encoding variant.
type Format struct {
	Itag     string `json:"itag"`
	Quality  string `json:"quality"`
	Filesize *int64 `json:"filesize,omitempty"`
	MimeType string `json:"mimeType"`
	Ext      string `json:"ext"`
	URL      string `json:"url"`
	Type     string `json:"type"`
}

// FormatGroups buckets formats by role. Within each bucket the provider's order is
// preserved and (quality, ext, type) tuples are unique.
type FormatGroups struct {
	Combined  []Format `json:"combined"`
	VideoOnly []Format `json:"videoOnly"`
	AudioOnly []Format `json:"audioOnly"`
}

// Normalize maps the provider-native format list into the three role buckets.
// Combined formats additionally require an MP4 container, matching what in-browser
// playback and single-file downloads can actually use.
func Normalize(formats []youtube.Format, duration time.Duration) FormatGroups {
	groups := FormatGroups{
		Combined:  []Format{},
		VideoOnly: []Format{},
		AudioOnly: []Format{},
	}
	seen := make(map[string]struct{})
	for i := range formats {
		f := &formats[i]
		ext := containerExt(f.MimeType)
		if ext == "" {
			continue
		}
		video := hasVideo(f)
		audio := hasAudio(f)

		var role string
		switch {
		case video && audio:
			if ext != "mp4" {
				continue
			}
			role = TypeCombined
		case video:
			role = TypeVideoOnly
		case audio:
			role = TypeAudioOnly
		default:
			continue
		}

		normalized := Format{
			Itag:     strconv.Itoa(f.ItagNo),
			Quality:  qualityLabel(f, ext),
			Filesize: filesize(f, duration),
			MimeType: roleMimeType(role, ext),
			Ext:      ext,
			URL:      f.URL,
			Type:     role,
		}

		// First occurrence wins; later duplicates of the same tuple are collapsed.
		key := normalized.Quality + "|" + normalized.Ext + "|" + normalized.Type
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}

		switch role {
		case TypeCombined:
			groups.Combined = append(groups.Combined, normalized)
		case TypeVideoOnly:
			groups.VideoOnly = append(groups.VideoOnly, normalized)
		case TypeAudioOnly:
			groups.AudioOnly = append(groups.AudioOnly, normalized)
		}
	}
	return groups
}

func hasVideo(f *youtube.Format) bool {
	return f.Width > 0 || f.Height > 0
}

func hasAudio(f *youtube.Format) bool {
	return f.AudioChannels > 0
}

// containerExt extracts the container from a MIME type like "video/mp4; codecs=...".
func containerExt(mimeType string) string {
	base := strings.TrimSpace(strings.SplitN(mimeType, ";", 2)[0])
	parts := strings.SplitN(base, "/", 2)
	if len(parts) != 2 || parts[1] == "" {
		return ""
	}
	return parts[1]
}

func qualityLabel(f *youtube.Format, ext string) string {
	switch {
	case f.QualityLabel != "":
		return f.QualityLabel
	case f.Quality != "":
		return f.Quality
	case ext != "":
		return ext
	}
	return "unknown"
}

// filesize prefers the exact content length, then an estimate from the average
// bitrate. When neither is known the size stays absent rather than reported as zero.
func filesize(f *youtube.Format, duration time.Duration) *int64 {
	if f.ContentLength > 0 {
		n := f.ContentLength
		return &n
	}
	if f.AverageBitrate > 0 && duration > 0 {
		n := int64(float64(f.AverageBitrate) / 8 * duration.Seconds())
		return &n
	}
	return nil
}

func roleMimeType(role, ext string) string {
	if role == TypeAudioOnly {
		return "audio/" + ext
	}
	return "video/" + ext
}
