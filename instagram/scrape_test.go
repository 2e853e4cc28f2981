package instagram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	assert_ "github.com/stretchr/testify/assert"
)

const jsonLDPage = `<!DOCTYPE html><html><head>
<script type="application/ld+json">
{
	"@context": "https://schema.org",
	"@type": "VideoObject",
	"contentUrl": "https://scontent.cdninstagram.com/v/ld.mp4",
	"thumbnailUrl": ["https://scontent.cdninstagram.com/v/ld-thumb.jpg"],
	"description": "a reel",
	"author": {"@type": "Person", "name": "Some One", "alternateName": "@someone"}
}
</script>
</head><body><article></article></body></html>`

const sharedDataPage = `<!DOCTYPE html><html><head>
<script type="text/javascript">window._sharedData = {"entry_data": {"PostPage": [{"graphql":
{"shortcode_media": {"id": "55", "shortcode": "XYZ987", "is_video": true,
"video_url": "https://scontent.cdninstagram.com/v/shared.mp4",
"display_url": "https://scontent.cdninstagram.com/v/shared.jpg",
"owner": {"username": "someone"}}}}]}};</script>
</head><body></body></html>`

const additionalDataPage = `<!DOCTYPE html><html><head>
<script type="text/javascript">window.__additionalDataLoaded('extra', {"graphql":
{"shortcode_media": {"id": "77", "shortcode": "XYZ987", "is_video": false,
"display_url": "https://scontent.cdninstagram.com/v/extra.jpg",
"owner": {"username": "someone"}}}});</script>
</head><body></body></html>`

func scrapeFixtureServer(t *testing.T, html string) (*scrapeStrategy, func()) {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(html))
	}))
	s := newScrapeStrategy(server.Client())
	s.baseURL = server.URL
	return s, server.Close
}

func TestScrapeJSONLD(t *testing.T) {
	assert := assert_.New(t)
	s, done := scrapeFixtureServer(t, jsonLDPage)
	defer done()

	post, err := s.Attempt(context.Background(), "XYZ987")
	assert.NoError(err)
	assert.Equal("XYZ987", post.Shortcode)
	assert.Equal("a reel", post.Caption)
	assert.Equal("@someone", post.Owner.Username)
	assert.Len(post.Media, 1)
	assert.Equal(MediaTypeVideo, post.Media[0].Type)
	assert.Equal("https://scontent.cdninstagram.com/v/ld.mp4", post.Media[0].URL)
	assert.Equal("https://scontent.cdninstagram.com/v/ld-thumb.jpg", post.Media[0].Thumbnail)
}

func TestScrapeSharedDataFallback(t *testing.T) {
	assert := assert_.New(t)
	s, done := scrapeFixtureServer(t, sharedDataPage)
	defer done()

	post, err := s.Attempt(context.Background(), "XYZ987")
	assert.NoError(err)
	assert.Equal("55", post.ID)
	assert.Equal(MediaTypeVideo, post.Media[0].Type)
	assert.Equal("https://scontent.cdninstagram.com/v/shared.mp4", post.Media[0].URL)
}

func TestScrapeAdditionalDataFallback(t *testing.T) {
	assert := assert_.New(t)
	s, done := scrapeFixtureServer(t, additionalDataPage)
	defer done()

	post, err := s.Attempt(context.Background(), "XYZ987")
	assert.NoError(err)
	assert.Equal("77", post.ID)
	assert.Equal(MediaTypeImage, post.Media[0].Type)
	assert.Equal("https://scontent.cdninstagram.com/v/extra.jpg", post.Media[0].URL)
}

func TestScrapeFirstParseableWins(t *testing.T) {
	assert := assert_.New(t)
	s, done := scrapeFixtureServer(t, jsonLDPage+sharedDataPage)
	defer done()

	post, err := s.Attempt(context.Background(), "XYZ987")
	assert.NoError(err)
	// JSON-LD outranks the legacy global-data block when both are present.
	assert.Equal("https://scontent.cdninstagram.com/v/ld.mp4", post.Media[0].URL)
}

func TestScrapeNoMetadata(t *testing.T) {
	assert := assert_.New(t)
	s, done := scrapeFixtureServer(t, `<html><body>log in to continue</body></html>`)
	defer done()

	_, err := s.Attempt(context.Background(), "XYZ987")
	assert.ErrorContains(err, "no parseable embedded metadata")
}

func TestScrapePageError(t *testing.T) {
	assert := assert_.New(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()
	s := newScrapeStrategy(server.Client())
	s.baseURL = server.URL

	_, err := s.Attempt(context.Background(), "XYZ987")
	assert.ErrorContains(err, "status 429")
}
