package instagram

import (
	"context"
	"errors"
	"testing"

	assert_ "github.com/stretchr/testify/assert"

	"github.com/clipfetch/clipfetch"
)

func fakeStrategy(name string, priority int16, calls *[]string, post *PostSummary, err error) clipfetch.Strategy[*PostSummary] {
	return clipfetch.Strategy[*PostSummary]{
		Name:     name,
		Priority: priority,
		Attempt: func(ctx context.Context, shortcode string) (*PostSummary, error) {
			*calls = append(*calls, name)
			return post, err
		},
	}
}

func videoPost(shortcode string) *PostSummary {
	return &PostSummary{
		ID:        "123",
		Shortcode: shortcode,
		URL:       PostURL(shortcode),
		Media: []MediaItem{{
			ID:   "123",
			Type: MediaTypeVideo,
			URL:  "https://scontent.cdninstagram.com/v/video.mp4",
		}},
	}
}

func TestResolverFallbackOrdering(t *testing.T) {
	assert := assert_.New(t)
	var calls []string

	r := &Resolver{}
	r.chain.MustAdd(fakeStrategy("graphql", priorityGraphQL, &calls, nil, errors.New("status 400")))
	r.chain.MustAdd(fakeStrategy("scrape", priorityScrape, &calls, videoPost("XYZ987"), nil))
	r.chain.MustAdd(fakeStrategy("headless", priorityHeadless, &calls, videoPost("XYZ987"), nil))
	r.chain.MustAdd(fakeStrategy("rapidapi", priorityRapidAPI, &calls, videoPost("XYZ987"), nil))

	post, err := r.Resolve(context.Background(), "https://instagram.com/reel/XYZ987/")
	assert.NoError(err)
	assert.Equal("XYZ987", post.Shortcode)
	assert.Equal(MediaTypeVideo, post.Media[0].Type)
	// Later strategies must never run once one has succeeded.
	assert.Equal([]string{"graphql", "scrape"}, calls)
}

func TestResolverExhaustion(t *testing.T) {
	assert := assert_.New(t)
	var calls []string

	r := &Resolver{}
	r.chain.MustAdd(fakeStrategy("graphql", priorityGraphQL, &calls, nil, errors.New("blocked")))
	r.chain.MustAdd(fakeStrategy("scrape", priorityScrape, &calls, nil, errors.New("no metadata")))
	r.chain.MustAdd(fakeStrategy("headless", priorityHeadless, &calls, nil, errors.New("no media")))
	r.chain.MustAdd(fakeStrategy("rapidapi", priorityRapidAPI, &calls, nil, errors.New("no key")))

	_, err := r.Resolve(context.Background(), "https://instagram.com/reel/XYZ987/")
	assert.ErrorIs(err, clipfetch.ErrResolutionFailed)
	assert.Equal([]string{"graphql", "scrape", "headless", "rapidapi"}, calls)
}

func TestResolverInvalidURLShortCircuits(t *testing.T) {
	assert := assert_.New(t)
	var calls []string

	r := &Resolver{}
	r.chain.MustAdd(fakeStrategy("graphql", priorityGraphQL, &calls, videoPost("XYZ987"), nil))

	_, err := r.Resolve(context.Background(), "https://instagram.com/someuser/")
	assert.ErrorIs(err, clipfetch.ErrInvalidURL)
	assert.Empty(calls)
}

func TestNewResolverChainComposition(t *testing.T) {
	assert := assert_.New(t)

	r := NewResolver(Config{})
	assert.Equal([]string{"graphql", "scrape", "headless"}, r.Strategies())

	r = NewResolver(Config{RapidAPIKey: "k", DisableHeadless: true})
	assert.Equal([]string{"graphql", "scrape", "rapidapi"}, r.Strategies())

	r = NewResolver(Config{RapidAPIKey: "k"})
	assert.Equal([]string{"graphql", "scrape", "headless", "rapidapi"}, r.Strategies())
}
