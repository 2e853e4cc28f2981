package instagram

import (
	"context"
	"net/http"

	"github.com/clipfetch/clipfetch"
)

// Strategy priorities: cheapest and most blockable first, slowest and most
// robust last. Metered third-party lookup only ever runs when everything
// self-hosted has failed.
const (
	priorityGraphQL  int16 = 10
	priorityScrape   int16 = 20
	priorityHeadless int16 = 30
	priorityRapidAPI int16 = 40
)

// Config wires a Resolver. Zero values give the full chain minus the
// third-party API strategy (which needs a key).
type Config struct {
	// HTTPClient is shared by the network strategies; nil means a default
	// client with no special transport.
	HTTPClient *http.Client
	// RapidAPIKey enables the third-party-API fallback when set.
	RapidAPIKey string
	// ChromePath overrides the browser binary for the headless strategy.
	ChromePath string
	// DisableHeadless drops the browser strategy, for deployments without a
	// Chrome binary.
	DisableHeadless bool
}

// Resolver resolves a post URL via the strategy chain. Strategies run strictly
// one after another; several of them hit rate-limited origins, so there is no
// speculative racing.
type Resolver struct {
	chain clipfetch.Chain[*PostSummary]
}

func NewResolver(cfg Config) *Resolver {
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{}
	}

	r := &Resolver{}
	r.chain.MustAdd(clipfetch.Strategy[*PostSummary]{
		Name:     "graphql",
		Attempt:  newGraphQLStrategy(client).Attempt,
		Priority: priorityGraphQL,
	})
	r.chain.MustAdd(clipfetch.Strategy[*PostSummary]{
		Name:     "scrape",
		Attempt:  newScrapeStrategy(client).Attempt,
		Priority: priorityScrape,
	})
	if !cfg.DisableHeadless {
		r.chain.MustAdd(clipfetch.Strategy[*PostSummary]{
			Name:     "headless",
			Attempt:  newHeadlessStrategy(cfg.ChromePath).Attempt,
			Priority: priorityHeadless,
		})
	}
	if cfg.RapidAPIKey != "" {
		r.chain.MustAdd(clipfetch.Strategy[*PostSummary]{
			Name:     "rapidapi",
			Attempt:  newRapidAPIStrategy(client, cfg.RapidAPIKey).Attempt,
			Priority: priorityRapidAPI,
		})
	}
	return r
}

// Strategies returns the chain's strategy names in attempt order.
func (r *Resolver) Strategies() []string {
	return r.chain.List()
}

// Resolve classifies the URL and runs the chain for its shortcode. All
// strategy failures stay inside the returned error; nothing panics through
// this boundary.
func (r *Resolver) Resolve(ctx context.Context, rawURL string) (*PostSummary, error) {
	shortcode, err := ExtractShortcode(rawURL)
	if err != nil {
		return nil, err
	}
	post, err := r.chain.Resolve(ctx, shortcode)
	if err != nil {
		return nil, err
	}
	return post, nil
}
