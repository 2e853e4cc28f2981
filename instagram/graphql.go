package instagram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Request shape for the provider-internal query protocol. The constants are the
// ones an official web client sends; the request deliberately carries no cookie.
const (
	graphqlEndpoint = "https://www.instagram.com/graphql/query"
	graphqlDocID    = "8845758582119845"
	igAppID         = "1217981644879628"
	igFriendlyName  = "PolarisPostActionLoadPostQueryQuery"

	mobileUserAgent = "Mozilla/5.0 (Linux; Android 11; SM-G973U) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Mobile Safari/537.36"
)

// graphqlStrategy queries the internal GraphQL endpoint directly. Fastest of
// the chain, and the first to get blocked.
type graphqlStrategy struct {
	client   *http.Client
	endpoint string
	timeout  time.Duration
}

func newGraphQLStrategy(client *http.Client) *graphqlStrategy {
	return &graphqlStrategy{
		client:   client,
		endpoint: graphqlEndpoint,
		timeout:  10 * time.Second,
	}
}

func (s *graphqlStrategy) Attempt(ctx context.Context, shortcode string) (*PostSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	variables, err := json.Marshal(map[string]string{"shortcode": shortcode})
	if err != nil {
		return nil, err
	}
	form := url.Values{
		"av":        {"0"},
		"__d":       {"www"},
		"__user":    {"0"},
		"__a":       {"1"},
		"__req":     {"b"},
		"variables": {string(variables)},
		"doc_id":    {graphqlDocID},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", mobileUserAgent)
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Referer", ReelURL(shortcode))
	req.Header.Set("X-IG-App-ID", igAppID)
	req.Header.Set("X-FB-Friendly-Name", igFriendlyName)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("graphql query: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("graphql query: status %d", resp.StatusCode)
	}

	var payload struct {
		Data struct {
			Media *shortcodeMedia `json:"xdt_shortcode_media"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("graphql query: %w", err)
	}
	if payload.Data.Media == nil {
		return nil, errors.New("media not found or blocked")
	}
	return payload.Data.Media.toPostSummary()
}

// shortcodeMedia is the provider-native media node, shared between the GraphQL
// response and the embedded-JSON shapes the page scraper digs out.
type shortcodeMedia struct {
	ID               string  `json:"id"`
	Shortcode        string  `json:"shortcode"`
	ProductType      string  `json:"product_type"`
	IsVideo          bool    `json:"is_video"`
	VideoURL         string  `json:"video_url"`
	DisplayURL       string  `json:"display_url"`
	ThumbnailSrc     string  `json:"thumbnail_src"`
	VideoDuration    float64 `json:"video_duration"`
	VideoViewCount   int64   `json:"video_view_count"`
	TakenAtTimestamp int64   `json:"taken_at_timestamp"`
	Owner            struct {
		ID            string `json:"id"`
		Username      string `json:"username"`
		FullName      string `json:"full_name"`
		ProfilePicURL string `json:"profile_pic_url"`
		IsVerified    bool   `json:"is_verified"`
	} `json:"owner"`
	EdgeMediaPreviewLike struct {
		Count int64 `json:"count"`
	} `json:"edge_media_preview_like"`
	EdgeMediaToComment struct {
		Count int64 `json:"count"`
	} `json:"edge_media_to_comment"`
	EdgeMediaToCaption struct {
		Edges []struct {
			Node struct {
				Text string `json:"text"`
			} `json:"node"`
		} `json:"edges"`
	} `json:"edge_media_to_caption"`
}

func (m *shortcodeMedia) toPostSummary() (*PostSummary, error) {
	item := MediaItem{ID: m.ID, Thumbnail: m.ThumbnailSrc}
	if item.Thumbnail == "" {
		item.Thumbnail = m.DisplayURL
	}
	if m.IsVideo {
		item.Type = MediaTypeVideo
		item.URL = m.VideoURL
	} else {
		item.Type = MediaTypeImage
		item.URL = m.DisplayURL
	}
	if item.URL == "" {
		return nil, errors.New("media node missing asset URL")
	}
	item.DownloadURL = item.URL

	caption := ""
	if edges := m.EdgeMediaToCaption.Edges; len(edges) > 0 {
		caption = edges[0].Node.Text
	}

	return &PostSummary{
		ID:        m.ID,
		Shortcode: m.Shortcode,
		URL:       PostURL(m.Shortcode),
		Caption:   caption,
		Owner: Owner{
			ID:         m.Owner.ID,
			Username:   m.Owner.Username,
			FullName:   m.Owner.FullName,
			ProfilePic: m.Owner.ProfilePicURL,
			IsVerified: m.Owner.IsVerified,
		},
		Stats: Stats{
			Likes:    m.EdgeMediaPreviewLike.Count,
			Comments: m.EdgeMediaToComment.Count,
			Views:    m.VideoViewCount,
		},
		Timestamp: m.TakenAtTimestamp,
		Media:     []MediaItem{item},
	}, nil
}
