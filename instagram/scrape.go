package instagram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// scrapeStrategy fetches the public post page and digs the media metadata out
// of whichever embedded script block this page generation happens to carry.
type scrapeStrategy struct {
	client  *http.Client
	baseURL string
	timeout time.Duration
}

func newScrapeStrategy(client *http.Client) *scrapeStrategy {
	return &scrapeStrategy{
		client:  client,
		baseURL: "https://www.instagram.com",
		timeout: 15 * time.Second,
	}
}

const maxPageBytes = 4 << 20

var (
	sharedDataRe     = regexp.MustCompile(`(?s)window\._sharedData\s*=\s*(\{.+?\})\s*;\s*</script>`)
	additionalDataRe = regexp.MustCompile(`(?s)window\.__additionalDataLoaded\s*\(\s*[^,]+,\s*(\{.+?\})\s*\)\s*;\s*</script>`)
)

func (s *scrapeStrategy) Attempt(ctx context.Context, shortcode string) (*PostSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/p/%s/", s.baseURL, shortcode), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", mobileUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("page fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("page fetch: status %d", resp.StatusCode)
	}
	html, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, fmt.Errorf("page fetch: %w", err)
	}

	// Known embedding patterns, newest first. The first one that parses wins.
	for _, parse := range []func([]byte, string) (*PostSummary, error){
		s.parseJSONLD,
		s.parseSharedData,
		s.parseAdditionalData,
	} {
		if post, err := parse(html, shortcode); err == nil {
			return post, nil
		}
	}
	return nil, errors.New("no parseable embedded metadata in page")
}

// jsonLDThumb tolerates thumbnailUrl being either a string or a list.
type jsonLDThumb string

func (t *jsonLDThumb) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*t = jsonLDThumb(single)
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	if len(list) > 0 {
		*t = jsonLDThumb(list[0])
	}
	return nil
}

type jsonLDObject struct {
	Type         string      `json:"@type"`
	ContentURL   string      `json:"contentUrl"`
	ThumbnailURL jsonLDThumb `json:"thumbnailUrl"`
	Caption      string      `json:"caption"`
	Description  string      `json:"description"`
	Author       struct {
		Name          string `json:"name"`
		AlternateName string `json:"alternateName"`
		Identifier    struct {
			Value string `json:"value"`
		} `json:"identifier"`
	} `json:"author"`
}

func (s *scrapeStrategy) parseJSONLD(html []byte, shortcode string) (*PostSummary, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, err
	}
	var found *jsonLDObject
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(i int, sel *goquery.Selection) bool {
		raw := []byte(sel.Text())
		var obj jsonLDObject
		if err := json.Unmarshal(raw, &obj); err == nil && usableJSONLD(&obj) {
			found = &obj
			return false
		}
		var list []jsonLDObject
		if err := json.Unmarshal(raw, &list); err == nil {
			for i := range list {
				if usableJSONLD(&list[i]) {
					found = &list[i]
					return false
				}
			}
		}
		return true
	})
	if found == nil {
		return nil, errors.New("no usable ld+json block")
	}

	mediaType := MediaTypeImage
	if found.Type == "VideoObject" {
		mediaType = MediaTypeVideo
	}
	caption := found.Caption
	if caption == "" {
		caption = found.Description
	}
	username := found.Author.AlternateName
	if username == "" {
		username = found.Author.Identifier.Value
	}
	return &PostSummary{
		ID:        shortcode,
		Shortcode: shortcode,
		URL:       PostURL(shortcode),
		Caption:   caption,
		Owner:     Owner{Username: username, FullName: found.Author.Name},
		Media: []MediaItem{{
			ID:          shortcode,
			Type:        mediaType,
			URL:         found.ContentURL,
			Thumbnail:   string(found.ThumbnailURL),
			DownloadURL: found.ContentURL,
		}},
	}, nil
}

func usableJSONLD(obj *jsonLDObject) bool {
	if obj.ContentURL == "" {
		return false
	}
	return obj.Type == "VideoObject" || obj.Type == "ImageObject"
}

func (s *scrapeStrategy) parseSharedData(html []byte, shortcode string) (*PostSummary, error) {
	match := sharedDataRe.FindSubmatch(html)
	if match == nil {
		return nil, errors.New("no _sharedData block")
	}
	var payload struct {
		EntryData struct {
			PostPage []struct {
				GraphQL struct {
					Media *shortcodeMedia `json:"shortcode_media"`
				} `json:"graphql"`
			} `json:"PostPage"`
		} `json:"entry_data"`
	}
	if err := json.Unmarshal(match[1], &payload); err != nil {
		return nil, fmt.Errorf("_sharedData: %w", err)
	}
	pages := payload.EntryData.PostPage
	if len(pages) == 0 || pages[0].GraphQL.Media == nil {
		return nil, errors.New("_sharedData missing media node")
	}
	return pages[0].GraphQL.Media.toPostSummary()
}

func (s *scrapeStrategy) parseAdditionalData(html []byte, shortcode string) (*PostSummary, error) {
	match := additionalDataRe.FindSubmatch(html)
	if match == nil {
		return nil, errors.New("no __additionalDataLoaded block")
	}
	var payload struct {
		GraphQL struct {
			Media *shortcodeMedia `json:"shortcode_media"`
		} `json:"graphql"`
	}
	if err := json.Unmarshal(match[1], &payload); err != nil {
		return nil, fmt.Errorf("__additionalDataLoaded: %w", err)
	}
	if payload.GraphQL.Media == nil {
		return nil, errors.New("__additionalDataLoaded missing media node")
	}
	return payload.GraphQL.Media.toPostSummary()
}
