package instagram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// rapidAPIStrategy queries an external aggregation service. Only registered
// when an API key is configured; paid and metered, so it stays at the very end
// of the chain.
type rapidAPIStrategy struct {
	client  *http.Client
	key     string
	host    string
	baseURL string
	timeout time.Duration
}

const rapidAPIHost = "instagram-scraper-api2.p.rapidapi.com"

func newRapidAPIStrategy(client *http.Client, key string) *rapidAPIStrategy {
	return &rapidAPIStrategy{
		client:  client,
		key:     key,
		host:    rapidAPIHost,
		baseURL: "https://" + rapidAPIHost,
		timeout: 15 * time.Second,
	}
}

func (s *rapidAPIStrategy) Attempt(ctx context.Context, shortcode string) (*PostSummary, error) {
	if s.key == "" {
		return nil, errors.New("no API key configured")
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	endpoint := fmt.Sprintf("%s/v1/post_info?code_or_id_or_url=%s", s.baseURL, url.QueryEscape(shortcode))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-RapidAPI-Key", s.key)
	req.Header.Set("X-RapidAPI-Host", s.host)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rapidapi lookup: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rapidapi lookup: status %d", resp.StatusCode)
	}

	var payload struct {
		Data struct {
			ID      string `json:"id"`
			Code    string `json:"code"`
			IsVideo bool   `json:"is_video"`
			Caption struct {
				Text string `json:"text"`
			} `json:"caption"`
			VideoURL     string `json:"video_url"`
			ThumbnailURL string `json:"thumbnail_url"`
			TakenAt      int64  `json:"taken_at"`
			User         struct {
				ID            string `json:"id"`
				Username      string `json:"username"`
				FullName      string `json:"full_name"`
				ProfilePicURL string `json:"profile_pic_url"`
				IsVerified    bool   `json:"is_verified"`
			} `json:"user"`
			Metrics struct {
				LikeCount    int64 `json:"like_count"`
				CommentCount int64 `json:"comment_count"`
				PlayCount    int64 `json:"play_count"`
			} `json:"metrics"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("rapidapi lookup: %w", err)
	}

	data := payload.Data
	item := MediaItem{ID: data.ID, Thumbnail: data.ThumbnailURL}
	if data.IsVideo && data.VideoURL != "" {
		item.Type = MediaTypeVideo
		item.URL = data.VideoURL
	} else {
		item.Type = MediaTypeImage
		item.URL = data.ThumbnailURL
	}
	if item.URL == "" {
		return nil, errors.New("rapidapi response missing media URL")
	}
	item.DownloadURL = item.URL

	code := data.Code
	if code == "" {
		code = shortcode
	}
	return &PostSummary{
		ID:        data.ID,
		Shortcode: code,
		URL:       PostURL(code),
		Caption:   data.Caption.Text,
		Owner: Owner{
			ID:         data.User.ID,
			Username:   data.User.Username,
			FullName:   data.User.FullName,
			ProfilePic: data.User.ProfilePicURL,
			IsVerified: data.User.IsVerified,
		},
		Stats: Stats{
			Likes:    data.Metrics.LikeCount,
			Comments: data.Metrics.CommentCount,
			Views:    data.Metrics.PlayCount,
		},
		Timestamp: data.TakenAt,
		Media:     []MediaItem{item},
	}, nil
}
