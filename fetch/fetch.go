// Package fetch relays upstream media bytes. Origins behind it enforce
// user-agent and referer checks, so requests are framed like a browser's.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/clipfetch/clipfetch"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

const defaultTimeout = 30 * time.Second

// A Client opens upstream asset streams with realistic request framing.
type Client struct {
	httpClient *http.Client
	userAgent  string
	referer    string
}

// Options configures a Client. Zero values fall back to defaults.
type Options struct {
	HTTPClient *http.Client
	UserAgent  string
	// Referer is sent on every request; some origins serve an error page
	// without it.
	Referer string
	Timeout time.Duration
}

func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout == 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &Client{
		httpClient: httpClient,
		userAgent:  userAgent,
		referer:    opts.Referer,
	}
}

// An Upstream is one open asset stream. Body reads fail once ctx is done, so a
// caller disconnect aborts the upstream transfer instead of leaking it.
type Upstream struct {
	ContentType   string
	ContentLength int64
	Body          io.ReadCloser
}

// Open issues a GET for the asset URL and returns the open stream without
// buffering. Any non-2xx status or transport error is ErrUpstreamUnavailable.
func (c *Client) Open(ctx context.Context, assetURL string) (*Upstream, error) {
	parsed, err := url.Parse(assetURL)
	if err != nil || parsed.Host == "" {
		return nil, fmt.Errorf("%w: malformed asset URL", clipfetch.ErrUpstreamUnavailable)
	}
	switch strings.ToLower(parsed.Scheme) {
	case "http", "https":
	default:
		return nil, fmt.Errorf("%w: unsupported scheme %q", clipfetch.ErrUpstreamUnavailable, parsed.Scheme)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsed.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", clipfetch.ErrUpstreamUnavailable, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "*/*")
	if c.referer != "" {
		req.Header.Set("Referer", c.referer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", clipfetch.ErrUpstreamUnavailable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: status %d", clipfetch.ErrUpstreamUnavailable, resp.StatusCode)
	}

	return &Upstream{
		ContentType:   resp.Header.Get("Content-Type"),
		ContentLength: resp.ContentLength,
		Body:          &contextReadCloser{ctx: ctx, inner: resp.Body},
	}, nil
}

// A context-aware io.ReadCloser wrapper.
type contextReadCloser struct {
	ctx   context.Context
	inner io.ReadCloser
}

func (r *contextReadCloser) Read(p []byte) (n int, err error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.inner.Read(p)
}

func (r *contextReadCloser) Close() error {
	return r.inner.Close()
}
