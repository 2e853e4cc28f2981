package instagram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/clipfetch/clipfetch"
)

// headlessStrategy renders the post page in a real browser and pulls media
// elements out of the DOM. Slowest strategy in the chain but the hardest for
// the origin to distinguish from a visitor, so it runs as the last resort
// before the paid API.
type headlessStrategy struct {
	execPath string
	timeout  time.Duration
}

func newHeadlessStrategy(execPath string) *headlessStrategy {
	return &headlessStrategy{
		execPath: execPath,
		timeout:  60 * time.Second,
	}
}

// Content-region selectors tried in order, each with a smaller wait budget than
// the previous one.
var contentWaits = []struct {
	selector string
	timeout  time.Duration
}{
	{"article", 15 * time.Second},
	{"main", 8 * time.Second},
	{`video, img[src*="cdninstagram"]`, 4 * time.Second},
}

const collectMediaJS = `(function () {
	var out = [];
	document.querySelectorAll("video").forEach(function (v) {
		var source = v.querySelector("source");
		var src = v.currentSrc || v.src || (source ? source.src : "");
		out.push({ type: "video", url: src, thumbnail: v.poster || "" });
	});
	document.querySelectorAll("img").forEach(function (img) {
		var src = img.src || "";
		if (src.indexOf("cdninstagram") !== -1 || src.indexOf("fbcdn") !== -1) {
			out.push({ type: "image", url: src, thumbnail: src });
		}
	});
	return JSON.stringify(out);
})();`

type renderedMedia struct {
	Type      string `json:"type"`
	URL       string `json:"url"`
	Thumbnail string `json:"thumbnail"`
}

func (s *headlessStrategy) Attempt(ctx context.Context, shortcode string) (*PostSummary, error) {
	logger := clipfetch.Logger(ctx)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.UserAgent(mobileUserAgent),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
	)
	if s.execPath != "" {
		opts = append(opts, chromedp.ExecPath(s.execPath))
	}

	// The browser is scoped to this one attempt: the deferred cancels release
	// it on every exit path, success or failure.
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()
	runCtx, cancelRun := context.WithTimeout(browserCtx, s.timeout)
	defer cancelRun()

	if err := chromedp.Run(runCtx,
		network.Enable(),
		chromedp.Navigate(PostURL(shortcode)),
	); err != nil {
		return nil, fmt.Errorf("headless navigation: %w", err)
	}

	waited := false
	for _, wait := range contentWaits {
		waitCtx, cancelWait := context.WithTimeout(runCtx, wait.timeout)
		err := chromedp.Run(waitCtx, chromedp.WaitVisible(wait.selector, chromedp.ByQuery))
		cancelWait()
		if err == nil {
			waited = true
			break
		}
		logger.Debug("content selector not visible",
			zap.String("selector", wait.selector), zap.Error(err))
	}
	if !waited {
		logger.Warn("no content selector appeared, extracting anyway",
			zap.String("shortcode", shortcode))
	}

	var raw string
	if err := chromedp.Run(runCtx, chromedp.Evaluate(collectMediaJS, &raw)); err != nil {
		return nil, fmt.Errorf("headless extraction: %w", err)
	}
	var rendered []renderedMedia
	if err := json.Unmarshal([]byte(raw), &rendered); err != nil {
		return nil, fmt.Errorf("headless extraction: %w", err)
	}

	media := filterRenderedMedia(rendered, shortcode)
	if len(media) == 0 {
		return nil, errors.New("no downloadable media in rendered page")
	}
	return &PostSummary{
		ID:        shortcode,
		Shortcode: shortcode,
		URL:       PostURL(shortcode),
		Media:     media,
	}, nil
}

// filterRenderedMedia drops assets without a real HTTP URL. In-page object
// URLs (blob:) only exist inside the browser session and cannot be fetched.
func filterRenderedMedia(rendered []renderedMedia, shortcode string) []MediaItem {
	var media []MediaItem
	seen := make(map[string]struct{})
	for _, r := range rendered {
		if !strings.HasPrefix(r.URL, "http://") && !strings.HasPrefix(r.URL, "https://") {
			continue
		}
		if _, ok := seen[r.URL]; ok {
			continue
		}
		seen[r.URL] = struct{}{}
		media = append(media, MediaItem{
			ID:          fmt.Sprintf("%s_%d", shortcode, len(media)),
			Type:        r.Type,
			URL:         r.URL,
			Thumbnail:   r.Thumbnail,
			DownloadURL: r.URL,
		})
	}
	return media
}
