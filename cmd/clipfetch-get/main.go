package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/clipfetch/clipfetch"
	"github.com/clipfetch/clipfetch/fetch"
	"github.com/clipfetch/clipfetch/instagram"
	"github.com/clipfetch/clipfetch/util"
	"github.com/clipfetch/clipfetch/youtube"
)

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logger.Sync()
	zap.RedirectStdLog(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = clipfetch.WithLogger(ctx, logger)

	app := &cli.App{
		Name:  "clipfetch-get",
		Usage: "download media from a YouTube or Instagram URL",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "target",
				Value: ".",
				Usage: "save downloaded media to `DIR`",
			},
			&cli.StringFlag{
				Name:  "itag",
				Usage: "YouTube format `ITAG` (default: best combined format)",
			},
		},
		Action: func(c *cli.Context) error {
			target := c.String("target")
			for _, source := range c.Args().Slice() {
				if err := download(ctx, source, target, c.String("itag")); err != nil {
					return err
				}
			}
			return nil
		},
		HideHelpCommand: true,
	}

	if err := app.RunContext(ctx, os.Args); err != nil {
		logger.Fatal(err.Error())
	}
}

func download(ctx context.Context, source, target, itag string) error {
	logger := clipfetch.Logger(ctx).Sugar()
	logger.Infof("Downloading from %s into %s", source, target)

	if _, err := youtube.ExtractVideoID(source); err == nil {
		return downloadYouTube(ctx, source, target, itag)
	}
	if _, err := instagram.ExtractShortcode(source); err == nil {
		return downloadInstagram(ctx, source, target)
	}
	return fmt.Errorf("%w: %s", clipfetch.ErrInvalidURL, source)
}

func downloadYouTube(ctx context.Context, source, target, itag string) error {
	logger := clipfetch.Logger(ctx).Sugar()
	resolver := youtube.NewResolver(nil)

	if itag == "" {
		summary, err := resolver.Resolve(ctx, source)
		if err != nil {
			return fmt.Errorf("resolve failed: %w", err)
		}
		logger.Infof("Resolved %q by %s", summary.Title, summary.Channel)
		formats := summary.Formats.Combined
		if len(formats) == 0 {
			formats = summary.Formats.AudioOnly
		}
		if len(formats) == 0 {
			return fmt.Errorf("%w: no downloadable formats", clipfetch.ErrFormatNotFound)
		}
		itag = formats[0].Itag
	}

	dl, err := resolver.OpenDownload(ctx, source, itag)
	if err != nil {
		return fmt.Errorf("download failed: %w", err)
	}
	defer dl.Body.Close()

	return saveStream(dl.Body, dl.Length, filepath.Join(target, dl.Filename))
}

func downloadInstagram(ctx context.Context, source, target string) error {
	logger := clipfetch.Logger(ctx).Sugar()
	resolver := instagram.NewResolver(instagram.Config{
		RapidAPIKey:     os.Getenv("RAPIDAPI_KEY"),
		ChromePath:      os.Getenv("CHROME_PATH"),
		DisableHeadless: os.Getenv("DISABLE_HEADLESS") != "",
	})

	post, err := resolver.Resolve(ctx, source)
	if err != nil {
		return fmt.Errorf("resolve failed: %w", err)
	}
	logger.Infof("Resolved post %s with %d media item(s)", post.Shortcode, len(post.Media))

	client := fetch.NewClient(fetch.Options{Referer: "https://www.instagram.com/"})
	for i, item := range post.Media {
		up, err := client.Open(ctx, item.URL)
		if err != nil {
			return fmt.Errorf("media fetch failed: %w", err)
		}

		filename, err := util.FilenameFromURLString(item.URL)
		if err != nil {
			ext := ".jpg"
			if item.Type == instagram.MediaTypeVideo {
				ext = ".mp4"
			}
			filename = fmt.Sprintf("%s_%d%s", post.Shortcode, i, ext)
		}
		// Strip CDN query noise that survives into the path segment.
		if cut := strings.IndexByte(filename, '?'); cut >= 0 {
			filename = filename[:cut]
		}

		err = saveStream(up.Body, up.ContentLength, filepath.Join(target, filename))
		up.Body.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

func saveStream(body io.Reader, length int64, path string) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create %s: %w", path, err)
	}
	defer out.Close()

	if length <= 0 {
		length = 1
	}
	bar := progressbar.DefaultBytes(length, "downloading")
	if _, err := io.Copy(io.MultiWriter(out, bar), body); err != nil {
		return fmt.Errorf("download failed: %w", err)
	}
	_ = bar.Finish()
	return nil
}
