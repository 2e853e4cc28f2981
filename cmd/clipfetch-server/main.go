package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/clipfetch/clipfetch/config"
	"github.com/clipfetch/clipfetch/fetch"
	"github.com/clipfetch/clipfetch/instagram"
	"github.com/clipfetch/clipfetch/server"
	"github.com/clipfetch/clipfetch/youtube"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logger.Sync()
	zap.RedirectStdLog(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &cli.App{
		Name:  "clipfetch-server",
		Usage: "media resolution and download gateway",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "port",
				Usage:   "listen on `PORT`",
				EnvVars: []string{"PORT"},
			},
		},
		Action: func(c *cli.Context) error {
			cfg := config.FromEnv()
			if port := c.String("port"); port != "" {
				cfg.Port = port
			}

			srv := server.New(cfg, logger,
				youtube.NewResolver(nil),
				instagram.NewResolver(instagram.Config{
					RapidAPIKey:     cfg.RapidAPIKey,
					ChromePath:      cfg.ChromePath,
					DisableHeadless: cfg.DisableHeadless,
				}),
				fetch.NewClient(fetch.Options{Referer: "https://www.instagram.com/"}),
			)
			return srv.Run(ctx)
		},
		HideHelpCommand: true,
	}

	if err := app.RunContext(ctx, os.Args); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal(err.Error())
	}
}
