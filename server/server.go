// Package server is the HTTP boundary: routing, validation, rate limiting and
// the mapping of pipeline outcomes onto status codes. Resolution itself lives
// behind the service interfaces so the gateway stays testable in isolation.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/clipfetch/clipfetch/config"
	"github.com/clipfetch/clipfetch/fetch"
	"github.com/clipfetch/clipfetch/instagram"
	"github.com/clipfetch/clipfetch/youtube"
)

// YouTubeService resolves and streams YouTube content.
type YouTubeService interface {
	Resolve(ctx context.Context, rawURL string) (*youtube.ContentSummary, error)
	OpenDownload(ctx context.Context, rawURL, itag string) (*youtube.Download, error)
}

// InstagramService resolves Instagram posts.
type InstagramService interface {
	Resolve(ctx context.Context, rawURL string) (*instagram.PostSummary, error)
}

// MediaFetcher opens upstream asset streams for the Instagram download proxy.
type MediaFetcher interface {
	Open(ctx context.Context, assetURL string) (*fetch.Upstream, error)
}

type Server struct {
	cfg       config.Config
	logger    *zap.Logger
	youtube   YouTubeService
	instagram InstagramService
	media     MediaFetcher
	engine    *gin.Engine
	started   time.Time
}

func New(cfg config.Config, logger *zap.Logger, yt YouTubeService, ig InstagramService, media MediaFetcher) *Server {
	s := &Server{
		cfg:       cfg,
		logger:    logger,
		youtube:   yt,
		instagram: ig,
		media:     media,
		started:   time.Now(),
	}

	engine := gin.New()
	engine.Use(
		requestContext(logger),
		gin.CustomRecovery(s.recovered),
		corsAllowlist(cfg.AllowedOrigins),
	)

	// Metadata lookups get 30 requests per 15 minutes per client; downloads
	// move real bytes and get a stricter 20 per 10 minutes.
	infoLimit := newClientLimiter(rate.Every(30*time.Second), 30,
		"Too many content info requests. Please try again later.")
	downloadLimit := newClientLimiter(rate.Every(30*time.Second), 20,
		"Too many download requests. Please try again later.")

	api := engine.Group("/api")
	api.POST("/youtube/video-info", infoLimit.middleware(), s.handleYouTubeInfo)
	api.GET("/youtube/download", downloadLimit.middleware(), s.handleYouTubeDownload)
	api.POST("/instagram/content-info", infoLimit.middleware(), s.handleInstagramInfo)
	api.GET("/instagram/download", downloadLimit.middleware(), s.handleInstagramDownload)

	engine.GET("/healthz", s.handleHealth)

	s.engine = engine
	return s
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + s.cfg.Port,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()
	s.logger.Info("listening", zap.String("addr", srv.Addr))

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) recovered(c *gin.Context, err any) {
	s.logger.Error("handler panic", zap.Any("panic", err), zap.String("path", c.Request.URL.Path))
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
		"success": false,
		"error":   "Internal server error",
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"uptime": time.Since(s.started).Round(time.Second).String(),
	})
}
