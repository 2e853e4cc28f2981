package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/clipfetch/clipfetch"
)

type urlRequest struct {
	URL string `json:"url"`
}

func (s *Server) handleYouTubeInfo(c *gin.Context) {
	var req urlRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.URL) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid YouTube URL"})
		return
	}

	summary, err := s.youtube.Resolve(c.Request.Context(), req.URL)
	if err != nil {
		if errors.Is(err, clipfetch.ErrInvalidURL) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid YouTube URL"})
			return
		}
		clipfetch.Logger(c.Request.Context()).Error("video info failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch video info"})
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (s *Server) handleYouTubeDownload(c *gin.Context) {
	rawURL := c.Query("url")
	itag := c.Query("itag")
	if rawURL == "" || itag == "" {
		c.String(http.StatusBadRequest, "Missing parameters")
		return
	}

	dl, err := s.youtube.OpenDownload(c.Request.Context(), rawURL, itag)
	if err != nil {
		switch {
		case errors.Is(err, clipfetch.ErrInvalidURL):
			c.String(http.StatusBadRequest, "Invalid YouTube URL")
		case errors.Is(err, clipfetch.ErrFormatNotFound):
			c.String(http.StatusNotFound, "Format not found")
		default:
			clipfetch.Logger(c.Request.Context()).Error("download failed", zap.Error(err))
			c.String(http.StatusInternalServerError, "Server error")
		}
		return
	}
	defer dl.Body.Close()

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", dl.Filename))
	c.Header("Content-Type", dl.ContentType)
	if dl.Length > 0 {
		c.Header("Content-Length", strconv.FormatInt(dl.Length, 10))
	}
	c.Status(http.StatusOK)

	if _, err := io.Copy(c.Writer, dl.Body); err != nil {
		// Headers are gone; nothing to do but drop the connection.
		clipfetch.Logger(c.Request.Context()).Warn("download stream interrupted", zap.Error(err))
	}
}
