package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/clipfetch/clipfetch"
	"github.com/clipfetch/clipfetch/instagram"
	"github.com/clipfetch/clipfetch/util"
)

func (s *Server) handleInstagramInfo(c *gin.Context) {
	var req urlRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.URL) == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "URL is required",
		})
		return
	}

	post, err := s.instagram.Resolve(c.Request.Context(), req.URL)
	if err != nil {
		switch {
		case errors.Is(err, clipfetch.ErrInvalidURL):
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   "Invalid Instagram URL. Please provide a valid Instagram post, reel, or IGTV URL.",
			})
		case errors.Is(err, clipfetch.ErrResolutionFailed):
			// Per-strategy detail is logged by the chain, not leaked to callers.
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error":   "Failed to fetch Instagram content",
			})
		default:
			clipfetch.Logger(c.Request.Context()).Error("content info failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error":   "Internal server error while fetching Instagram content",
			})
		}
		return
	}

	for i := range post.Media {
		item := &post.Media[i]
		if item.DownloadURL == "" {
			item.DownloadURL = item.URL
		}
		item.DownloadLink = fmt.Sprintf("/api/instagram/download?mediaUrl=%s&type=%s&index=%d",
			url.QueryEscape(item.DownloadURL), url.QueryEscape(item.Type), i)
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": post})
}

func (s *Server) handleInstagramDownload(c *gin.Context) {
	mediaURL := c.Query("mediaUrl")
	if mediaURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Media URL is required",
		})
		return
	}
	mediaType := c.Query("type")

	up, err := s.media.Open(c.Request.Context(), mediaURL)
	if err != nil {
		clipfetch.Logger(c.Request.Context()).Error("media fetch failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to download media",
		})
		return
	}
	defer up.Body.Close()

	ext, contentType := ".jpg", "image/jpeg"
	if mediaType == instagram.MediaTypeVideo {
		ext, contentType = ".mp4", "video/mp4"
	}
	if up.ContentType != "" {
		contentType = up.ContentType
	}
	filename := c.Query("filename")
	if filename == "" {
		filename = fmt.Sprintf("instagram_%d%s", time.Now().Unix(), ext)
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", util.SanitizeFilename(filename)))
	c.Header("Content-Type", contentType)
	if up.ContentLength >= 0 {
		c.Header("Content-Length", strconv.FormatInt(up.ContentLength, 10))
	}
	c.Status(http.StatusOK)

	if _, err := io.Copy(c.Writer, up.Body); err != nil {
		clipfetch.Logger(c.Request.Context()).Warn("media stream interrupted", zap.Error(err))
	}
}
