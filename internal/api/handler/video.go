package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/iconidentify/tubegrab/internal/domain"
)

// VideoInfoService resolves a URL into metadata and download options.
type VideoInfoService interface {
	Info(ctx context.Context, url string) (*domain.VideoInfo, error)
}

// VideoHandler handles video metadata requests.
type VideoHandler struct {
	videoSvc VideoInfoService
	logger   *slog.Logger
}

// NewVideoHandler creates a new video handler.
func NewVideoHandler(videoSvc VideoInfoService, logger *slog.Logger) *VideoHandler {
	return &VideoHandler{
		videoSvc: videoSvc,
		logger:   logger,
	}
}

// Info handles GET /video-info?url=
func (h *VideoHandler) Info(w http.ResponseWriter, r *http.Request) {
	url := strings.TrimSpace(r.URL.Query().Get("url"))
	if url == "" {
		writeError(w, http.StatusBadRequest, "missing url parameter")
		return
	}

	info, err := h.videoSvc.Info(r.Context(), url)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidURL):
			writeError(w, http.StatusBadRequest, "Invalid YouTube URL")
		case errors.Is(err, domain.ErrExtraction):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			h.logger.Error("video info failed", "url", url, "error", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	writeJSON(w, http.StatusOK, info)
}
