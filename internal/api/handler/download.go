package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/iconidentify/tubegrab/internal/domain"
)

// DownloadManager submits and tracks download jobs.
type DownloadManager interface {
	Submit(ctx context.Context, url, formatID string) (*domain.Job, error)
	Status(ctx context.Context, id domain.JobID) (*domain.Job, error)
	List(ctx context.Context, state *domain.JobState, limit, offset int) ([]*domain.Job, int, error)
}

// DownloadHandler handles download job requests.
type DownloadHandler struct {
	downloads DownloadManager
	logger    *slog.Logger
}

// NewDownloadHandler creates a new download handler.
func NewDownloadHandler(downloads DownloadManager, logger *slog.Logger) *DownloadHandler {
	return &DownloadHandler{
		downloads: downloads,
		logger:    logger,
	}
}

// DownloadRequest is the JSON request body for POST /download.
type DownloadRequest struct {
	URL      string `json:"url"`
	FormatID string `json:"format_id"`
}

// DownloadResponse is returned when a job is accepted.
type DownloadResponse struct {
	DownloadID string `json:"download_id"`
	Status     string `json:"status"`
	Message    string `json:"message"`
}

// StatusResponse is returned for status queries.
type StatusResponse struct {
	DownloadID string    `json:"download_id"`
	Status     string    `json:"status"`
	Message    string    `json:"message"`
	CreatedAt  time.Time `json:"created_at"`
}

// JobResponse represents a job in list responses.
type JobResponse struct {
	DownloadID string    `json:"download_id"`
	Status     string    `json:"status"`
	Message    string    `json:"message"`
	URL        string    `json:"url"`
	FormatID   string    `json:"format_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ListResponse is returned for GET /downloads.
type ListResponse struct {
	Downloads []JobResponse `json:"downloads"`
	Total     int           `json:"total"`
	Limit     int           `json:"limit"`
	Offset    int           `json:"offset"`
}

// Submit handles POST /download
func (h *DownloadHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req DownloadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	job, err := h.downloads.Submit(r.Context(), req.URL, req.FormatID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidURL):
			writeError(w, http.StatusBadRequest, "Invalid YouTube URL")
		case errors.Is(err, domain.ErrInvalidFormat):
			writeError(w, http.StatusBadRequest, "missing format_id")
		case errors.Is(err, domain.ErrPoolStopped):
			writeError(w, http.StatusServiceUnavailable, "server is shutting down")
		default:
			h.logger.Error("submit failed", "url", req.URL, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to start download")
		}
		return
	}

	writeJSON(w, http.StatusOK, DownloadResponse{
		DownloadID: job.ID.String(),
		Status:     string(job.State),
		Message:    "Download started",
	})
}

// Status handles GET /download-status/{downloadID}
func (h *DownloadHandler) Status(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "downloadID")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing download ID")
		return
	}

	job, err := h.downloads.Status(r.Context(), domain.JobID(id))
	if err != nil {
		if errors.Is(err, domain.ErrJobNotFound) {
			writeError(w, http.StatusNotFound, "Download not found")
			return
		}
		h.logger.Error("status lookup failed", "download_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get download status")
		return
	}

	writeJSON(w, http.StatusOK, StatusResponse{
		DownloadID: job.ID.String(),
		Status:     string(job.State),
		Message:    job.Message,
		CreatedAt:  job.CreatedAt,
	})
}

// List handles GET /downloads
func (h *DownloadHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 50
	offset := 0
	var state *domain.JobState

	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	if o := r.URL.Query().Get("offset"); o != "" {
		if parsed, err := strconv.Atoi(o); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	if s := r.URL.Query().Get("status"); s != "" {
		st := domain.JobState(s)
		if !st.Valid() {
			writeError(w, http.StatusBadRequest, "invalid status filter")
			return
		}
		state = &st
	}

	jobs, total, err := h.downloads.List(r.Context(), state, limit, offset)
	if err != nil {
		h.logger.Error("list failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list downloads")
		return
	}

	response := ListResponse{
		Downloads: make([]JobResponse, 0, len(jobs)),
		Total:     total,
		Limit:     limit,
		Offset:    offset,
	}
	for _, j := range jobs {
		response.Downloads = append(response.Downloads, JobResponse{
			DownloadID: j.ID.String(),
			Status:     string(j.State),
			Message:    j.Message,
			URL:        j.URL,
			FormatID:   j.FormatID,
			CreatedAt:  j.CreatedAt,
			UpdatedAt:  j.UpdatedAt,
		})
	}

	writeJSON(w, http.StatusOK, response)
}
